// Package main is the entry point for the rlmetrics CLI tool, which reconstructs
// decoded Rocket League replays and computes player/team performance metrics.
package main

import "github.com/pable/go-rl-metrics/cmd"

func main() {
	cmd.Execute()
}

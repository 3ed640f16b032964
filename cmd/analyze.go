package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/spf13/cobra"

	"github.com/pable/go-rl-metrics/internal/storage"
)

const analyzeSystemPrompt = `You are a Rocket League performance analyst. You are given the JSON report
of one replay produced by a replay-analysis tool and a question from the player.

Rules:
- Answer ONLY from the data provided. Never invent or estimate statistics.
- Always cite specific numbers when making a claim.
- Statistics listed under extra_data.Unavailable could not be computed; say so instead of guessing.
- If the data is insufficient to answer confidently, say so explicitly.
- Be concise and actionable: focus on what the player can actually improve.

Metrics glossary:
- AVG_Boost: average boost held, 0-100, sampled once per clock second.
- Frames_Closest / Closest_Percent: seconds (and share) the player was the closest car to the ball.
- Attacking/Defending_Half_Time: estimated seconds spent in the opponent's / own half.
- Orange/Blue_Zone_Time, Midfield_Time: estimated seconds deep in each third of the field.
- Airtime_Low/Medium/High: estimated seconds above 120/250/600 units (cumulative).
- Points_Score: goals*50 + assists*25 + saves*25 + shots*15; Play_Score is the rest of the score.
- Possession: share of live-ball time the team touched the ball last.
- Kickoff_Wins: kickoffs after which the ball went to the opponent's half.`

var analyzeAPIKey string

var analyzeCmd = &cobra.Command{
	Use:   "analyze <hash-prefix> <question>",
	Short: "AI-powered grounded analysis of a stored replay (requires ANTHROPIC_API_KEY)",
	Args:  cobra.ExactArgs(2),
	RunE:  runAnalyze,
}

var analyzeModel string

func init() {
	analyzeCmd.Flags().StringVar(&analyzeModel, "model", "", "Anthropic model to use (default from config)")
	analyzeCmd.Flags().StringVar(&analyzeAPIKey, "api-key", "", "Anthropic API key (falls back to $ANTHROPIC_API_KEY)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	prefix, question := args[0], args[1]

	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	replay, err := db.GetReplayByPrefix(prefix)
	if err != nil {
		return fmt.Errorf("query replay: %w", err)
	}
	if replay == nil {
		return fmt.Errorf("no replay found with hash prefix %q", prefix)
	}
	body, err := db.GetReportJSON(replay.ReplayHash)
	if err != nil {
		return fmt.Errorf("get report: %w", err)
	}
	if body == nil {
		return fmt.Errorf("no stored report for %s; re-run parse with --reparse", prefix)
	}

	modelID := analyzeModel
	if modelID == "" {
		modelID = cfg.AnalyzeModel
	}
	logger.Debug("analyze", "replay", replay.ReplayHash, "model", modelID, "bytes", len(body))
	return callAnthropic(cmd.Context(), analyzeAPIKey, modelID, string(body), question)
}

// callAnthropic streams a response from the Anthropic API and prints it to stdout.
func callAnthropic(ctx context.Context, apiKey, modelID, dataJSON, question string) error {
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return fmt.Errorf("no API key: set ANTHROPIC_API_KEY or use --api-key")
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	userMsg := fmt.Sprintf("DATA:\n%s\n\nQUESTION: %s", dataJSON, question)

	fmt.Fprintln(os.Stdout, "\n─── AI Analysis ─────────────────────────────────────")

	stream := client.Messages.NewStreaming(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(modelID),
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: analyzeSystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userMsg)),
		},
	})

	for stream.Next() {
		evt := stream.Current()
		if evt.Type == "content_block_delta" {
			delta := evt.AsContentBlockDelta()
			if delta.Delta.Type == "text_delta" {
				fmt.Fprint(os.Stdout, delta.Delta.AsTextDelta().Text)
			}
		}
	}
	fmt.Fprintln(os.Stdout, "\n─────────────────────────────────────────────────────")

	if err := stream.Err(); err != nil {
		errStr := err.Error()
		if strings.Contains(errStr, "401") || strings.Contains(errStr, "authentication") {
			return fmt.Errorf("API authentication failed: check your API key")
		}
		return fmt.Errorf("streaming error: %w", err)
	}
	return nil
}

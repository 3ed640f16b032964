package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/pable/go-rl-metrics/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rlmetrics.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

// clearConfigEnvVars drops overrides left by a previous Convey path.
func clearConfigEnvVars() {
	for _, kv := range os.Environ() {
		if name, _, ok := strings.Cut(kv, "="); ok && strings.HasPrefix(name, config.EnvPrefix) {
			_ = os.Unsetenv(name)
		}
	}
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load("")

			convey.Convey("Then the analysis constants match the defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
				convey.So(cfg.KickoffDelaySeconds, convey.ShouldEqual, 2)
				convey.So(cfg.OpeningKickoffSecond, convey.ShouldEqual, 299)
				convey.So(cfg.OvertimeKickoffSecond, convey.ShouldEqual, -1)
				convey.So(cfg.ZoneThreshold, convey.ShouldEqual, 2000.0)
				convey.So(cfg.HeightBounds, convey.ShouldResemble, []float64{120, 250, 600})
				convey.So(cfg.Points.Goal, convey.ShouldEqual, 50)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			t.Setenv("RLMETRICS_ZONE_THRESHOLD", "1800")
			t.Setenv("RLMETRICS_LOG_LEVEL", "debug")
			t.Setenv("RLMETRICS_POINTS_GOAL", "100")

			cfg, err := config.Load("")

			convey.Convey("Then env vars override defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.ZoneThreshold, convey.ShouldEqual, 1800.0)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
				convey.So(cfg.Points.Goal, convey.ShouldEqual, 100)
				convey.So(cfg.Points.Assist, convey.ShouldEqual, 25)
			})
		})

		convey.Convey("When loading config with a YAML file and env vars", func() {
			path := writeConfig(t, `
db_path: /tmp/replays.db
kickoff_delay_seconds: 3
height_bounds: [100, 200, 500]
points:
  goal: 60
  shot: 10
`)
			t.Setenv("RLMETRICS_KICKOFF_DELAY_SECONDS", "4")

			cfg, err := config.Load(path)

			convey.Convey("Then the file overrides defaults and env overrides the file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.DBPath, convey.ShouldEqual, "/tmp/replays.db")
				convey.So(cfg.KickoffDelaySeconds, convey.ShouldEqual, 4)
				convey.So(cfg.HeightBounds, convey.ShouldResemble, []float64{100, 200, 500})
				convey.So(cfg.Points.Goal, convey.ShouldEqual, 60)
				convey.So(cfg.Points.Shot, convey.ShouldEqual, 10)
				convey.So(cfg.Points.Save, convey.ShouldEqual, 25)
			})

			convey.Convey("Then Analysis carries the values to the aggregator", func() {
				a := cfg.Analysis()
				convey.So(a.KickoffDelay, convey.ShouldEqual, 4)
				convey.So(a.HeightBounds, convey.ShouldResemble, [3]float64{100, 200, 500})
				convey.So(a.Points.Goal, convey.ShouldEqual, 60)
			})
		})

		convey.Convey("When the config file path comes from RLMETRICS_CONFIG", func() {
			path := writeConfig(t, "zone_threshold: 1500\n")
			t.Setenv("RLMETRICS_CONFIG", path)

			cfg, err := config.Load("")

			convey.Convey("Then that file is used", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.ZoneThreshold, convey.ShouldEqual, 1500.0)
			})
		})

		convey.Convey("When the height bounds are invalid", func() {
			path := writeConfig(t, "height_bounds: [300, 200, 100]\n")

			_, err := config.Load(path)

			convey.Convey("Then loading fails", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When the config file does not exist", func() {
			_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))

			convey.Convey("Then loading fails", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}

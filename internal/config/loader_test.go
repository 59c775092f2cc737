package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/okian/comfortloop/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8000")
				convey.So(cfg.Control.MinInterval, convey.ShouldEqual, 30*time.Minute)
				convey.So(cfg.Classifier.HotThreshold, convey.ShouldEqual, 35.6)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("COMFORTLOOP_ADDR", ":8080")
			_ = os.Setenv("COMFORTLOOP_LOG_LEVEL", "debug")
			_ = os.Setenv("COMFORTLOOP_CONTROL__MIN_INTERVAL", "10m")
			_ = os.Setenv("COMFORTLOOP_CONTROL__TARGET_HUMIDITY", "55.5")
			_ = os.Setenv("COMFORTLOOP_DEVICE__DRIVER", "mqtt")
			_ = os.Setenv("COMFORTLOOP_DEVICE__MQTT__BROKER", "tcp://broker:1883")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
				convey.So(cfg.Control.MinInterval, convey.ShouldEqual, 10*time.Minute)
				convey.So(cfg.Control.TargetHumidity, convey.ShouldEqual, 55.5)
				convey.So(cfg.Device.Driver, convey.ShouldEqual, config.DeviceMQTT)
				convey.So(cfg.Device.MQTT.Broker, convey.ShouldEqual, "tcp://broker:1883")
				convey.So(cfg.Device.MQTT.StateTopic, convey.ShouldEqual, "comfortloop/ac/state")
				convey.So(cfg.Control.Interval, convey.ShouldEqual, 30*time.Minute)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
addr: ":9090"
control:
  min_interval: 45m
  history_size: 5
classifier:
  cold_threshold: 34.0
  hot_threshold: 36.0
store:
  driver: sqlite
  path: /tmp/comfort.sqlite
`
			tmpFile := createTempConfigFile(t, yamlContent)
			_ = os.Setenv("COMFORTLOOP_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.Control.MinInterval, convey.ShouldEqual, 45*time.Minute)
				convey.So(cfg.Control.HistorySize, convey.ShouldEqual, 5)
				convey.So(cfg.Classifier.ColdThreshold, convey.ShouldEqual, 34.0)
				convey.So(cfg.Classifier.HotThreshold, convey.ShouldEqual, 36.0)
				convey.So(cfg.Store.Driver, convey.ShouldEqual, config.StoreSQLite)
				convey.So(cfg.Store.Path, convey.ShouldEqual, "/tmp/comfort.sqlite")
				convey.So(cfg.Control.Step, convey.ShouldEqual, 0.5)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
addr: ":9090"
control:
  history_size: 5
`
			tmpFile := createTempConfigFile(t, yamlContent)
			_ = os.Setenv("COMFORTLOOP_CONFIG", tmpFile)
			_ = os.Setenv("COMFORTLOOP_ADDR", ":8080")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.Control.HistorySize, convey.ShouldEqual, 5)
			})
		})

		convey.Convey("When the config file does not exist", func() {
			_ = os.Setenv("COMFORTLOOP_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then it should return ErrLoadConfig", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the merged config is invalid", func() {
			_ = os.Setenv("COMFORTLOOP_CLASSIFIER__COLD_THRESHOLD", "40")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then it should return ErrInvalidConfig", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}

func TestLoadDotEnv(t *testing.T) {
	convey.Convey("Given a .env file", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, ".env")
		convey.So(os.WriteFile(path, []byte("COMFORTLOOP_ADDR=:7070\nCOMFORTLOOP_LOG_LEVEL=warn\n"), 0o600), convey.ShouldBeNil)
		defer clearConfigEnvVars()

		convey.Convey("When a variable is already set", func() {
			_ = os.Setenv("COMFORTLOOP_LOG_LEVEL", "error")
			convey.So(config.LoadDotEnv(path), convey.ShouldBeNil)

			convey.Convey("Then the file fills the gaps without overriding", func() {
				convey.So(os.Getenv("COMFORTLOOP_ADDR"), convey.ShouldEqual, ":7070")
				convey.So(os.Getenv("COMFORTLOOP_LOG_LEVEL"), convey.ShouldEqual, "error")
			})
		})

		convey.Convey("When the file is missing", func() {
			convey.So(config.LoadDotEnv(filepath.Join(dir, "nope.env")), convey.ShouldBeNil)
		})
	})
}

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func clearConfigEnvVars() {
	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(key, config.EnvPrefix) {
			_ = os.Unsetenv(key)
		}
	}
}

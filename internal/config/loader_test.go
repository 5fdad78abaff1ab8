package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/breezeapi/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

var configEnvVars = []string{
	"BREEZE_CONFIG",
	"BREEZE_URL",
	"BREEZE_API_KEY",
	"BREEZE_ADDR",
	"BREEZE_LOG_LEVEL",
	"BREEZE_UPSTREAM_TIMEOUT",
	"BREEZE_SHUTDOWN_TIMEOUT",
	"BREEZE_ALLOWED_ORIGINS",
	"breeze_url",
	"api_key",
}

func clearConfigEnvVars() {
	for _, k := range configEnvVars {
		_ = os.Unsetenv(k)
	}
}

func setCredentials() {
	_ = os.Setenv("BREEZE_URL", "https://demo.breezechms.com/")
	_ = os.Setenv("BREEZE_API_KEY", "secret")
}

func createTempConfigFile(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":8000")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.UpstreamTimeout, convey.ShouldEqual, 60*time.Second)
			convey.So(cfg.ShutdownTimeout, convey.ShouldEqual, 30*time.Second)
			convey.So(cfg.AllowedOrigins, convey.ShouldResemble, []string{"*"})
			convey.So(cfg.URL, convey.ShouldBeEmpty)
			convey.So(cfg.APIKey, convey.ShouldBeEmpty)
		})

		convey.Convey("And defaults alone do not validate", func() {
			err := cfg.Validate()
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When credentials are missing", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then loading fails with a configuration error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "BREEZE_URL")
			})
		})

		convey.Convey("When only the api key is missing", func() {
			_ = os.Setenv("BREEZE_URL", "https://demo.breezechms.com")

			cfg, err := config.Load(ctx)

			convey.Convey("Then the api key is reported", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "BREEZE_API_KEY")
			})
		})

		convey.Convey("When the url is not absolute", func() {
			_ = os.Setenv("BREEZE_URL", "demo.breezechms.com")
			_ = os.Setenv("BREEZE_API_KEY", "secret")

			_, err := config.Load(ctx)

			convey.Convey("Then it is rejected", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading with credentials from env", func() {
			setCredentials()
			_ = os.Setenv("BREEZE_ADDR", ":9090")
			_ = os.Setenv("BREEZE_UPSTREAM_TIMEOUT", "15s")
			_ = os.Setenv("BREEZE_ALLOWED_ORIGINS", "https://a.example, https://b.example")

			cfg, err := config.Load(ctx)

			convey.Convey("Then env overrides defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.URL, convey.ShouldEqual, "https://demo.breezechms.com")
				convey.So(cfg.APIKey, convey.ShouldEqual, "secret")
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.UpstreamTimeout, convey.ShouldEqual, 15*time.Second)
				convey.So(cfg.AllowedOrigins, convey.ShouldResemble, []string{"https://a.example", "https://b.example"})
				convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			})
		})

		convey.Convey("When loading with the legacy lower-case names", func() {
			_ = os.Setenv("breeze_url", "https://legacy.breezechms.com")
			_ = os.Setenv("api_key", "legacy")

			cfg, err := config.Load(ctx)

			convey.Convey("Then they are honoured", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.URL, convey.ShouldEqual, "https://legacy.breezechms.com")
				convey.So(cfg.APIKey, convey.ShouldEqual, "legacy")
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
url: "https://file.breezechms.com"
api_key: "from-file"
addr: ":7070"
log_level: debug
upstream_timeout: 5s
`
			_ = os.Setenv("BREEZE_CONFIG", createTempConfigFile(t, yamlContent))

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.URL, convey.ShouldEqual, "https://file.breezechms.com")
				convey.So(cfg.APIKey, convey.ShouldEqual, "from-file")
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
				convey.So(cfg.UpstreamTimeout, convey.ShouldEqual, 5*time.Second)
				convey.So(cfg.ShutdownTimeout, convey.ShouldEqual, 30*time.Second) // From defaults
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
url: "https://file.breezechms.com"
api_key: "from-file"
addr: ":7070"
`
			_ = os.Setenv("BREEZE_CONFIG", createTempConfigFile(t, yamlContent))
			_ = os.Setenv("BREEZE_API_KEY", "from-env")

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.APIKey, convey.ShouldEqual, "from-env")               // Overridden by env
				convey.So(cfg.URL, convey.ShouldEqual, "https://file.breezechms.com") // From file
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")                      // From file
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			_ = os.Setenv("BREEZE_CONFIG", createTempConfigFile(t, `invalid: yaml: content: [`))

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("BREEZE_CONFIG", "/non/existent/file.yaml")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			setCredentials()
			_ = os.Setenv("BREEZE_ADDR", "")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with an invalid duration", func() {
			setCredentials()
			_ = os.Setenv("BREEZE_UPSTREAM_TIMEOUT", "soon")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

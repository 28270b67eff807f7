// Package config loads posthog-filter settings from defaults, an optional
// YAML file, a .env file and POSTHOG_FILTER_* environment variables, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/grez-lucas/posthog-filter/internal/automation/posthog"
	"github.com/grez-lucas/posthog-filter/internal/browser"
)

const (
	EnvPrefix      = "POSTHOG_FILTER"
	ConfigName     = "posthog-filter"
	DefaultEnvFile = ".env"
)

type Config struct {
	Browser    BrowserConfig     `mapstructure:"browser"`
	Automation AutomationConfig  `mapstructure:"automation"`
	Selectors  posthog.Selectors `mapstructure:"selectors"`
	Logger     LoggerConfig      `mapstructure:"logger"`
}

type BrowserConfig struct {
	// Bin is the Chromium executable. Empty lets Rod find or download one.
	Bin         string `mapstructure:"bin"`
	Headless    bool   `mapstructure:"headless"`
	Stealth     bool   `mapstructure:"stealth"`
	ControlURL  string `mapstructure:"control_url"` // attach to a running browser instead of launching
	UserDataDir string `mapstructure:"user_data_dir"`
	WindowSize  string `mapstructure:"window_size"`
}

type AutomationConfig struct {
	Timeout         time.Duration `mapstructure:"timeout"`
	KeystrokeJitter time.Duration `mapstructure:"keystroke_jitter"`
	// Replay serves page requests from a HAR file instead of the network.
	Replay string `mapstructure:"replay"`
	// ReplayPassthrough sends requests missing from the recording to the
	// network instead of answering 404.
	ReplayPassthrough bool `mapstructure:"replay_passthrough"`
}

type LoggerConfig struct {
	Level       string `mapstructure:"level"`
	Format      string `mapstructure:"format"` // console or json
	ServiceName string `mapstructure:"service_name"`
	LogFile     string `mapstructure:"log_file"`
	MaxSize     int    `mapstructure:"max_size"` // megabytes
	MaxBackups  int    `mapstructure:"max_backups"`
	MaxAge      int    `mapstructure:"max_age"` // days
	Compress    bool   `mapstructure:"compress"`
}

// SetDefaults registers every key, which also lets AutomaticEnv override keys
// that appear in no config file.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("browser.bin", "")
	v.SetDefault("browser.headless", false)
	v.SetDefault("browser.stealth", true)
	v.SetDefault("browser.control_url", "")
	v.SetDefault("browser.user_data_dir", "")
	v.SetDefault("browser.window_size", "1920,1080")

	v.SetDefault("automation.timeout", browser.DefaultTimeout)
	v.SetDefault("automation.keystroke_jitter", time.Duration(0))
	v.SetDefault("automation.replay", "")
	v.SetDefault("automation.replay_passthrough", false)

	sel := posthog.DefaultSelectors()
	v.SetDefault("selectors.date_range_button", sel.DateRangeButton)
	v.SetDefault("selectors.date_option", sel.DateOption)
	v.SetDefault("selectors.duration_button", sel.DurationButton)
	v.SetDefault("selectors.duration_input", sel.DurationInput)
	v.SetDefault("selectors.toolbar_button", sel.ToolbarButton)
	v.SetDefault("selectors.filter_panel", sel.FilterPanel)
	v.SetDefault("selectors.filter_search_field", sel.FilterSearchField)
	v.SetDefault("selectors.filter_result_row", sel.FilterResultRow)
	v.SetDefault("selectors.filter_value_input", sel.FilterValueInput)
	v.SetDefault("selectors.all_time_text", sel.AllTimeText)
	v.SetDefault("selectors.add_filter_text", sel.AddFilterText)
	v.SetDefault("selectors.session_id_text", sel.SessionIDText)
	v.SetDefault("selectors.min_duration", sel.MinDuration)
	v.SetDefault("selectors.filter_query", sel.FilterQuery)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.service_name", "posthog-filter")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 10)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 28)
	v.SetDefault("logger.compress", false)
}

// Load builds the configuration. cfgFile may be empty, in which case
// ./posthog-filter.yaml is read if present. envFile is loaded into the
// process environment first when it exists.
func Load(v *viper.Viper, cfgFile, envFile string) (*Config, error) {
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return nil, fmt.Errorf("load %s: %w", envFile, err)
			}
		}
	}

	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects settings the automation cannot run with.
func (c *Config) Validate() error {
	if c.Automation.Timeout <= 0 {
		return fmt.Errorf("automation.timeout must be positive, got %s", c.Automation.Timeout)
	}
	if c.Automation.KeystrokeJitter < 0 {
		return fmt.Errorf("automation.keystroke_jitter must not be negative, got %s", c.Automation.KeystrokeJitter)
	}
	switch c.Logger.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logger.format must be console or json, got %q", c.Logger.Format)
	}
	return nil
}

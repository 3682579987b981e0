package config

import (
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"autotable/domain/variable"
	"autotable/internal/errors"
)

// EnvPrefix prefixes every environment override, e.g. AUTOTABLE_OUTPUT_DIR
const EnvPrefix = "AUTOTABLE"

// Config holds application settings. Report definitions live in their
// own file, see LoadReports.
type Config struct {
	LogLevel    string    `mapstructure:"log_level" yaml:"log_level" validate:"required,oneof=ERROR WARN INFO DEBUG TRACE error warn info debug trace"`
	OutputDir   string    `mapstructure:"output_dir" yaml:"output_dir" validate:"required"`
	Worksheet   string    `mapstructure:"worksheet" yaml:"worksheet" validate:"required,max=31"`
	FileName    string    `mapstructure:"file_name" yaml:"file_name" validate:"required"`
	Pctiles     []float64 `mapstructure:"pctiles" yaml:"pctiles" validate:"required,min=2"`
	MaxParallel int       `mapstructure:"max_parallel" yaml:"max_parallel" validate:"gte=1,lte=64"`
	DatabaseURL string    `mapstructure:"database_url" yaml:"database_url"`
	HTMLPreview bool      `mapstructure:"html_preview" yaml:"html_preview"`
	Sheet       string    `mapstructure:"sheet" yaml:"sheet"`
}

var validate = validator.New()

// Load reads settings with precedence env > config file > defaults. An
// explicit cfgFile must exist; without one ./autotable.yaml is read if
// present.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetDefault("log_level", "INFO")
	v.SetDefault("output_dir", ".")
	v.SetDefault("worksheet", "Main")
	v.SetDefault("file_name", "_Results")
	v.SetDefault("pctiles", variable.DefaultPctiles)
	v.SetDefault("max_parallel", 4)
	v.SetDefault("database_url", "")
	v.SetDefault("html_preview", false)
	v.SetDefault("sheet", "")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(errors.ConfigInvalid(err.Error()), "failed to read %s", cfgFile)
		}
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("autotable")
		v.SetConfigType("yaml")
		_ = v.ReadInConfig()
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, errors.Wrap(errors.ConfigInvalid(err.Error()), "failed to unmarshal configuration")
	}

	// unprefixed fallbacks
	if c.DatabaseURL == "" {
		c.DatabaseURL = getEnvOrDefault("DATABASE_URL", "")
	}
	if os.Getenv(EnvPrefix+"_LOG_LEVEL") == "" {
		c.LogLevel = getEnvOrDefault("LOG_LEVEL", c.LogLevel)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks field constraints and the percentile list
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ConfigInvalid(err.Error()), "configuration validation failed")
	}
	if err := variable.ValidatePctiles("pctiles", c.Pctiles); err != nil {
		return errors.FromDomain(err, "configuration validation failed")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

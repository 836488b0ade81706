package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/income-predict/internal/controller"
)

// Config holds the full application configuration.
type Config struct {
	Classifier ClassifierConfig `yaml:"classifier" mapstructure:"classifier"`
	Form       FormConfig       `yaml:"form" mapstructure:"form"`
	Batch      BatchConfig      `yaml:"batch" mapstructure:"batch"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// ClassifierConfig points at the income classification service.
type ClassifierConfig struct {
	BaseURL      string            `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs  int               `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	DefaultModel string            `yaml:"default_model" mapstructure:"default_model"`
	Endpoints    map[string]string `yaml:"endpoints" mapstructure:"endpoints"`
}

// FormConfig selects the form variant.
type FormConfig struct {
	Variant string `yaml:"variant" mapstructure:"variant"`
}

// BatchConfig configures CSV batch classification.
type BatchConfig struct {
	Concurrency int     `yaml:"concurrency" mapstructure:"concurrency"`
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("INCOME")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("classifier.base_url", "http://localhost:8000")
	v.SetDefault("classifier.timeout_secs", 30)
	v.SetDefault("classifier.default_model", string(controller.DefaultModel))
	v.SetDefault("classifier.endpoints", defaultEndpoints())
	v.SetDefault("form.variant", "full")
	v.SetDefault("batch.concurrency", 4)
	v.SetDefault("batch.rate_per_sec", 5.0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

func defaultEndpoints() map[string]string {
	out := make(map[string]string)
	for m, path := range controller.DefaultEndpoints() {
		out[string(m)] = path
	}
	return out
}

// Endpoints returns the configured model routes.
func (c *Config) Endpoints() controller.Endpoints {
	return controller.EndpointsFromMap(c.Classifier.Endpoints)
}

// Validate reports every setting that would keep a form from submitting.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Classifier.BaseURL) == "" {
		problems = append(problems, "classifier.base_url is required")
	}
	if c.Classifier.TimeoutSecs <= 0 {
		problems = append(problems, "classifier.timeout_secs must be > 0")
	}
	if len(c.Classifier.Endpoints) == 0 {
		problems = append(problems, "classifier.endpoints is required")
	} else if _, ok := c.Classifier.Endpoints[c.Classifier.DefaultModel]; !ok {
		problems = append(problems, fmt.Sprintf("classifier.default_model %q has no endpoint", c.Classifier.DefaultModel))
	}
	if _, err := controller.LookupVariant(c.Form.Variant); err != nil {
		problems = append(problems, fmt.Sprintf("form.variant %q is unknown (want one of %s)",
			c.Form.Variant, strings.Join(controller.VariantNames(), ", ")))
	}
	if c.Batch.Concurrency < 1 || c.Batch.Concurrency > 64 {
		problems = append(problems, "batch.concurrency must be between 1 and 64")
	}
	if c.Batch.RatePerSec < 0 {
		problems = append(problems, "batch.rate_per_sec must be >= 0")
	}

	if len(problems) > 0 {
		return eris.Errorf("config: invalid: %s", strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/income-predict/internal/config"
	"github.com/sells-group/income-predict/internal/controller"
	"github.com/sells-group/income-predict/pkg/classifier"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "income-predict",
	Short: "Fill and submit income classification forms",
	Long:  "Collects census-style form fields, validates them locally, and asks the income classification service whether income exceeds $50K.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := c.Validate(); err != nil {
			return fmt.Errorf("validate config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
	SilenceUsage: true,
}

// newClient builds the classification client from configuration.
func newClient(c *config.Config) classifier.Client {
	return classifier.NewClient(c.Classifier.BaseURL,
		classifier.WithTimeout(time.Duration(c.Classifier.TimeoutSecs)*time.Second),
	)
}

// resolveVariant picks the flag value over the configured variant.
func resolveVariant(c *config.Config, flag string) (controller.Variant, error) {
	name := c.Form.Variant
	if flag != "" {
		name = flag
	}
	return controller.LookupVariant(name)
}

// resolveModel picks the flag value over the configured default model.
func resolveModel(c *config.Config, flag string) controller.Model {
	if flag != "" {
		return controller.Model(flag)
	}
	return controller.Model(c.Classifier.DefaultModel)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

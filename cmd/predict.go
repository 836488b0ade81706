package main

import (
	"context"
	"errors"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/income-predict/internal/config"
	"github.com/sells-group/income-predict/internal/controller"
	"github.com/sells-group/income-predict/internal/form"
	"github.com/sells-group/income-predict/internal/prompt"
	"github.com/sells-group/income-predict/pkg/classifier"
)

// predictOptions holds the predict command's inputs.
type predictOptions struct {
	Sets        []string
	ValuesFile  string
	Interactive bool
	Model       string
	Variant     string
	Output      string
}

var predictFlags predictOptions

// errPredictionFailed is returned after a failed submission has been rendered.
var errPredictionFailed = eris.New("prediction failed")

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Fill one form and submit it",
	Long: `Fills a form from --values, --set and (optionally) interactive prompts,
validates it, and submits it to the selected model.

Examples:
  # Minimal form from flags
  income-predict predict --variant minimal --set age=29 --set occupation=Sales

  # Full form from a YAML file, random forest model, JSON output
  income-predict predict --values person.yaml --model rf --output json

  # Prompt for every field
  income-predict predict --interactive`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		var driver prompt.Driver
		if predictFlags.Interactive {
			driver = prompt.NewSurvey(cmd.ErrOrStderr())
		}
		return runPredict(cmd.Context(), cmd.OutOrStdout(), cfg, newClient(cfg), driver, predictFlags)
	},
}

func init() {
	predictCmd.Flags().StringArrayVar(&predictFlags.Sets, "set", nil, "field=value assignment (repeatable)")
	predictCmd.Flags().StringVar(&predictFlags.ValuesFile, "values", "", "YAML file of field values")
	predictCmd.Flags().BoolVarP(&predictFlags.Interactive, "interactive", "i", false, "prompt for every field")
	predictCmd.Flags().StringVar(&predictFlags.Model, "model", "", "model selector (default: classifier.default_model)")
	predictCmd.Flags().StringVar(&predictFlags.Variant, "variant", "", "form variant: full, reduced or minimal (default: form.variant)")
	predictCmd.Flags().StringVarP(&predictFlags.Output, "output", "o", outputText, "output format: text or json")
	rootCmd.AddCommand(predictCmd)
}

// runPredict fills one controller, submits it and renders the outcome. A
// nil driver skips interactive prompting.
func runPredict(ctx context.Context, out io.Writer, c *config.Config, client classifier.Client, driver prompt.Driver, opts predictOptions) error {
	if err := checkOutput(opts.Output); err != nil {
		return err
	}
	variant, err := resolveVariant(c, opts.Variant)
	if err != nil {
		return err
	}

	ctrl, err := controller.New(variant, client,
		controller.WithEndpoints(c.Endpoints()),
		controller.WithModel(resolveModel(c, opts.Model)),
	)
	if err != nil {
		return eris.Wrap(err, "predict: init form")
	}

	if opts.ValuesFile != "" {
		vals, err := form.LoadValuesYAML(opts.ValuesFile)
		if err != nil {
			return err
		}
		if err := ctrl.SetAll(vals); err != nil {
			return eris.Wrap(err, "predict: apply values file")
		}
	}
	if len(opts.Sets) > 0 {
		vals, err := form.ParseAssignments(opts.Sets)
		if err != nil {
			return err
		}
		if err := ctrl.SetAll(vals); err != nil {
			return eris.Wrap(err, "predict: apply --set")
		}
	}

	var state controller.State
	if driver != nil {
		if opts.Model == "" {
			if err := prompt.ChooseModel(ctx, ctrl, driver, c.Endpoints().Models()); err != nil {
				return err
			}
		}
		state, err = prompt.Run(ctx, ctrl, driver, prompt.DefaultAttempts)
	} else {
		state, err = ctrl.Submit(ctx)
	}

	var verr *form.ValidationError
	if errors.As(err, &verr) {
		if rerr := renderValidation(out, opts.Output, verr); rerr != nil {
			return rerr
		}
		return eris.Wrap(err, "predict: invalid form")
	}
	if err != nil {
		return err
	}

	zap.L().Debug("predict: submitted",
		zap.String("variant", variant.Name),
		zap.String("model", string(ctrl.Model())),
		zap.String("status", state.Status.String()),
	)

	if err := renderState(out, opts.Output, variant.Schema, state); err != nil {
		return err
	}
	if state.Status == controller.StatusFailed {
		return errPredictionFailed
	}
	return nil
}

package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/income-predict/internal/batch"
	"github.com/sells-group/income-predict/internal/config"
	"github.com/sells-group/income-predict/internal/monitoring"
	"github.com/sells-group/income-predict/pkg/classifier"
)

// batchOptions holds the batch command's inputs.
type batchOptions struct {
	CSV         string
	Output      string
	Variant     string
	Model       string
	Concurrency int
	Limit       int
	MetricsFile string
}

var batchFlags batchOptions

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Classify every row of a CSV",
	Long: `Reads a CSV whose header names form fields (plus an optional "model"
column), submits each row through its own form, and writes the rows back with
status, income_chance and error columns.

Examples:
  income-predict batch --csv people.csv --variant reduced --output results.csv
  income-predict batch --csv people.csv --limit 10 --metrics-file /var/lib/node_exporter/income.prom`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return runBatch(ctx, cmd.OutOrStdout(), cfg, newClient(cfg), batchFlags)
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchFlags.CSV, "csv", "", "path to input CSV (required)")
	batchCmd.Flags().StringVar(&batchFlags.Output, "output", "", "write results CSV to file (default: stdout)")
	batchCmd.Flags().StringVar(&batchFlags.Variant, "variant", "", "form variant (default: form.variant)")
	batchCmd.Flags().StringVar(&batchFlags.Model, "model", "", "model for rows without a model column (default: classifier.default_model)")
	batchCmd.Flags().IntVar(&batchFlags.Concurrency, "concurrency", 0, "rows in flight at once (default: batch.concurrency)")
	batchCmd.Flags().IntVar(&batchFlags.Limit, "limit", 0, "max rows to process (0 = all)")
	batchCmd.Flags().StringVar(&batchFlags.MetricsFile, "metrics-file", "", "write Prometheus metrics textfile after the run")
	_ = batchCmd.MarkFlagRequired("csv")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(ctx context.Context, stdout io.Writer, c *config.Config, client classifier.Client, opts batchOptions) error {
	variant, err := resolveVariant(c, opts.Variant)
	if err != nil {
		return err
	}

	rows, err := batch.LoadCSV(opts.CSV, variant.Schema)
	if err != nil {
		return err
	}
	zap.L().Info("batch: parsed csv", zap.Int("rows", len(rows)))

	if opts.Limit > 0 && opts.Limit < len(rows) {
		rows = rows[:opts.Limit]
	}

	concurrency := c.Batch.Concurrency
	if opts.Concurrency > 0 {
		concurrency = opts.Concurrency
	}

	metrics := monitoring.NewMetrics()
	outcomes, summary, runErr := batch.Run(ctx, rows, batch.Options{
		Variant:      variant,
		Client:       client,
		Endpoints:    c.Endpoints(),
		DefaultModel: resolveModel(c, opts.Model),
		Concurrency:  concurrency,
		RatePerSec:   c.Batch.RatePerSec,
		Recorder:     metrics,
	})
	if outcomes == nil {
		return runErr
	}

	out := stdout
	if opts.Output != "" {
		f, err := os.Create(opts.Output)
		if err != nil {
			return eris.Wrapf(err, "batch: create %s", opts.Output)
		}
		defer f.Close() //nolint:errcheck
		out = f
	}
	if err := batch.WriteCSV(out, variant.Schema, outcomes); err != nil {
		return err
	}

	if opts.MetricsFile != "" {
		if err := metrics.WriteTextfile(opts.MetricsFile); err != nil {
			return err
		}
		zap.L().Info("batch: metrics written", zap.String("path", opts.MetricsFile))
	}

	if runErr != nil {
		return eris.Wrapf(runErr, "batch: stopped after %d of %d rows", ranRows(outcomes), summary.Total)
	}
	return nil
}

// ranRows counts the rows that produced an outcome before the run stopped.
func ranRows(outcomes []batch.Outcome) int {
	n := 0
	for _, o := range outcomes {
		if !errors.Is(o.Err, batch.ErrNotRun) {
			n++
		}
	}
	return n
}

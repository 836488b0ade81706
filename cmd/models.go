package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/income-predict/internal/config"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List model selectors and their endpoints",
	RunE: func(cmd *cobra.Command, _ []string) error {
		formatModels(cmd.OutOrStdout(), cfg)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}

// formatModels writes the model routing table to w, marking the default.
func formatModels(out io.Writer, c *config.Config) {
	endpoints := c.Endpoints()

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "MODEL\tENDPOINT\tDEFAULT")
	_, _ = fmt.Fprintln(w, "-----\t--------\t-------")
	for _, m := range endpoints.Models() {
		def := ""
		if string(m) == c.Classifier.DefaultModel {
			def = "*"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", m, endpoints[m], def)
	}
	_ = w.Flush()
	_, _ = fmt.Fprintf(out, "\nbase url: %s\n", c.Classifier.BaseURL)
}

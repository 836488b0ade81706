package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/income-predict/internal/form"
)

var (
	schemaVariant string
	schemaOutput  string
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Show the fields of a form variant",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := checkOutput(schemaOutput); err != nil {
			return err
		}
		variant, err := resolveVariant(cfg, schemaVariant)
		if err != nil {
			return err
		}
		if schemaOutput == outputJSON {
			return writeJSON(cmd.OutOrStdout(), schemaRows(variant.Schema))
		}
		formatSchema(cmd.OutOrStdout(), variant.Schema)
		return nil
	},
}

func init() {
	schemaCmd.Flags().StringVar(&schemaVariant, "variant", "", "form variant (default: form.variant)")
	schemaCmd.Flags().StringVarP(&schemaOutput, "output", "o", outputText, "output format: text or json")
	rootCmd.AddCommand(schemaCmd)
}

type schemaRow struct {
	Name     string   `json:"name"`
	Label    string   `json:"label"`
	Kind     string   `json:"kind"`
	Required bool     `json:"required"`
	Min      *int     `json:"min,omitempty"`
	Allowed  []string `json:"allowed,omitempty"`
}

func schemaRows(s *form.Schema) []schemaRow {
	fields := s.Fields()
	rows := make([]schemaRow, 0, len(fields))
	for _, f := range fields {
		r := schemaRow{
			Name:     f.Name,
			Label:    f.Title(),
			Kind:     f.Kind.String(),
			Required: f.Required,
			Allowed:  f.Allowed,
		}
		if f.HasMin {
			m := f.Min
			r.Min = &m
		}
		rows = append(rows, r)
	}
	return rows
}

// formatSchema writes a table of fields to w.
func formatSchema(out io.Writer, s *form.Schema) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "FIELD\tLABEL\tKIND\tREQUIRED\tMIN\tALLOWED")
	_, _ = fmt.Fprintln(w, "-----\t-----\t----\t--------\t---\t-------")

	for _, r := range schemaRows(s) {
		minVal := ""
		if r.Min != nil {
			minVal = strconv.Itoa(*r.Min)
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\t%s\n",
			r.Name,
			r.Label,
			r.Kind,
			r.Required,
			minVal,
			strings.Join(r.Allowed, ", "),
		)
	}
	_ = w.Flush()
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rotisserie/eris"

	"github.com/sells-group/income-predict/internal/controller"
	"github.com/sells-group/income-predict/internal/form"
)

// Output formats.
const (
	outputText = "text"
	outputJSON = "json"
)

func checkOutput(format string) error {
	switch format {
	case outputText, outputJSON:
		return nil
	default:
		return eris.Errorf("unknown output format %q (want text or json)", format)
	}
}

// renderState writes the submission outcome in the requested format.
func renderState(out io.Writer, format string, schema *form.Schema, s controller.State) error {
	if format == outputJSON {
		return writeJSON(out, s)
	}

	switch s.Status {
	case controller.StatusSucceeded:
		formatResult(out, schema, s.Result)
	case controller.StatusFailed:
		_, _ = fmt.Fprintf(out, "Error: %s\n", s.Message)
	case controller.StatusPending:
		_, _ = fmt.Fprintln(out, "Submitting...")
	}
	return nil
}

// renderValidation writes the first validation failure.
func renderValidation(out io.Writer, format string, verr *form.ValidationError) error {
	if format == outputJSON {
		return writeJSON(out, verr)
	}
	_, _ = fmt.Fprintf(out, "Error: %s\n", verr.Message)
	return nil
}

// formatResult writes a prediction and the inputs it was made from, in
// schema order.
func formatResult(out io.Writer, schema *form.Schema, r *controller.Result) {
	_, _ = fmt.Fprintln(out, r.Message)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if r.Model != "" {
		_, _ = fmt.Fprintf(w, "Model:\t%s\n", r.Model)
	}
	_, _ = fmt.Fprintf(w, "Income Chance:\t%s\n", r.IncomeChance)
	_ = w.Flush()

	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, "Submitted Information:")
	inputs := form.FromPayload(r.Inputs)
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, f := range schema.Fields() {
		v, ok := inputs[f.Name]
		if !ok {
			continue
		}
		_, _ = fmt.Fprintf(w, "  %s:\t%s\n", f.Title(), v)
	}
	_ = w.Flush()
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return eris.Wrap(err, "encode json")
	}
	return nil
}

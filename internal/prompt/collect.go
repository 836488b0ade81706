package prompt

import (
	"context"
	"errors"
	"fmt"

	"github.com/rotisserie/eris"

	"github.com/sells-group/income-predict/internal/controller"
	"github.com/sells-group/income-predict/internal/form"
)

// DefaultAttempts bounds how many times Run re-asks invalid fields.
const DefaultAttempts = 5

// Ask prompts for a single field and stores the answer on ctrl.
func Ask(ctx context.Context, ctrl *controller.Controller, d Driver, f form.Field) error {
	current := ctrl.Value(f.Name)

	switch f.Kind {
	case form.KindEnum:
		idx, err := d.Select(ctx, SelectConfig{
			Message:      f.Title(),
			Options:      f.Allowed,
			DefaultIndex: indexOf(f.Allowed, current),
			PageSize:     10,
		})
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(f.Allowed) {
			return eris.Errorf("prompt: no option chosen for %s", f.Name)
		}
		return ctrl.Set(f.Name, f.Allowed[idx])

	case form.KindNumeric:
		help := "digits only"
		if f.HasMin {
			help = fmt.Sprintf("digits only, at least %d", f.Min)
		}
		answer, err := d.Input(ctx, InputConfig{
			Message: f.Title(),
			Default: current,
			Help:    help,
			Validator: func(s string) error {
				if !form.IsDigits(s) {
					return form.ErrNotDigits
				}
				return nil
			},
		})
		if err != nil {
			return err
		}
		return ctrl.SetNumeric(f.Name, answer)

	default:
		answer, err := d.Input(ctx, InputConfig{Message: f.Title(), Default: current})
		if err != nil {
			return err
		}
		return ctrl.Set(f.Name, answer)
	}
}

// Collect prompts for every field of the controller's variant, in schema order.
func Collect(ctx context.Context, ctrl *controller.Controller, d Driver) error {
	for _, f := range ctrl.Variant().Schema.Fields() {
		if err := Ask(ctx, ctrl, d, f); err != nil {
			return err
		}
	}
	return nil
}

// ChooseModel asks which model to submit to.
func ChooseModel(ctx context.Context, ctrl *controller.Controller, d Driver, models []controller.Model) error {
	if len(models) == 0 {
		return eris.New("prompt: no models to choose from")
	}
	options := make([]string, len(models))
	current := 0
	for i, m := range models {
		options[i] = string(m)
		if m == ctrl.Model() {
			current = i
		}
	}
	idx, err := d.Select(ctx, SelectConfig{Message: "Model", Options: options, DefaultIndex: current})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(models) {
		return eris.New("prompt: no model chosen")
	}
	return ctrl.SelectModel(models[idx])
}

// Run collects every field, submits, and re-asks the offending field while
// validation fails, up to attempts times. The returned error is the last
// validation error when attempts run out.
func Run(ctx context.Context, ctrl *controller.Controller, d Driver, attempts int) (controller.State, error) {
	if attempts <= 0 {
		attempts = DefaultAttempts
	}
	if err := Collect(ctx, ctrl, d); err != nil {
		return ctrl.State(), err
	}

	for i := 0; ; i++ {
		state, err := ctrl.Submit(ctx)
		var verr *form.ValidationError
		if !errors.As(err, &verr) {
			return state, err
		}
		if i+1 >= attempts {
			return state, err
		}
		if err := d.Info(ctx, verr.Message); err != nil {
			return state, err
		}
		f, ok := ctrl.Variant().Schema.Field(verr.Field)
		if !ok {
			return state, err
		}
		if err := Ask(ctx, ctrl, d, f); err != nil {
			return state, err
		}
	}
}

package controller

import (
	"sort"

	"github.com/rotisserie/eris"

	"github.com/sells-group/income-predict/internal/form"
)

// Model selects which classifier the form is submitted to.
type Model string

// Built-in models.
const (
	ModelRandomForest       Model = "rf"
	ModelLogisticRegression Model = "log-reg"
	ModelNeuralNetwork      Model = "nn"
)

// DefaultModel is preselected on a new form.
const DefaultModel = ModelLogisticRegression

// Endpoints maps a model selector to its service route.
type Endpoints map[Model]string

// DefaultEndpoints returns the service routes of the built-in models.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		ModelRandomForest:       "/predict/rf",
		ModelLogisticRegression: "/predict/log-reg",
		ModelNeuralNetwork:      "/predict/nn",
	}
}

// EndpointsFromMap converts a config map into Endpoints.
func EndpointsFromMap(m map[string]string) Endpoints {
	out := make(Endpoints, len(m))
	for k, v := range m {
		out[Model(k)] = v
	}
	return out
}

// Models returns the selectors in e, sorted.
func (e Endpoints) Models() []Model {
	out := make([]Model, 0, len(e))
	for m := range e {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Variant is one form flavour: its fields and how its responses are shown.
type Variant struct {
	Name   string
	Schema *form.Schema
	Mapper Mapper
}

// Variant names.
const (
	VariantFull    = "full"
	VariantReduced = "reduced"
	VariantMinimal = "minimal"
)

// Built-in threshold recoding.
const (
	HighIncomeLabel = ">50K"
	HighChance      = "High"
	LowChance       = "Low"
)

// FullVariant is the ten-field form; it shows the raw prediction label.
func FullVariant() Variant {
	return Variant{
		Name:   VariantFull,
		Schema: form.FullSchema(),
		Mapper: Label(MapperConfig{}),
	}
}

// ReducedVariant shows the prediction as a percentage.
func ReducedVariant() Variant {
	return Variant{
		Name:   VariantReduced,
		Schema: form.ReducedSchema(),
		Mapper: Percentage(MapperConfig{}),
	}
}

// MinimalVariant recodes the label into High/Low.
func MinimalVariant() Variant {
	return Variant{
		Name:   VariantMinimal,
		Schema: form.MinimalSchema(),
		Mapper: Threshold(MapperConfig{Echo: []string{form.FieldAge, form.FieldOccupation}}, HighIncomeLabel, HighChance, LowChance),
	}
}

// VariantNames lists the built-in variants.
func VariantNames() []string {
	return []string{VariantFull, VariantReduced, VariantMinimal}
}

// LookupVariant returns a built-in variant by name.
func LookupVariant(name string) (Variant, error) {
	switch name {
	case VariantFull:
		return FullVariant(), nil
	case VariantReduced:
		return ReducedVariant(), nil
	case VariantMinimal:
		return MinimalVariant(), nil
	default:
		return Variant{}, eris.Errorf("controller: unknown form variant %q", name)
	}
}

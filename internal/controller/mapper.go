package controller

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/sells-group/income-predict/internal/form"
)

// PredictionField is the response field holding the model output.
const PredictionField = "prediction"

// SuccessMessage accompanies every successful result.
const SuccessMessage = "Prediction successful"

// Mapper turns the payload that was sent and the decoded response body into a
// displayable result. A body without a usable prediction yields a
// *ResponseShapeError.
type Mapper func(sent form.Payload, body map[string]any) (*Result, error)

// MapperConfig selects the response field and which submitted fields are
// echoed back in the result. An empty Echo echoes every submitted field.
type MapperConfig struct {
	Field string
	Echo  []string
}

func (c MapperConfig) field() string {
	if c.Field == "" {
		return PredictionField
	}
	return c.Field
}

func (c MapperConfig) build(sent form.Payload, body map[string]any, chance string) *Result {
	inputs := sent.Clone()
	if len(c.Echo) > 0 {
		inputs = make(form.Payload, len(c.Echo))
		for _, name := range c.Echo {
			if v, ok := sent[name]; ok {
				inputs[name] = v
			}
		}
	}
	model, _ := body["model"].(string)
	return &Result{
		Message:      SuccessMessage,
		Model:        model,
		Inputs:       inputs,
		IncomeChance: chance,
	}
}

// Label passes the prediction label through as the display string.
func Label(cfg MapperConfig) Mapper {
	return func(sent form.Payload, body map[string]any) (*Result, error) {
		raw, ok := body[cfg.field()]
		if !ok || raw == nil {
			return nil, &ResponseShapeError{Field: cfg.field()}
		}
		var label string
		switch v := raw.(type) {
		case string:
			label = v
		case float64:
			label = formatNumber(v)
		case bool:
			label = strconv.FormatBool(v)
		default:
			return nil, &ResponseShapeError{Field: cfg.field(), Reason: "is not a label"}
		}
		return cfg.build(sent, body, label), nil
	}
}

// Threshold recodes a label: positive maps to high, anything else to low.
func Threshold(cfg MapperConfig, positive, high, low string) Mapper {
	return func(sent form.Payload, body map[string]any) (*Result, error) {
		raw, ok := body[cfg.field()]
		if !ok || raw == nil {
			return nil, &ResponseShapeError{Field: cfg.field()}
		}
		label, ok := raw.(string)
		if !ok {
			return nil, &ResponseShapeError{Field: cfg.field(), Reason: "is not a label"}
		}
		chance := low
		if strings.TrimSpace(label) == positive {
			chance = high
		}
		return cfg.build(sent, body, chance), nil
	}
}

// Percentage treats the prediction as a number and appends "%".
func Percentage(cfg MapperConfig) Mapper {
	return func(sent form.Payload, body map[string]any) (*Result, error) {
		raw, ok := body[cfg.field()]
		if !ok || raw == nil {
			return nil, &ResponseShapeError{Field: cfg.field()}
		}
		var n float64
		switch v := raw.(type) {
		case float64:
			n = v
		case json.Number:
			f, err := v.Float64()
			if err != nil {
				return nil, &ResponseShapeError{Field: cfg.field(), Reason: "is not a number"}
			}
			n = f
		case string:
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return nil, &ResponseShapeError{Field: cfg.field(), Reason: "is not a number"}
			}
			n = f
		default:
			return nil, &ResponseShapeError{Field: cfg.field(), Reason: "is not a number"}
		}
		return cfg.build(sent, body, formatNumber(n)+"%"), nil
	}
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

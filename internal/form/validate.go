package form

import (
	"fmt"
	"strconv"
	"strings"
)

// Payload is a validated, coerced form: numeric fields hold int, every other
// field holds string. It is the JSON body sent to the classification service.
type Payload map[string]any

// Clone returns a shallow copy of p.
func (p Payload) Clone() Payload {
	if p == nil {
		return nil
	}
	out := make(Payload, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Rule identifies which check a field failed.
type Rule string

// Validation rules, in the order they are checked.
const (
	RuleRequired Rule = "required"
	RuleNumber   Rule = "number"
	RuleMin      Rule = "min"
	RuleAllowed  Rule = "allowed"
)

// ValidationError is the first rule violation found in a form.
type ValidationError struct {
	Field   string `json:"field"`
	Rule    Rule   `json:"rule"`
	Message string `json:"error"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Result is the outcome of validating a form. Exactly one of Payload and Err
// is set.
type Result struct {
	Payload Payload
	Err     *ValidationError
}

// Valid reports whether validation succeeded.
func (r Result) Valid() bool {
	return r.Err == nil
}

// Message returns the validation message, or "" when valid.
func (r Result) Message() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Message
}

// Validate checks values against the schema and coerces them.
//
// Checks run in three passes over the fields in definition order: required
// fields present, numeric fields parse and clear their minimum, enum fields
// hold an allowed value. The first violation ends validation. Empty optional
// fields are left out of the payload.
func (s *Schema) Validate(values Values) Result {
	for _, f := range s.fields {
		if f.Required && isBlank(values[f.Name]) {
			return invalid(f, RuleRequired, fmt.Sprintf("%s is required", f.Label()))
		}
	}

	payload := make(Payload, len(s.fields))

	for _, f := range s.fields {
		if f.Kind != KindNumeric || isBlank(values[f.Name]) {
			continue
		}
		raw := strings.TrimSpace(values[f.Name])
		if !IsDigits(raw) {
			return invalid(f, RuleNumber, fmt.Sprintf("%s must be a number", f.Label()))
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return invalid(f, RuleNumber, fmt.Sprintf("%s must be a number", f.Label()))
		}
		if f.HasMin && n < f.Min {
			return invalid(f, RuleMin, fmt.Sprintf("%s must be greater than or equal to %d", f.Label(), f.Min))
		}
		payload[f.Name] = n
	}

	for _, f := range s.fields {
		if f.Kind != KindEnum || isBlank(values[f.Name]) {
			continue
		}
		if !f.Allows(values[f.Name]) {
			return invalid(f, RuleAllowed, fmt.Sprintf("%s must be one of the allowed values", f.Label()))
		}
	}

	for _, f := range s.fields {
		raw := values[f.Name]
		if f.Kind == KindNumeric || isBlank(raw) {
			continue
		}
		payload[f.Name] = raw
	}

	return Result{Payload: payload}
}

func invalid(f Field, rule Rule, msg string) Result {
	return Result{Err: &ValidationError{Field: f.Name, Rule: rule, Message: msg}}
}

// isBlank treats whitespace-only input the same as an untouched field.
func isBlank(raw string) bool {
	return strings.TrimSpace(raw) == ""
}

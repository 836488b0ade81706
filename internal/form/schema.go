// Package form defines form field schemas, raw form values and the validator
// that coerces raw input into a submittable payload.
package form

import (
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Kind is the value kind of a form field.
type Kind int

const (
	// KindText passes the raw value through as a string.
	KindText Kind = iota
	// KindNumeric coerces the raw value to an integer.
	KindNumeric
	// KindEnum requires the raw value to be one of the allowed values.
	KindEnum
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumeric:
		return "numeric"
	case KindEnum:
		return "enum"
	default:
		return "unknown"
	}
}

// Field describes one input of a form.
type Field struct {
	Name     string
	Kind     Kind
	Required bool

	// Min is the inclusive lower bound for numeric fields. Only checked
	// when HasMin is set.
	Min    int
	HasMin bool

	// Allowed lists the accepted values of an enum field, in display order.
	Allowed []string
}

// Label is the human form of the field name used in messages.
func (f Field) Label() string {
	return strings.ReplaceAll(f.Name, "_", " ")
}

// Title is the label in title case, for prompts and rendered output.
func (f Field) Title() string {
	return cases.Title(language.English).String(f.Label())
}

// Allows reports whether value is one of the field's allowed values.
func (f Field) Allows(value string) bool {
	for _, a := range f.Allowed {
		if a == value {
			return true
		}
	}
	return false
}

// Numeric returns a required numeric field with an inclusive minimum.
func Numeric(name string, minimum int) Field {
	return Field{Name: name, Kind: KindNumeric, Required: true, Min: minimum, HasMin: true}
}

// Enum returns a required enum field.
func Enum(name string, allowed ...string) Field {
	return Field{Name: name, Kind: KindEnum, Required: true, Allowed: allowed}
}

// Text returns a required free-text field.
func Text(name string) Field {
	return Field{Name: name, Kind: KindText, Required: true}
}

// Optional returns a copy of f that may be left empty.
func (f Field) Optional() Field {
	f.Required = false
	return f
}

// Schema is an immutable, ordered set of fields. The definition order is the
// order in which validation checks run.
type Schema struct {
	fields []Field
	index  map[string]int
}

// DefineSchema builds a Schema from fields in the given order.
func DefineSchema(fields ...Field) (*Schema, error) {
	if len(fields) == 0 {
		return nil, eris.New("form: schema has no fields")
	}
	s := &Schema{
		fields: make([]Field, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for i, f := range fields {
		if strings.TrimSpace(f.Name) == "" {
			return nil, eris.Errorf("form: field %d has no name", i)
		}
		if _, dup := s.index[f.Name]; dup {
			return nil, eris.Errorf("form: duplicate field %q", f.Name)
		}
		if f.Kind == KindEnum && len(f.Allowed) == 0 {
			return nil, eris.Errorf("form: enum field %q has no allowed values", f.Name)
		}
		f.Allowed = append([]string(nil), f.Allowed...)
		s.fields[i] = f
		s.index[f.Name] = i
	}
	return s, nil
}

// MustDefineSchema is DefineSchema for package-level schemas; it panics on error.
func MustDefineSchema(fields ...Field) *Schema {
	s, err := DefineSchema(fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// Fields returns a copy of the schema's fields in definition order.
func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	for i, f := range s.fields {
		f.Allowed = append([]string(nil), f.Allowed...)
		out[i] = f
	}
	return out
}

// Names returns the field names in definition order.
func (s *Schema) Names() []string {
	out := make([]string, len(s.fields))
	for i, f := range s.fields {
		out[i] = f.Name
	}
	return out
}

// Field looks up a field by name.
func (s *Schema) Field(name string) (Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	f := s.fields[i]
	f.Allowed = append([]string(nil), f.Allowed...)
	return f, true
}

// Has reports whether the schema defines name.
func (s *Schema) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Blank returns a Values with every field present and empty.
func (s *Schema) Blank() Values {
	v := make(Values, len(s.fields))
	for _, f := range s.fields {
		v[f.Name] = ""
	}
	return v
}

package form

import (
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// ErrNotDigits is returned when a numeric edit contains anything but digits.
var ErrNotDigits = eris.New("form: numeric input accepts digits only")

// Values holds raw text input keyed by field name. Inputs stay text until
// validation so partially typed values can be held.
type Values map[string]string

// Clone returns a copy of v.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// Keys returns the field names present in v, sorted.
func (v Values) Keys() []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IsDigits reports whether raw is empty or made only of ASCII digits. It is
// the filter applied to numeric fields while typing.
func IsDigits(raw string) bool {
	for i := 0; i < len(raw); i++ {
		if raw[i] < '0' || raw[i] > '9' {
			return false
		}
	}
	return true
}

// ParseAssignments parses "field=value" pairs as given on a command line.
func ParseAssignments(pairs []string) (Values, error) {
	out := make(Values, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, eris.Errorf("form: invalid assignment %q, want field=value", pair)
		}
		out[name] = value
	}
	return out, nil
}

// LoadValuesYAML reads a flat YAML mapping of field name to value. Scalars of
// any YAML type are kept as their literal text.
func LoadValuesYAML(path string) (Values, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "form: read values file")
	}
	return ParseValuesYAML(data)
}

// ParseValuesYAML decodes a flat YAML mapping into Values.
func ParseValuesYAML(data []byte) (Values, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, eris.Wrap(err, "form: parse values yaml")
	}
	out := make(Values)
	if len(doc.Content) == 0 {
		return out, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, eris.New("form: values yaml must be a mapping")
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]
		if val.Kind != yaml.ScalarNode {
			return nil, eris.Errorf("form: value for %q must be a scalar", key.Value)
		}
		if val.Tag == "!!null" {
			out[key.Value] = ""
			continue
		}
		out[key.Value] = val.Value
	}
	return out, nil
}

// FromPayload renders a payload back into raw text values.
func FromPayload(p Payload) Values {
	out := make(Values, len(p))
	for k, v := range p {
		switch t := v.(type) {
		case int:
			out[k] = strconv.Itoa(t)
		case string:
			out[k] = t
		}
	}
	return out
}

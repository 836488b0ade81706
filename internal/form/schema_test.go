package form

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefineSchema_Errors(t *testing.T) {
	t.Parallel()

	_, err := DefineSchema()
	assert.Error(t, err)

	_, err = DefineSchema(Numeric("age", 0), Text("age"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")

	_, err = DefineSchema(Field{Name: " ", Kind: KindText})
	assert.Error(t, err)

	_, err = DefineSchema(Enum("sex"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no allowed values")
}

func TestSchema_OrderAndLookup(t *testing.T) {
	t.Parallel()

	s := FullSchema()
	assert.Equal(t, []string{
		"age", "capital_gain", "capital_loss", "hours_per_week", "education_num",
		"workclass", "marital_status", "occupation", "relationship", "sex",
	}, s.Names())

	f, ok := s.Field("hours_per_week")
	require.True(t, ok)
	assert.Equal(t, KindNumeric, f.Kind)
	assert.Equal(t, "hours per week", f.Label())
	assert.Equal(t, "Hours Per Week", f.Title())
	assert.True(t, f.HasMin)

	_, ok = s.Field("income")
	assert.False(t, ok)
	assert.True(t, s.Has("sex"))
}

func TestSchema_IsImmutable(t *testing.T) {
	t.Parallel()

	allowed := []string{"Female", "Male"}
	s, err := DefineSchema(Enum("sex", allowed...))
	require.NoError(t, err)

	allowed[0] = "Other"
	fields := s.Fields()
	fields[0].Allowed[1] = "Other"

	f, _ := s.Field("sex")
	assert.Equal(t, []string{"Female", "Male"}, f.Allowed)
}

func TestSchema_Blank(t *testing.T) {
	t.Parallel()

	v := MinimalSchema().Blank()
	assert.Equal(t, Values{"age": "", "occupation": ""}, v)
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "numeric", KindNumeric.String())
	assert.Equal(t, "enum", KindEnum.String())
	assert.Equal(t, "text", KindText.String())
	assert.Equal(t, "unknown", Kind(42).String())
}

func TestIsDigits(t *testing.T) {
	assert.True(t, IsDigits(""))
	assert.True(t, IsDigits("0123"))
	assert.False(t, IsDigits("-1"))
	assert.False(t, IsDigits("1 2"))
	assert.False(t, IsDigits("１２"))
}

func TestParseAssignments(t *testing.T) {
	t.Parallel()

	v, err := ParseAssignments([]string{"age=29", "occupation=Sales", "note=a=b", "empty="})
	require.NoError(t, err)
	assert.Equal(t, Values{"age": "29", "occupation": "Sales", "note": "a=b", "empty": ""}, v)

	_, err = ParseAssignments([]string{"age"})
	assert.Error(t, err)

	_, err = ParseAssignments([]string{"=29"})
	assert.Error(t, err)
}

func TestParseValuesYAML(t *testing.T) {
	t.Parallel()

	v, err := ParseValuesYAML([]byte("age: 034\noccupation: Sales\ncapital_gain:\n"))
	require.NoError(t, err)
	assert.Equal(t, Values{"age": "034", "occupation": "Sales", "capital_gain": ""}, v)

	_, err = ParseValuesYAML([]byte("- a\n- b\n"))
	assert.Error(t, err)

	_, err = ParseValuesYAML([]byte("age: [1, 2]\n"))
	assert.Error(t, err)

	v, err = ParseValuesYAML(nil)
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestLoadValuesYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "values.yaml")
	require.NoError(t, os.WriteFile(path, []byte("age: 29\noccupation: Sales\n"), 0o644))

	v, err := LoadValuesYAML(path)
	require.NoError(t, err)
	assert.Equal(t, "29", v["age"])

	_, err = LoadValuesYAML(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestFromPayload(t *testing.T) {
	t.Parallel()

	v := FromPayload(Payload{"age": 29, "occupation": "Sales"})
	assert.Equal(t, Values{"age": "29", "occupation": "Sales"}, v)
}

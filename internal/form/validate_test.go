package form

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func minimalSchema(t *testing.T) *Schema {
	t.Helper()
	s, err := DefineSchema(Numeric("age", 0), Text("occupation"))
	require.NoError(t, err)
	return s
}

func fullValues() Values {
	return Values{
		"age":            "34",
		"capital_gain":   "0",
		"capital_loss":   "0",
		"hours_per_week": "40",
		"education_num":  "13",
		"workclass":      "Private",
		"marital_status": "Never-married",
		"occupation":     "Sales",
		"relationship":   "Not-in-family",
		"sex":            "Female",
	}
}

func TestValidate_FullFormCoerces(t *testing.T) {
	t.Parallel()

	res := FullSchema().Validate(fullValues())
	require.True(t, res.Valid(), res.Message())

	want := Payload{
		"age":            34,
		"capital_gain":   0,
		"capital_loss":   0,
		"hours_per_week": 40,
		"education_num":  13,
		"workclass":      "Private",
		"marital_status": "Never-married",
		"occupation":     "Sales",
		"relationship":   "Not-in-family",
		"sex":            "Female",
	}
	if diff := cmp.Diff(want, res.Payload); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate_RequiredMissing(t *testing.T) {
	t.Parallel()

	res := minimalSchema(t).Validate(Values{"age": "", "occupation": "Sales"})

	require.False(t, res.Valid())
	assert.Nil(t, res.Payload)
	assert.Equal(t, "age is required", res.Message())
	assert.Equal(t, RuleRequired, res.Err.Rule)
	assert.Equal(t, "age", res.Err.Field)
}

func TestValidate_OnlyFirstMissingReported(t *testing.T) {
	t.Parallel()

	res := FullSchema().Validate(Values{"age": "30"})

	require.False(t, res.Valid())
	assert.Equal(t, "capital gain is required", res.Message())
}

func TestValidate_ZeroIsNotMissing(t *testing.T) {
	t.Parallel()

	res := minimalSchema(t).Validate(Values{"age": "0", "occupation": "Sales"})

	require.True(t, res.Valid())
	assert.Equal(t, 0, res.Payload["age"])
}

func TestValidate_WhitespaceIsMissing(t *testing.T) {
	t.Parallel()

	res := minimalSchema(t).Validate(Values{"age": "29", "occupation": "   "})

	require.False(t, res.Valid())
	assert.Equal(t, "occupation is required", res.Message())
}

func TestValidate_NotANumber(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"abc", "12abc", "3.5", "1e3", "+29", "-0", "+0"} {
		res := minimalSchema(t).Validate(Values{"age": raw, "occupation": "Sales"})
		require.False(t, res.Valid(), raw)
		assert.Equal(t, "age must be a number", res.Message(), raw)
		assert.Equal(t, RuleNumber, res.Err.Rule, raw)
	}
}

func TestValidate_BelowMinimum(t *testing.T) {
	t.Parallel()

	res := minimalSchema(t).Validate(Values{"age": "-1", "occupation": "Sales"})

	require.False(t, res.Valid())
	assert.Equal(t, "age must be greater than or equal to 0", res.Message())
	assert.Equal(t, RuleMin, res.Err.Rule)
}

func TestValidate_FirstViolationWinsBySchemaOrder(t *testing.T) {
	t.Parallel()

	s, err := DefineSchema(
		Numeric("age", 18),
		Numeric("hours_per_week", 1),
		Enum("sex", SexOptions...),
	)
	require.NoError(t, err)

	res := s.Validate(Values{"age": "5", "hours_per_week": "0", "sex": "Other"})
	require.False(t, res.Valid())
	assert.Equal(t, "age", res.Err.Field)
	assert.Equal(t, "age must be greater than or equal to 18", res.Message())

	res = s.Validate(Values{"age": "20", "hours_per_week": "x", "sex": "Other"})
	require.False(t, res.Valid())
	assert.Equal(t, "hours per week must be a number", res.Message())

	res = s.Validate(Values{"age": "20", "hours_per_week": "2", "sex": "Other"})
	require.False(t, res.Valid())
	assert.Equal(t, "sex must be one of the allowed values", res.Message())
	assert.Equal(t, RuleAllowed, res.Err.Rule)
}

func TestValidate_RequiredPassRunsBeforeTypeChecks(t *testing.T) {
	t.Parallel()

	s, err := DefineSchema(Numeric("age", 0), Text("occupation"))
	require.NoError(t, err)

	res := s.Validate(Values{"age": "abc", "occupation": ""})
	require.False(t, res.Valid())
	assert.Equal(t, "occupation is required", res.Message())
}

func TestValidate_LeadingZerosAndSpaces(t *testing.T) {
	t.Parallel()

	res := minimalSchema(t).Validate(Values{"age": " 034 ", "occupation": "Sales"})

	require.True(t, res.Valid())
	assert.Equal(t, 34, res.Payload["age"])
}

func TestValidate_OptionalFieldsOmittedWhenEmpty(t *testing.T) {
	t.Parallel()

	s, err := DefineSchema(Numeric("age", 0), Numeric("capital_gain", 0).Optional(), Text("note").Optional())
	require.NoError(t, err)

	res := s.Validate(Values{"age": "40"})
	require.True(t, res.Valid())
	assert.Equal(t, Payload{"age": 40}, res.Payload)

	res = s.Validate(Values{"age": "40", "capital_gain": "-3"})
	require.False(t, res.Valid())
	assert.Equal(t, "capital gain must be greater than or equal to 0", res.Message())
}

func TestValidate_Idempotent(t *testing.T) {
	t.Parallel()

	s := FullSchema()
	values := fullValues()
	first := s.Validate(values)
	second := s.Validate(values)

	assert.Equal(t, first, second)
	assert.Equal(t, fullValues(), values, "validation must not mutate input")
}

func TestValidate_ReducedSchemaKeepsOccupationAndSexIndependent(t *testing.T) {
	t.Parallel()

	res := ReducedSchema().Validate(Values{
		"age":            "52",
		"hours_per_week": "45",
		"education_num":  "9",
		"marital_status": "Married-civ-spouse",
		"occupation":     "Craft-repair",
		"sex":            "Male",
	})

	require.True(t, res.Valid(), res.Message())
	assert.Equal(t, "Craft-repair", res.Payload["occupation"])
	assert.Equal(t, "Male", res.Payload["sex"])
}

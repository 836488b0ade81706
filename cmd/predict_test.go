package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/income-predict/internal/prompt"
	"github.com/sells-group/income-predict/pkg/classifier"
	"github.com/sells-group/income-predict/pkg/classifier/classifiertest"
)

const fullValuesYAML = `
age: 38
capital_gain: 0
capital_loss: 0
hours_per_week: 40
education_num: 13
workclass: Private
marital_status: Married-civ-spouse
occupation: Exec-managerial
relationship: Husband
sex: Male
`

type scriptedDriver struct {
	inputs  []string
	selects []int
	infos   []string
}

func (d *scriptedDriver) Input(context.Context, prompt.InputConfig) (string, error) {
	v := d.inputs[0]
	d.inputs = d.inputs[1:]
	return v, nil
}

func (d *scriptedDriver) Select(context.Context, prompt.SelectConfig) (int, error) {
	v := d.selects[0]
	d.selects = d.selects[1:]
	return v, nil
}

func (d *scriptedDriver) Info(_ context.Context, msg string) error {
	d.infos = append(d.infos, msg)
	return nil
}

func TestRunPredict_FullFromValuesFile(t *testing.T) {
	t.Parallel()

	srv := classifiertest.NewServer(classifiertest.WithPrediction(">50K"))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "person.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fullValuesYAML), 0o644))

	var out bytes.Buffer
	err := runPredict(context.Background(), &out, testConfig(srv.URL), classifier.NewClient(srv.URL), nil,
		predictOptions{ValuesFile: path, Model: "rf", Output: outputText})
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "Prediction successful")
	assert.Contains(t, text, "Random Forest")
	assert.Contains(t, text, ">50K")
	assert.Contains(t, text, "Submitted Information:")
	assert.Contains(t, text, "Hours Per Week:")
	assert.Contains(t, text, "Married-civ-spouse")

	reqs := srv.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "rf", reqs[0].Model)
	assert.JSONEq(t, `{
		"age": 38, "capital_gain": 0, "capital_loss": 0, "hours_per_week": 40, "education_num": 13,
		"workclass": "Private", "marital_status": "Married-civ-spouse", "occupation": "Exec-managerial",
		"relationship": "Husband", "sex": "Male"
	}`, string(reqs[0].Body))
}

func TestRunPredict_SetFlagsJSON(t *testing.T) {
	t.Parallel()

	srv := classifiertest.NewServer(classifiertest.WithPrediction("<=50K"))
	defer srv.Close()

	var out bytes.Buffer
	err := runPredict(context.Background(), &out, testConfig(srv.URL), classifier.NewClient(srv.URL), nil,
		predictOptions{Variant: "minimal", Sets: []string{"age=29", "occupation=Sales"}, Output: outputJSON})
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "succeeded", got["status"])
	result := got["result"].(map[string]any)
	assert.Equal(t, "Low", result["income_chance"])
	assert.Equal(t, "Logistic Regression", result["model"])
	assert.Equal(t, map[string]any{"age": float64(29), "occupation": "Sales"}, result["inputs"])
	assert.Equal(t, "log-reg", srv.Requests()[0].Model)
}

func TestRunPredict_ValidationFailure(t *testing.T) {
	t.Parallel()

	srv := classifiertest.NewServer()
	defer srv.Close()

	var out bytes.Buffer
	err := runPredict(context.Background(), &out, testConfig(srv.URL), classifier.NewClient(srv.URL), nil,
		predictOptions{Variant: "minimal", Sets: []string{"occupation=Sales"}, Output: outputText})
	require.Error(t, err)
	assert.Equal(t, "Error: age is required\n", out.String())
	assert.Equal(t, 0, srv.Count())
}

func TestRunPredict_ServiceFailure(t *testing.T) {
	t.Parallel()

	srv := classifiertest.NewServer(classifiertest.WithFailure(http.StatusInternalServerError, map[string]any{"detail": "model not loaded"}))
	defer srv.Close()

	var out bytes.Buffer
	err := runPredict(context.Background(), &out, testConfig(srv.URL), classifier.NewClient(srv.URL), nil,
		predictOptions{Variant: "minimal", Sets: []string{"age=29", "occupation=Sales"}, Output: outputText})
	assert.ErrorIs(t, err, errPredictionFailed)
	assert.Equal(t, "Error: model not loaded\n", out.String())
}

func TestRunPredict_BadInputs(t *testing.T) {
	t.Parallel()

	srv := classifiertest.NewServer()
	defer srv.Close()
	c := testConfig(srv.URL)
	client := classifier.NewClient(srv.URL)

	cases := map[string]predictOptions{
		"output":  {Output: "xml"},
		"variant": {Output: outputText, Variant: "wizard"},
		"model":   {Output: outputText, Model: "svm"},
		"field":   {Output: outputText, Sets: []string{"income=1"}},
		"pair":    {Output: outputText, Sets: []string{"age"}},
		"file":    {Output: outputText, ValuesFile: filepath.Join(t.TempDir(), "missing.yaml")},
	}
	for name, opts := range cases {
		var out bytes.Buffer
		err := runPredict(context.Background(), &out, c, client, nil, opts)
		assert.Error(t, err, name)
	}
	assert.Equal(t, 0, srv.Count())
}

func TestRunPredict_Interactive(t *testing.T) {
	t.Parallel()

	srv := classifiertest.NewServer(classifiertest.WithPrediction(">50K"))
	defer srv.Close()

	// Model choice first (index 2 of log-reg, nn, rf), then age and occupation.
	d := &scriptedDriver{selects: []int{2}, inputs: []string{"52", "Farming-fishing"}}

	var out bytes.Buffer
	err := runPredict(context.Background(), &out, testConfig(srv.URL), classifier.NewClient(srv.URL), d,
		predictOptions{Variant: "minimal", Output: outputText})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "High")
	assert.Equal(t, "rf", srv.Requests()[0].Model)
}

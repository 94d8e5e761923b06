package formatting

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"specprobe/internal/openapi"
	"specprobe/internal/results"
	"specprobe/internal/scenario"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sigs.k8s.io/yaml"
)

const petsDoc = `
openapi: 3.0.0
info: {title: Pets, version: '1'}
paths:
  /pets:
    get:
      summary: List pets
      tags: [pets]
      responses:
        '200': {description: ok}
    post:
      summary: Create pet
      responses:
        '201': {description: created}
        '400': {description: bad}
`

func parsePets(t *testing.T) *openapi.Spec {
	t.Helper()
	spec, err := openapi.ParseBytes([]byte(petsDoc), ".yaml")
	require.NoError(t, err)
	return spec
}

func sampleSummary() *results.Summary {
	s := results.NewSummary()
	start := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	s.Start(start)
	s.Add(results.TestResult{TestName: "test_a", TestFile: "test_pets.py", Status: results.StatusPassed, DurationMs: 120})
	s.Add(results.TestResult{TestName: "test_b", TestFile: "test_pets.py", Status: results.StatusFailed, DurationMs: 80})
	s.Finish(start.Add(time.Second))
	return s
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"", FormatTable, false},
		{"json", FormatJSON, false},
		{"YAML", FormatYAML, false},
		{"console", FormatConsole, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestNewPicksFormatter(t *testing.T) {
	assert.IsType(t, &JSONFormatter{}, New(Options{Format: FormatJSON}))
	assert.IsType(t, &YAMLFormatter{}, New(Options{Format: FormatYAML}))
	assert.IsType(t, &ConsoleFormatter{}, New(Options{Format: FormatConsole}))
	assert.IsType(t, &TableFormatter{}, New(Options{}))

	f := New(Options{Format: FormatJSON})
	f.SetOptions(Options{Format: FormatJSON, Quiet: true})
	assert.True(t, f.GetOptions().Quiet)
}

func TestJSONEndpoints(t *testing.T) {
	spec := parsePets(t)
	out := NewJSONFormatter(Options{}).FormatEndpoints(spec.Endpoints())

	var doc struct {
		Count     int            `json:"count"`
		Endpoints []endpointView `json:"endpoints"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, 2, doc.Count)
	assert.Equal(t, "GET", doc.Endpoints[0].Method)
	assert.Equal(t, []int{201, 400}, doc.Endpoints[1].Statuses)
}

func TestJSONQuietIsCompact(t *testing.T) {
	var buf bytes.Buffer
	f := NewJSONFormatter(Options{Quiet: true, Out: &buf})
	require.NoError(t, f.FormatData(map[string]interface{}{"ok": true}))
	assert.Equal(t, "{\"ok\":true}\n", buf.String())
}

func TestJSONSummaryHasDerivedFields(t *testing.T) {
	out := NewJSONFormatter(Options{}).FormatSummary(sampleSummary())
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, 50.0, doc["success_rate"])
	assert.Equal(t, 0.2, doc["execution_time_seconds"])
	assert.Equal(t, results.BannerPartial, doc["banner"])
	assert.EqualValues(t, 2, doc["total_tests"])
}

func TestYAMLTestCases(t *testing.T) {
	spec := parsePets(t)
	cases := scenario.Synthesize(spec, nil, scenario.Options{})
	out := NewYAMLFormatter(Options{}).FormatTestCases(cases)

	var doc struct {
		Count     int                 `json:"count"`
		TestCases []scenario.TestCase `json:"test_cases"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	assert.Equal(t, len(cases), doc.Count)
	assert.Equal(t, cases[0].ID, doc.TestCases[0].ID)
	assert.Equal(t, cases[0].Name, doc.TestCases[0].Name)
}

func TestYAMLEmptyTestCases(t *testing.T) {
	out := NewYAMLFormatter(Options{}).FormatTestCases(nil)
	assert.Contains(t, out, "test_cases: []")
	assert.Contains(t, out, "count: 0")
}

func TestTableOutput(t *testing.T) {
	spec := parsePets(t)
	f := NewTableFormatter(Options{})

	out := f.FormatEndpoints(spec.Endpoints())
	assert.Contains(t, out, "/pets")
	assert.Contains(t, out, "List pets")
	assert.Contains(t, out, "201, 400")
	assert.Contains(t, out, "2 endpoints")

	cases := scenario.Synthesize(spec, nil, scenario.Options{})
	out = f.FormatTestCases(cases)
	assert.Contains(t, out, cases[0].ID)
	assert.Contains(t, out, "happy_path: 2")

	out = f.FormatSummary(sampleSummary())
	assert.Contains(t, out, "50.0%")
	assert.Contains(t, out, results.BannerPartial)

	assert.Contains(t, f.FormatEndpoints(nil), "No endpoints found")
	assert.Contains(t, f.FormatTestCases(nil), "No test cases generated")
}

func TestTableFormatData(t *testing.T) {
	var buf bytes.Buffer
	f := NewTableFormatter(Options{Out: &buf})

	require.NoError(t, f.FormatData(map[string]interface{}{"b": 2, "a": 1}))
	out := buf.String()
	assert.Less(t, bytes.Index(buf.Bytes(), []byte(" a ")), bytes.Index(buf.Bytes(), []byte(" b ")), out)

	buf.Reset()
	require.NoError(t, f.FormatData([]interface{}{"x", "y"}))
	assert.Contains(t, buf.String(), "  2. y")
	assert.Contains(t, buf.String(), "Total: 2 items")
}

func TestConsoleOutput(t *testing.T) {
	spec := parsePets(t)
	f := NewConsoleFormatter(Options{})

	out := f.FormatEndpoints(spec.Endpoints())
	assert.Contains(t, out, "Endpoints (2):")
	assert.Contains(t, out, "1. GET     /pets - List pets")

	s := sampleSummary()
	s.AddError("boom")
	out = f.FormatSummary(s)
	assert.Contains(t, out, "PARTIAL: 1 passed, 1 failed, 0 skipped, 0 errors of 2 (50.0%) in 0.20s")
	assert.Contains(t, out, "! boom")

	var buf bytes.Buffer
	f.SetOptions(Options{Out: &buf})
	require.NoError(t, f.FormatData(map[string]interface{}{"z": 1, "a": "x"}))
	assert.Equal(t, "a: x\nz: 1\n", buf.String())
}

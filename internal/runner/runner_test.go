package runner

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"specprobe/internal/results"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEngine writes a shell script that echoes its arguments and environment
// to a side file and prints output in pytest's verbose format.
func fakeEngine(t *testing.T, body string) (command string, argsFile string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake engine is a POSIX shell script")
	}
	dir := t.TempDir()
	argsFile = filepath.Join(dir, "args.txt")
	script := "#!/bin/sh\n" +
		"echo \"$@\" > " + argsFile + "\n" +
		"echo \"API_URL=$API_URL\" >> " + argsFile + "\n" +
		body + "\n"
	command = filepath.Join(dir, "fake-pytest")
	require.NoError(t, os.WriteFile(command, []byte(script), 0755))
	return command, argsFile
}

func writeTestFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("def test_x():\n    pass\n"), 0644))
	return path
}

func TestRunner_RunAll(t *testing.T) {
	cmd, argsFile := fakeEngine(t, `
echo "tests/test_agents.py::test_create PASSED [0.12s]"
echo "tests/test_agents.py::test_delete FAILED [0.30s]"
echo "E   assert 500 == 204"
exit 1`)

	testDir := t.TempDir()
	writeTestFile(t, testDir, "test_b.py")
	writeTestFile(t, testDir, filepath.Join("nested", "test_a.py"))
	writeTestFile(t, testDir, "helper.py")

	var out bytes.Buffer
	r := New(Options{
		Command:        []string{cmd},
		TestDir:        testDir,
		APIBaseURL:     "http://api.test:9000",
		PerTestTimeout: 30 * time.Second,
		Reporter:       NewConsoleReporter(&out, true, false),
	})

	summary := r.RunAll(context.Background(), "")
	assert.Empty(t, summary.Errors, "failing tests are not pipeline errors")
	assert.Equal(t, 2, summary.TotalTests)
	assert.Equal(t, 1, summary.PassedTests)
	assert.Equal(t, 1, summary.FailedTests)
	assert.InDelta(t, 420.0, summary.TotalDurationMs, 1e-9)
	require.NotNil(t, summary.StartTime)
	require.NotNil(t, summary.EndTime)
	require.NotNil(t, summary.TestResults[1].ErrorMessage)
	assert.Equal(t, "E   assert 500 == 204", *summary.TestResults[1].ErrorMessage)

	recorded, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(recorded)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "-v --tb=short --timeout=30 -ra "+
		filepath.Join(testDir, "nested", "test_a.py")+" "+filepath.Join(testDir, "test_b.py"), lines[0])
	assert.Equal(t, "API_URL=http://api.test:9000", lines[1])

	assert.Contains(t, out.String(), "Total Tests")
	assert.Contains(t, out.String(), "PARTIAL")
}

func TestRunner_RunAllNoFiles(t *testing.T) {
	dir := t.TempDir()
	r := New(Options{Command: []string{"does-not-matter"}, TestDir: dir})

	summary := r.RunAll(context.Background(), "")
	assert.Equal(t, []string{"No test files found in " + dir}, summary.Errors)
	assert.Empty(t, summary.TestResults)
	assert.NotNil(t, summary.EndTime)
}

func TestRunner_RunAllPatternFiltersFileNames(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "test_agents_generated.py")
	writeTestFile(t, dir, "test_payments_generated.py")

	r := New(Options{TestDir: dir})
	files, err := r.FindTestFiles("payments")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "test_payments_generated.py")}, files)
}

func TestRunner_RunFileMissing(t *testing.T) {
	dir := t.TempDir()
	r := New(Options{TestDir: dir})

	summary := r.RunFile(context.Background(), "test_missing.py")
	require.Len(t, summary.Errors, 1)
	assert.Equal(t, "Test file not found: "+filepath.Join(dir, "test_missing.py"), summary.Errors[0])
}

func TestRunner_RunByPatternPassesFilter(t *testing.T) {
	cmd, argsFile := fakeEngine(t, `echo "t/test_a.py::test_happy_path PASSED"`)
	dir := t.TempDir()

	r := New(Options{Command: []string{cmd}, TestDir: dir})
	summary := r.RunByPattern(context.Background(), "happy")
	assert.Equal(t, 1, summary.PassedTests)

	recorded, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(recorded), "-v --tb=short --timeout=300 -ra -k happy "+dir))
}

func TestRunner_LaunchFailure(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "test_a.py")

	r := New(Options{Command: []string{filepath.Join(dir, "no-such-engine")}, TestDir: dir})
	summary := r.Run(context.Background(), []string{path})

	require.Len(t, summary.Errors, 1)
	assert.Contains(t, summary.Errors[0], "Failed to launch test engine")
	assert.Empty(t, summary.TestResults)
}

func TestRunner_Timeout(t *testing.T) {
	cmd, _ := fakeEngine(t, "exec sleep 5")
	dir := t.TempDir()

	r := New(Options{Command: []string{cmd}, TestDir: dir, Timeout: 200 * time.Millisecond})
	summary := r.Run(context.Background(), []string{dir})

	require.Len(t, summary.Errors, 1)
	assert.Equal(t, "Test execution timed out after 200ms", summary.Errors[0])
}

func TestRunner_UsageError(t *testing.T) {
	cmd, _ := fakeEngine(t, `echo "ERROR: unrecognized arguments: --timeout=300"; exit 4`)
	dir := t.TempDir()

	summary := New(Options{Command: []string{cmd}, TestDir: dir}).Run(context.Background(), []string{dir})
	require.Len(t, summary.Errors, 1)
	assert.Equal(t, "Test engine exited with code 4: ERROR: unrecognized arguments: --timeout=300", summary.Errors[0])
}

func TestRunner_EngineVersion(t *testing.T) {
	cmd, argsFile := fakeEngine(t, `echo "pytest 8.3.2"`)
	version, err := New(Options{Command: []string{cmd}}).EngineVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "pytest 8.3.2", version)

	args, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(args), "--version\n"), string(args))

	_, err = New(Options{Command: []string{filepath.Join(t.TempDir(), "missing")}}).EngineVersion(context.Background())
	assert.Error(t, err)
}

func TestQuietAndJSONReporters(t *testing.T) {
	s := results.NewSummary()
	s.Add(results.TestResult{TestName: "test_a", TestFile: "t.py", Status: results.StatusPassed})

	var quiet bytes.Buffer
	NewQuietReporter(&quiet).ReportSummary(s)
	assert.Contains(t, quiet.String(), "All 1 tests passed")

	var js bytes.Buffer
	NewJSONReporter(&js).ReportSummary(s)
	assert.Contains(t, js.String(), `"total_tests": 1`)
}

func TestRenderBanner(t *testing.T) {
	s := results.NewSummary()
	for i := 0; i < 4; i++ {
		s.Add(results.TestResult{Status: results.StatusPassed})
	}
	s.Add(results.TestResult{Status: results.StatusFailed})

	banner := RenderBanner(s, false)
	assert.Contains(t, banner, "PASS")
	assert.Contains(t, banner, "80.0% success (4/5 passed)")
}

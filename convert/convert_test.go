package convert

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nazwana/latensi/sink"
	"github.com/nazwana/latensi/timestamps"
	"github.com/stretchr/testify/assert"
)

func writeInput(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writeInput() could not write fixture: %v", err)
	}
	return path
}

func runConvert(t *testing.T, input string) (string, *Result, error) {
	t.Helper()
	output := filepath.Join(t.TempDir(), "out.dat")
	result, err := Run(&Options{
		InputPath:  input,
		OutputPath: output,
		Schema:     timestamps.DefaultSchema(),
	}, sink.NewNoopSink())
	return output, result, err
}

func TestRunAveragesOneMinute(t *testing.T) {
	input := writeInput(t, "Timestamp,Timestamp (ESP32)\n"+
		`"2024-10-03 10:00:01.500","2024-10-03 10:00:01"`+"\n"+
		`"2024-10-03 10:00:31.700","2024-10-03 10:00:31"`+"\n")

	output, result, err := runConvert(t, input)
	assert.NoError(t, err)
	assert.Equal(t, 2, result.Rows)
	assert.Equal(t, 1, result.Minutes)

	raw, err := os.ReadFile(output)
	assert.NoError(t, err)
	assert.Equal(t, "waktu\tlatensi\tbaseline\n10:00:01\t0.6\t0.0\n", string(raw))
}

func TestRunPreservesFirstAppearanceOrder(t *testing.T) {
	input := writeInput(t, "Timestamp,Timestamp (ESP32)\n"+
		"2024-10-03 10:05:10,2024-10-03 10:05:09\n"+
		"2024-10-03 10:02:20,2024-10-03 10:02:19\n"+
		"2024-10-03 10:05:40,2024-10-03 10:05:39\n")

	output, result, err := runConvert(t, input)
	assert.NoError(t, err)
	assert.Equal(t, 2, result.Minutes)

	raw, err := os.ReadFile(output)
	assert.NoError(t, err)
	assert.Equal(t, "waktu\tlatensi\tbaseline\n"+
		"10:05:10\t1\t0.0\n"+
		"10:02:20\t1\t0.0\n", string(raw))
}

func TestRunLatencySign(t *testing.T) {
	input := writeInput(t, "Timestamp,Timestamp (ESP32)\n"+
		"2024-10-03 10:00:01.500,2024-10-03 10:00:01.000\n"+
		"2024-10-03 10:01:01.000,2024-10-03 10:01:02.500\n")

	output, _, err := runConvert(t, input)
	assert.NoError(t, err)

	raw, err := os.ReadFile(output)
	assert.NoError(t, err)
	assert.Equal(t, "waktu\tlatensi\tbaseline\n"+
		"10:00:01\t0.5\t0.0\n"+
		"10:01:01\t-1.5\t0.0\n", string(raw))
}

func TestRunBaselineIsConstant(t *testing.T) {
	input := writeInput(t, "Timestamp,Timestamp (ESP32)\n"+
		"2024-10-03 10:00:01,2024-10-03 10:00:00\n"+
		"2024-10-03 10:01:01,2024-10-03 10:01:00\n"+
		"2024-10-03 10:02:01,2024-10-03 10:02:00\n")

	output, _, err := runConvert(t, input)
	assert.NoError(t, err)

	raw, err := os.ReadFile(output)
	assert.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
	assert.Len(t, lines, 4)
	for i, line := range lines[1:] {
		assert.Regexpf(t, `\t0\.0$`, line, "row %d should end with the baseline", i+1)
	}
}

func TestRunMissingInputWritesNoOutput(t *testing.T) {
	output, _, err := runConvert(t, filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
	_, statErr := os.Stat(output)
	assert.True(t, os.IsNotExist(statErr), "no output file should be produced")
}

func TestRunMissingColumnWritesNoOutput(t *testing.T) {
	input := writeInput(t, "Timestamp,co2_ppm\n2024-10-03 10:00:01,640\n")

	output, _, err := runConvert(t, input)
	var missing *timestamps.MissingColumnsError
	assert.ErrorAs(t, err, &missing)
	assert.Contains(t, err.Error(), `"Timestamp (ESP32)"`)
	_, statErr := os.Stat(output)
	assert.True(t, os.IsNotExist(statErr), "no output file should be produced")
}

func TestRunEmptyInputWritesHeaderOnly(t *testing.T) {
	input := writeInput(t, "Timestamp,Timestamp (ESP32)\n")

	output, result, err := runConvert(t, input)
	assert.NoError(t, err)
	assert.Equal(t, 0, result.Rows)
	assert.Equal(t, 0, result.Minutes)

	raw, err := os.ReadFile(output)
	assert.NoError(t, err)
	assert.Equal(t, "waktu\tlatensi\tbaseline\n", string(raw))
}

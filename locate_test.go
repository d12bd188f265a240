package ekidata2sql

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocateFilePicksLatestSnapshot(t *testing.T) {
	dir := testTempdir(t)
	writeFile(t, filepath.Join(dir, "station_20220101.csv"), "")
	writeFile(t, filepath.Join(dir, "station_20230101.csv"), "")

	got, err := LocateFile(dir, "station")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "station_20230101.csv"), got)
}

func TestLocateFileOrdersLexicographically(t *testing.T) {
	dir := testTempdir(t)
	writeFile(t, filepath.Join(dir, "line9.csv"), "")
	writeFile(t, filepath.Join(dir, "line10.csv"), "")

	got, err := LocateFile(dir, "line")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "line9.csv"), got)
}

func TestLocateFileIgnoresOtherFiles(t *testing.T) {
	dir := testTempdir(t)
	writeFile(t, filepath.Join(dir, "join.txt"), "")
	writeFile(t, filepath.Join(dir, "xjoin.csv"), "")

	got, err := LocateFile(dir, "join")
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestLocateInputs(t *testing.T) {
	inputs, err := LocateInputs(sampleDir)
	require.NoError(t, err)
	assert.Equal(t, Inputs{
		"company": filepath.Join(sampleDir, "company20230101.csv"),
		"line":    filepath.Join(sampleDir, "line20230101.csv"),
		"station": filepath.Join(sampleDir, "station20230101.csv"),
		"join":    filepath.Join(sampleDir, "join20230101.csv"),
	}, inputs)
}

func TestLocateInputsListsEveryMissingCategory(t *testing.T) {
	dir := testTempdir(t)
	writeFile(t, filepath.Join(dir, "line20230101.csv"), "")

	inputs, err := LocateInputs(dir)
	var missing *MissingInputsError
	require.ErrorAs(t, err, &missing)
	assert.ErrorIs(t, err, ErrInput)
	assert.Equal(t, []string{"company", "station", "join"}, missing.Categories)
	assert.Equal(t, Inputs{"line": filepath.Join(dir, "line20230101.csv")}, inputs)
	assert.Contains(t, err.Error(), "company, station, join")
}

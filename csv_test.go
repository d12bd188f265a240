package ekidata2sql

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/japanese"
)

func TestReadTable(t *testing.T) {
	dir := testTempdir(t)
	path := filepath.Join(dir, "company.csv")
	writeFile(t, path, "company_cd,company_name,company_url\n1,JR北海道,\n2,\"JR東日本, 本社\",http://www.jreast.co.jp/\n")

	table, err := ReadTable(path, EncodingUTF8)
	require.NoError(t, err)
	assert.Equal(t, path, table.Path)
	assert.Equal(t, []string{"company_cd", "company_name", "company_url"}, table.Columns)
	require.Len(t, table.Rows, 2)

	assert.Equal(t, 2, table.Rows[0].Line)
	assert.Equal(t, sql.NullString{String: "JR北海道", Valid: true}, table.Rows[0].Get("company_name"))
	assert.Equal(t, sql.NullString{}, table.Rows[0].Get("company_url"))
	assert.Equal(t, sql.NullString{String: "JR東日本, 本社", Valid: true}, table.Rows[1].Get("company_name"))
}

func TestReadTableStripsBOM(t *testing.T) {
	dir := testTempdir(t)
	path := filepath.Join(dir, "line.csv")
	writeFile(t, path, "\ufeffline_cd,line_name\n11302,山手線\n")

	table, err := ReadTable(path, EncodingUTF8)
	require.NoError(t, err)
	assert.Equal(t, []string{"line_cd", "line_name"}, table.Columns)
	assert.Equal(t, "11302", table.Rows[0].Get("line_cd").String)
}

func TestReadTableShiftJIS(t *testing.T) {
	encoded, err := japanese.ShiftJIS.NewEncoder().String("station_cd,station_name\n1130201,大崎\n")
	require.NoError(t, err)

	dir := testTempdir(t)
	path := filepath.Join(dir, "station.csv")
	writeFile(t, path, encoded)

	table, err := ReadTable(path, EncodingShiftJIS)
	require.NoError(t, err)
	assert.Equal(t, "大崎", table.Rows[0].Get("station_name").String)
}

func TestReadTableErrors(t *testing.T) {
	dir := testTempdir(t)

	cases := map[string]string{
		"empty":            "",
		"ragged":           "a,b\n1,2,3\n",
		"duplicate column": "a,a\n1,2\n",
		"blank column":     "a,,b\n1,2,3\n",
		"bad quote":        "a,b\n\"1,2\n",
	}
	for name, contents := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name+".csv")
			writeFile(t, path, contents)
			_, err := ReadTable(path, EncodingUTF8)
			require.ErrorIs(t, err, ErrInput)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := ReadTable(filepath.Join(dir, "nope.csv"), EncodingUTF8)
		require.ErrorIs(t, err, ErrInput)
	})

	t.Run("unknown encoding", func(t *testing.T) {
		path := filepath.Join(dir, "ok.csv")
		writeFile(t, path, "a\n1\n")
		_, err := ReadTable(path, Encoding("euc-jp"))
		require.ErrorIs(t, err, ErrInput)
	})
}

func TestDecodeTable(t *testing.T) {
	table := &Table{
		Path:    "line.csv",
		Columns: []string{"line_cd", "company_cd", "line_name", "lon", "line_color_c"},
		Rows: []Row{{
			Line: 2,
			Values: map[string]sql.NullString{
				"line_cd":      {String: "11302", Valid: true},
				"company_cd":   {String: "2", Valid: true},
				"line_name":    {String: "山手線", Valid: true},
				"lon":          {String: "139.733488", Valid: true},
				"line_color_c": {},
			},
		}},
	}

	records, err := decodeTable(table, lookupTable(lineTable))
	require.NoError(t, err)
	assert.Equal(t, lineTable, records.Table)
	assert.Equal(t, []any{int64(11302), int64(2), "山手線", 139.733488, nil}, records.Rows[0].Values)
}

func TestDecodeTableErrors(t *testing.T) {
	t.Run("unknown column", func(t *testing.T) {
		table := &Table{Path: "join.csv", Columns: []string{"line_cd", "station_cd1", "station_cd2", "extra"}}
		_, err := decodeTable(table, lookupTable(joinTable))
		require.ErrorIs(t, err, ErrInput)
		assert.Contains(t, err.Error(), "extra")
	})

	t.Run("missing key", func(t *testing.T) {
		table := &Table{Path: "join.csv", Columns: []string{"line_cd", "station_cd1"}}
		_, err := decodeTable(table, lookupTable(joinTable))
		require.ErrorIs(t, err, ErrInput)
		assert.Contains(t, err.Error(), "station_cd2")
	})

	t.Run("bad number", func(t *testing.T) {
		table := &Table{
			Path:    "station.csv",
			Columns: []string{"station_cd", "lat"},
			Rows: []Row{{Line: 7, Values: map[string]sql.NullString{
				"station_cd": {String: "1", Valid: true},
				"lat":        {String: "north", Valid: true},
			}}},
		}
		_, err := decodeTable(table, lookupTable(stationTable))
		require.ErrorIs(t, err, ErrInput)
		assert.Contains(t, err.Error(), "station.csv:7: lat")
	})
}

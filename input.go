package ekidata2sql

import (
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
)

// Records is a CSV table decoded against the schema of its destination table. Values are
// nil (absent), int64, float64 or string depending on the column type.
type Records struct {
	Table   string
	Path    string
	Columns []string
	Rows    []Record
}

type Record struct {
	Line   int
	Values []any
}

func (r *Records) index(column string) int {
	return slices.Index(r.Columns, column)
}

// Input holds every decoded input file, ready to be loaded.
type Input struct {
	Company *Records
	Line    *Records
	Station *Records
	Join    *Records
}

var categoryTables = map[string]string{
	"company": companyTable,
	"line":    lineTable,
	"station": stationTable,
	"join":    joinTable,
}

// ReadInput reads and decodes the file of every category. All input errors are found
// here, before anything is written to the destination.
func ReadInput(inputs Inputs, enc Encoding) (*Input, error) {
	in := &Input{}
	for _, category := range Categories {
		path, ok := inputs[category]
		if !ok || path == "" {
			return nil, &MissingInputsError{Categories: []string{category}}
		}

		slog.Info(fmt.Sprintf("Reading %s", path))
		table, err := ReadTable(path, enc)
		if err != nil {
			return nil, err
		}
		records, err := decodeTable(table, lookupTable(categoryTables[category]))
		if err != nil {
			return nil, err
		}
		slog.Debug("Decoded input", "path", path, "columns", strings.Join(records.Columns, ","), "rows", len(records.Rows))

		switch category {
		case "company":
			in.Company = records
		case "line":
			in.Line = records
		case "station":
			in.Station = records
		case "join":
			in.Join = records
		}
	}
	return in, nil
}

func decodeTable(table *Table, schema *tableSchema) (*Records, error) {
	columns := make([]columnSchema, len(table.Columns))
	for i, name := range table.Columns {
		column, ok := schema.column(name)
		if !ok {
			return nil, inputErrorf("%s: unknown column %s for table %s", table.Path, name, schema.Name)
		}
		columns[i] = column
	}
	for _, key := range schema.PrimaryKey {
		if !slices.Contains(table.Columns, key) {
			return nil, inputErrorf("%s: missing key column %s", table.Path, key)
		}
	}

	records := &Records{
		Table:   schema.Name,
		Path:    table.Path,
		Columns: table.Columns,
		Rows:    make([]Record, 0, len(table.Rows)),
	}
	for _, row := range table.Rows {
		values := make([]any, len(columns))
		for i, column := range columns {
			v, err := decodeValue(column, row.Get(column.Name).String, row.Get(column.Name).Valid)
			if err != nil {
				return nil, inputErrorf("%s:%d: %s: %s", table.Path, row.Line, column.Name, err)
			}
			values[i] = v
		}
		records.Rows = append(records.Rows, Record{Line: row.Line, Values: values})
	}
	return records, nil
}

func decodeValue(column columnSchema, raw string, present bool) (any, error) {
	if !present {
		return nil, nil
	}
	switch column.Type {
	case integerColumn:
		v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not an integer", raw)
		}
		return v, nil
	case floatColumn:
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", raw)
		}
		return v, nil
	default:
		return raw, nil
	}
}

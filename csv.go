package ekidata2sql

import (
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Encoding names the character encoding of the input CSV files.
type Encoding string

const (
	EncodingUTF8     Encoding = "utf-8"
	EncodingShiftJIS Encoding = "shift_jis"
)

// Table is a CSV file read into memory.
type Table struct {
	Path    string
	Columns []string
	Rows    []Row
}

// Row is one data row keyed by column name. Empty fields are stored as an invalid
// sql.NullString so they can be told apart from an empty string.
type Row struct {
	Line   int
	Values map[string]sql.NullString
}

func (r Row) Get(column string) sql.NullString {
	return r.Values[column]
}

// ReadTable reads the CSV file at path. The first record is the header.
func ReadTable(path string, enc Encoding) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInput, err)
	}
	defer func() { _ = f.Close() }()

	decoder, err := newDecoder(enc)
	if err != nil {
		return nil, err
	}

	table, err := readTable(transform.NewReader(f, decoder))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrInput, path, err)
	}
	table.Path = path
	return table, nil
}

func newDecoder(enc Encoding) (transform.Transformer, error) {
	switch enc {
	case "", EncodingUTF8:
		return unicode.BOMOverride(unicode.UTF8.NewDecoder()), nil
	case EncodingShiftJIS:
		return unicode.BOMOverride(japanese.ShiftJIS.NewDecoder()), nil
	default:
		return nil, inputErrorf("unsupported encoding %q", enc)
	}
}

func readTable(input io.Reader) (*Table, error) {
	inputCSV := csv.NewReader(input)

	// Header

	header, err := inputCSV.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("missing header")
	} else if err != nil {
		return nil, err
	}
	for i, column := range header {
		column = strings.TrimSpace(column)
		if column == "" {
			return nil, fmt.Errorf("empty column name at position %d", i+1)
		}
		if slices.Contains(header[:i], column) {
			return nil, fmt.Errorf("duplicate column %s", column)
		}
		header[i] = column
	}

	table := &Table{Columns: header}

	// Rows

	for {
		record, err := inputCSV.Read()
		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return nil, err
		}

		line, _ := inputCSV.FieldPos(0)
		row := Row{Line: line, Values: make(map[string]sql.NullString, len(header))}
		for i, v := range record {
			if v == "" {
				row.Values[header[i]] = sql.NullString{}
			} else {
				row.Values[header[i]] = sql.NullString{String: v, Valid: true}
			}
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

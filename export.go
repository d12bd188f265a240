package ekidata2sql

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"crawshaw.io/sqlite"
	"crawshaw.io/sqlite/sqlitex"
)

// Export writes every table of the SQLite database at inputPath to <table>.csv in
// outputDir, in schema column order and sorted by primary key. Nulls are written as empty
// fields, so the output can be imported again.
func Export(inputPath string, outputDir string) error {
	if inputPath == "" {
		panic("Missing inputPath")
	}
	if outputDir == "" {
		panic("Missing outputDir")
	}

	slog.Info(fmt.Sprintf("Exporting %s to %s", inputPath, outputDir))

	db, err := sqlite.OpenConn(inputPath, sqlite.SQLITE_OPEN_READONLY)
	if err != nil {
		return err
	}
	defer func() {
		if db != nil {
			_ = db.Close()
		}
	}()

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return err
	}

	for _, table := range ekidataSchema {
		if err := exportTable(db, table, filepath.Join(outputDir, table.Name+".csv")); err != nil {
			return fmt.Errorf("export %s: %w", table.Name, err)
		}
	}

	err = db.Close()
	db = nil
	return err
}

func exportTable(db *sqlite.Conn, table tableSchema, outputPath string) error {
	outputF, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer func() { _ = outputF.Close() }()

	outputCSV := csv.NewWriter(outputF)

	cols := make([]string, len(table.Columns))
	for i, c := range table.Columns {
		cols[i] = c.Name
	}
	if err := outputCSV.Write(cols); err != nil {
		return err
	}

	rowCount := 0
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s", quoteIdents(cols), quoteIdent(table.Name), quoteIdents(table.PrimaryKey))
	err = sqlitex.Exec(db, query, func(stmt *sqlite.Stmt) error {
		row := make([]string, len(cols))
		for i := range cols {
			row[i] = stmt.ColumnText(i)
		}
		rowCount++
		return outputCSV.Write(row)
	})
	if err != nil {
		return err
	}
	slog.Info(fmt.Sprintf("Wrote %d rows to %s", rowCount, outputPath))

	outputCSV.Flush()
	if err := outputCSV.Error(); err != nil {
		return err
	}
	return outputF.Close()
}

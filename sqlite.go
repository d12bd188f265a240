package ekidata2sql

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"crawshaw.io/sqlite"
	"crawshaw.io/sqlite/sqlitex"
)

var sqlitePragmas = [][2]string{
	{"foreign_keys", "ON"},
	{"synchronous", "OFF"},
}

var sqliteDialect = dialect{
	Name: "sqlite",
	TypeName: func(c columnSchema) string {
		switch c.Type {
		case integerColumn:
			return "INTEGER"
		case floatColumn:
			return "REAL"
		default:
			return "TEXT"
		}
	},
}

// SQLiteStore writes to a single SQLite database file.
type SQLiteStore struct {
	path string
	conn *sqlite.Conn
}

func NewSQLiteStore(path string) *SQLiteStore {
	if path == "" {
		panic("Missing path")
	}
	return &SQLiteStore{path: path}
}

func (s *SQLiteStore) Path() string {
	return s.path
}

func (s *SQLiteStore) Recreate(ctx context.Context) error {
	if s.conn != nil {
		if err := s.conn.Close(); err != nil {
			return err
		}
		s.conn = nil
	}

	for _, path := range []string{s.path, s.path + "-wal", s.path + "-shm"} {
		err := os.Remove(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}

	conn, err := sqlite.OpenConn(s.path, 0)
	if err != nil {
		return err
	}
	s.conn = conn

	for _, pragma := range sqlitePragmas {
		if err := sqlitex.ExecTransient(conn, "PRAGMA "+pragma[0]+" = "+pragma[1], sqlitexNoop); err != nil {
			return err
		}
	}

	for _, table := range ekidataSchema {
		if err := sqlitex.ExecTransient(conn, createTableSQL(sqliteDialect, table), sqlitexNoop); err != nil {
			return fmt.Errorf("create table %s: %w", table.Name, err)
		}
	}
	slog.Info(fmt.Sprintf("Created %s", s.path))
	return nil
}

func (s *SQLiteStore) Begin(ctx context.Context) (Session, error) {
	if s.conn == nil {
		return nil, errors.New("sqlite store: not created")
	}
	s.conn.SetInterrupt(ctx.Done())
	if err := sqlitex.ExecTransient(s.conn, "BEGIN", sqlitexNoop); err != nil {
		return nil, err
	}
	return &sqliteSession{conn: s.conn}, nil
}

func (s *SQLiteStore) Close() error {
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}

type sqliteSession struct {
	conn *sqlite.Conn
	done bool
}

func (s *sqliteSession) Insert(ctx context.Context, table string, columns []string, values []any) error {
	err := sqlitex.Exec(s.conn, insertSQL(table, columns), sqlitexNoop, values...)
	return classifySQLiteError(err)
}

func (s *sqliteSession) Exists(ctx context.Context, table, column string, value any) (bool, error) {
	var found bool
	err := sqlitex.Exec(s.conn, existsSQL(table, column), func(stmt *sqlite.Stmt) error {
		found = stmt.ColumnInt64(0) != 0
		return nil
	}, value)
	return found, err
}

func (s *sqliteSession) Commit() error {
	if s.done {
		return errors.New("sqlite store: session already finished")
	}
	s.done = true
	return sqlitex.ExecTransient(s.conn, "COMMIT", sqlitexNoop)
}

func (s *sqliteSession) Rollback() error {
	if s.done {
		return nil
	}
	s.done = true
	return sqlitex.ExecTransient(s.conn, "ROLLBACK", sqlitexNoop)
}

func classifySQLiteError(err error) error {
	if err == nil {
		return nil
	}
	if sqlite.ErrCode(err)&0xff == sqlite.SQLITE_CONSTRAINT {
		return fmt.Errorf("%w: %w", ErrConstraint, err)
	}
	return err
}

func sqlitexNoop(*sqlite.Stmt) error {
	return nil
}

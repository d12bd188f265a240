package ekidata2sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"

	"github.com/go-sql-driver/mysql"
)

// MySQL error numbers for rows the server refuses to store.
var mysqlConstraintErrors = map[uint16]bool{
	1048: true, // column cannot be null
	1062: true, // duplicate entry
	1216: true, // cannot add or update a child row
	1217: true, // cannot delete or update a parent row
	1264: true, // out of range value
	1364: true, // field doesn't have a default value
	1366: true, // incorrect value
	1406: true, // data too long
	1451: true, // cannot delete or update a parent row
	1452: true, // cannot add or update a child row
}

var mysqlDialect = dialect{
	Name: "mysql",
	TypeName: func(c columnSchema) string {
		switch c.Type {
		case integerColumn:
			return "INT"
		case floatColumn:
			return "DOUBLE"
		default:
			return fmt.Sprintf("VARCHAR(%d)", c.Length)
		}
	},
	Comments:     true,
	TableOptions: "ENGINE=InnoDB DEFAULT CHARSET=utf8mb4",
}

// MySQLConfig holds connection parameters. An empty Password means the DSN carries no
// password at all.
type MySQLConfig struct {
	Host     string `yaml:"host" validate:"required"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"-"`
}

// DSN returns the data source name for the server, or for the database when withDB is set.
func (c MySQLConfig) DSN(withDB bool) string {
	cfg := mysql.NewConfig()
	cfg.User = c.User
	cfg.Passwd = c.Password
	cfg.Net = "tcp"
	cfg.Addr = c.Host
	if _, _, err := net.SplitHostPort(c.Host); err != nil {
		cfg.Addr = net.JoinHostPort(c.Host, "3306")
	}
	if withDB {
		cfg.DBName = c.DBName
	}
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	return cfg.FormatDSN()
}

// MySQLStore writes to a MySQL database which it drops and creates on Recreate.
type MySQLStore struct {
	cfg MySQLConfig
	db  *sql.DB
}

func NewMySQLStore(cfg MySQLConfig) *MySQLStore {
	if cfg.DBName == "" {
		panic("Missing DBName")
	}
	return &MySQLStore{cfg: cfg}
}

func (s *MySQLStore) Recreate(ctx context.Context) error {
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			return err
		}
		s.db = nil
	}

	server, err := sql.Open("mysql", s.cfg.DSN(false))
	if err != nil {
		return err
	}
	defer func() { _ = server.Close() }()

	name := quoteIdent(s.cfg.DBName)
	if _, err := server.ExecContext(ctx, "DROP DATABASE IF EXISTS "+name); err != nil {
		return fmt.Errorf("mysql store: drop database: %w", err)
	}
	if _, err := server.ExecContext(ctx, "CREATE DATABASE "+name+" CHARACTER SET utf8mb4"); err != nil {
		return fmt.Errorf("mysql store: create database: %w", err)
	}

	db, err := sql.Open("mysql", s.cfg.DSN(true))
	if err != nil {
		return err
	}
	// One writer; a single connection keeps the session on one server thread.
	db.SetMaxOpenConns(1)
	s.db = db

	for _, table := range ekidataSchema {
		if _, err := db.ExecContext(ctx, createTableSQL(mysqlDialect, table)); err != nil {
			return fmt.Errorf("mysql store: create table %s: %w", table.Name, err)
		}
	}
	slog.Info(fmt.Sprintf("Created database %s on %s", s.cfg.DBName, s.cfg.Host))
	return nil
}

func (s *MySQLStore) Begin(ctx context.Context) (Session, error) {
	if s.db == nil {
		return nil, errors.New("mysql store: not created")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("mysql store: begin tx: %w", err)
	}
	return &mysqlSession{tx: tx, stmts: make(map[string]*sql.Stmt)}, nil
}

func (s *MySQLStore) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

type mysqlSession struct {
	tx    *sql.Tx
	stmts map[string]*sql.Stmt
}

func (s *mysqlSession) prepare(ctx context.Context, query string) (*sql.Stmt, error) {
	if stmt, ok := s.stmts[query]; ok {
		return stmt, nil
	}
	stmt, err := s.tx.PrepareContext(ctx, query)
	if err != nil {
		return nil, err
	}
	s.stmts[query] = stmt
	return stmt, nil
}

func (s *mysqlSession) Insert(ctx context.Context, table string, columns []string, values []any) error {
	stmt, err := s.prepare(ctx, insertSQL(table, columns))
	if err != nil {
		return err
	}
	_, err = stmt.ExecContext(ctx, values...)
	return classifyMySQLError(err)
}

func (s *mysqlSession) Exists(ctx context.Context, table, column string, value any) (bool, error) {
	stmt, err := s.prepare(ctx, existsSQL(table, column))
	if err != nil {
		return false, err
	}
	var found bool
	if err := stmt.QueryRowContext(ctx, value).Scan(&found); err != nil {
		return false, err
	}
	return found, nil
}

func (s *mysqlSession) closeStmts() {
	for query, stmt := range s.stmts {
		_ = stmt.Close()
		delete(s.stmts, query)
	}
}

func (s *mysqlSession) Commit() error {
	s.closeStmts()
	return s.tx.Commit()
}

func (s *mysqlSession) Rollback() error {
	s.closeStmts()
	err := s.tx.Rollback()
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}

func classifyMySQLError(err error) error {
	if err == nil {
		return nil
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && mysqlConstraintErrors[myErr.Number] {
		return fmt.Errorf("%w: %w", ErrConstraint, err)
	}
	return err
}

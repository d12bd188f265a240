package ekidata2sql

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// Config is everything an import run needs. Values are layered: DefaultConfig, then an
// optional YAML file, then the environment, then command-line flags.
type Config struct {
	Driver  string `yaml:"driver" validate:"oneof=mysql sqlite"`
	DBName  string `yaml:"dbname" validate:"required,dbname"`
	DataDir string `yaml:"datadir" validate:"required"`
	// Out is the SQLite database file. Defaults to <dbname>.db.
	Out      string   `yaml:"out"`
	Encoding Encoding `yaml:"encoding" validate:"oneof=utf-8 shift_jis"`
	// ClipFeature is a path to a GeoJSON file. Stations outside it are not imported.
	ClipFeature string      `yaml:"clip_feature"`
	MySQL       MySQLConfig `yaml:"mysql"`
}

func DefaultConfig() Config {
	return Config{
		Driver:   DriverMySQL,
		DBName:   "ekidata",
		DataDir:  ".",
		Encoding: EncodingUTF8,
		MySQL:    MySQLConfig{Host: "localhost"},
	}
}

// LoadConfigFile overlays the YAML file at path onto cfg.
func LoadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays MYSQL_HOST, MYSQL_USER and MYSQL_PWD. Unset variables leave cfg alone.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup("MYSQL_HOST"); ok && v != "" {
		c.MySQL.Host = v
	}
	if v, ok := lookup("MYSQL_USER"); ok {
		c.MySQL.User = v
	}
	if v, ok := lookup("MYSQL_PWD"); ok {
		c.MySQL.Password = v
	}
}

var dbNamePattern = regexp.MustCompile(`^[A-Za-z0-9_$]{1,64}$`)

func (c *Config) Validate() error {
	v := validator.New()
	err := v.RegisterValidation("dbname", func(fl validator.FieldLevel) bool {
		return dbNamePattern.MatchString(fl.Field().String())
	})
	if err != nil {
		return err
	}
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// SQLitePath is the database file used by the sqlite driver.
func (c *Config) SQLitePath() string {
	if c.Out != "" {
		return c.Out
	}
	return c.DBName + ".db"
}

// NewStore returns the destination store selected by Driver.
func (c *Config) NewStore() Store {
	switch strings.ToLower(c.Driver) {
	case DriverSQLite:
		return NewSQLiteStore(c.SQLitePath())
	default:
		mysqlCfg := c.MySQL
		mysqlCfg.DBName = c.DBName
		return NewMySQLStore(mysqlCfg)
	}
}

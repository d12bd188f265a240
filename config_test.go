package ekidata2sql

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "ekidata", cfg.DBName)
	assert.Equal(t, ".", cfg.DataDir)
	assert.Equal(t, "localhost", cfg.MySQL.Host)
	assert.Equal(t, "ekidata.db", cfg.SQLitePath())
}

func TestConfigValidation(t *testing.T) {
	cases := map[string]func(*Config){
		"driver":      func(c *Config) { c.Driver = "postgres" },
		"dbname":      func(c *Config) { c.DBName = "ekidata; DROP DATABASE mysql" },
		"empty name":  func(c *Config) { c.DBName = "" },
		"encoding":    func(c *Config) { c.Encoding = "euc-jp" },
		"no data dir": func(c *Config) { c.DataDir = "" },
		"no host":     func(c *Config) { c.MySQL.Host = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestConfigApplyEnv(t *testing.T) {
	env := map[string]string{
		"MYSQL_HOST": "db.internal:3307",
		"MYSQL_USER": "eki",
	}
	cfg := DefaultConfig()
	cfg.ApplyEnv(func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	})

	assert.Equal(t, "db.internal:3307", cfg.MySQL.Host)
	assert.Equal(t, "eki", cfg.MySQL.User)
	assert.Equal(t, "", cfg.MySQL.Password)
}

func TestLoadConfigFile(t *testing.T) {
	dir := testTempdir(t)
	path := filepath.Join(dir, "ekidata.yml")
	writeFile(t, path, `
driver: sqlite
dbname: railway
datadir: /srv/ekidata
encoding: shift_jis
mysql:
  host: db
  user: loader
`)

	cfg := DefaultConfig()
	require.NoError(t, LoadConfigFile(path, &cfg))
	require.NoError(t, cfg.Validate())

	assert.Equal(t, DriverSQLite, cfg.Driver)
	assert.Equal(t, "railway", cfg.DBName)
	assert.Equal(t, "/srv/ekidata", cfg.DataDir)
	assert.Equal(t, EncodingShiftJIS, cfg.Encoding)
	assert.Equal(t, "db", cfg.MySQL.Host)
	assert.Equal(t, "loader", cfg.MySQL.User)
	assert.Equal(t, "railway.db", cfg.SQLitePath())
	assert.IsType(t, &SQLiteStore{}, cfg.NewStore())
}

func TestLoadConfigFileErrors(t *testing.T) {
	dir := testTempdir(t)
	cfg := DefaultConfig()
	require.Error(t, LoadConfigFile(filepath.Join(dir, "missing.yml"), &cfg))

	path := filepath.Join(dir, "bad.yml")
	writeFile(t, path, "driver: [mysql")
	require.Error(t, LoadConfigFile(path, &cfg))
}

func TestConfigNewStoreMySQL(t *testing.T) {
	cfg := DefaultConfig()
	store, ok := cfg.NewStore().(*MySQLStore)
	require.True(t, ok)
	assert.Equal(t, "ekidata", store.cfg.DBName)
}

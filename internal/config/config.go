package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/joho/godotenv"

	"github.com/papyrusworks/papyrus/pkg/database"
)

// Config is the top-level configuration loaded from HCL.
type Config struct {
	Server   *Server   `hcl:"server,block"`
	Database *Database `hcl:"database,block"`
	Log      *Log      `hcl:"log,block"`
}

// Server configures the HTTP listener.
type Server struct {
	// Addr is the address to listen on, e.g. "127.0.0.1:8000".
	Addr string `hcl:"addr,optional"`

	// BaseURL is the externally visible URL of the service, used when
	// building absolute links.
	BaseURL string `hcl:"base_url,optional"`

	// CORSOrigins lists origins allowed to call the API from a
	// browser. Empty means same-origin only.
	CORSOrigins []string `hcl:"cors_origins,optional"`
}

// Database configures the storage backend.
type Database struct {
	// Driver is "postgres" or "sqlite".
	Driver string `hcl:"driver,optional"`

	// Postgres settings.
	Host     string `hcl:"host,optional"`
	Port     int    `hcl:"port,optional"`
	User     string `hcl:"user,optional"`
	Password string `hcl:"password,optional"`
	DBName   string `hcl:"dbname,optional"`
	SSLMode  string `hcl:"sslmode,optional"`

	// Path is the SQLite database file.
	Path string `hcl:"path,optional"`

	// Connection pool settings.
	MaxIdleConns       int `hcl:"max_idle_conns,optional"`
	MaxOpenConns       int `hcl:"max_open_conns,optional"`
	ConnMaxLifetimeMin int `hcl:"conn_max_lifetime_minutes,optional"`
	ConnMaxIdleTimeMin int `hcl:"conn_max_idle_time_minutes,optional"`

	// AutoMigrate applies pending schema migrations on startup.
	AutoMigrate *bool `hcl:"auto_migrate,optional"`
}

// Log configures logging output.
type Log struct {
	// Level is one of trace, debug, info, warn, error.
	Level string `hcl:"level,optional"`

	// JSON switches output to one JSON object per line.
	JSON bool `hcl:"json,optional"`
}

// NewConfig parses the HCL file at path and returns the resulting
// configuration with defaults and environment overrides applied.
// Environment variables are also read from a .env file if one exists
// in the working directory.
func NewConfig(path string) (*Config, error) {
	// A missing .env file is not an error.
	_ = godotenv.Load()

	var cfg Config
	if err := hclsimple.DecodeFile(path, nil, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	cfg.applyDefaults()
	cfg.applyEnvOverrides()
	return &cfg, nil
}

// DefaultConfig returns the zero-config setup: an embedded SQLite
// database in the working directory and a localhost listener.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.applyEnvOverrides()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Server == nil {
		c.Server = &Server{}
	}
	if c.Server.Addr == "" {
		c.Server.Addr = "127.0.0.1:8000"
	}
	if c.Server.BaseURL == "" {
		c.Server.BaseURL = "http://" + c.Server.Addr
	}

	if c.Database == nil {
		c.Database = &Database{}
	}
	if c.Database.Driver == "" {
		if c.Database.Host != "" || c.Database.DBName != "" {
			c.Database.Driver = string(database.DriverPostgres)
		} else {
			c.Database.Driver = string(database.DriverSQLite)
		}
	}
	if c.Database.Driver == string(database.DriverSQLite) && c.Database.Path == "" {
		c.Database.Path = "papyrus.db"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.AutoMigrate == nil {
		// Single-file databases migrate themselves; Postgres deploys
		// run migrations as an explicit step.
		autoMigrate := c.Database.Driver == string(database.DriverSQLite)
		c.Database.AutoMigrate = &autoMigrate
	}

	if c.Log == nil {
		c.Log = &Log{}
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// applyEnvOverrides lets deploy environments inject settings, most
// importantly credentials, without writing them into the HCL file.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("PAPYRUS_SERVER_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("PAPYRUS_BASE_URL"); v != "" {
		c.Server.BaseURL = v
	}
	if v := os.Getenv("PAPYRUS_DB_DRIVER"); v != "" {
		c.Database.Driver = v
	}
	if v := os.Getenv("PAPYRUS_DB_HOST"); v != "" {
		c.Database.Host = v
	}
	if v := os.Getenv("PAPYRUS_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Database.Port = port
		}
	}
	if v := os.Getenv("PAPYRUS_DB_USER"); v != "" {
		c.Database.User = v
	}
	if v := os.Getenv("PAPYRUS_DB_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv("PAPYRUS_DB_NAME"); v != "" {
		c.Database.DBName = v
	}
	if v := os.Getenv("PAPYRUS_DB_SSLMODE"); v != "" {
		c.Database.SSLMode = v
	}
	if v := os.Getenv("PAPYRUS_DB_PATH"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("PAPYRUS_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// Validate returns an error describing every problem with the
// configuration rather than stopping at the first.
func (c *Config) Validate() error {
	var result *multierror.Error

	switch c.Database.Driver {
	case string(database.DriverPostgres):
		if c.Database.Host == "" {
			result = multierror.Append(result, fmt.Errorf("database host is required for the postgres driver"))
		}
		if c.Database.User == "" {
			result = multierror.Append(result, fmt.Errorf("database user is required for the postgres driver"))
		}
		if c.Database.DBName == "" {
			result = multierror.Append(result, fmt.Errorf("database dbname is required for the postgres driver"))
		}
	case string(database.DriverSQLite):
		if c.Database.Path == "" {
			result = multierror.Append(result, fmt.Errorf("database path is required for the sqlite driver"))
		}
	default:
		result = multierror.Append(result, fmt.Errorf("unsupported database driver: %q", c.Database.Driver))
	}

	if c.Server.Addr == "" {
		result = multierror.Append(result, fmt.Errorf("server addr is required"))
	}

	switch c.Log.Level {
	case "trace", "debug", "info", "warn", "error":
	default:
		result = multierror.Append(result, fmt.Errorf("unknown log level: %q", c.Log.Level))
	}

	return result.ErrorOrNil()
}

// DatabaseConfig maps the database block onto the connection settings
// used by pkg/database.
func (c *Config) DatabaseConfig() database.Config {
	return database.Config{
		Driver:          database.Driver(c.Database.Driver),
		Host:            c.Database.Host,
		Port:            c.Database.Port,
		User:            c.Database.User,
		Password:        c.Database.Password,
		DBName:          c.Database.DBName,
		SSLMode:         c.Database.SSLMode,
		Path:            c.Database.Path,
		MaxIdleConns:    c.Database.MaxIdleConns,
		MaxOpenConns:    c.Database.MaxOpenConns,
		ConnMaxLifetime: time.Duration(c.Database.ConnMaxLifetimeMin) * time.Minute,
		ConnMaxIdleTime: time.Duration(c.Database.ConnMaxIdleTimeMin) * time.Minute,
	}
}

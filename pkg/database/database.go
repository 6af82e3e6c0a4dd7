package database

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/hashicorp/go-hclog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Driver selects the database backend.
type Driver string

const (
	// DriverPostgres is the production backend.
	DriverPostgres Driver = "postgres"

	// DriverSQLite is a single-file backend for local development and
	// tests.
	DriverSQLite Driver = "sqlite"
)

// Config holds configuration for database connection.
type Config struct {
	Driver Driver

	// Postgres connection settings.
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string

	// SQLite database file path. ":memory:" is accepted.
	Path string

	// Connection pool settings.
	MaxIdleConns    int           // Maximum idle connections in pool (default: 10)
	MaxOpenConns    int           // Maximum open connections (default: 25)
	ConnMaxLifetime time.Duration // Maximum connection lifetime (default: 5 minutes)
	ConnMaxIdleTime time.Duration // Maximum connection idle time (default: 10 minutes)
}

// PostgresDSN returns the connection string for the Postgres settings.
func (c Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host,
		c.Port,
		c.User,
		c.Password,
		c.DBName,
		c.SSLMode,
	)
}

// Connect establishes a database connection using the provided configuration.
// This is the shared database connection logic used by all binaries.
func Connect(cfg Config, log hclog.Logger) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		// Normalize driver-specific errors (unique violations in
		// particular) into GORM's translated errors.
		TranslateError: true,
	}
	if log != nil {
		gormConfig.Logger = NewGormLogger(log.Named("gorm"))
	} else {
		gormConfig.Logger = logger.Default.LogMode(logger.Silent)
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case DriverSQLite:
		if cfg.Path == "" {
			return nil, fmt.Errorf("sqlite driver requires a database path")
		}
		dialector = sqlite.Open(cfg.Path)
	case DriverPostgres, "":
		dialector = postgres.Open(cfg.PostgresDSN())
	default:
		return nil, fmt.Errorf("unsupported database driver: %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying SQL DB: %w", err)
	}

	// Apply connection pool settings with sensible defaults.
	maxIdleConns := cfg.MaxIdleConns
	if maxIdleConns == 0 {
		maxIdleConns = 10
	}
	sqlDB.SetMaxIdleConns(maxIdleConns)

	maxOpenConns := cfg.MaxOpenConns
	if maxOpenConns == 0 {
		maxOpenConns = 25
	}
	if cfg.Driver == DriverSQLite {
		// SQLite serializes writers, and each pooled connection to a
		// ":memory:" database would see its own empty schema.
		maxOpenConns = 1
	}
	sqlDB.SetMaxOpenConns(maxOpenConns)

	connMaxLifetime := cfg.ConnMaxLifetime
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	sqlDB.SetConnMaxLifetime(connMaxLifetime)

	connMaxIdleTime := cfg.ConnMaxIdleTime
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	if log != nil {
		log.Info("connected to database",
			"driver", driverName(cfg.Driver),
			"max_idle_conns", maxIdleConns,
			"max_open_conns", maxOpenConns,
			"conn_max_lifetime", connMaxLifetime,
			"conn_max_idle_time", connMaxIdleTime,
		)
	}

	return db, nil
}

// ConnectWithBackoff establishes a database connection, retrying with
// exponential backoff until the context is canceled or the maximum
// elapsed time passes. Server startup uses this so the process survives
// a database that comes up a few seconds later.
func ConnectWithBackoff(ctx context.Context, cfg Config, log hclog.Logger) (*gorm.DB, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxInterval = 10 * time.Second
	bo.MaxElapsedTime = 1 * time.Minute

	var db *gorm.DB
	op := func() error {
		var err error
		db, err = Connect(cfg, log)
		if err != nil {
			if log != nil {
				log.Warn("database not ready, retrying",
					"error", err,
				)
			}
			return err
		}
		return nil
	}

	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func driverName(d Driver) string {
	if d == "" {
		return string(DriverPostgres)
	}
	return string(d)
}

// PoolStats holds database connection pool statistics.
type PoolStats struct {
	MaxOpenConnections int           // Maximum number of open connections to the database
	OpenConnections    int           // The number of established connections both in use and idle
	InUse              int           // The number of connections currently in use
	Idle               int           // The number of idle connections
	WaitCount          int64         // The total number of connections waited for
	WaitDuration       time.Duration // The total time blocked waiting for a new connection
	MaxIdleClosed      int64         // The total number of connections closed due to SetMaxIdleConns
	MaxIdleTimeClosed  int64         // The total number of connections closed due to SetConnMaxIdleTime
	MaxLifetimeClosed  int64         // The total number of connections closed due to SetConnMaxLifetime
}

// GetPoolStats returns connection pool statistics from a GORM DB instance.
// Useful for monitoring and debugging connection pool performance.
func GetPoolStats(db *gorm.DB) (*PoolStats, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying SQL DB: %w", err)
	}

	stats := sqlDB.Stats()
	return &PoolStats{
		MaxOpenConnections: stats.MaxOpenConnections,
		OpenConnections:    stats.OpenConnections,
		InUse:              stats.InUse,
		Idle:               stats.Idle,
		WaitCount:          stats.WaitCount,
		WaitDuration:       stats.WaitDuration,
		MaxIdleClosed:      stats.MaxIdleClosed,
		MaxIdleTimeClosed:  stats.MaxIdleTimeClosed,
		MaxLifetimeClosed:  stats.MaxLifetimeClosed,
	}, nil
}

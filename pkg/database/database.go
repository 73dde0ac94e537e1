package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/hashicorp-forge/dropinblog/pkg/models"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds configuration for database connection.
type Config struct {
	// Driver is "postgres" or "sqlite".
	Driver string

	// DSN is passed to the driver as-is. For sqlite this is a file path or
	// ":memory:".
	DSN string

	MaxIdleConns    int           // default: 2
	MaxOpenConns    int           // default: 10
	ConnMaxLifetime time.Duration // default: 5 minutes

	// AutoMigrate creates or updates the connector tables on connect.
	AutoMigrate bool

	// SlowQueryThreshold marks queries logged as slow. Default: 200ms.
	SlowQueryThreshold time.Duration
}

// Connect opens the database described by cfg.
func Connect(cfg Config, log hclog.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case DriverPostgres:
		dialector = postgres.Open(cfg.DSN)
	case DriverSQLite, "":
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	gormConfig := &gorm.Config{}
	if log != nil {
		gormConfig.Logger = newQueryLogger(log.Named("gorm"), cfg.SlowQueryThreshold).LogMode(logger.Warn)
	} else {
		gormConfig.Logger = logger.Default.LogMode(logger.Silent)
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying SQL DB: %w", err)
	}

	maxIdleConns := cfg.MaxIdleConns
	if maxIdleConns == 0 {
		maxIdleConns = 2
	}
	sqlDB.SetMaxIdleConns(maxIdleConns)

	maxOpenConns := cfg.MaxOpenConns
	if maxOpenConns == 0 {
		maxOpenConns = 10
	}
	// An in-memory sqlite database exists per connection.
	if cfg.Driver != DriverPostgres && cfg.DSN == ":memory:" {
		maxOpenConns = 1
	}
	sqlDB.SetMaxOpenConns(maxOpenConns)

	connMaxLifetime := cfg.ConnMaxLifetime
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	sqlDB.SetConnMaxLifetime(connMaxLifetime)

	if cfg.AutoMigrate {
		if err := db.AutoMigrate(models.ModelsToAutoMigrate()...); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	if log != nil {
		log.Info("connected to database",
			"driver", dialector.Name(),
			"max_open_conns", maxOpenConns,
			"auto_migrate", cfg.AutoMigrate,
		)
	}

	return db, nil
}

// queryLogger sends gorm output to hclog. Failed queries log at error, slow
// ones at warn, and everything else at debug when gorm is at Info.
type queryLogger struct {
	log   hclog.Logger
	level logger.LogLevel
	slow  time.Duration
}

func newQueryLogger(log hclog.Logger, slow time.Duration) *queryLogger {
	if slow <= 0 {
		slow = 200 * time.Millisecond
	}
	return &queryLogger{log: log, level: logger.Info, slow: slow}
}

func (q *queryLogger) LogMode(level logger.LogLevel) logger.Interface {
	c := *q
	c.level = level
	return &c
}

func (q *queryLogger) Info(_ context.Context, msg string, data ...interface{}) {
	q.emit(logger.Info, hclog.Info, msg, data)
}

func (q *queryLogger) Warn(_ context.Context, msg string, data ...interface{}) {
	q.emit(logger.Warn, hclog.Warn, msg, data)
}

func (q *queryLogger) Error(_ context.Context, msg string, data ...interface{}) {
	q.emit(logger.Error, hclog.Error, msg, data)
}

func (q *queryLogger) emit(at logger.LogLevel, lvl hclog.Level, msg string, data []interface{}) {
	if q.level >= at {
		q.log.Log(lvl, fmt.Sprintf(msg, data...))
	}
}

func (q *queryLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if q.level <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()
	args := []interface{}{"elapsed", elapsed, "rows", rows, "sql", sql}

	switch {
	case err != nil && !errors.Is(err, logger.ErrRecordNotFound):
		if q.level >= logger.Error {
			q.log.Error("database query failed", append(args, "error", err)...)
		}
	case elapsed > q.slow:
		if q.level >= logger.Warn {
			q.log.Warn("slow database query", args...)
		}
	case q.level >= logger.Info:
		q.log.Debug("database query", args...)
	}
}

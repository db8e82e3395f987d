package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/atelier/backend/internal/domain/catalog"
	"github.com/atelier/backend/internal/domain/partner"
	"github.com/atelier/backend/internal/domain/settings"
	"github.com/atelier/backend/internal/infrastructure/config"
	"github.com/atelier/backend/internal/infrastructure/logger"
	"github.com/atelier/backend/internal/infrastructure/persistence/models"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Dialect names the SQL flavour behind a Database
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// Database holds the database connection and provides methods for database operations
type Database struct {
	DB      *gorm.DB
	dialect Dialect
	retry   RetryPolicy
}

// NewDatabase opens the store selected by cfg.Driver
func NewDatabase(cfg *config.DatabaseConfig, zapLogger *zap.Logger) (*Database, error) {
	return NewDatabaseWithLogger(cfg, zapLogger, gormlogger.Warn)
}

// NewDatabaseWithLogger opens the store with a custom GORM log level
func NewDatabaseWithLogger(cfg *config.DatabaseConfig, zapLogger *zap.Logger, logLevel gormlogger.LogLevel) (*Database, error) {
	if zapLogger == nil {
		zapLogger = zap.NewNop()
	}

	var (
		dialector gorm.Dialector
		dialect   Dialect
	)
	if cfg.IsSQLite() {
		dialector = sqlite.Open(cfg.SQLiteDSN())
		dialect = DialectSQLite
	} else {
		dialector = postgres.Open(cfg.DSN())
		dialect = DialectPostgres
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 logger.NewGormLogger(zapLogger, logLevel, cfg.SlowQueryThresh),
		SkipDefaultTransaction: true,
		PrepareStmt:            dialect == DialectPostgres,
		TranslateError:         true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	d := &Database{
		DB:      db,
		dialect: dialect,
		retry:   NewRetryPolicy(cfg.BusyRetries, cfg.BusyRetryDelay, zapLogger),
	}
	if cfg.AutoMigrate {
		if err := d.AutoMigrate(); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// NewDatabaseFromGorm wraps an already opened GORM handle
func NewDatabaseFromGorm(db *gorm.DB, retry RetryPolicy) *Database {
	dialect := DialectPostgres
	if db.Dialector != nil && db.Dialector.Name() == "sqlite" {
		dialect = DialectSQLite
	}
	return &Database{DB: db, dialect: dialect, retry: retry}
}

// Dialect returns the SQL flavour of the store
func (d *Database) Dialect() Dialect {
	return d.dialect
}

// Retry returns the busy retry policy of the store
func (d *Database) Retry() RetryPolicy {
	return d.retry
}

// Models lists every table managed by the store
func Models() []any {
	return []any{
		&catalog.Product{},
		&catalog.Variation{},
		&catalog.Category{},
		&catalog.Attribute{},
		&catalog.Term{},
		&catalog.Tag{},
		&partner.Client{},
		&partner.Employee{},
		&settings.Settings{},
		&models.QuoteModel{},
		&models.InvoiceModel{},
	}
}

// AutoMigrate creates or updates every table
func (d *Database) AutoMigrate() error {
	if err := d.DB.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Close closes the database connection
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// Ping checks if the database connection is alive
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Stats returns database connection pool statistics and an error if unable to retrieve
func (d *Database) Stats() (ConnectionStats, error) {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return ConnectionStats{}, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	stats := sqlDB.Stats()
	return ConnectionStats{
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

// ConnectionStats holds database connection pool statistics
type ConnectionStats struct {
	MaxOpenConnections int
	OpenConnections    int
	InUse              int
	Idle               int
	WaitCount          int64
	WaitDuration       time.Duration
	MaxIdleClosed      int64
	MaxIdleTimeClosed  int64
	MaxLifetimeClosed  int64
}

// Transaction executes fn within one database transaction. The whole
// transaction is replayed while the store reports lock contention.
func (d *Database) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return d.retry.Do(ctx, func() error {
		return d.DB.WithContext(ctx).Transaction(fn)
	})
}

package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/savings/backend/internal/infrastructure/config"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Database owns the PostgreSQL pool shared by repositories and the outbox
type Database struct {
	DB  *gorm.DB
	sql *sql.DB
}

type openOptions struct {
	gormLogger logger.Interface
	log        *zap.Logger
	dialector  gorm.Dialector
}

// OpenOption customizes Open
type OpenOption func(*openOptions)

// WithGormLogger routes gorm's SQL logging through l
func WithGormLogger(l logger.Interface) OpenOption {
	return func(o *openOptions) { o.gormLogger = l }
}

// WithStartupLog reports failed connection attempts while the database comes up
func WithStartupLog(log *zap.Logger) OpenOption {
	return func(o *openOptions) { o.log = log }
}

func withDialector(d gorm.Dialector) OpenOption {
	return func(o *openOptions) { o.dialector = d }
}

// Open connects to PostgreSQL and sizes the pool. The first ping is retried
// cfg.ConnectAttempts times, cfg.ConnectWait apart, so the server can start
// before the database accepts connections.
func Open(ctx context.Context, cfg *config.DatabaseConfig, opts ...OpenOption) (*Database, error) {
	o := openOptions{
		gormLogger: logger.Default.LogMode(logger.Silent),
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.dialector == nil {
		o.dialector = postgres.Open(cfg.DSN())
	}

	db, err := gorm.Open(o.dialector, &gorm.Config{
		Logger:                 o.gormLogger,
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
		TranslateError:         true,
		DisableAutomaticPing:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := waitForDatabase(ctx, sqlDB, max(cfg.ConnectAttempts, 1), cfg.ConnectWait, o.log); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return &Database{DB: db, sql: sqlDB}, nil
}

func waitForDatabase(ctx context.Context, sqlDB *sql.DB, attempts int, wait time.Duration, log *zap.Logger) error {
	var err error
	for attempt := 1; ; attempt++ {
		if err = sqlDB.PingContext(ctx); err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}
		log.Warn("Database not reachable yet",
			zap.Int("attempt", attempt),
			zap.Int("attempts", attempts),
			zap.Duration("retry_in", wait),
			zap.Error(err),
		)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("wait for database: %w", ctx.Err())
		case <-timer.C:
		}
	}
	return fmt.Errorf("ping database after %d attempts: %w", attempts, err)
}

// Ping reports whether the database answers within five seconds
func (d *Database) Ping() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return d.sql.PingContext(ctx)
}

// SQL exposes the pool for instrumentation
func (d *Database) SQL() *sql.DB {
	return d.sql
}

func (d *Database) Close() error {
	return d.sql.Close()
}

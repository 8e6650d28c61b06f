package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/storefront-labs/storefront-backend/pkg/config"
	"github.com/storefront-labs/storefront-backend/pkg/logger"
)

// Client owns the gorm connection pool.
type Client struct {
	conn *gorm.DB
}

// New opens Postgres (or SQLite in dev) per cfg. SQLite gets the embedded schema
// applied so local runs need no goose step.
func New(ctx context.Context, cfg config.DBConfig, logg *logger.Logger) (*Client, error) {
	if cfg.DSN == "" {
		return nil, errors.New("database DSN is required")
	}
	queries := newQueryLogger(logg, cfg.SlowQueryThreshold)

	if cfg.UsesSQLite() {
		conn, err := openSQLite(ctx, cfg.DSN, queries)
		if err != nil {
			return nil, err
		}
		logConnected(ctx, logg, config.DriverSQLite)
		return &Client{conn: conn}, nil
	}

	conn, err := gorm.Open(postgres.New(postgres.Config{DSN: cfg.DSN, PreferSimpleProtocol: true}), gormConfig(queries))
	if err != nil {
		return nil, fmt.Errorf("opening postgres: %w", err)
	}
	pool, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql db handle: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		pool.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		pool.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	pool.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	pool.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	logConnected(ctx, logg, config.DriverPostgres)
	return &Client{conn: conn}, nil
}

// OpenSQLite opens a schema-ready SQLite handle. Tests pass in-memory DSNs.
func OpenSQLite(ctx context.Context, dsn string) (*gorm.DB, error) {
	return openSQLite(ctx, dsn, newQueryLogger(nil, 0))
}

func openSQLite(ctx context.Context, dsn string, queries *queryLogger) (*gorm.DB, error) {
	conn, err := gorm.Open(sqlite.Open(dsn), gormConfig(queries))
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}
	pool, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql db handle: %w", err)
	}
	// sqlite allows one writer; a second pooled connection would see SQLITE_BUSY
	pool.SetMaxOpenConns(1)
	if err := ApplySQLiteSchema(ctx, conn); err != nil {
		return nil, err
	}
	return conn, nil
}

// NewFromConn wraps an already-open connection.
func NewFromConn(conn *gorm.DB) *Client {
	return &Client{conn: conn}
}

func gormConfig(queries *queryLogger) *gorm.Config {
	return &gorm.Config{
		Logger:                 queries,
		SkipDefaultTransaction: true,
		NowFunc:                func() time.Time { return time.Now().UTC() },
	}
}

func logConnected(ctx context.Context, logg *logger.Logger, driver string) {
	if logg != nil {
		logg.Info(logg.WithField(ctx, "driver", driver), "db.connected")
	}
}

func (c *Client) DB() *gorm.DB {
	return c.conn
}

// Ping backs the readiness probe.
func (c *Client) Ping(ctx context.Context) error {
	pool, err := c.conn.DB()
	if err != nil {
		return err
	}
	return pool.PingContext(ctx)
}

func (c *Client) Close() error {
	pool, err := c.conn.DB()
	if err != nil {
		return err
	}
	return pool.Close()
}

// WithTx runs fn in a transaction. An error or panic from fn rolls back.
func (c *Client) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return c.conn.WithContext(ctx).Transaction(fn)
}

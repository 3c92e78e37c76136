package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"
	"time"

	"github.com/lib/pq"
	"github.com/outreachworks/crm-bridge/config"
	"go.uber.org/zap"
)

// DB wraps the sql.DB connection pool
type DB struct {
	*sql.DB
	logger *zap.Logger
}

type connectOptions struct {
	operation string
	open      func(ctx context.Context) (*sql.DB, error)
	sleep     func(time.Duration)
}

// ConnectOption overrides part of the connect behavior, primarily so tests can
// inject a failing opener and skip the real wait between attempts.
type ConnectOption func(*connectOptions)

// WithOperation sets the operation tag used in retry log lines
func WithOperation(tag string) ConnectOption {
	return func(o *connectOptions) { o.operation = tag }
}

// WithOpener replaces the function that opens and verifies the connection
func WithOpener(open func(ctx context.Context) (*sql.DB, error)) ConnectOption {
	return func(o *connectOptions) { o.open = open }
}

// WithSleep replaces the wait between attempts
func WithSleep(sleep func(time.Duration)) ConnectOption {
	return func(o *connectOptions) { o.sleep = sleep }
}

// Connect establishes the process-wide database connection. It is called once
// by the composition root; the resulting handle is shared by every repository
// for the process lifetime.
//
// Only transient connectivity failures are retried, up to
// cfg.ConnectMaxAttempts with a fixed cfg.ConnectRetryWait between attempts.
// Any other error is returned immediately. After exhausting its attempts the
// last transient error is returned, which is fatal to process startup.
func Connect(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger, opts ...ConnectOption) (*DB, error) {
	options := &connectOptions{
		operation: "connect database",
		sleep:     time.Sleep,
		open: func(ctx context.Context) (*sql.DB, error) {
			return open(ctx, cfg)
		},
	}
	for _, opt := range opts {
		opt(options)
	}

	maxAttempts := cfg.ConnectMaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 3
	}
	wait := cfg.ConnectRetryWait
	if wait <= 0 {
		wait = time.Second
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		db, err := options.open(ctx)
		if err == nil {
			logger.Info("database connection established",
				zap.String("connection", cfg.LogString()),
				zap.Int("attempt", attempt))
			return &DB{DB: db, logger: logger}, nil
		}

		if !isTransient(err) {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}

		lastErr = err
		if attempt < maxAttempts {
			logger.Warn(fmt.Sprintf("%s failed, retrying", options.operation),
				zap.Int("attempt", attempt),
				zap.Duration("wait", wait),
				zap.Error(err))
			options.sleep(wait)
		}
	}

	logger.Warn(fmt.Sprintf("%s still unsuccessful after %d attempts. Giving up.",
		options.operation, maxAttempts),
		zap.Error(lastErr))
	return nil, lastErr
}

// open opens the pool, applies the pool settings and verifies the connection
func open(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// isTransient reports whether err is a connectivity failure worth retrying.
// Anything else (bad DSN, authentication failure, missing database) fails
// startup immediately.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		// a host name that does not resolve is a configuration error
		return dnsErr.IsTemporary || dnsErr.IsTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		code := string(pqErr.Code)
		// class 08: connection exceptions; 57P01/57P03: server shutting
		// down / not yet accepting connections
		return strings.HasPrefix(code, "08") || code == "57P01" || code == "57P03"
	}
	return false
}

// Close closes the database connection pool
func (db *DB) Close() error {
	db.logger.Info("closing database connection")
	return db.DB.Close()
}

// HealthCheck performs a health check on the database
func (db *DB) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

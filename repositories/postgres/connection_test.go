package postgres

import (
	"context"
	"database/sql"
	"errors"
	"net"
	"syscall"
	"testing"
	"time"

	"github.com/outreachworks/crm-bridge/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func retryConfig(attempts int) config.DatabaseConfig {
	return config.DatabaseConfig{
		Host:               "localhost",
		Port:               5432,
		User:               "bridge",
		Database:           "bridge_test",
		ConnectMaxAttempts: attempts,
		ConnectRetryWait:   time.Second,
	}
}

// lazyHandle returns a pool handle without touching the network; sql.Open does
// not dial until the handle is used
func lazyHandle(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("postgres", "postgres://bridge@localhost:5432/bridge_test?sslmode=disable")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestConnect_RetriesTransientFailures(t *testing.T) {
	attempts := 0
	sleeps := 0
	opener := func(ctx context.Context) (*sql.DB, error) {
		attempts++
		if attempts < 3 {
			return nil, syscall.ECONNREFUSED
		}
		return lazyHandle(t), nil
	}

	db, err := Connect(context.Background(), retryConfig(3), zap.NewNop(),
		WithOpener(opener),
		WithSleep(func(time.Duration) { sleeps++ }))

	require.NoError(t, err)
	require.NotNil(t, db)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, 2, sleeps, "no wait after the successful attempt")
}

func TestConnect_GivesUpAfterMaxAttempts(t *testing.T) {
	attempts := 0
	opener := func(ctx context.Context) (*sql.DB, error) {
		attempts++
		return nil, syscall.ECONNREFUSED
	}

	db, err := Connect(context.Background(), retryConfig(3), zap.NewNop(),
		WithOpener(opener),
		WithSleep(func(time.Duration) {}))

	require.Error(t, err)
	assert.Nil(t, db)
	assert.Equal(t, 3, attempts)
	assert.ErrorIs(t, err, syscall.ECONNREFUSED)
}

func TestConnect_NonTransientFailureIsImmediate(t *testing.T) {
	attempts := 0
	opener := func(ctx context.Context) (*sql.DB, error) {
		attempts++
		return nil, errors.New("pq: password authentication failed")
	}

	db, err := Connect(context.Background(), retryConfig(3), zap.NewNop(),
		WithOpener(opener),
		WithSleep(func(time.Duration) {}))

	require.Error(t, err)
	assert.Nil(t, db)
	assert.Equal(t, 1, attempts, "a non-transient error is never retried")
}

func TestConnect_DefaultsAttemptsAndWait(t *testing.T) {
	cfg := retryConfig(0)
	cfg.ConnectRetryWait = 0

	attempts := 0
	var waited time.Duration
	opener := func(ctx context.Context) (*sql.DB, error) {
		attempts++
		return nil, syscall.ECONNREFUSED
	}

	_, err := Connect(context.Background(), cfg, zap.NewNop(),
		WithOpener(opener),
		WithSleep(func(d time.Duration) { waited = d }))

	require.Error(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, time.Second, waited)
}

func TestIsTransient(t *testing.T) {
	assert.True(t, isTransient(syscall.ECONNREFUSED))
	assert.True(t, isTransient(syscall.ECONNRESET))
	assert.True(t, isTransient(context.DeadlineExceeded))
	assert.True(t, isTransient(&net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}))
	assert.False(t, isTransient(nil))
	assert.False(t, isTransient(errors.New("pq: password authentication failed")))
	assert.False(t, isTransient(sql.ErrNoRows))
}

func TestIsTransient_DNSFailures(t *testing.T) {
	// a mistyped host must fail fast, not burn the retry budget
	assert.False(t, isTransient(&net.DNSError{Err: "no such host", Name: "db.typo.internal", IsNotFound: true}))
	assert.True(t, isTransient(&net.DNSError{Err: "i/o timeout", Name: "db.internal", IsTimeout: true}))
	assert.True(t, isTransient(&net.DNSError{Err: "server misbehaving", Name: "db.internal", IsTemporary: true}))
}

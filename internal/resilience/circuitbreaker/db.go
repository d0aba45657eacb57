package circuitbreaker

import (
	"context"
	"database/sql"
	"time"
)

// DBConfig opens after 5 consecutive failures and retries after 30s.
func DBConfig() Config {
	return Config{
		Name:             "database",
		MaxRequests:      3,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 1.0,
		MinRequests:      5,
	}
}

// Pinger is the subset of *sql.DB needed for health checks.
type Pinger interface {
	PingContext(ctx context.Context) error
}

var _ Pinger = (*sql.DB)(nil)

// DBCircuitBreaker guards database health checks so a dead database is
// reported quickly instead of every check waiting on a connect timeout.
type DBCircuitBreaker struct {
	cb *CircuitBreaker
	db Pinger
}

// NewDBCircuitBreaker wraps db with DBConfig.
func NewDBCircuitBreaker(db Pinger) *DBCircuitBreaker {
	return &DBCircuitBreaker{cb: New(DBConfig()), db: db}
}

// PingContext pings through the breaker.
func (dcb *DBCircuitBreaker) PingContext(ctx context.Context) error {
	_, err := dcb.cb.Execute(func() (interface{}, error) {
		return nil, dcb.db.PingContext(ctx)
	})
	return err
}

// IsOpen returns true if the circuit breaker is in the open state.
func (dcb *DBCircuitBreaker) IsOpen() bool {
	return dcb.cb.IsOpen()
}

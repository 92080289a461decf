// Package clickhouse composes the analytical SQL the browser runs and
// shapes the resulting rows into API objects. All user-supplied values
// are bound as parameters; only the composer's own vocabulary (table
// names, fixed clauses) is interpolated.
package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/cenkalti/backoff"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/broadinstitute/all-by-all-aou-browser/logger"
	"github.com/broadinstitute/all-by-all-aou-browser/models"
)

// Repository wraps the shared ClickHouse handle. It is safe for
// concurrent use by every request handler.
type Repository struct {
	db *sqlx.DB
}

// Connect opens the ClickHouse connection described by the config and
// pings it with exponential backoff until the store answers. The URL
// scheme selects the protocol (http:// for the HTTP interface,
// clickhouse:// for native).
func Connect(cfg *models.Config) (*Repository, error) {
	options, err := clickhouse.ParseDSN(cfg.ClickHouse.Url)
	if err != nil {
		return nil, fmt.Errorf("invalid ClickHouse URL %q: %w", cfg.ClickHouse.Url, err)
	}
	if cfg.ClickHouse.Database != "" {
		options.Auth.Database = cfg.ClickHouse.Database
	}

	db := sqlx.NewDb(clickhouse.OpenDB(options), "clickhouse")

	retryPolicy := backoff.NewExponentialBackOff()
	retryPolicy.MaxElapsedTime = 2 * time.Minute
	err = backoff.Retry(func() error {
		if pingErr := db.Ping(); pingErr != nil {
			logger.Warn("ClickHouse not ready, retrying", zap.Error(pingErr))
			return pingErr
		}
		return nil
	}, retryPolicy)
	if err != nil {
		return nil, fmt.Errorf("ClickHouse unreachable at %s: %w", cfg.ClickHouse.Url, err)
	}

	logger.Info("Connected to ClickHouse",
		zap.String("url", cfg.ClickHouse.Url),
		zap.String("database", options.Auth.Database))

	return &Repository{db: db}, nil
}

// HealthCheck verifies the store still answers trivial queries.
func (r *Repository) HealthCheck(ctx context.Context) error {
	var one uint8
	if err := r.db.GetContext(ctx, &one, "SELECT 1"); err != nil {
		return fmt.Errorf("ClickHouse health check failed: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (r *Repository) Close() error {
	return r.db.Close()
}

package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/drivehub/service-rental/internal/common/metrics"
)

// SQLSTATE codes the repositories care about.
const (
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
	sqlStateExclusionViolation   = "23P01"
	sqlStateForeignKeyViolation  = "23503"
)

type txKey struct{}

// conn returns the transaction bound to ctx, or db when there is none.
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// GormTransactor runs closures in a database transaction and retries them on
// serialization failures and deadlocks.
type GormTransactor struct {
	db         *gorm.DB
	maxRetries int
	backoff    time.Duration
	metrics    metrics.Recorder
	logger     *zap.Logger
}

// NewGormTransactor creates a new GormTransactor. maxRetries bounds the number
// of re-runs after the first attempt.
func NewGormTransactor(db *gorm.DB, maxRetries int, rec metrics.Recorder, logger *zap.Logger) *GormTransactor {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if rec == nil {
		rec = metrics.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GormTransactor{
		db:         db,
		maxRetries: maxRetries,
		backoff:    20 * time.Millisecond,
		metrics:    rec,
		logger:     logger,
	}
}

// WithinTransaction runs fn in a transaction. A ctx that already carries a
// transaction is reused, so nested calls join the outer one.
func (t *GormTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}

	for attempt := 0; ; attempt++ {
		err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(context.WithValue(ctx, txKey{}, tx))
		})
		if err == nil || !IsRetryable(err) || attempt >= t.maxRetries {
			return err
		}

		t.metrics.TxRetry()
		t.logger.Warn("retrying transaction",
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)

		select {
		case <-time.After(t.backoff * time.Duration(attempt+1)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// IsRetryable reports whether err is a serialization failure or deadlock.
func IsRetryable(err error) bool {
	code := sqlState(err)
	return code == sqlStateSerializationFailure || code == sqlStateDeadlockDetected
}

func isExclusionViolation(err error) bool {
	return sqlState(err) == sqlStateExclusionViolation
}

func isForeignKeyViolation(err error) bool {
	return sqlState(err) == sqlStateForeignKeyViolation
}

func sqlState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

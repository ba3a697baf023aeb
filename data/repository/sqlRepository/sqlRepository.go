package sqlRepository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/KotFed0t/invest_tracker/data/repository"
	"github.com/KotFed0t/invest_tracker/utils"
	"github.com/jmoiron/sqlx"
)

// общие методы для sqlx.DB и sqlx.Tx
type Querier interface {
	DriverName() string
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row
	QueryxContext(ctx context.Context, query string, args ...interface{}) (*sqlx.Rows, error)
	Rebind(query string) string
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

type txKey struct{}

// SqlRepository is a key-value blob store on a single table. The same queries
// run on postgres (pgx) and sqlite; placeholders are rebound per driver.
type SqlRepository struct {
	db    *sqlx.DB
	clock func() time.Time
}

func New(db *sqlx.DB) *SqlRepository {
	return &SqlRepository{db: db, clock: time.Now}
}

// WithinTransaction runs function within transaction
//
// The transaction commits when function were finished without error
func (r *SqlRepository) WithinTransaction(ctx context.Context, tFunc func(ctx context.Context) error) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				slog.Error("failed to rollback transaction", slog.String("err", rbErr.Error()))
			}
		}
	}()

	err = tFunc(r.injectTx(ctx, tx))
	if err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

func (r *SqlRepository) injectTx(ctx context.Context, tx *sqlx.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

func (r *SqlRepository) extractTx(ctx context.Context) *sqlx.Tx {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return nil
}

// txOrDb uses the transaction from ctx if present, otherwise the pool.
func (r *SqlRepository) txOrDb(ctx context.Context) Querier {
	if tx := r.extractTx(ctx); tx != nil {
		return tx
	}
	return r.db
}

func (r *SqlRepository) Get(ctx context.Context, key string) (value []byte, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "SqlRepository.Get"
	q := r.txOrDb(ctx)
	query := q.Rebind(`SELECT blob_value FROM blobs WHERE blob_key = ?`)

	slog.Debug("Get start", slog.String("rqID", rqID), slog.String("op", op), slog.String("key", key))
	defer func() {
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			slog.Error("Get failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("Get completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	err = q.GetContext(ctx, &value, query, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return value, nil
}

func (r *SqlRepository) Set(ctx context.Context, key string, value []byte) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "SqlRepository.Set"
	q := r.txOrDb(ctx)
	query := q.Rebind(`
		INSERT INTO blobs (blob_key, blob_value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (blob_key) DO UPDATE SET
			blob_value = EXCLUDED.blob_value,
			updated_at = EXCLUDED.updated_at
	`)

	slog.Debug("Set start", slog.String("rqID", rqID), slog.String("op", op), slog.String("key", key), slog.Int("size", len(value)))
	defer func() {
		if err != nil {
			slog.Error("Set failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("Set completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	_, err = q.ExecContext(ctx, query, key, value, r.clock().UTC())
	return err
}

func (r *SqlRepository) Delete(ctx context.Context, key string) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "SqlRepository.Delete"
	q := r.txOrDb(ctx)
	query := q.Rebind(`DELETE FROM blobs WHERE blob_key = ?`)

	slog.Debug("Delete start", slog.String("rqID", rqID), slog.String("op", op), slog.String("key", key))
	defer func() {
		if err != nil {
			slog.Error("Delete failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("Delete completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	_, err = q.ExecContext(ctx, query, key)
	return err
}

// SetMany writes all entries in one transaction.
func (r *SqlRepository) SetMany(ctx context.Context, entries map[string][]byte) error {
	return r.WithinTransaction(ctx, func(ctx context.Context) error {
		for key, value := range entries {
			if err := r.Set(ctx, key, value); err != nil {
				return err
			}
		}
		return nil
	})
}

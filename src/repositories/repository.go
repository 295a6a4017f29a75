package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a unique constraint rejects a write.
	ErrConflict = errors.New("record already exists")
	// ErrSerialization is returned when postgres aborts a transaction because of a
	// serialization failure or a deadlock. The caller may retry.
	ErrSerialization = errors.New("transaction could not be serialized")
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx so repositories work
// inside and outside of transactions.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Repositories struct {
	Assets      AssetRepository
	Categories  AssetCategoryRepository
	Assignments AssignmentRepository
	Events      LifecycleEventRepository
	Audit       AuditLogRepository
	Incidents   IncidentRepository
}

// Store hands out repositories, either bound to the connection pool or to a
// single transaction.
type Store interface {
	Repos() Repositories
	// RunInTx runs fn inside one transaction. The transaction is committed when fn
	// returns nil and rolled back otherwise.
	RunInTx(ctx context.Context, fn func(r Repositories) error) error
}

type pgStore struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) Store {
	return &pgStore{pool: pool}
}

func NewRepositories(db DBTX) Repositories {
	return Repositories{
		Assets:      NewAssetRepository(db),
		Categories:  NewAssetCategoryRepository(db),
		Assignments: NewAssignmentRepository(db),
		Events:      NewLifecycleEventRepository(db),
		Audit:       NewAuditLogRepository(db),
		Incidents:   NewIncidentRepository(db),
	}
}

func (s *pgStore) Repos() Repositories {
	return NewRepositories(s.pool)
}

func (s *pgStore) RunInTx(ctx context.Context, fn func(r Repositories) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", classify(err))
	}
	defer func() {
		// no-op after a successful commit
		_ = tx.Rollback(ctx)
	}()

	if err := fn(NewRepositories(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", classify(err))
	}
	return nil
}

// classify maps driver errors onto the repository sentinels.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505", "23503":
			return fmt.Errorf("%w: %s", ErrConflict, pgErr.ConstraintName)
		case "40001", "40P01":
			return fmt.Errorf("%w: %s", ErrSerialization, pgErr.Message)
		}
	}
	return err
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

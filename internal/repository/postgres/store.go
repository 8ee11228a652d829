// Package postgres implements the campaign store on PostgreSQL. Every
// method runs inside the *sql.Tx opened by Store.InTx, so a failed
// operation leaves no partial writes behind.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/TRINEXTA/LeadSynch-sub006/internal/service/campaign"
)

// Postgres error codes that mean another transaction got in the way.
var conflictCodes = map[pq.ErrorCode]bool{
	"40001": true, // serialization_failure
	"40P01": true, // deadlock_detected
	"55P03": true, // lock_not_available
}

// Store implements campaign.Store against PostgreSQL.
type Store struct {
	db *sql.DB
}

// NewStore creates a Postgres-backed campaign store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// InTx runs fn in a read-committed transaction. Rows that are mutated are
// locked with SELECT ... FOR UPDATE by the methods that read them.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, tx campaign.Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return mapErr("begin transaction", err)
	}
	defer sqlTx.Rollback()

	if err := fn(ctx, &txn{tx: sqlTx}); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return mapErr("commit", err)
	}
	return nil
}

// txn is the campaign.Tx view of one *sql.Tx.
type txn struct {
	tx *sql.Tx
}

var _ campaign.Tx = (*txn)(nil)

// mapErr wraps a driver error, tagging lock and serialization failures as
// campaign.ErrConflict.
func mapErr(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && conflictCodes[pqErr.Code] {
		return fmt.Errorf("%s: %w: %w", op, campaign.ErrConflict, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func nullable(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// Package store is the durable store behind the services. Lookups return
// (nil, nil) when the row does not exist; callers decide whether absence is
// an error.
package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Transaction runs fn against a Store bound to a single database
// transaction. Returning an error rolls it back.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

// Ping checks that the underlying database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// forUpdate locks the selected rows until the surrounding transaction ends.
// SQLite has no row locks and runs writers serially, so the clause is
// dropped by its dialect.
func (s *Store) forUpdate(ctx context.Context) *gorm.DB {
	return s.conn(ctx).Clauses(clause.Locking{Strength: "UPDATE"})
}

func first[T any](q *gorm.DB, conds ...any) (*T, error) {
	var row T
	if err := q.First(&row, conds...).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func now() time.Time {
	return time.Now().UTC()
}

// nullable turns a nil pointer into an untyped nil so GORM writes NULL.
func nullable[T any](v *T) any {
	if v == nil {
		return nil
	}
	return *v
}

package database

import (
	"context"

	"github.com/google/uuid"

	"github.com/rpupo63/melba-site-backend/errs"
)

// Store is the persistence contract shared by every model table.
//
// Lookups by id fail with errs.ErrMalformedID when the id is not a UUID and
// errs.ErrNotFound when no row matches. Unique index violations surface as
// errs.ErrDuplicateKey; anything else is wrapped in errs.ErrPersistence.
type Store[T any] interface {
	Create(ctx context.Context, rec *T) error
	FindByID(ctx context.Context, id string) (*T, error)
	FindOne(ctx context.Context, conds ...Cond) (*T, error)
	FindAll(ctx context.Context, q Query) ([]T, error)
	Update(ctx context.Context, id string, patch func(*T) error) (*T, error)
	Delete(ctx context.Context, id string) (*T, error)
}

type Op string

const (
	OpEq  Op = "="
	OpNeq Op = "<>"
	OpGte Op = ">="
)

// Cond filters on a database column name.
type Cond struct {
	Column string
	Op     Op
	Value  any
}

func Eq(column string, value any) Cond  { return Cond{Column: column, Op: OpEq, Value: value} }
func Neq(column string, value any) Cond { return Cond{Column: column, Op: OpNeq, Value: value} }
func Gte(column string, value any) Cond { return Cond{Column: column, Op: OpGte, Value: value} }

type Query struct {
	Where   []Cond
	OrderBy string
	Desc    bool
	Limit   int
}

// NewestFirst lists by creation time, most recent first.
func NewestFirst(conds ...Cond) Query {
	return Query{Where: conds, OrderBy: "created_at", Desc: true}
}

func parseID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, errs.ErrMalformedID
	}
	return parsed, nil
}

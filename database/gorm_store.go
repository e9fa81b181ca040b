package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rpupo63/melba-site-backend/errs"
)

const uniqueViolation = "23505"

type GormStore[T any] struct {
	db *gorm.DB
}

func NewGormStore[T any](db *gorm.DB) *GormStore[T] {
	return &GormStore[T]{db}
}

// Create inserts rec; the model's BeforeCreate hook assigns id and timestamps.
func (s *GormStore[T]) Create(ctx context.Context, rec *T) error {
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return translate("create", err)
	}
	return nil
}

func (s *GormStore[T]) FindByID(ctx context.Context, id string) (*T, error) {
	parsed, err := parseID(id)
	if err != nil {
		return nil, err
	}
	var rec T
	if err := s.db.WithContext(ctx).Where("id = ?", parsed).First(&rec).Error; err != nil {
		return nil, translate("find by id", err)
	}
	return &rec, nil
}

func (s *GormStore[T]) FindOne(ctx context.Context, conds ...Cond) (*T, error) {
	var rec T
	if err := scoped(s.db.WithContext(ctx), conds).Take(&rec).Error; err != nil {
		return nil, translate("find one", err)
	}
	return &rec, nil
}

func (s *GormStore[T]) FindAll(ctx context.Context, q Query) ([]T, error) {
	tx := scoped(s.db.WithContext(ctx), q.Where)
	if q.OrderBy != "" {
		tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: q.OrderBy}, Desc: q.Desc})
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	recs := []T{}
	if err := tx.Find(&recs).Error; err != nil {
		return nil, translate("find all", err)
	}
	return recs, nil
}

// Update loads the row under a row lock, applies patch and saves the result
// in one transaction. A patch error aborts the update unchanged.
func (s *GormStore[T]) Update(ctx context.Context, id string, patch func(*T) error) (*T, error) {
	parsed, err := parseID(id)
	if err != nil {
		return nil, err
	}
	var rec T
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", parsed).First(&rec).Error; err != nil {
			return err
		}
		if err := patch(&rec); err != nil {
			return err
		}
		return tx.Save(&rec).Error
	})
	if err != nil {
		return nil, translate("update", err)
	}
	return &rec, nil
}

// Delete removes the row and returns it as it was.
func (s *GormStore[T]) Delete(ctx context.Context, id string) (*T, error) {
	parsed, err := parseID(id)
	if err != nil {
		return nil, err
	}
	var rec T
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", parsed).First(&rec).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", parsed).Delete(new(T)).Error
	})
	if err != nil {
		return nil, translate("delete", err)
	}
	return &rec, nil
}

func scoped(tx *gorm.DB, conds []Cond) *gorm.DB {
	if len(conds) == 0 {
		return tx
	}
	exprs := make([]clause.Expression, 0, len(conds))
	for _, c := range conds {
		col := clause.Column{Name: c.Column}
		switch c.Op {
		case OpNeq:
			exprs = append(exprs, clause.Neq{Column: col, Value: c.Value})
		case OpGte:
			exprs = append(exprs, clause.Gte{Column: col, Value: c.Value})
		default:
			exprs = append(exprs, clause.Eq{Column: col, Value: c.Value})
		}
	}
	return tx.Clauses(clause.Where{Exprs: exprs})
}

// translate maps driver and gorm errors onto the errs sentinels. Errors that
// already carry one (from a patch func, say) pass through unchanged.
func translate(op string, err error) error {
	var pgErr *pgconn.PgError
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return errs.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w", op, errs.ErrDuplicateKey)
	case errors.As(err, &pgErr) && pgErr.Code == uniqueViolation:
		return fmt.Errorf("%s: %w", op, errs.ErrDuplicateKey)
	case errors.Is(err, errs.ErrNotFound), errors.Is(err, errs.ErrDuplicateKey),
		errors.Is(err, errs.ErrMalformedID), errs.IsValidationError(err):
		return err
	}
	var apiErr *errs.ApiErr
	if errors.As(err, &apiErr) {
		return err
	}
	return errs.PersistenceFault(op, err)
}

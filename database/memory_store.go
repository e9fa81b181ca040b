package database

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm/schema"

	"github.com/rpupo63/melba-site-backend/errs"
	"github.com/rpupo63/melba-site-backend/models"
)

// MemoryStore keeps records in process memory, in insertion order. Column
// names resolve through the same gorm schema the postgres store uses, and
// models.UniqueKeyer stands in for unique indexes.
type MemoryStore[T any] struct {
	mu      sync.RWMutex
	records []T
	schema  *schema.Schema
	now     func() time.Time
}

func NewMemoryStore[T any]() *MemoryStore[T] {
	sch, err := models.ParseSchema(new(T))
	if err != nil {
		panic(fmt.Sprintf("parse schema for %T: %v", *new(T), err))
	}
	return &MemoryStore[T]{schema: sch, now: time.Now}
}

func (s *MemoryStore[T]) Create(ctx context.Context, rec *T) error {
	entity, ok := any(rec).(models.Entity)
	if !ok {
		return errs.PersistenceFault("create", fmt.Errorf("%T is not a models.Entity", rec))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conflicts(rec, uuid.Nil) {
		return fmt.Errorf("create: %w", errs.ErrDuplicateKey)
	}
	entity.Stamp(s.now())
	s.records = append(s.records, *rec)
	return nil
}

func (s *MemoryStore[T]) FindByID(ctx context.Context, id string) (*T, error) {
	parsed, err := parseID(id)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(parsed)
	if i < 0 {
		return nil, errs.ErrNotFound
	}
	rec := s.records[i]
	return &rec, nil
}

func (s *MemoryStore[T]) FindOne(ctx context.Context, conds ...Cond) (*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.records {
		if s.matches(&s.records[i], conds) {
			rec := s.records[i]
			return &rec, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (s *MemoryStore[T]) FindAll(ctx context.Context, q Query) ([]T, error) {
	s.mu.RLock()
	out := []T{}
	for i := range s.records {
		if s.matches(&s.records[i], q.Where) {
			out = append(out, s.records[i])
		}
	}
	s.mu.RUnlock()

	if q.OrderBy != "" {
		sort.SliceStable(out, func(i, j int) bool {
			c, _ := compare(s.value(&out[i], q.OrderBy), s.value(&out[j], q.OrderBy))
			if q.Desc {
				return c > 0
			}
			return c < 0
		})
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

// Update applies patch to a copy so a failed patch or a uniqueness
// conflict leaves the stored record unchanged.
func (s *MemoryStore[T]) Update(ctx context.Context, id string, patch func(*T) error) (*T, error) {
	parsed, err := parseID(id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(parsed)
	if i < 0 {
		return nil, errs.ErrNotFound
	}
	rec := s.records[i]
	if err := patch(&rec); err != nil {
		return nil, err
	}
	if s.conflicts(&rec, parsed) {
		return nil, fmt.Errorf("update: %w", errs.ErrDuplicateKey)
	}
	s.records[i] = rec
	return &rec, nil
}

func (s *MemoryStore[T]) Delete(ctx context.Context, id string) (*T, error) {
	parsed, err := parseID(id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(parsed)
	if i < 0 {
		return nil, errs.ErrNotFound
	}
	rec := s.records[i]
	s.records = append(s.records[:i], s.records[i+1:]...)
	return &rec, nil
}

func (s *MemoryStore[T]) indexOf(id uuid.UUID) int {
	for i := range s.records {
		if entity, ok := any(&s.records[i]).(models.Entity); ok && entity.PrimaryKey() == id {
			return i
		}
	}
	return -1
}

// conflicts reports whether rec shares a unique key with any record other
// than the one identified by self.
func (s *MemoryStore[T]) conflicts(rec *T, self uuid.UUID) bool {
	keyer, ok := any(rec).(models.UniqueKeyer)
	if !ok {
		return false
	}
	keys := keyer.UniqueKeys()
	for i := range s.records {
		other := any(&s.records[i])
		if other.(models.Entity).PrimaryKey() == self && self != uuid.Nil {
			continue
		}
		for _, theirs := range other.(models.UniqueKeyer).UniqueKeys() {
			for _, ours := range keys {
				if theirs == ours {
					return true
				}
			}
		}
	}
	return false
}

func (s *MemoryStore[T]) matches(rec *T, conds []Cond) bool {
	for _, c := range conds {
		cmp, ok := compare(s.value(rec, c.Column), c.Value)
		if !ok {
			return false
		}
		switch c.Op {
		case OpNeq:
			if cmp == 0 {
				return false
			}
		case OpGte:
			if cmp < 0 {
				return false
			}
		default:
			if cmp != 0 {
				return false
			}
		}
	}
	return true
}

func (s *MemoryStore[T]) value(rec *T, column string) any {
	field := s.schema.LookUpField(column)
	if field == nil {
		return nil
	}
	v, _ := field.ValueOf(context.Background(), reflect.ValueOf(rec).Elem())
	return v
}

// compare orders two column values. ok is false when they cannot be
// compared, which never matches a filter.
func compare(a, b any) (int, bool) {
	a, b = deref(a), deref(b)
	if a == nil || b == nil {
		return 0, a == nil && b == nil
	}
	switch av := a.(type) {
	case time.Time:
		bv, ok := b.(time.Time)
		if !ok {
			return 0, false
		}
		return av.Compare(bv), true
	case uuid.UUID:
		return strings.Compare(av.String(), fmt.Sprint(b)), true
	}

	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	switch {
	case isInt(ra) && isInt(rb):
		x, y := ra.Int(), rb.Int()
		switch {
		case x < y:
			return -1, true
		case x > y:
			return 1, true
		}
		return 0, true
	case ra.Kind() == reflect.String && rb.Kind() == reflect.String:
		return strings.Compare(ra.String(), rb.String()), true
	case ra.Kind() == reflect.Bool && rb.Kind() == reflect.Bool:
		if ra.Bool() == rb.Bool() {
			return 0, true
		}
		if rb.Bool() {
			return -1, true
		}
		return 1, true
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b)), true
}

func deref(v any) any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		return rv.Elem().Interface()
	}
	return v
}

func isInt(rv reflect.Value) bool {
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

package models

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Entity is implemented by every persisted model.
type Entity interface {
	PrimaryKey() uuid.UUID
	Stamp(now time.Time)
}

// UniqueKeyer exposes the values that must be unique across a table, so
// stores without declared indexes can enforce the same constraints.
type UniqueKeyer interface {
	UniqueKeys() []string
}

// Submission is a record created by a public form.
type Submission interface {
	Entity
	SubmitterName() string
	SubmitterEmail() string
	ClearIdentity()
}

// Record holds the server-assigned identity shared by all models.
type Record struct {
	ID        uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid();not null"`
	CreatedAt time.Time `json:"createdAt" db:"created_at" gorm:"type:timestamptz;not null;default:CURRENT_TIMESTAMP;index"`
}

func (r *Record) PrimaryKey() uuid.UUID {
	return r.ID
}

// Stamp assigns identity and creation time once; later calls are no-ops.
func (r *Record) Stamp(now time.Time) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
}

// ClearIdentity drops any client-supplied id or timestamp before create.
func (r *Record) ClearIdentity() {
	r.ID = uuid.Nil
	r.CreatedAt = time.Time{}
}

func (r *Record) BeforeCreate(tx *gorm.DB) error {
	r.Stamp(time.Now())
	return nil
}

// ContentRecord is the base of admin-managed entities.
type ContentRecord struct {
	Record
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at" gorm:"type:timestamptz;not null;default:CURRENT_TIMESTAMP"`
}

func (c *ContentRecord) Stamp(now time.Time) {
	c.Record.Stamp(now)
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = c.CreatedAt
	}
}

func (c *ContentRecord) BeforeCreate(tx *gorm.DB) error {
	c.Stamp(time.Now())
	return nil
}

// Touch refreshes UpdatedAt after a successful edit.
func (c *ContentRecord) Touch(now time.Time) {
	c.UpdatedAt = now
}

// Field is one labelled value of a submission, used when echoing it back.
type Field struct {
	Label string
	Value string
}

// Summarize lists the labelled, non-empty fields of a model in declaration
// order. Only fields carrying a `label` tag are included.
func Summarize(v any) []Field {
	rv := reflect.Indirect(reflect.ValueOf(v))
	if rv.Kind() != reflect.Struct {
		return nil
	}
	var fields []Field
	collectFields(rv, &fields)
	return fields
}

func collectFields(rv reflect.Value, out *[]Field) {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		fv := rv.Field(i)
		if sf.Anonymous && fv.Kind() == reflect.Struct {
			collectFields(fv, out)
			continue
		}
		label := sf.Tag.Get("label")
		if label == "" || !sf.IsExported() {
			continue
		}
		if value := displayValue(fv); value != "" {
			*out = append(*out, Field{Label: Capitalize(label), Value: value})
		}
	}
}

func displayValue(fv reflect.Value) string {
	if fv.Kind() == reflect.Pointer {
		if fv.IsNil() {
			return ""
		}
		fv = fv.Elem()
	}
	switch v := fv.Interface().(type) {
	case StringList:
		return strings.Join(v, ", ")
	case Age:
		if v == 0 {
			return ""
		}
		return v.String()
	case time.Time:
		if v.IsZero() {
			return ""
		}
		return v.Format("January 2, 2006")
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// Capitalize upper-cases the first letter of a label.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

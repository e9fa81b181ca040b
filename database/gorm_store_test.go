package database

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rpupo63/melba-site-backend/errs"
	"github.com/rpupo63/melba-site-backend/models"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

var contactColumns = []string{"id", "created_at", "name", "email", "phone", "subject", "message"}

func TestGormStoreCreate(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewGormStore[models.ContactSubmission](db)

	id := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "contact_submissions"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(id.String(), time.Now()))

	rec := &models.ContactSubmission{Name: "Ada", Email: "ada@example.com", Message: "Hello"}
	require.NoError(t, store.Create(context.Background(), rec))
	assert.Equal(t, id, rec.ID)
	assert.False(t, rec.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStoreCreateDuplicate(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewGormStore[models.NewsletterSubscription](db)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "newsletter_subscriptions"`)).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})

	err := store.Create(context.Background(), &models.NewsletterSubscription{Email: "ada@example.com"})
	assert.ErrorIs(t, err, errs.ErrDuplicateKey)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStoreCreateInfrastructureFault(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewGormStore[models.ContactSubmission](db)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "contact_submissions"`)).
		WillReturnError(errors.New("connection refused"))

	err := store.Create(context.Background(), &models.ContactSubmission{Name: "Ada", Email: "ada@example.com", Message: "Hi"})
	assert.ErrorIs(t, err, errs.ErrPersistence)
	assert.False(t, errs.IsDuplicateKey(err))
}

func TestGormStoreFindByID(t *testing.T) {
	ctx := context.Background()

	t.Run("malformed id never reaches the database", func(t *testing.T) {
		db, mock := newMockDB(t)
		_, err := NewGormStore[models.ContactSubmission](db).FindByID(ctx, "42")
		assert.ErrorIs(t, err, errs.ErrMalformedID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "contact_submissions" WHERE id = $1`)).
			WillReturnRows(sqlmock.NewRows(contactColumns))

		_, err := NewGormStore[models.ContactSubmission](db).FindByID(ctx, uuid.NewString())
		assert.ErrorIs(t, err, errs.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("found", func(t *testing.T) {
		db, mock := newMockDB(t)
		id := uuid.New()
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "contact_submissions" WHERE id = $1`)).
			WillReturnRows(sqlmock.NewRows(contactColumns).
				AddRow(id.String(), time.Now(), "Ada", "ada@example.com", "", "Hi", "Hello"))

		rec, err := NewGormStore[models.ContactSubmission](db).FindByID(ctx, id.String())
		require.NoError(t, err)
		assert.Equal(t, id, rec.ID)
		assert.Equal(t, "Ada", rec.Name)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormStoreFindOneTranslatesNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "newsletter_subscriptions" WHERE "email" = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}))

	_, err := NewGormStore[models.NewsletterSubscription](db).FindOne(context.Background(), Eq("email", "ada@example.com"))
	assert.ErrorIs(t, err, errs.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStoreDeleteReturnsRecord(t *testing.T) {
	db, mock := newMockDB(t)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "contact_submissions" WHERE id = $1`)).
		WillReturnRows(sqlmock.NewRows(contactColumns).
			AddRow(id.String(), time.Now(), "Ada", "ada@example.com", "", "", "Hello"))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "contact_submissions" WHERE id = $1`)).
		WithArgs(id.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	rec, err := NewGormStore[models.ContactSubmission](db).Delete(context.Background(), id.String())
	require.NoError(t, err)
	assert.Equal(t, "Ada", rec.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpupo63/melba-site-backend/errs"
	"github.com/rpupo63/melba-site-backend/models"
)

func TestMemoryStoreCreateAndFind(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore[models.ContactSubmission]()

	before := time.Now()
	rec := &models.ContactSubmission{Name: "Ada", Email: "ada@example.com", Message: "Hello"}
	require.NoError(t, store.Create(ctx, rec))

	assert.NotEqual(t, uuid.Nil, rec.ID)
	assert.WithinDuration(t, before, rec.CreatedAt, time.Second)

	found, err := store.FindByID(ctx, rec.ID.String())
	require.NoError(t, err)
	assert.Equal(t, *rec, *found)
}

func TestMemoryStoreFindByIDErrors(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore[models.ContactSubmission]()

	_, err := store.FindByID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, errs.ErrMalformedID)

	_, err = store.FindByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestMemoryStoreNewsletterEmailIsUnique(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore[models.NewsletterSubscription]()

	require.NoError(t, store.Create(ctx, &models.NewsletterSubscription{Email: "ada@example.com"}))
	err := store.Create(ctx, &models.NewsletterSubscription{Email: "ada@example.com"})
	assert.ErrorIs(t, err, errs.ErrDuplicateKey)

	all, err := store.FindAll(ctx, Query{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestMemoryStorePostSlugUniquePerType(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore[models.Post]()

	require.NoError(t, store.Create(ctx, &models.Post{Type: models.PostTypeBlog, Title: "Open House", Slug: "open-house"}))
	require.NoError(t, store.Create(ctx, &models.Post{Type: models.PostTypeEvent, Title: "Open House", Slug: "open-house"}))

	err := store.Create(ctx, &models.Post{Type: models.PostTypeBlog, Title: "Again", Slug: "open-house"})
	assert.ErrorIs(t, err, errs.ErrDuplicateKey)

	blogs, err := store.FindAll(ctx, Query{Where: []Cond{Eq("type", models.PostTypeBlog)}})
	require.NoError(t, err)
	assert.Len(t, blogs, 1)
}

func TestMemoryStoreUpdate(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore[models.Program]()

	first := &models.Program{Title: "Robotics", Slug: "robotics", ShortDescription: "Build robots"}
	second := &models.Program{Title: "Art", Slug: "art", ShortDescription: "Paint"}
	require.NoError(t, store.Create(ctx, first))
	require.NoError(t, store.Create(ctx, second))

	t.Run("keeps own slug", func(t *testing.T) {
		updated, err := store.Update(ctx, first.ID.String(), func(p *models.Program) error {
			p.Title = "Robotics Club"
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, "Robotics Club", updated.Title)
		assert.Equal(t, first.CreatedAt, updated.CreatedAt)
	})

	t.Run("rejects another record's slug", func(t *testing.T) {
		_, err := store.Update(ctx, second.ID.String(), func(p *models.Program) error {
			p.Slug = "robotics"
			return nil
		})
		assert.ErrorIs(t, err, errs.ErrDuplicateKey)

		stored, err := store.FindByID(ctx, second.ID.String())
		require.NoError(t, err)
		assert.Equal(t, "art", stored.Slug)
	})

	t.Run("patch error aborts", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := store.Update(ctx, second.ID.String(), func(p *models.Program) error {
			p.Title = "changed"
			return boom
		})
		assert.ErrorIs(t, err, boom)

		stored, err := store.FindByID(ctx, second.ID.String())
		require.NoError(t, err)
		assert.Equal(t, "Art", stored.Title)
	})

	t.Run("missing record", func(t *testing.T) {
		_, err := store.Update(ctx, uuid.NewString(), func(*models.Program) error { return nil })
		assert.ErrorIs(t, err, errs.ErrNotFound)
	})
}

func TestMemoryStoreDeleteReturnsRecord(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore[models.Post]()

	post := &models.Post{Type: models.PostTypeBlog, Title: "Hello", Slug: "hello", Image: "/images/uploads/a.png"}
	require.NoError(t, store.Create(ctx, post))

	deleted, err := store.Delete(ctx, post.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "/images/uploads/a.png", deleted.Image)

	_, err = store.FindByID(ctx, post.ID.String())
	assert.ErrorIs(t, err, errs.ErrNotFound)

	_, err = store.Delete(ctx, post.ID.String())
	assert.ErrorIs(t, err, errs.ErrNotFound)

	_, err = store.Delete(ctx, "nope")
	assert.ErrorIs(t, err, errs.ErrMalformedID)
}

func TestMemoryStoreFindAllFiltersAndSorts(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore[models.Post]()

	now := time.Now()
	dates := []time.Duration{72 * time.Hour, -24 * time.Hour, 24 * time.Hour, 48 * time.Hour}
	for i, d := range dates {
		date := now.Add(d)
		require.NoError(t, store.Create(ctx, &models.Post{
			Type:      models.PostTypeEvent,
			Title:     "Event",
			Slug:      uuid.NewString(),
			EventDate: &date,
			Location:  string(rune('A' + i)),
		}))
	}

	upcoming, err := store.FindAll(ctx, Query{
		Where:   []Cond{Eq("type", models.PostTypeEvent), Gte("event_date", now)},
		OrderBy: "event_date",
		Limit:   2,
	})
	require.NoError(t, err)
	require.Len(t, upcoming, 2)
	assert.Equal(t, "C", upcoming[0].Location)
	assert.Equal(t, "D", upcoming[1].Location)

	others, err := store.FindAll(ctx, Query{Where: []Cond{Neq("location", "A")}})
	require.NoError(t, err)
	assert.Len(t, others, 3)
}

func TestMemoryStoreNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore[models.ContactSubmission]()

	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	for _, name := range []string{"first", "second", "third"} {
		require.NoError(t, store.Create(ctx, &models.ContactSubmission{Name: name, Email: "x@y.z", Message: "m"}))
	}

	all, err := store.FindAll(ctx, NewestFirst())
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "third", all[0].Name)
	assert.Equal(t, "first", all[2].Name)
}

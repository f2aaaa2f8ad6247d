package db

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/usersvc/backend/internal/config"
	"github.com/usersvc/backend/internal/model"
)

// newTestPostgres connects to DATABASE_URL and applies migrations. Tests using
// it are skipped when no database is configured.
func newTestPostgres(t *testing.T) *Postgres {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := NewPostgresPool(ctx, config.PostgresConfig{DatabaseURL: dsn})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	pg := NewPostgres(pool)
	require.NoError(t, pg.Migrate(ctx))
	return pg
}

func newPostgresUser(roles []string) *model.User {
	now := time.Now().UTC().Truncate(time.Microsecond)
	id := uuid.NewString()
	return &model.User{
		ID:           id,
		Email:        id + "@example.com",
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Roles:        roles,
		PasswordHash: "$argon2id$v=19$m=1024,t=1,p=1$c2FsdA$a2V5",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestPostgresUsers_CRUD(t *testing.T) {
	pg := newTestPostgres(t)
	ctx := context.Background()

	user := newPostgresUser([]string{"admin", "ops"})
	phone := "555-0100"
	user.PhoneNumber = &phone
	t.Cleanup(func() { _ = pg.Delete(context.Background(), user.ID) })

	inserted, err := pg.Insert(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, user.ID, inserted.ID)
	assert.Equal(t, []string{"admin", "ops"}, inserted.Roles)
	require.NotNil(t, inserted.PhoneNumber)
	assert.Equal(t, phone, *inserted.PhoneNumber)
	assert.True(t, user.CreatedAt.Equal(inserted.CreatedAt))

	byEmail, err := pg.FindByEmail(ctx, user.Email)
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	changed := inserted.Clone()
	changed.FirstName = "Grace"
	changed.PhoneNumber = nil
	changed.Roles = []string{}
	changed.UpdatedAt = inserted.UpdatedAt.Add(time.Minute)
	updated, err := pg.Update(ctx, changed)
	require.NoError(t, err)
	assert.Equal(t, "Grace", updated.FirstName)
	assert.Nil(t, updated.PhoneNumber)
	assert.Equal(t, []string{}, updated.Roles)
	assert.True(t, inserted.CreatedAt.Equal(updated.CreatedAt))
	assert.True(t, changed.UpdatedAt.Equal(updated.UpdatedAt))

	got, err := pg.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Grace", got.FirstName)

	require.NoError(t, pg.Delete(ctx, user.ID))
	_, err = pg.GetByID(ctx, user.ID)
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, pg.Delete(ctx, user.ID), ErrNotFound)
}

func TestPostgresUsers_DuplicateEmail(t *testing.T) {
	pg := newTestPostgres(t)
	ctx := context.Background()

	first := newPostgresUser(nil)
	t.Cleanup(func() { _ = pg.Delete(context.Background(), first.ID) })
	inserted, err := pg.Insert(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, []string{}, inserted.Roles)

	second := newPostgresUser(nil)
	second.Email = first.Email
	_, err = pg.Insert(ctx, second)
	require.ErrorIs(t, err, ErrDuplicate)
}

func TestPostgresUsers_UpdateMissing(t *testing.T) {
	pg := newTestPostgres(t)

	_, err := pg.Update(context.Background(), newPostgresUser(nil))
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresUsers_ListOrder(t *testing.T) {
	pg := newTestPostgres(t)
	ctx := context.Background()

	older := newPostgresUser(nil)
	older.CreatedAt = older.CreatedAt.Add(-time.Hour)
	newer := newPostgresUser([]string{"viewer"})
	for _, u := range []*model.User{newer, older} {
		id := u.ID
		t.Cleanup(func() { _ = pg.Delete(context.Background(), id) })
		_, err := pg.Insert(ctx, u)
		require.NoError(t, err)
	}

	list, err := pg.List(ctx)
	require.NoError(t, err)

	var ids []string
	for _, u := range list {
		if u.ID == older.ID || u.ID == newer.ID {
			ids = append(ids, u.ID)
		}
	}
	assert.Equal(t, []string{older.ID, newer.ID}, ids)
}

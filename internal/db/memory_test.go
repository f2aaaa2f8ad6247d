package db

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/usersvc/backend/internal/model"
)

func newUser(id, email string) *model.User {
	now := time.Now().UTC()
	return &model.User{
		ID:           id,
		Email:        email,
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Roles:        []string{"user"},
		PasswordHash: "hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestMemory_CRUD(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	created, err := m.Insert(ctx, newUser("1", "a@x.com"))
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", created.Email)

	got, err := m.GetByID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, created, got)

	byEmail, err := m.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "1", byEmail.ID)

	got.Email = "b@x.com"
	got.FirstName = "Grace"
	updated, err := m.Update(ctx, got)
	require.NoError(t, err)
	assert.Equal(t, "Grace", updated.FirstName)

	_, err = m.FindByEmail(ctx, "a@x.com")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = m.FindByEmail(ctx, "b@x.com")
	require.NoError(t, err)

	require.NoError(t, m.Delete(ctx, "1"))
	_, err = m.GetByID(ctx, "1")
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, m.Delete(ctx, "1"), ErrNotFound)

	list, err := m.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestMemory_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, err := m.Insert(ctx, newUser("1", "a@x.com"))
	require.NoError(t, err)

	got, err := m.GetByID(ctx, "1")
	require.NoError(t, err)
	got.Roles[0] = "admin"
	got.FirstName = "changed"

	again, err := m.GetByID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, []string{"user"}, again.Roles)
	assert.Equal(t, "Ada", again.FirstName)
}

func TestMemory_UniqueEmail(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, err := m.Insert(ctx, newUser("1", "a@x.com"))
	require.NoError(t, err)
	_, err = m.Insert(ctx, newUser("2", "a@x.com"))
	require.ErrorIs(t, err, ErrDuplicate)

	_, err = m.Insert(ctx, newUser("2", "b@x.com"))
	require.NoError(t, err)

	second, err := m.GetByID(ctx, "2")
	require.NoError(t, err)
	second.Email = "a@x.com"
	_, err = m.Update(ctx, second)
	require.ErrorIs(t, err, ErrDuplicate)
}

func TestMemory_UpdateMissing(t *testing.T) {
	_, err := NewMemory().Update(context.Background(), newUser("nope", "a@x.com"))
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_ConcurrentInsertSameEmail(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := m.Insert(ctx, newUser(fmt.Sprintf("id-%d", i), "race@x.com")); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
}

func TestMemory_ListOrder(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	for i := 0; i < 3; i++ {
		_, err := m.Insert(ctx, newUser(fmt.Sprintf("%d", i), fmt.Sprintf("u%d@x.com", i)))
		require.NoError(t, err)
	}
	require.NoError(t, m.Delete(ctx, "1"))

	list, err := m.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "0", list[0].ID)
	assert.Equal(t, "2", list[1].ID)
}

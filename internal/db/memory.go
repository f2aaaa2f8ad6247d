package db

import (
	"context"
	"sync"

	"github.com/usersvc/backend/internal/model"
)

// Memory is a process-local user store. Email uniqueness is enforced under
// the same lock as the write, so concurrent inserts cannot both succeed.
type Memory struct {
	mu      sync.RWMutex
	users   map[string]*model.User
	byEmail map[string]string
	order   []string
}

func NewMemory() *Memory {
	return &Memory{
		users:   make(map[string]*model.User),
		byEmail: make(map[string]string),
	}
}

func (m *Memory) Insert(_ context.Context, user *model.User) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[user.ID]; ok {
		return nil, ErrDuplicate
	}
	if _, ok := m.byEmail[user.Email]; ok {
		return nil, ErrDuplicate
	}

	stored := user.Clone()
	m.users[stored.ID] = stored
	m.byEmail[stored.Email] = stored.ID
	m.order = append(m.order, stored.ID)
	return stored.Clone(), nil
}

func (m *Memory) GetByID(_ context.Context, id string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return user.Clone(), nil
}

func (m *Memory) FindByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	return m.users[id].Clone(), nil
}

func (m *Memory) List(_ context.Context) ([]model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := make([]model.User, 0, len(m.order))
	for _, id := range m.order {
		list = append(list, *m.users[id].Clone())
	}
	return list, nil
}

func (m *Memory) Update(_ context.Context, user *model.User) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.users[user.ID]
	if !ok {
		return nil, ErrNotFound
	}
	if owner, ok := m.byEmail[user.Email]; ok && owner != user.ID {
		return nil, ErrDuplicate
	}

	stored := user.Clone()
	stored.CreatedAt = current.CreatedAt
	delete(m.byEmail, current.Email)
	m.byEmail[stored.Email] = stored.ID
	m.users[stored.ID] = stored
	return stored.Clone(), nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	delete(m.users, id)
	delete(m.byEmail, user.Email)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

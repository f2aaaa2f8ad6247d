package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/usersvc/backend/internal/db"
	"github.com/usersvc/backend/internal/model"
)

func (s *AccountService) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *AccountService) GetUser(ctx context.Context, id string) (*model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err)
	}
	return user, nil
}

// UpdateUser applies the fields present in req. Nothing is stored if any
// field is rejected.
func (s *AccountService) UpdateUser(ctx context.Context, id string, req model.UserUpdateRequest) (*model.User, error) {
	current, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err)
	}

	updated := current.Clone()
	if err := s.applyUpdate(updated, req); err != nil {
		return nil, err
	}

	if updated.Email != current.Email {
		other, err := s.users.FindByEmail(ctx, updated.Email)
		switch {
		case err == nil && other.ID != current.ID:
			return nil, ErrConflict
		case err != nil && !errors.Is(err, db.ErrNotFound):
			return nil, fmt.Errorf("lookup email: %w", err)
		}
	}

	if req.Password.Set {
		return s.UpdatePassword(ctx, updated, req.Password.Value)
	}

	updated.UpdatedAt = s.now()
	saved, err := s.users.Update(ctx, updated)
	if err != nil {
		return nil, storeError(err)
	}
	return saved, nil
}

func (s *AccountService) DeleteUser(ctx context.Context, id string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return storeError(err)
	}
	s.log.Info().Str("user_id", id).Msg("user deleted")
	return nil
}

// applyUpdate merges req into user. A null is only accepted where the field
// itself is optional: phone_number is cleared and roles become empty.
func (s *AccountService) applyUpdate(user *model.User, req model.UserUpdateRequest) error {
	if req.Email.Set {
		email := strings.TrimSpace(req.Email.Value)
		if req.Email.Null || s.validate.Var(email, "required,email") != nil {
			return ErrInvalidInput
		}
		user.Email = email
	}
	if req.FirstName.Set {
		if req.FirstName.Null {
			return ErrInvalidInput
		}
		user.FirstName = req.FirstName.Value
	}
	if req.LastName.Set {
		if req.LastName.Null {
			return ErrInvalidInput
		}
		user.LastName = req.LastName.Value
	}
	if req.PhoneNumber.Set {
		if req.PhoneNumber.Null {
			user.PhoneNumber = nil
		} else {
			phone := req.PhoneNumber.Value
			user.PhoneNumber = &phone
		}
	}
	if req.Roles.Set {
		user.Roles = append([]string{}, req.Roles.Value...)
	}
	if req.Password.Set && req.Password.Null {
		return ErrInvalidInput
	}
	return nil
}

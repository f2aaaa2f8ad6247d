package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/usersvc/backend/internal/db"
	"github.com/usersvc/backend/internal/model"
)

// UserStore is the persistence collaborator. Implementations return
// db.ErrNotFound for unknown ids/emails and db.ErrDuplicate when the email
// uniqueness constraint is violated.
type UserStore interface {
	Insert(ctx context.Context, user *model.User) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, user *model.User) (*model.User, error)
	Delete(ctx context.Context, id string) error
}

type AccountService struct {
	users    UserStore
	hasher   *PasswordHasher
	tokens   *TokenService
	validate *validator.Validate
	log      zerolog.Logger
	now      func() time.Time

	// dummyHash is verified against when the email is unknown so that both
	// login failures cost one argon2 run.
	dummyOnce sync.Once
	dummyHash string
}

func NewAccountService(users UserStore, hasher *PasswordHasher, tokens *TokenService, log zerolog.Logger) *AccountService {
	return &AccountService{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		validate: validator.New(),
		log:      log.With().Str("component", "account").Logger(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Register creates a user after checking that the email is not taken.
func (s *AccountService) Register(ctx context.Context, req model.UserCreateRequest) (*model.User, error) {
	email := strings.TrimSpace(req.Email)
	if err := s.validate.Var(email, "required,email"); err != nil {
		return nil, ErrInvalidInput
	}
	if req.Password == nil {
		return nil, ErrInvalidInput
	}

	_, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return nil, ErrConflict
	}
	if !errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	hash, err := s.hasher.Hash(ctx, *req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	roles := req.Roles
	if roles == nil {
		roles = []string{}
	}
	now := s.now()
	user, err := s.users.Insert(ctx, &model.User{
		ID:           uuid.NewString(),
		Email:        email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PhoneNumber:  req.PhoneNumber,
		Roles:        roles,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		// Two registrations raced past the lookup above.
		if errors.Is(err, db.ErrDuplicate) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Msg("user registered")
	return user, nil
}

// Login returns an access token. Unknown email and wrong password produce the
// same error.
func (s *AccountService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			s.hasher.Verify(ctx, password, s.unknownUserHash())
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("lookup email: %w", err)
	}

	if !s.hasher.Verify(ctx, password, user.PasswordHash) {
		s.log.Debug().Str("user_id", user.ID).Msg("login rejected")
		return "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", err
	}
	return token, nil
}

// UpdatePassword re-hashes and stores a new password. The current password is
// not asked for.
func (s *AccountService) UpdatePassword(ctx context.Context, user *model.User, password string) (*model.User, error) {
	hash, err := s.hasher.Hash(ctx, password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	updated := user.Clone()
	updated.PasswordHash = hash
	updated.UpdatedAt = s.now()

	saved, err := s.users.Update(ctx, updated)
	if err != nil {
		return nil, storeError(err)
	}

	s.log.Info().Str("user_id", saved.ID).Msg("password changed")
	return saved, nil
}

func (s *AccountService) unknownUserHash() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash(context.Background(), "unknown-user")
		if err != nil {
			s.log.Error().Err(err).Msg("build dummy password hash")
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

func storeError(err error) error {
	switch {
	case errors.Is(err, db.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, db.ErrDuplicate):
		return ErrConflict
	default:
		return err
	}
}

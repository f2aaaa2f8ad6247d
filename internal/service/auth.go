package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/usersvc/backend/internal/db"
	"github.com/usersvc/backend/internal/model"
)

const bearerScheme = "Bearer"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrMissingCredentials = errors.New("missing credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrUnknownSubject     = errors.New("invalid token")
	ErrConflict           = errors.New("email already registered")
	ErrNotFound           = errors.New("user not found")
	ErrMisconfigured      = errors.New("auth config invalid")
)

// AuthService resolves a bearer token to the user it was issued for. It only
// consumes tokens; issuing them is AccountService's job.
type AuthService struct {
	tokens *TokenService
	users  UserStore
}

func NewAuthService(tokens *TokenService, users UserStore) *AuthService {
	return &AuthService{tokens: tokens, users: users}
}

// Authenticate takes the raw Authorization header value.
func (s *AuthService) Authenticate(ctx context.Context, header string) (*model.User, error) {
	token, ok := BearerToken(header)
	if !ok {
		return nil, ErrMissingCredentials
	}

	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrUnknownSubject
		}
		return nil, fmt.Errorf("resolve token subject: %w", err)
	}
	return user, nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" value.
// The scheme is matched case-insensitively.
func BearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, bearerScheme) {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}

package auth

import (
	"context"
	"errors"
	"time"

	"lendingapi/internal/platform/crypto"
	"lendingapi/internal/user"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrInactive     = errors.New("account locked")
)

type Users interface {
	GetByUsername(ctx context.Context, username string) (user.User, error)
}

type Token struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int       `json:"expires_in"`
	User        user.User `json:"user"`
}

type Service struct {
	secret string
	ttl    time.Duration
	users  Users
}

func NewService(secret string, ttl time.Duration, users Users) *Service {
	return &Service{secret: secret, ttl: ttl, users: users}
}

// Login checks the credentials and issues an access token. Unknown usernames
// and wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, username, password string) (Token, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return Token{}, ErrUnauthorized
		}
		return Token{}, err
	}
	if !crypto.VerifyPassword(u.Password, password) {
		return Token{}, ErrUnauthorized
	}
	if !u.IsActive() {
		return Token{}, ErrInactive
	}

	token, err := crypto.GenerateToken(s.secret, crypto.Subject{UserID: u.ID, Username: u.Username, Role: string(u.Role)}, s.ttl)
	if err != nil {
		return Token{}, err
	}
	return Token{AccessToken: token, ExpiresIn: int(s.ttl.Seconds()), User: u}, nil
}

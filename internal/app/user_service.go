package app

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"learning-service/internal/domain"
)

const (
	minLastNameLen = 2
	maxLastNameLen = 255
)

// TokenIssuer signs access tokens for a user.
type TokenIssuer interface {
	Issue(user domain.User) (string, error)
}

// Session is the result of a successful login.
type Session struct {
	User  domain.User `json:"user"`
	Token string      `json:"token"`
}

// UserService is the learner directory: login by display name and the reward counter.
type UserService struct {
	store  UserStore
	tokens TokenIssuer
}

func NewUserService(store UserStore, tokens TokenIssuer) *UserService {
	return &UserService{store: store, tokens: tokens}
}

// Login finds or creates the user named lastName and issues an access token.
func (s *UserService) Login(ctx context.Context, lastName string) (Session, error) {
	name := strings.TrimSpace(lastName)
	if n := utf8.RuneCountInString(name); n < minLastNameLen || n > maxLastNameLen {
		return Session{}, fmt.Errorf("%w: lastName must be between %d and %d characters", domain.ErrInvalidInput, minLastNameLen, maxLastNameLen)
	}

	user, err := s.store.FindOrCreateUser(ctx, name)
	if err != nil {
		return Session{}, fmt.Errorf("find or create user: %w", err)
	}
	token, err := s.tokens.Issue(user)
	if err != nil {
		return Session{}, fmt.Errorf("issue token: %w", err)
	}
	return Session{User: user, Token: token}, nil
}

func (s *UserService) GetUser(ctx context.Context, id int64) (domain.User, error) {
	return s.store.GetUser(ctx, id)
}

// AwardTokens adds n knowledge tokens and returns the new balance.
func (s *UserService) AwardTokens(ctx context.Context, userID int64, n int) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("%w: token award must be positive", domain.ErrInvalidInput)
	}
	balance, err := s.store.IncrementKnowledgeTokens(ctx, userID, n)
	if err != nil {
		return 0, fmt.Errorf("award tokens to user %d: %w", userID, err)
	}
	return balance, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.store.ListUsers(ctx)
}

package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/medibook/medibook/internal/platform/auth"
)

// Provider-style error codes. Callers pattern-match on these strings, so
// they are part of the contract. Unknown email and bad password share one
// code on purpose.
var (
	ErrEmailInUse    = errors.New("email-already-in-use")
	ErrWrongPassword = errors.New("wrong-password")
	ErrNotFound      = errors.New("account not found")
)

// Session is the result of a successful sign-up or sign-in.
type Session struct {
	Account *Account `json:"account"`
	Token   string   `json:"token"`
}

type Service struct {
	repo    Repository
	tokens  *auth.TokenIssuer
	revoked *auth.TokenRevocationStore
}

func NewService(repo Repository, tokens *auth.TokenIssuer, revoked *auth.TokenRevocationStore) *Service {
	return &Service{repo: repo, tokens: tokens, revoked: revoked}
}

func (s *Service) SignUp(ctx context.Context, email, password, displayName string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("please enter a valid email")
	}
	if len(password) < 6 {
		return nil, fmt.Errorf("password must be at least 6 characters")
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailInUse
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	a := &Account{
		Email:        email,
		DisplayName:  displayName,
		Role:         RolePatient,
		PasswordHash: string(hash),
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	return s.startSession(a)
}

func (s *Service) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	a, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, ErrWrongPassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)); err != nil {
		return nil, ErrWrongPassword
	}

	return s.startSession(a)
}

func (s *Service) startSession(a *Account) (*Session, error) {
	token, claims, err := s.tokens.Issue(a.ID.String(), a.Email, a.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	if s.revoked != nil {
		s.revoked.Remember(a.ID.String(), claims.ID)
	}
	return &Session{Account: a, Token: token}, nil
}

// SignOut revokes the presented token so it stops working before expiry.
func (s *Service) SignOut(ctx context.Context, identity *auth.Identity) error {
	if identity == nil {
		return auth.ErrInvalidToken
	}
	if s.revoked != nil && identity.JTI != "" {
		s.revoked.Revoke(identity.JTI, time.Now().Add(s.tokens.TTL()))
	}
	return nil
}

func (s *Service) Me(ctx context.Context, accountID string) (*Account, error) {
	id, err := uuid.Parse(accountID)
	if err != nil {
		return nil, ErrNotFound
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	return a, nil
}

func (s *Service) UpdateProfile(ctx context.Context, accountID, displayName, phone string) (*Account, error) {
	a, err := s.Me(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if displayName != "" {
		a.DisplayName = displayName
	}
	if phone != "" {
		a.Phone = phone
	}
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to update account: %w", err)
	}
	return a, nil
}

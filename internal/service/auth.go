// Package service contains application services for accounts and generation.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"

	pkgcrypto "github.com/yukesh4349/Dreampix/internal/crypto"
	"github.com/yukesh4349/Dreampix/internal/errs"
	"github.com/yukesh4349/Dreampix/internal/model"
	"github.com/yukesh4349/Dreampix/internal/repository"
)

// AuthService defines account registration and authentication.
type AuthService interface {
	// Register creates a new account; errs.ErrAlreadyExists if the email is taken.
	Register(ctx context.Context, email, credential, displayName string) (*model.Account, error)
	// Authenticate verifies the credential for an email.
	// Returns errs.ErrInvalidCredentials on unknown email or wrong credential.
	Authenticate(ctx context.Context, email, credential string) (*model.Account, error)
	// IssueToken creates a signed session token for the account.
	IssueToken(account *model.Account) (token string, expiresAt time.Time, err error)
	// Resume verifies a session token and loads the account it names.
	Resume(ctx context.Context, token string) (*model.Account, error)
}

type AuthServiceImpl struct {
	accounts repository.AccountRepository
	signKey  []byte
	tokenTTL time.Duration
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(accounts repository.AccountRepository, signKey []byte, tokenTTL time.Duration) *AuthServiceImpl {
	return &AuthServiceImpl{accounts: accounts, signKey: signKey, tokenTTL: tokenTTL}
}

// Register creates a new account with a per-account credential salt.
func (s *AuthServiceImpl) Register(ctx context.Context, email, credential, displayName string) (*model.Account, error) {
	if email == "" || credential == "" {
		return nil, errors.New("validation: empty email/credential")
	}
	uid, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	salt, err := pkgcrypto.RandBytes(16)
	if err != nil {
		return nil, err
	}

	a := &model.Account{
		ID:          uid,
		Email:       email,
		CredHash:    pkgcrypto.HashCredential([]byte(credential), salt),
		CredSalt:    salt,
		DisplayName: displayName,
		CreatedAt:   time.Now(),
	}
	if err := s.accounts.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Authenticate looks up the account by email and verifies the credential.
// Lookup failures are masked as invalid credentials so the account's
// existence is not disclosed.
func (s *AuthServiceImpl) Authenticate(ctx context.Context, email, credential string) (*model.Account, error) {
	if email == "" || credential == "" {
		return nil, errors.New("validation: empty email/credential")
	}
	a, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, errs.ErrInvalidCredentials
	}
	if !pkgcrypto.VerifyCredential([]byte(credential), a.CredSalt, a.CredHash) {
		return nil, errs.ErrInvalidCredentials
	}
	return a, nil
}

// IssueToken creates a signed HS256 JWT whose subject is the account email.
func (s *AuthServiceImpl) IssueToken(account *model.Account) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(s.tokenTTL)
	claims := jwt.RegisteredClaims{
		Subject:   account.Email,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.signKey)
	return signed, exp, err
}

// Resume parses and verifies a session token and loads its account.
func (s *AuthServiceImpl) Resume(ctx context.Context, token string) (*model.Account, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.signKey, nil
	})
	if err != nil || !parsed.Valid {
		return nil, errs.ErrInvalidCredentials
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return nil, errs.ErrInvalidCredentials
	}
	a, err := s.accounts.GetByEmail(ctx, claims.Subject)
	if err != nil {
		return nil, errs.ErrInvalidCredentials
	}
	return a, nil
}

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"timetrack.org/internal/ids"
)

const (
	defaultAccessTTL  = 15 * time.Minute
	defaultRefreshTTL = 24 * time.Hour * 7
)

// Service orchestrates the credential lifecycle: registration, login,
// refresh and logout. It decides when tokens are minted, persisted and
// revoked; the codec and the stores do the mechanical work.
type Service struct {
	users       UserStore
	credentials CredentialStore
	codec       *Codec
	now         func() time.Time
	accessTTL   time.Duration
	refreshTTL  time.Duration
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service)

// WithAccessTTL overrides the access token lifetime.
func WithAccessTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		if ttl > 0 {
			s.accessTTL = ttl
		}
	}
}

// WithRefreshTTL overrides the refresh token lifetime.
func WithRefreshTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		if ttl > 0 {
			s.refreshTTL = ttl
		}
	}
}

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewService constructs the lifecycle manager.
func NewService(users UserStore, credentials CredentialStore, codec *Codec, opts ...ServiceOption) (*Service, error) {
	if users == nil || credentials == nil {
		return nil, errors.New("auth: stores are required")
	}
	if codec == nil {
		return nil, errors.New("auth: codec is required")
	}
	svc := &Service{
		users:       users,
		credentials: credentials,
		codec:       codec,
		now:         time.Now,
		accessTTL:   defaultAccessTTL,
		refreshTTL:  defaultRefreshTTL,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// RegisterInput carries the fields of a registration request.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	BirthDate time.Time
}

func (in *RegisterInput) normalize() error {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	if in.Username == "" {
		return invalidField("username", "username is required")
	}
	if in.Email == "" || !strings.Contains(in.Email, "@") {
		return invalidField("email", "valid email is required")
	}
	if in.Password == "" {
		return invalidField("password", "password is required")
	}
	return nil
}

// Register creates a new identity with the default role and issues its first
// token pair. The access token is persisted as a credential row; the refresh
// token lives only inside its own signature.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*TokenPair, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	exists, err := s.users.ExistsByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: user with this email already exists", ErrConflict)
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := &User{
		ID:           ids.New(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		BirthDate:    in.BirthDate,
		Role:         RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	pair, err := s.mintPair(user.Email)
	if err != nil {
		return nil, err
	}
	cred := &Credential{
		ID:     ids.New(),
		Token:  pair.AccessToken,
		UserID: user.ID,
	}
	if err := s.credentials.Create(ctx, cred); err != nil {
		return nil, err
	}
	return pair, nil
}

// Authenticate verifies the email/password pair and issues a fresh token
// pair. Every successful login revokes all previously usable credential rows
// for the identity before the new access token is persisted.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*TokenPair, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, ErrUnauthorized
	}
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	if err := VerifyPassword(user.PasswordHash, password); err != nil {
		return nil, ErrUnauthorized
	}
	pair, err := s.mintPair(user.Email)
	if err != nil {
		return nil, err
	}
	if err := s.credentials.Rotate(ctx, user.ID, pair.AccessToken); err != nil {
		return nil, err
	}
	return pair, nil
}

// Refresh exchanges a valid refresh token for a new token pair, revoking all
// prior credential rows for the subject. A missing or invalid refresh token
// is a silent no-op: both return values are nil and the caller gets no
// signal, matching the observed behavior of the flow this replaces.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil, nil
	}
	claims, err := s.codec.Verify(refreshToken)
	if err != nil {
		return nil, nil
	}
	user, err := s.users.FindByEmail(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	pair, err := s.mintPair(user.Email)
	if err != nil {
		return nil, err
	}
	if err := s.credentials.Rotate(ctx, user.ID, pair.AccessToken); err != nil {
		return nil, err
	}
	return pair, nil
}

// Logout revokes the credential row matching the access token. Unknown
// tokens are a no-op, which makes the operation idempotent.
func (s *Service) Logout(ctx context.Context, accessToken string) error {
	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" {
		return nil
	}
	cred, err := s.credentials.FindByToken(ctx, accessToken)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	return s.credentials.Revoke(ctx, cred.ID)
}

// CheckToken validates an inbound access token against both authorities: the
// codec's signature/expiry check and the credential store's revoked/expired
// flags. Both must pass; a revoked row rejects a cryptographically valid
// token. On success it returns the owning identity.
func (s *Service) CheckToken(ctx context.Context, token string) (*User, error) {
	claims, err := s.codec.Verify(token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	user, err := s.users.FindByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	cred, err := s.credentials.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if !cred.Usable() || cred.UserID != user.ID {
		return nil, ErrInvalidToken
	}
	return user, nil
}

func (s *Service) mintPair(subject string) (*TokenPair, error) {
	access, err := s.codec.Mint(subject, s.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.codec.Mint(subject, s.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

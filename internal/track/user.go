package track

import (
	"context"
	"errors"
	"strings"
	"time"

	"timetrack.org/internal/auth"
)

// UserDirectory is the user-management surface the profile operations need,
// beyond what the auth subsystem consumes.
type UserDirectory interface {
	Find(ctx context.Context, id string) (*auth.User, error)
	List(ctx context.Context) ([]*auth.User, error)
	Update(ctx context.Context, u *auth.User) error
	Delete(ctx context.Context, id string) error
}

// UserService provides profile management over existing identities.
// Registration itself belongs to the credential lifecycle.
type UserService struct {
	users UserDirectory
}

// NewUserService constructs a UserService.
func NewUserService(users UserDirectory) (*UserService, error) {
	if users == nil {
		return nil, errors.New("track: user directory is required")
	}
	return &UserService{users: users}, nil
}

// UserInput carries the mutable profile fields.
type UserInput struct {
	Username  string
	Email     string
	Password  string
	BirthDate time.Time
}

func (in *UserInput) normalize() error {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	if in.Username == "" {
		return invalidField("username", "username is required")
	}
	if in.Email == "" || !strings.Contains(in.Email, "@") {
		return invalidField("email", "valid email is required")
	}
	return nil
}

// ListUsers returns every identity.
func (s *UserService) ListUsers(ctx context.Context) ([]*auth.User, error) {
	return s.users.List(ctx)
}

// GetUser loads one identity by id.
func (s *UserService) GetUser(ctx context.Context, id string) (*auth.User, error) {
	return s.users.Find(ctx, id)
}

// UpdateUser applies profile changes. A non-empty password is re-hashed; an
// empty one leaves the stored hash untouched.
func (s *UserService) UpdateUser(ctx context.Context, id string, in UserInput) (*auth.User, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	user, err := s.users.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Username = in.Username
	user.Email = in.Email
	if !in.BirthDate.IsZero() {
		user.BirthDate = in.BirthDate
	}
	if in.Password != "" {
		hash, err := auth.HashPassword(in.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser removes an identity.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	return s.users.Delete(ctx, id)
}

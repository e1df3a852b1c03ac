package auth

import "context"

// UserStore describes the identity persistence the auth subsystem consumes.
type UserStore interface {
	Create(ctx context.Context, u *User) error
	Find(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// CredentialStore manages the lifecycle of issued access-token rows.
type CredentialStore interface {
	Create(ctx context.Context, c *Credential) error
	FindByToken(ctx context.Context, token string) (*Credential, error)
	// Revoke flags one credential row as revoked and expired.
	Revoke(ctx context.Context, id string) error
	// Rotate revokes every usable credential row for the user and inserts a
	// new row for token, all inside one transaction keyed by the user id.
	// Two concurrent rotations for the same user must not leave two usable
	// rows behind.
	Rotate(ctx context.Context, userID, token string) error
}

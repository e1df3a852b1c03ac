package pg

import (
	"context"
	"database/sql"
	"errors"

	"timetrack.org/internal/auth"
	"timetrack.org/internal/ids"
)

// CredentialStore persists issued access-token rows. Rows are flagged on
// revocation, never deleted.
type CredentialStore struct {
	db *sql.DB
}

func (s *CredentialStore) Create(ctx context.Context, c *auth.Credential) error {
	if c.ID == "" {
		c.ID = ids.New()
	}
	_, err := s.db.ExecContext(ctx, `
		insert into credentials(id, token, user_id, revoked, expired)
		values ($1,$2,$3,false,false)
	`, c.ID, c.Token, c.UserID)
	return err
}

func (s *CredentialStore) FindByToken(ctx context.Context, token string) (*auth.Credential, error) {
	row := s.db.QueryRowContext(ctx, `
		select id, token, user_id, revoked, expired, created_at
		from credentials where token=$1
	`, token)
	var c auth.Credential
	if err := row.Scan(&c.ID, &c.Token, &c.UserID, &c.Revoked, &c.Expired, &c.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, auth.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (s *CredentialStore) Revoke(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `
		update credentials set revoked=true, expired=true where id=$1
	`, id)
	if err != nil {
		return err
	}
	return requireRow(res, auth.ErrNotFound)
}

// Rotate revokes every usable credential row for the user and inserts a new
// row for token inside one transaction. The user row is locked first so two
// rotations for the same identity serialize and cannot leave two usable
// rows behind.
func (s *CredentialStore) Rotate(ctx context.Context, userID, token string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var dummy int
	if err := tx.QueryRowContext(ctx, `select 1 from users where id=$1 for update`, userID).Scan(&dummy); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return auth.ErrNotFound
		}
		return err
	}
	if _, err := tx.ExecContext(ctx, `
		update credentials set revoked=true, expired=true
		where user_id=$1 and revoked=false and expired=false
	`, userID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
		insert into credentials(id, token, user_id, revoked, expired)
		values ($1,$2,$3,false,false)
	`, ids.New(), token, userID); err != nil {
		return err
	}
	return tx.Commit()
}

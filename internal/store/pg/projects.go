package pg

import (
	"context"
	"database/sql"
	"errors"

	"timetrack.org/internal/track"
)

// ProjectStore persists projects and the project_users membership relation.
type ProjectStore struct {
	db *sql.DB
}

func (s *ProjectStore) Create(ctx context.Context, p *track.Project) error {
	_, err := s.db.ExecContext(ctx, `
		insert into projects(id, name, description) values ($1,$2,$3)
	`, p.ID, p.Name, p.Description)
	return err
}

func (s *ProjectStore) Find(ctx context.Context, id string) (*track.Project, error) {
	row := s.db.QueryRowContext(ctx, `
		select id, name, description, created_at, updated_at from projects where id=$1
	`, id)
	var p track.Project
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, track.ErrNotFound
		}
		return nil, err
	}
	members, err := s.MemberIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	p.MemberIDs = members
	return &p, nil
}

func (s *ProjectStore) Update(ctx context.Context, p *track.Project) error {
	res, err := s.db.ExecContext(ctx, `
		update projects set name=$2, description=$3, updated_at=now() where id=$1
	`, p.ID, p.Name, p.Description)
	if err != nil {
		return err
	}
	return requireRow(res, track.ErrNotFound)
}

func (s *ProjectStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from projects where id=$1`, id)
	if err != nil {
		return err
	}
	return requireRow(res, track.ErrNotFound)
}

func (s *ProjectStore) List(ctx context.Context) ([]*track.Project, error) {
	return s.queryProjects(ctx, `
		select id, name, description, created_at, updated_at
		from projects order by created_at asc
	`)
}

func (s *ProjectStore) ListByMember(ctx context.Context, userID string) ([]*track.Project, error) {
	return s.queryProjects(ctx, `
		select p.id, p.name, p.description, p.created_at, p.updated_at
		from projects p
		join project_users pu on pu.project_id = p.id
		where pu.user_id = $1
		order by p.created_at asc
	`, userID)
}

func (s *ProjectStore) AddMember(ctx context.Context, projectID, userID string) error {
	_, err := s.db.ExecContext(ctx, `
		insert into project_users(project_id, user_id)
		values ($1,$2) on conflict do nothing
	`, projectID, userID)
	return err
}

// MemberIDs returns the membership set for one project, reporting not-found
// when the project itself does not exist so existence surfaces before
// authorization.
func (s *ProjectStore) MemberIDs(ctx context.Context, projectID string) ([]string, error) {
	var exists bool
	if err := s.db.QueryRowContext(ctx, `select exists(select 1 from projects where id=$1)`, projectID).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, track.ErrNotFound
	}
	rows, err := s.db.QueryContext(ctx, `
		select user_id from project_users where project_id=$1
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		res = append(res, id)
	}
	return res, rows.Err()
}

func (s *ProjectStore) queryProjects(ctx context.Context, query string, args ...any) ([]*track.Project, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*track.Project
	for rows.Next() {
		var p track.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		res = append(res, &p)
	}
	return res, rows.Err()
}

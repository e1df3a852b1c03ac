package pg

import (
	"context"
	"database/sql"
	"errors"

	"timetrack.org/internal/track"
)

// TaskStore persists tasks.
type TaskStore struct {
	db *sql.DB
}

const taskColumns = `id, project_id, name, description, status, created_at, updated_at`

func scanTask(row interface{ Scan(...any) error }) (*track.Task, error) {
	var t track.Task
	var status string
	if err := row.Scan(&t.ID, &t.ProjectID, &t.Name, &t.Description, &status, &t.CreatedAt, &t.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, track.ErrNotFound
		}
		return nil, err
	}
	t.Status = track.TaskStatus(status)
	return &t, nil
}

func (s *TaskStore) Create(ctx context.Context, t *track.Task) error {
	_, err := s.db.ExecContext(ctx, `
		insert into tasks(id, project_id, name, description, status)
		values ($1,$2,$3,$4,$5)
	`, t.ID, t.ProjectID, t.Name, t.Description, string(t.Status))
	return err
}

func (s *TaskStore) Find(ctx context.Context, id string) (*track.Task, error) {
	row := s.db.QueryRowContext(ctx, `select `+taskColumns+` from tasks where id=$1`, id)
	return scanTask(row)
}

func (s *TaskStore) Update(ctx context.Context, t *track.Task) error {
	res, err := s.db.ExecContext(ctx, `
		update tasks set project_id=$2, name=$3, description=$4, status=$5, updated_at=now()
		where id=$1
	`, t.ID, t.ProjectID, t.Name, t.Description, string(t.Status))
	if err != nil {
		return err
	}
	return requireRow(res, track.ErrNotFound)
}

func (s *TaskStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from tasks where id=$1`, id)
	if err != nil {
		return err
	}
	return requireRow(res, track.ErrNotFound)
}

func (s *TaskStore) List(ctx context.Context) ([]*track.Task, error) {
	return s.queryTasks(ctx, `select `+taskColumns+` from tasks order by created_at asc`)
}

func (s *TaskStore) ListByMember(ctx context.Context, userID string) ([]*track.Task, error) {
	return s.queryTasks(ctx, `
		select t.id, t.project_id, t.name, t.description, t.status, t.created_at, t.updated_at
		from tasks t
		join project_users pu on pu.project_id = t.project_id
		where pu.user_id = $1
		order by t.created_at asc
	`, userID)
}

// ProjectID resolves the owning project of one task.
func (s *TaskStore) ProjectID(ctx context.Context, taskID string) (string, error) {
	var projectID string
	err := s.db.QueryRowContext(ctx, `select project_id from tasks where id=$1`, taskID).Scan(&projectID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", track.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return projectID, nil
}

func (s *TaskStore) queryTasks(ctx context.Context, query string, args ...any) ([]*track.Task, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*track.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, t)
	}
	return res, rows.Err()
}

package pg

import (
	"context"
	"database/sql"
	"errors"

	"timetrack.org/internal/track"
)

// RecordStore persists time records.
type RecordStore struct {
	db *sql.DB
}

const recordColumns = `id, user_id, task_id, start_time, end_time, description, created_at, updated_at`

func scanRecord(row interface{ Scan(...any) error }) (*track.Record, error) {
	var r track.Record
	if err := row.Scan(&r.ID, &r.UserID, &r.TaskID, &r.StartTime, &r.EndTime, &r.Description, &r.CreatedAt, &r.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, track.ErrNotFound
		}
		return nil, err
	}
	return &r, nil
}

func (s *RecordStore) Create(ctx context.Context, r *track.Record) error {
	_, err := s.db.ExecContext(ctx, `
		insert into records(id, user_id, task_id, start_time, end_time, description)
		values ($1,$2,$3,$4,$5,$6)
	`, r.ID, r.UserID, r.TaskID, r.StartTime, r.EndTime, r.Description)
	return err
}

func (s *RecordStore) Find(ctx context.Context, id string) (*track.Record, error) {
	row := s.db.QueryRowContext(ctx, `select `+recordColumns+` from records where id=$1`, id)
	return scanRecord(row)
}

func (s *RecordStore) Update(ctx context.Context, r *track.Record) error {
	res, err := s.db.ExecContext(ctx, `
		update records set user_id=$2, task_id=$3, start_time=$4, end_time=$5, description=$6, updated_at=now()
		where id=$1
	`, r.ID, r.UserID, r.TaskID, r.StartTime, r.EndTime, r.Description)
	if err != nil {
		return err
	}
	return requireRow(res, track.ErrNotFound)
}

func (s *RecordStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from records where id=$1`, id)
	if err != nil {
		return err
	}
	return requireRow(res, track.ErrNotFound)
}

func (s *RecordStore) List(ctx context.Context) ([]*track.Record, error) {
	return s.queryRecords(ctx, `select `+recordColumns+` from records order by start_time asc`)
}

func (s *RecordStore) ListByMember(ctx context.Context, userID string) ([]*track.Record, error) {
	return s.queryRecords(ctx, `
		select r.id, r.user_id, r.task_id, r.start_time, r.end_time, r.description, r.created_at, r.updated_at
		from records r
		join tasks t on t.id = r.task_id
		join project_users pu on pu.project_id = t.project_id
		where pu.user_id = $1
		order by r.start_time asc
	`, userID)
}

// ProjectID resolves the owning project of one record through its task.
func (s *RecordStore) ProjectID(ctx context.Context, recordID string) (string, error) {
	var projectID string
	err := s.db.QueryRowContext(ctx, `
		select t.project_id
		from records r
		join tasks t on t.id = r.task_id
		where r.id=$1
	`, recordID).Scan(&projectID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", track.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return projectID, nil
}

func (s *RecordStore) queryRecords(ctx context.Context, query string, args ...any) ([]*track.Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*track.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, r)
	}
	return res, rows.Err()
}

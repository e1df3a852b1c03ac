package track

import (
	"context"
	"errors"
	"strings"
	"time"

	"timetrack.org/internal/auth"
	"timetrack.org/internal/ids"
)

// RecordService provides time-record management operations.
type RecordService struct {
	records RecordStore
	tasks   TaskStore
	users   auth.UserStore
}

// NewRecordService constructs a RecordService.
func NewRecordService(records RecordStore, tasks TaskStore, users auth.UserStore) (*RecordService, error) {
	if records == nil || tasks == nil || users == nil {
		return nil, errors.New("track: record, task and user stores are required")
	}
	return &RecordService{records: records, tasks: tasks, users: users}, nil
}

// RecordInput carries the mutable fields of a time record.
type RecordInput struct {
	UserID      string
	TaskID      string
	StartTime   time.Time
	EndTime     time.Time
	Description string
}

func (in *RecordInput) normalize() error {
	in.UserID = strings.TrimSpace(in.UserID)
	in.TaskID = strings.TrimSpace(in.TaskID)
	in.Description = strings.TrimSpace(in.Description)
	if in.TaskID == "" {
		return invalidField("task_id", "task_id is required")
	}
	if in.StartTime.IsZero() || in.EndTime.IsZero() {
		return invalidField("start_time", "start_time and end_time are required")
	}
	if !in.EndTime.After(in.StartTime) {
		return invalidField("end_time", "end_time must be after start_time")
	}
	return nil
}

// ListRecords returns all records for administrators and the records
// reachable through the caller's project memberships for everybody else.
func (s *RecordService) ListRecords(ctx context.Context) ([]*Record, error) {
	principal, ok := auth.PrincipalFromContext(ctx)
	if !ok {
		return nil, auth.ErrUnauthorized
	}
	if principal.IsAdmin() {
		return s.records.List(ctx)
	}
	return s.records.ListByMember(ctx, principal.UserID)
}

// GetRecord loads one record by id.
func (s *RecordService) GetRecord(ctx context.Context, id string) (*Record, error) {
	return s.records.Find(ctx, id)
}

// CreateRecord books a time entry against an existing task. When the input
// names no user the record is attributed to the caller.
func (s *RecordService) CreateRecord(ctx context.Context, in RecordInput) (*Record, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	if in.UserID == "" {
		principal, ok := auth.PrincipalFromContext(ctx)
		if !ok {
			return nil, auth.ErrUnauthorized
		}
		in.UserID = principal.UserID
	}
	if _, err := s.tasks.Find(ctx, in.TaskID); err != nil {
		return nil, err
	}
	if _, err := s.users.Find(ctx, in.UserID); err != nil {
		return nil, err
	}
	record := &Record{
		ID:          ids.New(),
		UserID:      in.UserID,
		TaskID:      in.TaskID,
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
		Description: in.Description,
	}
	if err := s.records.Create(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// UpdateRecord applies the input to an existing record.
func (s *RecordService) UpdateRecord(ctx context.Context, id string, in RecordInput) (*Record, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	record, err := s.records.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.tasks.Find(ctx, in.TaskID); err != nil {
		return nil, err
	}
	if in.UserID != "" {
		record.UserID = in.UserID
	}
	record.TaskID = in.TaskID
	record.StartTime = in.StartTime
	record.EndTime = in.EndTime
	record.Description = in.Description
	if err := s.records.Update(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// DeleteRecord removes a record.
func (s *RecordService) DeleteRecord(ctx context.Context, id string) error {
	return s.records.Delete(ctx, id)
}

package track

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"timetrack.org/internal/auth"
	"timetrack.org/internal/ids"
)

// TaskService provides task management operations with the same
// member-filtered list semantics as projects.
type TaskService struct {
	tasks    TaskStore
	projects ProjectStore
}

// NewTaskService constructs a TaskService.
func NewTaskService(tasks TaskStore, projects ProjectStore) (*TaskService, error) {
	if tasks == nil || projects == nil {
		return nil, errors.New("track: task and project stores are required")
	}
	return &TaskService{tasks: tasks, projects: projects}, nil
}

// TaskInput carries the mutable fields of a task.
type TaskInput struct {
	ProjectID   string
	Name        string
	Description string
	Status      TaskStatus
}

func (in *TaskInput) normalize() error {
	in.ProjectID = strings.TrimSpace(in.ProjectID)
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if in.ProjectID == "" {
		return invalidField("project_id", "project_id is required")
	}
	if in.Name == "" {
		return invalidField("name", "task name is required")
	}
	if in.Status == "" {
		in.Status = StatusOpen
	}
	if !in.Status.Valid() {
		return invalidField("status", fmt.Sprintf("unsupported status %s", in.Status))
	}
	return nil
}

// ListTasks returns all tasks for administrators and the tasks of the
// caller's projects for everybody else.
func (s *TaskService) ListTasks(ctx context.Context) ([]*Task, error) {
	principal, ok := auth.PrincipalFromContext(ctx)
	if !ok {
		return nil, auth.ErrUnauthorized
	}
	if principal.IsAdmin() {
		return s.tasks.List(ctx)
	}
	return s.tasks.ListByMember(ctx, principal.UserID)
}

// GetTask loads one task by id.
func (s *TaskService) GetTask(ctx context.Context, id string) (*Task, error) {
	return s.tasks.Find(ctx, id)
}

// CreateTask creates a task inside an existing project.
func (s *TaskService) CreateTask(ctx context.Context, in TaskInput) (*Task, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	if _, err := s.projects.Find(ctx, in.ProjectID); err != nil {
		return nil, err
	}
	task := &Task{
		ID:          ids.New(),
		ProjectID:   in.ProjectID,
		Name:        in.Name,
		Description: in.Description,
		Status:      in.Status,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// UpdateTask applies the input to an existing task, enforcing the status
// state machine.
func (s *TaskService) UpdateTask(ctx context.Context, id string, in TaskInput) (*Task, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	task, err := s.tasks.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.projects.Find(ctx, in.ProjectID); err != nil {
		return nil, err
	}
	if err := validateTransition(task.Status, in.Status); err != nil {
		return nil, err
	}
	task.ProjectID = in.ProjectID
	task.Name = in.Name
	task.Description = in.Description
	task.Status = in.Status
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// DeleteTask removes a task.
func (s *TaskService) DeleteTask(ctx context.Context, id string) error {
	return s.tasks.Delete(ctx, id)
}

// validateTransition enforces the task status state machine: COMPLETED and
// ON_HOLD are terminal, OPEN may only move to IN_PROGRESS, and IN_PROGRESS
// may only move to COMPLETED or ON_HOLD.
func validateTransition(current, next TaskStatus) error {
	if current == StatusCompleted || current == StatusOnHold {
		return fmt.Errorf("%w: cannot change status from %s", ErrInvalidTransition, current)
	}
	if current == StatusOpen && next != StatusInProgress {
		return fmt.Errorf("%w: can only change status from %s to %s", ErrInvalidTransition, StatusOpen, StatusInProgress)
	}
	if current == StatusInProgress && next != StatusCompleted && next != StatusOnHold {
		return fmt.Errorf("%w: can only change status from %s to %s or %s", ErrInvalidTransition, StatusInProgress, StatusCompleted, StatusOnHold)
	}
	return nil
}

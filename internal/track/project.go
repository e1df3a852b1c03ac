package track

import (
	"context"
	"errors"
	"strings"

	"timetrack.org/internal/auth"
	"timetrack.org/internal/ids"
)

// ProjectService provides project management operations. List reads are
// filtered server-side: administrators see the global set, everybody else
// sees only projects they are a member of.
type ProjectService struct {
	projects ProjectStore
	users    auth.UserStore
}

// NewProjectService constructs a ProjectService.
func NewProjectService(projects ProjectStore, users auth.UserStore) (*ProjectService, error) {
	if projects == nil || users == nil {
		return nil, errors.New("track: project and user stores are required")
	}
	return &ProjectService{projects: projects, users: users}, nil
}

// ProjectInput carries the mutable fields of a project.
type ProjectInput struct {
	Name        string
	Description string
}

func (in *ProjectInput) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if in.Name == "" {
		return invalidField("name", "project name is required")
	}
	return nil
}

// ListProjects returns the caller-visible set of projects. Narrowing the
// result is a data-access decision, never an authorization rejection.
func (s *ProjectService) ListProjects(ctx context.Context) ([]*Project, error) {
	principal, ok := auth.PrincipalFromContext(ctx)
	if !ok {
		return nil, auth.ErrUnauthorized
	}
	if principal.IsAdmin() {
		return s.projects.List(ctx)
	}
	return s.projects.ListByMember(ctx, principal.UserID)
}

// GetProject loads one project by id.
func (s *ProjectService) GetProject(ctx context.Context, id string) (*Project, error) {
	return s.projects.Find(ctx, id)
}

// CreateProject creates a project.
func (s *ProjectService) CreateProject(ctx context.Context, in ProjectInput) (*Project, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	project := &Project{
		ID:          ids.New(),
		Name:        in.Name,
		Description: in.Description,
	}
	if err := s.projects.Create(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// UpdateProject applies the input to an existing project.
func (s *ProjectService) UpdateProject(ctx context.Context, id string, in ProjectInput) (*Project, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	project, err := s.projects.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	project.Name = in.Name
	project.Description = in.Description
	if err := s.projects.Update(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// DeleteProject removes a project.
func (s *ProjectService) DeleteProject(ctx context.Context, id string) error {
	return s.projects.Delete(ctx, id)
}

// AddMember adds a user to the project's membership set. Both sides of the
// relation must exist.
func (s *ProjectService) AddMember(ctx context.Context, projectID, userID string) (*Project, error) {
	project, err := s.projects.Find(ctx, projectID)
	if err != nil {
		return nil, err
	}
	user, err := s.users.Find(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.projects.AddMember(ctx, project.ID, user.ID); err != nil {
		return nil, err
	}
	return s.projects.Find(ctx, project.ID)
}

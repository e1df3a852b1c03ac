package track

import "context"

// ProjectStore manages project aggregates and their membership relation.
type ProjectStore interface {
	Create(ctx context.Context, p *Project) error
	Find(ctx context.Context, id string) (*Project, error)
	Update(ctx context.Context, p *Project) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*Project, error)
	// ListByMember returns only the projects whose membership set contains
	// the given user.
	ListByMember(ctx context.Context, userID string) ([]*Project, error)
	AddMember(ctx context.Context, projectID, userID string) error
	MemberIDs(ctx context.Context, projectID string) ([]string, error)
}

// TaskStore manages tasks.
type TaskStore interface {
	Create(ctx context.Context, t *Task) error
	Find(ctx context.Context, id string) (*Task, error)
	Update(ctx context.Context, t *Task) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*Task, error)
	// ListByMember returns tasks of projects the user is a member of.
	ListByMember(ctx context.Context, userID string) ([]*Task, error)
}

// RecordStore manages time records.
type RecordStore interface {
	Create(ctx context.Context, r *Record) error
	Find(ctx context.Context, id string) (*Record, error)
	Update(ctx context.Context, r *Record) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*Record, error)
	// ListByMember returns records reachable through the user's project
	// memberships.
	ListByMember(ctx context.Context, userID string) ([]*Record, error)
}

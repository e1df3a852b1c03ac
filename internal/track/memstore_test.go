package track

import (
	"context"
	"slices"
	"time"

	"timetrack.org/internal/auth"
)

// In-memory stores backing the service tests.

type memProjects struct {
	projects map[string]*Project
	members  map[string][]string
}

func newMemProjects() *memProjects {
	return &memProjects{projects: map[string]*Project{}, members: map[string][]string{}}
}

func (m *memProjects) Create(_ context.Context, p *Project) error {
	cp := *p
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	m.projects[p.ID] = &cp
	return nil
}

func (m *memProjects) Find(_ context.Context, id string) (*Project, error) {
	p, ok := m.projects[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	cp.MemberIDs = slices.Clone(m.members[id])
	return &cp, nil
}

func (m *memProjects) Update(_ context.Context, p *Project) error {
	if _, ok := m.projects[p.ID]; !ok {
		return ErrNotFound
	}
	cp := *p
	cp.UpdatedAt = time.Now()
	m.projects[p.ID] = &cp
	return nil
}

func (m *memProjects) Delete(_ context.Context, id string) error {
	if _, ok := m.projects[id]; !ok {
		return ErrNotFound
	}
	delete(m.projects, id)
	delete(m.members, id)
	return nil
}

func (m *memProjects) List(_ context.Context) ([]*Project, error) {
	var res []*Project
	for id := range m.projects {
		p, _ := m.Find(context.Background(), id)
		res = append(res, p)
	}
	return res, nil
}

func (m *memProjects) ListByMember(_ context.Context, userID string) ([]*Project, error) {
	var res []*Project
	for id := range m.projects {
		if slices.Contains(m.members[id], userID) {
			p, _ := m.Find(context.Background(), id)
			res = append(res, p)
		}
	}
	return res, nil
}

func (m *memProjects) AddMember(_ context.Context, projectID, userID string) error {
	if !slices.Contains(m.members[projectID], userID) {
		m.members[projectID] = append(m.members[projectID], userID)
	}
	return nil
}

func (m *memProjects) MemberIDs(_ context.Context, projectID string) ([]string, error) {
	if _, ok := m.projects[projectID]; !ok {
		return nil, ErrNotFound
	}
	return slices.Clone(m.members[projectID]), nil
}

type memTasks struct {
	tasks    map[string]*Task
	projects *memProjects
}

func newMemTasks(projects *memProjects) *memTasks {
	return &memTasks{tasks: map[string]*Task{}, projects: projects}
}

func (m *memTasks) Create(_ context.Context, t *Task) error {
	cp := *t
	m.tasks[t.ID] = &cp
	return nil
}

func (m *memTasks) Find(_ context.Context, id string) (*Task, error) {
	t, ok := m.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memTasks) Update(_ context.Context, t *Task) error {
	if _, ok := m.tasks[t.ID]; !ok {
		return ErrNotFound
	}
	cp := *t
	m.tasks[t.ID] = &cp
	return nil
}

func (m *memTasks) Delete(_ context.Context, id string) error {
	if _, ok := m.tasks[id]; !ok {
		return ErrNotFound
	}
	delete(m.tasks, id)
	return nil
}

func (m *memTasks) List(_ context.Context) ([]*Task, error) {
	var res []*Task
	for _, t := range m.tasks {
		cp := *t
		res = append(res, &cp)
	}
	return res, nil
}

func (m *memTasks) ListByMember(_ context.Context, userID string) ([]*Task, error) {
	var res []*Task
	for _, t := range m.tasks {
		if slices.Contains(m.projects.members[t.ProjectID], userID) {
			cp := *t
			res = append(res, &cp)
		}
	}
	return res, nil
}

type memRecords struct {
	records map[string]*Record
	tasks   *memTasks
}

func newMemRecords(tasks *memTasks) *memRecords {
	return &memRecords{records: map[string]*Record{}, tasks: tasks}
}

func (m *memRecords) Create(_ context.Context, r *Record) error {
	cp := *r
	m.records[r.ID] = &cp
	return nil
}

func (m *memRecords) Find(_ context.Context, id string) (*Record, error) {
	r, ok := m.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memRecords) Update(_ context.Context, r *Record) error {
	if _, ok := m.records[r.ID]; !ok {
		return ErrNotFound
	}
	cp := *r
	m.records[r.ID] = &cp
	return nil
}

func (m *memRecords) Delete(_ context.Context, id string) error {
	if _, ok := m.records[id]; !ok {
		return ErrNotFound
	}
	delete(m.records, id)
	return nil
}

func (m *memRecords) List(_ context.Context) ([]*Record, error) {
	var res []*Record
	for _, r := range m.records {
		cp := *r
		res = append(res, &cp)
	}
	return res, nil
}

func (m *memRecords) ListByMember(_ context.Context, userID string) ([]*Record, error) {
	var res []*Record
	for _, r := range m.records {
		t, ok := m.tasks.tasks[r.TaskID]
		if !ok {
			continue
		}
		if slices.Contains(m.tasks.projects.members[t.ProjectID], userID) {
			cp := *r
			res = append(res, &cp)
		}
	}
	return res, nil
}

type memUsers struct {
	users map[string]*auth.User
}

func newMemUsers() *memUsers {
	return &memUsers{users: map[string]*auth.User{}}
}

func (m *memUsers) Create(_ context.Context, u *auth.User) error {
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memUsers) Find(_ context.Context, id string) (*auth.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, auth.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, auth.ErrNotFound
}

func (m *memUsers) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := m.FindByEmail(ctx, email)
	return err == nil, nil
}

func (m *memUsers) List(_ context.Context) ([]*auth.User, error) {
	var res []*auth.User
	for _, u := range m.users {
		cp := *u
		res = append(res, &cp)
	}
	return res, nil
}

func (m *memUsers) Update(_ context.Context, u *auth.User) error {
	if _, ok := m.users[u.ID]; !ok {
		return auth.ErrNotFound
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memUsers) Delete(_ context.Context, id string) error {
	if _, ok := m.users[id]; !ok {
		return auth.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func ctxAs(id, email string, role auth.Role) context.Context {
	return auth.ContextWithPrincipal(context.Background(), auth.Principal{
		UserID: id,
		Email:  email,
		Role:   role,
	})
}

package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"

	"timetrack.org/internal/auth"
	"timetrack.org/internal/authz"
	"timetrack.org/internal/track"
)

// In-memory store set backing the boundary tests. One fixture implements
// every store interface the services and the guard consume.

type memUsers struct{ users map[string]*auth.User }

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

type memCreds struct{ byToken map[string]*auth.Credential }

func (m *memCreds) Create(_ context.Context, c *auth.Credential) error {
	cp := *c
	m.byToken[c.Token] = &cp
	return nil
}

func (m *memCreds) FindByToken(_ context.Context, token string) (*auth.Credential, error) {
	c, ok := m.byToken[token]
	if !ok {
		return nil, auth.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memCreds) Revoke(_ context.Context, id string) error {
	for _, c := range m.byToken {
		if c.ID == id {
			c.Revoked = true
			c.Expired = true
			return nil
		}
	}
	return auth.ErrNotFound
}

func (m *memCreds) Rotate(_ context.Context, userID, token string) error {
	for _, c := range m.byToken {
		if c.UserID == userID && c.Usable() {
			c.Revoked = true
			c.Expired = true
		}
	}
	m.byToken[token] = &auth.Credential{ID: "cred-" + token[:12], Token: token, UserID: userID}
	return nil
}

type memProjects struct {
	projects map[string]*track.Project
	members  map[string][]string
}

func (m *memProjects) Create(_ context.Context, p *track.Project) error {
	cp := *p
	m.projects[p.ID] = &cp
	return nil
}

func (m *memProjects) Find(_ context.Context, id string) (*track.Project, error) {
	p, ok := m.projects[id]
	if !ok {
		return nil, track.ErrNotFound
	}
	cp := *p
	cp.MemberIDs = slices.Clone(m.members[id])
	return &cp, nil
}

func (m *memProjects) Update(_ context.Context, p *track.Project) error {
	if _, ok := m.projects[p.ID]; !ok {
		return track.ErrNotFound
	}
	cp := *p
	m.projects[p.ID] = &cp
	return nil
}

func (m *memProjects) Delete(_ context.Context, id string) error {
	if _, ok := m.projects[id]; !ok {
		return track.ErrNotFound
	}
	delete(m.projects, id)
	delete(m.members, id)
	return nil
}

func (m *memProjects) List(ctx context.Context) ([]*track.Project, error) {
	var res []*track.Project
	for id := range m.projects {
		p, _ := m.Find(ctx, id)
		res = append(res, p)
	}
	return res, nil
}

func (m *memProjects) ListByMember(ctx context.Context, userID string) ([]*track.Project, error) {
	var res []*track.Project
	for id := range m.projects {
		if slices.Contains(m.members[id], userID) {
			p, _ := m.Find(ctx, id)
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
		return nil, track.ErrNotFound
	}
	return slices.Clone(m.members[projectID]), nil
}

type memTasks struct {
	tasks    map[string]*track.Task
	projects *memProjects
}

func (m *memTasks) Create(_ context.Context, t *track.Task) error {
	cp := *t
	m.tasks[t.ID] = &cp
	return nil
}

func (m *memTasks) Find(_ context.Context, id string) (*track.Task, error) {
	t, ok := m.tasks[id]
	if !ok {
		return nil, track.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memTasks) Update(_ context.Context, t *track.Task) error {
	if _, ok := m.tasks[t.ID]; !ok {
		return track.ErrNotFound
	}
	cp := *t
	m.tasks[t.ID] = &cp
	return nil
}

func (m *memTasks) Delete(_ context.Context, id string) error {
	if _, ok := m.tasks[id]; !ok {
		return track.ErrNotFound
	}
	delete(m.tasks, id)
	return nil
}

func (m *memTasks) List(_ context.Context) ([]*track.Task, error) {
	var res []*track.Task
	for _, t := range m.tasks {
		cp := *t
		res = append(res, &cp)
	}
	return res, nil
}

func (m *memTasks) ListByMember(_ context.Context, userID string) ([]*track.Task, error) {
	var res []*track.Task
	for _, t := range m.tasks {
		if slices.Contains(m.projects.members[t.ProjectID], userID) {
			cp := *t
			res = append(res, &cp)
		}
	}
	return res, nil
}

type memRecords struct {
	records map[string]*track.Record
	tasks   *memTasks
}

func (m *memRecords) Create(_ context.Context, r *track.Record) error {
	cp := *r
	m.records[r.ID] = &cp
	return nil
}

func (m *memRecords) Find(_ context.Context, id string) (*track.Record, error) {
	r, ok := m.records[id]
	if !ok {
		return nil, track.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memRecords) Update(_ context.Context, r *track.Record) error {
	if _, ok := m.records[r.ID]; !ok {
		return track.ErrNotFound
	}
	cp := *r
	m.records[r.ID] = &cp
	return nil
}

func (m *memRecords) Delete(_ context.Context, id string) error {
	if _, ok := m.records[id]; !ok {
		return track.ErrNotFound
	}
	delete(m.records, id)
	return nil
}

func (m *memRecords) List(_ context.Context) ([]*track.Record, error) {
	var res []*track.Record
	for _, r := range m.records {
		cp := *r
		res = append(res, &cp)
	}
	return res, nil
}

func (m *memRecords) ListByMember(_ context.Context, userID string) ([]*track.Record, error) {
	var res []*track.Record
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

// memResolver answers the guard's chain queries from the fixture stores.
type memResolver struct {
	projects *memProjects
	tasks    *memTasks
	records  *memRecords
}

func (m *memResolver) ProjectMemberIDs(ctx context.Context, projectID string) ([]string, error) {
	return m.projects.MemberIDs(ctx, projectID)
}

func (m *memResolver) ProjectIDForTask(ctx context.Context, taskID string) (string, error) {
	t, err := m.tasks.Find(ctx, taskID)
	if err != nil {
		return "", err
	}
	return t.ProjectID, nil
}

func (m *memResolver) ProjectIDForRecord(ctx context.Context, recordID string) (string, error) {
	r, err := m.records.Find(ctx, recordID)
	if err != nil {
		return "", err
	}
	return m.ProjectIDForTask(ctx, r.TaskID)
}

type fixture struct {
	users    *memUsers
	creds    *memCreds
	projects *memProjects
	tasks    *memTasks
	records  *memRecords
}

type apiClient struct {
	baseURL string
	client  *http.Client
	t       *testing.T
}

func newTestAPI(t *testing.T) (*apiClient, *fixture) {
	t.Helper()

	users := &memUsers{users: map[string]*auth.User{}}
	creds := &memCreds{byToken: map[string]*auth.Credential{}}
	projects := &memProjects{projects: map[string]*track.Project{}, members: map[string][]string{}}
	tasks := &memTasks{tasks: map[string]*track.Task{}, projects: projects}
	records := &memRecords{records: map[string]*track.Record{}, tasks: tasks}
	fx := &fixture{users: users, creds: creds, projects: projects, tasks: tasks, records: records}

	codec, err := auth.NewCodec([]byte("test-secret"), nil)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	authSvc, err := auth.NewService(users, creds, codec)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	guard, err := authz.NewGuard(users, &memResolver{projects: projects, tasks: tasks, records: records})
	if err != nil {
		t.Fatalf("NewGuard: %v", err)
	}
	userSvc, err := track.NewUserService(users)
	if err != nil {
		t.Fatalf("NewUserService: %v", err)
	}
	projectSvc, err := track.NewProjectService(projects, users)
	if err != nil {
		t.Fatalf("NewProjectService: %v", err)
	}
	taskSvc, err := track.NewTaskService(tasks, projects)
	if err != nil {
		t.Fatalf("NewTaskService: %v", err)
	}
	recordSvc, err := track.NewRecordService(records, tasks, users)
	if err != nil {
		t.Fatalf("NewRecordService: %v", err)
	}

	api := New(authSvc, guard, userSvc, projectSvc, taskSvc, recordSvc, ReadyProbe{}, "test", Options{
		RateLimitRPS:   1000,
		RateLimitBurst: 1000,
	})

	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)

	return &apiClient{baseURL: srv.URL, client: srv.Client(), t: t}, fx
}

func (c *apiClient) do(method, path string, body any, token string) *http.Response {
	c.t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			c.t.Fatalf("marshal body: %v", err)
		}
	}
	req, err := http.NewRequest(method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func (c *apiClient) get(path, token string) *http.Response {
	return c.do(http.MethodGet, path, nil, token)
}

func (c *apiClient) post(path string, body any, token string) *http.Response {
	return c.do(http.MethodPost, path, body, token)
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}

// seedAdmin registers an administrator directly in the store and returns a
// usable access token for it.
func seedAdmin(t *testing.T, c *apiClient, fx *fixture) string {
	t.Helper()
	hash, err := auth.HashPassword("root-password")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if err := fx.users.Create(context.Background(), &auth.User{
		ID:           "u-root",
		Username:     "root",
		Email:        "root@example.com",
		PasswordHash: hash,
		Role:         auth.RoleAdmin,
	}); err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	resp := c.post("/api/v1/auth/authenticate", map[string]string{
		"email":    "root@example.com",
		"password": "root-password",
	}, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin login failed: %d", resp.StatusCode)
	}
	pair := decodeBody[auth.TokenPair](t, resp)
	return pair.AccessToken
}

// registerUser registers a regular user through the API and returns its
// access token and id.
func registerUser(t *testing.T, c *apiClient, fx *fixture, email string) (string, string) {
	t.Helper()
	resp := c.post("/api/v1/auth/register", map[string]string{
		"username": "user",
		"email":    email,
		"password": "hunter2!",
	}, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("register %s failed: %d", email, resp.StatusCode)
	}
	pair := decodeBody[auth.TokenPair](t, resp)

	u, err := fx.users.FindByEmail(context.Background(), email)
	if err != nil {
		t.Fatalf("registered user missing: %v", err)
	}
	return pair.AccessToken, u.ID
}

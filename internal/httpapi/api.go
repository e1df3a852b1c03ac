// Package httpapi is the HTTP boundary of the service. It wires the
// authentication interceptor and the relation guard onto the routes at
// registration time, so a reader can tell from this package alone which
// checks protect which operation.
package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"timetrack.org/internal/auth"
	"timetrack.org/internal/authz"
	"timetrack.org/internal/obs"
	"timetrack.org/internal/track"
)

// ReadyProbe reports readiness, pinging the database when one is wired.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// Options carries the boundary tunables.
type Options struct {
	RateLimitRPS   float64
	RateLimitBurst int
	MaxBodyBytes   int64
}

func (o *Options) fillDefaults() {
	if o.RateLimitRPS <= 0 {
		o.RateLimitRPS = 50
	}
	if o.RateLimitBurst <= 0 {
		o.RateLimitBurst = 100
	}
	if o.MaxBodyBytes <= 0 {
		o.MaxBodyBytes = 1 << 20
	}
}

// API is the HTTP layer.
type API struct {
	mux        *http.ServeMux
	auth       *auth.Service
	guard      *authz.Guard
	users      *track.UserService
	projects   *track.ProjectService
	tasks      *track.TaskService
	records    *track.RecordService
	readyProbe ReadyProbe
	version    string
	opts       Options
}

// New builds the boundary and registers every route with its guard chain.
func New(
	authSvc *auth.Service,
	guard *authz.Guard,
	users *track.UserService,
	projects *track.ProjectService,
	tasks *track.TaskService,
	records *track.RecordService,
	rp ReadyProbe,
	version string,
	opts Options,
) *API {
	opts.fillDefaults()
	a := &API{
		mux:        http.NewServeMux(),
		auth:       authSvc,
		guard:      guard,
		users:      users,
		projects:   projects,
		tasks:      tasks,
		records:    records,
		readyProbe: rp,
		version:    version,
		opts:       opts,
	}

	// health/ready/metrics
	a.mux.HandleFunc("GET /healthz", a.Healthz)
	a.mux.HandleFunc("GET /readyz", a.Ready)
	a.mux.Handle("GET /metrics", obs.Handler())

	// credential lifecycle, open to anonymous callers
	a.mux.HandleFunc("POST /api/v1/auth/register", a.handleRegister)
	a.mux.HandleFunc("POST /api/v1/auth/authenticate", a.handleAuthenticate)
	a.mux.HandleFunc("POST /api/v1/auth/refresh-token", a.handleRefresh)
	a.mux.HandleFunc("POST /api/v1/auth/logout", a.handleLogout)

	// users: listing is admin-only, single-user operations are self-or-admin
	a.mux.Handle("GET /api/v1/users", a.requireAdmin(a.handleListUsers))
	a.mux.Handle("GET /api/v1/users/{id}", a.guardSelfOrAdmin("id", a.handleGetUser))
	a.mux.Handle("PUT /api/v1/users/{id}", a.guardSelfOrAdmin("id", a.handleUpdateUser))
	a.mux.Handle("DELETE /api/v1/users/{id}", a.guardSelfOrAdmin("id", a.handleDeleteUser))

	// projects: reads need membership, mutations are admin-only
	a.mux.Handle("GET /api/v1/projects", a.requireAuth(a.handleListProjects))
	a.mux.Handle("POST /api/v1/projects", a.requireAdmin(a.handleCreateProject))
	a.mux.Handle("GET /api/v1/projects/{id}", a.guardProject("id", a.handleGetProject))
	a.mux.Handle("PUT /api/v1/projects/{id}", a.requireAdmin(a.handleUpdateProject))
	a.mux.Handle("DELETE /api/v1/projects/{id}", a.requireAdmin(a.handleDeleteProject))
	a.mux.Handle("POST /api/v1/projects/{id}/users/{userID}", a.requireAdmin(a.handleAddProjectMember))

	// tasks: creation checks the target project in the handler body
	a.mux.Handle("GET /api/v1/tasks", a.requireAuth(a.handleListTasks))
	a.mux.Handle("POST /api/v1/tasks", a.requireAuth(a.handleCreateTask))
	a.mux.Handle("GET /api/v1/tasks/{id}", a.guardTask("id", a.handleGetTask))
	a.mux.Handle("PUT /api/v1/tasks/{id}", a.guardTask("id", a.handleUpdateTask))
	a.mux.Handle("DELETE /api/v1/tasks/{id}", a.guardTask("id", a.handleDeleteTask))

	// records: creation checks the target task's project in the handler body
	a.mux.Handle("GET /api/v1/records", a.requireAuth(a.handleListRecords))
	a.mux.Handle("POST /api/v1/records", a.requireAuth(a.handleCreateRecord))
	a.mux.Handle("GET /api/v1/records/{id}", a.guardRecord("id", a.handleGetRecord))
	a.mux.Handle("PUT /api/v1/records/{id}", a.guardRecord("id", a.handleUpdateRecord))
	a.mux.Handle("DELETE /api/v1/records/{id}", a.guardRecord("id", a.handleDeleteRecord))

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "resource not found")
	})

	return a
}

// Handler assembles the middleware chain around the routed mux. Token
// authentication runs innermost so every other layer sees the raw request.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.mux
	h = a.withAuth(h)
	h = obs.Instrument(h)
	h = Logging(h)
	h = MaxBodyBytes(h, a.opts.MaxBodyBytes)
	h = RateLimit(h, a.opts.RateLimitBurst, a.opts.RateLimitRPS)
	h = CORS(h)
	h = SecurityHeaders(h)
	h = RequestID(h)
	return h
}

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "timetrack-api",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// errorBody is the uniform error envelope of the API. Errors carries
// per-field messages on validation failures.
type errorBody struct {
	Status    int               `json:"status"`
	Message   string            `json:"message"`
	Timestamp time.Time         `json:"timestamp"`
	RequestID string            `json:"request_id,omitempty"`
	Errors    map[string]string `json:"errors,omitempty"`
}

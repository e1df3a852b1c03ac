package httpapi

import (
	"net/http"
	"strings"
	"time"

	"timetrack.org/internal/audit"
	"timetrack.org/internal/auth"
)

type registerRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	BirthDate string `json:"birth_date"`
}

type authenticateRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var birthDate time.Time
	if s := strings.TrimSpace(req.BirthDate); s != "" {
		parsed, err := time.Parse("2006-01-02", s)
		if err != nil {
			handleError(w, r, &auth.FieldError{Field: "birth_date", Msg: "must be formatted YYYY-MM-DD"})
			return
		}
		birthDate = parsed
	}

	pair, err := a.auth.Register(r.Context(), auth.RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		BirthDate: birthDate,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "auth.register", map[string]any{
		"email": strings.TrimSpace(strings.ToLower(req.Email)),
	})
	writeJSON(w, http.StatusOK, pair)
}

func (a *API) handleAuthenticate(w http.ResponseWriter, r *http.Request) {
	var req authenticateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	pair, err := a.auth.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		handleError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "auth.login", map[string]any{
		"email": strings.TrimSpace(strings.ToLower(req.Email)),
	})
	writeJSON(w, http.StatusOK, pair)
}

// handleRefresh exchanges the bearer refresh token for a new pair. A missing
// or invalid token yields an empty 200 rather than an error, so callers
// cannot probe which refresh tokens exist.
func (a *API) handleRefresh(w http.ResponseWriter, r *http.Request) {
	token, _ := bearerToken(r.Header.Get(authHeader))

	pair, err := a.auth.Refresh(r.Context(), token)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if pair == nil {
		w.WriteHeader(http.StatusOK)
		return
	}

	_ = audit.LogEvent(r.Context(), "auth.refresh", nil)
	writeJSON(w, http.StatusOK, pair)
}

// handleLogout revokes the presented access token. The operation is
// idempotent: repeating it, or presenting an unknown token, still yields 204.
func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r.Header.Get(authHeader))
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if err := a.auth.Logout(r.Context(), token); err != nil {
		handleError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "auth.logout", nil)
	w.WriteHeader(http.StatusNoContent)
}

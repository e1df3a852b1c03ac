package httpapi

import (
	"net/http"
	"strings"
	"time"

	"timetrack.org/internal/audit"
	"timetrack.org/internal/auth"
	"timetrack.org/internal/track"
)

// userResponse is the outward shape of an identity. The password hash never
// leaves the service.
type userResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	BirthDate string    `json:"birth_date,omitempty"`
	Role      auth.Role `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type userRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	BirthDate string `json:"birth_date"`
}

func toUserResponse(u *auth.User) userResponse {
	resp := userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	if !u.BirthDate.IsZero() {
		resp.BirthDate = u.BirthDate.Format("2006-01-02")
	}
	return resp
}

func (a *API) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := a.users.ListUsers(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	items := make([]userResponse, 0, len(users))
	for _, u := range users {
		items = append(items, toUserResponse(u))
	}
	writeJSON(w, http.StatusOK, items)
}

func (a *API) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := a.users.GetUser(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (a *API) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req userRequest
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

	user, err := a.users.UpdateUser(r.Context(), r.PathValue("id"), trackUserInput(req, birthDate))
	if err != nil {
		handleError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "user.update", map[string]any{
		"target": user.ID,
	})
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func trackUserInput(req userRequest, birthDate time.Time) track.UserInput {
	return track.UserInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		BirthDate: birthDate,
	}
}

func (a *API) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := a.users.DeleteUser(r.Context(), id); err != nil {
		handleError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "user.delete", map[string]any{
		"target": id,
	})
	w.WriteHeader(http.StatusNoContent)
}

package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"timetrack.org/internal/auth"
	"timetrack.org/internal/authz"
	"timetrack.org/internal/obs"
)

const (
	authHeader = "Authorization"
	bearer     = "Bearer "
)

// withAuth is the token authentication interceptor. It never rejects a
// request on its own: a missing, malformed or revoked token simply leaves
// the request anonymous, and the per-route checks decide what anonymous
// callers may do. Store and infrastructure failures do abort the request.
func (a *API) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		token, ok := bearerToken(r.Header.Get(authHeader))
		if !ok {
			obs.ObserveAuthn("anonymous")
			next.ServeHTTP(w, r)
			return
		}

		user, err := a.auth.CheckToken(r.Context(), token)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidToken) {
				obs.ObserveAuthn("rejected")
				next.ServeHTTP(w, r)
				return
			}
			writeError(w, r, http.StatusInternalServerError, "authentication error")
			return
		}

		obs.ObserveAuthn("authenticated")
		ctx := auth.ContextWithPrincipal(r.Context(), auth.Principal{
			UserID: user.ID,
			Email:  user.Email,
			Role:   user.Role,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAuth rejects anonymous callers with 401.
func (a *API) requireAuth(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.PrincipalFromContext(r.Context()); !ok {
			handleError(w, r, auth.ErrUnauthorized)
			return
		}
		next(w, r)
	})
}

// requireAdmin rejects anonymous callers with 401 and non-administrators
// with 403.
func (a *API) requireAdmin(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := auth.PrincipalFromContext(r.Context())
		if !ok {
			handleError(w, r, auth.ErrUnauthorized)
			return
		}
		if !principal.IsAdmin() {
			handleError(w, r, authz.ErrForbidden)
			return
		}
		next(w, r)
	})
}

// guardSelfOrAdmin applies the self-or-admin rule to the user id named by
// the path parameter.
func (a *API) guardSelfOrAdmin(param string, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := a.guard.SelfOrAdmin(r.Context(), r.PathValue(param)); err != nil {
			handleError(w, r, err)
			return
		}
		next(w, r)
	})
}

// guardProject applies the membership rule to the project named by the path
// parameter.
func (a *API) guardProject(param string, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := a.guard.MemberOfProject(r.Context(), r.PathValue(param)); err != nil {
			handleError(w, r, err)
			return
		}
		next(w, r)
	})
}

// guardTask resolves the task's owning project and applies the membership
// rule there.
func (a *API) guardTask(param string, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := a.guard.MemberOfTaskProject(r.Context(), r.PathValue(param)); err != nil {
			handleError(w, r, err)
			return
		}
		next(w, r)
	})
}

// guardRecord resolves the record's owning project through its task and
// applies the membership rule there.
func (a *API) guardRecord(param string, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := a.guard.MemberOfRecordProject(r.Context(), r.PathValue(param)); err != nil {
			handleError(w, r, err)
			return
		}
		next(w, r)
	})
}

func bearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", false
	}
	if !strings.HasPrefix(strings.ToLower(header), strings.ToLower(bearer)) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearer):])
	if token == "" {
		return "", false
	}
	return token, true
}

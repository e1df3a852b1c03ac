package auth

import "context"

// Principal is the identity established for one request by the
// authentication interceptor.
type Principal struct {
	UserID string
	Email  string
	Role   Role
}

// IsAdmin reports whether the principal holds the administrator role.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

type principalContextKey struct{}

// ContextWithPrincipal attaches the authenticated principal to the context.
// Establishment is idempotent: an already-established principal is kept and
// the new one is ignored.
func ContextWithPrincipal(ctx context.Context, principal Principal) context.Context {
	if _, ok := PrincipalFromContext(ctx); ok {
		return ctx
	}
	return context.WithValue(ctx, principalContextKey{}, &principal)
}

// PrincipalFromContext extracts the authenticated principal, if one was
// established for this request.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	if ctx == nil {
		return Principal{}, false
	}
	v, ok := ctx.Value(principalContextKey{}).(*Principal)
	if !ok || v == nil {
		return Principal{}, false
	}
	return *v, true
}

// ClearPrincipal removes any established principal, so work composed after a
// logout sees the caller as unauthenticated.
func ClearPrincipal(ctx context.Context) context.Context {
	return context.WithValue(ctx, principalContextKey{}, (*Principal)(nil))
}

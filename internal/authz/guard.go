// Package authz enforces relationship-based access control ahead of the
// business operations it guards. Two rules exist: self-or-admin for user
// resources, and project-membership-or-admin for project, task and record
// resources, the latter resolved by walking the ownership chain
// record -> task -> project.
package authz

import (
	"context"
	"errors"
	"slices"

	"timetrack.org/internal/auth"
)

// ErrForbidden means the caller is authenticated but the relational check
// failed.
var ErrForbidden = errors.New("authz: you do not have permission to perform this operation")

// Resolver answers the ownership-chain questions the guard asks of the
// relational store. Every method reports the store's not-found error when
// the resource it starts from does not exist; the guard propagates it
// untouched so existence failures surface before authorization ones.
type Resolver interface {
	ProjectMemberIDs(ctx context.Context, projectID string) ([]string, error)
	ProjectIDForTask(ctx context.Context, taskID string) (string, error)
	ProjectIDForRecord(ctx context.Context, recordID string) (string, error)
}

// Guard performs the authorization checks. It runs strictly after the
// authentication interceptor; a request with no established principal is
// rejected as unauthorized, never forbidden.
type Guard struct {
	users    auth.UserStore
	resolver Resolver
}

// NewGuard constructs a Guard over the identity store and chain resolver.
func NewGuard(users auth.UserStore, resolver Resolver) (*Guard, error) {
	if users == nil || resolver == nil {
		return nil, errors.New("authz: users store and resolver are required")
	}
	return &Guard{users: users, resolver: resolver}, nil
}

// SelfOrAdmin allows the operation when the caller is the target user or an
// administrator. The target is looked up first: a missing user surfaces as
// not-found before any authorization decision.
func (g *Guard) SelfOrAdmin(ctx context.Context, targetUserID string) error {
	principal, ok := auth.PrincipalFromContext(ctx)
	if !ok {
		return auth.ErrUnauthorized
	}
	target, err := g.users.Find(ctx, targetUserID)
	if err != nil {
		return err
	}
	if principal.IsAdmin() || principal.Email == target.Email {
		return nil
	}
	return ErrForbidden
}

// MemberOfProject allows the operation when the caller belongs to the
// project's membership set or is an administrator. Existence is checked
// before authorization: a missing project yields not-found.
func (g *Guard) MemberOfProject(ctx context.Context, projectID string) error {
	principal, ok := auth.PrincipalFromContext(ctx)
	if !ok {
		return auth.ErrUnauthorized
	}
	members, err := g.resolver.ProjectMemberIDs(ctx, projectID)
	if err != nil {
		return err
	}
	if principal.IsAdmin() || slices.Contains(members, principal.UserID) {
		return nil
	}
	return ErrForbidden
}

// MemberOfTaskProject resolves the task's owning project and applies the
// membership check there.
func (g *Guard) MemberOfTaskProject(ctx context.Context, taskID string) error {
	if _, ok := auth.PrincipalFromContext(ctx); !ok {
		return auth.ErrUnauthorized
	}
	projectID, err := g.resolver.ProjectIDForTask(ctx, taskID)
	if err != nil {
		return err
	}
	return g.MemberOfProject(ctx, projectID)
}

// MemberOfRecordProject resolves the record's task's owning project and
// applies the membership check there.
func (g *Guard) MemberOfRecordProject(ctx context.Context, recordID string) error {
	if _, ok := auth.PrincipalFromContext(ctx); !ok {
		return auth.ErrUnauthorized
	}
	projectID, err := g.resolver.ProjectIDForRecord(ctx, recordID)
	if err != nil {
		return err
	}
	return g.MemberOfProject(ctx, projectID)
}

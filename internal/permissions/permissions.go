// Package permissions holds the role and ownership based access rules as a
// pure function, decoupled from any request context.
package permissions

import (
	"errors"
	"net/http"

	"artdb/proj/internal/domain/models"
)

var (
	ErrNotAuthenticated = errors.New("authentication required")
	ErrForbidden        = errors.New("insufficient permissions")
)

// Resource classifies what the request targets. The rules differ only by
// these classes, not by the concrete entity.
type Resource int

const (
	// ResourceCatalog covers categories, genres and titles.
	ResourceCatalog Resource = iota
	// ResourceUserContent covers reviews and comments.
	ResourceUserContent
	// ResourceAccounts covers admin management of arbitrary accounts.
	ResourceAccounts
	// ResourceOwnProfile covers the caller's own /users/me profile.
	ResourceOwnProfile
)

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// Decide evaluates whether actor may perform method on a resource.
// isOwner only matters for ResourceUserContent and reports whether the
// actor authored the targeted review/comment.
//
// Returns nil to allow, ErrNotAuthenticated for anonymous callers on
// protected operations and ErrForbidden for authenticated callers short
// on role or ownership.
func Decide(actor *models.User, method string, resource Resource, isOwner bool) error {
	switch resource {
	case ResourceCatalog:
		if isSafeMethod(method) {
			return nil
		}
		if actor.IsAnonymous() {
			return ErrNotAuthenticated
		}
		if !actor.IsAdmin() {
			return ErrForbidden
		}
		return nil
	case ResourceUserContent:
		if isSafeMethod(method) {
			return nil
		}
		if actor.IsAnonymous() {
			return ErrNotAuthenticated
		}
		// POST creates content owned by the actor itself.
		if method == http.MethodPost || isOwner || actor.IsModerator() || actor.IsAdmin() {
			return nil
		}
		return ErrForbidden
	case ResourceAccounts:
		if actor.IsAnonymous() {
			return ErrNotAuthenticated
		}
		if !actor.IsAdmin() {
			return ErrForbidden
		}
		return nil
	case ResourceOwnProfile:
		if actor.IsAnonymous() {
			return ErrNotAuthenticated
		}
		return nil
	}
	return ErrForbidden
}

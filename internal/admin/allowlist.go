// Package admin decides which identities may run administrative operations.
package admin

import (
	"github.com/osse101/pointshop/internal/domain"
)

// Allowlist is a fixed set of administrator identities
type Allowlist struct {
	ids map[domain.Identity]struct{}
}

// NewAllowlist builds an Allowlist from configured identities
func NewAllowlist(ids []domain.Identity) *Allowlist {
	a := &Allowlist{ids: make(map[domain.Identity]struct{}, len(ids))}
	for _, id := range ids {
		if id.IsZero() {
			continue
		}
		a.ids[domain.NewIdentity(id.Platform, id.UserID)] = struct{}{}
	}
	return a
}

// IsAdmin reports whether id is an administrator. A nil Allowlist has no admins.
func (a *Allowlist) IsAdmin(id domain.Identity) bool {
	if a == nil {
		return false
	}
	_, ok := a.ids[domain.NewIdentity(id.Platform, id.UserID)]
	return ok
}

// Require returns domain.ErrPermissionDenied unless id is an administrator
func (a *Allowlist) Require(id domain.Identity) error {
	if !a.IsAdmin(id) {
		return domain.ErrPermissionDenied
	}
	return nil
}

// Len returns the number of administrators
func (a *Allowlist) Len() int {
	if a == nil {
		return 0
	}
	return len(a.ids)
}

package domain

import (
	"fmt"
	"strings"
)

// Identity is the single user identity model used by the ledger, the authority
// store, purchases, usage grants and the admin allowlist.
type Identity struct {
	Platform string `json:"platform" validate:"required,max=32"`
	UserID   string `json:"user_id" validate:"required,max=128"`
}

// NewIdentity builds an identity with a normalized platform name.
func NewIdentity(platform, userID string) Identity {
	return Identity{
		Platform: strings.ToLower(strings.TrimSpace(platform)),
		UserID:   strings.TrimSpace(userID),
	}
}

// ParseIdentity parses the "platform:userId" text form used at the edges
// (configuration, request headers). Only the first separator splits, so user
// IDs may themselves contain colons.
func ParseIdentity(s string) (Identity, error) {
	platform, userID, ok := strings.Cut(strings.TrimSpace(s), IdentitySeparator)
	if !ok {
		return Identity{}, fmt.Errorf("%w: identity %q must be platform%suser", ErrInvalidInput, s, IdentitySeparator)
	}
	id := NewIdentity(platform, userID)
	if id.Platform == "" || id.UserID == "" {
		return Identity{}, fmt.Errorf("%w: identity %q has an empty part", ErrInvalidInput, s)
	}
	return id, nil
}

// IsZero reports whether the identity is unset.
func (i Identity) IsZero() bool {
	return i.Platform == "" && i.UserID == ""
}

// String renders the identity for logs and lock keys.
func (i Identity) String() string {
	return i.Platform + IdentitySeparator + i.UserID
}

// Validate rejects an identity with an empty part.
func (i Identity) Validate() error {
	if strings.TrimSpace(i.Platform) == "" || strings.TrimSpace(i.UserID) == "" {
		return &ValidationError{Field: "user", Message: "platform and user id are required", Kind: ErrInvalidInput}
	}
	return nil
}

package admin

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/osse101/pointshop/internal/domain"
)

func TestAllowlist(t *testing.T) {
	a := NewAllowlist([]domain.Identity{
		domain.NewIdentity("twitch", "123"),
		{Platform: "Discord", UserID: "456"},
		{},
	})

	tests := []struct {
		name string
		id   domain.Identity
		want bool
	}{
		{"configured admin", domain.NewIdentity("twitch", "123"), true},
		{"platform case ignored", domain.Identity{Platform: "TWITCH", UserID: "123"}, true},
		{"normalized at construction", domain.NewIdentity("discord", "456"), true},
		{"same user id on another platform", domain.NewIdentity("discord", "123"), false},
		{"unknown", domain.NewIdentity("twitch", "999"), false},
		{"zero identity", domain.Identity{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, a.IsAdmin(tt.id))
		})
	}
	assert.Equal(t, 2, a.Len())
}

func TestAllowlist_Require(t *testing.T) {
	a := NewAllowlist([]domain.Identity{domain.NewIdentity("twitch", "123")})

	assert.NoError(t, a.Require(domain.NewIdentity("twitch", "123")))
	assert.ErrorIs(t, a.Require(domain.NewIdentity("twitch", "1")), domain.ErrPermissionDenied)

	var none *Allowlist
	assert.ErrorIs(t, none.Require(domain.NewIdentity("twitch", "123")), domain.ErrPermissionDenied)
	assert.Equal(t, 0, none.Len())
}

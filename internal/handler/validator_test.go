package handler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_PlatformValidation(t *testing.T) {
	v := GetValidator()

	tests := []struct {
		name     string
		platform string
		wantErr  bool
	}{
		{"twitch", "twitch", false},
		{"discord", "discord", false},
		{"uppercase accepted", "TWITCH", false},
		{"with dash", "kick-tv", false},
		{"empty is required", "", true},
		{"spaces", "twi tch", true},
		{"separator", "twitch:1", true},
		{"too long", strings.Repeat("a", 33), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateStruct(PurchaseRequest{Platform: tt.platform, UserID: "1", Item: "boost"})
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidator_UserIDValidation(t *testing.T) {
	v := GetValidator()

	tests := []struct {
		name    string
		userID  string
		wantErr bool
	}{
		{"numeric", "123456", false},
		{"exactly max length", strings.Repeat("a", 128), false},
		{"over max length", strings.Repeat("a", 129), true},
		{"empty", "", true},
		{"with newline", "user\nname", true},
		{"with null byte", "user\x00name", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateStruct(GateRequest{Platform: "twitch", UserID: tt.userID, Command: "boost"})
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestFormatValidationError(t *testing.T) {
	err := GetValidator().ValidateStruct(GrantUsesRequest{Platform: "twitch", Amount: 0})
	require.Error(t, err)

	fields := FormatValidationError(err)
	assert.Equal(t, "This field is required", fields["user_id"])
	assert.Equal(t, "This field is required", fields["command"])
	assert.Equal(t, "Must be at least 1", fields["amount"])
	assert.NotContains(t, fields, "platform")

	assert.Equal(t, map[string]string{"error": "Invalid request format"}, FormatValidationError(assert.AnError))
	assert.Nil(t, FormatValidationError(nil))
}

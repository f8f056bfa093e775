package authsync_test

import (
	"testing"

	"github.com/goliatone/go-authsync"
	"github.com/stretchr/testify/assert"
)

func TestIsVerified(t *testing.T) {
	tests := []struct {
		name     string
		identity *authsync.Identity
		expected bool
	}{
		{
			name:     "password without verified email",
			identity: &authsync.Identity{SignInProvider: authsync.ProviderPassword, EmailVerified: false},
			expected: false,
		},
		{
			name:     "password with verified email",
			identity: &authsync.Identity{SignInProvider: authsync.ProviderPassword, EmailVerified: true},
			expected: true,
		},
		{
			name:     "federated provider without verified email",
			identity: &authsync.Identity{SignInProvider: "google.com", EmailVerified: false},
			expected: true,
		},
		{
			name:     "custom token without verified email",
			identity: &authsync.Identity{SignInProvider: authsync.ProviderCustom, EmailVerified: false},
			expected: false,
		},
		{
			name:     "custom token with verified email",
			identity: &authsync.Identity{SignInProvider: authsync.ProviderCustom, EmailVerified: true},
			expected: true,
		},
		{
			name:     "missing provider",
			identity: &authsync.Identity{EmailVerified: true},
			expected: false,
		},
		{
			name:     "nil identity",
			identity: nil,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, authsync.IsVerified(tt.identity))
		})
	}
}

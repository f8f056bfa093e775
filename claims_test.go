package authsync_test

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-authsync"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestDecodeTokenClaims(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{
		"sub":  "u1",
		"role": "member",
		"firebase": map[string]any{
			"sign_in_provider": "google.com",
		},
	})

	claims, err := authsync.DecodeTokenClaims(token)
	require.NoError(t, err)

	assert.Equal(t, "u1", claims["sub"])
	assert.Equal(t, "member", claims["role"])
}

func TestDecodeTokenClaimsRejectsGarbage(t *testing.T) {
	_, err := authsync.DecodeTokenClaims("not-a-jwt")
	require.Error(t, err)
}

func TestSignInProviderFromClaims(t *testing.T) {
	tests := []struct {
		name     string
		claims   map[string]any
		expected string
	}{
		{
			name:     "flat claim",
			claims:   map[string]any{"sign_in_provider": "password"},
			expected: "password",
		},
		{
			name: "nested identity block",
			claims: map[string]any{
				"firebase": map[string]any{"sign_in_provider": "google.com"},
			},
			expected: "google.com",
		},
		{
			name:     "absent",
			claims:   map[string]any{"sub": "u1"},
			expected: "",
		},
		{
			name:     "nil claims",
			claims:   nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, authsync.SignInProviderFromClaims(tt.claims))
		})
	}
}

func TestStaticTokenResolver(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{
		"sub":              "u1",
		"sign_in_provider": "password",
	})

	resolver := &authsync.StaticTokenResolver{Token: token}
	result, err := resolver.TokenResult(context.Background())
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, token, result.Token)
	assert.Equal(t, "password", authsync.SignInProviderFromClaims(result.Claims))
}

func TestStaticTokenResolverHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resolver := &authsync.StaticTokenResolver{Token: "ignored"}
	_, err := resolver.TokenResult(ctx)
	require.Error(t, err)
}

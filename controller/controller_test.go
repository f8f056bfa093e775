package controller_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-authsync/controller"
)

var (
	identityKey = []byte("identity-signing-key")
	sessionKey  = []byte("session-signing-key")
)

func identityToken(t *testing.T, subject string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": subject,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString(identityKey)
	require.NoError(t, err)
	return signed
}

func newController(opts ...controller.SessionControllerOption) *controller.SessionController {
	base := []controller.SessionControllerOption{
		controller.WithVerifier(&controller.StaticKeyVerifier{Key: identityKey}),
		controller.WithSigningKey(sessionKey),
		controller.WithIssuer("authsync-test"),
	}
	return controller.NewSessionController(append(base, opts...)...)
}

func TestEstablishSessionSetsCookie(t *testing.T) {
	c := newController()
	token := identityToken(t, "u1")

	var payload map[string]any
	var cookie *router.Cookie

	ctx := router.NewMockContext()
	ctx.On("GetString", router.HeaderAuthorization, "").Return("Bearer " + token)
	ctx.On("Context").Return(context.Background())
	ctx.On("Cookie", mock.MatchedBy(func(c *router.Cookie) bool {
		cookie = c
		return c.Name == "session"
	})).Return()
	ctx.On("JSON", http.StatusOK, mock.Anything).Run(func(args mock.Arguments) {
		payload, _ = args.Get(1).(map[string]any)
	}).Return(nil)

	err := c.EstablishSession(ctx)
	require.NoError(t, err)

	require.NotNil(t, payload)
	assert.Equal(t, "ok", payload["status"])
	assert.Equal(t, "u1", payload["user_id"])

	require.NotNil(t, cookie)
	assert.True(t, cookie.HTTPOnly)
	assert.True(t, cookie.Secure)
	assert.True(t, cookie.Expires.After(time.Now()))

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(cookie.Value, claims, func(*jwt.Token) (any, error) {
		return sessionKey, nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	subject, err := claims.GetSubject()
	require.NoError(t, err)
	assert.Equal(t, "u1", subject)

	issuer, err := claims.GetIssuer()
	require.NoError(t, err)
	assert.Equal(t, "authsync-test", issuer)

	ctx.AssertExpectations(t)
}

func TestEstablishSessionMissingHeader(t *testing.T) {
	c := newController()

	var status int
	ctx := router.NewMockContext()
	ctx.On("GetString", router.HeaderAuthorization, "").Return("")
	ctx.On("JSON", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		status, _ = args.Get(0).(int)
	}).Return(nil)

	err := c.EstablishSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, status)

	ctx.AssertNotCalled(t, "Cookie", mock.Anything)
}

func TestEstablishSessionMalformedScheme(t *testing.T) {
	c := newController()

	var status int
	ctx := router.NewMockContext()
	ctx.On("GetString", router.HeaderAuthorization, "").Return("Basic dXNlcjpwYXNz")
	ctx.On("JSON", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		status, _ = args.Get(0).(int)
	}).Return(nil)

	err := c.EstablishSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestEstablishSessionInvalidToken(t *testing.T) {
	c := newController()

	var status int
	var payload map[string]any

	ctx := router.NewMockContext()
	ctx.On("GetString", router.HeaderAuthorization, "").Return("Bearer not-a-real-token")
	ctx.On("Context").Return(context.Background())
	ctx.On("JSON", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		status, _ = args.Get(0).(int)
		payload, _ = args.Get(1).(map[string]any)
	}).Return(nil)

	err := c.EstablishSession(ctx)
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, status)
	require.NotNil(t, payload)
	assert.Equal(t, "INVALID_IDENTITY_TOKEN", payload["text_code"])

	ctx.AssertNotCalled(t, "Cookie", mock.Anything)
}

func TestClearSessionDeletesCookie(t *testing.T) {
	c := newController()

	var cookie *router.Cookie
	ctx := router.NewMockContext()
	ctx.On("Cookie", mock.MatchedBy(func(c *router.Cookie) bool {
		cookie = c
		return c.Name == "session"
	})).Return()
	ctx.On("JSON", http.StatusOK, mock.Anything).Return(nil)

	err := c.ClearSession(ctx)
	require.NoError(t, err)

	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.True(t, cookie.Expires.Before(time.Now()))

	ctx.AssertExpectations(t)
}

func TestNewSessionControllerRequiresVerifier(t *testing.T) {
	assert.Panics(t, func() {
		controller.NewSessionController(
			controller.WithSigningKey(sessionKey),
		)
	})
}

func TestNewSessionControllerRequiresSigningKey(t *testing.T) {
	assert.Panics(t, func() {
		controller.NewSessionController(
			controller.WithVerifier(&controller.StaticKeyVerifier{Key: identityKey}),
		)
	})
}

func TestSessionControllerRouteOverrides(t *testing.T) {
	c := newController(controller.WithRoutes(controller.SessionRoutes{
		Establish: "/auth/session",
		Clear:     "/auth/session/clear",
	}))

	assert.Equal(t, "/auth/session", c.Routes.Establish)
	assert.Equal(t, "/auth/session/clear", c.Routes.Clear)
}

func TestSessionControllerCookieOverrides(t *testing.T) {
	c := newController(controller.WithSessionCookie("sid", time.Hour))

	assert.Equal(t, "sid", c.CookieName)
	assert.Equal(t, time.Hour, c.CookieDuration)
}

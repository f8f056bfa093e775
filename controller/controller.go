// Package controller exposes the server side of the session exchange: two
// idempotent endpoints that trade a provider identity token for a session
// cookie and drop it again.
package controller

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"

	"github.com/goliatone/go-authsync"
)

// ErrMissingBearer is returned when the establish endpoint receives no
// usable Authorization header.
var ErrMissingBearer = goerrors.New("missing or malformed bearer credential", goerrors.CategoryAuth).
	WithTextCode("MISSING_BEARER").
	WithCode(goerrors.CodeUnauthorized)

// ErrInvalidIdentityToken is returned when the presented identity token
// fails validation.
var ErrInvalidIdentityToken = goerrors.New("invalid identity token", goerrors.CategoryAuth).
	WithTextCode("INVALID_IDENTITY_TOKEN").
	WithCode(goerrors.CodeUnauthorized)

type SessionRoutes struct {
	Establish string
	Clear     string
}

// SessionController serves the establish/clear session endpoints.
type SessionController struct {
	Logger         authsync.Logger
	Verifier       TokenVerifier
	Routes         *SessionRoutes
	CookieName     string
	CookieDuration time.Duration
	SigningKey     []byte
	Issuer         string
	AuthScheme     string
	ErrorHandler   router.ErrorHandler
}

type SessionControllerOption func(*SessionController) *SessionController

// WithVerifier sets the identity-token verifier (required).
func WithVerifier(v TokenVerifier) SessionControllerOption {
	return func(c *SessionController) *SessionController {
		c.Verifier = v
		return c
	}
}

// WithLogger overrides the controller logger.
func WithLogger(logger authsync.Logger) SessionControllerOption {
	return func(c *SessionController) *SessionController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

// WithSessionCookie configures the cookie the controller writes.
func WithSessionCookie(name string, duration time.Duration) SessionControllerOption {
	return func(c *SessionController) *SessionController {
		if name != "" {
			c.CookieName = name
		}
		if duration > 0 {
			c.CookieDuration = duration
		}
		return c
	}
}

// WithSigningKey sets the key used to mint the session cookie (required).
func WithSigningKey(key []byte) SessionControllerOption {
	return func(c *SessionController) *SessionController {
		c.SigningKey = key
		return c
	}
}

// WithIssuer sets the session cookie issuer claim.
func WithIssuer(issuer string) SessionControllerOption {
	return func(c *SessionController) *SessionController {
		c.Issuer = issuer
		return c
	}
}

// WithRoutes overrides the endpoint paths.
func WithRoutes(routes SessionRoutes) SessionControllerOption {
	return func(c *SessionController) *SessionController {
		if routes.Establish != "" {
			c.Routes.Establish = routes.Establish
		}
		if routes.Clear != "" {
			c.Routes.Clear = routes.Clear
		}
		return c
	}
}

// WithErrorHandler overrides how handler errors become responses.
func WithErrorHandler(handler router.ErrorHandler) SessionControllerOption {
	return func(c *SessionController) *SessionController {
		if handler != nil {
			c.ErrorHandler = handler
		}
		return c
	}
}

func NewSessionController(opts ...SessionControllerOption) *SessionController {
	c := &SessionController{
		Logger:         authsync.DefaultLogger("session.controller"),
		CookieName:     "session",
		CookieDuration: 24 * time.Hour,
		AuthScheme:     "Bearer",
		Routes: &SessionRoutes{
			Establish: "/api/login",
			Clear:     "/api/logout",
		},
	}
	c.ErrorHandler = c.defaultErrHandler

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Verifier == nil {
		panic("Missing TokenVerifier in session controller...")
	}

	if len(c.SigningKey) == 0 {
		panic("Missing signing key in session controller...")
	}

	return c
}

// RegisterSessionRoutes mounts the two endpoints on the router.
func RegisterSessionRoutes[T any](app router.Router[T], opts ...SessionControllerOption) {
	controller := NewSessionController(opts...)

	app.Get(controller.Routes.Establish, controller.EstablishSession).
		SetName("session.establish")

	app.Get(controller.Routes.Clear, controller.ClearSession).
		SetName("session.clear")
}

// EstablishSession validates the bearer identity token and writes the
// session cookie. Submitting the same token twice yields the same session
// outcome.
func (c *SessionController) EstablishSession(ctx router.Context) error {
	raw, err := c.bearerToken(ctx)
	if err != nil {
		return c.ErrorHandler(ctx, err)
	}

	verified, err := c.Verifier.Verify(ctx.Context(), raw)
	if err != nil {
		c.Logger.Info("identity token rejected", "error", err)
		return c.ErrorHandler(ctx, err)
	}

	session, err := c.mintSessionToken(verified)
	if err != nil {
		return c.ErrorHandler(ctx, err)
	}

	c.setCookieToken(ctx, session, c.CookieDuration)

	return ctx.JSON(http.StatusOK, map[string]any{
		"status":  "ok",
		"user_id": verified.Subject,
	})
}

// ClearSession drops the session cookie. Clearing an absent session is a
// success.
func (c *SessionController) ClearSession(ctx router.Context) error {
	c.cookieDel(ctx, c.CookieName)

	return ctx.JSON(http.StatusOK, map[string]any{
		"status": "ok",
	})
}

func (c *SessionController) bearerToken(ctx router.Context) (string, error) {
	header := ctx.GetString(router.HeaderAuthorization, "")
	prefix := c.AuthScheme + " "
	if header == "" || !strings.HasPrefix(header, prefix) {
		return "", ErrMissingBearer
	}

	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	if token == "" {
		return "", ErrMissingBearer
	}
	return token, nil
}

func (c *SessionController) mintSessionToken(verified *VerifiedToken) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": verified.Subject,
		"iss": c.Issuer,
		"iat": now.Unix(),
		"exp": now.Add(c.CookieDuration).Unix(),
	})

	signed, err := token.SignedString(c.SigningKey)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "unable to sign session token").
			WithCode(goerrors.CodeInternal)
	}
	return signed, nil
}

func (c *SessionController) setCookieToken(ctx router.Context, val string, duration time.Duration) {
	ctx.Cookie(&router.Cookie{
		Name:     c.CookieName,
		Value:    val,
		Expires:  time.Now().Add(duration),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

func (c *SessionController) cookieDel(ctx router.Context, name string) {
	ctx.Cookie(&router.Cookie{
		Name:     name,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

func (c *SessionController) defaultErrHandler(ctx router.Context, err error) error {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		richErr = goerrors.Wrap(err, goerrors.CategoryInternal, "An unexpected server error occurred").
			WithCode(goerrors.CodeInternal)
	}

	c.Logger.Info(
		"Session controller error",
		"error", richErr.Message,
		"category", richErr.Category,
		"details", print.MaybePrettyJSON(richErr.Metadata),
	)

	return ctx.JSON(richErr.Code, map[string]any{
		"error":     richErr.Message,
		"text_code": richErr.TextCode,
	})
}

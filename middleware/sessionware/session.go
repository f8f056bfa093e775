// Package sessionware guards routes behind the session cookie written by
// the session controller. It validates the signed cookie and exposes the
// subject to downstream handlers.
package sessionware

import (
	"context"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

// ErrSessionMissing is returned when no session credential is present.
var ErrSessionMissing = goerrors.New("missing session credential", goerrors.CategoryAuth).
	WithTextCode("MISSING_SESSION").
	WithCode(goerrors.CodeUnauthorized)

// ErrSessionInvalid is returned when the session credential fails validation.
var ErrSessionInvalid = goerrors.New("invalid or expired session", goerrors.CategoryAuth).
	WithTextCode("INVALID_SESSION").
	WithCode(goerrors.CodeUnauthorized)

type Config struct {
	// CookieName is the session cookie to read. Defaults to "session".
	CookieName string
	// SigningKey verifies the cookie signature. Required.
	SigningKey []byte
	// ValidMethods restricts accepted signing algorithms. Defaults to HS256.
	ValidMethods []string
	// AuthScheme allows API clients to present the session credential in the
	// Authorization header instead of the cookie. Defaults to "Bearer".
	AuthScheme string
	// ContextKey is the locals key the validated subject is stored under.
	// Defaults to "session_user".
	ContextKey string
	// Filter skips the middleware for matching requests.
	Filter func(router.Context) bool
	// ErrorHandler converts validation failures into responses.
	ErrorHandler router.ErrorHandler
	// ContextEnricher propagates the subject into the standard context after
	// successful validation.
	ContextEnricher func(ctx context.Context, subject string) context.Context
}

// Session is the validated credential stored in the request locals.
type Session struct {
	Subject string
	Claims  map[string]any
}

func New(config ...Config) router.MiddlewareFunc {
	cfg := withDefaults(config...)
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			if cfg.Filter != nil && cfg.Filter(ctx) {
				return next(ctx)
			}

			raw := extractCredential(ctx, cfg)
			if raw == "" {
				return cfg.ErrorHandler(ctx, ErrSessionMissing)
			}

			session, err := validate(raw, cfg)
			if err != nil {
				return cfg.ErrorHandler(ctx, err)
			}

			ctx.Locals(cfg.ContextKey, session)

			if cfg.ContextEnricher != nil {
				ctx.SetContext(cfg.ContextEnricher(ctx.Context(), session.Subject))
			}

			return next(ctx)
		}
	}
}

func withDefaults(config ...Config) Config {
	var cfg Config
	if len(config) > 0 {
		cfg = config[0]
	}

	if len(cfg.SigningKey) == 0 {
		panic("Missing signing key in session middleware...")
	}

	if cfg.CookieName == "" {
		cfg.CookieName = "session"
	}
	if len(cfg.ValidMethods) == 0 {
		cfg.ValidMethods = []string{jwt.SigningMethodHS256.Alg()}
	}
	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}
	if cfg.ContextKey == "" {
		cfg.ContextKey = "session_user"
	}
	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = defaultErrHandler
	}

	return cfg
}

func extractCredential(ctx router.Context, cfg Config) string {
	if token := ctx.Cookies(cfg.CookieName); token != "" {
		return token
	}

	header := ctx.GetString(router.HeaderAuthorization, "")
	prefix := cfg.AuthScheme + " "
	if strings.HasPrefix(header, prefix) {
		return strings.TrimSpace(strings.TrimPrefix(header, prefix))
	}

	return ""
}

func validate(raw string, cfg Config) (*Session, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(
		raw,
		claims,
		func(*jwt.Token) (any, error) { return cfg.SigningKey, nil },
		jwt.WithValidMethods(cfg.ValidMethods),
	)
	if err != nil || !token.Valid {
		clone := ErrSessionInvalid.Clone()
		clone.Source = err
		return nil, clone
	}

	subject, _ := claims.GetSubject()
	if subject == "" {
		return nil, ErrSessionInvalid.Clone().WithMetadata(map[string]any{
			"reason": "session has no subject",
		})
	}

	return &Session{Subject: subject, Claims: claims}, nil
}

func defaultErrHandler(ctx router.Context, err error) error {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		richErr = goerrors.Wrap(err, goerrors.CategoryAuth, "session validation failed").
			WithCode(goerrors.CodeUnauthorized)
	}

	return ctx.JSON(richErr.Code, map[string]any{
		"error":     richErr.Message,
		"text_code": richErr.TextCode,
	})
}

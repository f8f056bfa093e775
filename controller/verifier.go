package controller

import (
	"context"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
)

// VerifiedToken is the outcome of validating a bearer identity token.
type VerifiedToken struct {
	Subject string
	Claims  map[string]any
}

// TokenVerifier validates identity tokens presented to the establish
// endpoint without tying the controller to a signing scheme.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*VerifiedToken, error)
}

// TokenVerifierFunc adapts a function into a TokenVerifier.
type TokenVerifierFunc func(ctx context.Context, token string) (*VerifiedToken, error)

// Verify satisfies the TokenVerifier interface.
func (f TokenVerifierFunc) Verify(ctx context.Context, token string) (*VerifiedToken, error) {
	if f == nil {
		return nil, ErrInvalidIdentityToken
	}
	return f(ctx, token)
}

// JWKSConfig configures JWKS-backed verification of provider tokens.
type JWKSConfig struct {
	// URL is the provider's JWK Set endpoint.
	URL string
	// RefreshInterval bounds how long a rotated key stays cached.
	// Defaults to one hour.
	RefreshInterval time.Duration
	// ValidMethods restricts accepted signing algorithms. Defaults to RS256.
	ValidMethods []string
}

// Validate will run validation rules
func (c JWKSConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(
			&c.URL,
			validation.Required,
			is.URL,
		),
	)
}

// JWKSVerifier validates identity tokens against a remote JWK Set, the way
// federated providers publish their signing keys.
type JWKSVerifier struct {
	config JWKSConfig
	jwks   *keyfunc.JWKS
}

var _ TokenVerifier = (*JWKSVerifier)(nil)

// NewJWKSVerifier fetches the key set and returns a ready verifier.
func NewJWKSVerifier(cfg JWKSConfig) (*JWKSVerifier, error) {
	if err := cfg.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid JWKS config").
			WithCode(goerrors.CodeBadRequest)
	}

	if cfg.RefreshInterval == 0 {
		cfg.RefreshInterval = time.Hour
	}
	if len(cfg.ValidMethods) == 0 {
		cfg.ValidMethods = []string{jwt.SigningMethodRS256.Alg()}
	}

	jwks, err := keyfunc.Get(cfg.URL, keyfunc.Options{
		RefreshInterval: cfg.RefreshInterval,
	})
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "unable to load JWK set").
			WithMetadata(map[string]any{
				"url": cfg.URL,
			})
	}

	return &JWKSVerifier{config: cfg, jwks: jwks}, nil
}

// Verify implements TokenVerifier.
func (v *JWKSVerifier) Verify(ctx context.Context, tokenString string) (*VerifiedToken, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		v.jwks.Keyfunc,
		jwt.WithValidMethods(v.config.ValidMethods),
	)
	if err != nil || !token.Valid {
		return nil, invalidToken(err)
	}

	return verifiedFromClaims(claims)
}

// StaticKeyVerifier validates tokens signed with a shared key. Meant for
// development setups and tests; production providers publish JWK sets.
type StaticKeyVerifier struct {
	Key          []byte
	ValidMethods []string
}

var _ TokenVerifier = (*StaticKeyVerifier)(nil)

// Verify implements TokenVerifier.
func (v *StaticKeyVerifier) Verify(ctx context.Context, tokenString string) (*VerifiedToken, error) {
	methods := v.ValidMethods
	if len(methods) == 0 {
		methods = []string{jwt.SigningMethodHS256.Alg()}
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(*jwt.Token) (any, error) { return v.Key, nil },
		jwt.WithValidMethods(methods),
	)
	if err != nil || !token.Valid {
		return nil, invalidToken(err)
	}

	return verifiedFromClaims(claims)
}

func verifiedFromClaims(claims jwt.MapClaims) (*VerifiedToken, error) {
	subject, _ := claims.GetSubject()
	if subject == "" {
		if uid, ok := claims["uid"].(string); ok {
			subject = uid
		}
	}
	if subject == "" {
		return nil, ErrInvalidIdentityToken.Clone().WithMetadata(map[string]any{
			"reason": "token has no subject",
		})
	}

	return &VerifiedToken{
		Subject: subject,
		Claims:  claims,
	}, nil
}

func invalidToken(cause error) error {
	clone := ErrInvalidIdentityToken.Clone()
	clone.Source = cause
	return clone
}

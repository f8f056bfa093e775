package authsync

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
)

// DecodeTokenClaims extracts the claim set from a bearer credential without
// verifying its signature. The token arrives over the provider's own
// channel; signature verification belongs to the party that accepts the
// token, i.e. the session endpoint.
func DecodeTokenClaims(token string) (map[string]any, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "unable to decode token claims").
			WithCode(goerrors.CodeBadRequest)
	}
	return claims, nil
}

// SignInProviderFromClaims reads the issuing provider from a decoded claim
// set, checking the flat claim first and then the provider's nested
// identity block.
func SignInProviderFromClaims(claims map[string]any) string {
	if claims == nil {
		return ""
	}
	if provider, ok := claims["sign_in_provider"].(string); ok {
		return provider
	}
	if nested, ok := claims["firebase"].(map[string]any); ok {
		if provider, ok := nested["sign_in_provider"].(string); ok {
			return provider
		}
	}
	return ""
}

// StaticTokenResolver resolves a fixed bearer credential, decoding its
// claims locally. It backs providers that hand over raw JWTs without a
// separate claims endpoint.
type StaticTokenResolver struct {
	Token string
}

var _ TokenResolver = (*StaticTokenResolver)(nil)

// TokenResult implements TokenResolver.
func (r *StaticTokenResolver) TokenResult(ctx context.Context) (*TokenResult, error) {
	select {
	case <-ctx.Done():
		return nil, goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during claim retrieval")
	default:
	}

	claims, err := DecodeTokenClaims(r.Token)
	if err != nil {
		return nil, err
	}
	return &TokenResult{Token: r.Token, Claims: claims}, nil
}

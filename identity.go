package authsync

import (
	"github.com/nyaruka/phonenumbers"
)

// ProviderInfo is one linked credential on a provider user record.
type ProviderInfo struct {
	ProviderID  string `json:"provider_id,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	Email       string `json:"email,omitempty"`
}

// TokenRecord is the raw identity-provider user record carried by a token
// event. A record without a UID carries no usable identity and is treated
// as an absence signal.
type TokenRecord struct {
	UID           string         `json:"uid,omitempty"`
	DisplayName   string         `json:"display_name,omitempty"`
	Email         string         `json:"email,omitempty"`
	EmailVerified bool           `json:"email_verified,omitempty"`
	PhotoURL      string         `json:"photo_url,omitempty"`
	PhoneNumber   string         `json:"phone_number,omitempty"`
	ProviderData  []ProviderInfo `json:"provider_data,omitempty"`
}

// TokenEvent is a single token-change notification. A nil Record means the
// provider no longer holds an identity. Resolver, when set, overrides the
// synchronizer's default claim retrieval for this event.
type TokenEvent struct {
	Record   *TokenRecord
	Resolver TokenResolver
}

// TokenResult is a bearer credential plus its decoded claims.
type TokenResult struct {
	Token  string
	Claims map[string]any
}

// Identity is the canonical signed-in principal. Identities are superseded
// on every change, never mutated in place; the absence of an identity is a
// nil pointer, never a zero-value struct.
type Identity struct {
	ID             string         `json:"id"`
	DisplayName    string         `json:"display_name,omitempty"`
	Email          string         `json:"email,omitempty"`
	EmailVerified  bool           `json:"email_verified"`
	PhotoURL       string         `json:"photo_url,omitempty"`
	Claims         map[string]any `json:"claims,omitempty"`
	SignInProvider string         `json:"sign_in_provider,omitempty"`
	PhoneNumber    string         `json:"phone_number,omitempty"`
}

// Normalize converts a raw provider record plus token claims into the
// canonical Identity. It is pure and total: missing optional fields fall
// back instead of failing. Display name resolution order is the record's
// own name, then the first linked provider's, then the record email.
func Normalize(record *TokenRecord, result *TokenResult) *Identity {
	if record == nil || record.UID == "" {
		return nil
	}

	var provider ProviderInfo
	if len(record.ProviderData) > 0 {
		provider = record.ProviderData[0]
	}

	displayName := record.DisplayName
	if displayName == "" {
		displayName = provider.DisplayName
	}
	if displayName == "" {
		displayName = record.Email
	}

	var claims map[string]any
	if result != nil {
		claims = result.Claims
	}

	return &Identity{
		ID:             record.UID,
		DisplayName:    displayName,
		Email:          record.Email,
		EmailVerified:  record.EmailVerified,
		PhotoURL:       record.PhotoURL,
		Claims:         claims,
		SignInProvider: provider.ProviderID,
		PhoneNumber:    normalizePhone(record.PhoneNumber),
	}
}

// normalizePhone formats international numbers as E.164; anything the
// parser rejects passes through untouched.
func normalizePhone(raw string) string {
	if raw == "" {
		return ""
	}
	parsed, err := phonenumbers.Parse(raw, "")
	if err != nil || !phonenumbers.IsValidNumber(parsed) {
		return raw
	}
	return phonenumbers.Format(parsed, phonenumbers.E164)
}

package authsync

const (
	// ProviderPassword is the password-based credential provider.
	ProviderPassword = "password"
	// ProviderCustom is the custom-token credential provider.
	ProviderCustom = "custom"
)

// IsVerified decides whether a signed-in identity is trusted enough to be
// exposed as the active user. Password and custom-token sign-ins require an
// explicitly verified email; federated providers assert identity themselves
// and are trusted without the flag.
func IsVerified(identity *Identity) bool {
	if identity == nil || identity.SignInProvider == "" {
		return false
	}
	if identity.EmailVerified {
		return true
	}
	return identity.SignInProvider != ProviderPassword && identity.SignInProvider != ProviderCustom
}

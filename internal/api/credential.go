package api

import "context"

type credentialKey struct{}

// WithCredential returns a context carrying the caller's session token.
// Requests built from that context attach it as the session cookie.
func WithCredential(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, credentialKey{}, token)
}

// CredentialFrom returns the session token carried by ctx, if any.
func CredentialFrom(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(credentialKey{}).(string)
	return token, ok && token != ""
}

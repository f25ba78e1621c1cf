// Package identity integrates the hosted identity provider used for
// email verification.
package identity

import "context"

// Provider answers email-verification questions about an account.
type Provider interface {
	// EmailVerified reports whether the address has completed verification.
	// Addresses unknown to the provider are treated as verified so that a
	// provider outage or an out-of-band account never locks users out.
	EmailVerified(ctx context.Context, email string) (bool, error)

	// VerificationLink returns a one-time link the user can follow to
	// verify their address.
	VerificationLink(ctx context.Context, email string) (string, error)
}

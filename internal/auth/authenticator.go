// Package auth issues and checks account credentials and session tokens.
package auth

import (
	"context"

	"github.com/mmynk/debtbook/internal/models"
)

// Authenticator defines the interface for authentication implementations.
// The service layer only depends on this, so the credential scheme can change
// without touching the handlers.
type Authenticator interface {
	// Register creates a new account for username with the given credential.
	Register(ctx context.Context, username, credential string) (*models.User, error)

	// Authenticate verifies the credential and returns the matching user.
	Authenticate(ctx context.Context, username, credential string) (*models.User, error)

	// ValidateCredential checks if the credential meets the implementation's requirements.
	ValidateCredential(credential string) error
}

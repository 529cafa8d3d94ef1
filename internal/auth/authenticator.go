// Package auth issues and checks credentials for the session provider:
// bcrypt password accounts and HS256 JWT session tokens.
package auth

import (
	"context"

	"github.com/mmynk/odemetakip/internal/models"
)

// Authenticator defines the interface for authentication implementations.
// Services depend on it so the password flow can be swapped (OAuth, magic
// links) without touching them.
type Authenticator interface {
	// Register creates a new user account with the given email and credential.
	Register(ctx context.Context, email, displayName, credential string) (*models.User, error)

	// Authenticate verifies the credential and returns the user.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential checks if the credential meets the implementation's requirements.
	ValidateCredential(credential string) error
}

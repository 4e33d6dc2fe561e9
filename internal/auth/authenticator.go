package auth

import (
	"context"

	"github.com/fleetworks/fleetledger/internal/models"
)

// Authenticator defines the interface for authentication implementations.
// This abstraction allows swapping between different auth methods (password, passkeys, OAuth, etc.)
// without changing the API layer code.
type Authenticator interface {
	// Register creates a new operator account with the given email and credential.
	// The credential format depends on the implementation (e.g., password, OAuth token, etc.)
	// Returns the created operator or an error if registration fails.
	Register(ctx context.Context, email, displayName, credential string) (*models.Operator, error)

	// Authenticate verifies the operator's credentials and returns the operator if successful.
	// Returns an error if authentication fails.
	Authenticate(ctx context.Context, email, credential string) (*models.Operator, error)

	// ValidateCredential checks if the credential meets the implementation's requirements.
	// For passwords: check length, complexity, etc.
	// For other methods: validate format, etc.
	ValidateCredential(credential string) error
}

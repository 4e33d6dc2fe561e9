package models

import (
	"time"

	"github.com/google/uuid"
)

// SettlementSession is the explicit selection state a caller carries between
// engine calls: which obligations of one class are currently ticked and which
// penalty strings accompany them. It replaces ambient UI state; engine calls
// take a session in and hand an updated copy back.
type SettlementSession struct {
	// VehicleID scopes the session to one vehicle.
	VehicleID string

	// Class scopes the session to one obligation queue.
	Class ObligationClass

	// Selected holds the selected obligation indices. The scheduler keeps
	// this a contiguous oldest-first prefix of the eligible queue.
	Selected []int

	// Penalties maps obligation index to the caller-supplied penalty string.
	// Values are parsed leniently at settlement time; entries for indices
	// that drop out of Selected are pruned.
	Penalties map[int]string
}

// IsSelected reports whether the index is currently in the session.
func (s SettlementSession) IsSelected(index int) bool {
	for _, i := range s.Selected {
		if i == index {
			return true
		}
	}
	return false
}

// NewOperator creates an operator account with a generated ID.
func NewOperator(email, displayName, passwordHash string) *Operator {
	return &Operator{
		ID:           uuid.New().String(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().Unix(),
	}
}

// Operator is an authenticated API operator account. Role resolution stays
// with the host application; the engine only authenticates.
type Operator struct {
	// ID is the unique identifier for the operator (UUID format).
	ID string

	// Email is the operator's login email (unique).
	Email string

	// DisplayName is the operator's display name.
	DisplayName string

	// PasswordHash is the bcrypt hash of the operator's password.
	PasswordHash string

	// CreatedAt is the Unix timestamp when the account was created.
	CreatedAt int64
}

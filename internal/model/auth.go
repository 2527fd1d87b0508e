package model

import (
	"time"

	"github.com/google/uuid"
)

// Principal is the authenticated caller as established from a bearer
// token.
type Principal struct {
	UserID    uuid.UUID
	Role      Role
	TokenID   string
	ExpiresAt time.Time
}

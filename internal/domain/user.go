// Package domain contains the core data types for the Splitroom backend.
// This package has zero external dependencies beyond uuid and is imported
// by every other internal package (repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is a lightweight identity created on room creation or join.
// There is no authentication: a user is just a display name plus the UPI id
// other participants pay them at. Users are immutable after creation.
type User struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	UpiID     string    `json:"upiId"`
	CreatedAt time.Time `json:"createdAt"`
}

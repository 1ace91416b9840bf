package model

import (
	"time"

	"github.com/google/uuid"
)

// User is an account able to log in. Username is the owner identity of every row the user creates.
type User struct {
	ID           uuid.UUID
	Username     string
	PasswordHash string
	Disabled     bool
	UpdatedAt    time.Time
	CreatedAt    time.Time
}

func (u *User) InitMeta() {
	u.ID = uuid.New()
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
}

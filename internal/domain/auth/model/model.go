package model

import (
	"github.com/google/uuid"
	"time"
)

const TokenTypeBearer = "Bearer"

type User struct {
	ID           uuid.UUID
	Username     string
	Email        string
	PasswordHash string
	FirstName    *string
	LastName     *string
	Age          *int
	About        *string
	Verified     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ProfilePatch carries a partial profile update. Nil fields are left as they are.
type ProfilePatch struct {
	FirstName *string
	LastName  *string
	Age       *int
	About     *string
}

func (p ProfilePatch) Empty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Age == nil && p.About == nil
}

type AuthToken struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
	UserID      uuid.UUID
}

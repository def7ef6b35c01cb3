package dto

import (
	"time"

	"github.com/Miraines/MoonyAndStarry/blog-auth/internal/domain/auth/model"
	"github.com/google/uuid"
)

type SignupDTO struct {
	Username       string `json:"username"        validate:"required,min=4,max=16,username"`
	Email          string `json:"email"           validate:"required,email,max=254"`
	Password       string `json:"password"        validate:"required,min=8,max=128"`
	RepeatPassword string `json:"repeat_password" validate:"required,eqfield=Password"`
}

type LoginDTO struct {
	Username string `json:"username" validate:"required,min=4,max=16,username"`
	Password string `json:"password" validate:"required,max=128"`
	// ClientIP is filled by the transport, never decoded from the body.
	ClientIP string `json:"-"`
}

type EditProfileDTO struct {
	FirstName *string `json:"first_name" validate:"omitempty,max=64"`
	LastName  *string `json:"last_name"  validate:"omitempty,max=64"`
	Age       *int    `json:"age"        validate:"omitempty,min=0,max=128"`
	About     *string `json:"about"      validate:"omitempty,max=512"`
}

func (d EditProfileDTO) Patch() model.ProfilePatch {
	return model.ProfilePatch{
		FirstName: d.FirstName,
		LastName:  d.LastName,
		Age:       d.Age,
		About:     d.About,
	}
}

type EditEmailDTO struct {
	Email string `json:"email" validate:"required,email,max=254"`
}

type EditPasswordDTO struct {
	Password       string `json:"password"        validate:"required,min=8,max=128"`
	RepeatPassword string `json:"repeat_password" validate:"required,eqfield=Password"`
}

type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func NewTokenResponse(t model.AuthToken) TokenResponse {
	return TokenResponse{
		AccessToken: t.AccessToken,
		TokenType:   t.TokenType,
		ExpiresAt:   t.ExpiresAt,
	}
}

// UserResponse is the owner's view of the account. It never carries the password hash.
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName *string   `json:"first_name,omitempty"`
	LastName  *string   `json:"last_name,omitempty"`
	Age       *int      `json:"age,omitempty"`
	About     *string   `json:"about,omitempty"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"created_at"`
}

func NewUserResponse(u model.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Age:       u.Age,
		About:     u.About,
		Verified:  u.Verified,
		CreatedAt: u.CreatedAt,
	}
}

// PublicUserResponse is what anyone may see about a user.
type PublicUserResponse struct {
	Username  string  `json:"username"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	About     *string `json:"about,omitempty"`
}

func NewPublicUserResponse(u model.User) PublicUserResponse {
	return PublicUserResponse{
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		About:     u.About,
	}
}

package postgres

import (
	"time"

	"github.com/Miraines/MoonyAndStarry/blog-auth/internal/domain/auth/model"
	"github.com/google/uuid"
)

type userRecord struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username   string    `gorm:"not null;uniqueIndex:users_username_key"`
	FirstName  *string
	LastName   *string
	Age        *int
	About      *string
	Verified   bool `gorm:"not null;default:false"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Credential credentialRecord `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (userRecord) TableName() string { return "users" }

type credentialRecord struct {
	UserID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email        string    `gorm:"not null;uniqueIndex:credentials_email_key"`
	PasswordHash string    `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (credentialRecord) TableName() string { return "credentials" }

// Models lists the records for AutoMigrate in tests; production uses SQL migrations.
func Models() []any {
	return []any{&userRecord{}, &credentialRecord{}}
}

func toRecords(u model.User) (userRecord, credentialRecord) {
	return userRecord{
			ID:        u.ID,
			Username:  u.Username,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Age:       u.Age,
			About:     u.About,
			Verified:  u.Verified,
			CreatedAt: u.CreatedAt,
			UpdatedAt: u.UpdatedAt,
		}, credentialRecord{
			UserID:       u.ID,
			Email:        u.Email,
			PasswordHash: u.PasswordHash,
			CreatedAt:    u.CreatedAt,
			UpdatedAt:    u.UpdatedAt,
		}
}

func (r userRecord) toModel() model.User {
	return model.User{
		ID:           r.ID,
		Username:     r.Username,
		Email:        r.Credential.Email,
		PasswordHash: r.Credential.PasswordHash,
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		Age:          r.Age,
		About:        r.About,
		Verified:     r.Verified,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

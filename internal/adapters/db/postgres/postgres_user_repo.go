package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	customErrors "github.com/Miraines/MoonyAndStarry/blog-auth/internal/domain/auth/errors"
	"github.com/Miraines/MoonyAndStarry/blog-auth/internal/domain/auth/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const uniqueViolation = "23505"

type PostgresUserRepo struct {
	db  *gorm.DB
	now func() time.Time
}

func NewPostgresUserRepo(db *gorm.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db, now: time.Now}
}

// CreateUser inserts the user row and its credentials in one transaction.
func (p *PostgresUserRepo) CreateUser(ctx context.Context, user model.User) (uuid.UUID, error) {
	u, c := toRecords(user)

	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&u).Error; err != nil {
			return err
		}
		return tx.Create(&c).Error
	})
	if err != nil {
		if field, ok := conflictField(err); ok {
			return uuid.Nil, customErrors.NewConflict(field)
		}
		return uuid.Nil, customErrors.WrapInternal(err, "CreateUser")
	}
	return u.ID, nil
}

func (p *PostgresUserRepo) GetUserByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	return p.first(ctx, "GetUserByID", p.db.Where("users.id = ?", id))
}

func (p *PostgresUserRepo) GetUserByUsername(ctx context.Context, username string) (model.User, error) {
	return p.first(ctx, "GetUserByUsername", p.db.Where("users.username = ?", username))
}

func (p *PostgresUserRepo) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	return p.first(ctx, "GetUserByEmail", p.db.
		Joins("JOIN credentials ON credentials.user_id = users.id").
		Where("credentials.email = ?", email))
}

func (p *PostgresUserRepo) first(ctx context.Context, op string, scope *gorm.DB) (model.User, error) {
	var rec userRecord
	res := scope.WithContext(ctx).Preload("Credential").First(&rec)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return model.User{}, customErrors.ErrNotFound
	}
	if err := res.Error; err != nil {
		return model.User{}, customErrors.WrapInternal(err, op)
	}
	return rec.toModel(), nil
}

func (p *PostgresUserRepo) UpdateProfile(ctx context.Context, id uuid.UUID, patch model.ProfilePatch) error {
	fields := map[string]any{"updated_at": p.now()}
	if patch.FirstName != nil {
		fields["first_name"] = *patch.FirstName
	}
	if patch.LastName != nil {
		fields["last_name"] = *patch.LastName
	}
	if patch.Age != nil {
		fields["age"] = *patch.Age
	}
	if patch.About != nil {
		fields["about"] = *patch.About
	}

	res := p.db.WithContext(ctx).Model(&userRecord{}).Where("id = ?", id).Updates(fields)
	if err := res.Error; err != nil {
		return customErrors.WrapInternal(err, "UpdateProfile")
	}
	if res.RowsAffected == 0 {
		return customErrors.ErrNotFound
	}
	return nil
}

// UpdateEmail changes the login email and drops the verification flag.
func (p *PostgresUserRepo) UpdateEmail(ctx context.Context, id uuid.UUID, email string) error {
	now := p.now()
	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&credentialRecord{}).Where("user_id = ?", id).
			Updates(map[string]any{"email": email, "updated_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return customErrors.ErrNotFound
		}
		return tx.Model(&userRecord{}).Where("id = ?", id).
			Updates(map[string]any{"verified": false, "updated_at": now}).Error
	})
	return p.mutationError(err, "UpdateEmail")
}

func (p *PostgresUserRepo) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	now := p.now()
	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&credentialRecord{}).Where("user_id = ?", id).
			Updates(map[string]any{"password_hash": hash, "updated_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return customErrors.ErrNotFound
		}
		return tx.Model(&userRecord{}).Where("id = ?", id).Update("updated_at", now).Error
	})
	return p.mutationError(err, "UpdatePasswordHash")
}

func (p *PostgresUserRepo) DeleteUser(ctx context.Context, id uuid.UUID) error {
	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&credentialRecord{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&userRecord{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return customErrors.ErrNotFound
		}
		return nil
	})
	return p.mutationError(err, "DeleteUser")
}

func (p *PostgresUserRepo) mutationError(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, customErrors.ErrNotFound):
		return customErrors.ErrNotFound
	}
	if field, ok := conflictField(err); ok {
		return customErrors.NewConflict(field)
	}
	return customErrors.WrapInternal(err, op)
}

// conflictField maps a unique violation to the API field it protects.
// Postgres reports the constraint name; SQLite only the message.
func conflictField(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code != uniqueViolation {
			return "", false
		}
		return fieldOf(pgErr.ConstraintName), true
	}
	if msg := err.Error(); strings.Contains(msg, "UNIQUE constraint failed") {
		return fieldOf(msg), true
	}
	return "", false
}

func fieldOf(s string) string {
	switch {
	case strings.Contains(s, "email"):
		return "email"
	case strings.Contains(s, "username"):
		return "username"
	default:
		return "id"
	}
}

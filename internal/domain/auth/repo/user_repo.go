package repo

import (
	"context"
	"github.com/Miraines/MoonyAndStarry/blog-auth/internal/domain/auth/model"
	"github.com/google/uuid"
)

type UserRepo interface {
	CreateUser(ctx context.Context, u model.User) (uuid.UUID, error)

	GetUserByID(ctx context.Context, id uuid.UUID) (model.User, error)

	GetUserByUsername(ctx context.Context, username string) (model.User, error)

	GetUserByEmail(ctx context.Context, email string) (model.User, error)

	UpdateProfile(ctx context.Context, id uuid.UUID, patch model.ProfilePatch) error

	UpdateEmail(ctx context.Context, id uuid.UUID, email string) error

	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error

	DeleteUser(ctx context.Context, id uuid.UUID) error
}

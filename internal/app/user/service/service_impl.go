package service

import (
	"context"

	"github.com/Miraines/MoonyAndStarry/blog-auth/internal/adapters/transport/http/dto"
	customErrors "github.com/Miraines/MoonyAndStarry/blog-auth/internal/domain/auth/errors"
	"github.com/Miraines/MoonyAndStarry/blog-auth/internal/domain/auth/model"
	"github.com/Miraines/MoonyAndStarry/blog-auth/internal/domain/auth/password"
	repo "github.com/Miraines/MoonyAndStarry/blog-auth/internal/domain/auth/repo"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Service covers everything an authenticated user may do with their own account,
// plus the public profile lookup.
type Service interface {
	Me(ctx context.Context, id uuid.UUID) (model.User, error)
	GetByUsername(ctx context.Context, username string) (model.User, error)
	EditProfile(ctx context.Context, id uuid.UUID, in dto.EditProfileDTO) error
	EditEmail(ctx context.Context, id uuid.UUID, in dto.EditEmailDTO) error
	EditPassword(ctx context.Context, id uuid.UUID, in dto.EditPasswordDTO) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type userService struct {
	userRepo repo.UserRepo
	hasher   password.Hasher
	v        *validator.Validate
}

func New(ur repo.UserRepo, hasher password.Hasher, v *validator.Validate) Service {
	return &userService{userRepo: ur, hasher: hasher, v: v}
}

func (s *userService) Me(ctx context.Context, id uuid.UUID) (model.User, error) {
	u, err := s.userRepo.GetUserByID(ctx, id)
	return u, passThrough(err, "Me")
}

func (s *userService) GetByUsername(ctx context.Context, username string) (model.User, error) {
	u, err := s.userRepo.GetUserByUsername(ctx, username)
	return u, passThrough(err, "GetByUsername")
}

func (s *userService) EditProfile(ctx context.Context, id uuid.UUID, in dto.EditProfileDTO) error {
	if err := dto.Validate(s.v, in); err != nil {
		return err
	}
	patch := in.Patch()
	if patch.Empty() {
		return customErrors.NewInvalidArgument("nothing to update")
	}
	return passThrough(s.userRepo.UpdateProfile(ctx, id, patch), "EditProfile")
}

func (s *userService) EditEmail(ctx context.Context, id uuid.UUID, in dto.EditEmailDTO) error {
	if err := dto.Validate(s.v, in); err != nil {
		return err
	}
	return passThrough(s.userRepo.UpdateEmail(ctx, id, in.Email), "EditEmail")
}

func (s *userService) EditPassword(ctx context.Context, id uuid.UUID, in dto.EditPasswordDTO) error {
	if err := dto.Validate(s.v, in); err != nil {
		return err
	}
	hash, err := s.hasher.Hash(ctx, in.Password)
	if err != nil {
		return customErrors.WrapInternal(err, "EditPassword")
	}
	return passThrough(s.userRepo.UpdatePasswordHash(ctx, id, hash), "EditPassword")
}

func (s *userService) Delete(ctx context.Context, id uuid.UUID) error {
	return passThrough(s.userRepo.DeleteUser(ctx, id), "Delete")
}

// passThrough keeps the error kinds the transport maps and wraps the rest.
func passThrough(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case customErrors.IsNotFound(err),
		customErrors.IsAlreadyExists(err),
		customErrors.IsInternal(err):
		return err
	default:
		return customErrors.WrapInternal(err, op)
	}
}

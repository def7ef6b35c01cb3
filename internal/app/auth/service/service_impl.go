package service

import (
	"context"
	"errors"
	"time"

	"github.com/Miraines/MoonyAndStarry/blog-auth/internal/adapters/transport/http/dto"
	customErrors "github.com/Miraines/MoonyAndStarry/blog-auth/internal/domain/auth/errors"
	"github.com/Miraines/MoonyAndStarry/blog-auth/internal/domain/auth/jwt"
	"github.com/Miraines/MoonyAndStarry/blog-auth/internal/domain/auth/model"
	"github.com/Miraines/MoonyAndStarry/blog-auth/internal/domain/auth/password"
	repo "github.com/Miraines/MoonyAndStarry/blog-auth/internal/domain/auth/repo"
	"github.com/Miraines/MoonyAndStarry/blog-auth/internal/infra/config"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	Signup(context.Context, dto.SignupDTO) (model.AuthToken, error)
	Login(context.Context, dto.LoginDTO) (model.AuthToken, error)
	// Authenticate resolves a bearer token to the user it was issued for.
	Authenticate(ctx context.Context, token string) (model.User, error)
}

type authService struct {
	userRepo repo.UserRepo
	attempts repo.AttemptRepo
	codec    jwt.TokenCodec
	hasher   password.Hasher
	cfg      *config.Config
	v        *validator.Validate
	log      *zap.Logger
	now      func() time.Time
}

// New wires the service. attempts may be nil, which disables the login lockout.
func New(
	ur repo.UserRepo,
	attempts repo.AttemptRepo,
	codec jwt.TokenCodec,
	hasher password.Hasher,
	cfg *config.Config,
	v *validator.Validate,
	log *zap.Logger,
) Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &authService{
		userRepo: ur, attempts: attempts, codec: codec, hasher: hasher,
		cfg: cfg, v: v, log: log, now: time.Now,
	}
}

func (a *authService) Signup(ctx context.Context, in dto.SignupDTO) (model.AuthToken, error) {
	if err := dto.Validate(a.v, in); err != nil {
		return model.AuthToken{}, err
	}

	hash, err := a.hasher.Hash(ctx, in.Password)
	if err != nil {
		return model.AuthToken{}, customErrors.WrapInternal(err, "Signup")
	}

	now := a.now().UTC()
	user := model.User{
		ID:           uuid.New(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := a.userRepo.CreateUser(ctx, user); err != nil {
		if customErrors.IsAlreadyExists(err) {
			return model.AuthToken{}, err
		}
		return model.AuthToken{}, customErrors.WrapInternal(err, "Signup")
	}

	return a.issue(user.ID)
}

func (a *authService) Login(ctx context.Context, in dto.LoginDTO) (model.AuthToken, error) {
	if err := dto.Validate(a.v, in); err != nil {
		return model.AuthToken{}, err
	}

	// the attempt is counted before any work so parallel guesses cannot slip past the cap
	key := attemptKey(in)
	if !a.claimAttempt(ctx, key) {
		return model.AuthToken{}, customErrors.ErrTooManyAttempts
	}

	user, err := a.userRepo.GetUserByUsername(ctx, in.Username)
	switch {
	case errors.Is(err, customErrors.ErrNotFound):
		// same cost as a wrong password
		a.hasher.VerifyDummy(ctx, in.Password)
		return model.AuthToken{}, customErrors.ErrInvalidCredentials
	case err != nil:
		return model.AuthToken{}, customErrors.WrapInternal(err, "Login")
	}

	ok, err := a.hasher.Verify(ctx, in.Password, user.PasswordHash)
	if err != nil {
		return model.AuthToken{}, customErrors.WrapInternal(err, "Login")
	}
	if !ok {
		return model.AuthToken{}, customErrors.ErrInvalidCredentials
	}

	if a.attempts != nil {
		if err := a.attempts.Reset(ctx, key); err != nil {
			a.log.Warn("reset login attempts", zap.Error(err))
		}
	}
	return a.issue(user.ID)
}

func (a *authService) Authenticate(ctx context.Context, token string) (model.User, error) {
	claims, err := a.codec.Verify(token)
	if err != nil {
		return model.User{}, err
	}

	uid, err := uuid.Parse(claims.Subject)
	if err != nil {
		return model.User{}, customErrors.ErrTokenMalformed
	}

	user, err := a.userRepo.GetUserByID(ctx, uid)
	switch {
	case errors.Is(err, customErrors.ErrNotFound):
		// the account was deleted after the token was issued
		return model.User{}, customErrors.ErrInvalidCredentials
	case err != nil:
		return model.User{}, customErrors.WrapInternal(err, "Authenticate")
	}
	return user, nil
}

func (a *authService) issue(uid uuid.UUID) (model.AuthToken, error) {
	token, exp, err := a.codec.Issue(uid)
	if err != nil {
		return model.AuthToken{}, customErrors.WrapInternal(err, "Issue")
	}
	return model.AuthToken{
		AccessToken: token,
		TokenType:   model.TokenTypeBearer,
		ExpiresAt:   exp,
		UserID:      uid,
	}, nil
}

// attemptKey scopes the counter to username and client, so a stranger's guesses
// do not lock the owner out from their own address.
func attemptKey(in dto.LoginDTO) string {
	if in.ClientIP == "" {
		return in.Username
	}
	return in.Username + "|" + in.ClientIP
}

// claimAttempt reports whether this attempt fits under the cap. It fails open:
// a limiter outage must not block logins.
func (a *authService) claimAttempt(ctx context.Context, key string) bool {
	if a.attempts == nil || a.cfg.LoginMaxAttempts <= 0 {
		return true
	}
	n, err := a.attempts.RegisterAttempt(ctx, key, a.cfg.LoginLockout)
	if err != nil {
		a.log.Warn("register login attempt", zap.Error(err))
		return true
	}
	return n <= int64(a.cfg.LoginMaxAttempts)
}

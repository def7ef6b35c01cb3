package jwt

import (
	"errors"
	customErrors "github.com/Miraines/MoonyAndStarry/blog-auth/internal/domain/auth/errors"
	jwt2 "github.com/Miraines/MoonyAndStarry/blog-auth/internal/domain/auth/jwt"
	"github.com/Miraines/MoonyAndStarry/blog-auth/internal/infra/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"time"
)

const DefaultTTL = 24 * time.Hour

var signingMethod = jwt.SigningMethodHS256

type JwtUtilImpl struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

func NewJWTUtil(cfg *config.Config) (*JwtUtilImpl, error) {
	if cfg.JWTSecret == "" {
		return nil, customErrors.WrapInternal(errors.New("empty secret"), "NewJWTUtil")
	}
	ttl := cfg.AccessTokenTTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &JwtUtilImpl{
		secret: []byte(cfg.JWTSecret),
		ttl:    ttl,
		issuer: cfg.Issuer,
		now:    time.Now,
	}, nil
}

// WithClock replaces the time source used for issuing and validating.
func (j *JwtUtilImpl) WithClock(now func() time.Time) *JwtUtilImpl {
	cp := *j
	cp.now = now
	return &cp
}

func (j *JwtUtilImpl) Issue(userID uuid.UUID) (string, time.Time, error) {
	now := j.now()

	claims := jwt2.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    j.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(signingMethod, claims).SignedString(j.secret)
	if err != nil {
		return "", time.Time{}, customErrors.WrapInternal(err, "sign access token")
	}

	return signed, claims.ExpiresAt.Time, nil
}

func (j *JwtUtilImpl) Verify(raw string) (jwt2.Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	}
	if j.issuer != "" {
		opts = append(opts, jwt.WithIssuer(j.issuer))
	}

	token, err := jwt.ParseWithClaims(raw, &jwt2.Claims{}, func(t *jwt.Token) (interface{}, error) {
		return j.secret, nil
	}, opts...)
	if err != nil {
		return jwt2.Claims{}, classify(err)
	}
	if !token.Valid {
		return jwt2.Claims{}, customErrors.ErrInvalidToken
	}

	claims, ok := token.Claims.(*jwt2.Claims)
	if !ok {
		return jwt2.Claims{}, customErrors.WrapInternal(
			errors.New("claims not Claims"), "Verify",
		)
	}

	if _, err := uuid.Parse(claims.Subject); err != nil {
		return jwt2.Claims{}, customErrors.ErrTokenMalformed
	}

	return *claims, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return customErrors.ErrTokenMalformed
	case errors.Is(err, jwt.ErrTokenExpired):
		return customErrors.ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable):
		return customErrors.ErrTokenSignature
	default:
		return customErrors.ErrInvalidToken
	}
}

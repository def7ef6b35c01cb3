package jwt

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"time"
)

type Claims struct {
	jwt.RegisteredClaims
}

type TokenCodec interface {
	Issue(userID uuid.UUID) (token string, exp time.Time, err error)
	Verify(token string) (claims Claims, err error)
}

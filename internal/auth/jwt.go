package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/storeratings/ratehub/internal/apperr"
)

var (
	jwtSecret []byte
	tokenTTL  = 24 * time.Hour
)

type Claims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func Init(secret string, ttl time.Duration) error {
	if secret == "" {
		return errors.New("JWT secret is not set")
	}

	jwtSecret = []byte(secret)

	if ttl > 0 {
		tokenTTL = ttl
	}

	return nil
}

// Issue mints a signed token for the given identity. The expiry is fixed at
// issuance; there is no sliding renewal.
func Issue(userID uint, email, role string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(tokenTTL)

	claims := Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(jwtSecret)

	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

// Verify validates a token and returns its claims. Failures are classified as
// malformed, invalid signature or expired.
func Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return jwtSecret, nil
	})

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, apperr.TokenExpired()
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrSignatureInvalid):
			return nil, apperr.InvalidSignature()
		default:
			return nil, apperr.MalformedToken()
		}
	}

	if !token.Valid {
		return nil, apperr.MalformedToken()
	}

	return claims, nil
}

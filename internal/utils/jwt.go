package utils

import (
	"errors"
	"fmt"
	"time"

	"bcard/internal/model"

	"github.com/golang-jwt/jwt/v5"
)

var ErrEmptySecret = errors.New("jwt secret must not be empty")

// JWTClaims custom claims for JWT. The payload is the public subset of a user;
// there is no expiry claim.
type JWTClaims struct {
	UserID         string        `json:"id"`
	Name           model.Name    `json:"name"`
	Email          string        `json:"email"`
	Phone          string        `json:"phone"`
	Address        model.Address `json:"address"`
	Gender         string        `json:"gender,omitempty"`
	Role           string        `json:"role"`
	SuspendedUntil *time.Time    `json:"suspended_until,omitempty"`
	jwt.RegisteredClaims
}

// JWTUtil provides JWT generation and validation
type JWTUtil struct {
	secretKey []byte
	now       func() time.Time
}

// NewJWTUtil creates a new JWTUtil. The secret is fixed for the lifetime of
// the returned value.
func NewJWTUtil(secretKey string) (*JWTUtil, error) {
	if secretKey == "" {
		return nil, ErrEmptySecret
	}
	return &JWTUtil{secretKey: []byte(secretKey), now: time.Now}, nil
}

// GenerateToken signs the public claims of user. withSuspension controls
// whether the current suspension instant is embedded (login does, register
// does not).
func (ju *JWTUtil) GenerateToken(user *model.User, withSuspension bool) (string, error) {
	claims := &JWTClaims{
		UserID:  user.ID,
		Name:    user.Name,
		Email:   user.Email,
		Phone:   user.Phone,
		Address: user.Address,
		Gender:  user.Gender,
		Role:    user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(ju.now()),
			Subject:  user.ID,
		},
	}
	if withSuspension {
		claims.SuspendedUntil = user.SuspendedUntil
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(ju.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken validates the JWT token
func (ju *JWTUtil) ValidateToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return ju.secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid && claims.UserID != "" {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}

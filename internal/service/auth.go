package service

import (
	"crypto/subtle"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidPassword is returned when the shared access password is wrong.
var ErrInvalidPassword = errors.New("invalid password")

// defaultTokenTTL is how long an issued session token stays valid.
const defaultTokenTTL = 30 * 24 * time.Hour

// Claims represents the JWT claims carried by assistant session tokens.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
}

// AuthService gates access with a shared password and issues per-user
// session tokens. The user ID minted at login scopes that user's persisted
// conversation and favorite slots.
type AuthService struct {
	jwtSecret      []byte
	sharedPassword string
	tokenTTL       time.Duration
}

// NewAuthService creates a new AuthService.
func NewAuthService(secret, sharedPassword string) *AuthService {
	return &AuthService{
		jwtSecret:      []byte(secret),
		sharedPassword: sharedPassword,
		tokenTTL:       defaultTokenTTL,
	}
}

// Login verifies the shared password and returns a signed session token plus
// the user ID it carries.
func (a *AuthService) Login(password string) (token, userID string, err error) {
	if subtle.ConstantTimeCompare([]byte(password), []byte(a.sharedPassword)) != 1 {
		return "", "", ErrInvalidPassword
	}

	userID = uuid.NewString()
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.tokenTTL)),
		},
		UserID: userID,
	}

	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.jwtSecret)
	if err != nil {
		return "", "", err
	}
	return token, userID, nil
}

// ValidateToken validates a session token and returns its claims.
func (a *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid or expired token")
	}
	if claims.UserID == "" {
		return nil, errors.New("token missing user id")
	}
	return claims, nil
}

package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

const tokenTypeAccess = "access"

// Claims are carried by access tokens.
type Claims struct {
	jwt.RegisteredClaims
	UserID    string `json:"user_id"`
	UserType  string `json:"user_type"`
	IsStaff   bool   `json:"is_staff,omitempty"`
	TokenType string `json:"token_type"`
}

var (
	mu         sync.RWMutex
	signingKey []byte
	accessTTL  = 60 * time.Minute
)

// Configure sets the HMAC secret and access token lifetime.
func Configure(secret string, ttl time.Duration) {
	mu.Lock()
	defer mu.Unlock()
	signingKey = []byte(secret)
	if ttl > 0 {
		accessTTL = ttl
	}
}

// AccessTTL is the configured access token lifetime.
func AccessTTL() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return accessTTL
}

// GenerateToken issues a signed HS256 access token.
func GenerateToken(userID, userType string, isStaff bool) (string, error) {
	mu.RLock()
	key, ttl := signingKey, accessTTL
	mu.RUnlock()

	if len(key) == 0 {
		return "", errors.New("jwt signing key is not configured")
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:    userID,
		UserType:  userType,
		IsStaff:   isStaff,
		TokenType: tokenTypeAccess,
	})

	tokenString, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// ParseToken validates an access token and returns its claims.
func ParseToken(tokenString string) (*Claims, error) {
	mu.RLock()
	key := signingKey
	mu.RUnlock()

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid || claims.TokenType != tokenTypeAccess || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// NewRefreshToken returns an opaque random token.
func NewRefreshToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims carried by both access and refresh tokens. Refresh tokens leave
// Username and Email empty.
type Claims struct {
	UserID    string `json:"user_id"`
	Username  string `json:"username,omitempty"`
	Email     string `json:"email,omitempty"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

type JWTManager struct {
	secretKey       []byte
	tokenDuration   time.Duration
	refreshDuration time.Duration
	now             func() time.Time
}

func NewJWTManager(secretKey string, tokenDuration, refreshDuration time.Duration) *JWTManager {
	return &JWTManager{
		secretKey:       []byte(secretKey),
		tokenDuration:   tokenDuration,
		refreshDuration: refreshDuration,
		now:             time.Now,
	}
}

// GenerateToken issues a short-lived access token.
func (m *JWTManager) GenerateToken(userID, username, email string) (string, error) {
	return m.sign(&Claims{
		UserID:    userID,
		Username:  username,
		Email:     email,
		TokenType: tokenTypeAccess,
	}, m.tokenDuration)
}

// GenerateRefreshToken issues a long-lived token accepted only by the refresh endpoint.
func (m *JWTManager) GenerateRefreshToken(userID string) (string, error) {
	return m.sign(&Claims{
		UserID:    userID,
		TokenType: tokenTypeRefresh,
	}, m.refreshDuration)
}

func (m *JWTManager) GetTokenDuration() time.Duration {
	return m.tokenDuration
}

// ValidateToken validates an access token.
func (m *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	return m.validate(tokenString, tokenTypeAccess)
}

// ValidateRefreshToken validates a refresh token.
func (m *JWTManager) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return m.validate(tokenString, tokenTypeRefresh)
}

func (m *JWTManager) sign(claims *Claims, ttl time.Duration) (string, error) {
	now := m.now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (m *JWTManager) validate(tokenString, tokenType string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secretKey, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != tokenType {
		return nil, fmt.Errorf("%w: unexpected token type %q", ErrInvalidToken, claims.TokenType)
	}

	return claims, nil
}

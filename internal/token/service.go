package token

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/jredh-dev/foodrescue/internal/models"
)

var ErrInvalidToken = errors.New("invalid token")

// Service issues and checks the signed tokens handed out by the demo login.
type Service struct {
	signingKey []byte
	issuer     string
	now        func() time.Time
}

// Claims represents JWT claims for a dashboard session.
type Claims struct {
	UserID string      `json:"uid"`
	Name   string      `json:"name"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

// User returns the identity carried by the claims.
func (c *Claims) User() *models.User {
	return &models.User{ID: c.UserID, Name: c.Name, Role: c.Role}
}

// New creates a new token service. A nil clock means time.Now.
func New(signingKey, issuer string, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		now:        now,
	}
}

// GenerateSigningKey generates a secure random signing key
func GenerateSigningKey() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate signing key: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// GenerateToken creates a JWT token for u.
func (s *Service) GenerateToken(u *models.User, expiresIn time.Duration) (string, error) {
	now := s.now()
	claims := Claims{
		UserID: u.ID,
		Name:   u.Name,
		Role:   u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.signingKey)
}

// ValidateToken validates a JWT token and returns the claims
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.signingKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Issuer != s.issuer {
		return nil, fmt.Errorf("%w: unexpected issuer %q", ErrInvalidToken, claims.Issuer)
	}
	if !claims.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidToken, claims.Role)
	}
	return claims, nil
}

package auth

import (
	"errors"
	"fmt"
	"time"

	"searchapp_backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Claims - токен внешнего сервиса аутентификации
type Claims struct {
	UserID    string `json:"user_id"`
	CompanyID string `json:"company_id"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// Principal - доверенный контекст вызывающего (пользователь, компания, роль)
type Principal struct {
	UserID    string
	CompanyID string
	Role      models.UserRole
}

func (c *Claims) Principal() Principal {
	return Principal{
		UserID:    c.UserID,
		CompanyID: c.CompanyID,
		Role:      models.UserRole(c.Role),
	}
}

// ParseToken проверяет HS256-подпись и обязательные claims
func ParseToken(tokenStr string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.UserID == "" || claims.CompanyID == "" {
		return nil, fmt.Errorf("%w: user_id and company_id are required", ErrInvalidToken)
	}
	if !models.UserRole(claims.Role).IsValid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidToken, claims.Role)
	}
	return claims, nil
}

// IssueToken подписывает токен для principal. Используется CLI-командой
// token и тестами; в продакшене токены выдает внешний сервис.
func IssueToken(p Principal, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:    p.UserID,
		CompanyID: p.CompanyID,
		Role:      string(p.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

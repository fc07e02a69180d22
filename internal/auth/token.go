package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type workerClaims struct {
	Phone string `json:"phone"`
	jwt.RegisteredClaims
}

// Manager issues and parses worker session tokens. A token is a capability
// scoped to one phone number, nothing more; it does not prove who typed it.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{secret: []byte(secret), ttl: ttl}
}

func (m *Manager) Issue(phone string) (string, time.Time, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(m.ttl)

	claims := workerClaims{
		Phone: phone,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   phone,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// Parse validates the token and returns the phone it is scoped to.
func (m *Manager) Parse(raw string) (string, error) {
	claims := &workerClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid || claims.Phone == "" {
		return "", fmt.Errorf("invalid worker token")
	}
	return claims.Phone, nil
}

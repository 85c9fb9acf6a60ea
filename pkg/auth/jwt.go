package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionCookie carries the session token for browser and CLI clients.
const SessionCookie = "soberstay_session"

const audience = "soberstay-api"

type Role string

const (
	RoleTenant   Role = "tenant"
	RoleProvider Role = "provider"
	RoleAdmin    Role = "admin"
)

func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleTenant, RoleProvider, RoleAdmin:
		return Role(s), true
	default:
		return "", false
	}
}

// User is the authenticated principal as seen by clients.
type User struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
	Name  string `json:"name"`
}

// IsTenant reports whether u is an authenticated tenant. Nil is anonymous.
func (u *User) IsTenant() bool {
	return u != nil && u.Role == RoleTenant
}

type Claims struct {
	Sub   int64  `json:"sub"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

func (c *Claims) User() *User {
	return &User{ID: c.Sub, Email: c.Email, Role: c.Role, Name: c.Name}
}

func NewSessionToken(u User, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Sub:   u.ID,
		Email: u.Email,
		Role:  u.Role,
		Name:  u.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Audience:  []string{audience},
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func Parse(tokenString, secret string) (*Claims, error) {
	tok, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	}, jwt.WithAudience(audience))
	if err != nil {
		return nil, err
	}
	if claims, ok := tok.Claims.(*Claims); ok && tok.Valid {
		if _, ok := ParseRole(string(claims.Role)); !ok {
			return nil, errors.New("invalid role")
		}
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

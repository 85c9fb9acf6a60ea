package domain

import (
	"strings"
	"time"

	"github.com/soberstay/marketplace/pkg/auth"
)

type User struct {
	ID           int64     `json:"id"`
	Role         auth.Role `json:"role"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Principal strips the user down to what goes into a session.
func (u *User) Principal() auth.User {
	return auth.User{ID: u.ID, Email: u.Email, Role: u.Role, Name: u.Name}
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	Name     string `json:"name" validate:"required,max=120"`
	// Admins are never self-registered.
	Role string `json:"role" validate:"omitempty,oneof=tenant provider"`
}

func (r *RegisterRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Name = strings.TrimSpace(r.Name)
	if r.Role == "" {
		r.Role = string(auth.RoleTenant)
	}
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

// Session is returned by register and login; the token is also set as the
// session cookie.
type Session struct {
	User      auth.User `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

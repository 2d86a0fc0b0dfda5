package domain

import (
	"regexp"
	"strings"
	"time"
)

type User struct {
	ID                int64      `json:"id"`
	Role              string     `json:"role"`
	Email             string     `json:"email"`
	PasswordHash      string     `json:"-"`
	Name              string     `json:"name"`
	Phone             string     `json:"phone"`
	IsVerified        bool       `json:"is_verified"`
	ResetTokenHash    *string    `json:"-"`
	ResetTokenExpires *time.Time `json:"-"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string    `json:"token"`
	User  *UserInfo `json:"user"`
}

// UserInfo is the public-safe projection of a User. It never carries the
// password or reset-token material.
type UserInfo struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Role       string `json:"role"`
	IsVerified bool   `json:"is_verified"`
}

// Valid user roles
const (
	RoleFarmer  = "farmer"
	RoleOfficer = "officer"
	RoleAdmin   = "admin"
)

var validRoles = map[string]bool{
	RoleFarmer:  true,
	RoleOfficer: true,
	RoleAdmin:   true,
}

func IsValidRole(role string) bool {
	return validRoles[role]
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func (r *SignupRequest) Validate() error {
	if r.Name == "" {
		return Validationf("name is required")
	}
	if r.Email == "" {
		return Validationf("email is required")
	}
	if !emailRegex.MatchString(r.Email) {
		return Validationf("invalid email format")
	}
	if r.Phone == "" {
		return Validationf("phone is required")
	}
	if r.Password == "" {
		return Validationf("password is required")
	}
	if len(r.Password) < 6 {
		return Validationf("password must be at least 6 characters")
	}
	if r.Role == "" {
		return Validationf("role is required")
	}
	if !validRoles[r.Role] {
		return Validationf("invalid role")
	}
	return nil
}

func (r *LoginRequest) Validate() error {
	if r.Email == "" {
		return Validationf("email is required")
	}
	if r.Password == "" {
		return Validationf("password is required")
	}
	return nil
}

// Normalize mirrors how the signup path stores credentials: email is
// lowercased and trimmed, the password trimmed so the stored hash matches
// what login compares against.
func (r *SignupRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = NormalizeEmail(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Password = strings.TrimSpace(r.Password)
}

func (r *LoginRequest) Normalize() {
	r.Email = NormalizeEmail(r.Email)
	r.Password = strings.TrimSpace(r.Password)
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ToUserInfo converts User to UserInfo (without sensitive data)
func (u *User) ToUserInfo() *UserInfo {
	return &UserInfo{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Phone:      u.Phone,
		Role:       u.Role,
		IsVerified: u.IsVerified,
	}
}

package entities

import (
	"net/mail"
	"strings"
)

const (
	maxPasswordBytes = 72
	minPasswordLen   = 6
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(r.Email) == "" {
		errs = append(errs, "email: must not be blank")
	}
	if r.Password == "" {
		errs = append(errs, "password: must not be blank")
	}
	return errs
}

type AuthResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"tokenType"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone,omitempty"`
	// Role is optional; only administrators may register another ADMIN.
	Role string `json:"role,omitempty"`
}

func (r RegisterRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(r.Name) == "" {
		errs = append(errs, "name: must not be blank")
	}
	if strings.TrimSpace(r.Email) == "" {
		errs = append(errs, "email: must not be blank")
	} else if _, err := mail.ParseAddress(r.Email); err != nil {
		errs = append(errs, "email: must be a well-formed email address")
	}
	switch {
	case len(r.Password) < minPasswordLen:
		errs = append(errs, "password: must have at least 6 characters")
	case len(r.Password) > maxPasswordBytes:
		errs = append(errs, "password: must have at most 72 bytes")
	}
	if r.Phone != "" && !strings.HasPrefix(r.Phone, "+") {
		errs = append(errs, "phone: must be in E.164 format")
	}
	return errs
}

type UserResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
	Phone string `json:"phone,omitempty"`
}

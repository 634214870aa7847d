package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleSeller Role = "seller"
	RoleBuyer  Role = "buyer"
)

func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleAdmin, RoleSeller, RoleBuyer:
		return r, nil
	default:
		return "", fmt.Errorf("unsupported role: %q", s)
	}
}

func (r Role) IsAdmin() bool {
	switch r {
	case RoleAdmin:
		return true
	case RoleSeller, RoleBuyer:
		return false
	default:
		return false
	}
}

// CanSell reports whether the role may create listings.
func (r Role) CanSell() bool {
	switch r {
	case RoleAdmin, RoleSeller:
		return true
	case RoleBuyer:
		return false
	default:
		return false
	}
}

type UserProfile struct {
	Id        uuid.UUID `json:"id"`
	UserId    uuid.UUID `json:"user_id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone"`
	AvatarURL *string   `json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type UserRole struct {
	Id        uuid.UUID `json:"id"`
	UserId    uuid.UUID `json:"user_id"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// UserWithRoles is a profile with the role rows sharing its user_id.
type UserWithRoles struct {
	UserProfile
	Roles []UserRole `json:"user_roles"`
}

// PrimaryRole is the first role row, or buyer when the user has none.
func (u *UserWithRoles) PrimaryRole() Role {
	if len(u.Roles) == 0 {
		return RoleBuyer
	}
	return u.Roles[0].Role
}

type SignUpRequest struct {
	FullName        string `json:"full_name" validate:"required,min=2,max=100"`
	Email           string `json:"email" validate:"required,email"`
	Phone           string `json:"phone" validate:"omitempty,max=20"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
	Role            Role   `json:"role" validate:"required,oneof=buyer seller"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type RoleUpdateRequest struct {
	Role Role `json:"role" validate:"required,oneof=admin seller buyer"`
}

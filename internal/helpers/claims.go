package helpers

import (
	"github.com/google/uuid"
	"github.com/joshua-takyi/estately/internal/models"
)

// EnhancedClaims is the authenticated caller as seen by handlers: the token
// claims plus the role and profile read from the database.
type EnhancedClaims struct {
	*CustomClaims
	Role        models.Role `json:"role"`
	UserID      uuid.UUID   `json:"id"`
	Email       string      `json:"email,omitempty"`
	Fullname    string      `json:"fullname,omitempty"`
	AvatarURL   string      `json:"avatar_url,omitempty"`
	PhoneNumber string      `json:"phone_number,omitempty"`
	CreatedAt   string      `json:"created_at,omitempty"`
}

func (ec *EnhancedClaims) IsAdmin() bool {
	return ec.Role.IsAdmin()
}

func (ec *EnhancedClaims) CanSell() bool {
	return ec.Role.CanSell()
}

func (ec *EnhancedClaims) IsOwner(userID uuid.UUID) bool {
	return ec.UserID == userID
}

// CanManage reports whether the caller may edit a listing owned by sellerID.
func (ec *EnhancedClaims) CanManage(sellerID uuid.UUID) bool {
	return ec.IsOwner(sellerID) || ec.IsAdmin()
}

package models

import "gorm.io/gorm"

const (
	RoleAdmin = "ADMIN"
	RoleDonor = "DONOR"
)

type User struct {
	gorm.Model

	Name             string `gorm:"not null" json:"name"`
	Email            string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash     string `gorm:"not null" json:"-"`
	Phone            string `json:"phone,omitempty"`
	Role             string `gorm:"not null;default:DONOR" json:"role"`
	EmailVerified    bool   `gorm:"not null;default:false" json:"email_verified"`
	VerificationCode string `json:"-"`

	// Relationships
	Donations []Donation    `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Payments  []Payment     `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Settings  *UserSettings `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"settings,omitempty"`
}

// UserSettings is created alongside the user at registration and updated
// through the settings endpoints.
type UserSettings struct {
	gorm.Model

	UserID        uint   `gorm:"uniqueIndex;not null" json:"user_id"`
	EmailReceipts bool   `gorm:"not null;default:true" json:"email_receipts"`
	CauseUpdates  bool   `gorm:"not null;default:true" json:"cause_updates"`
	Theme         string `gorm:"default:system" json:"theme"`
	RefreshToken  string `json:"-"`
}

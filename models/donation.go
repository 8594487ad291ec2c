package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	StatusPending   = "PENDING"
	StatusCompleted = "COMPLETED"
	StatusFailed    = "FAILED"
)

type Donation struct {
	gorm.Model

	Amount      float64    `gorm:"not null" json:"amount"`
	Currency    string     `gorm:"not null;default:GHS" json:"currency"`
	Message     string     `json:"message,omitempty"`
	IsAnonymous bool       `gorm:"not null;default:false" json:"is_anonymous"`
	Status      string     `gorm:"not null;default:PENDING;index" json:"status"`
	DonatedAt   *time.Time `json:"donated_at,omitempty"`

	UserID  uint `gorm:"index;not null" json:"user_id"`
	CauseID uint `gorm:"index;not null" json:"cause_id"`

	User  *User  `gorm:"foreignKey:UserID" json:"-"`
	Cause *Cause `gorm:"foreignKey:CauseID" json:"-"`
}

package models

import "gorm.io/gorm"

const (
	CauseActive    = "ACTIVE"
	CausePaused    = "PAUSED"
	CauseDraft     = "DRAFT"
	CauseCompleted = "COMPLETED"
)

// Cause is a fundraising target. RaisedAmount only ever grows, and only by
// the amount of a payment the moment it first reaches COMPLETED.
type Cause struct {
	gorm.Model

	Title        string  `gorm:"not null" json:"title"`
	Description  string  `gorm:"type:text" json:"description"`
	TargetAmount float64 `gorm:"not null" json:"target_amount"`
	RaisedAmount float64 `gorm:"not null;default:0" json:"raised_amount"`
	Category     string  `gorm:"index" json:"category"`
	Location     string  `json:"location"`
	Status       string  `gorm:"not null;default:DRAFT;index" json:"status"`
	ImageURL     string  `json:"image_url,omitempty"`

	Donations []Donation `gorm:"foreignKey:CauseID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

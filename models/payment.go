package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	MethodMobileMoney  = "MOBILE_MONEY"
	MethodBankTransfer = "BANK_TRANSFER"
	MethodDebitCard    = "DEBIT_CARD"
	MethodCash         = "CASH"
	MethodPaystack     = "PAYSTACK"
)

type Payment struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Amount        float64           `gorm:"not null" json:"amount"`
	Currency      string            `gorm:"not null;default:GHS" json:"currency"`
	Method        string            `gorm:"not null" json:"payment_method"`
	Provider      string            `json:"provider,omitempty"`
	Reference     string            `gorm:"uniqueIndex;not null" json:"reference"`
	Status        string            `gorm:"not null;default:PENDING;index" json:"status"`
	TransactionID *string           `json:"transaction_id,omitempty"`
	Metadata      datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	ProcessedAt   *time.Time        `json:"processed_at,omitempty"`

	UserID     uint `gorm:"index;not null" json:"user_id"`
	DonationID uint `gorm:"index;not null" json:"donation_id"`

	User     *User     `gorm:"foreignKey:UserID" json:"-"`
	Donation *Donation `gorm:"foreignKey:DonationID" json:"-"`
}

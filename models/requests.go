package models

// PaymentRequest is the payload from the frontend to start a donation payment.
// Method-specific blocks are required depending on PaymentMethod.
type PaymentRequest struct {
	Amount        float64                `json:"amount" validate:"required,gt=0"`
	Currency      string                 `json:"currency" validate:"omitempty,oneof=GHS NGN USD EUR"`
	PaymentMethod string                 `json:"paymentMethod" validate:"required,oneof=MOBILE_MONEY BANK_TRANSFER DEBIT_CARD CASH"`
	Provider      string                 `json:"provider,omitempty"` // e.g. "MTN_MOMO", "VODAFONE_CASH"
	UserID        uint                   `json:"userId" validate:"required"`
	CauseID       uint                   `json:"causeId" validate:"required"`
	Message       string                 `json:"message,omitempty"`
	IsAnonymous   bool                   `json:"isAnonymous,omitempty"`
	Phone         string                 `json:"phone,omitempty"`
	BankDetails   *BankDetails           `json:"bankDetails,omitempty"`
	CardDetails   *CardDetails           `json:"cardDetails,omitempty"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
}

type BankDetails struct {
	AccountNumber string `json:"accountNumber" validate:"required"`
	AccountName   string `json:"accountName" validate:"required"`
	BankName      string `json:"bankName" validate:"required"`
}

type CardDetails struct {
	Number      string `json:"number" validate:"required,min=12"`
	ExpiryMonth int    `json:"expiryMonth" validate:"required,min=1,max=12"`
	ExpiryYear  int    `json:"expiryYear" validate:"required"`
	CVV         string `json:"cvv" validate:"required,len=3"`
	HolderName  string `json:"holderName" validate:"required"`
}

// PaymentResult is what the processors hand back to the route layer.
type PaymentResult struct {
	Success       bool   `json:"success"`
	Reference     string `json:"reference"`
	Status        string `json:"status"`
	Message       string `json:"message"`
	TransactionID string `json:"transactionId,omitempty"`
	Instructions  string `json:"instructions,omitempty"`
}

type CheckoutRequest struct {
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	Currency    string  `json:"currency" validate:"omitempty,oneof=GHS NGN USD EUR"`
	CauseID     uint    `json:"causeId" validate:"required"`
	Message     string  `json:"message,omitempty"`
	IsAnonymous bool    `json:"isAnonymous,omitempty"`
	CallbackURL string  `json:"callbackUrl,omitempty"`
}

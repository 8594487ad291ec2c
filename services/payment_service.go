package services

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/givehub/givehub-backend/models"
	"github.com/givehub/givehub-backend/paystack"
)

var (
	ErrPaymentNotFound  = errors.New("payment not found")
	ErrCauseNotFound    = errors.New("cause not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrAlreadyProcessed = errors.New("payment already processed")
)

// ValidationError marks a bad request (missing method-specific fields and the
// like) so the route layer can answer 400 instead of 500.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Simulated gateway acceptance rates for the direct (non-hosted) methods.
// Stand-ins until a real provider integration lands behind the same dispatch.
const (
	mobileMoneySuccessRate = 0.90
	debitCardSuccessRate   = 0.95
)

// Mailer is the slice of the mailer the payment service needs for receipts.
type Mailer interface {
	Send(to, subject, body string) error
}

type PaymentService struct {
	DB      *gorm.DB
	Gateway paystack.API
	Mailer  Mailer // optional; receipts are skipped when nil

	// randFloat overrides the simulation RNG in tests.
	randFloat func() float64
}

func NewPaymentService(db *gorm.DB, gateway paystack.API, mailer Mailer) *PaymentService {
	return &PaymentService{DB: db, Gateway: gateway, Mailer: mailer, randFloat: rand.Float64}
}

// ProcessPayment dispatches on payment method. Every path creates exactly one
// Donation and one Payment, both starting PENDING.
func (s *PaymentService) ProcessPayment(req models.PaymentRequest) (*models.PaymentResult, error) {
	switch req.PaymentMethod {
	case models.MethodMobileMoney:
		return s.processMobileMoney(req)
	case models.MethodBankTransfer:
		return s.processBankTransfer(req)
	case models.MethodDebitCard:
		return s.processDebitCard(req)
	case models.MethodCash:
		return s.processCash(req)
	default:
		return nil, &ValidationError{Msg: "unsupported paymentMethod: " + req.PaymentMethod}
	}
}

func (s *PaymentService) processMobileMoney(req models.PaymentRequest) (*models.PaymentResult, error) {
	if req.Phone == "" {
		return nil, &ValidationError{Msg: "phone is required for mobile money payments"}
	}

	meta := datatypes.JSONMap{"phone": req.Phone}
	payment, err := s.createPendingPair(req, "GH", meta)
	if err != nil {
		return nil, err
	}

	if s.rand() < mobileMoneySuccessRate {
		txnID := NewTransactionID()
		if _, err := s.CompletePayment(payment.Reference, CompletionDetails{TransactionID: txnID}); err != nil {
			return nil, fmt.Errorf("complete mobile money payment: %w", err)
		}
		return &models.PaymentResult{
			Success:       true,
			Reference:     payment.Reference,
			Status:        models.StatusCompleted,
			TransactionID: txnID,
			Message:       "Mobile money payment completed",
		}, nil
	}

	if err := s.FailPayment(payment.Reference, "mobile money charge declined"); err != nil {
		return nil, fmt.Errorf("fail mobile money payment: %w", err)
	}
	return &models.PaymentResult{
		Success:   false,
		Reference: payment.Reference,
		Status:    models.StatusFailed,
		Message:   "Mobile money payment failed",
	}, nil
}

func (s *PaymentService) processDebitCard(req models.PaymentRequest) (*models.PaymentResult, error) {
	card := req.CardDetails
	if card == nil || card.Number == "" || card.CVV == "" || card.HolderName == "" ||
		card.ExpiryMonth == 0 || card.ExpiryYear == 0 {
		return nil, &ValidationError{Msg: "card number, expiry, cvv and holder name are required for card payments"}
	}

	last4 := card.Number
	if len(last4) > 4 {
		last4 = last4[len(last4)-4:]
	}
	meta := datatypes.JSONMap{"card_last4": last4, "card_holder": card.HolderName}

	payment, err := s.createPendingPair(req, "GH", meta)
	if err != nil {
		return nil, err
	}

	if s.rand() < debitCardSuccessRate {
		txnID := NewTransactionID()
		if _, err := s.CompletePayment(payment.Reference, CompletionDetails{TransactionID: txnID}); err != nil {
			return nil, fmt.Errorf("complete card payment: %w", err)
		}
		return &models.PaymentResult{
			Success:       true,
			Reference:     payment.Reference,
			Status:        models.StatusCompleted,
			TransactionID: txnID,
			Message:       "Card payment completed",
		}, nil
	}

	if err := s.FailPayment(payment.Reference, "card charge declined"); err != nil {
		return nil, fmt.Errorf("fail card payment: %w", err)
	}
	return &models.PaymentResult{
		Success:   false,
		Reference: payment.Reference,
		Status:    models.StatusFailed,
		Message:   "Card payment failed",
	}, nil
}

func (s *PaymentService) processBankTransfer(req models.PaymentRequest) (*models.PaymentResult, error) {
	bank := req.BankDetails
	if bank == nil || bank.AccountNumber == "" || bank.AccountName == "" || bank.BankName == "" {
		return nil, &ValidationError{Msg: "account number, account name and bank name are required for bank transfers"}
	}

	meta := datatypes.JSONMap{
		"account_number": bank.AccountNumber,
		"account_name":   bank.AccountName,
		"bank_name":      bank.BankName,
	}
	payment, err := s.createPendingPair(req, "GH", meta)
	if err != nil {
		return nil, err
	}

	return &models.PaymentResult{
		Success:   true,
		Reference: payment.Reference,
		Status:    models.StatusPending,
		Message:   "Bank transfer recorded",
		Instructions: fmt.Sprintf(
			"Transfer %.2f %s quoting reference %s. The donation completes once an administrator confirms the transfer.",
			req.Amount, payment.Currency, payment.Reference),
	}, nil
}

func (s *PaymentService) processCash(req models.PaymentRequest) (*models.PaymentResult, error) {
	payment, err := s.createPendingPair(req, "GH", datatypes.JSONMap{})
	if err != nil {
		return nil, err
	}

	return &models.PaymentResult{
		Success:   true,
		Reference: payment.Reference,
		Status:    models.StatusPending,
		Message:   "Cash donation recorded",
		Instructions: fmt.Sprintf(
			"Hand the cash to a collection agent quoting reference %s.", payment.Reference),
	}, nil
}

// createPendingPair creates the Donation and Payment rows for a request,
// both PENDING, inside one transaction.
func (s *PaymentService) createPendingPair(req models.PaymentRequest, refPrefix string, meta datatypes.JSONMap) (*models.Payment, error) {
	currency := req.Currency
	if currency == "" {
		currency = "GHS"
	}

	var payment models.Payment
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var cause models.Cause
		if err := tx.First(&cause, req.CauseID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCauseNotFound
			}
			return err
		}
		var user models.User
		if err := tx.First(&user, req.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		donation := models.Donation{
			Amount:      req.Amount,
			Currency:    currency,
			Message:     req.Message,
			IsAnonymous: req.IsAnonymous,
			Status:      models.StatusPending,
			UserID:      req.UserID,
			CauseID:     req.CauseID,
		}
		if err := tx.Create(&donation).Error; err != nil {
			return err
		}

		for k, v := range req.Metadata {
			meta[k] = v
		}
		payment = models.Payment{
			Amount:     req.Amount,
			Currency:   currency,
			Method:     req.PaymentMethod,
			Provider:   req.Provider,
			Reference:  GenerateReference(refPrefix),
			Status:     models.StatusPending,
			Metadata:   meta,
			UserID:     req.UserID,
			DonationID: donation.ID,
		}
		return tx.Create(&payment).Error
	})
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// CompletionDetails carries the gateway-reported facts recorded when a
// payment settles.
type CompletionDetails struct {
	TransactionID string
	Provider      string
	Channel       string
	Fees          float64
}

// CompletePayment flips a PENDING payment and its donation to COMPLETED and
// increments the cause's raised amount, all in one transaction. The
// conditional status update doubles as the idempotency guard: a replayed
// webhook or racing admin confirmation finds zero affected rows and the cause
// is never incremented twice.
func (s *PaymentService) CompletePayment(reference string, details CompletionDetails) (*models.Payment, error) {
	var payment models.Payment

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		updates := map[string]interface{}{
			"status":       models.StatusCompleted,
			"processed_at": &now,
		}
		if details.TransactionID != "" {
			updates["transaction_id"] = details.TransactionID
		}
		if details.Provider != "" {
			updates["provider"] = details.Provider
		}

		res := tx.Model(&models.Payment{}).
			Where("reference = ? AND status = ?", reference, models.StatusPending).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var existing models.Payment
			if err := tx.Where("reference = ?", reference).First(&existing).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrPaymentNotFound
				}
				return err
			}
			return ErrAlreadyProcessed
		}

		if err := tx.Where("reference = ?", reference).First(&payment).Error; err != nil {
			return err
		}
		if details.Channel != "" || details.Fees > 0 {
			meta := payment.Metadata
			if meta == nil {
				meta = datatypes.JSONMap{}
			}
			if details.Channel != "" {
				meta["channel"] = details.Channel
			}
			if details.Fees > 0 {
				meta["fees"] = details.Fees
			}
			if err := tx.Model(&payment).Update("metadata", meta).Error; err != nil {
				return err
			}
		}

		var donation models.Donation
		if err := tx.First(&donation, payment.DonationID).Error; err != nil {
			return err
		}
		if err := tx.Model(&donation).Updates(map[string]interface{}{
			"status":     models.StatusCompleted,
			"donated_at": &now,
		}).Error; err != nil {
			return err
		}

		return tx.Model(&models.Cause{}).
			Where("id = ?", donation.CauseID).
			Update("raised_amount", gorm.Expr("raised_amount + ?", donation.Amount)).Error
	})
	if err != nil {
		return nil, err
	}

	s.sendReceipt(&payment)
	return &payment, nil
}

// FailPayment marks a PENDING payment and its donation FAILED, recording the
// reason in the payment metadata. Terminal statuses are left alone.
func (s *PaymentService) FailPayment(reference, reason string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var payment models.Payment
		if err := tx.Where("reference = ?", reference).First(&payment).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPaymentNotFound
			}
			return err
		}

		meta := payment.Metadata
		if meta == nil {
			meta = datatypes.JSONMap{}
		}
		meta["failure_reason"] = reason

		res := tx.Model(&models.Payment{}).
			Where("reference = ? AND status = ?", reference, models.StatusPending).
			Updates(map[string]interface{}{
				"status":   models.StatusFailed,
				"metadata": meta,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyProcessed
		}

		return tx.Model(&models.Donation{}).
			Where("id = ?", payment.DonationID).
			Update("status", models.StatusFailed).Error
	})
}

// VerifyBankTransfer is the admin confirmation path: completes the payment
// identified by reference with the operator-supplied transaction id. Replays
// surface ErrAlreadyProcessed instead of double-counting.
func (s *PaymentService) VerifyBankTransfer(reference, transactionID string) (*models.Payment, error) {
	return s.CompletePayment(reference, CompletionDetails{TransactionID: transactionID})
}

// GetByReference returns the payment status projection for polling clients.
func (s *PaymentService) GetByReference(reference string) (*models.Payment, error) {
	var payment models.Payment
	if err := s.DB.Where("reference = ?", reference).First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &payment, nil
}

func (s *PaymentService) rand() float64 {
	if s.randFloat != nil {
		return s.randFloat()
	}
	return rand.Float64()
}

// sendReceipt emails the donor after completion when their settings allow.
// Fire-and-forget: the payment path never blocks on the mail provider.
func (s *PaymentService) sendReceipt(payment *models.Payment) {
	if s.Mailer == nil {
		return
	}
	go func() {
		var user models.User
		if err := s.DB.Preload("Settings").First(&user, payment.UserID).Error; err != nil {
			log.Printf("receipt: load user %d failed: %v", payment.UserID, err)
			return
		}
		if user.Settings != nil && !user.Settings.EmailReceipts {
			return
		}
		body := fmt.Sprintf(
			"<p>Thank you for your donation of %.2f %s.</p><p>Reference: %s</p>",
			payment.Amount, payment.Currency, payment.Reference)
		if err := s.Mailer.Send(user.Email, "Donation receipt", body); err != nil {
			log.Printf("receipt: send to %s failed: %v", user.Email, err)
		}
	}()
}

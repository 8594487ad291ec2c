package services

import (
	"errors"
	"fmt"

	"gorm.io/datatypes"

	"github.com/givehub/givehub-backend/models"
	"github.com/givehub/givehub-backend/paystack"
)

// CheckoutSession is what the hosted-checkout endpoint returns to the client.
type CheckoutSession struct {
	Donation         *models.Donation `json:"donation"`
	Payment          *models.Payment  `json:"payment"`
	AuthorizationURL string           `json:"authorizationUrl"`
}

// StartCheckout creates the PENDING Donation/Payment pair and initializes a
// Paystack hosted checkout for it. The gateway gets the amount in minor units
// and our reference so the webhook can find its way back.
func (s *PaymentService) StartCheckout(user *models.User, req models.CheckoutRequest) (*CheckoutSession, error) {
	if s.Gateway == nil {
		return nil, errors.New("checkout gateway is not configured")
	}

	currency := req.Currency
	if currency == "" {
		currency = "GHS"
	}

	payment, err := s.createPendingPair(models.PaymentRequest{
		Amount:        req.Amount,
		Currency:      currency,
		PaymentMethod: models.MethodPaystack,
		Provider:      "PAYSTACK",
		UserID:        user.ID,
		CauseID:       req.CauseID,
		Message:       req.Message,
		IsAnonymous:   req.IsAnonymous,
	}, "DON_", datatypes.JSONMap{"channel": "hosted_checkout"})
	if err != nil {
		return nil, err
	}

	init, err := s.Gateway.Initialize(paystack.InitializeRequest{
		Amount:      paystack.ConvertToKobo(req.Amount, currency),
		Email:       user.Email,
		Currency:    currency,
		Reference:   payment.Reference,
		CallbackURL: req.CallbackURL,
		Metadata: map[string]interface{}{
			"donation_id": payment.DonationID,
			"cause_id":    req.CauseID,
			"user_id":     user.ID,
		},
	})
	if err != nil {
		// The pair stays PENDING; the client can retry with a fresh request.
		return nil, fmt.Errorf("initialize checkout: %w", err)
	}

	var donation models.Donation
	if err := s.DB.First(&donation, payment.DonationID).Error; err != nil {
		return nil, err
	}

	return &CheckoutSession{
		Donation:         &donation,
		Payment:          payment,
		AuthorizationURL: init.AuthorizationURL,
	}, nil
}

// SettleFromGateway reconciles a local payment against the gateway's
// authoritative charge state, as reported by Verify. Used by both the webhook
// path and the client polling endpoint.
func (s *PaymentService) SettleFromGateway(data *paystack.VerifyData) (*models.Payment, error) {
	switch data.Status {
	case "success":
		txnID := fmt.Sprintf("%d", data.GatewayID)
		payment, err := s.CompletePayment(data.Reference, CompletionDetails{
			TransactionID: txnID,
			Provider:      "PAYSTACK",
			Channel:       data.Channel,
			Fees:          float64(data.Fees) / 100,
		})
		if errors.Is(err, ErrAlreadyProcessed) {
			return s.GetByReference(data.Reference)
		}
		return payment, err
	case "failed", "abandoned":
		err := s.FailPayment(data.Reference, "gateway reported "+data.Status+": "+data.Message)
		if err != nil && !errors.Is(err, ErrAlreadyProcessed) {
			return nil, err
		}
		return s.GetByReference(data.Reference)
	default:
		// Still pending on the gateway side; report local state unchanged.
		return s.GetByReference(data.Reference)
	}
}

// VerifyCheckout re-verifies a reference with the gateway and settles the
// local rows to match. Backs the /payment/verify polling page.
func (s *PaymentService) VerifyCheckout(reference string) (*models.Payment, error) {
	if s.Gateway == nil {
		return nil, errors.New("checkout gateway is not configured")
	}
	data, err := s.Gateway.Verify(reference)
	if err != nil {
		return nil, err
	}
	return s.SettleFromGateway(data)
}

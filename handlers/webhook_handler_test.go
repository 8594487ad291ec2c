package handlers

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/givehub/givehub-backend/models"
	"github.com/givehub/givehub-backend/paystack"
	"github.com/givehub/givehub-backend/services"
)

const testWebhookSecret = "whsec_test"

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:h_%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.UserSettings{},
		&models.Cause{},
		&models.Donation{},
		&models.Payment{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func seedUserAndCause(t *testing.T, db *gorm.DB) (models.User, models.Cause) {
	t.Helper()

	user := models.User{Name: "Kofi Boateng", Email: "kofi@example.com", PasswordHash: "x", Role: models.RoleDonor}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	cause := models.Cause{Title: "School Meals", TargetAmount: 100, Status: models.CauseActive}
	if err := db.Create(&cause).Error; err != nil {
		t.Fatalf("seed cause: %v", err)
	}
	return user, cause
}

// stubGateway satisfies paystack.API without the network.
type stubGateway struct {
	initResp   *paystack.InitializeResponse
	verifyData map[string]*paystack.VerifyData
	verifyErr  error
}

func (s *stubGateway) Initialize(req paystack.InitializeRequest) (*paystack.InitializeResponse, error) {
	if s.initResp != nil {
		resp := *s.initResp
		resp.Reference = req.Reference
		return &resp, nil
	}
	return &paystack.InitializeResponse{
		AuthorizationURL: "https://checkout.paystack.com/test",
		AccessCode:       "test",
		Reference:        req.Reference,
	}, nil
}

func (s *stubGateway) Verify(reference string) (*paystack.VerifyData, error) {
	if s.verifyErr != nil {
		return nil, s.verifyErr
	}
	if data, ok := s.verifyData[reference]; ok {
		return data, nil
	}
	return &paystack.VerifyData{Status: "pending", Reference: reference}, nil
}

func signBody(body []byte) string {
	mac := hmac.New(sha512.New, []byte(testWebhookSecret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func newWebhookApp(svc *services.PaymentService, gateway paystack.API) *fiber.App {
	app := fiber.New()
	wh := NewWebhookHandler(svc, gateway, testWebhookSecret)
	app.Post("/api/webhooks/paystack", wh.HandlePaystack)
	return app
}

func postWebhook(t *testing.T, app *fiber.App, body []byte, signature string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/paystack", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("x-paystack-signature", signature)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	return resp
}

// startPendingCheckout creates a PENDING donation/payment pair through the
// hosted checkout path and returns its reference.
func startPendingCheckout(t *testing.T, svc *services.PaymentService, user *models.User, causeID uint, amount float64) string {
	t.Helper()
	session, err := svc.StartCheckout(user, models.CheckoutRequest{Amount: amount, CauseID: causeID})
	if err != nil {
		t.Fatalf("StartCheckout: %v", err)
	}
	return session.Payment.Reference
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	db := newTestDB(t)
	user, cause := seedUserAndCause(t, db)
	gateway := &stubGateway{}
	svc := services.NewPaymentService(db, gateway, nil)
	app := newWebhookApp(svc, gateway)

	ref := startPendingCheckout(t, svc, &user, cause.ID, 30)

	body := []byte(`{"event":"charge.success","data":{"reference":"` + ref + `"}}`)

	t.Run("missing signature", func(t *testing.T) {
		resp := postWebhook(t, app, body, "")
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", resp.StatusCode)
		}
	})

	t.Run("tampered body", func(t *testing.T) {
		goodSig := signBody(body)
		tampered := []byte(`{"event":"charge.success","data":{"reference":"SOMETHING_ELSE"}}`)
		resp := postWebhook(t, app, tampered, goodSig)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", resp.StatusCode)
		}
	})

	// Nothing may have been mutated.
	var payment models.Payment
	db.Where("reference = ?", ref).First(&payment)
	if payment.Status != models.StatusPending {
		t.Errorf("payment status = %q, want PENDING after rejected webhooks", payment.Status)
	}
	var got models.Cause
	db.First(&got, cause.ID)
	if got.RaisedAmount != 0 {
		t.Errorf("raised amount = %v, want 0", got.RaisedAmount)
	}
}

func TestWebhookChargeSuccess(t *testing.T) {
	db := newTestDB(t)
	user, cause := seedUserAndCause(t, db)
	gateway := &stubGateway{verifyData: map[string]*paystack.VerifyData{}}
	svc := services.NewPaymentService(db, gateway, nil)
	app := newWebhookApp(svc, gateway)

	ref := startPendingCheckout(t, svc, &user, cause.ID, 30)
	gateway.verifyData[ref] = &paystack.VerifyData{
		Status:    "success",
		Reference: ref,
		Amount:    3000,
		Currency:  "GHS",
		Channel:   "card",
		GatewayID: 42,
	}

	body := []byte(`{"event":"charge.success","data":{"reference":"` + ref + `"}}`)

	resp := postWebhook(t, app, body, signBody(body))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var payment models.Payment
	db.Where("reference = ?", ref).First(&payment)
	if payment.Status != models.StatusCompleted {
		t.Fatalf("payment status = %q, want COMPLETED", payment.Status)
	}
	if payment.TransactionID == nil || *payment.TransactionID != "42" {
		t.Errorf("transaction id = %v, want 42", payment.TransactionID)
	}

	var donation models.Donation
	db.First(&donation, payment.DonationID)
	if donation.Status != models.StatusCompleted {
		t.Errorf("donation status = %q, want COMPLETED", donation.Status)
	}

	var got models.Cause
	db.First(&got, cause.ID)
	if got.RaisedAmount != 30 {
		t.Errorf("raised amount = %v, want 30", got.RaisedAmount)
	}

	// Redelivery of the same event must not double-count.
	resp = postWebhook(t, app, body, signBody(body))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("redelivery status = %d, want 200", resp.StatusCode)
	}
	db.First(&got, cause.ID)
	if got.RaisedAmount != 30 {
		t.Errorf("raised amount after redelivery = %v, want 30", got.RaisedAmount)
	}
}

func TestWebhookChargeFailed(t *testing.T) {
	db := newTestDB(t)
	user, cause := seedUserAndCause(t, db)
	gateway := &stubGateway{}
	svc := services.NewPaymentService(db, gateway, nil)
	app := newWebhookApp(svc, gateway)

	ref := startPendingCheckout(t, svc, &user, cause.ID, 30)

	body := []byte(`{"event":"charge.failed","data":{"reference":"` + ref + `"}}`)
	resp := postWebhook(t, app, body, signBody(body))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var payment models.Payment
	db.Where("reference = ?", ref).First(&payment)
	if payment.Status != models.StatusFailed {
		t.Errorf("payment status = %q, want FAILED", payment.Status)
	}
	var got models.Cause
	db.First(&got, cause.ID)
	if got.RaisedAmount != 0 {
		t.Errorf("raised amount = %v, want 0", got.RaisedAmount)
	}
}

func TestWebhookIgnoresUnknownEvents(t *testing.T) {
	db := newTestDB(t)
	gateway := &stubGateway{}
	svc := services.NewPaymentService(db, gateway, nil)
	app := newWebhookApp(svc, gateway)

	body := []byte(`{"event":"subscription.create","data":{}}`)
	resp := postWebhook(t, app, body, signBody(body))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}

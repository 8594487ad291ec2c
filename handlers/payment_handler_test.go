package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/givehub/givehub-backend/models"
	"github.com/givehub/givehub-backend/services"
)

func newPaymentApp(svc *services.PaymentService) *fiber.App {
	app := fiber.New()
	h := NewPaymentHandler(svc)
	app.Post("/api/payments", h.CreatePayment)
	app.Get("/api/payments", h.GetPayment)
	app.Post("/api/payments/verify", h.VerifyBankTransfer)
	return app
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return body
}

func TestCreatePaymentBankTransfer(t *testing.T) {
	db := newTestDB(t)
	user, cause := seedUserAndCause(t, db)
	svc := services.NewPaymentService(db, nil, nil)
	app := newPaymentApp(svc)

	payload := map[string]interface{}{
		"amount":        40,
		"paymentMethod": models.MethodBankTransfer,
		"userId":        user.ID,
		"causeId":       cause.ID,
		"bankDetails": map[string]string{
			"accountNumber": "0012345678",
			"accountName":   "Kofi Boateng",
			"bankName":      "GCB",
		},
	}
	raw, _ := json.Marshal(payload)

	req := httptest.NewRequest(http.MethodPost, "/api/payments", strings.NewReader(string(raw)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	if body["status"] != models.StatusPending {
		t.Errorf("status = %v, want PENDING", body["status"])
	}
	reference, _ := body["reference"].(string)
	if reference == "" {
		t.Fatal("expected a reference in the response")
	}

	// Status projection endpoint sees the same state.
	req = httptest.NewRequest(http.MethodGet, "/api/payments?reference="+reference, nil)
	resp, err = app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d, want 200", resp.StatusCode)
	}
	got := decodeBody(t, resp)
	if got["status"] != models.StatusPending {
		t.Errorf("projected status = %v, want PENDING", got["status"])
	}
}

func TestCreatePaymentValidation(t *testing.T) {
	db := newTestDB(t)
	user, cause := seedUserAndCause(t, db)
	svc := services.NewPaymentService(db, nil, nil)
	app := newPaymentApp(svc)

	cases := []struct {
		name    string
		payload map[string]interface{}
	}{
		{"missing amount", map[string]interface{}{
			"paymentMethod": models.MethodMobileMoney, "userId": user.ID, "causeId": cause.ID, "phone": "+233501234567",
		}},
		{"unsupported method", map[string]interface{}{
			"amount": 10, "paymentMethod": "CRYPTO", "userId": user.ID, "causeId": cause.ID,
		}},
		{"mobile money without phone", map[string]interface{}{
			"amount": 10, "paymentMethod": models.MethodMobileMoney, "userId": user.ID, "causeId": cause.ID,
		}},
		{"bank transfer without details", map[string]interface{}{
			"amount": 10, "paymentMethod": models.MethodBankTransfer, "userId": user.ID, "causeId": cause.ID,
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw, _ := json.Marshal(tc.payload)
			req := httptest.NewRequest(http.MethodPost, "/api/payments", strings.NewReader(string(raw)))
			req.Header.Set("Content-Type", "application/json")
			resp, err := app.Test(req, -1)
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
		})
	}

	var payments int64
	db.Model(&models.Payment{}).Count(&payments)
	if payments != 0 {
		t.Errorf("rejected requests must not create payment rows, got %d", payments)
	}
}

func TestVerifyBankTransferEndpoint(t *testing.T) {
	db := newTestDB(t)
	user, cause := seedUserAndCause(t, db)
	svc := services.NewPaymentService(db, nil, nil)
	app := newPaymentApp(svc)

	result, err := svc.ProcessPayment(models.PaymentRequest{
		Amount:        20,
		PaymentMethod: models.MethodBankTransfer,
		UserID:        user.ID,
		CauseID:       cause.ID,
		BankDetails:   &models.BankDetails{AccountNumber: "1", AccountName: "a", BankName: "b"},
	})
	if err != nil {
		t.Fatalf("seed transfer: %v", err)
	}

	post := func(reference string) *http.Response {
		raw, _ := json.Marshal(map[string]string{"reference": reference, "transactionId": "BANK-1"})
		req := httptest.NewRequest(http.MethodPost, "/api/payments/verify", strings.NewReader(string(raw)))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req, -1)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		return resp
	}

	resp := post(result.Reference)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	// Replay gets a conflict, not a second increment.
	resp = post(result.Reference)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("replay status = %d, want 409", resp.StatusCode)
	}

	resp = post("NO-SUCH-REF")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown reference status = %d, want 404", resp.StatusCode)
	}

	var got models.Cause
	db.First(&got, cause.ID)
	if got.RaisedAmount != 20 {
		t.Errorf("raised amount = %v, want 20", got.RaisedAmount)
	}
}

func TestGetPaymentNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewPaymentService(db, nil, nil)
	app := newPaymentApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/payments?reference=MISSING", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/payments", nil)
	resp, err = app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing reference status = %d, want 400", resp.StatusCode)
	}
}

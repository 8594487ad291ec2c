package paystack

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestConvertToKobo(t *testing.T) {
	cases := []struct {
		amount   float64
		currency string
		want     int64
	}{
		{10, "GHS", 1000},
		{0.5, "USD", 50},
		{99.99, "NGN", 9999},
		{0.005, "EUR", 1}, // rounds to nearest minor unit
	}
	for _, tc := range cases {
		if got := ConvertToKobo(tc.amount, tc.currency); got != tc.want {
			t.Errorf("ConvertToKobo(%v, %s) = %d, want %d", tc.amount, tc.currency, got, tc.want)
		}
	}
}

func sign(payload []byte, secret string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyWebhookSignature(t *testing.T) {
	secret := "whsec_test"
	payload := []byte(`{"event":"charge.success","data":{"reference":"GH123"}}`)

	if !VerifyWebhookSignature(payload, sign(payload, secret), secret) {
		t.Error("valid signature rejected")
	}

	tampered := []byte(`{"event":"charge.success","data":{"reference":"GH999"}}`)
	if VerifyWebhookSignature(tampered, sign(payload, secret), secret) {
		t.Error("tampered payload accepted")
	}

	if VerifyWebhookSignature(payload, sign(payload, "wrong"), secret) {
		t.Error("signature with wrong secret accepted")
	}

	if VerifyWebhookSignature(payload, "", secret) {
		t.Error("empty signature accepted")
	}
}

func TestInitialize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transaction/initialize" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk_test" {
			t.Errorf("authorization header = %q", got)
		}

		var req InitializeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Amount != 2500 {
			t.Errorf("amount = %d, want 2500", req.Amount)
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  true,
			"message": "Authorization URL created",
			"data": map[string]interface{}{
				"authorization_url": "https://checkout.paystack.com/abc123",
				"access_code":       "abc123",
				"reference":         req.Reference,
			},
		})
	}))
	defer srv.Close()

	c := NewClient("sk_test")
	c.BaseURL = srv.URL

	resp, err := c.Initialize(InitializeRequest{
		Amount:    2500,
		Email:     "donor@example.com",
		Reference: "DON_TEST1",
	})
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if resp.AuthorizationURL != "https://checkout.paystack.com/abc123" {
		t.Errorf("authorization url = %q", resp.AuthorizationURL)
	}
	if resp.Reference != "DON_TEST1" {
		t.Errorf("reference = %q", resp.Reference)
	}
}

func TestInitializeGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  false,
			"message": "Invalid amount",
		})
	}))
	defer srv.Close()

	c := NewClient("sk_test")
	c.BaseURL = srv.URL

	_, err := c.Initialize(InitializeRequest{Amount: -1, Email: "x@example.com", Reference: "R"})
	if err == nil {
		t.Fatal("expected error on non-2xx response")
	}
}

func TestVerify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transaction/verify/DON_TEST1" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  true,
			"message": "Verification successful",
			"data": map[string]interface{}{
				"status":           "success",
				"reference":        "DON_TEST1",
				"amount":           2500,
				"currency":         "GHS",
				"channel":          "mobile_money",
				"fees":             37,
				"id":               1234567,
				"gateway_response": "Approved",
			},
		})
	}))
	defer srv.Close()

	c := NewClient("sk_test")
	c.BaseURL = srv.URL

	data, err := c.Verify("DON_TEST1")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if data.Status != "success" || data.Amount != 2500 || data.Channel != "mobile_money" {
		t.Errorf("unexpected verify data: %+v", data)
	}
}

// Package paystack wraps the Paystack transaction REST endpoints used by the
// hosted-checkout flow: initialize, verify, and webhook signature checks.
package paystack

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"
)

const DefaultBaseURL = "https://api.paystack.co"

// API is the subset of the gateway the payment service depends on. Handlers
// and services take this interface so tests can stub the gateway out.
type API interface {
	Initialize(req InitializeRequest) (*InitializeResponse, error)
	Verify(reference string) (*VerifyData, error)
}

type Client struct {
	BaseURL   string
	SecretKey string
	HTTP      *http.Client
}

func NewClient(secretKey string) *Client {
	return &Client{
		BaseURL:   DefaultBaseURL,
		SecretKey: secretKey,
		HTTP:      &http.Client{Timeout: 30 * time.Second},
	}
}

type InitializeRequest struct {
	Amount      int64                  `json:"amount"` // minor units
	Email       string                 `json:"email"`
	Currency    string                 `json:"currency,omitempty"`
	Reference   string                 `json:"reference"`
	CallbackURL string                 `json:"callback_url,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

type InitializeResponse struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

// VerifyData is the authoritative charge state as reported by the gateway.
type VerifyData struct {
	Status    string                 `json:"status"` // "success", "failed", "abandoned"
	Reference string                 `json:"reference"`
	Amount    int64                  `json:"amount"`
	Currency  string                 `json:"currency"`
	Channel   string                 `json:"channel"`
	Fees      int64                  `json:"fees"`
	PaidAt    string                 `json:"paid_at"`
	GatewayID int64                  `json:"id"`
	Message   string                 `json:"gateway_response"`
	Metadata  map[string]interface{} `json:"metadata"`
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// ConvertToKobo converts a major-unit amount to the gateway's minor units.
// All supported currencies (GHS/NGN/USD/EUR) are uniform x100.
func ConvertToKobo(amount float64, currency string) int64 {
	return int64(math.Round(amount * 100))
}

func (c *Client) Initialize(req InitializeRequest) (*InitializeResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	env, err := c.do(http.MethodPost, "/transaction/initialize", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var data InitializeResponse
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, fmt.Errorf("paystack: decode initialize response: %w", err)
	}
	return &data, nil
}

func (c *Client) Verify(reference string) (*VerifyData, error) {
	env, err := c.do(http.MethodGet, "/transaction/verify/"+reference, nil)
	if err != nil {
		return nil, err
	}

	var data VerifyData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, fmt.Errorf("paystack: decode verify response: %w", err)
	}
	return &data, nil
}

func (c *Client) do(method, path string, body io.Reader) (*envelope, error) {
	req, err := http.NewRequest(method, c.BaseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.SecretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("paystack: request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("paystack: read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("paystack: decode response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 || !env.Status {
		return nil, fmt.Errorf("paystack: %s %s returned %d: %s", method, path, resp.StatusCode, env.Message)
	}
	return &env, nil
}

// VerifyWebhookSignature checks the x-paystack-signature header: HMAC-SHA512
// of the raw request body keyed with the webhook secret. Comparison is
// constant-time.
func VerifyWebhookSignature(payload []byte, signature, secret string) bool {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

package handlers

import (
	"encoding/json"
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/givehub/givehub-backend/paystack"
	"github.com/givehub/givehub-backend/services"
)

type WebhookHandler struct {
	Payments      *services.PaymentService
	Gateway       paystack.API
	WebhookSecret string
}

func NewWebhookHandler(svc *services.PaymentService, gateway paystack.API, secret string) *WebhookHandler {
	return &WebhookHandler{Payments: svc, Gateway: gateway, WebhookSecret: secret}
}

type webhookEvent struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
		Status    string `json:"status"`
	} `json:"data"`
}

// HandlePaystack processes gateway webhooks.
// Flow:
//   - reject with 401 unless the x-paystack-signature HMAC matches the raw body
//   - for charge.success, re-verify the charge with the gateway before
//     trusting the payload, then settle locally
//   - return 5xx on internal failure so the gateway's retry redelivers;
//     200 when processed or intentionally ignored
func (h *WebhookHandler) HandlePaystack(c *fiber.Ctx) error {
	body := c.Body()

	signature := c.Get("x-paystack-signature")
	if signature == "" || !paystack.VerifyWebhookSignature(body, signature, h.WebhookSecret) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid signature"})
	}

	var event webhookEvent
	if err := json.Unmarshal(body, &event); err != nil || event.Event == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload: missing event"})
	}

	switch event.Event {
	case "charge.success":
		if event.Data.Reference == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload: missing reference"})
		}

		// Never trust the webhook body alone; confirm the charge with the
		// gateway before completing anything.
		data, err := h.Gateway.Verify(event.Data.Reference)
		if err != nil {
			log.Printf("webhook: verify charge failed reference=%s err=%v", event.Data.Reference, err)
			return c.SendStatus(fiber.StatusInternalServerError)
		}

		if _, err := h.Payments.SettleFromGateway(data); err != nil {
			if errors.Is(err, services.ErrPaymentNotFound) {
				log.Printf("webhook: unknown reference=%s", event.Data.Reference)
				return c.SendStatus(fiber.StatusOK)
			}
			log.Printf("webhook: settle failed reference=%s err=%v", event.Data.Reference, err)
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		log.Printf("webhook: processed reference=%s status=%s", data.Reference, data.Status)

	case "charge.failed":
		if event.Data.Reference == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload: missing reference"})
		}
		err := h.Payments.FailPayment(event.Data.Reference, "gateway webhook reported charge.failed")
		if err != nil && !errors.Is(err, services.ErrAlreadyProcessed) && !errors.Is(err, services.ErrPaymentNotFound) {
			log.Printf("webhook: fail payment reference=%s err=%v", event.Data.Reference, err)
			return c.SendStatus(fiber.StatusInternalServerError)
		}

	case "transfer.success", "transfer.failed", "transfer.reversed":
		// Settlement transfers to our own account; log and acknowledge.
		log.Printf("webhook: transfer event=%s reference=%s", event.Event, event.Data.Reference)

	default:
		// Unhandled event types are acknowledged so the gateway stops
		// redelivering them.
	}

	return c.SendStatus(fiber.StatusOK)
}

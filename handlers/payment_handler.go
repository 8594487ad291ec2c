package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/givehub/givehub-backend/middleware"
	"github.com/givehub/givehub-backend/models"
	"github.com/givehub/givehub-backend/services"
)

type PaymentHandler struct {
	Payments *services.PaymentService
}

func NewPaymentHandler(svc *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{Payments: svc}
}

// CreatePayment dispatches a donation payment to the method-specific
// processor.
func (h *PaymentHandler) CreatePayment(c *fiber.Ctx) error {
	var req models.PaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request: " + err.Error()})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationMessage(err)})
	}

	result, err := h.Payments.ProcessPayment(req)
	if err != nil {
		return paymentError(c, req.PaymentMethod, err)
	}
	return c.JSON(result)
}

// GetPayment returns the status projection for ?reference=.
func (h *PaymentHandler) GetPayment(c *fiber.Ctx) error {
	reference := c.Query("reference")
	if reference == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "reference is required"})
	}

	payment, err := h.Payments.GetByReference(reference)
	if err != nil {
		if errors.Is(err, services.ErrPaymentNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Payment not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve payment: " + err.Error()})
	}

	return c.JSON(fiber.Map{
		"reference":      payment.Reference,
		"status":         payment.Status,
		"amount":         payment.Amount,
		"currency":       payment.Currency,
		"payment_method": payment.Method,
		"transaction_id": payment.TransactionID,
		"processed_at":   payment.ProcessedAt,
	})
}

// VerifyBankTransfer is the admin confirmation of an out-of-band transfer.
func (h *PaymentHandler) VerifyBankTransfer(c *fiber.Ctx) error {
	var req struct {
		Reference     string `json:"reference" validate:"required"`
		TransactionID string `json:"transactionId" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request: " + err.Error()})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationMessage(err)})
	}

	payment, err := h.Payments.VerifyBankTransfer(req.Reference, req.TransactionID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPaymentNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Payment not found"})
		case errors.Is(err, services.ErrAlreadyProcessed):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Payment already processed"})
		default:
			log.Printf("verify transfer %s failed: %v", req.Reference, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to verify bank transfer"})
		}
	}

	return c.JSON(fiber.Map{
		"message":   "Bank transfer verified",
		"reference": payment.Reference,
		"status":    payment.Status,
	})
}

// StartCheckout initializes a Paystack hosted checkout for the authenticated
// donor.
func (h *PaymentHandler) StartCheckout(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Not authenticated"})
	}

	var req models.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request: " + err.Error()})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationMessage(err)})
	}

	session, err := h.Payments.StartCheckout(user, req)
	if err != nil {
		if errors.Is(err, services.ErrCauseNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Cause not found"})
		}
		log.Printf("checkout: initialize for user %d failed: %v", user.ID, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Failed to initialize checkout: " + err.Error()})
	}

	return c.JSON(fiber.Map{
		"donation": session.Donation,
		"payment": fiber.Map{
			"authorizationUrl": session.AuthorizationURL,
			"reference":        session.Payment.Reference,
		},
	})
}

// VerifyCheckout backs the post-redirect polling page: re-verifies the
// reference with the gateway and settles local state to match.
func (h *PaymentHandler) VerifyCheckout(c *fiber.Ctx) error {
	reference := c.Query("reference")
	if reference == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "reference is required"})
	}

	payment, err := h.Payments.VerifyCheckout(reference)
	if err != nil {
		if errors.Is(err, services.ErrPaymentNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Payment not found"})
		}
		log.Printf("checkout: verify %s failed: %v", reference, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Failed to verify payment: " + err.Error()})
	}

	return c.JSON(fiber.Map{
		"reference": payment.Reference,
		"status":    payment.Status,
	})
}

func paymentError(c *fiber.Ctx, method string, err error) error {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": verr.Msg})
	case errors.Is(err, services.ErrCauseNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Cause not found"})
	case errors.Is(err, services.ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	default:
		log.Printf("payment: process %s failed: %v", method, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process " + method + " payment"})
	}
}

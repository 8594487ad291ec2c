package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/givehub/givehub-backend/middleware"
	"github.com/givehub/givehub-backend/models"
)

type DonationHandler struct {
	DB *gorm.DB
}

func NewDonationHandler(db *gorm.DB) *DonationHandler {
	return &DonationHandler{DB: db}
}

// ListDonations returns the authenticated user's donations, newest first.
func (h *DonationHandler) ListDonations(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Not authenticated"})
	}

	limit, offset := parseLimitOffset(c.Query("limit"), c.Query("offset"))
	status := c.Query("status")

	query := h.DB.Model(&models.Donation{}).Where("user_id = ?", user.ID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var totalCount int64
	if err := query.Count(&totalCount).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to count donations: " + err.Error()})
	}

	var donations []models.Donation
	dataQuery := h.DB.Model(&models.Donation{}).Where("user_id = ?", user.ID)
	if status != "" {
		dataQuery = dataQuery.Where("status = ?", status)
	}
	if err := dataQuery.Preload("Cause").
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&donations).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve donations: " + err.Error()})
	}

	return c.JSON(fiber.Map{
		"donations": donations,
		"pagination": fiber.Map{
			"total":  totalCount,
			"limit":  limit,
			"offset": offset,
		},
	})
}

func (h *DonationHandler) GetDonation(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Not authenticated"})
	}

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "id must be a positive integer"})
	}

	var donation models.Donation
	if err := h.DB.Preload("Cause").First(&donation, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Donation not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve donation: " + err.Error()})
	}

	// Donors see only their own rows; admins see everything.
	if donation.UserID != user.ID && user.Role != models.RoleAdmin {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Donation not found"})
	}
	return c.JSON(donation)
}

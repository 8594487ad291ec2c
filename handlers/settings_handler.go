package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/givehub/givehub-backend/middleware"
	"github.com/givehub/givehub-backend/models"
)

type SettingsHandler struct {
	DB *gorm.DB
}

func NewSettingsHandler(db *gorm.DB) *SettingsHandler {
	return &SettingsHandler{DB: db}
}

func (h *SettingsHandler) GetSettings(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Not authenticated"})
	}

	var settings models.UserSettings
	if err := h.DB.Where("user_id = ?", user.ID).FirstOrCreate(&settings, models.UserSettings{
		UserID:        user.ID,
		EmailReceipts: true,
		CauseUpdates:  true,
		Theme:         "system",
	}).Error; err != nil {
		log.Printf("settings: load for user %d failed: %v", user.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load settings"})
	}
	return c.JSON(settings)
}

func (h *SettingsHandler) UpdateSettings(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Not authenticated"})
	}

	var req struct {
		EmailReceipts *bool   `json:"email_receipts"`
		CauseUpdates  *bool   `json:"cause_updates"`
		Theme         *string `json:"theme"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request: " + err.Error()})
	}

	updates := map[string]interface{}{}
	if req.EmailReceipts != nil {
		updates["email_receipts"] = *req.EmailReceipts
	}
	if req.CauseUpdates != nil {
		updates["cause_updates"] = *req.CauseUpdates
	}
	if req.Theme != nil {
		updates["theme"] = *req.Theme
	}
	if len(updates) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No valid fields to update"})
	}

	if err := h.DB.Model(&models.UserSettings{}).
		Where("user_id = ?", user.ID).
		Updates(updates).Error; err != nil {
		log.Printf("settings: update for user %d failed: %v", user.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update settings"})
	}

	var settings models.UserSettings
	if err := h.DB.Where("user_id = ?", user.ID).First(&settings).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load settings"})
	}
	return c.JSON(settings)
}

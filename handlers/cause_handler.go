package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/givehub/givehub-backend/models"
)

type CauseHandler struct {
	DB *gorm.DB
}

func NewCauseHandler(db *gorm.DB) *CauseHandler {
	return &CauseHandler{DB: db}
}

type causeRequest struct {
	Title        string  `json:"title" validate:"required"`
	Description  string  `json:"description"`
	TargetAmount float64 `json:"target_amount" validate:"required,gt=0"`
	Category     string  `json:"category"`
	Location     string  `json:"location"`
	Status       string  `json:"status" validate:"omitempty,oneof=ACTIVE PAUSED DRAFT COMPLETED"`
	ImageURL     string  `json:"image_url"`
}

func (h *CauseHandler) ListCauses(c *fiber.Ctx) error {
	f := causeFilters{
		Category: c.Query("category"),
		Status:   c.Query("status"),
		Location: c.Query("location"),
	}
	limit, offset := parseLimitOffset(c.Query("limit"), c.Query("offset"))

	var totalCount int64
	if err := h.DB.Model(&models.Cause{}).
		Scopes(applyCauseFilters(f)).
		Count(&totalCount).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to count causes: " + err.Error()})
	}

	var causes []models.Cause
	if err := h.DB.Model(&models.Cause{}).
		Scopes(applyCauseFilters(f)).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&causes).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve causes: " + err.Error()})
	}

	return c.JSON(fiber.Map{
		"causes": causes,
		"pagination": fiber.Map{
			"total":  totalCount,
			"limit":  limit,
			"offset": offset,
		},
	})
}

func (h *CauseHandler) GetCause(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "id must be a positive integer"})
	}

	var cause models.Cause
	if err := h.DB.First(&cause, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Cause not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve cause: " + err.Error()})
	}
	return c.JSON(cause)
}

func (h *CauseHandler) CreateCause(c *fiber.Ctx) error {
	var req causeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request: " + err.Error()})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationMessage(err)})
	}

	status := req.Status
	if status == "" {
		status = models.CauseDraft
	}

	cause := models.Cause{
		Title:        req.Title,
		Description:  req.Description,
		TargetAmount: req.TargetAmount,
		Category:     req.Category,
		Location:     req.Location,
		Status:       status,
		ImageURL:     req.ImageURL,
	}
	if err := h.DB.Create(&cause).Error; err != nil {
		log.Printf("cause: create failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create cause"})
	}

	return c.Status(fiber.StatusCreated).JSON(cause)
}

func (h *CauseHandler) UpdateCause(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "id must be a positive integer"})
	}

	var cause models.Cause
	if err := h.DB.First(&cause, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Cause not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve cause: " + err.Error()})
	}

	var req causeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request: " + err.Error()})
	}

	// RaisedAmount is never writable through this endpoint; it only moves
	// when payments complete.
	updates := map[string]interface{}{}
	if req.Title != "" {
		updates["title"] = req.Title
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.TargetAmount > 0 {
		updates["target_amount"] = req.TargetAmount
	}
	if req.Category != "" {
		updates["category"] = req.Category
	}
	if req.Location != "" {
		updates["location"] = req.Location
	}
	if req.Status != "" {
		switch req.Status {
		case models.CauseActive, models.CausePaused, models.CauseDraft, models.CauseCompleted:
			updates["status"] = req.Status
		default:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid status: " + req.Status})
		}
	}
	if req.ImageURL != "" {
		updates["image_url"] = req.ImageURL
	}
	if len(updates) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No valid fields to update"})
	}

	if err := h.DB.Model(&cause).Updates(updates).Error; err != nil {
		log.Printf("cause: update %d failed: %v", cause.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update cause"})
	}
	return c.JSON(cause)
}

func (h *CauseHandler) DeleteCause(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "id must be a positive integer"})
	}

	res := h.DB.Delete(&models.Cause{}, id)
	if res.Error != nil {
		log.Printf("cause: delete %d failed: %v", id, res.Error)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete cause"})
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Cause not found"})
	}
	return c.JSON(fiber.Map{"message": "Cause deleted"})
}

package handlers

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strings"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/givehub/givehub-backend/auth"
	"github.com/givehub/givehub-backend/middleware"
	"github.com/givehub/givehub-backend/models"
	"github.com/givehub/givehub-backend/services"
)

type AuthHandler struct {
	DB     *gorm.DB
	Mailer services.Mailer // nil when email is disabled
}

func NewAuthHandler(db *gorm.DB, m services.Mailer) *AuthHandler {
	return &AuthHandler{DB: db, Mailer: m}
}

type registerRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Phone    string `json:"phone"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type userResponse struct {
	ID            uint   `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	EmailVerified bool   `json:"email_verified"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		Role:          u.Role,
		EmailVerified: u.EmailVerified,
	}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request: " + err.Error()})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationMessage(err)})
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	var existing models.User
	err := h.DB.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Email already exists"})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("register: lookup %s failed: %v", email, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("register: hash password failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}

	user := models.User{
		Name:         req.Name,
		Email:        email,
		PasswordHash: string(hash),
		Phone:        req.Phone,
		Role:         models.RoleDonor,
		Settings:     &models.UserSettings{EmailReceipts: true, CauseUpdates: true, Theme: "system"},
	}
	if err := h.DB.Create(&user).Error; err != nil {
		log.Printf("register: create user failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}

	token, err := auth.GenerateJWT(user.ID, user.Email, user.Role)
	if err != nil {
		log.Printf("register: generate token failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user":  toUserResponse(&user),
		"token": token,
	})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request: " + err.Error()})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationMessage(err)})
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	if err := h.DB.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid email or password"})
		}
		log.Printf("login: lookup %s failed: %v", email, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid email or password"})
	}

	token, err := auth.GenerateJWT(user.ID, user.Email, user.Role)
	if err != nil {
		log.Printf("login: generate token failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}

	return c.JSON(fiber.Map{
		"user":  toUserResponse(&user),
		"token": token,
	})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Not authenticated"})
	}
	return c.JSON(fiber.Map{"user": toUserResponse(user)})
}

// RequestEmailVerification mails a 6-digit code to the authenticated user.
// The route is rate limited upstream.
func (h *AuthHandler) RequestEmailVerification(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Not authenticated"})
	}
	if user.EmailVerified {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Email already verified"})
	}

	code := fmt.Sprintf("%06d", rand.Intn(1000000))
	if err := h.DB.Model(user).Update("verification_code", code).Error; err != nil {
		log.Printf("verify-email: store code for user %d failed: %v", user.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}

	if h.Mailer != nil {
		body := fmt.Sprintf("<p>Your verification code is <b>%s</b>.</p>", code)
		if err := h.Mailer.Send(user.Email, "Verify your email", body); err != nil {
			log.Printf("verify-email: send to %s failed: %v", user.Email, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to send verification email"})
		}
	}

	return c.JSON(fiber.Map{"message": "Verification code sent"})
}

func (h *AuthHandler) ConfirmEmailVerification(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Not authenticated"})
	}

	var req struct {
		Code string `json:"code" validate:"required,len=6"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request: " + err.Error()})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationMessage(err)})
	}

	if user.VerificationCode == "" || req.Code != user.VerificationCode {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid verification code"})
	}

	if err := h.DB.Model(user).Updates(map[string]interface{}{
		"email_verified":    true,
		"verification_code": "",
	}).Error; err != nil {
		log.Printf("verify-email: confirm for user %d failed: %v", user.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}

	return c.JSON(fiber.Map{"message": "Email verified"})
}

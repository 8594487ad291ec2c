package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/givehub/givehub-backend/auth"
	"github.com/givehub/givehub-backend/handlers"
	"github.com/givehub/givehub-backend/mailer"
	"github.com/givehub/givehub-backend/middleware"
	"github.com/givehub/givehub-backend/models"
	"github.com/givehub/givehub-backend/paystack"
	"github.com/givehub/givehub-backend/services"
)

func main() {
	_ = godotenv.Load()

	// Database connection
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto migrate models
	if err := db.AutoMigrate(
		&models.User{},
		&models.UserSettings{},
		&models.Cause{},
		&models.Donation{},
		&models.Payment{},
	); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	if err := auth.InitJWTSecret(); err != nil {
		log.Fatal(err)
	}

	// Paystack client setup
	secretKey := os.Getenv("PAYSTACK_SECRET_KEY")
	webhookSecret := os.Getenv("PAYSTACK_WEBHOOK_SECRET")
	if secretKey == "" {
		log.Fatal("PAYSTACK_SECRET_KEY must be set")
	}
	if webhookSecret == "" {
		webhookSecret = secretKey
	}
	gateway := paystack.NewClient(secretKey)
	if base := os.Getenv("PAYSTACK_BASE_URL"); base != "" {
		gateway.BaseURL = base
	}

	// services.Mailer is an interface; keep a typed-nil *Mailer out of it
	var mailSender services.Mailer
	if mail := mailer.NewFromEnv(); mail != nil {
		mailSender = mail
	} else {
		log.Println("Mail config absent; email delivery disabled")
	}

	paymentService := services.NewPaymentService(db, gateway, mailSender)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db, mailSender)
	causeHandler := handlers.NewCauseHandler(db)
	donationHandler := handlers.NewDonationHandler(db)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	webhookHandler := handlers.NewWebhookHandler(paymentService, gateway, webhookSecret)
	settingsHandler := handlers.NewSettingsHandler(db)

	verifyEmailLimiter := middleware.NewRateLimiter(3, 15*time.Minute)

	// Create Fiber app
	app := fiber.New()

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
		AllowHeaders: "Content-Type, Authorization, x-paystack-signature",
	}))

	// Routes
	app.Get("/health", handlers.Health)

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Get("/me", middleware.Protected(db), authHandler.Me)
	authGroup.Post("/verify-email/request", verifyEmailLimiter.Middleware(), middleware.Protected(db), authHandler.RequestEmailVerification)
	authGroup.Post("/verify-email/confirm", middleware.Protected(db), authHandler.ConfirmEmailVerification)

	api.Get("/causes", causeHandler.ListCauses)
	api.Get("/causes/:id", causeHandler.GetCause)
	api.Post("/causes", middleware.Protected(db), middleware.AdminOnly(), causeHandler.CreateCause)
	api.Put("/causes/:id", middleware.Protected(db), middleware.AdminOnly(), causeHandler.UpdateCause)
	api.Delete("/causes/:id", middleware.Protected(db), middleware.AdminOnly(), causeHandler.DeleteCause)

	api.Get("/donations", middleware.Protected(db), donationHandler.ListDonations)
	api.Get("/donations/:id", middleware.Protected(db), donationHandler.GetDonation)

	api.Post("/payments", paymentHandler.CreatePayment)
	api.Get("/payments", paymentHandler.GetPayment)
	api.Post("/payments/verify", middleware.Protected(db), middleware.AdminOnly(), paymentHandler.VerifyBankTransfer)
	api.Post("/payments/paystack", middleware.Protected(db), paymentHandler.StartCheckout)
	api.Get("/payments/paystack/verify", paymentHandler.VerifyCheckout)

	api.Get("/settings", middleware.Protected(db), settingsHandler.GetSettings)
	api.Put("/settings", middleware.Protected(db), settingsHandler.UpdateSettings)

	api.Post("/webhooks/paystack", webhookHandler.HandlePaystack)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	fmt.Println("Server running on http://localhost:" + port)
	log.Fatal(app.Listen(":" + port))
}

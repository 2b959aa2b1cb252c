package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"coin-earning-system/handlers"
	"coin-earning-system/middleware"
	"coin-earning-system/models"
	"coin-earning-system/services"
	"coin-earning-system/utils"
	"coin-earning-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 1 * 1024 * 1024, // 1MB, JSON-only API
	})

	// 🔐 GLOBAL: only Gateway requests allowed (partner postbacks excepted)
	app.Use(middleware.GatewayAuthMiddleware())

	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-User-ID, X-User-Roles, X-Device-ID",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	if err := utils.InitR2(); err != nil {
		log.Fatal("failed to initialize R2 client:", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.WalletTransaction{},
		&models.Task{},
		&models.UserTask{},
		&models.WithdrawRequest{},
		&models.FraudEvent{},
		&models.CPXReceipt{},
		&models.TapjoyReceipt{},
		&models.BonusClaim{},
		&models.AppSetting{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	settingsService := services.NewSettingsService(db)
	ledgerService := services.NewLedgerService(db, settingsService)
	fraudService := services.NewFraudService(db)
	limiter := services.NewEarningLimiter(db, fraudService)
	taskService := services.NewTaskService(db, ledgerService, limiter, fraudService, settingsService)
	withdrawService := services.NewWithdrawService(db, ledgerService, settingsService)
	offerwallService := services.NewOfferwallService(db, ledgerService)
	bonusService := services.NewBonusService(db, ledgerService, settingsService)
	referralService := services.NewReferralService(db, ledgerService)
	analyticsService := services.NewAnalyticsService(db, ledgerService)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go workers.PollLedgerAudit(ctx, ledgerService, 1*time.Hour)

	scheduler := services.NewMaintenanceScheduler(taskService, ledgerService)
	scheduler.Start()

	handlers.SetupUserRoutes(app, referralService, analyticsService, bonusService)
	handlers.SetupWalletRoutes(app, ledgerService, withdrawService)
	handlers.SetupTaskRoutes(app, taskService, referralService)
	handlers.SetupBonusRoutes(app, bonusService)
	handlers.SetupOfferwallRoutes(app, offerwallService, referralService)
	handlers.SetupAdminRoutes(app, withdrawService, taskService, fraudService, ledgerService, settingsService)

	go func() {
		if err := app.Listen(":5300"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("✅ Server running on http://localhost:5300")
	log.Println("✅ Ledger audit polling running (every 1h)")
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from Gateway")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
}

package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"nja-ledger/internal/adapters/http/middleware"
	"nja-ledger/internal/adapters/http/routes"
	"nja-ledger/internal/adapters/persistence/models"
	"nja-ledger/internal/config"

	"github.com/gofiber/fiber/v2"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect database: %v", err)
	}

	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("❌ Failed to migrate database: %v", err)
	}
	log.Println("✅ Database migrated")

	if cfg.IsDev() {
		if err := config.NewSeeder(db).Run(); err != nil {
			log.Printf("⚠️ Seeding failed: %v", err)
		}
	}

	app := fiber.New(fiber.Config{
		AppName:      "nja-ledger",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	middleware.Setup(app, cfg)
	routes.Setup(app, db, cfg)

	go gracefulShutdown(app)

	log.Printf("🚀 Server starting on port %s (%s mode)", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Server failed: %v", err)
	}
}

func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("⚠️ Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("❌ Server shutdown error: %v", err)
	}
	if err := config.CloseDatabase(); err != nil {
		log.Printf("❌ Database close error: %v", err)
	}
	log.Println("✅ Server stopped")
}

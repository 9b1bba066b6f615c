package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"kirim/internal/courier"
	"kirim/internal/handlers"
	"kirim/internal/middleware"
	"kirim/internal/models"
	"kirim/internal/repositories"
	"kirim/internal/services"
	"kirim/internal/worker"
	"kirim/pkg/rabbitmq"

	"github.com/spf13/viper"
)

func main() {
	// --- Configuration ---
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("DATABASE_DSN", "")
	viper.SetDefault("SQLITE_PATH", "kirim.db")
	viper.SetDefault("RABBITMQ_URL", "")
	viper.SetDefault("COURIER_BASE_URL", "")
	viper.SetDefault("COURIER_API_KEY", "")
	viper.SetDefault("COURIER_SECRET_KEY", "")
	viper.SetDefault("COURIER_TIMEOUT", "5s")
	viper.SetDefault("TAX_RATE", 0.0)
	viper.SetDefault("FREE_SHIPPING_THRESHOLD", 0.0)
	viper.SetDefault("DISPATCH_INTERVAL", "1m")
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("ADMIN_PASSWORD_HASH", "")
	viper.AutomaticEnv() // Load environment variables

	appPort := viper.GetString("APP_PORT")

	// --- Initialize Database ---
	// Postgres when a DSN is configured, a local SQLite file otherwise.
	var (
		db  *gorm.DB
		err error
	)
	if dsn := viper.GetString("DATABASE_DSN"); dsn != "" {
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	} else {
		db, err = gorm.Open(sqlite.Open(viper.GetString("SQLITE_PATH")), &gorm.Config{})
	}
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	err = db.AutoMigrate(
		&models.Product{},
		&models.ProductVariant{},
		&models.Order{},
		&models.OrderLine{},
		&models.Customer{},
		&models.DeliveryMethod{},
	)
	if err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// --- Initialize RabbitMQ Client ---
	// The event stream is optional: without a broker the engine still
	// fulfills orders, it just stops announcing lifecycle events.
	var mqClient *rabbitmq.Client
	if mqURL := viper.GetString("RABBITMQ_URL"); mqURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: mqURL})
		if err != nil {
			log.Printf("Warning: failed to initialize RabbitMQ client, continuing without events: %v", err)
			mqClient = nil
		} else {
			defer mqClient.Close()
		}
	}

	// --- Initialize Repositories ---
	orderRepo := repositories.NewGORMOrderRepository(db)
	productRepo := repositories.NewGORMProductRepository(db)
	customerRepo := repositories.NewGORMCustomerRepository(db)
	deliveryMethodRepo := repositories.NewGORMDeliveryMethodRepository(db)
	txRunner := repositories.NewGORMTxRunner(db)

	// --- Initialize Courier Client ---
	courierClient := courier.NewClient(courier.Config{
		BaseURL:   viper.GetString("COURIER_BASE_URL"),
		APIKey:    viper.GetString("COURIER_API_KEY"),
		SecretKey: viper.GetString("COURIER_SECRET_KEY"),
		Timeout:   viper.GetDuration("COURIER_TIMEOUT"),
	})

	// --- Initialize Services ---
	pricing := services.PricingConfig{
		TaxRate:               viper.GetFloat64("TAX_RATE"),
		FreeShippingThreshold: viper.GetFloat64("FREE_SHIPPING_THRESHOLD"),
	}
	orderService := services.NewOrderService(txRunner, orderRepo, customerRepo, deliveryMethodRepo, mqClient, pricing)
	statusService := services.NewOrderStatusService(orderRepo, productRepo, courierClient, mqClient)
	authService := services.NewAuthService(viper.GetString("ADMIN_PASSWORD_HASH"), viper.GetString("JWT_SECRET"))

	// --- Initialize Handlers ---
	orderHandler := handlers.NewOrderHandler(orderService, statusService)
	authHandler := handlers.NewAuthHandler(authService)

	// --- Initialize Fiber App ---
	app := fiber.New()

	// --- Middleware ---
	app.Use(logger.New()) // Request logger

	// --- API Routes ---
	apiV1 := app.Group("/api/v1")

	// Public routes: checkout and admin login
	authHandler.RegisterRoutes(apiV1)
	orderHandler.RegisterPublicRoutes(apiV1)

	// Admin routes behind JWT auth
	adminRoutes := apiV1.Group("", middleware.AuthRequired(authService))
	orderHandler.RegisterAdminRoutes(adminRoutes)

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// --- Start RabbitMQ Consumer in a Goroutine ---
	// Feeds the order lifecycle events back into the audit log so operators
	// can trace order.created / order.status_changed / order.dispatched.
	if mqClient != nil {
		go func() {
			log.Println("Starting RabbitMQ consumer for order events...")
			if consumerErr := mqClient.ConsumeOrderEvents(rabbitmq.LogOrderEvent); consumerErr != nil {
				log.Printf("Failed to start RabbitMQ consumer: %v", consumerErr)
			}
		}()
	}

	// --- Start Dispatch Worker ---
	// A single background loop per process; it sweeps Confirmed orders that
	// have no consignment yet and retries courier hand-off until it sticks.
	workerCtx, stopWorker := context.WithCancel(context.Background())
	dispatchWorker := worker.NewDispatchWorker(
		orderRepo,
		courierClient,
		mqClient,
		viper.GetDuration("DISPATCH_INTERVAL"),
	)
	go dispatchWorker.Run(workerCtx)

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", appPort)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(appPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	<-quit
	log.Println("Shutting down server...")

	// Stop the dispatch worker loop first so no tick runs mid-shutdown
	stopWorker()

	// Shutdown Fiber app
	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}

	log.Println("Server gracefully stopped")
}

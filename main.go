package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/AshivPrajapati/Online-Bookstore/internal/handlers"
	"github.com/AshivPrajapati/Online-Bookstore/internal/middleware"
	"github.com/AshivPrajapati/Online-Bookstore/internal/models"
	"github.com/AshivPrajapati/Online-Bookstore/internal/repositories"
	"github.com/AshivPrajapati/Online-Bookstore/internal/services"
	"github.com/AshivPrajapati/Online-Bookstore/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("DATABASE_DRIVER", "sqlite")
	viper.SetDefault("DATABASE_DSN", "bookstore.db")
	viper.SetDefault("JWT_SECRET", "change-me-in-production")
	viper.SetDefault("JWT_EXPIRATION_HOURS", 24)
	viper.SetDefault("RABBITMQ_URL", "") // Empty disables order events
	viper.AutomaticEnv()

	appPort := viper.GetString("APP_PORT")

	// --- Database ---
	db, err := openDatabase(viper.GetString("DATABASE_DRIVER"), viper.GetString("DATABASE_DSN"))
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	err = db.AutoMigrate(&models.User{}, &models.Category{}, &models.Book{}, &models.Order{}, &models.OrderItem{})
	if err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// --- RabbitMQ (optional) ---
	var mqClient *rabbitmq.Client
	if url := viper.GetString("RABBITMQ_URL"); url != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: url})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer mqClient.Close()
	} else {
		log.Println("RABBITMQ_URL not set, order events disabled")
	}

	// --- Repositories ---
	userRepo := repositories.NewGORMUserRepository(db)
	bookRepo := repositories.NewGORMBookRepository(db)
	categoryRepo := repositories.NewGORMCategoryRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)

	// --- Services ---
	tokenDuration := time.Duration(viper.GetInt("JWT_EXPIRATION_HOURS")) * time.Hour
	authService := services.NewAuthService(userRepo, viper.GetString("JWT_SECRET"), tokenDuration)
	bookService := services.NewBookService(bookRepo)
	categoryService := services.NewCategoryService(categoryRepo, bookRepo)
	var events services.EventPublisher
	if mqClient != nil {
		events = mqClient
	}
	orderService := services.NewOrderService(orderRepo, bookRepo, events)

	// Bootstrap an initial admin account on an empty database.
	if err := seedAdmin(userRepo); err != nil {
		log.Printf("Admin bootstrap skipped: %v", err)
	}

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(authService)
	bookHandler := handlers.NewBookHandler(bookService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	orderHandler := handlers.NewOrderHandler(orderService)

	// --- Fiber App ---
	app := fiber.New()
	app.Use(logger.New()) // Request logger

	auth := middleware.AuthRequired(authService)
	admin := middleware.AdminRequired()

	apiV1 := app.Group("/api/v1")
	authHandler.RegisterRoutes(apiV1)
	bookHandler.RegisterRoutes(apiV1, auth, admin)
	categoryHandler.RegisterRoutes(apiV1, auth, admin)
	orderHandler.RegisterRoutes(apiV1, auth, admin)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// --- Order Event Consumer ---
	if mqClient != nil {
		log.Println("Starting RabbitMQ consumer for order events...")
		messageHandler := func(msg amqp.Delivery) error {
			log.Printf("Received order event %s (tag %d): %s", msg.Type, msg.DeliveryTag, string(msg.Body))
			// Downstream processing (confirmation emails, fulfilment) hooks
			// in here.
			return nil
		}
		if consumerErr := mqClient.ConsumeOrderEvents(messageHandler); consumerErr != nil {
			log.Printf("Failed to start RabbitMQ consumer: %v", consumerErr)
		}
	}

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", appPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(appPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}

// openDatabase opens the configured relational store. SQLite keeps local
// development dependency-free; Postgres is the production driver.
func openDatabase(driver, dsn string) (*gorm.DB, error) {
	switch driver {
	case "postgres":
		return gorm.Open(postgres.Open(dsn), &gorm.Config{})
	case "sqlite":
		return gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// seedAdmin creates the initial admin account when the user table is empty
// and ADMIN_EMAIL/ADMIN_PASSWORD are configured. Registration never grants
// the admin role, so a fresh deployment needs this bootstrap.
func seedAdmin(userRepo repositories.UserRepository) error {
	email := viper.GetString("ADMIN_EMAIL")
	password := viper.GetString("ADMIN_PASSWORD")
	if email == "" || password == "" {
		return nil
	}

	count, err := userRepo.Count()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	username := viper.GetString("ADMIN_USERNAME")
	if username == "" {
		username = "admin"
	}
	admin := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashed),
		FirstName:    "Store",
		LastName:     "Admin",
		Role:         models.RoleAdmin,
	}
	if err := userRepo.Create(admin); err != nil {
		return err
	}
	log.Printf("Seeded admin account %s", email)
	return nil
}

package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/heiphin7/bloom-boutique-catalog/mailer"
	"github.com/heiphin7/bloom-boutique-catalog/models"
	"github.com/heiphin7/bloom-boutique-catalog/repository"
	"github.com/heiphin7/bloom-boutique-catalog/routes"
	"github.com/heiphin7/bloom-boutique-catalog/services"
	"github.com/heiphin7/bloom-boutique-catalog/stripe"
	"github.com/heiphin7/bloom-boutique-catalog/ws"
)

func main() {
	log.Println("✅ Starting application...")

	// Load environment variables
	_ = godotenv.Load()

	// Init DB
	db := initDatabase()

	// Auto-migrate all tables
	if err := db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Category{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
	); err != nil {
		log.Fatalf("❌ AutoMigrate failed: %v", err)
	}

	// Redis for the cart view cache
	redisClient := redis.NewClient(&redis.Options{
		Addr: envOr("REDIS_ADDR", "localhost:6379"),
	})

	// Stripe client
	stripeCfg, err := stripe.ConfigFromEnv()
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	stripeClient := stripe.NewClient(stripeCfg)

	// Service wiring: constructed once, injected everywhere
	cartRepo := repository.NewCartRepository(db)
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)

	carts := services.NewCartService(cartRepo, productRepo, services.NewRedisCartCache(redisClient))
	orders := services.NewOrderService(orderRepo, carts,
		envFloat("SHIPPING_FEE", 1000),
		envFloat("FREE_SHIPPING_THRESHOLD", 22500),
	)
	checkout := services.NewCheckoutService(stripeClient, orderRepo, services.CheckoutConfig{
		BaseURL:  envOr("STOREFRONT_URL", "http://localhost:3000"),
		Currency: envOr("CURRENCY", "kzt"),
	})

	mail := mailer.NewSendGridMailer(
		os.Getenv("SENDGRID_API_KEY"),
		envOr("MAIL_FROM_NAME", "Bloom Boutique"),
		envOr("MAIL_FROM_ADDR", "orders@bloom-boutique.kz"),
	)
	hub := ws.NewHub()
	reconciler := services.NewReconciler(orderRepo, stripeClient, checkout, carts, mail, hub)

	// Gin setup
	r := gin.Default()

	// CORS settings
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-API-KEY", "Stripe-Signature"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Setup routes
	routes.SetupRoutes(r, routes.Deps{
		DB:         db,
		Carts:      carts,
		Orders:     orders,
		OrderRepo:  orderRepo,
		Checkout:   checkout,
		Reconciler: reconciler,
		Hub:        hub,
	})

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("🚀 Server running on port %s...", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// initDatabase sets up the GORM DB connection
func initDatabase() *gorm.DB {
	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{})
		if err != nil {
			log.Fatalf("❌ DB connection failed: %v", err)
		}
		return db
	}

	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	user := os.Getenv("DB_USER")
	password := os.Getenv("DB_PASSWORD")
	dbname := os.Getenv("DB_NAME")

	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		host, user, password, dbname, port,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("❌ Failed to connect DB: %v", err)
	}
	return db
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Fatalf("❌ Invalid %s: %v", key, err)
	}
	return f
}

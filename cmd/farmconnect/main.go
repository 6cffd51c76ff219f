package main

import (
	"log"
	"os"

	"github.com/farmconnect-dev/farmconnect/db"
	"github.com/farmconnect-dev/farmconnect/internal/auth"
	"github.com/farmconnect-dev/farmconnect/internal/relay"
	"github.com/farmconnect-dev/farmconnect/internal/router"
	"github.com/farmconnect-dev/farmconnect/internal/services"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	if err := auth.InitJWTSecret(); err != nil {
		log.Fatalf("Failed to initialize JWT secret: %v", err)
	}

	dsn := os.Getenv("DATABASE_URL")

	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	if err := db.ConnectDatabase(dsn); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.MigrateDatabase(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	var cache *redis.Client

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cache = redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: os.Getenv("REDIS_PASSWORD"),
		})
	} else {
		log.Println("REDIS_ADDR not set, weather caching disabled")
	}

	hub := relay.NewHub()
	notifier := services.NewNotifier(db.DB, services.NewMailer())
	orders := services.NewOrderService(db.DB, notifier)
	weather := services.NewWeatherService(os.Getenv("OPENWEATHER_API_KEY"), cache)

	r := router.NewRouter(hub, orders, weather)

	var port string

	if port = os.Getenv("PORT"); port == "" {
		port = "5000"
		log.Println("PORT not set, defaulting to 5000")
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"chatfree/middleware"
	"chatfree/pkg/config"
	"chatfree/pkg/gemini"
	"chatfree/routes"
	"chatfree/store"
)

func main() {
	config.Load()

	ctx := context.Background()
	st, err := store.NewMongoStore(ctx, config.MongoURI, config.MongoDBName)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer st.Close(ctx)

	ai := gemini.NewClient(config.GeminiAPIKey, config.GeminiModel)

	middleware.SetRateLimitConfig(
		time.Duration(config.RateLimitWindowSeconds)*time.Second,
		config.RateLimitCapacity,
	)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000", "http://localhost:5173", "http://127.0.0.1:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, st, ai)

	if err := r.Run(":" + config.Port); err != nil {
		log.Fatalf("server failed to run: %v", err)
	}
}

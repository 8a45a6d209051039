package main

import (
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/julianfleck/fragment-editor-api/db"
	"github.com/julianfleck/fragment-editor-api/internal/handler"
	"github.com/julianfleck/fragment-editor-api/internal/repository"
	"github.com/julianfleck/fragment-editor-api/internal/transform"
	"github.com/julianfleck/fragment-editor-api/pkg/llm"
	"github.com/julianfleck/fragment-editor-api/pkg/token"
)

func main() {

	godotenv.Load()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	err := db.Connect()
	if err != nil {
		log.Fatalf("error connecting to DB: %v", err)
	}
	defer db.Close()

	err = db.ConnectRedis()
	if err != nil {
		log.Fatalf("error connecting to Redis: %v", err)
	}
	defer db.CloseRedis()

	counter := token.NewCounter()

	var generator llm.Generator
	var modelUsed string
	if os.Getenv("LLM_PROVIDER") == "anthropic" {
		client := llm.NewAnthropicClient(os.Getenv("ANTHROPIC_API_KEY"), counter)
		generator = client
		modelUsed = client.ModelName()
	} else {
		client := llm.NewOpenAIClient(os.Getenv("OPENAI_API_KEY"), counter)
		generator = client
		modelUsed = client.ModelName()
	}
	slog.Info("generation model configured", "model", modelUsed)

	engine := transform.NewEngine(generator, counter, transform.DefaultConfig())

	transformationRepo := repository.NewTransformationRepository(db.DB)
	transformHandler := handler.NewTransformHandler(engine, transformationRepo, modelUsed)
	historyHandler := handler.NewHistoryHandler(transformationRepo)

	r := gin.Default()

	allowedOrigins := []string{"http://localhost:3000"}

	if frontendURL := os.Getenv("FRONTEND_URL"); frontendURL != "" {
		allowedOrigins = append(allowedOrigins, frontendURL)
	}

	slog.Info("AllowOrigins URL:", "urls", allowedOrigins)

	r.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
	}))

	limiter := db.RateLimiter{
		Limit:  rateLimitPerMinute(),
		Window: time.Minute,
	}

	authorized := r.Group("/", handler.RequireAPIKey(apiKeys()), handler.RateLimit(limiter))
	authorized.POST("/compress", transformHandler.Compress)
	authorized.POST("/expand", transformHandler.Expand)
	authorized.POST("/fragment", transformHandler.Fragment)
	authorized.POST("/join", transformHandler.Join)
	authorized.GET("/transformations", historyHandler.GetTransformations)
	authorized.GET("/transformations/:id", historyHandler.GetTransformation)

	r.GET("/health", historyHandler.GetHealth)

	err = r.Run(":8080")
	if err != nil {
		log.Fatalf("error starting server: %v", err)
	}
}

func apiKeys() map[string]bool {
	keys := make(map[string]bool)
	for _, key := range strings.Split(os.Getenv("API_KEYS"), ",") {
		key = strings.TrimSpace(key)
		if key != "" {
			keys[key] = true
		}
	}

	if len(keys) == 0 {
		slog.Warn("API_KEYS environment variable is not set, all requests will be rejected")
	}

	return keys
}

func rateLimitPerMinute() int64 {
	const defaultLimit = 60

	value := os.Getenv("RATE_LIMIT_PER_MINUTE")
	if value == "" {
		return defaultLimit
	}

	limit, err := strconv.ParseInt(value, 10, 64)
	if err != nil || limit < 1 {
		slog.Warn("invalid RATE_LIMIT_PER_MINUTE, using default", "value", value, "default", defaultLimit)
		return defaultLimit
	}

	return limit
}

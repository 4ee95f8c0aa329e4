package main

import (
	"context"
	"net/http"
	"os"

	"github.com/ShopQuestApp/ShopQuest-backend/internal/api"
	"github.com/ShopQuestApp/ShopQuest-backend/internal/cache"
	"github.com/ShopQuestApp/ShopQuest-backend/internal/cdc"
	"github.com/ShopQuestApp/ShopQuest-backend/internal/config"
	"github.com/ShopQuestApp/ShopQuest-backend/internal/database"
	"github.com/ShopQuestApp/ShopQuest-backend/internal/docstore"
	"github.com/ShopQuestApp/ShopQuest-backend/internal/handler"
	"github.com/ShopQuestApp/ShopQuest-backend/internal/kv"
	"github.com/ShopQuestApp/ShopQuest-backend/internal/leaderboard"
	"github.com/ShopQuestApp/ShopQuest-backend/internal/logger"
	"github.com/ShopQuestApp/ShopQuest-backend/internal/logstream"
	"github.com/ShopQuestApp/ShopQuest-backend/internal/middleware"
	"github.com/ShopQuestApp/ShopQuest-backend/internal/ratelimit"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Could not load config: %v", err)
		os.Exit(1)
	}

	// Connect to PostgreSQL (store de référence, obligatoire)
	db, err := database.ConnectPostgres(cfg)
	if err != nil {
		logger.Error("Database connection failed: %v", err)
		os.Exit(1)
	}
	defer db.Close()

	docs := docstore.NewPostgres(db)
	if err := docs.Migrate(context.Background()); err != nil {
		logger.Error("Migration failed: %v", err)
		os.Exit(1)
	}

	// Key-value store (data plane, optionnel : fail-open si absent)
	store := kv.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if store.Available(context.Background()) {
		logger.Success("Connected to the key-value store")
	}

	// Engines du data plane, construits une fois au démarrage
	boards := leaderboard.New(store)
	caches := cache.New(store)
	logs := logstream.New(store, docs)
	pipeline := cdc.New(store, docs, boards, caches, logs)
	limiter := ratelimit.New(store)

	h := handler.New(db, store, docs, boards, logs, pipeline)

	// Initialize routes
	router := api.SetupRouter(h, limiter, cfg.RateLimitEnabled)

	// Wrap router with CORS middleware
	srv := middleware.CORSMiddleware(router)

	// Start server
	logger.Success("Server starting on port %s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, srv); err != nil {
		logger.Error("Server failed: %v", err)
		os.Exit(1)
	}
}

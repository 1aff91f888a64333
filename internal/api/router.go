package api

import (
	"context"
	"errors"
	"partnerhub-backend/config"
	"partnerhub-backend/internal/api/v1/access"
	adminSubscription "partnerhub-backend/internal/api/v1/admin/subscription"
	adminTransaction "partnerhub-backend/internal/api/v1/admin/transaction"
	"partnerhub-backend/internal/api/v1/common/upload"
	"partnerhub-backend/internal/api/v1/workflow"
	"partnerhub-backend/internal/database"
	"partnerhub-backend/internal/middleware"
	"partnerhub-backend/internal/models"
	"partnerhub-backend/internal/services"
	"partnerhub-backend/pkg/logger"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// verifyPath is the only endpoint partners call cross-origin.
const verifyPath = "/api/v1/access/verify"

// NewRouter connects the stores named in cfg, seeds the partner catalog and
// returns the HTTP engine. ctx bounds background housekeeping.
func NewRouter(ctx context.Context, cfg *config.Config) (*gin.Engine, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}

	var rdb *redis.Client
	if database.RedisEnabled(cfg) {
		if err := database.ConnectRedis(cfg); err != nil {
			return nil, err
		}
		rdb = database.RedisClient
	}

	partners := services.DefaultPartners
	if cfg.PartnersFile != "" {
		partners, err = services.LoadPartnersFile(cfg.PartnersFile)
		if err != nil {
			return nil, err
		}
	}
	if err := services.NewGormPartnerCatalog(db).Seed(ctx, partners); err != nil {
		return nil, err
	}
	logger.Log.Info("partner catalog seeded", zap.Int("partners", len(partners)))

	return SetupRouter(ctx, cfg, db, rdb)
}

// SetupRouter wires services and routes on top of already opened stores.
// rdb may be nil unless cfg selects the redis usage store.
func SetupRouter(ctx context.Context, cfg *config.Config, db *gorm.DB, rdb *redis.Client) (*gin.Engine, error) {
	ledger := services.NewTransactionService(db, cfg.JWTSecret)
	subscriptions := services.NewSubscriptionService(db, rdb, ledger)

	var usage services.UsageStore
	switch cfg.UsageStore {
	case "redis":
		if rdb == nil {
			return nil, errors.New("USAGE_STORE=redis requires REDIS_HOST")
		}
		usage = services.NewRedisUsageStore(rdb)
	default:
		usage = services.NewGormUsageStore(db)
	}

	tokens, err := services.NewTokenService(cfg.JWTSecret)
	if err != nil {
		return nil, err
	}
	limiter := services.NewRateLimiter(cfg.RateLimitMax, cfg.RateLimitWindow)
	go pruneLimiter(ctx, limiter, cfg.RateLimitWindow)

	quota := services.NewQuotaEnforcer(usage, subscriptions, cfg.FreeDailyLimit)
	broker := services.NewAccessBroker(services.NewGormPartnerCatalog(db), quota, tokens, limiter, subscriptions)

	var invoker services.ModelInvoker
	if cfg.LLMEnabled() {
		invoker = services.NewChatCompletionsInvoker(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMTimeout, cfg.LLMMaxTokens)
	} else {
		logger.Log.Info("no model provider configured, workflow steps will be simulated")
	}
	engine := services.NewWorkflowEngine(invoker, cfg.LLMTimeout, cfg.LLMMaxTokens)
	estimator := services.NewCostEstimator(map[models.Modality]int64{
		models.ModalityText:     cfg.CostText,
		models.ModalityImage:    cfg.CostImage,
		models.ModalityAudio:    cfg.CostAudio,
		models.ModalityVideo:    cfg.CostVideo,
		models.ModalityDocument: cfg.CostDocument,
	})

	var signer services.MediaSigner
	uploadHandler := upload.NewHandler(nil)
	if cfg.OSSEnabled() {
		ossSigner, err := services.NewOSSMediaSigner(cfg)
		if err != nil {
			return nil, err
		}
		signer = ossSigner
		if cfg.OSSRoleArn != "" {
			uploadHandler = upload.NewHandler(ossSigner)
		}
	}
	workflows := services.NewWorkflowService(db, engine, estimator, ledger, signer)

	router := gin.New()
	router.Use(middleware.Logger(), gin.Recovery())
	router.Use(middleware.CORS(cfg.CORSOrigins, verifyPath))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1
	v1 := router.Group("/api/v1")
	{
		access.RegisterRoutes(v1, access.NewHandler(broker, quota), cfg.JWTSecret)

		authorized := v1.Group("/")
		authorized.Use(middleware.AuthMiddleware(cfg.JWTSecret))
		{
			workflow.RegisterRoutes(authorized, workflow.NewHandler(workflows))
			upload.RegisterRoutes(authorized, uploadHandler)
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AdminAuthMiddleware(cfg.JWTSecret))
		{
			adminSubscription.RegisterRoutes(admin, adminSubscription.NewHandler(subscriptions))
			adminTransaction.RegisterRoutes(admin, adminTransaction.NewHandler(ledger))
		}
	}

	return router, nil
}

func pruneLimiter(ctx context.Context, limiter *services.RateLimiter, window time.Duration) {
	if window <= 0 {
		window = services.DefaultRateLimitWindow
	}
	ticker := time.NewTicker(window)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := limiter.Prune(); n > 0 {
				logger.Log.Debug("pruned rate limit entries", zap.Int("entries", n))
			}
		}
	}
}

package di

import (
	"context"
	"strings"
	"time"

	"aneka-keramik/config"
	"aneka-keramik/internal/apis/handlers"
	"aneka-keramik/internal/apis/middlewares"
	"aneka-keramik/internal/repositories"
	"aneka-keramik/internal/services"
	"aneka-keramik/internal/utils"
	"aneka-keramik/pkg/llm"
	"aneka-keramik/pkg/mongodb"
	"aneka-keramik/pkg/redis"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/dig"
	"golang.org/x/sync/errgroup"
)

var DiContainer *dig.Container

func Initialize() {
	DiContainer = dig.New()
	log := config.Logger

	// Initialize MongoDB
	dbConfig := mongodb.MongoDbConfigModel{
		ConnectionUrl:  config.Env.MongoURI,
		DatabaseName:   config.Env.MongoDatabaseName,
		ConnectTimeout: 30 * time.Second,
	}
	mongodbClient, err := mongodb.InitializeDatabaseConnection(dbConfig)
	if err != nil {
		log.Fatalf("Failed to initialize MongoDB client: %v", err)
	}

	// Initialize Redis
	redisClient, err := redis.RedisClient(config.Env.RedisHost, config.Env.RedisPort, config.Env.RedisUsername, config.Env.RedisPassword)
	if err != nil {
		log.Fatalf("Failed to initialize Redis client: %v", err)
	}

	redisRepo := redis.NewRedisRepositories(redisClient)
	jwtService := utils.NewJWTService(
		config.Env.JWTSecret,
		time.Millisecond*time.Duration(config.Env.JWTExpirationMilliseconds),
	)

	// Provide all dependencies to the container
	if err := DiContainer.Provide(func() *mongodb.MongoDBClient { return mongodbClient }); err != nil {
		log.Fatalf("Failed to provide MongoDB client: %v", err)
	}

	if err := DiContainer.Provide(func() *goredis.Client { return redisClient }); err != nil {
		log.Fatalf("Failed to provide Redis client: %v", err)
	}

	if err := DiContainer.Provide(func() redis.IRedisRepositories { return redisRepo }); err != nil {
		log.Fatalf("Failed to provide Redis repositories: %v", err)
	}

	if err := DiContainer.Provide(func(repo redis.IRedisRepositories) *redis.Cache {
		return redis.NewCache(repo, time.Duration(config.Env.CacheTTLSeconds)*time.Second)
	}); err != nil {
		log.Fatalf("Failed to provide cache: %v", err)
	}

	if err := DiContainer.Provide(func() utils.JWTService { return jwtService }); err != nil {
		log.Fatalf("Failed to provide JWT service: %v", err)
	}

	// Repositories
	if err := DiContainer.Provide(repositories.NewUserRepository); err != nil {
		log.Fatalf("Failed to provide user repository: %v", err)
	}

	if err := DiContainer.Provide(repositories.NewProductRepository); err != nil {
		log.Fatalf("Failed to provide product repository: %v", err)
	}

	if err := DiContainer.Provide(repositories.NewChatSessionRepository); err != nil {
		log.Fatalf("Failed to provide chat session repository: %v", err)
	}

	if err := DiContainer.Provide(repositories.NewTokenRepository); err != nil {
		log.Fatalf("Failed to provide token repository: %v", err)
	}

	// LLM client, chosen once at startup
	if err := DiContainer.Provide(func() (llm.Client, error) {
		client, err := llm.NewClient(llmConfig())
		if err != nil {
			return nil, err
		}
		info := client.GetModelInfo()
		log.WithField("provider", info.Provider).WithField("model", info.Name).Info("LLM client ready")
		return client, nil
	}); err != nil {
		log.Fatalf("Failed to provide LLM client: %v", err)
	}

	// Services
	if err := DiContainer.Provide(services.NewAuthService); err != nil {
		log.Fatalf("Failed to provide auth service: %v", err)
	}

	if err := DiContainer.Provide(services.NewProductService); err != nil {
		log.Fatalf("Failed to provide product service: %v", err)
	}

	if err := DiContainer.Provide(func(llmClient llm.Client, productService services.ProductService) services.RecommendationEngine {
		return services.NewRecommendationEngine(llmClient, productService)
	}); err != nil {
		log.Fatalf("Failed to provide recommendation engine: %v", err)
	}

	if err := DiContainer.Provide(func(sessionRepo repositories.ChatSessionRepository, engine services.RecommendationEngine) services.ChatSessionService {
		timeout := time.Duration(config.Env.RecommendationTimeoutSeconds) * time.Second
		return services.NewChatSessionService(sessionRepo, engine, timeout)
	}); err != nil {
		log.Fatalf("Failed to provide chat session service: %v", err)
	}

	// Handlers
	if err := DiContainer.Provide(handlers.NewAuthHandler); err != nil {
		log.Fatalf("Failed to provide auth handler: %v", err)
	}

	if err := DiContainer.Provide(handlers.NewProductHandler); err != nil {
		log.Fatalf("Failed to provide product handler: %v", err)
	}

	if err := DiContainer.Provide(handlers.NewRecommendationHandler); err != nil {
		log.Fatalf("Failed to provide recommendation handler: %v", err)
	}
}

func llmConfig() llm.Config {
	cfg := llm.Config{
		Provider:    config.Env.LLMProvider,
		Model:       config.Env.LLMModel,
		Temperature: config.Env.LLMTemperature,
	}
	switch strings.ToLower(cfg.Provider) {
	case llm.Groq:
		cfg.APIKey = config.Env.GroqAPIKey
		cfg.BaseURL = config.Env.GroqBaseURL
	case llm.Ollama:
		cfg.BaseURL = config.Env.OllamaBaseURL
	default:
		cfg.APIKey = config.Env.GeminiAPIKey
	}
	return cfg
}

// Bootstrap prepares the stores: indexes on every collection and the admin account.
func Bootstrap(ctx context.Context) error {
	return DiContainer.Invoke(func(
		userRepo repositories.UserRepository,
		productRepo repositories.ProductRepository,
		sessionRepo repositories.ChatSessionRepository,
		authService services.AuthService,
	) error {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return userRepo.EnsureIndexes(gctx) })
		g.Go(func() error { return productRepo.EnsureIndexes(gctx) })
		g.Go(func() error { return sessionRepo.EnsureIndexes(gctx) })
		if err := g.Wait(); err != nil {
			return err
		}
		return authService.EnsureAdmin(ctx, config.Env.AdminUsername, config.Env.AdminPassword)
	})
}

// Close releases the Mongo and Redis connections.
func Close(ctx context.Context) error {
	return DiContainer.Invoke(func(mongoClient *mongodb.MongoDBClient, redisClient *goredis.Client) error {
		mongoErr := mongoClient.Disconnect(ctx)
		redisErr := redisClient.Close()
		if mongoErr != nil {
			return mongoErr
		}
		return redisErr
	})
}

// GetAuthHandler retrieves the AuthHandler from the DI container
func GetAuthHandler() (*handlers.AuthHandler, error) {
	var handler *handlers.AuthHandler
	err := DiContainer.Invoke(func(h *handlers.AuthHandler) {
		handler = h
	})
	if err != nil {
		return nil, err
	}
	return handler, nil
}

func GetProductHandler() (*handlers.ProductHandler, error) {
	var handler *handlers.ProductHandler
	err := DiContainer.Invoke(func(h *handlers.ProductHandler) {
		handler = h
	})
	if err != nil {
		return nil, err
	}
	return handler, nil
}

func GetRecommendationHandler() (*handlers.RecommendationHandler, error) {
	var handler *handlers.RecommendationHandler
	err := DiContainer.Invoke(func(h *handlers.RecommendationHandler) {
		handler = h
	})
	if err != nil {
		return nil, err
	}
	return handler, nil
}

// GetAuthMiddleware builds the bearer-token guard from the container's JWT service and token store.
func GetAuthMiddleware() (gin.HandlerFunc, error) {
	var middleware gin.HandlerFunc
	err := DiContainer.Invoke(func(jwtService utils.JWTService, tokenRepo repositories.TokenRepository) {
		middleware = middlewares.AuthMiddleware(jwtService, tokenRepo)
	})
	if err != nil {
		return nil, err
	}
	return middleware, nil
}

func GetRateLimitMiddleware() (gin.HandlerFunc, error) {
	var middleware gin.HandlerFunc
	err := DiContainer.Invoke(func(store redis.IRedisRepositories) {
		middleware = middlewares.RateLimitMiddleware(
			store,
			config.Env.GenAIRateLimitMax,
			time.Duration(config.Env.GenAIRateLimitWindowSeconds)*time.Second,
		)
	})
	if err != nil {
		return nil, err
	}
	return middleware, nil
}

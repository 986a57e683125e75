package di

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lending-service/internal/adapter/cache"
	ginhandler "lending-service/internal/adapter/gin/handler"
	ginrouter "lending-service/internal/adapter/gin/router"
	"lending-service/internal/adapter/repository/cached"
	"lending-service/internal/adapter/repository/rest"
	"lending-service/internal/config"
	"lending-service/internal/store"
	"lending-service/internal/usecase/catalog"
	"lending-service/internal/usecase/identity"
	"lending-service/internal/usecase/lending"
	"lending-service/internal/usecase/reporting"
	redisclient "lending-service/pkg/redis"
)

// Container holds all application dependencies.
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	RedisClient *redisclient.Client
	Router      *gin.Engine

	LendingUC   *lending.Usecase
	CatalogUC   *catalog.Usecase
	ReportingUC *reporting.Usecase
	IdentityUC  *identity.Usecase
}

// NewContainer creates and wires all application dependencies.
func NewContainer(cfg *config.Config, l *zap.Logger) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	storeClient := store.NewHTTPClient(store.HTTPConfig{
		BaseURL: cfg.Store.BaseURL,
		Timeout: time.Duration(cfg.Store.TimeoutSeconds) * time.Second,
	}, l)

	// Catalog cache is optional; without Redis every read goes to the store.
	var rdb *redisclient.Client
	var bookCache cache.BookCache
	if cfg.Redis.CacheEnabled() {
		client, err := redisclient.NewClient(redisclient.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, l)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Redis: %w", err)
		}
		rdb = client
		bookCache = cache.NewRedisBookCache(
			client.Client,
			time.Duration(cfg.Redis.CacheTTLSeconds)*time.Second,
			l,
		)
	}

	bookRepo := cached.NewCachedBookRepository(rest.NewBookRepo(storeClient, l), bookCache, l)
	loanRepo := rest.NewLoanRepo(storeClient, l)
	userRepo := rest.NewUserRepo(storeClient, l)

	lendingUC := lending.New(bookRepo, loanRepo, l)
	catalogUC := catalog.New(bookRepo, l)
	reportingUC := reporting.New(userRepo, bookRepo, loanRepo, l)
	identityUC := identity.New(userRepo, l)

	router := ginrouter.SetupRouter(ginrouter.Handlers{
		Auth:    ginhandler.NewAuthHandler(identityUC, l),
		Books:   ginhandler.NewBookHandler(catalogUC, l),
		Lending: ginhandler.NewLendingHandler(lendingUC, l),
		Reports: ginhandler.NewReportHandler(reportingUC, l),
	}, identityUC, l)

	return &Container{
		Config:      cfg,
		Logger:      l,
		RedisClient: rdb,
		Router:      router,
		LendingUC:   lendingUC,
		CatalogUC:   catalogUC,
		ReportingUC: reportingUC,
		IdentityUC:  identityUC,
	}, nil
}

// Close closes all resources held by the container.
func (c *Container) Close() error {
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			return fmt.Errorf("failed to close Redis: %w", err)
		}
	}
	return nil
}

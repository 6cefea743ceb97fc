package provider

import (
	"time"

	"github.com/storefront-next/internal/cache"
	"github.com/storefront-next/internal/cart"
	"github.com/storefront-next/internal/catalog"
	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/queue"
	"github.com/storefront-next/internal/repository"
	"github.com/storefront-next/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	CartRepo      repository.CartRepository
	CatalogClient *catalog.Client
	CartStore     *cart.Store

	ProductService *service.ProductService
	CartService    *service.CartService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	c.CartRepo = repository.NewCartRepository(models.DB)
	c.CatalogClient = catalog.NewClient(catalog.Options{
		BaseURL:  cfg.Catalog.BaseURL,
		Timeout:  time.Duration(cfg.Catalog.TimeoutMS) * time.Millisecond,
		PageSize: cfg.Catalog.PageSize,
	})

	// 购物车：从持久化存储恢复，恢复失败从空车开始
	c.CartStore = cart.NewStore(c.CartRepo)
	if err := c.CartStore.Load(); err != nil {
		logger.Errorw("provider_cart_load_failed", "error", err)
	}

	cacheTTL := time.Duration(cfg.Catalog.CacheTTLSecond) * time.Second
	c.ProductService = service.NewProductService(c.CatalogClient, cacheTTL)
	c.CartService = service.NewCartService(c.CartStore, c.CatalogClient, c.QueueClient)

	return c
}

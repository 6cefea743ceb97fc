package router

import (
	"fmt"
	"strings"

	"github.com/storefront-next/internal/cache"
	"github.com/storefront-next/internal/config"
	storefronthandlers "github.com/storefront-next/internal/http/handlers/storefront"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	handler := storefronthandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "sf"
	}
	browseRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:browse", redisPrefix),
		WindowSeconds: cfg.Security.BrowseRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.BrowseRateLimit.MaxRequests,
		Message:       "error.browse_too_many",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 商品浏览（经由目录端转发，整体限流）
		products := apiV1.Group("/products")
		products.Use(RateLimitMiddleware(cache.Client(), browseRule, KeyByIP))
		{
			products.GET("", handler.ListProducts)
			products.GET("/:id", handler.GetProduct)
		}
		apiV1.GET("/categories", handler.ListCategories)

		// 购物车
		cartGroup := apiV1.Group("/cart")
		{
			cartGroup.GET("", handler.GetCart)
			cartGroup.GET("/summary", handler.GetCartSummary)
			cartGroup.POST("/items", handler.AddCartItem)
			cartGroup.DELETE("/items/:product_id", handler.DeleteCartItem)
			cartGroup.POST("/items/:product_id/increase", handler.IncreaseCartItem)
			cartGroup.POST("/items/:product_id/decrease", handler.DecreaseCartItem)
			cartGroup.DELETE("", handler.ClearCart)

			// 数量编辑会话
			cartGroup.POST("/edit", handler.BeginCartEdit)
			cartGroup.PUT("/edit", handler.UpdateCartEdit)
			cartGroup.POST("/edit/commit", handler.CommitCartEdit)
			cartGroup.DELETE("/edit", handler.CancelCartEdit)
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}

package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/storefront-next/internal/cache"
	"github.com/storefront-next/internal/catalog"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
)

const (
	cacheKeyCategoryList  = "catalog:categories"
	cacheKeyProductDetail = "catalog:product:%d"
)

// QueryGuard 列表查询代次守卫，按归一化查询键各自计数。
// 同键的新查询使该键代次 +1，旧查询的响应返回时若代次已过期则作废；
// 不同键的查询互不干扰。
type QueryGuard struct {
	mu   sync.Mutex
	gens map[string]uint64
}

// Begin 登记指定查询键的一次新查询，返回其代次
func (g *QueryGuard) Begin(key string) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.gens == nil {
		g.gens = make(map[string]uint64)
	}
	g.gens[key]++
	return g.gens[key]
}

// Current 判断指定查询键的代次是否仍是最新
func (g *QueryGuard) Current(key string, gen uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.gens[key] == gen
}

// ProductService 商品查询服务
type ProductService struct {
	catalog  *catalog.Client
	cacheTTL time.Duration
	guard    QueryGuard
}

// NewProductService 创建商品查询服务
func NewProductService(client *catalog.Client, cacheTTL time.Duration) *ProductService {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &ProductService{
		catalog:  client,
		cacheTTL: cacheTTL,
	}
}

// ListProducts 查询一页商品。
// 响应返回时若同一查询键已有更新的查询发起，返回 ErrQuerySuperseded，调用方丢弃结果。
func (s *ProductService) ListProducts(ctx context.Context, query catalog.ListQuery) (*catalog.ProductPage, error) {
	key := query.Key()
	gen := s.guard.Begin(key)
	page, err := s.catalog.FetchProducts(ctx, query)
	if err != nil {
		return nil, wrapCatalogError(err)
	}
	if !s.guard.Current(key, gen) {
		logger.Debugw("product_list_response_superseded", "query", key)
		return nil, ErrQuerySuperseded
	}
	return page, nil
}

// GetProduct 查询单个商品，优先命中缓存
func (s *ProductService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	if id == 0 {
		return nil, ErrInvalidProductID
	}
	cacheKey := fmt.Sprintf(cacheKeyProductDetail, id)
	var cached models.Product
	if hit, err := cache.GetJSON(ctx, cacheKey, &cached); err != nil {
		logger.Warnw("product_detail_cache_read_failed", "product_id", id, "error", err)
	} else if hit {
		return &cached, nil
	}

	product, err := s.catalog.FetchProductByID(ctx, id)
	if err != nil {
		return nil, wrapCatalogError(err)
	}
	if err := cache.SetJSON(ctx, cacheKey, product, s.cacheTTL); err != nil {
		logger.Warnw("product_detail_cache_write_failed", "product_id", id, "error", err)
	}
	return product, nil
}

// ListCategories 查询全部分类 slug，优先命中缓存
func (s *ProductService) ListCategories(ctx context.Context) ([]string, error) {
	var cached []string
	if hit, err := cache.GetJSON(ctx, cacheKeyCategoryList, &cached); err != nil {
		logger.Warnw("category_list_cache_read_failed", "error", err)
	} else if hit {
		return cached, nil
	}

	categories, err := s.catalog.FetchCategoryList(ctx)
	if err != nil {
		return nil, wrapCatalogError(err)
	}
	if err := cache.SetJSON(ctx, cacheKeyCategoryList, categories, s.cacheTTL); err != nil {
		logger.Warnw("category_list_cache_write_failed", "error", err)
	}
	return categories, nil
}

// wrapCatalogError 把目录客户端错误转换为服务层哨兵错误
func wrapCatalogError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, catalog.ErrProductNotFound):
		return ErrProductNotFound
	case catalog.IsNetworkError(err):
		return fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	default:
		return err
	}
}

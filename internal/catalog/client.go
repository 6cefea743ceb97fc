package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"
)

const (
	defaultTimeout  = 15 * time.Second
	defaultPageSize = 20
)

// Client 远端商品目录客户端
type Client struct {
	baseURL    string
	httpClient *http.Client
	pageSize   int
}

// Options 目录客户端配置
type Options struct {
	BaseURL  string
	Timeout  time.Duration
	PageSize int
}

// NewClient 创建目录客户端
func NewClient(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"),
		httpClient: &http.Client{Timeout: timeout},
		pageSize:   pageSize,
	}
}

// ListQuery 商品列表查询参数
type ListQuery struct {
	Page     int
	Search   string
	SortBy   string
	Order    string
	Limit    int
	Category string
}

// Key 归一化后的查询标识（用于缓存键与过期响应判定）
func (q ListQuery) Key() string {
	return fmt.Sprintf("q=%s&category=%s&sortBy=%s&order=%s", q.Search, q.Category, q.SortBy, q.Order)
}

// ProductPage 一页商品及分页信息
type ProductPage struct {
	Products []models.Product `json:"products"`
	Total    int              `json:"total"`
	Skip     int              `json:"skip"`
	Limit    int              `json:"limit"`
	HasMore  bool             `json:"has_more"`
}

// listResponse 上游列表接口响应
type listResponse struct {
	Products []models.Product `json:"products"`
	Total    int              `json:"total"`
	Skip     int              `json:"skip"`
	Limit    int              `json:"limit"`
}

// NormalizeSortBy 归一化排序字段，非白名单值视为不排序
func NormalizeSortBy(raw string) string {
	value := strings.TrimSpace(raw)
	switch value {
	case constants.SortByPrice, constants.SortByRating, constants.SortByTitle,
		constants.SortByDiscountPercentage, constants.SortByStock,
		constants.SortByBrand, constants.SortByCategory:
		return value
	default:
		return constants.SortByNone
	}
}

// NormalizeOrder 归一化排序方向，默认升序
func NormalizeOrder(raw string) string {
	if strings.EqualFold(strings.TrimSpace(raw), constants.OrderDesc) {
		return constants.OrderDesc
	}
	return constants.OrderAsc
}

func (c *Client) normalizeQuery(q ListQuery) ListQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit <= 0 {
		q.Limit = c.pageSize
	}
	q.Search = strings.TrimSpace(q.Search)
	q.Category = strings.TrimSpace(q.Category)
	q.SortBy = NormalizeSortBy(q.SortBy)
	q.Order = NormalizeOrder(q.Order)
	return q
}

// FetchProducts 获取一页商品。
// 端点优先级：category > search > 默认列表；两者同时存在时，
// 以 category 端点为主，再向 search 端点发起同窗口请求，按返回的
// 商品 ID 集合做交集过滤。该做法只在当前分页窗口内求交，两个窗口
// 不完全重叠时结果可能不完整，是上游接口不支持组合过滤的既有限制。
func (c *Client) FetchProducts(ctx context.Context, q ListQuery) (*ProductPage, error) {
	q = c.normalizeQuery(q)
	skip := (q.Page - 1) * q.Limit

	var endpoint string
	switch {
	case q.Category != "":
		endpoint = fmt.Sprintf("%s/category/%s?limit=%d&skip=%d", c.baseURL, url.PathEscape(q.Category), q.Limit, skip)
	case q.Search != "":
		endpoint = fmt.Sprintf("%s/search?q=%s&limit=%d&skip=%d", c.baseURL, url.QueryEscape(q.Search), q.Limit, skip)
	default:
		endpoint = fmt.Sprintf("%s?limit=%d&skip=%d", c.baseURL, q.Limit, skip)
	}
	if q.SortBy != constants.SortByNone {
		endpoint += fmt.Sprintf("&sortBy=%s&order=%s", url.QueryEscape(q.SortBy), q.Order)
	}

	var data listResponse
	if err := c.getJSON(ctx, "list_products", endpoint, &data); err != nil {
		return nil, err
	}

	products := data.Products
	total := data.Total
	if q.Category != "" && q.Search != "" {
		searchEndpoint := fmt.Sprintf("%s/search?q=%s&limit=%d&skip=%d", c.baseURL, url.QueryEscape(q.Search), q.Limit, skip)
		var searched listResponse
		if err := c.getJSON(ctx, "search_products", searchEndpoint, &searched); err != nil {
			return nil, err
		}
		searchedIDs := make(map[uint]struct{}, len(searched.Products))
		for _, p := range searched.Products {
			searchedIDs[p.ID] = struct{}{}
		}
		filtered := make([]models.Product, 0, len(products))
		for _, p := range products {
			if _, ok := searchedIDs[p.ID]; ok {
				filtered = append(filtered, p)
			}
		}
		products = filtered
		total = len(filtered)
	}

	return &ProductPage{
		Products: products,
		Total:    total,
		Skip:     skip,
		Limit:    q.Limit,
		HasMore:  skip+len(products) < total,
	}, nil
}

// FetchProductByID 获取单个商品，无结果返回 ErrProductNotFound
func (c *Client) FetchProductByID(ctx context.Context, id uint) (*models.Product, error) {
	endpoint := fmt.Sprintf("%s/%d", c.baseURL, id)
	var product models.Product
	if err := c.getJSON(ctx, "get_product", endpoint, &product); err != nil {
		var ne *NetworkError
		if errors.As(err, &ne) && ne.Status == http.StatusNotFound {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if product.ID == 0 {
		return nil, ErrProductNotFound
	}
	return &product, nil
}

// FetchCategoryList 获取全部分类 slug
func (c *Client) FetchCategoryList(ctx context.Context) ([]string, error) {
	endpoint := c.baseURL + "/category-list"
	var categories []string
	if err := c.getJSON(ctx, "list_categories", endpoint, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (c *Client) getJSON(ctx context.Context, op, endpoint string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return &NetworkError{Op: op, URL: endpoint, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Op: op, URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &NetworkError{Op: op, URL: endpoint, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Op: op, URL: endpoint, Err: err}
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return &NetworkError{Op: op, URL: endpoint, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

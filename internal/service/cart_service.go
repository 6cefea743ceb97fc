package service

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/storefront-next/internal/cart"
	"github.com/storefront-next/internal/catalog"
	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/queue"

	"golang.org/x/sync/errgroup"
)

const cartFetchConcurrency = 8

// AddItemInput 加入购物车输入
type AddItemInput struct {
	ProductID uint
	Quantity  int
	Mode      string // set / increment
}

// AnnotatedProduct 商品列表条目附带的购物车状态
type AnnotatedProduct struct {
	models.Product
	InCart       bool `json:"in_cart"`
	CartQuantity int  `json:"cart_quantity"`
}

// CartItemView 购物车页条目：目录端最新商品数据 + 购物车数量
type CartItemView struct {
	Product   models.Product `json:"product"`
	Quantity  int            `json:"quantity"`
	LineTotal models.Money   `json:"line_total"`
}

// CartView 购物车页聚合视图
type CartView struct {
	Items      []CartItemView `json:"items"`
	TotalItems int            `json:"total_items"`
	TotalPrice models.Money   `json:"total_price"`
}

// CartService 购物车服务：在内存购物车之上做目录校验与视图聚合
type CartService struct {
	store       *cart.Store
	catalog     *catalog.Client
	queueClient *queue.Client
	edit        EditSession
}

// NewCartService 创建购物车服务
func NewCartService(store *cart.Store, client *catalog.Client, queueClient *queue.Client) *CartService {
	return &CartService{
		store:       store,
		catalog:     client,
		queueClient: queueClient,
	}
}

// AddItem 加入购物车。
// 先向目录端确认商品有效，数量钳制到 [1, stock]；
// mode=set 为覆盖语义，mode=increment 为累加语义。
func (s *CartService) AddItem(ctx context.Context, input AddItemInput) error {
	if input.ProductID == 0 {
		return ErrInvalidProductID
	}
	mode := strings.TrimSpace(input.Mode)
	if mode == "" {
		mode = constants.CartAddModeSet
	}
	if mode != constants.CartAddModeSet && mode != constants.CartAddModeIncrement {
		return ErrInvalidAddMode
	}

	product, err := s.catalog.FetchProductByID(ctx, input.ProductID)
	if err != nil {
		return wrapCatalogError(err)
	}

	ref := cart.ProductRef{
		ID:    product.ID,
		Title: product.Title,
		Price: product.Price,
		Image: product.Thumbnail,
	}
	switch mode {
	case constants.CartAddModeIncrement:
		s.store.IncrementOnAdd(ref)
	default:
		quantity := input.Quantity
		if quantity < 1 {
			quantity = 1
		}
		if product.Stock > 0 && quantity > product.Stock {
			quantity = product.Stock
		}
		s.store.SetQuantity(ref, quantity)
	}

	s.enqueueRevalidate("add_item")
	return nil
}

// RemoveItem 移除购物车行，不存在时为无操作
func (s *CartService) RemoveItem(productID uint) error {
	if productID == 0 {
		return ErrInvalidProductID
	}
	s.store.Remove(productID)
	return nil
}

// IncreaseItem 数量 +1
func (s *CartService) IncreaseItem(productID uint) error {
	if productID == 0 {
		return ErrInvalidProductID
	}
	if _, ok := s.store.Quantity(productID); !ok {
		return ErrProductNotInCart
	}
	s.store.Increase(productID)
	return nil
}

// DecreaseItem 数量 -1，减到 0 整行删除
func (s *CartService) DecreaseItem(productID uint) error {
	if productID == 0 {
		return ErrInvalidProductID
	}
	if _, ok := s.store.Quantity(productID); !ok {
		return ErrProductNotInCart
	}
	s.store.Decrease(productID)
	return nil
}

// ClearCart 清空购物车
func (s *CartService) ClearCart() {
	s.store.Clear()
}

// Annotate 为商品列表逐个标注购物车状态
func (s *CartService) Annotate(products []models.Product) []AnnotatedProduct {
	annotated := make([]AnnotatedProduct, 0, len(products))
	for _, product := range products {
		quantity, inCart := s.store.Quantity(product.ID)
		annotated = append(annotated, AnnotatedProduct{
			Product:      product,
			InCart:       inCart,
			CartQuantity: quantity,
		})
	}
	return annotated
}

// ListCartProducts 购物车页聚合：并行向目录端重新拉取每个购物车商品。
// 空购物车直接返回空视图，不发起任何请求；单个商品拉取失败只丢弃该条目，
// 批次本身不失败；条目顺序保持购物车的加入顺序。
// 合计只统计成功渲染的条目，单价取目录端最新价，与各行 line_total 口径一致。
func (s *CartService) ListCartProducts(ctx context.Context) (*CartView, error) {
	lines := s.store.Lines()
	view := &CartView{Items: []CartItemView{}}
	if len(lines) == 0 {
		return view, nil
	}

	results := make([]*models.Product, len(lines))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cartFetchConcurrency)
	for i, line := range lines {
		i, line := i, line
		g.Go(func() error {
			product, err := s.catalog.FetchProductByID(gctx, line.ProductID)
			if err != nil {
				logger.Warnw("cart_product_fetch_failed", "product_id", line.ProductID, "error", err)
				return nil
			}
			results[i] = product
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	totalPrice := decimal.Zero
	for i, product := range results {
		if product == nil {
			continue
		}
		quantity := lines[i].Quantity
		lineTotal := models.NewMoneyFromDecimal(
			product.Price.Decimal.Mul(decimal.NewFromInt(int64(quantity))),
		)
		view.Items = append(view.Items, CartItemView{
			Product:   *product,
			Quantity:  quantity,
			LineTotal: lineTotal,
		})
		view.TotalItems += quantity
		totalPrice = totalPrice.Add(lineTotal.Decimal)
	}
	view.TotalPrice = models.NewMoneyFromDecimal(totalPrice)
	return view, nil
}

// TotalItems 购物车总件数
func (s *CartService) TotalItems() int {
	return s.store.TotalItems()
}

func (s *CartService) enqueueRevalidate(reason string) {
	if !s.queueClient.Enabled() {
		return
	}
	if err := s.queueClient.EnqueueCartRevalidate(queue.CartRevalidatePayload{Reason: reason}); err != nil {
		logger.Warnw("cart_revalidate_enqueue_failed", "reason", reason, "error", err)
	}
}

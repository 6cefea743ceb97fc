package service

import (
	"context"
	"sync"

	"github.com/storefront-next/internal/cart"
)

// EditSession 购物车数量编辑会话。
// 同一时刻至多一个商品处于编辑态；切换编辑目标或取消都会
// 直接丢弃旧草稿，不触碰购物车本身。
type EditSession struct {
	mu       sync.Mutex
	active   bool
	targetID uint
	draft    int
}

// Begin 开始编辑指定商品，草稿初始化为当前数量。
// 已有编辑会话时旧草稿被丢弃。
func (e *EditSession) Begin(productID uint, currentQuantity int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.active = true
	e.targetID = productID
	e.draft = currentQuantity
}

// Update 更新草稿值，最终钳制发生在提交时
func (e *EditSession) Update(value int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.active {
		return false
	}
	e.draft = value
	return true
}

// Cancel 取消编辑，丢弃草稿
func (e *EditSession) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.active = false
	e.targetID = 0
	e.draft = 0
}

// Active 返回当前编辑目标与草稿值
func (e *EditSession) Active() (uint, int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.active {
		return 0, 0, false
	}
	return e.targetID, e.draft, true
}

// take 取走会话内容并关闭会话（提交时使用）
func (e *EditSession) take() (uint, int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.active {
		return 0, 0, false
	}
	id, draft := e.targetID, e.draft
	e.active = false
	e.targetID = 0
	e.draft = 0
	return id, draft, true
}

// BeginEdit 开始编辑购物车中某商品的数量
func (s *CartService) BeginEdit(productID uint) error {
	if productID == 0 {
		return ErrInvalidProductID
	}
	quantity, ok := s.store.Quantity(productID)
	if !ok {
		return ErrProductNotInCart
	}
	s.edit.Begin(productID, quantity)
	return nil
}

// UpdateEdit 更新数量草稿
func (s *CartService) UpdateEdit(value int) error {
	if !s.edit.Update(value) {
		return ErrNoActiveEdit
	}
	return nil
}

// CancelEdit 取消数量编辑，不改动购物车
func (s *CartService) CancelEdit() {
	s.edit.Cancel()
}

// ActiveEdit 返回当前编辑状态
func (s *CartService) ActiveEdit() (uint, int, bool) {
	return s.edit.Active()
}

// CommitEdit 提交数量编辑：向目录端取最新库存，
// 数量钳制到 [1, stock] 后写入购物车，返回生效的数量。
func (s *CartService) CommitEdit(ctx context.Context) (uint, int, error) {
	productID, draft, ok := s.edit.take()
	if !ok {
		return 0, 0, ErrNoActiveEdit
	}
	if _, inCart := s.store.Quantity(productID); !inCart {
		return 0, 0, ErrProductNotInCart
	}

	product, err := s.catalog.FetchProductByID(ctx, productID)
	if err != nil {
		return 0, 0, wrapCatalogError(err)
	}

	quantity := draft
	if product.Stock > 0 && quantity > product.Stock {
		quantity = product.Stock
	}
	if quantity < 1 {
		quantity = 1
	}
	s.store.SetQuantity(cart.ProductRef{
		ID:    product.ID,
		Title: product.Title,
		Price: product.Price,
		Image: product.Thumbnail,
	}, quantity)

	s.enqueueRevalidate("edit_commit")
	return productID, quantity, nil
}

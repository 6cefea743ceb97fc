package storefront

import (
	"strconv"

	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
)

// AddCartItemRequest 加入购物车请求
type AddCartItemRequest struct {
	ProductID uint   `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity"`
	Mode      string `json:"mode"` // set（默认，覆盖）/ increment（累加）
}

// BeginEditRequest 开始数量编辑请求
type BeginEditRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
}

// UpdateEditRequest 更新数量草稿请求
type UpdateEditRequest struct {
	Quantity int `json:"quantity"`
}

// GetCart 购物车页：目录端最新商品数据 + 数量与合计
func (h *Handler) GetCart(c *gin.Context) {
	view, err := h.CartService.ListCartProducts(c.Request.Context())
	if err != nil {
		respondCartMutationError(c, err)
		return
	}
	response.Success(c, view)
}

// GetCartSummary 购物车摘要（角标用）：总件数与总价
func (h *Handler) GetCartSummary(c *gin.Context) {
	response.Success(c, gin.H{
		"total_items": h.CartStore.TotalItems(),
		"total_price": h.CartStore.TotalPrice(),
	})
}

// AddCartItem 加入购物车
func (h *Handler) AddCartItem(c *gin.Context) {
	var req AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if err := h.CartService.AddItem(c.Request.Context(), service.AddItemInput{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Mode:      req.Mode,
	}); err != nil {
		respondCartMutationError(c, err)
		return
	}
	response.Success(c, gin.H{"total_items": h.CartStore.TotalItems()})
}

// DeleteCartItem 移除购物车行
func (h *Handler) DeleteCartItem(c *gin.Context) {
	productID, ok := parseProductID(c)
	if !ok {
		return
	}
	if err := h.CartService.RemoveItem(productID); err != nil {
		respondCartMutationError(c, err)
		return
	}
	response.Success(c, gin.H{"total_items": h.CartStore.TotalItems()})
}

// IncreaseCartItem 数量 +1
func (h *Handler) IncreaseCartItem(c *gin.Context) {
	productID, ok := parseProductID(c)
	if !ok {
		return
	}
	if err := h.CartService.IncreaseItem(productID); err != nil {
		respondCartMutationError(c, err)
		return
	}
	quantity, _ := h.CartStore.Quantity(productID)
	response.Success(c, gin.H{"quantity": quantity})
}

// DecreaseCartItem 数量 -1，减到 0 整行删除
func (h *Handler) DecreaseCartItem(c *gin.Context) {
	productID, ok := parseProductID(c)
	if !ok {
		return
	}
	if err := h.CartService.DecreaseItem(productID); err != nil {
		respondCartMutationError(c, err)
		return
	}
	quantity, inCart := h.CartStore.Quantity(productID)
	response.Success(c, gin.H{"quantity": quantity, "removed": !inCart})
}

// ClearCart 清空购物车
func (h *Handler) ClearCart(c *gin.Context) {
	h.CartService.ClearCart()
	response.Success(c, gin.H{"cleared": true})
}

// BeginCartEdit 开始编辑某行数量，已有编辑会话时旧草稿被丢弃
func (h *Handler) BeginCartEdit(c *gin.Context) {
	var req BeginEditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if err := h.CartService.BeginEdit(req.ProductID); err != nil {
		respondCartMutationError(c, err)
		return
	}
	_, draft, _ := h.CartService.ActiveEdit()
	response.Success(c, gin.H{"product_id": req.ProductID, "draft": draft})
}

// UpdateCartEdit 更新数量草稿，提交前不影响购物车
func (h *Handler) UpdateCartEdit(c *gin.Context) {
	var req UpdateEditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if err := h.CartService.UpdateEdit(req.Quantity); err != nil {
		respondCartMutationError(c, err)
		return
	}
	_, draft, _ := h.CartService.ActiveEdit()
	response.Success(c, gin.H{"draft": draft})
}

// CommitCartEdit 提交数量编辑，数量钳制到 [1, 库存]
func (h *Handler) CommitCartEdit(c *gin.Context) {
	productID, quantity, err := h.CartService.CommitEdit(c.Request.Context())
	if err != nil {
		respondCartMutationError(c, err)
		return
	}
	response.Success(c, gin.H{"product_id": productID, "quantity": quantity})
}

// CancelCartEdit 取消数量编辑，丢弃草稿
func (h *Handler) CancelCartEdit(c *gin.Context) {
	h.CartService.CancelEdit()
	response.Success(c, gin.H{"cancelled": true})
}

func parseProductID(c *gin.Context) (uint, bool) {
	rawID := c.Param("product_id")
	productID, err := strconv.ParseUint(rawID, 10, 64)
	if err != nil || productID == 0 {
		respondError(c, response.CodeBadRequest, "error.product_id_invalid", nil)
		return 0, false
	}
	return uint(productID), true
}

package storefront

import (
	"strconv"

	"github.com/storefront-next/internal/catalog"
	"github.com/storefront-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// ListProducts 商品列表。
// 查询参数 q/category/sortBy/order/page/limit 每次请求从 URL 读取，
// 结果逐条附带购物车状态。
func (h *Handler) ListProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	query := catalog.ListQuery{
		Page:     page,
		Limit:    limit,
		Search:   c.Query("q"),
		Category: c.Query("category"),
		SortBy:   c.Query("sortBy"),
		Order:    c.Query("order"),
	}

	result, err := h.ProductService.ListProducts(c.Request.Context(), query)
	if err != nil {
		respondCatalogQueryError(c, err)
		return
	}

	annotated := h.CartService.Annotate(result.Products)
	response.SuccessWithPage(c, gin.H{"products": annotated}, response.Pagination{
		Page:     page,
		PageSize: result.Limit,
		Total:    result.Total,
		HasMore:  result.HasMore,
	})
}

// GetProduct 商品详情，附带折后价与购物车状态
func (h *Handler) GetProduct(c *gin.Context) {
	rawID := c.Param("id")
	id, err := strconv.ParseUint(rawID, 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "error.product_id_invalid", nil)
		return
	}

	product, err := h.ProductService.GetProduct(c.Request.Context(), uint(id))
	if err != nil {
		respondCatalogQueryError(c, err)
		return
	}

	quantity, inCart := h.CartStore.Quantity(product.ID)
	response.Success(c, gin.H{
		"product":          product,
		"discounted_price": product.DiscountedPrice(),
		"in_cart":          inCart,
		"cart_quantity":    quantity,
	})
}

// ListCategories 全部分类 slug
func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.ProductService.ListCategories(c.Request.Context())
	if err != nil {
		respondCatalogQueryError(c, err)
		return
	}
	response.Success(c, gin.H{"categories": categories})
}

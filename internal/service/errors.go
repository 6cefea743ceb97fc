package service

import "errors"

var (
	// ErrProductNotFound 商品不存在或已下架
	ErrProductNotFound = errors.New("product not found")
	// ErrCatalogUnavailable 目录接口不可用（网络错误或非 2xx 响应）
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	// ErrInvalidProductID 商品 ID 非法
	ErrInvalidProductID = errors.New("invalid product id")
	// ErrInvalidAddMode 加入购物车模式非法
	ErrInvalidAddMode = errors.New("invalid add mode")
	// ErrQuerySuperseded 列表查询已被更新的查询取代，响应作废
	ErrQuerySuperseded = errors.New("query superseded")
	// ErrNoActiveEdit 当前没有进行中的数量编辑
	ErrNoActiveEdit = errors.New("no active quantity edit")
	// ErrProductNotInCart 商品不在购物车中
	ErrProductNotInCart = errors.New("product not in cart")
)

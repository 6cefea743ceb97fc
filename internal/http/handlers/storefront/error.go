package storefront

import (
	"errors"

	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
)

// respondError 返回错误响应，并在有原始错误时记录日志
func respondError(c *gin.Context, code int, msg string, err error) {
	appErr := response.WrapError(code, msg, err)
	if err != nil {
		requestID := ""
		if value, ok := c.Get("request_id"); ok {
			if id, ok := value.(string); ok {
				requestID = id
			}
		}
		logger.Errorw("handler_error",
			"code", appErr.Code,
			"message", appErr.Message,
			"request_id", requestID,
			"error", err,
		)
	}
	response.Error(c, appErr.Code, appErr.Message)
}

// mappedHandlerError 定义业务错误到接口错误响应的映射关系
type mappedHandlerError struct {
	target error
	code   int
	key    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackKey string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.key, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackKey, err)
}

var catalogQueryErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidProductID, code: response.CodeBadRequest, key: "error.product_id_invalid"},
	{target: service.ErrProductNotFound, code: response.CodeNotFound, key: "error.product_not_found"},
	{target: service.ErrQuerySuperseded, code: response.CodeTooManyRequests, key: "error.query_superseded"},
	{target: service.ErrCatalogUnavailable, code: response.CodeBadGateway, key: "error.catalog_unavailable"},
}

var cartMutationErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidProductID, code: response.CodeBadRequest, key: "error.product_id_invalid"},
	{target: service.ErrInvalidAddMode, code: response.CodeBadRequest, key: "error.add_mode_invalid"},
	{target: service.ErrProductNotFound, code: response.CodeNotFound, key: "error.product_not_found"},
	{target: service.ErrProductNotInCart, code: response.CodeNotFound, key: "error.product_not_in_cart"},
	{target: service.ErrNoActiveEdit, code: response.CodeBadRequest, key: "error.no_active_edit"},
	{target: service.ErrCatalogUnavailable, code: response.CodeBadGateway, key: "error.catalog_unavailable"},
}

func respondCatalogQueryError(c *gin.Context, err error) {
	respondWithMappedError(c, err, catalogQueryErrorRules, response.CodeInternal, "error.product_fetch_failed")
}

func respondCartMutationError(c *gin.Context, err error) {
	respondWithMappedError(c, err, cartMutationErrorRules, response.CodeInternal, "error.cart_update_failed")
}

package catalog

import (
	"errors"
	"fmt"
)

// ErrProductNotFound 单个商品查询无结果
var ErrProductNotFound = errors.New("catalog: product not found")

// NetworkError 目录接口请求失败（网络不可达或非 2xx 响应）
type NetworkError struct {
	Op     string
	URL    string
	Status int
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("catalog: %s %s: http status %d", e.Op, e.URL, e.Status)
	}
	return fmt.Sprintf("catalog: %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsNetworkError 判断是否目录接口网络错误
func IsNetworkError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

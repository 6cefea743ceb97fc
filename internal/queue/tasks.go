package queue

import (
	"encoding/json"

	"github.com/storefront-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskCartRevalidate 购物车后台校验任务
	TaskCartRevalidate = constants.TaskCartRevalidate
)

// CartRevalidatePayload 购物车校验任务载荷。
// ProductIDs 为空表示校验当前购物车中的全部商品。
type CartRevalidatePayload struct {
	ProductIDs []uint `json:"product_ids,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

// NewCartRevalidateTask 创建购物车校验任务
func NewCartRevalidateTask(payload CartRevalidatePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCartRevalidate, body), nil
}

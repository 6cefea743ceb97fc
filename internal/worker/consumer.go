package worker

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/storefront-next/internal/catalog"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/provider"
	"github.com/storefront-next/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskCartRevalidate, c.handleCartRevalidate)
}

func (c *Consumer) handleCartRevalidate(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_cart_revalidate_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.CartRevalidatePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_cart_revalidate_unmarshal_failed", "error", err)
		return err
	}
	return c.RevalidateCart(ctx, payload)
}

// RevalidateCart 逐个向目录端核对购物车商品：
// 已下架（404）的商品从购物车移除，网络类错误保留原行等待下次重试。
// 有仓库时以仓库中的当前行为准并按商品逐行删除，
// 避免 worker 与 api 分进程部署时用本进程的旧快照覆盖持久层。
func (c *Consumer) RevalidateCart(ctx context.Context, payload queue.CartRevalidatePayload) error {
	if c == nil || c.Container == nil || c.CatalogClient == nil ||
		(c.CartStore == nil && c.CartRepo == nil) {
		logger.Debugw("worker_cart_revalidate_skip_not_wired")
		return nil
	}

	inCart, err := c.currentCartProducts()
	if err != nil {
		logger.Warnw("worker_cart_revalidate_load_failed", "error", err)
		return err
	}

	ids := payload.ProductIDs
	if len(ids) == 0 {
		ids = inCart
	}
	if len(ids) == 0 {
		return nil
	}

	present := make(map[uint]bool, len(inCart))
	for _, id := range inCart {
		present[id] = true
	}

	var firstErr error
	removed := 0
	for _, id := range ids {
		if !present[id] {
			continue
		}
		_, err := c.CatalogClient.FetchProductByID(ctx, id)
		if err == nil {
			continue
		}
		if errors.Is(err, catalog.ErrProductNotFound) {
			if err := c.removeCartLine(id); err != nil {
				logger.Warnw("worker_cart_revalidate_remove_failed", "product_id", id, "error", err)
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			removed++
			logger.Infow("worker_cart_revalidate_removed_line", "product_id", id, "reason", payload.Reason)
			continue
		}
		logger.Warnw("worker_cart_revalidate_fetch_failed", "product_id", id, "error", err)
		if firstErr == nil {
			firstErr = err
		}
	}

	if removed > 0 {
		logger.Infow("worker_cart_revalidate_done", "checked", len(ids), "removed", removed)
	}
	return firstErr
}

// currentCartProducts 返回当前购物车的商品 ID，保持行顺序。
// 有仓库时从仓库读取最新行，否则退回内存快照。
func (c *Consumer) currentCartProducts() ([]uint, error) {
	if c.CartRepo != nil {
		lines, err := c.CartRepo.Load()
		if err != nil {
			return nil, err
		}
		ids := make([]uint, 0, len(lines))
		for _, line := range lines {
			ids = append(ids, line.ProductID)
		}
		return ids, nil
	}
	lines := c.CartStore.Lines()
	ids := make([]uint, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}
	return ids, nil
}

// removeCartLine 删除单行。有仓库时逐行删除持久层并同步丢弃内存行，
// 不触发内存快照的整体回写。
func (c *Consumer) removeCartLine(productID uint) error {
	if c.CartRepo != nil {
		if err := c.CartRepo.DeleteByProduct(productID); err != nil {
			return err
		}
		if c.CartStore != nil {
			c.CartStore.Discard(productID)
		}
		return nil
	}
	c.CartStore.Remove(productID)
	return nil
}

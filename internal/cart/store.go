package cart

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"
)

// ProductRef 加入购物车时携带的商品快照
type ProductRef struct {
	ID    uint
	Title string
	Price models.Money
	Image string
}

// Store 内存购物车。
// 行按加入顺序排列，商品 ID 唯一，数量恒 >= 1。
// 所有变更在同一把锁内完成，变更后整体写入仓库并通知订阅者；
// 持久化失败只记录日志，不影响内存状态。
type Store struct {
	mu          sync.Mutex
	lines       []models.CartLine
	repo        repository.CartRepository
	subscribers []func()
}

// NewStore 创建购物车
func NewStore(repo repository.CartRepository) *Store {
	return &Store{repo: repo}
}

// Load 从仓库恢复购物车状态，进程启动时调用一次
func (s *Store) Load() error {
	if s.repo == nil {
		return nil
	}
	version, err := s.repo.EnsureSchemaVersion(constants.CartSchemaVersion)
	if err != nil {
		return err
	}
	if version != constants.CartSchemaVersion {
		logger.Warnw("cart_schema_version_mismatch",
			"stored", version,
			"expected", constants.CartSchemaVersion,
		)
	}
	lines, err := s.repo.Load()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.lines = lines
	s.mu.Unlock()
	return nil
}

// Subscribe 注册变更回调，任何成功的变更操作之后触发
func (s *Store) Subscribe(fn func()) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.subscribers = append(s.subscribers, fn)
	s.mu.Unlock()
}

// SetQuantity 覆盖语义的加入/更新：已存在则数量改为 quantity，
// 不存在则追加到末尾；quantity 最小为 1
func (s *Store) SetQuantity(ref ProductRef, quantity int) {
	if ref.ID == 0 {
		return
	}
	if quantity < 1 {
		quantity = 1
	}
	s.mu.Lock()
	now := time.Now()
	if i := s.findLocked(ref.ID); i >= 0 {
		s.lines[i].Quantity = quantity
		s.lines[i].UpdatedAt = now
	} else {
		s.lines = append(s.lines, models.CartLine{
			ProductID: ref.ID,
			Quantity:  quantity,
			Title:     ref.Title,
			Price:     ref.Price,
			Image:     ref.Image,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	s.persistLocked()
	s.unlockAndNotify()
}

// IncrementOnAdd 递增语义的加入：已存在则数量 +1，不存在则插入数量 1
func (s *Store) IncrementOnAdd(ref ProductRef) {
	if ref.ID == 0 {
		return
	}
	s.mu.Lock()
	now := time.Now()
	if i := s.findLocked(ref.ID); i >= 0 {
		s.lines[i].Quantity++
		s.lines[i].UpdatedAt = now
	} else {
		s.lines = append(s.lines, models.CartLine{
			ProductID: ref.ID,
			Quantity:  1,
			Title:     ref.Title,
			Price:     ref.Price,
			Image:     ref.Image,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	s.persistLocked()
	s.unlockAndNotify()
}

// Remove 删除购物车行，不存在时为无操作
func (s *Store) Remove(productID uint) {
	s.mu.Lock()
	i := s.findLocked(productID)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	s.lines = append(s.lines[:i], s.lines[i+1:]...)
	s.persistLocked()
	s.unlockAndNotify()
}

// Discard 仅从内存中删除购物车行，不写持久层；
// 用于持久层已由调用方单独维护的场景。不存在时为无操作
func (s *Store) Discard(productID uint) {
	s.mu.Lock()
	i := s.findLocked(productID)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	s.lines = append(s.lines[:i], s.lines[i+1:]...)
	s.unlockAndNotify()
}

// Increase 数量 +1，不存在时为无操作
func (s *Store) Increase(productID uint) {
	s.mu.Lock()
	i := s.findLocked(productID)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	s.lines[i].Quantity++
	s.lines[i].UpdatedAt = time.Now()
	s.persistLocked()
	s.unlockAndNotify()
}

// Decrease 数量 -1，减到 0 时整行删除；不存在时为无操作
func (s *Store) Decrease(productID uint) {
	s.mu.Lock()
	i := s.findLocked(productID)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	s.lines[i].Quantity--
	if s.lines[i].Quantity <= 0 {
		s.lines = append(s.lines[:i], s.lines[i+1:]...)
	} else {
		s.lines[i].UpdatedAt = time.Now()
	}
	s.persistLocked()
	s.unlockAndNotify()
}

// Clear 清空购物车
func (s *Store) Clear() {
	s.mu.Lock()
	s.lines = nil
	s.persistLocked()
	s.unlockAndNotify()
}

// Lines 返回购物车行快照（加入顺序）
func (s *Store) Lines() []models.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := make([]models.CartLine, len(s.lines))
	copy(snapshot, s.lines)
	return snapshot
}

// Quantity 查询指定商品的数量，第二个返回值表示是否在购物车中
func (s *Store) Quantity(productID uint) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.findLocked(productID); i >= 0 {
		return s.lines[i].Quantity, true
	}
	return 0, false
}

// TotalItems 全部行数量之和
func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, line := range s.lines {
		total += line.Quantity
	}
	return total
}

// TotalPrice 按行内单价快照计算的总价
func (s *Store) TotalPrice() models.Money {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := models.Money{}
	for _, line := range s.lines {
		lineTotal := line.Price.Decimal.Mul(decimal.NewFromInt(int64(line.Quantity)))
		total = models.NewMoneyFromDecimal(total.Decimal.Add(lineTotal))
	}
	return total
}

func (s *Store) findLocked(productID uint) int {
	for i, line := range s.lines {
		if line.ProductID == productID {
			return i
		}
	}
	return -1
}

func (s *Store) persistLocked() {
	if s.repo == nil {
		return
	}
	snapshot := make([]models.CartLine, len(s.lines))
	copy(snapshot, s.lines)
	if err := s.repo.ReplaceAll(snapshot); err != nil {
		logger.Warnw("cart_persist_failed", "error", err)
	}
}

// unlockAndNotify 释放锁后再触发订阅者，避免回调重入死锁
func (s *Store) unlockAndNotify() {
	subscribers := make([]func(), len(s.subscribers))
	copy(subscribers, s.subscribers)
	s.mu.Unlock()
	for _, fn := range subscribers {
		fn()
	}
}

package cart

import (
	"errors"
	"testing"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"
)

// fakeRepo 记录每次整体重写的内存仓库
type fakeRepo struct {
	saved      []models.CartLine
	saveCount  int
	failSave   bool
	storedVer  int
	loadResult []models.CartLine
}

func (r *fakeRepo) Load() ([]models.CartLine, error) {
	return r.loadResult, nil
}

func (r *fakeRepo) ReplaceAll(lines []models.CartLine) error {
	r.saveCount++
	if r.failSave {
		return errors.New("disk full")
	}
	r.saved = lines
	return nil
}

func (r *fakeRepo) DeleteByProduct(productID uint) error {
	return nil
}

func (r *fakeRepo) EnsureSchemaVersion(version int) (int, error) {
	if r.storedVer != 0 {
		return r.storedVer, nil
	}
	return version, nil
}

func ref(id uint, price float64) ProductRef {
	return ProductRef{ID: id, Title: "商品", Price: models.NewMoneyFromFloat(price)}
}

func TestSetQuantityOverwritesExistingLine(t *testing.T) {
	s := NewStore(&fakeRepo{})
	s.SetQuantity(ref(1, 9.99), 2)
	s.SetQuantity(ref(1, 9.99), 5)

	lines := s.Lines()
	if len(lines) != 1 {
		t.Fatalf("期望 1 行，实际 %d", len(lines))
	}
	if lines[0].Quantity != 5 {
		t.Fatalf("期望数量 5，实际 %d", lines[0].Quantity)
	}
}

func TestIncrementOnAddAccumulates(t *testing.T) {
	s := NewStore(&fakeRepo{})
	s.IncrementOnAdd(ref(1, 10))
	s.IncrementOnAdd(ref(1, 10))
	s.IncrementOnAdd(ref(2, 5))

	if got, _ := s.Quantity(1); got != 2 {
		t.Fatalf("期望数量 2，实际 %d", got)
	}
	if s.TotalItems() != 3 {
		t.Fatalf("期望总件数 3，实际 %d", s.TotalItems())
	}
}

func TestQuantityNeverBelowOne(t *testing.T) {
	s := NewStore(&fakeRepo{})
	s.SetQuantity(ref(1, 10), 0)
	if got, _ := s.Quantity(1); got != 1 {
		t.Fatalf("期望数量被钳制到 1，实际 %d", got)
	}
	s.SetQuantity(ref(1, 10), -3)
	if got, _ := s.Quantity(1); got != 1 {
		t.Fatalf("期望数量被钳制到 1，实际 %d", got)
	}
}

func TestDecreaseToZeroRemovesLine(t *testing.T) {
	s := NewStore(&fakeRepo{})
	s.SetQuantity(ref(1, 10), 1)
	s.Decrease(1)

	if len(s.Lines()) != 0 {
		t.Fatalf("期望购物车为空，实际 %d 行", len(s.Lines()))
	}
	if _, ok := s.Quantity(1); ok {
		t.Fatal("减到 0 后该商品不应仍在购物车中")
	}
}

func TestRemoveAbsentIsNoop(t *testing.T) {
	repo := &fakeRepo{}
	s := NewStore(repo)
	s.SetQuantity(ref(1, 10), 1)
	before := repo.saveCount

	s.Remove(99)
	s.Increase(99)
	s.Decrease(99)

	if repo.saveCount != before {
		t.Fatalf("对不存在商品的操作不应触发持久化，写入次数 %d -> %d", before, repo.saveCount)
	}
	if len(s.Lines()) != 1 {
		t.Fatalf("期望 1 行，实际 %d", len(s.Lines()))
	}
}

func TestLinesKeepInsertionOrder(t *testing.T) {
	s := NewStore(&fakeRepo{})
	s.SetQuantity(ref(3, 1), 1)
	s.SetQuantity(ref(1, 1), 1)
	s.SetQuantity(ref(2, 1), 1)
	s.SetQuantity(ref(1, 1), 7) // 更新不改变位置

	lines := s.Lines()
	want := []uint{3, 1, 2}
	for i, id := range want {
		if lines[i].ProductID != id {
			t.Fatalf("位置 %d 期望商品 %d，实际 %d", i, id, lines[i].ProductID)
		}
	}
}

func TestTotalPriceUsesSnapshots(t *testing.T) {
	s := NewStore(&fakeRepo{})
	s.SetQuantity(ref(1, 9.99), 2)
	s.SetQuantity(ref(2, 0.01), 3)

	if got := s.TotalPrice().String(); got != "20.01" {
		t.Fatalf("期望总价 20.01，实际 %s", got)
	}
}

func TestPersistFailureKeepsMemoryState(t *testing.T) {
	repo := &fakeRepo{failSave: true}
	s := NewStore(repo)
	s.SetQuantity(ref(1, 10), 2)

	if got, _ := s.Quantity(1); got != 2 {
		t.Fatalf("持久化失败不应回滚内存状态，期望数量 2，实际 %d", got)
	}
}

func TestSubscribersNotifiedOnEachMutation(t *testing.T) {
	s := NewStore(&fakeRepo{})
	calls := 0
	s.Subscribe(func() { calls++ })

	s.SetQuantity(ref(1, 10), 1)
	s.Increase(1)
	s.Decrease(1)
	s.Clear()

	if calls != 4 {
		t.Fatalf("期望通知 4 次，实际 %d", calls)
	}
}

func TestSubscriberCanReadStoreWithoutDeadlock(t *testing.T) {
	s := NewStore(&fakeRepo{})
	var observed int
	s.Subscribe(func() { observed = s.TotalItems() })

	s.SetQuantity(ref(1, 10), 3)
	if observed != 3 {
		t.Fatalf("回调内读取到的总件数期望 3，实际 %d", observed)
	}
}

func TestLoadRestoresPersistedLines(t *testing.T) {
	repo := &fakeRepo{loadResult: []models.CartLine{
		{ProductID: 7, Quantity: 2, Position: 0},
		{ProductID: 8, Quantity: 1, Position: 1},
	}}
	s := NewStore(repo)
	if err := s.Load(); err != nil {
		t.Fatalf("加载失败: %v", err)
	}
	if s.TotalItems() != 3 {
		t.Fatalf("期望总件数 3，实际 %d", s.TotalItems())
	}
	lines := s.Lines()
	if lines[0].ProductID != 7 || lines[1].ProductID != 8 {
		t.Fatalf("期望顺序 [7 8]，实际 [%d %d]", lines[0].ProductID, lines[1].ProductID)
	}
}

func TestLoadChecksSchemaVersion(t *testing.T) {
	repo := &fakeRepo{storedVer: constants.CartSchemaVersion}
	s := NewStore(repo)
	if err := s.Load(); err != nil {
		t.Fatalf("加载失败: %v", err)
	}
}

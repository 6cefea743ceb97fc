package repository

import (
	"errors"
	"strconv"

	"github.com/storefront-next/internal/models"

	"gorm.io/gorm"
)

// CartRepository 购物车数据访问接口
type CartRepository interface {
	Load() ([]models.CartLine, error)
	ReplaceAll(lines []models.CartLine) error
	DeleteByProduct(productID uint) error
	EnsureSchemaVersion(version int) (int, error)
}

// GormCartRepository GORM 实现
type GormCartRepository struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓库
func NewCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// Load 按加入顺序读取全部购物车行
func (r *GormCartRepository) Load() ([]models.CartLine, error) {
	var lines []models.CartLine
	if err := r.db.Order("position asc").Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

// ReplaceAll 以当前内存状态整体重写持久化购物车，Position 重新编号
func (r *GormCartRepository) ReplaceAll(lines []models.CartLine) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.CartLine{}).Error; err != nil {
			return err
		}
		if len(lines) == 0 {
			return nil
		}
		rows := make([]models.CartLine, len(lines))
		for i, line := range lines {
			line.ID = 0
			line.Position = i
			rows[i] = line
		}
		return tx.Create(&rows).Error
	})
}

// DeleteByProduct 删除指定商品的购物车行
func (r *GormCartRepository) DeleteByProduct(productID uint) error {
	return r.db.Where("product_id = ?", productID).Delete(&models.CartLine{}).Error
}

// EnsureSchemaVersion 确保版本号元数据存在，返回存储中的版本号
func (r *GormCartRepository) EnsureSchemaVersion(version int) (int, error) {
	var meta models.CartMeta
	err := r.db.Where("key = ?", models.CartMetaSchemaVersion).First(&meta).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		meta = models.CartMeta{
			Key:   models.CartMetaSchemaVersion,
			Value: strconv.Itoa(version),
		}
		if err := r.db.Create(&meta).Error; err != nil {
			return 0, err
		}
		return version, nil
	}
	if err != nil {
		return 0, err
	}
	stored, err := strconv.Atoi(meta.Value)
	if err != nil {
		return 0, err
	}
	return stored, nil
}

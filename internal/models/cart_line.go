package models

import (
	"time"
)

// CartLine 购物车行：商品 ID 唯一，数量恒 >= 1，Position 保持加入顺序
type CartLine struct {
	ID        uint      `gorm:"primarykey" json:"-"`                     // 主键
	ProductID uint      `gorm:"not null;uniqueIndex" json:"product_id"`  // 商品ID（目录标识）
	Quantity  int       `gorm:"not null" json:"quantity"`                // 数量
	Title     string    `gorm:"type:varchar(500)" json:"title"`          // 加入时商品标题快照
	Price     Money     `gorm:"type:decimal(20,2);not null;default:0" json:"price"` // 加入时单价快照
	Image     string    `gorm:"type:varchar(1000)" json:"image"`         // 加入时图片快照
	Position  int       `gorm:"not null;index" json:"-"`                 // 加入顺序
	CreatedAt time.Time `json:"created_at"`                              // 创建时间
	UpdatedAt time.Time `json:"updated_at"`                              // 更新时间
}

// TableName 指定表名
func (CartLine) TableName() string {
	return "cart_lines"
}

// CartMeta 购物车元数据（持久化结构版本号等）
type CartMeta struct {
	Key   string `gorm:"primarykey;type:varchar(64)"`
	Value string `gorm:"type:varchar(255);not null"`
}

// TableName 指定表名
func (CartMeta) TableName() string {
	return "cart_meta"
}

// CartMetaSchemaVersion 版本号元数据键
const CartMetaSchemaVersion = "schema_version"

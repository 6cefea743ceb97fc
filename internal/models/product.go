package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StringArray 字符串数组类型，用于 tags、images 等
type StringArray []string

// Review 商品评价（上游目录接口内嵌返回）
type Review struct {
	Rating        float64   `json:"rating"`
	Comment       string    `json:"comment"`
	Date          time.Time `json:"date"`
	ReviewerName  string    `json:"reviewerName"`
	ReviewerEmail string    `json:"reviewerEmail"`
}

// Dimensions 商品尺寸
type Dimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Depth  float64 `json:"depth"`
}

// Product 商品（只读，由远端目录接口提供，字段名与上游 JSON 对齐）
type Product struct {
	ID                  uint        `json:"id"`
	Title               string      `json:"title"`
	Description         string      `json:"description"`
	Category            string      `json:"category"`
	Price               Money       `json:"price"`
	DiscountPercentage  float64     `json:"discountPercentage"`
	Rating              float64     `json:"rating"`
	Stock               int         `json:"stock"`
	Brand               string      `json:"brand,omitempty"`
	SKU                 string      `json:"sku,omitempty"`
	Weight              float64     `json:"weight,omitempty"`
	Dimensions          *Dimensions `json:"dimensions,omitempty"`
	WarrantyInformation string      `json:"warrantyInformation,omitempty"`
	ShippingInformation string      `json:"shippingInformation,omitempty"`
	AvailabilityStatus  string      `json:"availabilityStatus,omitempty"`
	ReturnPolicy        string      `json:"returnPolicy,omitempty"`
	Tags                StringArray `json:"tags,omitempty"`
	Thumbnail           string      `json:"thumbnail,omitempty"`
	Images              StringArray `json:"images,omitempty"`
	Reviews             []Review    `json:"reviews,omitempty"`
}

// DiscountedPrice 计算折后价：price * (1 - discountPercentage/100)
func (p *Product) DiscountedPrice() Money {
	if p == nil {
		return Money{}
	}
	if p.DiscountPercentage <= 0 {
		return p.Price
	}
	factor := decimal.NewFromInt(1).Sub(decimal.NewFromFloat(p.DiscountPercentage).Div(decimal.NewFromInt(100)))
	return NewMoneyFromDecimal(p.Price.Decimal.Mul(factor))
}

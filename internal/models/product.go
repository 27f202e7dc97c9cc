package models

import (
	"time"

	"gorm.io/gorm"
)

// Product 商品表
type Product struct {
	ID            uint           `gorm:"primarykey" json:"id"`                                      // 主键
	CategoryID    uint           `gorm:"index" json:"category_id"`                                  // 分类ID
	Slug          string         `gorm:"uniqueIndex;not null" json:"slug"`                          // 唯一标识
	Name          string         `gorm:"type:varchar(200);not null" json:"name"`                    // 商品名称
	Description   string         `gorm:"type:text" json:"description"`                              // 商品描述
	SKU           string         `gorm:"type:varchar(64);index" json:"sku"`                         // 货号
	PriceAmount   Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price_amount"` // 基础售价
	VariantsJSON  JSON           `gorm:"type:json" json:"variants,omitempty"`                       // 规格价格覆盖（标签 -> 价格字符串）
	Images        StringArray    `gorm:"type:json" json:"images"`                                   // 图片数组
	Tags          StringArray    `gorm:"type:json" json:"tags"`                                     // 标签数组
	StockQuantity int            `gorm:"not null;default:0" json:"stock_quantity"`                  // 库存数量
	WeightGrams   int            `gorm:"not null;default:0" json:"weight_grams"`                    // 单件重量（克，用于运单）
	IsActive      bool           `gorm:"default:true;index" json:"is_active"`                       // 是否上架
	SortOrder     int            `gorm:"default:0;index" json:"sort_order"`                         // 排序权重
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`                                   // 创建时间
	UpdatedAt     time.Time      `json:"updated_at"`                                                // 更新时间
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`                                            // 软删除时间

	Category Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"` // 分类信息
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}

// VariantPrice 返回指定规格标签的价格覆盖；无覆盖时返回 false
func (p *Product) VariantPrice(label string) (string, bool) {
	if label == "" || p.VariantsJSON == nil {
		return "", false
	}
	raw, ok := p.VariantsJSON[label]
	if !ok {
		return "", false
	}
	s, ok := raw.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

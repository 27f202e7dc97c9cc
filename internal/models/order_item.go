package models

import (
	"time"

	"gorm.io/gorm"
)

// OrderItem 订单项表（下单时的商品快照，商品后续修改/删除不影响历史记录）
type OrderItem struct {
	ID           uint           `gorm:"primarykey" json:"id"`                                    // 主键
	OrderID      uint           `gorm:"index;not null" json:"order_id"`                          // 订单ID
	ProductID    uint           `gorm:"index;not null" json:"product_id"`                        // 商品ID（仅引用，不反查）
	ProductName  string         `gorm:"type:varchar(200);not null" json:"product_name"`          // 商品名称快照
	UnitPrice    Money          `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"` // 单价快照
	Quantity     int            `gorm:"not null" json:"quantity"`                                // 数量
	Subtotal     Money          `gorm:"type:decimal(20,2);not null;default:0" json:"subtotal"`   // 小计
	VariantLabel string         `gorm:"type:varchar(50)" json:"variant_label,omitempty"`         // 规格标签快照（如 500g/1kg）
	MetadataJSON JSON           `gorm:"type:json" json:"metadata,omitempty"`                     // 附加元数据
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`                                 // 创建时间
	UpdatedAt    time.Time      `json:"updated_at"`                                              // 更新时间
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`                                          // 软删除时间
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}

package models

import (
	"time"

	"gorm.io/gorm"
)

// CartItem 购物车项（游客按会话ID、登录用户按用户ID归属）
type CartItem struct {
	ID           uint           `gorm:"primarykey" json:"id"`                                                        // 主键
	SessionID    string         `gorm:"type:varchar(64);uniqueIndex:idx_cart_owner_product" json:"session_id"`      // 会话ID（游客购物车）
	UserID       uint           `gorm:"uniqueIndex:idx_cart_owner_product" json:"user_id"`                           // 用户ID（登录购物车，游客为 0）
	ProductID    uint           `gorm:"not null;uniqueIndex:idx_cart_owner_product" json:"product_id"`               // 商品ID
	VariantLabel string         `gorm:"type:varchar(50);uniqueIndex:idx_cart_owner_product" json:"variant_label"`    // 规格标签
	Quantity     int            `gorm:"not null" json:"quantity"`                                                    // 数量
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`                                                     // 创建时间
	UpdatedAt    time.Time      `gorm:"index" json:"updated_at"`                                                     // 更新时间
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`                                                              // 软删除时间

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"` // 关联商品
}

// TableName 指定表名
func (CartItem) TableName() string {
	return "cart_items"
}

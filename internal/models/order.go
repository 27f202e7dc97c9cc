package models

import (
	"time"

	"gorm.io/gorm"
)

// Order 订单表
type Order struct {
	ID            uint           `gorm:"primarykey" json:"id"`                                    // 主键
	OrderNo       string         `gorm:"uniqueIndex;not null" json:"order_no"`                    // 订单编号（对外展示）
	UserID        uint           `gorm:"index" json:"user_id,omitempty"`                          // 用户ID（游客订单为 0）
	SessionID     string         `gorm:"index;type:varchar(64)" json:"session_id,omitempty"`      // 下单时的购物车会话ID
	Email         string         `gorm:"index;not null" json:"email"`                             // 联系邮箱
	Phone         string         `gorm:"type:varchar(20);not null" json:"phone"`                  // 联系电话
	Status        string         `gorm:"index;not null" json:"status"`                            // 订单状态
	PaymentStatus string         `gorm:"index;not null" json:"payment_status"`                    // 支付状态
	PaymentMethod string         `gorm:"type:varchar(20);not null" json:"payment_method"`         // 支付方式（razorpay/cod/bank_transfer）
	PaymentRef    string         `gorm:"index;type:varchar(100)" json:"payment_ref,omitempty"`    // 网关支付引用（外部ID）
	TransactionID string         `gorm:"uniqueIndex;type:varchar(64)" json:"transaction_id"`      // 内部交易ID（下单时生成）
	Currency      string         `gorm:"type:varchar(8);not null;default:'INR'" json:"currency"`  // 币种
	Subtotal      Money          `gorm:"type:decimal(20,2);not null;default:0" json:"subtotal"`   // 商品小计
	Tax           Money          `gorm:"type:decimal(20,2);not null;default:0" json:"tax"`        // 税额
	Shipping      Money          `gorm:"type:decimal(20,2);not null;default:0" json:"shipping"`   // 运费
	Discount      Money          `gorm:"type:decimal(20,2);not null;default:0" json:"discount"`   // 优惠金额
	Total         Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total"`      // 实付总额
	ShippingAddr  string         `gorm:"type:varchar(500);not null" json:"shipping_address"`      // 收货地址（街道/门牌）
	ShippingCity  string         `gorm:"type:varchar(100)" json:"shipping_city"`                  // 收货城市
	ShippingState string         `gorm:"type:varchar(100)" json:"shipping_state"`                 // 收货省/邦
	ShippingZip   string         `gorm:"type:varchar(20)" json:"shipping_zip"`                    // 收货邮编
	ShippingCtry  string         `gorm:"type:varchar(100);default:'India'" json:"shipping_country"` // 收货国家
	Notes         string         `gorm:"type:varchar(500)" json:"notes,omitempty"`                // 买家备注
	TrackingID    string         `gorm:"type:varchar(100)" json:"tracking_id,omitempty"`          // 运单号（AWB）
	CourierName   string         `gorm:"type:varchar(100)" json:"courier_name,omitempty"`         // 承运商名称
	ShipmentID    string         `gorm:"type:varchar(64)" json:"shipment_id,omitempty"`           // 货运单ID（聚合商侧）
	PaidAt        *time.Time     `gorm:"index" json:"paid_at"`                                    // 支付时间
	ShippedAt     *time.Time     `gorm:"index" json:"shipped_at"`                                 // 发货时间
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`                                 // 创建时间
	UpdatedAt     time.Time      `gorm:"index" json:"updated_at"`                                 // 更新时间
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`                                          // 软删除时间

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"` // 订单项
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}

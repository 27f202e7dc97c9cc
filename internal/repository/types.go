package repository

import "time"

// ProductListFilter 查询商品列表的过滤条件
type ProductListFilter struct {
	Page         int
	PageSize     int
	CategoryID   string
	Search       string
	OnlyActive   bool
	WithCategory bool
}

// OrderListFilter 查询订单列表的过滤条件
type OrderListFilter struct {
	Page          int
	PageSize      int
	UserID        uint
	SessionID     string
	Status        string
	PaymentStatus string
	PaymentMethod string
	OrderNo       string
	Email         string
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
}

// UserListFilter 查询用户列表的过滤条件
type UserListFilter struct {
	Page        int
	PageSize    int
	Keyword     string
	Status      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

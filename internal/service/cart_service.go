package service

import (
	"time"

	"github.com/nexacart/internal/models"
	"github.com/nexacart/internal/repository"
)

// CartItemDetail 购物车项详情（用于响应）
type CartItemDetail struct {
	ProductID    uint            `json:"product_id"`
	Quantity     int             `json:"quantity"`
	VariantLabel string          `json:"variant_label,omitempty"`
	UnitPrice    models.Money    `json:"unit_price"`
	BasePrice    models.Money    `json:"base_price"`
	Product      *models.Product `json:"product"`
}

// UpsertCartItemInput 购物车更新输入
type UpsertCartItemInput struct {
	Owner        repository.CartOwner
	ProductID    uint
	Quantity     int
	VariantLabel string
}

// CartService 购物车服务
type CartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

// NewCartService 创建购物车服务
func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// ListByOwner 获取购物车（下架/已删除商品顺带清理）
func (s *CartService) ListByOwner(owner repository.CartOwner) ([]CartItemDetail, error) {
	if owner.UserID == 0 && owner.SessionID == "" {
		return nil, ErrInvalidInput
	}
	items, err := s.cartRepo.ListByOwner(owner)
	if err != nil {
		return nil, err
	}
	details := make([]CartItemDetail, 0, len(items))
	for _, item := range items {
		product := item.Product
		if product == nil || product.ID == 0 {
			p, err := s.productRepo.GetByID(item.ProductID)
			if err != nil {
				return nil, err
			}
			product = p
		}
		if product == nil || !product.IsActive {
			_ = s.cartRepo.DeleteByOwnerAndProduct(owner, item.ProductID, item.VariantLabel)
			continue
		}

		unitPrice := product.PriceAmount
		if raw, ok := product.VariantPrice(item.VariantLabel); ok {
			if parsed, err := models.NewMoneyFromString(raw); err == nil {
				unitPrice = parsed
			}
		}

		details = append(details, CartItemDetail{
			ProductID:    item.ProductID,
			Quantity:     item.Quantity,
			VariantLabel: item.VariantLabel,
			UnitPrice:    unitPrice,
			BasePrice:    product.PriceAmount,
			Product:      product,
		})
	}
	return details, nil
}

// UpsertItem 添加或更新购物车项
func (s *CartService) UpsertItem(input UpsertCartItemInput) error {
	if (input.Owner.UserID == 0 && input.Owner.SessionID == "") || input.ProductID == 0 || input.Quantity <= 0 {
		return ErrInvalidInput
	}
	product, err := s.productRepo.GetByID(input.ProductID)
	if err != nil {
		return err
	}
	if product == nil || !product.IsActive {
		return ErrProductNotAvailable
	}

	now := time.Now()
	item := &models.CartItem{
		SessionID:    input.Owner.SessionID,
		UserID:       input.Owner.UserID,
		ProductID:    input.ProductID,
		VariantLabel: input.VariantLabel,
		Quantity:     input.Quantity,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if item.UserID != 0 {
		item.SessionID = ""
	}
	return s.cartRepo.Upsert(item)
}

// RemoveItem 删除购物车项
func (s *CartService) RemoveItem(owner repository.CartOwner, productID uint, variantLabel string) error {
	if (owner.UserID == 0 && owner.SessionID == "") || productID == 0 {
		return ErrInvalidInput
	}
	return s.cartRepo.DeleteByOwnerAndProduct(owner, productID, variantLabel)
}

// Clear 清空购物车（幂等）
func (s *CartService) Clear(owner repository.CartOwner) error {
	return s.cartRepo.ClearByOwner(owner)
}

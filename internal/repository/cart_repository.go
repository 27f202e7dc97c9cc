package repository

import (
	"errors"

	"github.com/nexacart/internal/models"

	"gorm.io/gorm"
)

// CartOwner 购物车归属（登录用户按 UserID，游客按 SessionID）
type CartOwner struct {
	SessionID string
	UserID    uint
}

// CartRepository 购物车数据访问接口
type CartRepository interface {
	ListByOwner(owner CartOwner) ([]models.CartItem, error)
	Upsert(item *models.CartItem) error
	DeleteByOwnerAndProduct(owner CartOwner, productID uint, variantLabel string) error
	ClearByOwner(owner CartOwner) error
	DeleteByProduct(productID uint) error
	WithTx(tx *gorm.DB) *GormCartRepository
}

// GormCartRepository GORM 实现
type GormCartRepository struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓库
func NewCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCartRepository) WithTx(tx *gorm.DB) *GormCartRepository {
	if tx == nil {
		return r
	}
	return &GormCartRepository{db: tx}
}

func ownerScope(query *gorm.DB, owner CartOwner) *gorm.DB {
	if owner.UserID != 0 {
		return query.Where("user_id = ?", owner.UserID)
	}
	return query.Where("user_id = 0 AND session_id = ?", owner.SessionID)
}

// ListByOwner 获取购物车项（按加入顺序）
func (r *GormCartRepository) ListByOwner(owner CartOwner) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := ownerScope(r.db.Preload("Product"), owner).Order("id asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Upsert 添加或更新购物车项
func (r *GormCartRepository) Upsert(item *models.CartItem) error {
	if item == nil {
		return nil
	}
	owner := CartOwner{SessionID: item.SessionID, UserID: item.UserID}
	var existing models.CartItem
	err := ownerScope(r.db, owner).
		Where("product_id = ? AND variant_label = ?", item.ProductID, item.VariantLabel).
		First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.Create(item).Error
	}
	if err != nil {
		return err
	}
	updates := map[string]interface{}{
		"quantity":   item.Quantity,
		"updated_at": item.UpdatedAt,
	}
	return r.db.Model(&existing).Updates(updates).Error
}

// DeleteByOwnerAndProduct 删除购物车项
func (r *GormCartRepository) DeleteByOwnerAndProduct(owner CartOwner, productID uint, variantLabel string) error {
	query := ownerScope(r.db, owner).Where("product_id = ?", productID)
	if variantLabel != "" {
		query = query.Where("variant_label = ?", variantLabel)
	}
	return query.Delete(&models.CartItem{}).Error
}

// ClearByOwner 清空购物车（幂等：空购物车清空不报错）
func (r *GormCartRepository) ClearByOwner(owner CartOwner) error {
	if owner.UserID == 0 && owner.SessionID == "" {
		return nil
	}
	return ownerScope(r.db, owner).Delete(&models.CartItem{}).Error
}

// DeleteByProduct 商品删除时的购物车引用清理
func (r *GormCartRepository) DeleteByProduct(productID uint) error {
	return r.db.Where("product_id = ?", productID).Delete(&models.CartItem{}).Error
}

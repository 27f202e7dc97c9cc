package service

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/nexacart/internal/models"
	"github.com/nexacart/internal/repository"

	"gorm.io/gorm"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// ProductService 商品业务服务
type ProductService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	cartRepo     repository.CartRepository
}

// NewProductService 创建商品服务
func NewProductService(productRepo repository.ProductRepository, categoryRepo repository.CategoryRepository, cartRepo repository.CartRepository) *ProductService {
	return &ProductService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		cartRepo:     cartRepo,
	}
}

// ProductInput 商品创建/更新入参
type ProductInput struct {
	CategoryID    uint
	Slug          string
	Name          string
	Description   string
	SKU           string
	Price         string
	Variants      map[string]interface{}
	Images        []string
	Tags          []string
	StockQuantity int
	WeightGrams   int
	IsActive      *bool
	SortOrder     int
}

// List 前台商品列表（仅上架商品）
func (s *ProductService) List(filter repository.ProductListFilter) ([]models.Product, int64, error) {
	filter.OnlyActive = true
	filter.WithCategory = true
	return s.productRepo.List(filter)
}

// ListAdmin 后台商品列表（含下架商品）
func (s *ProductService) ListAdmin(filter repository.ProductListFilter) ([]models.Product, int64, error) {
	filter.WithCategory = true
	return s.productRepo.List(filter)
}

// GetBySlug 前台商品详情（仅上架商品）
func (s *ProductService) GetBySlug(slug string) (*models.Product, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, ErrInvalidInput
	}
	product, err := s.productRepo.GetBySlug(slug, true)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// GetByID 后台商品详情
func (s *ProductService) GetByID(id uint) (*models.Product, error) {
	if id == 0 {
		return nil, ErrInvalidInput
	}
	product, err := s.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// Create 创建商品
func (s *ProductService) Create(input ProductInput) (*models.Product, error) {
	slug, err := normalizeSlug(input.Slug)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: 商品名称不能为空", ErrInvalidInput)
	}
	price, err := parseProductPrice(input.Price)
	if err != nil {
		return nil, err
	}
	if input.StockQuantity < 0 {
		return nil, fmt.Errorf("%w: 库存不能为负", ErrInvalidInput)
	}

	if err := s.ensureCategoryExists(input.CategoryID); err != nil {
		return nil, err
	}
	taken, err := s.productRepo.CountBySlug(slug, 0)
	if err != nil {
		return nil, err
	}
	if taken > 0 {
		return nil, ErrSlugTaken
	}

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}
	now := time.Now()
	product := &models.Product{
		CategoryID:    input.CategoryID,
		Slug:          slug,
		Name:          name,
		Description:   strings.TrimSpace(input.Description),
		SKU:           strings.TrimSpace(input.SKU),
		PriceAmount:   price,
		VariantsJSON:  models.JSON(input.Variants),
		Images:        input.Images,
		Tags:          input.Tags,
		StockQuantity: input.StockQuantity,
		WeightGrams:   input.WeightGrams,
		IsActive:      isActive,
		SortOrder:     input.SortOrder,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.productRepo.Create(product); err != nil {
		return nil, err
	}
	return product, nil
}

// Update 更新商品
func (s *ProductService) Update(id uint, input ProductInput) (*models.Product, error) {
	product, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	slug, err := normalizeSlug(input.Slug)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: 商品名称不能为空", ErrInvalidInput)
	}
	price, err := parseProductPrice(input.Price)
	if err != nil {
		return nil, err
	}
	if input.StockQuantity < 0 {
		return nil, fmt.Errorf("%w: 库存不能为负", ErrInvalidInput)
	}

	if err := s.ensureCategoryExists(input.CategoryID); err != nil {
		return nil, err
	}
	taken, err := s.productRepo.CountBySlug(slug, id)
	if err != nil {
		return nil, err
	}
	if taken > 0 {
		return nil, ErrSlugTaken
	}

	product.CategoryID = input.CategoryID
	product.Slug = slug
	product.Name = name
	product.Description = strings.TrimSpace(input.Description)
	product.SKU = strings.TrimSpace(input.SKU)
	product.PriceAmount = price
	product.VariantsJSON = models.JSON(input.Variants)
	product.Images = input.Images
	product.Tags = input.Tags
	product.StockQuantity = input.StockQuantity
	product.WeightGrams = input.WeightGrams
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	product.SortOrder = input.SortOrder
	product.UpdatedAt = time.Now()

	if err := s.productRepo.Update(product); err != nil {
		return nil, err
	}
	return product, nil
}

// SetActive 上架/下架商品
func (s *ProductService) SetActive(id uint, active bool) (*models.Product, error) {
	product, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product.IsActive == active {
		return product, nil
	}
	product.IsActive = active
	product.UpdatedAt = time.Now()
	if err := s.productRepo.Update(product); err != nil {
		return nil, err
	}
	return product, nil
}

// Delete 删除商品（软删除，已有订单保留快照不受影响）
// 同一事务内清理购物车中对该商品的引用，避免残留行卡死结算。
func (s *ProductService) Delete(id uint) error {
	if _, err := s.GetByID(id); err != nil {
		return err
	}
	return models.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.productRepo.WithTx(tx).Delete(id); err != nil {
			return err
		}
		return s.cartRepo.WithTx(tx).DeleteByProduct(id)
	})
}

func (s *ProductService) ensureCategoryExists(categoryID uint) error {
	if categoryID == 0 {
		return nil
	}
	category, err := s.categoryRepo.GetByID(categoryID)
	if err != nil {
		return err
	}
	if category == nil {
		return ErrCategoryNotFound
	}
	return nil
}

func parseProductPrice(raw string) (models.Money, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return models.Money{}, fmt.Errorf("%w: 价格不能为空", ErrInvalidInput)
	}
	price, err := models.NewMoneyFromString(trimmed)
	if err != nil {
		return models.Money{}, fmt.Errorf("%w: 价格格式不合法", ErrInvalidInput)
	}
	if price.IsNegative() {
		return models.Money{}, fmt.Errorf("%w: 价格不能为负", ErrInvalidInput)
	}
	return price, nil
}

// normalizeSlug 归一化并校验 slug
func normalizeSlug(raw string) (string, error) {
	slug := strings.ToLower(strings.TrimSpace(raw))
	if slug == "" {
		return "", fmt.Errorf("%w: slug 不能为空", ErrInvalidInput)
	}
	if !slugPattern.MatchString(slug) {
		return "", fmt.Errorf("%w: slug 仅允许小写字母、数字与中划线", ErrInvalidInput)
	}
	return slug, nil
}

package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/nexacart/internal/models"
	"github.com/nexacart/internal/repository"
)

// CategoryService 分类业务服务
type CategoryService struct {
	categoryRepo repository.CategoryRepository
}

// NewCategoryService 创建分类服务
func NewCategoryService(categoryRepo repository.CategoryRepository) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo}
}

// CategoryInput 分类创建/更新入参
type CategoryInput struct {
	Slug      string
	Name      string
	Icon      string
	SortOrder int
}

// List 分类列表
func (s *CategoryService) List() ([]models.Category, error) {
	return s.categoryRepo.List()
}

// GetByID 分类详情
func (s *CategoryService) GetByID(id uint) (*models.Category, error) {
	if id == 0 {
		return nil, ErrInvalidInput
	}
	category, err := s.categoryRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}
	return category, nil
}

// Create 创建分类
func (s *CategoryService) Create(input CategoryInput) (*models.Category, error) {
	slug, err := normalizeSlug(input.Slug)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: 分类名称不能为空", ErrInvalidInput)
	}

	taken, err := s.categoryRepo.CountBySlug(slug, 0)
	if err != nil {
		return nil, err
	}
	if taken > 0 {
		return nil, ErrSlugTaken
	}

	category := &models.Category{
		Slug:      slug,
		Name:      name,
		Icon:      strings.TrimSpace(input.Icon),
		SortOrder: input.SortOrder,
		CreatedAt: time.Now(),
	}
	if err := s.categoryRepo.Create(category); err != nil {
		return nil, err
	}
	return category, nil
}

// Update 更新分类
func (s *CategoryService) Update(id uint, input CategoryInput) (*models.Category, error) {
	category, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	slug, err := normalizeSlug(input.Slug)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: 分类名称不能为空", ErrInvalidInput)
	}

	taken, err := s.categoryRepo.CountBySlug(slug, id)
	if err != nil {
		return nil, err
	}
	if taken > 0 {
		return nil, ErrSlugTaken
	}

	category.Slug = slug
	category.Name = name
	category.Icon = strings.TrimSpace(input.Icon)
	category.SortOrder = input.SortOrder
	if err := s.categoryRepo.Update(category); err != nil {
		return nil, err
	}
	return category, nil
}

// Delete 删除分类。分类下仍有商品时拒绝删除。
func (s *CategoryService) Delete(id uint) error {
	if _, err := s.GetByID(id); err != nil {
		return err
	}
	count, err := s.categoryRepo.CountProducts(id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrCategoryInUse
	}
	return s.categoryRepo.Delete(id)
}

package admin

import (
	"errors"

	"github.com/nexacart/internal/http/response"
	"github.com/nexacart/internal/service"

	"github.com/gin-gonic/gin"
)

// CategoryRequest 分类创建/更新请求
type CategoryRequest struct {
	Slug      string `json:"slug" binding:"required"`
	Name      string `json:"name" binding:"required"`
	Icon      string `json:"icon"`
	SortOrder int    `json:"sort_order"`
}

func (r CategoryRequest) toInput() service.CategoryInput {
	return service.CategoryInput{
		Slug:      r.Slug,
		Name:      r.Name,
		Icon:      r.Icon,
		SortOrder: r.SortOrder,
	}
}

// ListCategories 后台分类列表
func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.CategoryService.List()
	if err != nil {
		respondError(c, response.CodeInternal, "error.category_fetch_failed", err)
		return
	}
	response.Success(c, gin.H{"items": categories})
}

// CreateCategory 创建分类
func (h *Handler) CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	category, err := h.CategoryService.Create(req.toInput())
	if err != nil {
		respondCategoryError(c, err)
		return
	}
	requestLog(c).Infow("admin_category_created", "category_id", category.ID, "slug", category.Slug)
	response.Success(c, category)
}

// UpdateCategory 更新分类
func (h *Handler) UpdateCategory(c *gin.Context) {
	categoryID, ok := parsePathID(c, "id")
	if !ok {
		return
	}
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	category, err := h.CategoryService.Update(categoryID, req.toInput())
	if err != nil {
		respondCategoryError(c, err)
		return
	}
	response.Success(c, category)
}

// DeleteCategory 删除分类（挂有商品的分类禁止删除）
func (h *Handler) DeleteCategory(c *gin.Context) {
	categoryID, ok := parsePathID(c, "id")
	if !ok {
		return
	}
	if err := h.CategoryService.Delete(categoryID); err != nil {
		respondCategoryError(c, err)
		return
	}
	requestLog(c).Infow("admin_category_deleted", "category_id", categoryID)
	response.Success(c, gin.H{"deleted": true})
}

func respondCategoryError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCategoryNotFound):
		respondError(c, response.CodeNotFound, "error.category_not_found", nil)
	case errors.Is(err, service.ErrSlugTaken):
		respondError(c, response.CodeBadRequest, "error.slug_taken", nil)
	case errors.Is(err, service.ErrCategoryInUse):
		respondError(c, response.CodeBadRequest, "error.category_in_use", nil)
	case errors.Is(err, service.ErrInvalidInput):
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
	default:
		respondError(c, response.CodeInternal, "error.category_update_failed", err)
	}
}

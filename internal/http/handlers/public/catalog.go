package public

import (
	"strconv"

	handlershared "github.com/nexacart/internal/http/handlers/shared"
	"github.com/nexacart/internal/http/response"
	"github.com/nexacart/internal/repository"
	"github.com/nexacart/internal/service"

	"github.com/gin-gonic/gin"
)

// ListProducts 前台商品列表（仅上架商品，支持分类/搜索过滤）
func (h *Handler) ListProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	products, total, err := h.ProductService.List(repository.ProductListFilter{
		Page:       page,
		PageSize:   pageSize,
		CategoryID: c.Query("category_id"),
		Search:     c.Query("search"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.product_fetch_failed", err)
		return
	}

	response.SuccessWithPage(c, gin.H{"items": products}, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	})
}

// GetProduct 前台商品详情
func (h *Handler) GetProduct(c *gin.Context) {
	product, err := h.ProductService.GetBySlug(c.Param("slug"))
	if err != nil {
		respondWithMappedError(c, err, []mappedHandlerError{
			{target: service.ErrProductNotFound, code: response.CodeNotFound, key: "error.product_not_found"},
			{target: service.ErrInvalidInput, code: response.CodeBadRequest, key: "error.bad_request"},
		}, response.CodeInternal, "error.product_fetch_failed")
		return
	}
	response.Success(c, product)
}

// ListCategories 分类列表
func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.CategoryService.List()
	if err != nil {
		respondError(c, response.CodeInternal, "error.category_fetch_failed", err)
		return
	}
	response.Success(c, gin.H{"items": categories})
}

package admin

import (
	"errors"
	"strconv"

	handlershared "github.com/nexacart/internal/http/handlers/shared"
	"github.com/nexacart/internal/http/response"
	"github.com/nexacart/internal/repository"
	"github.com/nexacart/internal/service"

	"github.com/gin-gonic/gin"
)

// ProductRequest 商品创建/更新请求
type ProductRequest struct {
	CategoryID    uint                   `json:"category_id"`
	Slug          string                 `json:"slug" binding:"required"`
	Name          string                 `json:"name" binding:"required"`
	Description   string                 `json:"description"`
	SKU           string                 `json:"sku"`
	Price         string                 `json:"price" binding:"required"`
	Variants      map[string]interface{} `json:"variants"`
	Images        []string               `json:"images"`
	Tags          []string               `json:"tags"`
	StockQuantity int                    `json:"stock_quantity"`
	WeightGrams   int                    `json:"weight_grams"`
	IsActive      *bool                  `json:"is_active"`
	SortOrder     int                    `json:"sort_order"`
}

// SetProductActiveRequest 上下架请求
type SetProductActiveRequest struct {
	IsActive bool `json:"is_active"`
}

func (r ProductRequest) toInput() service.ProductInput {
	return service.ProductInput{
		CategoryID:    r.CategoryID,
		Slug:          r.Slug,
		Name:          r.Name,
		Description:   r.Description,
		SKU:           r.SKU,
		Price:         r.Price,
		Variants:      r.Variants,
		Images:        r.Images,
		Tags:          r.Tags,
		StockQuantity: r.StockQuantity,
		WeightGrams:   r.WeightGrams,
		IsActive:      r.IsActive,
		SortOrder:     r.SortOrder,
	}
}

// ListProducts 后台商品列表（含下架商品）
func (h *Handler) ListProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	products, total, err := h.ProductService.ListAdmin(repository.ProductListFilter{
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

// GetProduct 后台商品详情
func (h *Handler) GetProduct(c *gin.Context) {
	productID, ok := parsePathID(c, "id")
	if !ok {
		return
	}
	product, err := h.ProductService.GetByID(productID)
	if err != nil {
		respondProductError(c, err)
		return
	}
	response.Success(c, product)
}

// CreateProduct 创建商品
func (h *Handler) CreateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	product, err := h.ProductService.Create(req.toInput())
	if err != nil {
		respondProductError(c, err)
		return
	}
	requestLog(c).Infow("admin_product_created", "product_id", product.ID, "slug", product.Slug)
	response.Success(c, product)
}

// UpdateProduct 更新商品
func (h *Handler) UpdateProduct(c *gin.Context) {
	productID, ok := parsePathID(c, "id")
	if !ok {
		return
	}
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	product, err := h.ProductService.Update(productID, req.toInput())
	if err != nil {
		respondProductError(c, err)
		return
	}
	response.Success(c, product)
}

// SetProductActive 上架/下架商品
func (h *Handler) SetProductActive(c *gin.Context) {
	productID, ok := parsePathID(c, "id")
	if !ok {
		return
	}
	var req SetProductActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	product, err := h.ProductService.SetActive(productID, req.IsActive)
	if err != nil {
		respondProductError(c, err)
		return
	}
	response.Success(c, product)
}

// DeleteProduct 删除商品
func (h *Handler) DeleteProduct(c *gin.Context) {
	productID, ok := parsePathID(c, "id")
	if !ok {
		return
	}
	if err := h.ProductService.Delete(productID); err != nil {
		respondProductError(c, err)
		return
	}
	requestLog(c).Infow("admin_product_deleted", "product_id", productID)
	response.Success(c, gin.H{"deleted": true})
}

func respondProductError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProductNotFound):
		respondError(c, response.CodeNotFound, "error.product_not_found", nil)
	case errors.Is(err, service.ErrSlugTaken):
		respondError(c, response.CodeBadRequest, "error.slug_taken", nil)
	case errors.Is(err, service.ErrCategoryNotFound):
		respondError(c, response.CodeBadRequest, "error.category_not_found", nil)
	case errors.Is(err, service.ErrInvalidInput):
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
	default:
		respondError(c, response.CodeInternal, "error.product_update_failed", err)
	}
}

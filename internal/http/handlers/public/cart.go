package public

import (
	"strconv"

	"github.com/nexacart/internal/http/response"
	"github.com/nexacart/internal/service"

	"github.com/gin-gonic/gin"
)

// CartItemRequest 购物车项请求
type CartItemRequest struct {
	ProductID    uint   `json:"product_id" binding:"required"`
	Quantity     int    `json:"quantity" binding:"required"`
	VariantLabel string `json:"variant_label"`
}

// GetCart 获取购物车
func (h *Handler) GetCart(c *gin.Context) {
	owner, ok := h.resolveCartOwner(c)
	if !ok {
		return
	}

	items, err := h.CartService.ListByOwner(owner)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, gin.H{"items": items})
}

// UpsertCartItem 添加/更新购物车项。数量归零等价于删除。
func (h *Handler) UpsertCartItem(c *gin.Context) {
	owner, ok := h.resolveCartOwner(c)
	if !ok {
		return
	}
	var req CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if req.Quantity <= 0 {
		if err := h.CartService.RemoveItem(owner, req.ProductID, req.VariantLabel); err != nil {
			respondCartError(c, err)
			return
		}
		response.Success(c, gin.H{"updated": true})
		return
	}
	if err := h.CartService.UpsertItem(service.UpsertCartItemInput{
		Owner:        owner,
		ProductID:    req.ProductID,
		Quantity:     req.Quantity,
		VariantLabel: req.VariantLabel,
	}); err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, gin.H{"updated": true})
}

// DeleteCartItem 删除购物车项
func (h *Handler) DeleteCartItem(c *gin.Context) {
	owner, ok := h.resolveCartOwner(c)
	if !ok {
		return
	}
	rawID := c.Param("product_id")
	productID, err := strconv.ParseUint(rawID, 10, 64)
	if err != nil || productID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	if err := h.CartService.RemoveItem(owner, uint(productID), c.Query("variant_label")); err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

package admin

import (
	"github.com/nexacart/internal/http/response"

	"github.com/gin-gonic/gin"
)

// Upload 上传文件（商品图、分类图标等）
func (h *Handler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	scene := c.DefaultPostForm("scene", "common")

	url, err := h.UploadService.SaveFile(file, scene)
	if err != nil {
		respondErrorWithMsg(c, response.CodeBadRequest, err.Error(), err)
		return
	}

	requestLog(c).Infow("admin_file_uploaded", "scene", scene, "url", url)
	response.Success(c, gin.H{"url": url})
}

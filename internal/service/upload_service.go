package service

import (
	"encoding/binary"
	"fmt"
	"image"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nexacart/internal/config"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/google/uuid"
)

// 上传场景决定落盘子目录：商品主图、分类封面，其余归入 common
var uploadScenes = map[string]struct{}{
	"product":  {},
	"category": {},
	"common":   {},
}

// UploadService 后台图片上传服务。
// 按扩展名与嗅探到的 MIME 双重校验，图片再限制像素尺寸，
// 防止把任意文件或超大图塞进商品图库。
type UploadService struct {
	cfg *config.Config
}

// NewUploadService 创建上传服务
func NewUploadService(cfg *config.Config) *UploadService {
	return &UploadService{cfg: cfg}
}

// SaveFile 校验并保存上传文件，返回相对 URL（/uploads/<scene>/<yyyy>/<mm>/<uuid><ext>）
func (s *UploadService) SaveFile(file *multipart.FileHeader, scene string) (string, error) {
	limits := s.cfg.Upload
	if file.Size > limits.MaxSize {
		return "", fmt.Errorf("文件大小超过限制（最大 %d MB）", limits.MaxSize/1024/1024)
	}

	ext, err := resolveUploadExtension(file.Filename, limits.AllowedExtensions)
	if err != nil {
		return "", err
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	contentType, err := sniffContentType(src)
	if err != nil {
		return "", err
	}
	if err := checkContentType(contentType, limits.AllowedTypes); err != nil {
		return "", err
	}
	if strings.HasPrefix(contentType, "image/") {
		if err := s.checkImageBounds(src, contentType); err != nil {
			return "", err
		}
	}
	if _, err := src.Seek(0, 0); err != nil {
		return "", err
	}

	return s.store(src, resolveUploadScene(scene), ext)
}

func (s *UploadService) store(src io.Reader, scene, ext string) (string, error) {
	now := time.Now()
	year, month := now.Format("2006"), now.Format("01")
	filename := uuid.New().String() + ext
	savePath := filepath.Join("uploads", scene, year, month, filename)

	if err := os.MkdirAll(filepath.Dir(savePath), 0755); err != nil {
		return "", err
	}
	dst, err := os.Create(savePath)
	if err != nil {
		return "", err
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}

	// 相对路径入库，完整 URL 由前端按部署环境拼接
	return fmt.Sprintf("/uploads/%s/%s/%s/%s", scene, year, month, filename), nil
}

func (s *UploadService) checkImageBounds(src io.ReadSeeker, contentType string) error {
	if _, err := src.Seek(0, 0); err != nil {
		return err
	}
	width, height, err := imageBounds(src, contentType)
	if err != nil {
		return err
	}
	limits := s.cfg.Upload
	if limits.MaxWidth > 0 && width > limits.MaxWidth {
		return fmt.Errorf("图片宽度超过限制（最大 %d）", limits.MaxWidth)
	}
	if limits.MaxHeight > 0 && height > limits.MaxHeight {
		return fmt.Errorf("图片高度超过限制（最大 %d）", limits.MaxHeight)
	}
	return nil
}

func resolveUploadExtension(filename string, allowed []string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if len(allowed) == 0 {
		return ext, nil
	}
	if ext == "" {
		return "", fmt.Errorf("文件扩展名不被允许: %s", ext)
	}
	for _, candidate := range allowed {
		normalized := strings.ToLower(strings.TrimSpace(candidate))
		if normalized == "" {
			continue
		}
		if !strings.HasPrefix(normalized, ".") {
			normalized = "." + normalized
		}
		if ext == normalized {
			return ext, nil
		}
	}
	return "", fmt.Errorf("文件扩展名不被允许: %s", ext)
}

// sniffContentType 读文件头识别 MIME，并把读取位置归零
func sniffContentType(src io.ReadSeeker) (string, error) {
	header := make([]byte, 512)
	if _, err := src.Read(header); err != nil && err != io.EOF {
		return "", err
	}
	if _, err := src.Seek(0, 0); err != nil {
		return "", err
	}
	return http.DetectContentType(header), nil
}

func checkContentType(contentType string, allowed []string) error {
	if len(allowed) == 0 {
		return nil
	}
	for _, candidate := range allowed {
		if strings.EqualFold(contentType, candidate) {
			return nil
		}
	}
	return fmt.Errorf("文件类型不被允许: %s", contentType)
}

func resolveUploadScene(raw string) string {
	scene := strings.ToLower(strings.TrimSpace(raw))
	if _, ok := uploadScenes[scene]; ok {
		return scene
	}
	return "common"
}

func imageBounds(src io.ReadSeeker, contentType string) (int, int, error) {
	if strings.EqualFold(contentType, "image/webp") {
		width, height, err := webpBounds(src)
		if err != nil {
			return 0, 0, fmt.Errorf("无法解析 WebP 图片: %w", err)
		}
		return width, height, nil
	}

	if _, err := src.Seek(0, 0); err != nil {
		return 0, 0, err
	}
	cfg, _, err := image.DecodeConfig(src)
	if err != nil {
		return 0, 0, fmt.Errorf("无法解析图片: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}

// webpBounds 解析 WebP 尺寸。标准库不带 webp 解码器，
// 这里只读 RIFF chunk 头，支持 VP8X / VP8 / VP8L 三种封装。
func webpBounds(src io.ReadSeeker) (int, int, error) {
	if _, err := src.Seek(0, 0); err != nil {
		return 0, 0, err
	}

	header := make([]byte, 12)
	if _, err := io.ReadFull(src, header); err != nil {
		return 0, 0, err
	}
	if string(header[0:4]) != "RIFF" || string(header[8:12]) != "WEBP" {
		return 0, 0, fmt.Errorf("无效的 WebP 文件头")
	}

	for {
		chunkHeader := make([]byte, 8)
		if _, err := io.ReadFull(src, chunkHeader); err != nil {
			return 0, 0, err
		}
		chunkType := string(chunkHeader[0:4])
		chunkSize := int(binary.LittleEndian.Uint32(chunkHeader[4:8]))
		if chunkSize < 0 {
			return 0, 0, fmt.Errorf("无效的 WebP chunk")
		}

		data := make([]byte, chunkSize)
		if _, err := io.ReadFull(src, data); err != nil {
			return 0, 0, err
		}

		switch chunkType {
		case "VP8X":
			if len(data) < 10 {
				return 0, 0, fmt.Errorf("VP8X chunk 长度不足")
			}
			width := 1 + int(data[4]) + int(data[5])<<8 + int(data[6])<<16
			height := 1 + int(data[7]) + int(data[8])<<8 + int(data[9])<<16
			return width, height, nil
		case "VP8 ":
			if len(data) < 10 {
				return 0, 0, fmt.Errorf("VP8 chunk 长度不足")
			}
			width := int(binary.LittleEndian.Uint16(data[6:8]) & 0x3FFF)
			height := int(binary.LittleEndian.Uint16(data[8:10]) & 0x3FFF)
			return width, height, nil
		case "VP8L":
			if len(data) < 5 {
				return 0, 0, fmt.Errorf("VP8L chunk 长度不足")
			}
			if data[0] != 0x2f {
				return 0, 0, fmt.Errorf("VP8L 签名无效")
			}
			bits := binary.LittleEndian.Uint32(data[1:5])
			width := int(bits&0x3FFF) + 1
			height := int((bits>>14)&0x3FFF) + 1
			return width, height, nil
		}

		// chunk 按偶数字节对齐
		if chunkSize%2 == 1 {
			if _, err := src.Seek(1, io.SeekCurrent); err != nil {
				return 0, 0, err
			}
		}
	}
}

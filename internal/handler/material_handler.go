package handler

import (
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/aria/internal/service"
)

// MaterialHandler 心理健康资料处理器
type MaterialHandler struct {
	svc *service.Services
}

// NewMaterialHandler 创建资料处理器
func NewMaterialHandler(svc *service.Services) *MaterialHandler {
	return &MaterialHandler{svc: svc}
}

// Upload 上传资料文件并入库
// 接受 multipart 文件，解析、切分后写入向量索引
func (h *MaterialHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "file is required: "+err.Error())
		return
	}
	title := c.PostForm("title")
	if title == "" {
		title = fileHeader.Filename
	}

	// 落盘到临时目录后交给解析器
	tmpDir, err := os.MkdirTemp("", "aria-material-")
	if err != nil {
		errorResponse(c, err)
		return
	}
	defer os.RemoveAll(tmpDir)

	tmpPath := filepath.Join(tmpDir, filepath.Base(fileHeader.Filename))
	if err := c.SaveUploadedFile(fileHeader, tmpPath); err != nil {
		errorResponse(c, err)
		return
	}

	result, err := h.svc.Material.IngestFile(c.Request.Context(), tmpPath, title)
	if err != nil {
		errorResponse(c, err)
		return
	}

	created(c, result)
}

// IngestDirRequest 目录入库请求
type IngestDirRequest struct {
	Dir string `json:"dir" binding:"required"`
}

// IngestDir 扫描服务器目录并批量入库 PDF 资料
func (h *MaterialHandler) IngestDir(c *gin.Context) {
	var req IngestDirRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid parameters: "+err.Error())
		return
	}

	results, err := h.svc.Material.IngestDir(c.Request.Context(), req.Dir)
	if err != nil {
		errorResponse(c, err)
		return
	}

	success(c, gin.H{"results": results, "count": len(results)})
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/suPer8Hu/codeassist/internal/common"
	"github.com/suPer8Hu/codeassist/internal/preview"
)

func (h *Handler) PreviewState(c *gin.Context) {
	common.OK(c, h.Preview.State())
}

type previewStatusReq struct {
	Status  preview.Status `json:"status" binding:"required"`
	Message string         `json:"message"`
}

func (h *Handler) SetPreviewStatus(c *gin.Context) {
	var req previewStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "status required")
		return
	}
	if !req.Status.Valid() {
		common.Fail(c, http.StatusBadRequest, 10005, "unknown preview status")
		return
	}
	h.Preview.Set(req.Status, req.Message)
	common.OK(c, h.Preview.State())
}

type previewOutputReq struct {
	Lines []string `json:"lines"`
}

func (h *Handler) PreviewOutput(c *gin.Context) {
	var req previewOutputReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}
	for _, line := range req.Lines {
		h.Preview.MonitorOutput(line)
	}
	common.OK(c, h.Preview.State())
}

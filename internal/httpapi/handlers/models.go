package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/suPer8Hu/codeassist/internal/ai"
	"github.com/suPer8Hu/codeassist/internal/common"
)

func (h *Handler) ListProviders(c *gin.Context) {
	common.OK(c, gin.H{
		"providers": h.Registry.Providers(),
		"default":   h.Registry.Default(),
	})
}

// ListModels returns whatever models are known even when the live listing
// fails, as long as there is at least one.
func (h *Handler) ListModels(c *gin.Context) {
	name := c.Param("provider")
	if !h.Registry.Has(name) {
		common.Fail(c, http.StatusNotFound, 40404, "unknown provider")
		return
	}
	models, err := h.Registry.ListModels(c.Request.Context(), name)
	if err != nil {
		h.Logger.Warn("list models failed", zap.String("provider", name), zap.Error(err))
		if len(models) == 0 {
			common.Fail(c, http.StatusBadGateway, 50203, "failed to list models")
			return
		}
	}
	if models == nil {
		models = []ai.ModelInfo{}
	}
	common.OK(c, models)
}

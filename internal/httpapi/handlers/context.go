package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/suPer8Hu/codeassist/internal/ai"
	"github.com/suPer8Hu/codeassist/internal/chat"
	"github.com/suPer8Hu/codeassist/internal/common"
	"github.com/suPer8Hu/codeassist/internal/selector"
	"github.com/suPer8Hu/codeassist/internal/workspace"
)

type selectContextReq struct {
	ChatID   string             `json:"chatId"`
	Messages []chat.Message     `json:"messages"`
	Files    *workspace.FileMap `json:"files"`
	Summary  string             `json:"summary"`
	Provider string             `json:"provider"`
	Model    string             `json:"model"`
}

type selectContextResp struct {
	Files    *workspace.FileMap `json:"files"`
	Retained *workspace.FileMap `json:"retained"`
	Excluded []string           `json:"excluded"`
	Source   string             `json:"source"`
	Provider string             `json:"provider"`
	Model    string             `json:"model"`
}

func (h *Handler) SelectContext(c *gin.Context) {
	var req selectContextReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}
	if len(req.Messages) == 0 {
		common.Fail(c, http.StatusBadRequest, 10004, "messages required")
		return
	}
	if req.Provider == "" {
		req.Provider = h.defaultProvider
	}
	if req.Model == "" {
		req.Model = h.defaultModel
	}

	res, err := h.Engine.SelectContext(c.Request.Context(), selector.Request{
		ChatID:   req.ChatID,
		Messages: req.Messages,
		Files:    req.Files,
		Summary:  req.Summary,
		Provider: req.Provider,
		Model:    req.Model,
	})
	if err != nil {
		var resolveErr *ai.ModelResolutionError
		var parseErr *selector.InvalidContextResponseError
		switch {
		case errors.Is(err, selector.ErrNoUserMessage):
			common.Fail(c, http.StatusBadRequest, 10006, "no user message found")
		case errors.As(err, &resolveErr):
			common.Fail(c, http.StatusBadRequest, 10010, resolveErr.Error())
		case errors.As(err, &parseErr):
			common.Fail(c, http.StatusBadGateway, 50201, "invalid context selection response")
		default:
			h.Logger.Error("select context failed", zap.Error(err))
			common.Fail(c, http.StatusBadGateway, 50202, "model call failed")
		}
		return
	}

	excluded := res.Excluded
	if excluded == nil {
		excluded = []string{}
	}
	common.OK(c, selectContextResp{
		Files:    res.Files,
		Retained: res.Retained,
		Excluded: excluded,
		Source:   res.Source,
		Provider: res.Provider,
		Model:    res.Model,
	})
}

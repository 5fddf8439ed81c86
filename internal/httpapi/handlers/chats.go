package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/suPer8Hu/codeassist/internal/chat"
	"github.com/suPer8Hu/codeassist/internal/common"
	"github.com/suPer8Hu/codeassist/internal/store"
)

func (h *Handler) storeError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, store.ErrChatNotFound):
		common.Fail(c, http.StatusNotFound, 40401, "chat not found")
	case errors.Is(err, store.ErrMessageNotFound):
		common.Fail(c, http.StatusNotFound, 40402, "message not found")
	case errors.Is(err, store.ErrInvalidTimestamp):
		common.Fail(c, http.StatusBadRequest, 10002, "invalid timestamp")
	case errors.Is(err, store.ErrEmptyDescription):
		common.Fail(c, http.StatusBadRequest, 10003, "description cannot be empty")
	default:
		h.Logger.Error("store operation failed", zap.String("op", op), zap.Error(err))
		common.Fail(c, http.StatusInternalServerError, 50001, "db error")
	}
}

func (h *Handler) ListChats(c *gin.Context) {
	items, err := h.Store.ListChats(c.Request.Context())
	if err != nil {
		h.storeError(c, "list", err)
		return
	}
	if items == nil {
		items = []chat.HistoryItem{}
	}
	common.OK(c, items)
}

func (h *Handler) GetChat(c *gin.Context) {
	item, err := h.Store.GetMessages(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.storeError(c, "get", err)
		return
	}
	if item == nil {
		common.Fail(c, http.StatusNotFound, 40401, "chat not found")
		return
	}
	common.OK(c, item)
}

// PutChat stores the body under the id in the path.
func (h *Handler) PutChat(c *gin.Context) {
	var item chat.HistoryItem
	if err := c.ShouldBindJSON(&item); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}
	item.ID = c.Param("id")
	if err := h.Store.PutChat(c.Request.Context(), item); err != nil {
		h.storeError(c, "put", err)
		return
	}
	common.OK(c, gin.H{"id": item.ID})
}

type createChatReq struct {
	Description string         `json:"description"`
	Messages    []chat.Message `json:"messages"`
	Metadata    *chat.Metadata `json:"metadata"`
}

func (h *Handler) CreateChat(c *gin.Context) {
	var req createChatReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}
	urlID, err := h.Store.CreateChatFromMessages(c.Request.Context(), req.Description, req.Messages, req.Metadata)
	h.created(c, "create", urlID, err)
}

func (h *Handler) DeleteChat(c *gin.Context) {
	if err := h.Store.DeleteChat(c.Request.Context(), c.Param("id")); err != nil {
		h.storeError(c, "delete", err)
		return
	}
	common.OK(c, nil)
}

type forkReq struct {
	MessageID string `json:"messageId" binding:"required"`
}

func (h *Handler) ForkChat(c *gin.Context) {
	var req forkReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "messageId required")
		return
	}
	urlID, err := h.Store.ForkChat(c.Request.Context(), c.Param("id"), req.MessageID)
	h.created(c, "fork", urlID, err)
}

func (h *Handler) DuplicateChat(c *gin.Context) {
	urlID, err := h.Store.DuplicateChat(c.Request.Context(), c.Param("id"))
	h.created(c, "duplicate", urlID, err)
}

// created answers an operation that yields a new url id. An empty id with no
// error means the store is degraded and nothing was written.
func (h *Handler) created(c *gin.Context, op, urlID string, err error) {
	if err != nil {
		h.storeError(c, op, err)
		return
	}
	if urlID == "" {
		common.Fail(c, http.StatusServiceUnavailable, 50301, "chat history unavailable")
		return
	}
	common.OK(c, gin.H{"urlId": urlID})
}

type descriptionReq struct {
	Description string `json:"description"`
}

func (h *Handler) UpdateDescription(c *gin.Context) {
	var req descriptionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}
	if err := h.Store.UpdateDescription(c.Request.Context(), c.Param("id"), req.Description); err != nil {
		h.storeError(c, "update_description", err)
		return
	}
	common.OK(c, nil)
}

func (h *Handler) UpdateMetadata(c *gin.Context) {
	var md chat.Metadata
	if err := c.ShouldBindJSON(&md); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}
	if err := h.Store.UpdateMetadata(c.Request.Context(), c.Param("id"), &md); err != nil {
		h.storeError(c, "update_metadata", err)
		return
	}
	common.OK(c, nil)
}

func (h *Handler) GetSnapshot(c *gin.Context) {
	snap, err := h.Store.GetSnapshot(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.storeError(c, "get_snapshot", err)
		return
	}
	if snap == nil {
		common.Fail(c, http.StatusNotFound, 40403, "snapshot not found")
		return
	}
	common.OK(c, snap)
}

func (h *Handler) PutSnapshot(c *gin.Context) {
	var snap chat.Snapshot
	if err := c.ShouldBindJSON(&snap); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}
	if err := h.Store.PutSnapshot(c.Request.Context(), c.Param("id"), snap); err != nil {
		h.storeError(c, "put_snapshot", err)
		return
	}
	common.OK(c, nil)
}

func (h *Handler) DeleteSnapshot(c *gin.Context) {
	if err := h.Store.DeleteSnapshot(c.Request.Context(), c.Param("id")); err != nil {
		h.storeError(c, "delete_snapshot", err)
		return
	}
	common.OK(c, nil)
}

func (h *Handler) FreeURLID(c *gin.Context) {
	id, err := h.Store.URLID(c.Request.Context(), c.Param("candidate"))
	if err != nil {
		h.storeError(c, "url_id", err)
		return
	}
	common.OK(c, gin.H{"urlId": id})
}

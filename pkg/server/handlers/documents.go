package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jurisgraph/jurisgraph"
	"github.com/jurisgraph/jurisgraph/pkg/server/dto"
)

// DocumentsHandler exposes the store's conversion bookkeeping.
type DocumentsHandler struct {
	client *jurisgraph.Client
	log    *slog.Logger
}

// NewDocumentsHandler creates a new documents handler
func NewDocumentsHandler(client *jurisgraph.Client, log *slog.Logger) *DocumentsHandler {
	if log == nil {
		log = slog.Default()
	}
	return &DocumentsHandler{client: client, log: log}
}

// GetCounts handles GET /documents/count
func (h *DocumentsHandler) GetCounts(c *gin.Context) {
	ctx := c.Request.Context()

	total, err := h.client.Store().Count(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "count_failed", Message: err.Error()})
		return
	}
	unconverted, err := h.client.Store().CountUnconverted(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "count_failed", Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.DocumentCountResponse{Total: total, Unconverted: unconverted})
}

// GetUnconverted handles GET /documents/unconverted, listing the doc_ids
// still awaiting conversion.
func (h *DocumentsHandler) GetUnconverted(c *gin.Context) {
	docs, err := h.client.Store().LoadUnconverted(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "load_failed", Message: err.Error()})
		return
	}

	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		if v, ok := doc.Fields["doc_id"]; ok && v != nil {
			ids = append(ids, fmt.Sprintf("%v", v))
		} else {
			ids = append(ids, doc.StoreID)
		}
	}
	c.JSON(http.StatusOK, dto.UnconvertedResponse{Count: len(ids), DocIDs: ids})
}

// MarkConverted handles POST /documents/mark-converted. Manual override for
// documents that were loaded into the graph outside a normal run.
func (h *DocumentsHandler) MarkConverted(c *gin.Context) {
	var req dto.MarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}
	if len(req.DocIDs) == 0 {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: "doc_ids cannot be empty"})
		return
	}

	updated, err := h.client.Store().MarkConverted(c.Request.Context(), req.DocIDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "mark_failed", Message: err.Error()})
		return
	}

	h.log.Info("marked documents converted via API", "requested", len(req.DocIDs), "updated", updated)
	c.JSON(http.StatusOK, dto.MarkResponse{Success: true, Updated: updated})
}

// ResetConverted handles POST /documents/reset-converted, queueing documents
// for reconversion on the next run.
func (h *DocumentsHandler) ResetConverted(c *gin.Context) {
	var req dto.MarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}
	if len(req.DocIDs) == 0 {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: "doc_ids cannot be empty"})
		return
	}

	updated, err := h.client.Store().ResetConverted(c.Request.Context(), req.DocIDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "reset_failed", Message: err.Error()})
		return
	}

	h.log.Info("reset converted flags via API", "requested", len(req.DocIDs), "updated", updated)
	c.JSON(http.StatusOK, dto.MarkResponse{Success: true, Updated: updated})
}

package handlers

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jurisgraph/jurisgraph"
	"github.com/jurisgraph/jurisgraph/pkg/server/dto"
	"github.com/jurisgraph/jurisgraph/pkg/types"
)

// ProcessHandler handles run triggers and status queries.
type ProcessHandler struct {
	client *jurisgraph.Client
	log    *slog.Logger
}

// NewProcessHandler creates a new process handler
func NewProcessHandler(client *jurisgraph.Client, log *slog.Logger) *ProcessHandler {
	if log == nil {
		log = slog.Default()
	}
	return &ProcessHandler{client: client, log: log}
}

// generateProcessID generates a unique process ID for tracking async operations
func generateProcessID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to timestamp if random generation fails
		return fmt.Sprintf("proc_%d", time.Now().UnixNano())
	}
	return fmt.Sprintf("proc_%s", hex.EncodeToString(bytes))
}

// TriggerRun handles POST /process. The run executes in the background; the
// response acknowledges acceptance, and GET /status reports the outcome. A
// concurrent trigger is rejected with 409, never queued.
func (h *ProcessHandler) TriggerRun(c *gin.Context) {
	var req dto.ProcessRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: err.Error()})
			return
		}
	}

	if req.ForceReprocess && len(req.DocIDs) == 0 {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid_request",
			Message: "force_reprocess requires doc_ids",
		})
		return
	}

	// Incremental runs append by default so earlier batches survive in the
	// triple file; a full regenerate overwrites.
	appendMode := !req.Full
	if req.Append != nil {
		appendMode = *req.Append
	}

	opts := jurisgraph.Options{
		DocIDs:         req.DocIDs,
		ForceReprocess: req.ForceReprocess,
		Full:           req.Full,
		DryRun:         req.DryRun,
		Append:         appendMode,
	}

	processID := generateProcessID()
	ctx := context.WithValue(context.Background(), types.ContextKeyRequestSource, "server")

	// The mutex is claimed before Start returns, so a concurrent trigger is
	// answered with 409 here rather than queued behind the active run.
	runID, done, err := h.client.Start(ctx, opts)
	if err != nil {
		if errors.Is(err, types.ErrRunInProgress) {
			c.JSON(http.StatusConflict, dto.ErrorResponse{Error: "run_in_progress", Message: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "run_failed", Message: err.Error()})
		return
	}

	go func() {
		result := <-done
		if result.Succeeded() {
			h.log.Info("background run completed", "process_id", processID, "run_id", runID, "documents", result.DocumentsProcessed)
		} else {
			h.log.Error("background run failed", "process_id", processID, "run_id", runID, "message", result.Message)
		}
	}()

	c.JSON(http.StatusAccepted, dto.ProcessResponse{
		Success:   true,
		Message:   "processing run started",
		ProcessID: processID,
	})
}

// GetStatus handles GET /status
func (h *ProcessHandler) GetStatus(c *gin.Context) {
	st := h.client.Status()
	c.JSON(http.StatusOK, dto.StatusResponse{
		State:      string(st.State),
		Running:    st.Running,
		RunID:      st.RunID,
		LastResult: st.LastResult,
	})
}

// GetStats handles GET /stats, reporting the counters of the most recent
// completed run.
func (h *ProcessHandler) GetStats(c *gin.Context) {
	st := h.client.Status()
	if st.LastResult == nil || st.LastResult.Stats == nil {
		c.JSON(http.StatusOK, gin.H{"message": "no completed run yet"})
		return
	}
	c.JSON(http.StatusOK, st.LastResult.Stats)
}

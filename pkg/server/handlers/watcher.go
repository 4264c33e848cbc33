package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jurisgraph/jurisgraph/pkg/watcher"
)

// WatcherHandler exposes the background watcher's status.
type WatcherHandler struct {
	watcher *watcher.Watcher
}

// NewWatcherHandler creates a new watcher handler. w may be nil when the
// watcher is disabled.
func NewWatcherHandler(w *watcher.Watcher) *WatcherHandler {
	return &WatcherHandler{watcher: w}
}

// GetStatus handles GET /watcher/status
func (h *WatcherHandler) GetStatus(c *gin.Context) {
	if h.watcher == nil {
		c.JSON(http.StatusOK, gin.H{"running": false, "enabled": false})
		return
	}
	c.JSON(http.StatusOK, h.watcher.Status())
}

package handler

import (
	"github.com/gin-gonic/gin"

	appsync "github.com/syncbridge/backend/internal/application/sync"
	syncdomain "github.com/syncbridge/backend/internal/domain/sync"
	"github.com/syncbridge/backend/internal/interfaces/http/dto"
	"github.com/syncbridge/backend/internal/interfaces/http/middleware"
)

// CursorHandler exposes pull cursor checkpoints and their reset escape hatch.
type CursorHandler struct {
	BaseHandler
	pullService *appsync.PullService
}

// NewCursorHandler creates a CursorHandler.
func NewCursorHandler(pullService *appsync.PullService) *CursorHandler {
	return &CursorHandler{pullService: pullService}
}

// ListCursors handles GET /cursors.
func (h *CursorHandler) ListCursors(c *gin.Context) {
	cursors, err := h.pullService.ListCursors(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.NewCursorListResponse(cursors))
}

// ResetCursor handles DELETE /cursors/:fingerprint.
func (h *CursorHandler) ResetCursor(c *gin.Context) {
	fingerprint := c.Param("fingerprint")
	if fingerprint == "" {
		h.BadRequest(c, "Cursor fingerprint is required")
		return
	}

	if err := h.pullService.ResetCursorByFingerprint(c.Request.Context(), fingerprint); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// ResetCursorsByKind handles DELETE /cursors?kind=.
func (h *CursorHandler) ResetCursorsByKind(c *gin.Context) {
	var req dto.ResetCursorsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	if err := h.pullService.ResetCursorsByKind(c.Request.Context(), syncdomain.JobKind(req.Kind)); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

package handler

import (
	"github.com/gin-gonic/gin"

	appsync "github.com/syncbridge/backend/internal/application/sync"
	syncdomain "github.com/syncbridge/backend/internal/domain/sync"
	"github.com/syncbridge/backend/internal/interfaces/http/dto"
	"github.com/syncbridge/backend/internal/interfaces/http/middleware"
)

// SyncHandler starts bulk sync jobs: pulls, pushes and auto-match runs.
type SyncHandler struct {
	BaseHandler
	pullService      *appsync.PullService
	pushService      *appsync.PushService
	autoMatchService *appsync.AutoMatchService
}

// NewSyncHandler creates a SyncHandler.
func NewSyncHandler(
	pullService *appsync.PullService,
	pushService *appsync.PushService,
	autoMatchService *appsync.AutoMatchService,
) *SyncHandler {
	return &SyncHandler{
		pullService:      pullService,
		pushService:      pushService,
		autoMatchService: autoMatchService,
	}
}

// StartPull handles POST /syncs/pull. Returns 202 with the queued job, or
// 409 when an equivalent pull is already running.
func (h *SyncHandler) StartPull(c *gin.Context) {
	var req dto.StartPullRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	job, err := h.pullService.StartPull(c.Request.Context(), syncdomain.JobKind(req.Kind), req.Filters, req.ForceRestart)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Accepted(c, dto.NewJobAcceptedResponse(job))
}

// StartPush handles POST /syncs/push.
func (h *SyncHandler) StartPush(c *gin.Context) {
	var req dto.StartPushRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	job, err := h.pushService.StartPush(c.Request.Context(), req.EntityIDs)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Accepted(c, dto.NewJobAcceptedResponse(job))
}

// StartAutoMatch handles POST /syncs/automatch.
func (h *SyncHandler) StartAutoMatch(c *gin.Context) {
	var req dto.StartAutoMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	job, err := h.autoMatchService.StartAutoMatch(c.Request.Context(), syncdomain.MappingKind(req.Kind))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Accepted(c, dto.NewJobAcceptedResponse(job))
}

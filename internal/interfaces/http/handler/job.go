package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appsync "github.com/syncbridge/backend/internal/application/sync"
	"github.com/syncbridge/backend/internal/interfaces/http/dto"
	"github.com/syncbridge/backend/internal/interfaces/http/middleware"
)

// JobHandler serves the job ledger: progress polling and audit logs.
type JobHandler struct {
	BaseHandler
	jobService *appsync.JobService
}

// NewJobHandler creates a JobHandler.
func NewJobHandler(jobService *appsync.JobService) *JobHandler {
	return &JobHandler{jobService: jobService}
}

// GetJob handles GET /jobs/:id.
func (h *JobHandler) GetJob(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid job ID")
		return
	}

	job, err := h.jobService.GetJob(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.NewJobResponse(job))
}

// ListJobs handles GET /jobs.
func (h *JobHandler) ListJobs(c *gin.Context) {
	var req dto.ListJobsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	filter := req.ToFilter()
	jobs, total, err := h.jobService.ListJobs(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page, pageSize := filter.Page, filter.PageSize
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	h.SuccessWithMeta(c, dto.NewJobListResponse(jobs), total, page, pageSize)
}

// GetJobLogs handles GET /jobs/:id/logs.
func (h *JobHandler) GetJobLogs(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid job ID")
		return
	}

	limit := 100
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 1000 {
			h.BadRequest(c, "Invalid limit")
			return
		}
		limit = parsed
	}

	logs, err := h.jobService.GetJobLogs(c.Request.Context(), id, limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.NewSyncLogListResponse(logs))
}

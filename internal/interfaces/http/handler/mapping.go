package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appsync "github.com/syncbridge/backend/internal/application/sync"
	syncdomain "github.com/syncbridge/backend/internal/domain/sync"
	"github.com/syncbridge/backend/internal/interfaces/http/dto"
	"github.com/syncbridge/backend/internal/interfaces/http/middleware"
)

// MappingHandler manages reconciliation links and location mappings.
type MappingHandler struct {
	BaseHandler
	mappingService *appsync.MappingService
}

// NewMappingHandler creates a MappingHandler.
func NewMappingHandler(mappingService *appsync.MappingService) *MappingHandler {
	return &MappingHandler{mappingService: mappingService}
}

// ListMappings handles GET /mappings.
func (h *MappingHandler) ListMappings(c *gin.Context) {
	var req dto.ListMappingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	filter := req.ToFilter()
	mappings, total, err := h.mappingService.ListMappings(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page, pageSize := filter.Page, filter.PageSize
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 50
	}
	h.SuccessWithMeta(c, dto.NewMappingListResponse(mappings), total, page, pageSize)
}

// GetMapping handles GET /mappings/:id.
func (h *MappingHandler) GetMapping(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid mapping ID")
		return
	}

	mapping, err := h.mappingService.GetMapping(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.NewMappingResponse(mapping))
}

// MapEntity handles POST /mappings. Manual linking from the dashboard.
func (h *MappingHandler) MapEntity(c *gin.Context) {
	var req dto.MapEntityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	mapping, err := h.mappingService.MapEntity(
		c.Request.Context(),
		syncdomain.MappingKind(req.Kind),
		req.SourceID,
		req.TargetID,
		req.TargetName,
	)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, dto.NewMappingResponse(mapping))
}

// UnmapEntity handles POST /mappings/:id/unmap.
func (h *MappingHandler) UnmapEntity(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid mapping ID")
		return
	}

	mapping, err := h.mappingService.UnmapEntity(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.NewMappingResponse(mapping))
}

// ApproveMapping handles POST /mappings/:id/approve. Clears the approval
// hold placed by a REQUIRE_APPROVAL rule.
func (h *MappingHandler) ApproveMapping(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid mapping ID")
		return
	}

	mapping, err := h.mappingService.ApproveMapping(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.NewMappingResponse(mapping))
}

// GetStats handles GET /mappings/stats.
func (h *MappingHandler) GetStats(c *gin.Context) {
	var req dto.MappingStatsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	stats, err := h.mappingService.GetStats(c.Request.Context(), syncdomain.MappingKind(req.Kind))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	byStatus := make(map[string]int64, len(stats.ByStatus))
	for status, count := range stats.ByStatus {
		byStatus[string(status)] = count
	}
	h.Success(c, dto.MappingStatsResponse{
		Kind:     string(stats.Kind),
		Total:    stats.Total,
		ByStatus: byStatus,
	})
}

// ListLocationMappings handles GET /locations.
func (h *MappingHandler) ListLocationMappings(c *gin.Context) {
	mappings, err := h.mappingService.ListLocationMappings(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.NewLocationMappingListResponse(mappings))
}

// SaveLocationMapping handles POST /locations.
func (h *MappingHandler) SaveLocationMapping(c *gin.Context) {
	var req dto.SaveLocationMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	mapping, err := h.mappingService.SaveLocationMapping(
		c.Request.Context(),
		req.WarehouseID,
		req.WarehouseName,
		req.LocationID,
		req.LocationName,
	)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, dto.NewLocationMappingResponse(mapping))
}

// DeleteLocationMapping handles DELETE /locations/:id.
func (h *MappingHandler) DeleteLocationMapping(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid location mapping ID")
		return
	}

	if err := h.mappingService.DeleteLocationMapping(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appsync "github.com/syncbridge/backend/internal/application/sync"
	"github.com/syncbridge/backend/internal/domain/rules"
	"github.com/syncbridge/backend/internal/interfaces/http/dto"
	"github.com/syncbridge/backend/internal/interfaces/http/middleware"
)

// RuleHandler manages the gating rule configuration.
type RuleHandler struct {
	BaseHandler
	ruleService *appsync.RuleService
}

// NewRuleHandler creates a RuleHandler.
func NewRuleHandler(ruleService *appsync.RuleService) *RuleHandler {
	return &RuleHandler{ruleService: ruleService}
}

// ListRules handles GET /rules.
func (h *RuleHandler) ListRules(c *gin.Context) {
	ruleList, err := h.ruleService.ListRules(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.NewRuleListResponse(ruleList))
}

// GetRule handles GET /rules/:id.
func (h *RuleHandler) GetRule(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid rule ID")
		return
	}

	rule, err := h.ruleService.GetRule(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.NewRuleResponse(rule))
}

// CreateRule handles POST /rules.
func (h *RuleHandler) CreateRule(c *gin.Context) {
	var req dto.CreateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	rule, err := h.ruleService.CreateRule(
		c.Request.Context(),
		req.Name,
		rules.TargetKind(req.TargetKind),
		req.Priority,
		rules.Combinator(req.Combinator),
		dto.ToConditions(req.Conditions),
		dto.ToActions(req.Actions),
	)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, dto.NewRuleResponse(rule))
}

// UpdateRule handles PUT /rules/:id.
func (h *RuleHandler) UpdateRule(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid rule ID")
		return
	}

	var req dto.UpdateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	rule, err := h.ruleService.UpdateRule(
		c.Request.Context(),
		id,
		req.Name,
		rules.TargetKind(req.TargetKind),
		req.Priority,
		rules.Combinator(req.Combinator),
		dto.ToConditions(req.Conditions),
		dto.ToActions(req.Actions),
		req.Active,
	)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.NewRuleResponse(rule))
}

// DeleteRule handles DELETE /rules/:id.
func (h *RuleHandler) DeleteRule(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid rule ID")
		return
	}

	if err := h.ruleService.DeleteRule(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

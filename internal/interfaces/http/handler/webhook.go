package handler

import (
	"bytes"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	appsync "github.com/syncbridge/backend/internal/application/sync"
	syncdomain "github.com/syncbridge/backend/internal/domain/sync"
	"github.com/syncbridge/backend/internal/interfaces/http/dto"
	"github.com/syncbridge/backend/internal/interfaces/http/middleware"
)

// WebhookHandler receives inbound change notifications from the Source and
// reconciles the affected entity synchronously. Signature verification is
// the responsibility of the gateway in front of this service.
type WebhookHandler struct {
	BaseHandler
	webhookService *appsync.WebhookService
}

// NewWebhookHandler creates a WebhookHandler.
func NewWebhookHandler(webhookService *appsync.WebhookService) *WebhookHandler {
	return &WebhookHandler{webhookService: webhookService}
}

// HandleEvent handles POST /webhooks/:kind. The path parameter is the event
// kind, e.g. customer.changed or inventory.changed. Unknown kinds are
// acknowledged with outcome IGNORED so the Source never retries them.
func (h *WebhookHandler) HandleEvent(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.BadRequest(c, "Unable to read request body")
		return
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(raw))

	var req dto.WebhookEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	quantity := decimal.Zero
	if req.Quantity != "" {
		parsed, err := decimal.NewFromString(req.Quantity)
		if err != nil {
			h.BadRequest(c, "Invalid quantity")
			return
		}
		quantity = parsed
	}

	event := appsync.InboundEvent{
		Kind: c.Param("kind"),
		Entity: syncdomain.SourceEntity{
			ID:       req.EntityID,
			SKU:      req.SKU,
			Name:     req.Name,
			Email:    req.Email,
			Phone:    req.Phone,
			Quantity: quantity,
			Tags:     req.Tags,
		},
		Field:       req.Field,
		Value:       req.Value,
		WarehouseID: req.WarehouseID,
		RawPayload:  string(raw),
	}

	outcome, err := h.webhookService.OnInboundEvent(c.Request.Context(), event)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.WebhookOutcomeResponse{Outcome: string(outcome)})
}

package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	appsync "github.com/syncbridge/backend/internal/application/sync"
	rulesdomain "github.com/syncbridge/backend/internal/domain/rules"
	syncdomain "github.com/syncbridge/backend/internal/domain/sync"
	"github.com/syncbridge/backend/internal/interfaces/http/dto"
)

type webhookTestEnv struct {
	router    *gin.Engine
	mappings  *MockEntityMappingRepository
	locations *MockLocationMappingRepository
	rules     *MockRuleRepository
	syncLogs  *MockSyncLogRepository
	target    *MockTargetClient
}

func newWebhookTestEnv(t *testing.T) *webhookTestEnv {
	t.Helper()

	env := &webhookTestEnv{
		mappings:  new(MockEntityMappingRepository),
		locations: new(MockLocationMappingRepository),
		rules:     new(MockRuleRepository),
		syncLogs:  new(MockSyncLogRepository),
		target:    new(MockTargetClient),
	}
	service := appsync.NewWebhookService(
		env.mappings,
		env.locations,
		env.rules,
		env.syncLogs,
		env.target,
		"loc-default",
		nil,
	)
	h := NewWebhookHandler(service)

	env.router = gin.New()
	env.router.POST("/webhooks/:kind", h.HandleEvent)
	return env
}

func (e *webhookTestEnv) post(t *testing.T, kind string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/webhooks/"+kind, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	e.router.ServeHTTP(w, req)
	return w
}

func decodeOutcome(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Data dto.WebhookOutcomeResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Data.Outcome
}

func TestWebhookHandlerCustomerChanged(t *testing.T) {
	t.Run("pushes field change for linked customer", func(t *testing.T) {
		env := newWebhookTestEnv(t)
		mapping := makeTestMapping(t, syncdomain.MappingKindCustomer, "cust-1")
		require.NoError(t, mapping.Link("gid://Customer/1", "Ada"))
		env.mappings.On("FindBySourceID", mock.Anything, syncdomain.MappingKindCustomer, "cust-1").
			Return(mapping, nil)
		env.rules.On("FindActive", mock.Anything, rulesdomain.TargetKindCustomer).
			Return([]rulesdomain.Rule{}, nil)
		env.target.On("UpdateCustomerField", mock.Anything, "gid://Customer/1", "phone", "+15550100").
			Return(nil)
		env.mappings.On("Save", mock.Anything, mock.MatchedBy(func(m *syncdomain.EntityMapping) bool {
			return m.Status == syncdomain.MappingStatusSynced
		})).Return(nil)
		env.syncLogs.On("AppendWebhook", mock.Anything, mock.Anything).Return(nil)

		w := env.post(t, "customer.changed", dto.WebhookEventRequest{
			EntityID: "cust-1",
			Field:    "phone",
			Value:    "+15550100",
		})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, string(syncdomain.SyncOutcomeSynced), decodeOutcome(t, w))
		env.target.AssertExpectations(t)
		env.mappings.AssertExpectations(t)
	})

	t.Run("ignores unmapped customer", func(t *testing.T) {
		env := newWebhookTestEnv(t)
		env.mappings.On("FindBySourceID", mock.Anything, syncdomain.MappingKindCustomer, "cust-9").
			Return(nil, syncdomain.ErrMappingNotFound)
		env.syncLogs.On("AppendWebhook", mock.Anything, mock.Anything).Return(nil)

		w := env.post(t, "customer.changed", dto.WebhookEventRequest{EntityID: "cust-9"})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, string(syncdomain.SyncOutcomeIgnored), decodeOutcome(t, w))
	})

	t.Run("holds customer matching an approval rule", func(t *testing.T) {
		env := newWebhookTestEnv(t)
		mapping := makeTestMapping(t, syncdomain.MappingKindCustomer, "cust-2")
		require.NoError(t, mapping.Link("gid://Customer/2", "Bea"))
		rule, err := rulesdomain.NewRule("hold all", rulesdomain.TargetKindCustomer, 10, rulesdomain.CombinatorAnd,
			[]rulesdomain.Condition{{Field: "email", Operator: rulesdomain.OperatorContains, Value: "@"}},
			[]rulesdomain.Action{{Type: rulesdomain.ActionRequireApproval, Value: "manual review"}})
		require.NoError(t, err)
		env.mappings.On("FindBySourceID", mock.Anything, syncdomain.MappingKindCustomer, "cust-2").
			Return(mapping, nil)
		env.rules.On("FindActive", mock.Anything, rulesdomain.TargetKindCustomer).
			Return([]rulesdomain.Rule{*rule}, nil)
		env.mappings.On("Save", mock.Anything, mock.MatchedBy(func(m *syncdomain.EntityMapping) bool {
			return m.Status == syncdomain.MappingStatusPendingApproval
		})).Return(nil)
		env.syncLogs.On("AppendWebhook", mock.Anything, mock.Anything).Return(nil)

		w := env.post(t, "customer.changed", dto.WebhookEventRequest{
			EntityID: "cust-2",
			Email:    "bea@example.com",
		})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, string(syncdomain.SyncOutcomePendingApproval), decodeOutcome(t, w))
		env.target.AssertNotCalled(t, "UpdateCustomerField", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestWebhookHandlerInventoryChanged(t *testing.T) {
	t.Run("sets inventory at mapped location", func(t *testing.T) {
		env := newWebhookTestEnv(t)
		mapping := makeTestMapping(t, syncdomain.MappingKindProduct, "prod-1")
		require.NoError(t, mapping.Link("gid://Variant/1", "Widget"))
		location, err := syncdomain.NewLocationMapping("wh-east", "East", "loc-east", "East Store")
		require.NoError(t, err)
		env.mappings.On("FindBySourceID", mock.Anything, syncdomain.MappingKindProduct, "prod-1").
			Return(mapping, nil)
		env.rules.On("FindActive", mock.Anything, rulesdomain.TargetKindProduct).
			Return([]rulesdomain.Rule{}, nil)
		env.locations.On("FindActive", mock.Anything).
			Return([]syncdomain.LocationMapping{*location}, nil)
		env.target.On("SetInventory", mock.Anything, "gid://Variant/1",
			decimal.RequireFromString("42"), "loc-east").Return("adj-1", nil)
		env.mappings.On("Save", mock.Anything, mock.Anything).Return(nil)
		env.syncLogs.On("AppendWebhook", mock.Anything, mock.Anything).Return(nil)

		w := env.post(t, "inventory.changed", dto.WebhookEventRequest{
			EntityID:    "prod-1",
			SKU:         "W-1",
			Quantity:    "42",
			WarehouseID: "wh-east",
		})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, string(syncdomain.SyncOutcomeSynced), decodeOutcome(t, w))
		env.target.AssertExpectations(t)
	})

	t.Run("falls back to default location", func(t *testing.T) {
		env := newWebhookTestEnv(t)
		mapping := makeTestMapping(t, syncdomain.MappingKindProduct, "prod-2")
		require.NoError(t, mapping.Link("gid://Variant/2", "Gadget"))
		env.mappings.On("FindBySourceID", mock.Anything, syncdomain.MappingKindProduct, "prod-2").
			Return(mapping, nil)
		env.rules.On("FindActive", mock.Anything, rulesdomain.TargetKindProduct).
			Return([]rulesdomain.Rule{}, nil)
		env.target.On("SetInventory", mock.Anything, "gid://Variant/2",
			decimal.RequireFromString("7"), "loc-default").Return("adj-2", nil)
		env.mappings.On("Save", mock.Anything, mock.Anything).Return(nil)
		env.syncLogs.On("AppendWebhook", mock.Anything, mock.Anything).Return(nil)

		w := env.post(t, "inventory.changed", dto.WebhookEventRequest{
			EntityID: "prod-2",
			Quantity: "7",
		})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, string(syncdomain.SyncOutcomeSynced), decodeOutcome(t, w))
		env.target.AssertExpectations(t)
	})

	t.Run("rejects malformed quantity", func(t *testing.T) {
		env := newWebhookTestEnv(t)

		w := env.post(t, "inventory.changed", dto.WebhookEventRequest{
			EntityID: "prod-3",
			Quantity: "lots",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestWebhookHandlerUnknownKind(t *testing.T) {
	env := newWebhookTestEnv(t)
	env.syncLogs.On("AppendWebhook", mock.Anything, mock.MatchedBy(func(entry *syncdomain.WebhookLog) bool {
		return entry.EventKind == "order.deleted" && entry.Outcome == syncdomain.SyncOutcomeIgnored
	})).Return(nil)

	w := env.post(t, "order.deleted", dto.WebhookEventRequest{EntityID: "x"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, string(syncdomain.SyncOutcomeIgnored), decodeOutcome(t, w))
	env.syncLogs.AssertExpectations(t)
}

func TestWebhookHandlerRequiresEntityID(t *testing.T) {
	env := newWebhookTestEnv(t)

	w := env.post(t, "customer.changed", map[string]string{"email": "x@example.com"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

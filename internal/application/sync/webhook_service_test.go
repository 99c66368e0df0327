package sync

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/syncbridge/backend/internal/domain/rules"
	syncdomain "github.com/syncbridge/backend/internal/domain/sync"
)

type webhookFixture struct {
	service   *WebhookService
	mappings  *fakeMappingRepo
	locations *fakeLocationRepo
	rules     *fakeRuleRepo
	logs      *fakeSyncLogRepo
	target    *fakeTarget
}

func newWebhookFixture(locations []syncdomain.LocationMapping) *webhookFixture {
	f := &webhookFixture{
		mappings:  newFakeMappingRepo(),
		locations: &fakeLocationRepo{rows: locations},
		rules:     &fakeRuleRepo{},
		logs:      &fakeSyncLogRepo{},
		target:    newFakeTarget(),
	}
	f.service = NewWebhookService(f.mappings, f.locations, f.rules, f.logs, f.target, "loc-default", zap.NewNop())
	return f
}

func linkedCustomer(t *testing.T, repo *fakeMappingRepo, sourceID, targetID string) *syncdomain.EntityMapping {
	t.Helper()
	m, err := syncdomain.NewEntityMapping(syncdomain.MappingKindCustomer, sourceID)
	require.NoError(t, err)
	require.NoError(t, m.Link(targetID, ""))
	require.NoError(t, repo.Save(context.Background(), m))
	return m
}

func TestWebhookService_CustomerEvent(t *testing.T) {
	t.Run("Pushes field update immediately", func(t *testing.T) {
		f := newWebhookFixture(nil)
		linkedCustomer(t, f.mappings, "c-1", "tgt-1")

		outcome, err := f.service.OnInboundEvent(context.Background(), InboundEvent{
			Kind:   EventCustomerChanged,
			Entity: syncdomain.SourceEntity{ID: "c-1", Email: "new@example.com"},
			Field:  "phone",
			Value:  "+31699999999",
		})
		require.NoError(t, err)
		assert.Equal(t, syncdomain.SyncOutcomeSynced, outcome)
		assert.Equal(t, "+31699999999", f.target.customer["tgt-1/phone"])

		m, err := f.mappings.FindBySourceID(context.Background(), syncdomain.MappingKindCustomer, "c-1")
		require.NoError(t, err)
		assert.Equal(t, syncdomain.MappingStatusSynced, m.Status)
	})

	t.Run("Unmapped entity is ignored, not an error", func(t *testing.T) {
		f := newWebhookFixture(nil)
		outcome, err := f.service.OnInboundEvent(context.Background(), InboundEvent{
			Kind:   EventCustomerChanged,
			Entity: syncdomain.SourceEntity{ID: "ghost"},
		})
		require.NoError(t, err)
		assert.Equal(t, syncdomain.SyncOutcomeIgnored, outcome)
	})

	t.Run("Skip rule blocks the push", func(t *testing.T) {
		f := newWebhookFixture(nil)
		linkedCustomer(t, f.mappings, "c-1", "tgt-1")
		skip, err := rules.NewRule("skip internal", rules.TargetKindCustomer, 100, rules.CombinatorAnd,
			[]rules.Condition{{Field: "email", Operator: rules.OperatorContains, Value: "@internal"}},
			[]rules.Action{{Type: rules.ActionSkipSync}})
		require.NoError(t, err)
		f.rules.rules = []rules.Rule{*skip}

		outcome, err := f.service.OnInboundEvent(context.Background(), InboundEvent{
			Kind:   EventCustomerChanged,
			Entity: syncdomain.SourceEntity{ID: "c-1", Email: "ops@internal.example"},
		})
		require.NoError(t, err)
		assert.Equal(t, syncdomain.SyncOutcomeSkipped, outcome)
		assert.Empty(t, f.target.customer)
	})

	t.Run("Approval rule parks the mapping", func(t *testing.T) {
		f := newWebhookFixture(nil)
		linkedCustomer(t, f.mappings, "c-1", "tgt-1")
		hold, err := rules.NewRule("hold all", rules.TargetKindCustomer, 100, rules.CombinatorAnd,
			[]rules.Condition{{Field: "total_spent", Operator: rules.OperatorGte, Value: "0"}},
			[]rules.Action{{Type: rules.ActionRequireApproval, Value: "manual"}})
		require.NoError(t, err)
		f.rules.rules = []rules.Rule{*hold}

		outcome, err := f.service.OnInboundEvent(context.Background(), InboundEvent{
			Kind:   EventOrderCreated,
			Entity: syncdomain.SourceEntity{ID: "c-1"},
		})
		require.NoError(t, err)
		assert.Equal(t, syncdomain.SyncOutcomePendingApproval, outcome)

		m, err := f.mappings.FindBySourceID(context.Background(), syncdomain.MappingKindCustomer, "c-1")
		require.NoError(t, err)
		assert.Equal(t, syncdomain.MappingStatusPendingApproval, m.Status)
	})

	t.Run("Target failure surfaces as failed outcome", func(t *testing.T) {
		f := newWebhookFixture(nil)
		linkedCustomer(t, f.mappings, "c-1", "tgt-1")
		f.target.failIDs["tgt-1"] = true

		outcome, err := f.service.OnInboundEvent(context.Background(), InboundEvent{
			Kind:   EventCustomerChanged,
			Entity: syncdomain.SourceEntity{ID: "c-1"},
			Field:  "email",
			Value:  "x@example.com",
		})
		require.Error(t, err)
		assert.Equal(t, syncdomain.SyncOutcomeFailed, outcome)

		m, findErr := f.mappings.FindBySourceID(context.Background(), syncdomain.MappingKindCustomer, "c-1")
		require.NoError(t, findErr)
		assert.Equal(t, syncdomain.MappingStatusFailed, m.Status)
	})
}

func TestWebhookService_InventoryEvent(t *testing.T) {
	t.Run("Routes through the warehouse mapping", func(t *testing.T) {
		f := newWebhookFixture([]syncdomain.LocationMapping{locationEdge(t, "wh-A", "L1")})
		linkedProduct(t, f.mappings, "p-1", "var-1")

		outcome, err := f.service.OnInboundEvent(context.Background(), InboundEvent{
			Kind:        EventInventoryChanged,
			Entity:      syncdomain.SourceEntity{ID: "p-1", Quantity: decimal.NewFromInt(17)},
			WarehouseID: "wh-A",
		})
		require.NoError(t, err)
		assert.Equal(t, syncdomain.SyncOutcomeSynced, outcome)
		require.Len(t, f.target.calls, 1)
		assert.Equal(t, "L1", f.target.calls[0].locationID)
		assert.True(t, f.target.calls[0].quantity.Equal(decimal.NewFromInt(17)))
	})

	t.Run("Unmapped warehouse falls back to the default location", func(t *testing.T) {
		f := newWebhookFixture([]syncdomain.LocationMapping{locationEdge(t, "wh-A", "L1")})
		linkedProduct(t, f.mappings, "p-1", "var-1")

		outcome, err := f.service.OnInboundEvent(context.Background(), InboundEvent{
			Kind:        EventInventoryChanged,
			Entity:      syncdomain.SourceEntity{ID: "p-1", Quantity: decimal.NewFromInt(4)},
			WarehouseID: "wh-Z",
		})
		require.NoError(t, err)
		assert.Equal(t, syncdomain.SyncOutcomeSynced, outcome)
		require.Len(t, f.target.calls, 1)
		assert.Equal(t, "loc-default", f.target.calls[0].locationID)
	})
}

func TestWebhookService_AuditTrail(t *testing.T) {
	f := newWebhookFixture(nil)

	outcome, err := f.service.OnInboundEvent(context.Background(), InboundEvent{
		Kind:       "something.else",
		RawPayload: `{"hello":"world"}`,
	})
	require.NoError(t, err)
	assert.Equal(t, syncdomain.SyncOutcomeIgnored, outcome)

	require.Len(t, f.logs.webhooks, 1)
	assert.Equal(t, "something.else", f.logs.webhooks[0].EventKind)
	assert.Equal(t, `{"hello":"world"}`, f.logs.webhooks[0].Payload)
	assert.Equal(t, syncdomain.SyncOutcomeIgnored, f.logs.webhooks[0].Outcome)
}

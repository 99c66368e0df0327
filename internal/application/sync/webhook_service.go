package sync

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/syncbridge/backend/internal/domain/rules"
	syncdomain "github.com/syncbridge/backend/internal/domain/sync"
)

// Inbound event kinds accepted from the webhook router.
const (
	EventCustomerChanged  = "customer.changed"
	EventOrderCreated     = "order.created"
	EventInventoryChanged = "inventory.changed"
)

// InboundEvent is one already-verified webhook notification. Signature
// checking and payload decoding happen in the collaborator that feeds this
// service.
type InboundEvent struct {
	Kind        string
	Entity      syncdomain.SourceEntity
	Field       string
	Value       string
	WarehouseID string
	RawPayload  string
}

// WebhookService reconciles single entities synchronously in response to
// inbound events. It shares the rule engine and mapping lookup with the bulk
// pull path but bypasses the batch executor: one item, immediate push.
type WebhookService struct {
	mappings          syncdomain.EntityMappingRepository
	locations         syncdomain.LocationMappingRepository
	ruleRepo          rules.RuleRepository
	syncLogs          syncdomain.SyncLogRepository
	target            syncdomain.TargetClient
	defaultLocationID string
	metrics           Metrics
	logger            *zap.Logger
}

// NewWebhookService creates a WebhookService.
func NewWebhookService(
	mappings syncdomain.EntityMappingRepository,
	locations syncdomain.LocationMappingRepository,
	ruleRepo rules.RuleRepository,
	syncLogs syncdomain.SyncLogRepository,
	target syncdomain.TargetClient,
	defaultLocationID string,
	logger *zap.Logger,
) *WebhookService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookService{
		mappings:          mappings,
		locations:         locations,
		ruleRepo:          ruleRepo,
		syncLogs:          syncLogs,
		target:            target,
		defaultLocationID: defaultLocationID,
		metrics:           nopMetrics{},
		logger:            logger,
	}
}

// SetMetrics replaces the nop metrics recorder.
func (s *WebhookService) SetMetrics(m Metrics) {
	if m != nil {
		s.metrics = m
	}
}

// OnInboundEvent reconciles one entity and returns the auditable outcome.
// Unknown event kinds and entities without a mapping are IGNORED, never an
// error: an unmapped entity is a normal state, not a failure.
func (s *WebhookService) OnInboundEvent(ctx context.Context, event InboundEvent) (syncdomain.SyncOutcome, error) {
	outcome, err := s.handle(ctx, event)

	errText := ""
	if err != nil {
		errText = err.Error()
	}
	entry := syncdomain.NewWebhookLog(event.Kind, event.RawPayload, outcome, errText)
	if logErr := s.syncLogs.AppendWebhook(ctx, entry); logErr != nil {
		s.logger.Warn("webhook log append dropped", zap.Error(logErr))
	}
	s.metrics.RecordWebhookEvent(ctx, event.Kind, string(outcome))
	return outcome, err
}

func (s *WebhookService) handle(ctx context.Context, event InboundEvent) (syncdomain.SyncOutcome, error) {
	switch event.Kind {
	case EventCustomerChanged, EventOrderCreated:
		return s.handleCustomer(ctx, event)
	case EventInventoryChanged:
		return s.handleInventory(ctx, event)
	default:
		s.logger.Debug("inbound event ignored", zap.String("kind", event.Kind))
		return syncdomain.SyncOutcomeIgnored, nil
	}
}

func (s *WebhookService) handleCustomer(ctx context.Context, event InboundEvent) (syncdomain.SyncOutcome, error) {
	entity := event.Entity
	entity.Kind = syncdomain.MappingKindCustomer

	mapping, err := s.mappings.FindBySourceID(ctx, syncdomain.MappingKindCustomer, entity.ID)
	if errors.Is(err, syncdomain.ErrMappingNotFound) {
		return syncdomain.SyncOutcomeIgnored, nil
	}
	if err != nil {
		return syncdomain.SyncOutcomeFailed, err
	}
	if !mapping.IsLinked() {
		return syncdomain.SyncOutcomeIgnored, nil
	}

	outcome, done, err := s.gate(ctx, rules.TargetKindCustomer, mapping, entity)
	if done {
		return outcome, err
	}

	field, value := event.Field, event.Value
	if field == "" {
		field, value = "email", entity.Email
	}
	if err := s.target.UpdateCustomerField(ctx, mapping.TargetID, field, value); err != nil {
		mapping.RecordSyncFailure(err.Error())
		s.save(ctx, mapping)
		return syncdomain.SyncOutcomeFailed, err
	}
	mapping.RecordSyncSuccess()
	s.save(ctx, mapping)
	return syncdomain.SyncOutcomeSynced, nil
}

func (s *WebhookService) handleInventory(ctx context.Context, event InboundEvent) (syncdomain.SyncOutcome, error) {
	entity := event.Entity
	entity.Kind = syncdomain.MappingKindProduct

	mapping, err := s.mappings.FindBySourceID(ctx, syncdomain.MappingKindProduct, entity.ID)
	if errors.Is(err, syncdomain.ErrMappingNotFound) {
		return syncdomain.SyncOutcomeIgnored, nil
	}
	if err != nil {
		return syncdomain.SyncOutcomeFailed, err
	}
	if !mapping.IsLinked() {
		return syncdomain.SyncOutcomeIgnored, nil
	}

	outcome, done, err := s.gate(ctx, rules.TargetKindProduct, mapping, entity)
	if done {
		return outcome, err
	}

	locationID, err := s.resolveLocation(ctx, event.WarehouseID)
	if err != nil {
		return syncdomain.SyncOutcomeFailed, err
	}
	if _, err := s.target.SetInventory(ctx, mapping.TargetID, entity.Quantity, locationID); err != nil {
		mapping.RecordSyncFailure(err.Error())
		s.save(ctx, mapping)
		return syncdomain.SyncOutcomeFailed, err
	}
	mapping.RecordSyncSuccess()
	s.save(ctx, mapping)
	return syncdomain.SyncOutcomeSynced, nil
}

// gate applies the rule engine to an event's entity. Returns done=true when
// the entity must not be pushed.
func (s *WebhookService) gate(ctx context.Context, kind rules.TargetKind, mapping *syncdomain.EntityMapping, entity syncdomain.SourceEntity) (syncdomain.SyncOutcome, bool, error) {
	ruleSet, err := s.ruleRepo.FindActive(ctx, kind)
	if err != nil {
		// Fail open, same as a malformed rule: a broken rule store must not
		// block single-entity reconciliation.
		s.logger.Warn("rule load failed, proceeding without gating", zap.Error(err))
		return "", false, nil
	}

	evaluation := rules.Evaluate(ruleSet, entity)
	for _, warning := range evaluation.Warnings {
		s.logger.Warn("rule evaluation warning",
			zap.String("entity_id", entity.ID),
			zap.String("warning", warning))
	}
	for _, tag := range evaluation.TagsToAdd {
		mapping.AddTag(tag)
	}
	for _, tag := range evaluation.TagsToRemove {
		mapping.RemoveTag(tag)
	}

	switch {
	case evaluation.SkipSync:
		mapping.MarkSkippedSynced()
		s.save(ctx, mapping)
		return syncdomain.SyncOutcomeSkipped, true, nil
	case evaluation.RequireApproval:
		mapping.HoldForApproval(evaluation.ApprovalReason)
		s.save(ctx, mapping)
		return syncdomain.SyncOutcomePendingApproval, true, nil
	default:
		return "", false, nil
	}
}

// resolveLocation maps a source warehouse onto its target location, falling
// back to the default location for unmapped warehouses and single-location
// mode.
func (s *WebhookService) resolveLocation(ctx context.Context, warehouseID string) (string, error) {
	if warehouseID == "" {
		return s.defaultLocationID, nil
	}
	rows, err := s.locations.FindActive(ctx)
	if err != nil {
		return "", err
	}
	for _, row := range rows {
		if strings.EqualFold(row.WarehouseID, warehouseID) {
			return row.LocationID, nil
		}
	}
	return s.defaultLocationID, nil
}

func (s *WebhookService) save(ctx context.Context, mapping *syncdomain.EntityMapping) {
	if err := s.mappings.Save(ctx, mapping); err != nil {
		s.logger.Warn("mapping save dropped",
			zap.String("source_id", mapping.SourceID),
			zap.Error(err))
	}
}

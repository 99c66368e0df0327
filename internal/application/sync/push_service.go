package sync

import (
	"context"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	syncdomain "github.com/syncbridge/backend/internal/domain/sync"
	"github.com/syncbridge/backend/internal/infrastructure/logger"
)

// PushOptions tunes inventory pushes to the Target.
type PushOptions struct {
	Executor ExecutorOptions

	// DefaultLocationID receives all quantities in single-location mode,
	// when no warehouse-to-location mapping rows exist.
	DefaultLocationID string
}

// pushItem is one unit of executor work: set one entity's quantity at one
// Target location. Each item appears once in the input list, so no two
// pushes for the same entity and location are ever in flight together.
type pushItem struct {
	mapping    *syncdomain.EntityMapping
	locationID string
	quantity   decimal.Decimal

	outcome syncdomain.SyncOutcome
	errText string
}

// PushService pushes aggregated inventory quantities to the Target through
// the rate-adaptive batch executor.
type PushService struct {
	ledger    *JobLedger
	mappings  syncdomain.EntityMappingRepository
	locations syncdomain.LocationMappingRepository
	syncLogs  syncdomain.SyncLogRepository
	source    syncdomain.SourceClient
	target    syncdomain.TargetClient
	cache     syncdomain.VariantCache
	opts      PushOptions
	metrics   Metrics
	logger    *zap.Logger
}

// NewPushService creates a PushService.
func NewPushService(
	ledger *JobLedger,
	mappings syncdomain.EntityMappingRepository,
	locations syncdomain.LocationMappingRepository,
	syncLogs syncdomain.SyncLogRepository,
	source syncdomain.SourceClient,
	target syncdomain.TargetClient,
	cache syncdomain.VariantCache,
	opts PushOptions,
	logger *zap.Logger,
) *PushService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PushService{
		ledger:    ledger,
		mappings:  mappings,
		locations: locations,
		syncLogs:  syncLogs,
		source:    source,
		target:    target,
		cache:     cache,
		opts:      opts,
		metrics:   nopMetrics{},
		logger:    logger,
	}
}

// SetMetrics replaces the nop metrics recorder.
func (s *PushService) SetMetrics(m Metrics) {
	if m != nil {
		s.metrics = m
	}
}

// StartPush begins an inventory push for the given source entity ids, or for
// every pushable product mapping when ids is empty. Runs on a background
// goroutine; callers poll the returned job.
func (s *PushService) StartPush(ctx context.Context, entityIDs []string) (*syncdomain.Job, error) {
	job, err := s.ledger.Create(ctx, syncdomain.JobKindPushInventory, 0, nil)
	if err != nil {
		return nil, err
	}
	go s.run(context.WithoutCancel(ctx), job, entityIDs)
	return job, nil
}

func (s *PushService) run(ctx context.Context, job *syncdomain.Job, entityIDs []string) {
	ctx, log := logger.WithJobID(ctx, s.logger, job.ID.String())

	items, skipped, err := s.prepare(ctx, job, entityIDs)
	if err != nil {
		log.Error("push aborted", zap.Error(err))
		s.ledger.Complete(ctx, job, err)
		return
	}
	s.ledger.SetTotal(ctx, job, len(items)+skipped)
	if len(items) == 0 {
		log.Info("push finished with nothing to do", zap.Int("skipped", skipped))
		s.ledger.Complete(ctx, job, nil)
		return
	}

	throttlesSeen := 0
	summary := ExecuteBatches(ctx, items, s.opts.Executor,
		func(ctx context.Context, item *pushItem) ItemResult { return s.pushOne(ctx, item) },
		func(p BatchProgress) {
			s.metrics.RecordPushThroughput(ctx, p.ItemsPerSec)
			for throttlesSeen < p.Throttled {
				s.metrics.RecordThrottle(ctx, job.Kind.String())
				throttlesSeen++
			}
			s.ledger.Progress(ctx, job.ID, syncdomain.JobDelta{
				Metadata: map[string]string{
					"items_per_sec": strconv.FormatFloat(p.ItemsPerSec, 'f', 2, 64),
				},
			})
		})

	s.settle(ctx, job, items)
	s.metrics.RecordItemsProcessed(ctx, job.Kind.String(), "success", int64(summary.Successful))
	s.metrics.RecordItemsProcessed(ctx, job.Kind.String(), "failure", int64(summary.Failed))

	log.Info("push completed",
		zap.Int("successful", summary.Successful),
		zap.Int("failed", summary.Failed),
		zap.Int("throttled_batches", summary.ThrottledBatches),
		zap.Duration("elapsed", summary.Elapsed))
	s.ledger.Complete(ctx, job, nil)
}

// prepare loads pushable mappings, fetches quantities per mapped warehouse
// in batches of at most MaxQuantityBatchSize ids, aggregates them into
// per-location totals, and expands the result into one item per entity and
// location. Returns the count of entities excluded up front (held for
// approval or never linked) alongside the items.
func (s *PushService) prepare(ctx context.Context, job *syncdomain.Job, entityIDs []string) ([]*pushItem, int, error) {
	candidates, err := s.loadCandidates(ctx, entityIDs)
	if err != nil {
		return nil, 0, err
	}

	pushable := make([]*syncdomain.EntityMapping, 0, len(candidates))
	skipped := 0
	for _, m := range candidates {
		if m.Status == syncdomain.MappingStatusPendingApproval || !m.IsLinked() {
			skipped++
			s.audit(ctx, job, m.SourceID, syncdomain.SyncOutcomeSkipped, "not pushable: "+m.Status.String())
			continue
		}
		pushable = append(pushable, m)
	}
	if len(pushable) == 0 {
		s.ledger.Progress(ctx, job.ID, syncdomain.JobDelta{Processed: skipped})
		return nil, skipped, nil
	}

	ids := make([]string, 0, len(pushable))
	byID := make(map[string]*syncdomain.EntityMapping, len(pushable))
	for _, m := range pushable {
		ids = append(ids, m.SourceID)
		byID[m.SourceID] = m
	}

	locationRows, err := s.locations.FindActive(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("load location mappings: %w", err)
	}
	grouping := syncdomain.GroupByLocation(locationRows)

	totals, err := s.fetchQuantities(ctx, ids, "")
	if err != nil {
		return nil, 0, fmt.Errorf("fetch total quantities: %w", err)
	}

	var items []*pushItem
	if syncdomain.SingleLocationMode(grouping) {
		for _, m := range pushable {
			items = append(items, &pushItem{
				mapping:    m,
				locationID: s.opts.DefaultLocationID,
				quantity:   totals[m.SourceID],
			})
		}
		s.ledger.Progress(ctx, job.ID, syncdomain.JobDelta{Processed: skipped})
		return items, skipped, nil
	}

	quantities := make(map[syncdomain.QuantityKey]decimal.Decimal)
	for _, warehouseID := range warehouseUnion(grouping) {
		perWarehouse, err := s.fetchQuantities(ctx, ids, warehouseID)
		if err != nil {
			return nil, 0, fmt.Errorf("fetch quantities for warehouse %s: %w", warehouseID, err)
		}
		for entityID, qty := range perWarehouse {
			quantities[syncdomain.QuantityKey{EntityID: entityID, WarehouseID: warehouseID}] = qty
		}
	}

	aggregated := syncdomain.AggregateQuantities(quantities, totals, grouping)
	for locationID, entities := range aggregated {
		for entityID, qty := range entities {
			mapping, ok := byID[entityID]
			if !ok {
				continue
			}
			items = append(items, &pushItem{
				mapping:    mapping,
				locationID: locationID,
				quantity:   qty,
			})
		}
	}
	s.ledger.Progress(ctx, job.ID, syncdomain.JobDelta{Processed: skipped})
	return items, skipped, nil
}

func (s *PushService) loadCandidates(ctx context.Context, entityIDs []string) ([]*syncdomain.EntityMapping, error) {
	if len(entityIDs) > 0 {
		byID, err := s.mappings.FindBySourceIDs(ctx, syncdomain.MappingKindProduct, entityIDs)
		if err != nil {
			return nil, err
		}
		candidates := make([]*syncdomain.EntityMapping, 0, len(byID))
		for _, id := range entityIDs {
			if m, ok := byID[id]; ok {
				candidates = append(candidates, m)
			}
		}
		return candidates, nil
	}

	kind := syncdomain.MappingKindProduct
	all, _, err := s.mappings.FindAll(ctx, syncdomain.MappingFilter{Kind: &kind})
	if err != nil {
		return nil, err
	}
	candidates := make([]*syncdomain.EntityMapping, 0, len(all))
	for i := range all {
		candidates = append(candidates, &all[i])
	}
	return candidates, nil
}

// fetchQuantities batches a quantity lookup under the Source's id cap.
func (s *PushService) fetchQuantities(ctx context.Context, ids []string, warehouseID string) (map[string]decimal.Decimal, error) {
	result := make(map[string]decimal.Decimal, len(ids))
	for offset := 0; offset < len(ids); offset += syncdomain.MaxQuantityBatchSize {
		end := offset + syncdomain.MaxQuantityBatchSize
		if end > len(ids) {
			end = len(ids)
		}
		chunk, err := s.source.GetQuantities(ctx, ids[offset:end], warehouseID)
		if err != nil {
			return nil, err
		}
		for id, qty := range chunk {
			result[id] = qty
		}
	}
	return result, nil
}

// pushOne sets one entity's quantity at one location. A cached inventory
// item id saves the Target's variant lookup; a stale entry falls back to
// the full resolve, which refreshes the cache. The worker records its
// outcome on the item it owns; mapping rows are settled afterwards on the
// run goroutine.
func (s *PushService) pushOne(ctx context.Context, item *pushItem) ItemResult {
	if s.cache != nil {
		if itemID, ok := s.cache.GetInventoryItemID(ctx, item.mapping.TargetID); ok {
			err := s.target.SetInventoryByItemID(ctx, itemID, item.quantity, item.locationID)
			if err == nil {
				item.outcome = syncdomain.SyncOutcomeSynced
				return ItemResult{Success: true}
			}
			if syncdomain.IsRateLimited(err) {
				item.outcome = syncdomain.SyncOutcomeFailed
				item.errText = err.Error()
				return ItemResult{Throttled: true, Err: err}
			}
			s.logger.Debug("cached inventory item id rejected, re-resolving",
				zap.String("variant_id", item.mapping.TargetID),
				zap.Error(err))
		}
	}

	inventoryItemID, err := s.target.SetInventory(ctx, item.mapping.TargetID, item.quantity, item.locationID)
	if err != nil {
		item.outcome = syncdomain.SyncOutcomeFailed
		item.errText = err.Error()
		return ItemResult{Throttled: syncdomain.IsRateLimited(err), Err: err}
	}
	if inventoryItemID != "" && s.cache != nil {
		s.cache.PutInventoryItemID(ctx, item.mapping.TargetID, inventoryItemID)
	}
	item.outcome = syncdomain.SyncOutcomeSynced
	return ItemResult{Success: true}
}

// settle folds per-item outcomes back into mapping rows. An entity counts
// as failed if any of its locations failed.
func (s *PushService) settle(ctx context.Context, job *syncdomain.Job, items []*pushItem) {
	failures := make(map[string]string)
	seen := make(map[string]*syncdomain.EntityMapping)
	processed, successful, failed := 0, 0, 0

	for _, item := range items {
		processed++
		if item.outcome == syncdomain.SyncOutcomeFailed {
			failed++
			failures[item.mapping.SourceID] = item.errText
			s.audit(ctx, job, item.mapping.SourceID, syncdomain.SyncOutcomeFailed,
				fmt.Sprintf("location %s: %s", item.locationID, item.errText))
		} else {
			successful++
		}
		seen[item.mapping.SourceID] = item.mapping
	}

	upserts := make([]*syncdomain.EntityMapping, 0, len(seen))
	for sourceID, mapping := range seen {
		if errText, bad := failures[sourceID]; bad {
			mapping.RecordSyncFailure(errText)
		} else {
			mapping.RecordSyncSuccess()
			s.audit(ctx, job, sourceID, syncdomain.SyncOutcomeSynced, "")
		}
		upserts = append(upserts, mapping)
	}
	if err := s.mappings.SaveBatch(ctx, upserts); err != nil {
		s.logger.Warn("mapping settle dropped", zap.Error(err))
	}

	s.ledger.Progress(ctx, job.ID, syncdomain.JobDelta{
		Processed:  processed,
		Successful: successful,
		Failed:     failed,
	})
}

func (s *PushService) audit(ctx context.Context, job *syncdomain.Job, entityID string, outcome syncdomain.SyncOutcome, detail string) {
	entry := syncdomain.NewSyncLog(&job.ID, syncdomain.MappingKindProduct, "push", entityID, outcome, detail)
	if err := s.syncLogs.Append(ctx, entry); err != nil {
		s.logger.Warn("sync log append dropped", zap.Error(err))
	}
}

// warehouseUnion returns each mapped warehouse exactly once, in grouping
// iteration order.
func warehouseUnion(grouping map[string][]string) []string {
	seen := make(map[string]bool)
	var union []string
	for _, warehouses := range grouping {
		for _, wh := range warehouses {
			if !seen[wh] {
				seen[wh] = true
				union = append(union, wh)
			}
		}
	}
	return union
}

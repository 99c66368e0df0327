package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/syncbridge/backend/internal/domain/rules"
	syncdomain "github.com/syncbridge/backend/internal/domain/sync"
	"github.com/syncbridge/backend/internal/infrastructure/logger"
)

// PullOptions tunes bulk pulls from the Source.
type PullOptions struct {
	// PageSize is the number of entities requested per Source page.
	PageSize int

	// LivenessWindow bounds how recently a cursor must have advanced to
	// reject a concurrent pull with the same fingerprint.
	LivenessWindow time.Duration

	// IncrementalFreshness is how recently a completed pull must have
	// finished for the next pull with the same filters to run in
	// incremental mode, fetching only entities updated since then. Zero
	// disables incremental mode.
	IncrementalFreshness time.Duration
}

func (o PullOptions) normalized() PullOptions {
	if o.PageSize <= 0 {
		o.PageSize = 250
	}
	if o.LivenessWindow <= 0 {
		o.LivenessWindow = syncdomain.DefaultLivenessWindow
	}
	return o
}

// PullService runs resumable bulk pulls from the Source: customers and
// products, page by page, gated per entity by the rule engine, with durable
// cursor checkpoints after every page.
type PullService struct {
	ledger   *JobLedger
	cursors  syncdomain.PullCursorRepository
	mappings syncdomain.EntityMappingRepository
	ruleRepo rules.RuleRepository
	syncLogs syncdomain.SyncLogRepository
	source   syncdomain.SourceClient
	opts     PullOptions
	logger   *zap.Logger
}

// NewPullService creates a PullService.
func NewPullService(
	ledger *JobLedger,
	cursors syncdomain.PullCursorRepository,
	mappings syncdomain.EntityMappingRepository,
	ruleRepo rules.RuleRepository,
	syncLogs syncdomain.SyncLogRepository,
	source syncdomain.SourceClient,
	opts PullOptions,
	logger *zap.Logger,
) *PullService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PullService{
		ledger:   ledger,
		cursors:  cursors,
		mappings: mappings,
		ruleRepo: ruleRepo,
		syncLogs: syncLogs,
		source:   source,
		opts:     opts.normalized(),
		logger:   logger,
	}
}

// StartPull begins or resumes a bulk pull for the filter set and returns the
// job tracking it. The pull itself runs on a background goroutine; callers
// poll the job for progress. Fails fast with ErrPullAlreadyRunning when a
// live cursor holds the same fingerprint, and with ErrCursorCollision when a
// stored cursor's filter snapshot differs from the requested filters despite
// an equal fingerprint.
func (s *PullService) StartPull(ctx context.Context, kind syncdomain.JobKind, filters map[string]string, forceRestart bool) (*syncdomain.Job, error) {
	if !kind.IsValid() || !kind.IsPull() {
		return nil, syncdomain.ErrJobInvalidKind
	}
	if filters == nil {
		filters = make(map[string]string)
	}

	cursor, resumed, since, err := s.beginCursor(ctx, kind, filters, forceRestart)
	if err != nil {
		return nil, err
	}

	// Persist the cursor claim before returning so a second StartPull with
	// the same fingerprint sees a live cursor instead of racing the
	// background goroutine's first save.
	cursor.Touch()
	if err := s.cursors.Save(ctx, cursor); err != nil {
		return nil, err
	}

	metadata := map[string]string{"fingerprint": cursor.Fingerprint}
	if resumed {
		metadata["resumed_from"] = cursor.NextToken
	}
	if since != "" {
		metadata["incremental_since"] = since
	}
	job, err := s.ledger.Create(ctx, kind, 0, metadata)
	if err != nil {
		if !resumed {
			if delErr := s.cursors.Delete(ctx, cursor.Fingerprint); delErr != nil {
				s.logger.Warn("cursor release dropped",
					zap.String("fingerprint", cursor.Fingerprint),
					zap.Error(delErr))
			}
		}
		return nil, err
	}

	queryFilters := make(map[string]string, len(filters)+1)
	for k, v := range filters {
		queryFilters[k] = v
	}
	if since != "" {
		queryFilters["updated_since"] = since
	}

	go s.run(context.WithoutCancel(ctx), job, cursor, queryFilters)
	return job, nil
}

// beginCursor resolves the cursor for a fingerprint: fresh, resumed, or an
// incremental restart after a recent completed pull. Returns the serialized
// updated-since bound when incremental mode activates.
func (s *PullService) beginCursor(ctx context.Context, kind syncdomain.JobKind, filters map[string]string, forceRestart bool) (*syncdomain.PullCursor, bool, string, error) {
	fingerprint := syncdomain.Fingerprint(filters)

	existing, err := s.cursors.FindByFingerprint(ctx, fingerprint)
	switch {
	case errors.Is(err, syncdomain.ErrCursorNotFound):
		cursor, err := syncdomain.NewPullCursor(kind, filters)
		if err != nil {
			return nil, false, "", err
		}
		return cursor, false, "", nil
	case err != nil:
		return nil, false, "", err
	}

	if forceRestart {
		if err := s.cursors.Delete(ctx, fingerprint); err != nil {
			return nil, false, "", err
		}
		cursor, err := syncdomain.NewPullCursor(kind, filters)
		if err != nil {
			return nil, false, "", err
		}
		return cursor, false, "", nil
	}

	if !existing.FiltersEqual(filters) {
		return nil, false, "", syncdomain.ErrCursorCollision
	}

	now := time.Now()
	if existing.IsLive(s.opts.LivenessWindow, now) {
		return nil, false, "", syncdomain.ErrPullAlreadyRunning
	}

	if existing.Completed {
		// A completed cursor always restarts fresh; it never extends. When
		// the previous run finished recently enough, the restart only asks
		// the Source for entities updated since then.
		since := ""
		if s.opts.IncrementalFreshness > 0 && now.Sub(existing.LastActivityAt) < s.opts.IncrementalFreshness {
			since = existing.LastActivityAt.UTC().Format(time.RFC3339)
		}
		if err := s.cursors.Delete(ctx, fingerprint); err != nil {
			return nil, false, "", err
		}
		cursor, err := syncdomain.NewPullCursor(kind, filters)
		if err != nil {
			return nil, false, "", err
		}
		return cursor, false, since, nil
	}

	// Stale incomplete cursor: resume from the last durable checkpoint.
	return existing, true, "", nil
}

// run is the pull loop. Page N's cursor advance is persisted only after page
// N's entities are fully processed, so a crash resumes instead of repeating
// or skipping work.
func (s *PullService) run(ctx context.Context, job *syncdomain.Job, cursor *syncdomain.PullCursor, queryFilters map[string]string) {
	ctx, log := logger.WithJobID(ctx, s.logger, job.ID.String())
	log = log.With(
		zap.String("kind", job.Kind.String()),
		zap.String("fingerprint", cursor.Fingerprint))
	log.Info("pull started",
		zap.String("resume_token", cursor.NextToken),
		zap.Int("already_pulled", cursor.TotalPulled))

	entityKind := job.Kind.EntityKind()
	for {
		page, err := s.source.ListEntities(ctx, entityKind, queryFilters, cursor.NextToken, s.opts.PageSize)
		if err != nil {
			log.Error("pull aborted", zap.Error(err))
			s.ledger.Complete(ctx, job, err)
			return
		}

		delta, err := s.processPage(ctx, job, entityKind, page.Items)
		if err != nil {
			log.Error("pull aborted", zap.Error(err))
			s.ledger.Complete(ctx, job, err)
			return
		}

		if cursor.Advance(page.NextToken, len(page.Items), !page.HasMore) {
			if err := s.cursors.Save(ctx, cursor); err != nil {
				log.Error("pull aborted", zap.Error(err))
				s.ledger.Complete(ctx, job, err)
				return
			}
		}
		s.ledger.Progress(ctx, job.ID, delta)

		if !page.HasMore {
			break
		}
	}

	log.Info("pull completed", zap.Int("total_pulled", cursor.TotalPulled))
	s.ledger.Complete(ctx, job, nil)
}

// processPage evaluates the rule set against each entity and upserts its
// reconciliation mapping. Rules are loaded fresh per page so operator edits
// take effect mid-run.
func (s *PullService) processPage(ctx context.Context, job *syncdomain.Job, kind syncdomain.MappingKind, items []syncdomain.SourceEntity) (syncdomain.JobDelta, error) {
	delta := syncdomain.JobDelta{}
	if len(items) == 0 {
		return delta, nil
	}

	ruleSet, err := s.activeRules(ctx, kind)
	if err != nil {
		return delta, fmt.Errorf("load rules: %w", err)
	}

	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	known, err := s.mappings.FindBySourceIDs(ctx, kind, ids)
	if err != nil {
		return delta, fmt.Errorf("load mappings: %w", err)
	}

	upserts := make([]*syncdomain.EntityMapping, 0, len(items))
	for _, item := range items {
		mapping, ok := known[item.ID]
		if !ok {
			mapping, err = syncdomain.NewEntityMapping(kind, item.ID)
			if err != nil {
				delta.Processed++
				delta.Failed++
				continue
			}
		}
		refreshMappingFields(mapping, item)

		outcome := s.applyRules(ctx, job, ruleSet, mapping, item)
		upserts = append(upserts, mapping)
		delta.Processed++
		if outcome == syncdomain.SyncOutcomeFailed {
			delta.Failed++
		} else {
			delta.Successful++
		}
	}

	if err := s.mappings.SaveBatch(ctx, upserts); err != nil {
		return delta, fmt.Errorf("save mappings: %w", err)
	}
	return delta, nil
}

// applyRules folds one entity's rule evaluation into its mapping and the
// audit trail.
func (s *PullService) applyRules(ctx context.Context, job *syncdomain.Job, ruleSet []rules.Rule, mapping *syncdomain.EntityMapping, item syncdomain.SourceEntity) syncdomain.SyncOutcome {
	evaluation := rules.Evaluate(ruleSet, item)
	for _, warning := range evaluation.Warnings {
		s.logger.Warn("rule evaluation warning",
			zap.String("entity_id", item.ID),
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
		s.audit(ctx, job, mapping.Kind, item.ID, syncdomain.SyncOutcomeSkipped, "skipped by rule")
		return syncdomain.SyncOutcomeSkipped
	case evaluation.RequireApproval:
		mapping.HoldForApproval(evaluation.ApprovalReason)
		s.audit(ctx, job, mapping.Kind, item.ID, syncdomain.SyncOutcomePendingApproval, evaluation.ApprovalReason)
		return syncdomain.SyncOutcomePendingApproval
	default:
		return syncdomain.SyncOutcomeSynced
	}
}

func (s *PullService) activeRules(ctx context.Context, kind syncdomain.MappingKind) ([]rules.Rule, error) {
	target := rules.TargetKindProduct
	if kind == syncdomain.MappingKindCustomer {
		target = rules.TargetKindCustomer
	}
	return s.ruleRepo.FindActive(ctx, target)
}

// audit appends to the sync log, best effort.
func (s *PullService) audit(ctx context.Context, job *syncdomain.Job, kind syncdomain.MappingKind, entityID string, outcome syncdomain.SyncOutcome, detail string) {
	entry := syncdomain.NewSyncLog(&job.ID, kind, "pull", entityID, outcome, detail)
	if err := s.syncLogs.Append(ctx, entry); err != nil {
		s.logger.Warn("sync log append dropped", zap.Error(err))
	}
}

// ResetCursorByFingerprint deletes one cursor. Operator escape hatch.
func (s *PullService) ResetCursorByFingerprint(ctx context.Context, fingerprint string) error {
	if _, err := s.cursors.FindByFingerprint(ctx, fingerprint); err != nil {
		return err
	}
	return s.cursors.Delete(ctx, fingerprint)
}

// ResetCursorsByKind deletes every cursor stored for a pull kind.
func (s *PullService) ResetCursorsByKind(ctx context.Context, kind syncdomain.JobKind) error {
	if !kind.IsValid() || !kind.IsPull() {
		return syncdomain.ErrJobInvalidKind
	}
	return s.cursors.DeleteByKind(ctx, kind)
}

// ListCursors lists stored cursors for the dashboard.
func (s *PullService) ListCursors(ctx context.Context) ([]syncdomain.PullCursor, error) {
	return s.cursors.FindAll(ctx)
}

// refreshMappingFields updates the cached display fields from the Source.
func refreshMappingFields(mapping *syncdomain.EntityMapping, item syncdomain.SourceEntity) {
	mapping.SourceSKU = item.SKU
	mapping.SourceName = item.Name
	mapping.SourceEmail = item.Email
	mapping.UpdatedAt = time.Now()
}

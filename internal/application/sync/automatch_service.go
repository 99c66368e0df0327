package sync

import (
	"context"
	"strings"

	"go.uber.org/zap"

	syncdomain "github.com/syncbridge/backend/internal/domain/sync"
	"github.com/syncbridge/backend/internal/infrastructure/logger"
)

// AutoMatchService links unmapped entities to their Target counterparts by
// exact SKU (products) and email (customers) lookups, through the same
// rate-adaptive executor as inventory pushes since the lookups hit the
// Target's rate-limited search endpoints.
type AutoMatchService struct {
	ledger   *JobLedger
	mappings syncdomain.EntityMappingRepository
	target   syncdomain.TargetClient
	executor ExecutorOptions
	logger   *zap.Logger
}

// NewAutoMatchService creates an AutoMatchService.
func NewAutoMatchService(
	ledger *JobLedger,
	mappings syncdomain.EntityMappingRepository,
	target syncdomain.TargetClient,
	executor ExecutorOptions,
	logger *zap.Logger,
) *AutoMatchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AutoMatchService{
		ledger:   ledger,
		mappings: mappings,
		target:   target,
		executor: executor,
		logger:   logger,
	}
}

// StartAutoMatch begins a matching run over every unmapped entity of the
// kind. Runs on a background goroutine; callers poll the returned job.
func (s *AutoMatchService) StartAutoMatch(ctx context.Context, kind syncdomain.MappingKind) (*syncdomain.Job, error) {
	if !kind.IsValid() {
		return nil, syncdomain.ErrMappingInvalidKind
	}
	job, err := s.ledger.Create(ctx, syncdomain.JobKindAutoMatch, 0, map[string]string{"entity_kind": kind.String()})
	if err != nil {
		return nil, err
	}
	go s.run(context.WithoutCancel(ctx), job, kind)
	return job, nil
}

func (s *AutoMatchService) run(ctx context.Context, job *syncdomain.Job, kind syncdomain.MappingKind) {
	ctx, log := logger.WithJobID(ctx, s.logger, job.ID.String())
	log = log.With(zap.String("kind", kind.String()))

	status := syncdomain.MappingStatusUnmapped
	unmapped, _, err := s.mappings.FindAll(ctx, syncdomain.MappingFilter{Kind: &kind, Status: &status})
	if err != nil {
		log.Error("auto-match aborted", zap.Error(err))
		s.ledger.Complete(ctx, job, err)
		return
	}

	candidates := make([]*syncdomain.EntityMapping, 0, len(unmapped))
	for i := range unmapped {
		candidates = append(candidates, &unmapped[i])
	}
	s.ledger.SetTotal(ctx, job, len(candidates))

	summary := ExecuteBatches(ctx, candidates, s.executor,
		func(ctx context.Context, m *syncdomain.EntityMapping) ItemResult {
			return s.matchOne(ctx, kind, m)
		},
		func(p BatchProgress) {
			s.ledger.Progress(ctx, job.ID, syncdomain.JobDelta{})
		})

	matched := 0
	upserts := make([]*syncdomain.EntityMapping, 0, len(candidates))
	for _, m := range candidates {
		if m.IsLinked() {
			matched++
			upserts = append(upserts, m)
		}
	}
	if err := s.mappings.SaveBatch(ctx, upserts); err != nil {
		log.Error("auto-match aborted", zap.Error(err))
		s.ledger.Complete(ctx, job, err)
		return
	}

	s.ledger.Progress(ctx, job.ID, syncdomain.JobDelta{
		Processed:  summary.Total,
		Successful: matched,
		Failed:     summary.Failed,
	})
	log.Info("auto-match completed",
		zap.Int("candidates", summary.Total),
		zap.Int("matched", matched))
	s.ledger.Complete(ctx, job, nil)
}

// matchOne resolves one unmapped entity against the Target. A candidate
// without a counterpart is a success with no link, not a failure.
func (s *AutoMatchService) matchOne(ctx context.Context, kind syncdomain.MappingKind, m *syncdomain.EntityMapping) ItemResult {
	var targetID string
	var err error

	switch kind {
	case syncdomain.MappingKindProduct:
		if m.SourceSKU == "" {
			return ItemResult{Success: true}
		}
		targetID, err = s.target.FindVariantBySKU(ctx, m.SourceSKU)
	case syncdomain.MappingKindCustomer:
		if m.SourceEmail == "" {
			return ItemResult{Success: true}
		}
		targetID, err = s.target.FindCustomerByEmail(ctx, strings.ToLower(m.SourceEmail))
	}
	if err != nil {
		return ItemResult{Throttled: syncdomain.IsRateLimited(err), Err: err}
	}
	if targetID == "" {
		return ItemResult{Success: true}
	}
	if err := m.Link(targetID, ""); err != nil {
		return ItemResult{Err: err}
	}
	return ItemResult{Success: true}
}

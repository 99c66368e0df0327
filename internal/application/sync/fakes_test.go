package sync

import (
	"context"
	"fmt"
	"sort"
	gosync "sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/syncbridge/backend/internal/domain/rules"
	syncdomain "github.com/syncbridge/backend/internal/domain/sync"
)

// ---------------------------------------------------------------------------
// In-memory repositories
// ---------------------------------------------------------------------------

type fakeJobRepo struct {
	mu   gosync.Mutex
	jobs map[uuid.UUID]*syncdomain.Job
}

var _ syncdomain.JobRepository = (*fakeJobRepo)(nil)

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{jobs: make(map[uuid.UUID]*syncdomain.Job)}
}

func (r *fakeJobRepo) Save(_ context.Context, job *syncdomain.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *job
	r.jobs[job.ID] = &copied
	return nil
}

func (r *fakeJobRepo) IncrementCounters(_ context.Context, id uuid.UUID, delta syncdomain.JobDelta) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return syncdomain.ErrJobNotFound
	}
	return job.ApplyDelta(delta)
}

func (r *fakeJobRepo) SetTotal(_ context.Context, id uuid.UUID, total int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return syncdomain.ErrJobNotFound
	}
	job.Total = total
	return nil
}

func (r *fakeJobRepo) Finalize(_ context.Context, id uuid.UUID, status syncdomain.JobStatus, errText string, completedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return syncdomain.ErrJobNotFound
	}
	job.Status = status
	job.Error = errText
	job.CompletedAt = &completedAt
	return nil
}

func (r *fakeJobRepo) FindByID(_ context.Context, id uuid.UUID) (*syncdomain.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return nil, syncdomain.ErrJobNotFound
	}
	copied := *job
	return &copied, nil
}

func (r *fakeJobRepo) FindAll(_ context.Context, filter syncdomain.JobFilter) ([]syncdomain.Job, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []syncdomain.Job
	for _, job := range r.jobs {
		if filter.Kind != nil && job.Kind != *filter.Kind {
			continue
		}
		if filter.Status != nil && job.Status != *filter.Status {
			continue
		}
		out = append(out, *job)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, int64(len(out)), nil
}

type fakeCursorRepo struct {
	mu      gosync.Mutex
	cursors map[string]*syncdomain.PullCursor
}

var _ syncdomain.PullCursorRepository = (*fakeCursorRepo)(nil)

func newFakeCursorRepo() *fakeCursorRepo {
	return &fakeCursorRepo{cursors: make(map[string]*syncdomain.PullCursor)}
}

func (r *fakeCursorRepo) FindByFingerprint(_ context.Context, fingerprint string) (*syncdomain.PullCursor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cursor, ok := r.cursors[fingerprint]
	if !ok {
		return nil, syncdomain.ErrCursorNotFound
	}
	copied := *cursor
	return &copied, nil
}

func (r *fakeCursorRepo) Save(_ context.Context, cursor *syncdomain.PullCursor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *cursor
	r.cursors[cursor.Fingerprint] = &copied
	return nil
}

func (r *fakeCursorRepo) Delete(_ context.Context, fingerprint string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.cursors, fingerprint)
	return nil
}

func (r *fakeCursorRepo) DeleteByKind(_ context.Context, kind syncdomain.JobKind) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for fp, cursor := range r.cursors {
		if cursor.Kind == kind {
			delete(r.cursors, fp)
		}
	}
	return nil
}

func (r *fakeCursorRepo) FindAll(_ context.Context) ([]syncdomain.PullCursor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []syncdomain.PullCursor
	for _, cursor := range r.cursors {
		out = append(out, *cursor)
	}
	return out, nil
}

type fakeMappingRepo struct {
	mu       gosync.Mutex
	mappings map[string]*syncdomain.EntityMapping
}

var _ syncdomain.EntityMappingRepository = (*fakeMappingRepo)(nil)

func newFakeMappingRepo() *fakeMappingRepo {
	return &fakeMappingRepo{mappings: make(map[string]*syncdomain.EntityMapping)}
}

func mappingKey(kind syncdomain.MappingKind, sourceID string) string {
	return kind.String() + "/" + sourceID
}

func (r *fakeMappingRepo) FindByID(_ context.Context, id uuid.UUID) (*syncdomain.EntityMapping, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.mappings {
		if m.ID == id {
			copied := *m
			return &copied, nil
		}
	}
	return nil, syncdomain.ErrMappingNotFound
}

func (r *fakeMappingRepo) FindBySourceID(_ context.Context, kind syncdomain.MappingKind, sourceID string) (*syncdomain.EntityMapping, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.mappings[mappingKey(kind, sourceID)]
	if !ok {
		return nil, syncdomain.ErrMappingNotFound
	}
	copied := *m
	return &copied, nil
}

func (r *fakeMappingRepo) FindBySourceIDs(_ context.Context, kind syncdomain.MappingKind, sourceIDs []string) (map[string]*syncdomain.EntityMapping, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]*syncdomain.EntityMapping)
	for _, id := range sourceIDs {
		if m, ok := r.mappings[mappingKey(kind, id)]; ok {
			copied := *m
			out[id] = &copied
		}
	}
	return out, nil
}

func (r *fakeMappingRepo) FindAll(_ context.Context, filter syncdomain.MappingFilter) ([]syncdomain.EntityMapping, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []syncdomain.EntityMapping
	for _, m := range r.mappings {
		if filter.Kind != nil && m.Kind != *filter.Kind {
			continue
		}
		if filter.Status != nil && m.Status != *filter.Status {
			continue
		}
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SourceID < out[j].SourceID })
	return out, int64(len(out)), nil
}

func (r *fakeMappingRepo) CountByStatus(_ context.Context, kind syncdomain.MappingKind) (map[syncdomain.MappingStatus]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[syncdomain.MappingStatus]int64)
	for _, m := range r.mappings {
		if m.Kind == kind {
			out[m.Status]++
		}
	}
	return out, nil
}

func (r *fakeMappingRepo) Save(_ context.Context, mapping *syncdomain.EntityMapping) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *mapping
	r.mappings[mappingKey(mapping.Kind, mapping.SourceID)] = &copied
	return nil
}

func (r *fakeMappingRepo) SaveBatch(ctx context.Context, mappings []*syncdomain.EntityMapping) error {
	for _, m := range mappings {
		if err := r.Save(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeMappingRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, m := range r.mappings {
		if m.ID == id {
			delete(r.mappings, key)
			return nil
		}
	}
	return syncdomain.ErrMappingNotFound
}

type fakeLocationRepo struct {
	rows []syncdomain.LocationMapping
}

var _ syncdomain.LocationMappingRepository = (*fakeLocationRepo)(nil)

func (r *fakeLocationRepo) FindAll(_ context.Context) ([]syncdomain.LocationMapping, error) {
	return r.rows, nil
}

func (r *fakeLocationRepo) FindActive(_ context.Context) ([]syncdomain.LocationMapping, error) {
	var active []syncdomain.LocationMapping
	for _, row := range r.rows {
		if row.Active {
			active = append(active, row)
		}
	}
	return active, nil
}

func (r *fakeLocationRepo) Save(_ context.Context, mapping *syncdomain.LocationMapping) error {
	r.rows = append(r.rows, *mapping)
	return nil
}

func (r *fakeLocationRepo) Delete(_ context.Context, id uuid.UUID) error {
	for i, row := range r.rows {
		if row.ID == id {
			r.rows = append(r.rows[:i], r.rows[i+1:]...)
			return nil
		}
	}
	return nil
}

type fakeRuleRepo struct {
	rules []rules.Rule
}

var _ rules.RuleRepository = (*fakeRuleRepo)(nil)

func (r *fakeRuleRepo) FindByID(_ context.Context, id uuid.UUID) (*rules.Rule, error) {
	for i := range r.rules {
		if r.rules[i].ID == id {
			copied := r.rules[i]
			return &copied, nil
		}
	}
	return nil, rules.ErrRuleNotFound
}

func (r *fakeRuleRepo) FindActive(_ context.Context, kind rules.TargetKind) ([]rules.Rule, error) {
	var out []rules.Rule
	for _, rule := range r.rules {
		if rule.Active && rule.TargetKind.AppliesTo(kind) {
			out = append(out, rule)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority > out[j].Priority })
	return out, nil
}

func (r *fakeRuleRepo) FindAll(_ context.Context) ([]rules.Rule, error) {
	out := make([]rules.Rule, len(r.rules))
	copy(out, r.rules)
	return out, nil
}

func (r *fakeRuleRepo) Save(_ context.Context, rule *rules.Rule) error {
	for i := range r.rules {
		if r.rules[i].ID == rule.ID {
			r.rules[i] = *rule
			return nil
		}
	}
	r.rules = append(r.rules, *rule)
	return nil
}

func (r *fakeRuleRepo) Delete(_ context.Context, id uuid.UUID) error {
	for i := range r.rules {
		if r.rules[i].ID == id {
			r.rules = append(r.rules[:i], r.rules[i+1:]...)
			return nil
		}
	}
	return rules.ErrRuleNotFound
}

type fakeSyncLogRepo struct {
	mu       gosync.Mutex
	logs     []syncdomain.SyncLog
	webhooks []syncdomain.WebhookLog
}

var _ syncdomain.SyncLogRepository = (*fakeSyncLogRepo)(nil)

func (r *fakeSyncLogRepo) Append(_ context.Context, log *syncdomain.SyncLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, *log)
	return nil
}

func (r *fakeSyncLogRepo) AppendWebhook(_ context.Context, log *syncdomain.WebhookLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.webhooks = append(r.webhooks, *log)
	return nil
}

func (r *fakeSyncLogRepo) FindByJob(_ context.Context, jobID uuid.UUID, limit int) ([]syncdomain.SyncLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []syncdomain.SyncLog
	for _, log := range r.logs {
		if log.JobID != nil && *log.JobID == jobID {
			out = append(out, log)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Source / Target fakes
// ---------------------------------------------------------------------------

// fakeSource pages through a fixed entity list and serves canned quantities
// per warehouse. The empty warehouse key holds entity totals.
type fakeSource struct {
	mu         gosync.Mutex
	entities   []syncdomain.SourceEntity
	pageSize   int
	quantities map[string]map[string]decimal.Decimal
	listCalls  []string
	listErr    error
	filters    []map[string]string
}

var _ syncdomain.SourceClient = (*fakeSource)(nil)

func (f *fakeSource) ListEntities(_ context.Context, _ syncdomain.MappingKind, filters map[string]string, pageToken string, pageSize int) (*syncdomain.EntityPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.listCalls = append(f.listCalls, pageToken)
	snapshot := make(map[string]string, len(filters))
	for k, v := range filters {
		snapshot[k] = v
	}
	f.filters = append(f.filters, snapshot)

	size := f.pageSize
	if size <= 0 {
		size = pageSize
	}
	start := 0
	if pageToken != "" {
		fmt.Sscanf(pageToken, "tok-%d", &start)
	}
	end := start + size
	if end > len(f.entities) {
		end = len(f.entities)
	}
	page := &syncdomain.EntityPage{Items: f.entities[start:end]}
	if end < len(f.entities) {
		page.NextToken = fmt.Sprintf("tok-%d", end)
		page.HasMore = true
	}
	return page, nil
}

func (f *fakeSource) GetQuantities(_ context.Context, ids []string, warehouseID string) (map[string]decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]decimal.Decimal)
	warehouse := f.quantities[warehouseID]
	for _, id := range ids {
		if qty, ok := warehouse[id]; ok {
			out[id] = qty
		}
	}
	return out, nil
}

type inventoryCall struct {
	variantID  string
	quantity   decimal.Decimal
	locationID string
}

// fakeTarget records pushes and fails or throttles configured variants.
// staleItemIDs simulates inventory item ids the target no longer accepts.
type fakeTarget struct {
	mu           gosync.Mutex
	calls        []inventoryCall
	itemCalls    []inventoryCall
	customer     map[string]string
	throttleIDs  map[string]bool
	failIDs      map[string]bool
	staleItemIDs map[string]bool
	variants     map[string]string
	customers    map[string]string
}

var _ syncdomain.TargetClient = (*fakeTarget)(nil)

func newFakeTarget() *fakeTarget {
	return &fakeTarget{
		customer:     make(map[string]string),
		throttleIDs:  make(map[string]bool),
		failIDs:      make(map[string]bool),
		staleItemIDs: make(map[string]bool),
		variants:     make(map[string]string),
		customers:    make(map[string]string),
	}
}

func (f *fakeTarget) SetInventory(_ context.Context, variantID string, quantity decimal.Decimal, locationID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.throttleIDs[variantID] {
		return "", syncdomain.ErrTargetRateLimited
	}
	if f.failIDs[variantID] {
		return "", fmt.Errorf("variant %s rejected", variantID)
	}
	f.calls = append(f.calls, inventoryCall{variantID: variantID, quantity: quantity, locationID: locationID})
	return "inv-" + variantID, nil
}

func (f *fakeTarget) SetInventoryByItemID(_ context.Context, inventoryItemID string, quantity decimal.Decimal, locationID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.staleItemIDs[inventoryItemID] {
		return fmt.Errorf("inventory item %s not found", inventoryItemID)
	}
	f.itemCalls = append(f.itemCalls, inventoryCall{variantID: inventoryItemID, quantity: quantity, locationID: locationID})
	return nil
}

func (f *fakeTarget) UpdateCustomerField(_ context.Context, customerID, field, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failIDs[customerID] {
		return fmt.Errorf("customer %s rejected", customerID)
	}
	f.customer[customerID+"/"+field] = value
	return nil
}

func (f *fakeTarget) FindVariantBySKU(_ context.Context, sku string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.variants[sku], nil
}

func (f *fakeTarget) FindCustomerByEmail(_ context.Context, email string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.customers[email], nil
}

type fakeCache struct {
	mu    gosync.Mutex
	items map[string]string
}

var _ syncdomain.VariantCache = (*fakeCache)(nil)

func newFakeCache() *fakeCache {
	return &fakeCache{items: make(map[string]string)}
}

func (c *fakeCache) GetInventoryItemID(_ context.Context, variantID string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.items[variantID]
	return id, ok
}

func (c *fakeCache) PutInventoryItemID(_ context.Context, variantID, inventoryItemID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[variantID] = inventoryItemID
}

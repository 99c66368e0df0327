package handler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/syncbridge/backend/internal/domain/rules"
	syncdomain "github.com/syncbridge/backend/internal/domain/sync"
)

// MockJobRepository implements sync.JobRepository for testing
type MockJobRepository struct {
	mock.Mock
}

func (m *MockJobRepository) Save(ctx context.Context, job *syncdomain.Job) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockJobRepository) IncrementCounters(ctx context.Context, id uuid.UUID, delta syncdomain.JobDelta) error {
	args := m.Called(ctx, id, delta)
	return args.Error(0)
}

func (m *MockJobRepository) SetTotal(ctx context.Context, id uuid.UUID, total int) error {
	args := m.Called(ctx, id, total)
	return args.Error(0)
}

func (m *MockJobRepository) Finalize(ctx context.Context, id uuid.UUID, status syncdomain.JobStatus, errText string, completedAt time.Time) error {
	args := m.Called(ctx, id, status, errText, completedAt)
	return args.Error(0)
}

func (m *MockJobRepository) FindByID(ctx context.Context, id uuid.UUID) (*syncdomain.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*syncdomain.Job), args.Error(1)
}

func (m *MockJobRepository) FindAll(ctx context.Context, filter syncdomain.JobFilter) ([]syncdomain.Job, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]syncdomain.Job), args.Get(1).(int64), args.Error(2)
}

// MockSyncLogRepository implements sync.SyncLogRepository for testing
type MockSyncLogRepository struct {
	mock.Mock
}

func (m *MockSyncLogRepository) Append(ctx context.Context, log *syncdomain.SyncLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockSyncLogRepository) AppendWebhook(ctx context.Context, log *syncdomain.WebhookLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockSyncLogRepository) FindByJob(ctx context.Context, jobID uuid.UUID, limit int) ([]syncdomain.SyncLog, error) {
	args := m.Called(ctx, jobID, limit)
	return args.Get(0).([]syncdomain.SyncLog), args.Error(1)
}

// MockPullCursorRepository implements sync.PullCursorRepository for testing
type MockPullCursorRepository struct {
	mock.Mock
}

func (m *MockPullCursorRepository) FindByFingerprint(ctx context.Context, fingerprint string) (*syncdomain.PullCursor, error) {
	args := m.Called(ctx, fingerprint)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*syncdomain.PullCursor), args.Error(1)
}

func (m *MockPullCursorRepository) Save(ctx context.Context, cursor *syncdomain.PullCursor) error {
	args := m.Called(ctx, cursor)
	return args.Error(0)
}

func (m *MockPullCursorRepository) Delete(ctx context.Context, fingerprint string) error {
	args := m.Called(ctx, fingerprint)
	return args.Error(0)
}

func (m *MockPullCursorRepository) DeleteByKind(ctx context.Context, kind syncdomain.JobKind) error {
	args := m.Called(ctx, kind)
	return args.Error(0)
}

func (m *MockPullCursorRepository) FindAll(ctx context.Context) ([]syncdomain.PullCursor, error) {
	args := m.Called(ctx)
	return args.Get(0).([]syncdomain.PullCursor), args.Error(1)
}

// MockEntityMappingRepository implements sync.EntityMappingRepository for testing
type MockEntityMappingRepository struct {
	mock.Mock
}

func (m *MockEntityMappingRepository) FindByID(ctx context.Context, id uuid.UUID) (*syncdomain.EntityMapping, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*syncdomain.EntityMapping), args.Error(1)
}

func (m *MockEntityMappingRepository) FindBySourceID(ctx context.Context, kind syncdomain.MappingKind, sourceID string) (*syncdomain.EntityMapping, error) {
	args := m.Called(ctx, kind, sourceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*syncdomain.EntityMapping), args.Error(1)
}

func (m *MockEntityMappingRepository) FindBySourceIDs(ctx context.Context, kind syncdomain.MappingKind, sourceIDs []string) (map[string]*syncdomain.EntityMapping, error) {
	args := m.Called(ctx, kind, sourceIDs)
	return args.Get(0).(map[string]*syncdomain.EntityMapping), args.Error(1)
}

func (m *MockEntityMappingRepository) FindAll(ctx context.Context, filter syncdomain.MappingFilter) ([]syncdomain.EntityMapping, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]syncdomain.EntityMapping), args.Get(1).(int64), args.Error(2)
}

func (m *MockEntityMappingRepository) CountByStatus(ctx context.Context, kind syncdomain.MappingKind) (map[syncdomain.MappingStatus]int64, error) {
	args := m.Called(ctx, kind)
	return args.Get(0).(map[syncdomain.MappingStatus]int64), args.Error(1)
}

func (m *MockEntityMappingRepository) Save(ctx context.Context, mapping *syncdomain.EntityMapping) error {
	args := m.Called(ctx, mapping)
	return args.Error(0)
}

func (m *MockEntityMappingRepository) SaveBatch(ctx context.Context, mappings []*syncdomain.EntityMapping) error {
	args := m.Called(ctx, mappings)
	return args.Error(0)
}

func (m *MockEntityMappingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockLocationMappingRepository implements sync.LocationMappingRepository for testing
type MockLocationMappingRepository struct {
	mock.Mock
}

func (m *MockLocationMappingRepository) FindAll(ctx context.Context) ([]syncdomain.LocationMapping, error) {
	args := m.Called(ctx)
	return args.Get(0).([]syncdomain.LocationMapping), args.Error(1)
}

func (m *MockLocationMappingRepository) FindActive(ctx context.Context) ([]syncdomain.LocationMapping, error) {
	args := m.Called(ctx)
	return args.Get(0).([]syncdomain.LocationMapping), args.Error(1)
}

func (m *MockLocationMappingRepository) Save(ctx context.Context, mapping *syncdomain.LocationMapping) error {
	args := m.Called(ctx, mapping)
	return args.Error(0)
}

func (m *MockLocationMappingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockRuleRepository implements rules.RuleRepository for testing
type MockRuleRepository struct {
	mock.Mock
}

func (m *MockRuleRepository) FindByID(ctx context.Context, id uuid.UUID) (*rules.Rule, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rules.Rule), args.Error(1)
}

func (m *MockRuleRepository) FindActive(ctx context.Context, kind rules.TargetKind) ([]rules.Rule, error) {
	args := m.Called(ctx, kind)
	return args.Get(0).([]rules.Rule), args.Error(1)
}

func (m *MockRuleRepository) FindAll(ctx context.Context) ([]rules.Rule, error) {
	args := m.Called(ctx)
	return args.Get(0).([]rules.Rule), args.Error(1)
}

func (m *MockRuleRepository) Save(ctx context.Context, rule *rules.Rule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

func (m *MockRuleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockTargetClient implements sync.TargetClient for testing
type MockTargetClient struct {
	mock.Mock
}

func (m *MockTargetClient) SetInventory(ctx context.Context, targetVariantID string, quantity decimal.Decimal, locationID string) (string, error) {
	args := m.Called(ctx, targetVariantID, quantity, locationID)
	return args.String(0), args.Error(1)
}

func (m *MockTargetClient) SetInventoryByItemID(ctx context.Context, inventoryItemID string, quantity decimal.Decimal, locationID string) error {
	args := m.Called(ctx, inventoryItemID, quantity, locationID)
	return args.Error(0)
}

func (m *MockTargetClient) UpdateCustomerField(ctx context.Context, targetCustomerID, field, value string) error {
	args := m.Called(ctx, targetCustomerID, field, value)
	return args.Error(0)
}

func (m *MockTargetClient) FindVariantBySKU(ctx context.Context, sku string) (string, error) {
	args := m.Called(ctx, sku)
	return args.String(0), args.Error(1)
}

func (m *MockTargetClient) FindCustomerByEmail(ctx context.Context, email string) (string, error) {
	args := m.Called(ctx, email)
	return args.String(0), args.Error(1)
}

// MockSourceClient implements sync.SourceClient for testing
type MockSourceClient struct {
	mock.Mock
}

func (m *MockSourceClient) ListEntities(ctx context.Context, kind syncdomain.MappingKind, filters map[string]string, pageToken string, pageSize int) (*syncdomain.EntityPage, error) {
	args := m.Called(ctx, kind, filters, pageToken, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*syncdomain.EntityPage), args.Error(1)
}

func (m *MockSourceClient) GetQuantities(ctx context.Context, ids []string, warehouseID string) (map[string]decimal.Decimal, error) {
	args := m.Called(ctx, ids, warehouseID)
	return args.Get(0).(map[string]decimal.Decimal), args.Error(1)
}

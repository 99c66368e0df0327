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
	"github.com/syncbridge/backend/internal/infrastructure/cache"
	"github.com/syncbridge/backend/internal/interfaces/http/dto"
)

type syncTestEnv struct {
	router   *gin.Engine
	jobs     *MockJobRepository
	cursors  *MockPullCursorRepository
	mappings *MockEntityMappingRepository
	rules    *MockRuleRepository
	syncLogs *MockSyncLogRepository
	source   *MockSourceClient
	target   *MockTargetClient
}

func newSyncTestEnv(t *testing.T) *syncTestEnv {
	t.Helper()

	env := &syncTestEnv{
		jobs:     new(MockJobRepository),
		cursors:  new(MockPullCursorRepository),
		mappings: new(MockEntityMappingRepository),
		rules:    new(MockRuleRepository),
		syncLogs: new(MockSyncLogRepository),
		source:   new(MockSourceClient),
		target:   new(MockTargetClient),
	}

	ledger := appsync.NewJobLedger(env.jobs, nil)
	pull := appsync.NewPullService(ledger, env.cursors, env.mappings, env.rules, env.syncLogs, env.source, appsync.PullOptions{}, nil)
	push := appsync.NewPushService(ledger, env.mappings, env.locations(), env.syncLogs, env.source, env.target, cache.NewInMemoryVariantCache(0), appsync.PushOptions{}, nil)
	autoMatch := appsync.NewAutoMatchService(ledger, env.mappings, env.target, appsync.ExecutorOptions{}, nil)
	h := NewSyncHandler(pull, push, autoMatch)

	env.router = gin.New()
	env.router.POST("/syncs/pull", h.StartPull)
	env.router.POST("/syncs/push", h.StartPush)
	env.router.POST("/syncs/automatch", h.StartAutoMatch)
	return env
}

func (e *syncTestEnv) locations() *MockLocationMappingRepository {
	locations := new(MockLocationMappingRepository)
	locations.On("FindActive", mock.Anything).Return([]syncdomain.LocationMapping{}, nil).Maybe()
	return locations
}

// stubBackground lets the orchestrator goroutine run against the mocks
// without failing expectations the test does not care about.
func (e *syncTestEnv) stubBackground() {
	e.jobs.On("Save", mock.Anything, mock.Anything).Return(nil)
	e.jobs.On("IncrementCounters", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	e.cursors.On("Save", mock.Anything, mock.Anything).Return(nil).Maybe()
	e.cursors.On("Delete", mock.Anything, mock.Anything).Return(nil).Maybe()
	e.mappings.On("FindBySourceIDs", mock.Anything, mock.Anything, mock.Anything).Return(map[string]*syncdomain.EntityMapping{}, nil).Maybe()
	e.mappings.On("FindAll", mock.Anything, mock.Anything).Return([]syncdomain.EntityMapping{}, int64(0), nil).Maybe()
	e.mappings.On("SaveBatch", mock.Anything, mock.Anything).Return(nil).Maybe()
	e.rules.On("FindActive", mock.Anything, mock.Anything).Return([]rulesdomain.Rule{}, nil).Maybe()
	e.syncLogs.On("Append", mock.Anything, mock.Anything).Return(nil).Maybe()
	e.source.On("ListEntities", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&syncdomain.EntityPage{}, nil).Maybe()
	e.source.On("GetQuantities", mock.Anything, mock.Anything, mock.Anything).
		Return(map[string]decimal.Decimal{}, nil).Maybe()
}

func postJSON(t *testing.T, router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestSyncHandlerStartPull(t *testing.T) {
	t.Run("queues pull", func(t *testing.T) {
		env := newSyncTestEnv(t)
		env.stubBackground()
		env.cursors.On("FindByFingerprint", mock.Anything, mock.Anything).Return(nil, syncdomain.ErrCursorNotFound)

		w := postJSON(t, env.router, "/syncs/pull", dto.StartPullRequest{Kind: "PULL_PRODUCTS"})

		assert.Equal(t, http.StatusAccepted, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
	})

	t.Run("conflict when pull already running", func(t *testing.T) {
		env := newSyncTestEnv(t)
		cursor, err := syncdomain.NewPullCursor(syncdomain.JobKindPullProducts, nil)
		require.NoError(t, err)
		env.cursors.On("FindByFingerprint", mock.Anything, cursor.Fingerprint).Return(cursor, nil)

		w := postJSON(t, env.router, "/syncs/pull", dto.StartPullRequest{Kind: "PULL_PRODUCTS"})

		assert.Equal(t, http.StatusConflict, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, dto.ErrCodePullAlreadyRunning, resp.Error.Code)
	})

	t.Run("rejects unknown kind", func(t *testing.T) {
		env := newSyncTestEnv(t)

		w := postJSON(t, env.router, "/syncs/pull", map[string]string{"kind": "PULL_EVERYTHING"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSyncHandlerStartPush(t *testing.T) {
	env := newSyncTestEnv(t)
	env.stubBackground()

	w := postJSON(t, env.router, "/syncs/push", dto.StartPushRequest{EntityIDs: []string{"src-1", "src-2"}})

	assert.Equal(t, http.StatusAccepted, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
}

func TestSyncHandlerStartAutoMatch(t *testing.T) {
	t.Run("queues auto-match", func(t *testing.T) {
		env := newSyncTestEnv(t)
		env.stubBackground()

		w := postJSON(t, env.router, "/syncs/automatch", dto.StartAutoMatchRequest{Kind: "PRODUCT"})

		assert.Equal(t, http.StatusAccepted, w.Code)
	})

	t.Run("rejects unknown kind", func(t *testing.T) {
		env := newSyncTestEnv(t)

		w := postJSON(t, env.router, "/syncs/automatch", map[string]string{"kind": "WAREHOUSE"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

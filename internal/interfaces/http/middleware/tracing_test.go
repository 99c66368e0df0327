package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace/noop"
)

func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
	})

	return sr
}

// findSpan returns the ended span with the given name, or nil.
func findSpan(sr *tracetest.SpanRecorder, name string) sdktrace.ReadOnlySpan {
	for _, span := range sr.Ended() {
		if span.Name() == name {
			return span
		}
	}
	return nil
}

func TestTracingWithConfig_Disabled(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(TracingWithConfig(TracingConfig{Enabled: false, ServiceName: "syncbridge-test"}))
	router.GET("/jobs", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"jobs": []string{}})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/jobs", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTracingWithConfig_CreatesSpan(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sr := setupTestTracer(t)

	router := gin.New()
	router.Use(TracingWithConfig(TracingConfig{Enabled: true, ServiceName: "syncbridge-test"}))
	router.GET("/jobs", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"jobs": []string{}})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/jobs", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, findSpan(sr, "GET /jobs"), "HTTP span not found")
}

func TestTracingWithConfig_EnrichesWithRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sr := setupTestTracer(t)

	router := gin.New()
	router.Use(RequestID())
	router.Use(TracingWithConfig(TracingConfig{Enabled: true, ServiceName: "syncbridge-test"}))
	router.Use(TracingAttributeInjector())
	router.GET("/jobs", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"jobs": []string{}})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/jobs", nil)
	req.Header.Set("X-Request-ID", "pull-trace-123")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	span := findSpan(sr, "GET /jobs")
	require.NotNil(t, span)

	found := false
	for _, attr := range span.Attributes() {
		if attr.Key == "request_id" {
			assert.Equal(t, "pull-trace-123", attr.Value.AsString())
			found = true
		}
	}
	assert.True(t, found, "request_id attribute not found in span")
}

func TestSpanErrorMarker(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		status     int
		wantErr    bool
		wantDesc   string
		exactDesc  bool
	}{
		{"not found", http.StatusNotFound, true, "Not Found", true},
		{"unauthorized", http.StatusUnauthorized, true, "Unauthorized", true},
		{"forbidden", http.StatusForbidden, true, "Forbidden", true},
		{"bad request", http.StatusBadRequest, true, "Client Error", true},
		// otelgin may set its own 5xx description, only the code is stable
		{"internal error", http.StatusInternalServerError, true, "", false},
		{"success", http.StatusOK, false, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sr := setupTestTracer(t)

			router := gin.New()
			router.Use(TracingWithConfig(TracingConfig{Enabled: true, ServiceName: "syncbridge-test"}))
			router.Use(SpanErrorMarker())
			router.GET("/jobs", func(c *gin.Context) {
				c.JSON(tt.status, gin.H{"status": tt.status})
			})

			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodGet, "/jobs", nil)
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)

			span := findSpan(sr, "GET /jobs")
			require.NotNil(t, span)

			if tt.wantErr {
				assert.Equal(t, codes.Error, span.Status().Code)
				if tt.exactDesc {
					assert.Equal(t, tt.wantDesc, span.Status().Description)
				}
			} else {
				assert.NotEqual(t, codes.Error, span.Status().Code)
			}
		})
	}
}

func TestSpanErrorMarker_WithNoopTracer(t *testing.T) {
	gin.SetMode(gin.TestMode)

	otel.SetTracerProvider(noop.NewTracerProvider())

	router := gin.New()
	router.Use(SpanErrorMarker())
	router.GET("/jobs", func(c *gin.Context) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "boom"})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/jobs", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestTracingAttributeInjector_WithNoSpan(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(TracingAttributeInjector())
	router.GET("/jobs", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/jobs", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTracing_DefaultConfig(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sr := setupTestTracer(t)

	router := gin.New()
	router.Use(Tracing())
	router.GET("/jobs", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/jobs", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.GreaterOrEqual(t, len(sr.Ended()), 1)
}

func TestDefaultTracingConfig(t *testing.T) {
	cfg := DefaultTracingConfig()

	assert.Equal(t, "syncbridge-backend", cfg.ServiceName)
	assert.True(t, cfg.Enabled)
}

func TestRequestIDFor(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("prefers context over header", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request, _ = http.NewRequest(http.MethodGet, "/jobs", nil)
		c.Request.Header.Set("X-Request-ID", "from-header")
		c.Set("request_id", "from-context")

		assert.Equal(t, "from-context", requestIDFor(c))
	})

	t.Run("falls back to header", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request, _ = http.NewRequest(http.MethodGet, "/jobs", nil)
		c.Request.Header.Set("X-Request-ID", "from-header")

		assert.Equal(t, "from-header", requestIDFor(c))
	})

	t.Run("truncates oversized header", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request, _ = http.NewRequest(http.MethodGet, "/jobs", nil)
		c.Request.Header.Set("X-Request-ID", strings.Repeat("a", 300))

		assert.Len(t, requestIDFor(c), MaxRequestIDLength)
	})
}

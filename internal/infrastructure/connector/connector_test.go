package connector

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	syncdomain "github.com/syncbridge/backend/internal/domain/sync"
)

func TestUnconfiguredSource(t *testing.T) {
	src := NewUnconfiguredSource()

	_, err := src.ListEntities(context.Background(), syncdomain.MappingKindProduct, nil, "", 100)
	assert.ErrorIs(t, err, syncdomain.ErrSourceUnavailable)

	_, err = src.GetQuantities(context.Background(), []string{"a"}, "")
	assert.ErrorIs(t, err, syncdomain.ErrSourceUnavailable)
}

func TestUnconfiguredTarget(t *testing.T) {
	tgt := NewUnconfiguredTarget()

	_, err := tgt.SetInventory(context.Background(), "v1", decimal.NewFromInt(1), "loc")
	assert.ErrorIs(t, err, syncdomain.ErrTargetUnavailable)

	err = tgt.SetInventoryByItemID(context.Background(), "inv-1", decimal.NewFromInt(1), "loc")
	assert.ErrorIs(t, err, syncdomain.ErrTargetUnavailable)

	err = tgt.UpdateCustomerField(context.Background(), "c1", "email", "x")
	assert.ErrorIs(t, err, syncdomain.ErrTargetUnavailable)

	_, err = tgt.FindVariantBySKU(context.Background(), "sku")
	assert.ErrorIs(t, err, syncdomain.ErrTargetUnavailable)

	_, err = tgt.FindCustomerByEmail(context.Background(), "x@example.com")
	assert.ErrorIs(t, err, syncdomain.ErrTargetUnavailable)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"valid", Config{BaseURL: "https://api.example.com", AccessToken: "tok"}, false},
		{"missing base URL", Config{AccessToken: "tok"}, true},
		{"relative base URL", Config{BaseURL: "/api", AccessToken: "tok"}, true},
		{"missing token", Config{BaseURL: "https://api.example.com"}, true},
		{"negative timeout", Config{BaseURL: "https://api.example.com", AccessToken: "tok", TimeoutSeconds: -1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewHTTPClient_InjectsCredentials(t *testing.T) {
	var gotAuth, gotAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAgent = r.Header.Get("User-Agent")
	}))
	defer server.Close()

	client, err := NewHTTPClient(&Config{
		BaseURL:     server.URL,
		AccessToken: "secret-token",
		UserAgent:   "syncbridge/1.0",
	})
	require.NoError(t, err)

	resp, err := client.Get(server.URL + "/entities")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.Equal(t, "syncbridge/1.0", gotAgent)
}

func TestNewHTTPClient_RejectsBadConfig(t *testing.T) {
	_, err := NewHTTPClient(&Config{BaseURL: "not a url"})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func responseWith(status int, header http.Header, body string) *http.Response {
	if header == nil {
		header = http.Header{}
	}
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestCheckResponse(t *testing.T) {
	t.Run("success statuses pass", func(t *testing.T) {
		assert.NoError(t, CheckResponse(responseWith(200, nil, ""), syncdomain.ErrTargetUnavailable))
		assert.NoError(t, CheckResponse(responseWith(201, nil, ""), syncdomain.ErrTargetUnavailable))
	})

	t.Run("429 classifies as throttle", func(t *testing.T) {
		header := http.Header{"Retry-After": []string{"3"}}
		err := CheckResponse(responseWith(429, header, ""), syncdomain.ErrTargetUnavailable)
		assert.ErrorIs(t, err, syncdomain.ErrTargetRateLimited)
		assert.True(t, syncdomain.IsRateLimited(err))
	})

	t.Run("5xx wraps the unavailable sentinel", func(t *testing.T) {
		err := CheckResponse(responseWith(503, nil, ""), syncdomain.ErrSourceUnavailable)
		assert.ErrorIs(t, err, syncdomain.ErrSourceUnavailable)
	})

	t.Run("4xx carries the body", func(t *testing.T) {
		err := CheckResponse(responseWith(404, nil, `{"error":"variant not found"}`), syncdomain.ErrTargetUnavailable)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "404")
		assert.Contains(t, err.Error(), "variant not found")
		assert.NotErrorIs(t, err, syncdomain.ErrTargetUnavailable)
	})
}

func TestRetryAfter(t *testing.T) {
	t.Run("delta seconds", func(t *testing.T) {
		resp := responseWith(429, http.Header{"Retry-After": []string{"5"}}, "")
		assert.Equal(t, 5*time.Second, RetryAfter(resp))
	})

	t.Run("http date", func(t *testing.T) {
		at := time.Now().Add(10 * time.Second).UTC().Format(http.TimeFormat)
		resp := responseWith(429, http.Header{"Retry-After": []string{at}}, "")
		wait := RetryAfter(resp)
		assert.Greater(t, wait, time.Duration(0))
		assert.LessOrEqual(t, wait, 10*time.Second)
	})

	t.Run("absent or junk", func(t *testing.T) {
		assert.Zero(t, RetryAfter(responseWith(429, nil, "")))
		resp := responseWith(429, http.Header{"Retry-After": []string{"soon"}}, "")
		assert.Zero(t, RetryAfter(resp))
	})
}

func TestDecodeJSON(t *testing.T) {
	var out struct {
		Items []string `json:"items"`
	}
	resp := responseWith(200, nil, `{"items":["a","b"]}`)
	require.NoError(t, DecodeJSON(resp, &out))
	assert.Equal(t, []string{"a", "b"}, out.Items)

	bad := responseWith(200, nil, `{"items":`)
	assert.Error(t, DecodeJSON(bad, &out))
}

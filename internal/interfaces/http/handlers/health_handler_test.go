package handlers

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type healthRecord struct {
	mu sync.Mutex
	up map[string]bool
}

func (r *healthRecord) SetHealth(component string, up bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.up == nil {
		r.up = map[string]bool{}
	}
	r.up[component] = up
}

func serveHealth(h *HealthHandler, path string) *httptest.ResponseRecorder {
	r := gin.New()
	h.RegisterRoutes(r)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestLiveness(t *testing.T) {
	failing := NewCheck("redis", func(context.Context) error { return stderrors.New("down") })
	w := serveHealth(NewHealthHandler("v1.2.3", nil, failing), "/healthz")

	require.Equal(t, http.StatusOK, w.Code)
	var resp LivenessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "alive", resp.Status)
	assert.Equal(t, "v1.2.3", resp.Version)
}

func TestReadiness_NoCheckers(t *testing.T) {
	w := serveHealth(NewHealthHandler("dev", nil), "/readyz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ready"`)
}

func TestReadiness_AllHealthy(t *testing.T) {
	rec := &healthRecord{}
	ok := func(context.Context) error { return nil }
	w := serveHealth(NewHealthHandler("dev", rec, NewCheck("postgres", ok), NewCheck("minio", ok)), "/readyz")

	require.Equal(t, http.StatusOK, w.Code)
	var resp ReadinessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ready", resp.Status)
	assert.Len(t, resp.Components, 2)
	assert.Equal(t, map[string]bool{"postgres": true, "minio": true}, rec.up)
}

func TestReadiness_Degraded(t *testing.T) {
	rec := &healthRecord{}
	w := serveHealth(NewHealthHandler("dev", rec,
		NewCheck("postgres", func(context.Context) error { return nil }),
		NewCheck("redis", func(context.Context) error { return stderrors.New("connection refused") }),
	), "/readyz")

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	var resp ReadinessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "not_ready", resp.Status)
	assert.Equal(t, "unhealthy", resp.Components["redis"].Status)
	assert.Equal(t, "connection refused", resp.Components["redis"].Error)
	assert.Equal(t, "healthy", resp.Components["postgres"].Status)
	assert.False(t, rec.up["redis"])
}

//Personal.AI order the ending

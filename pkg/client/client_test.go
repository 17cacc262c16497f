package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/smilescombine/pkg/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	opts = append([]Option{WithRetryWait(time.Millisecond, 2*time.Millisecond)}, opts...)
	c, err := NewClient(server.URL+"/api/v1", opts...)
	require.NoError(t, err)
	return c
}

type testLogger struct {
	count int32
}

func (l *testLogger) Debugf(format string, args ...interface{}) { atomic.AddInt32(&l.count, 1) }
func (l *testLogger) Infof(format string, args ...interface{})  { atomic.AddInt32(&l.count, 1) }
func (l *testLogger) Errorf(format string, args ...interface{}) { atomic.AddInt32(&l.count, 1) }

func TestNewClient(t *testing.T) {
	c, err := NewClient("http://localhost:8080/api/v1/")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/api/v1", c.baseURL)
	assert.Equal(t, 3, c.retryMax)
	assert.Contains(t, c.userAgent, "smilescombine-go-sdk/")
	assert.Same(t, c.Libraries(), c.Libraries())
}

func TestNewClient_InvalidURL(t *testing.T) {
	for _, u := range []string{"", "ftp://host", "no-scheme"} {
		_, err := NewClient(u)
		assert.True(t, errors.IsCode(err, errors.ErrCodeBadRequest), u)
	}
}

func TestOptions(t *testing.T) {
	hc := &http.Client{Timeout: time.Second}
	logger := &testLogger{}
	c, err := NewClient("https://example.com",
		WithHTTPClient(hc), WithLogger(logger), WithRetryMax(0),
		WithRetryWait(time.Second, 100*time.Millisecond), WithUserAgent("ua/1"))
	require.NoError(t, err)

	assert.Same(t, hc, c.httpClient)
	assert.Same(t, logger, c.logger)
	assert.Equal(t, 0, c.retryMax)
	assert.Equal(t, time.Second, c.retryWaitMin)
	assert.Equal(t, 5*time.Second, c.retryWaitMax, "max below min is ignored")
	assert.Equal(t, "ua/1", c.userAgent)

	WithRetryMax(-1)(c)
	WithUserAgent("")(c)
	assert.Equal(t, 0, c.retryMax)
	assert.Equal(t, "ua/1", c.userAgent)
}

func TestDo_SetsHeaders(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/libraries", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		assert.Contains(t, r.Header.Get("User-Agent"), "smilescombine-go-sdk/")
		w.Write([]byte(`{"runs":[]}`))
	})
	runs, err := c.Libraries().List(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestDo_DecodesErrorEnvelope(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"code":"COMMON_005","message":"run not found","detail":"abc","request_id":"rid-1"}}`))
	})
	_, err := c.Libraries().Get(context.Background(), "abc")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsNotFound())
	assert.Equal(t, "COMMON_005", apiErr.Code)
	assert.Equal(t, "abc", apiErr.Detail)
	assert.Equal(t, "rid-1", apiErr.RequestID)
	assert.Contains(t, apiErr.Error(), "run not found: abc")
}

func TestDo_PlainErrorBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	})
	_, err := c.Libraries().Get(context.Background(), "x")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsConflict())
	assert.Equal(t, http.StatusText(http.StatusConflict), apiErr.Message)
}

func TestDo_RetriesServerErrors(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `{"runs":[{"id":"r1","name":"a"}]}`)
	})
	runs, err := c.Libraries().List(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "r1", runs[0].ID)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestDo_GivesUpAfterRetryMax(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}, WithRetryMax(1))

	_, err := c.Libraries().List(context.Background(), 0)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsServerError())
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestDo_DoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	})
	_, err := c.Libraries().Canonicalize(context.Background(), "C1CC", false)
	require.Error(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestDo_RateLimitedWithoutRetryAfter(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"code":"RATE_LIMITED","message":"rate limit exceeded"}}`))
	})
	_, err := c.Libraries().Generate(context.Background(), &GenerateRequest{Name: "a", Skeleton: "c1ccccc1"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsRateLimited())
}

func TestDo_ContextCancelled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}, WithRetryWait(time.Hour, time.Hour))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.Libraries().List(ctx, 0)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCalculateBackoff(t *testing.T) {
	c, err := NewClient("http://x", WithRetryWait(100*time.Millisecond, 300*time.Millisecond))
	require.NoError(t, err)

	b1 := c.calculateBackoff(1)
	assert.GreaterOrEqual(t, b1, 100*time.Millisecond)
	assert.Less(t, b1, 125*time.Millisecond)

	b5 := c.calculateBackoff(5)
	assert.GreaterOrEqual(t, b5, 300*time.Millisecond)
	assert.Less(t, b5, 375*time.Millisecond)
}

//Personal.AI order the ending

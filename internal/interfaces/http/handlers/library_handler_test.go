package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/smilescombine/internal/application/library"
	domain "github.com/turtacn/smilescombine/internal/domain/library"
	"github.com/turtacn/smilescombine/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/smilescombine/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockService struct{ mock.Mock }

func (m *mockService) Generate(ctx context.Context, req *library.Request) (*library.Result, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*library.Result)
	return res, args.Error(1)
}

func (m *mockService) Batch(ctx context.Context, reqs []*library.Request) ([]*library.Result, error) {
	args := m.Called(ctx, reqs)
	res, _ := args.Get(0).([]*library.Result)
	return res, args.Error(1)
}

func (m *mockService) AssignRingOrder(ctx context.Context, skeleton string, subs []string) ([]string, error) {
	args := m.Called(ctx, skeleton, subs)
	out, _ := args.Get(0).([]string)
	return out, args.Error(1)
}

func (m *mockService) Canonicalize(ctx context.Context, s string, allHsExplicit bool) (string, error) {
	args := m.Called(ctx, s, allHsExplicit)
	return args.String(0), args.Error(1)
}

func (m *mockService) GetRun(ctx context.Context, id string) (*domain.Run, error) {
	args := m.Called(ctx, id)
	run, _ := args.Get(0).(*domain.Run)
	return run, args.Error(1)
}

func (m *mockService) ListRuns(ctx context.Context, limit int) ([]*domain.Run, error) {
	args := m.Called(ctx, limit)
	runs, _ := args.Get(0).([]*domain.Run)
	return runs, args.Error(1)
}

func (m *mockService) Structures(ctx context.Context, runID string) ([]string, error) {
	args := m.Called(ctx, runID)
	out, _ := args.Get(0).([]string)
	return out, args.Error(1)
}

func (m *mockService) HandleRequested(ctx context.Context, evt *domain.RequestedEvent) error {
	return m.Called(ctx, evt).Error(0)
}

type mockEnqueuer struct{ mock.Mock }

func (m *mockEnqueuer) Enqueue(ctx context.Context, req *domain.RequestedEvent) error {
	return m.Called(ctx, req).Error(0)
}

func newTestRouter(svc library.Service, enq Enqueuer, opts ...HandlerOption) *gin.Engine {
	r := gin.New()
	h := NewLibraryHandler(svc, enq, logging.NewNopLogger(), opts...)
	h.RegisterRoutes(r.Group("/api/v1"))
	return r
}

func doJSON(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorBody {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Error
}

func TestGenerate_Sync(t *testing.T) {
	svc := &mockService{}
	nmax := 2
	svc.On("Generate", mock.Anything, mock.MatchedBy(func(req *library.Request) bool {
		return req.Name == "tol" && req.Skeleton == "Cc1ccccc1" &&
			req.Source == library.SourceHTTP && req.NMax != nil && *req.NMax == 2
	})).Return(&library.Result{
		Run:          &domain.Run{ID: "run-1", Name: "tol", Status: domain.StatusSucceeded, Combinations: 1},
		Combinations: []string{"Cc1ccccc1"},
	}, nil)

	w := doJSON(newTestRouter(svc, nil), http.MethodPost, "/api/v1/libraries", GenerateRequest{
		Name: "tol", Skeleton: "Cc1ccccc1", Substituents: []string{"F"}, NMax: &nmax,
	})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var res library.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, "run-1", res.Run.ID)
	assert.Equal(t, []string{"Cc1ccccc1"}, res.Combinations)
	svc.AssertExpectations(t)
}

func TestGenerate_Validation(t *testing.T) {
	svc := &mockService{}
	r := newTestRouter(svc, nil)

	w := doJSON(r, http.MethodPost, "/api/v1/libraries", GenerateRequest{Name: "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, errors.ErrCodeBadRequest.String(), decodeError(t, w).Code)

	w = doJSON(r, http.MethodPost, "/api/v1/libraries", GenerateRequest{Name: "../etc", Skeleton: "c1ccccc1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/libraries", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestGenerate_SpecificationErrorIs422(t *testing.T) {
	svc := &mockService{}
	svc.On("Generate", mock.Anything, mock.Anything).
		Return(nil, errors.New(errors.ErrCodeSpecification, "nconnect (3) cannot exceed available sites (1)"))

	w := doJSON(newTestRouter(svc, nil), http.MethodPost, "/api/v1/libraries",
		GenerateRequest{Name: "x", Skeleton: "c1ccccc1"})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, errors.ErrCodeSpecification.String(), body.Code)
	assert.Contains(t, body.Message, "cannot exceed available sites")
}

func TestGenerate_InternalErrorIsMasked(t *testing.T) {
	svc := &mockService{}
	svc.On("Generate", mock.Anything, mock.Anything).Return(nil, stderrors.New("disk on fire"))

	w := doJSON(newTestRouter(svc, nil), http.MethodPost, "/api/v1/libraries",
		GenerateRequest{Name: "x", Skeleton: "c1ccccc1"})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, errors.ErrCodeInternal.String(), body.Code)
	assert.NotContains(t, w.Body.String(), "disk on fire")
}

func TestGenerate_Async(t *testing.T) {
	svc := &mockService{}
	enq := &mockEnqueuer{}
	enq.On("Enqueue", mock.Anything, mock.MatchedBy(func(evt *domain.RequestedEvent) bool {
		return evt.Name == "lib" && evt.Skeleton == "c1ccccc1" && len(evt.Substituents) == 1
	})).Return(nil)

	w := doJSON(newTestRouter(svc, enq), http.MethodPost, "/api/v1/libraries?async=true",
		GenerateRequest{Name: "lib", Skeleton: "c1ccccc1", Substituents: []string{"Cl"}})

	require.Equal(t, http.StatusAccepted, w.Code)
	var resp QueuedResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, QueuedResponse{Status: "queued", Name: "lib"}, resp)
	enq.AssertExpectations(t)
	svc.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestGenerate_AsyncWithoutQueue(t *testing.T) {
	w := doJSON(newTestRouter(&mockService{}, nil), http.MethodPost, "/api/v1/libraries?async=1",
		GenerateRequest{Name: "lib", Skeleton: "c1ccccc1"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func nmaxIs(want int) interface{} {
	return mock.MatchedBy(func(req *library.Request) bool {
		return req.NMax != nil && *req.NMax == want
	})
}

func TestGenerate_SyncNMaxCap(t *testing.T) {
	svc := &mockService{}
	svc.On("Generate", mock.Anything, nmaxIs(3)).Return(&library.Result{Run: &domain.Run{ID: "run-1"}}, nil).Once()
	r := newTestRouter(svc, nil, WithSyncLimits(SyncLimits{MaxNMax: 3, DefaultNMax: -1}))

	w := doJSON(r, http.MethodPost, "/api/v1/libraries", GenerateRequest{Name: "x", Skeleton: "c1ccccc1"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	for _, n := range []int{4, -1} {
		n := n
		w = doJSON(r, http.MethodPost, "/api/v1/libraries", GenerateRequest{Name: "x", Skeleton: "c1ccccc1", NMax: &n})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		body := decodeError(t, w)
		assert.Equal(t, errors.ErrCodeValidation.String(), body.Code)
		assert.Contains(t, body.Message, "async=true")
	}
	svc.AssertExpectations(t)
}

func TestGenerate_SyncDefaultNMaxBelowCap(t *testing.T) {
	svc := &mockService{}
	svc.On("Generate", mock.Anything, nmaxIs(2)).Return(&library.Result{Run: &domain.Run{ID: "run-1"}}, nil)
	r := newTestRouter(svc, nil, WithSyncLimits(SyncLimits{MaxNMax: 4, DefaultNMax: 2}))

	w := doJSON(r, http.MethodPost, "/api/v1/libraries", GenerateRequest{Name: "x", Skeleton: "c1ccccc1"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	svc.AssertExpectations(t)
}

func TestGenerate_SyncTimeout(t *testing.T) {
	svc := &mockService{}
	svc.On("Generate", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		<-args.Get(0).(context.Context).Done()
	}).Return(nil, context.DeadlineExceeded)
	r := newTestRouter(svc, nil, WithSyncLimits(SyncLimits{MaxNMax: -1, Timeout: 20 * time.Millisecond}))

	w := doJSON(r, http.MethodPost, "/api/v1/libraries", GenerateRequest{Name: "x", Skeleton: "c1ccccc1"})

	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	assert.Equal(t, errors.ErrCodeTimeout.String(), decodeError(t, w).Code)
}

func TestGenerate_AsyncIgnoresSyncLimits(t *testing.T) {
	enq := &mockEnqueuer{}
	enq.On("Enqueue", mock.Anything, mock.MatchedBy(func(evt *domain.RequestedEvent) bool {
		return evt.NMax == nil
	})).Return(nil)
	r := newTestRouter(&mockService{}, enq, WithSyncLimits(SyncLimits{MaxNMax: 1}))

	w := doJSON(r, http.MethodPost, "/api/v1/libraries?async=true", GenerateRequest{Name: "lib", Skeleton: "c1ccccc1"})
	assert.Equal(t, http.StatusAccepted, w.Code)
	enq.AssertExpectations(t)
}

func TestList_ClampsLimit(t *testing.T) {
	svc := &mockService{}
	svc.On("ListRuns", mock.Anything, maxListLimit).Return([]*domain.Run{{ID: "a"}}, nil)

	w := doJSON(newTestRouter(svc, nil), http.MethodGet, "/api/v1/libraries?limit=5000", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"a"`)
	svc.AssertExpectations(t)
}

func TestGet_NotFound(t *testing.T) {
	svc := &mockService{}
	svc.On("GetRun", mock.Anything, "missing").Return(nil, errors.NotFound("run not found"))

	w := doJSON(newTestRouter(svc, nil), http.MethodGet, "/api/v1/libraries/missing", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "run not found", decodeError(t, w).Message)
}

func TestStructures_JSONAndPlain(t *testing.T) {
	svc := &mockService{}
	svc.On("Structures", mock.Anything, "run-1").Return([]string{"c1ccccc1F", "c1ccccc1"}, nil)
	r := newTestRouter(svc, nil)

	w := doJSON(r, http.MethodGet, "/api/v1/libraries/run-1/structures", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"structures":["c1ccccc1F","c1ccccc1"]`)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/libraries/run-1/structures", nil)
	req.Header.Set("Accept", "text/plain")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "c1ccccc1F\nc1ccccc1\n", w.Body.String())
}

func TestCanonicalize(t *testing.T) {
	svc := &mockService{}
	svc.On("Canonicalize", mock.Anything, "C1=CC=CC=C1", true).Return("[cH]1[cH][cH][cH][cH][cH]1", nil)
	svc.On("Canonicalize", mock.Anything, "C1CC", false).
		Return("", errors.New(errors.ErrCodeSMILESParse, "unclosed ring"))
	r := newTestRouter(svc, nil)

	w := doJSON(r, http.MethodPost, "/api/v1/canonicalize", canonicalizeRequest{SMILES: "C1=CC=CC=C1", AllHsExplicit: true})
	require.Equal(t, http.StatusOK, w.Code)
	var resp canonicalizeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "[cH]1[cH][cH][cH][cH][cH]1", resp.Canonical)

	w = doJSON(r, http.MethodPost, "/api/v1/canonicalize", canonicalizeRequest{SMILES: "C1CC"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, errors.ErrCodeSMILESParse.String(), decodeError(t, w).Code)
}

func TestRingOrder(t *testing.T) {
	svc := &mockService{}
	svc.On("AssignRingOrder", mock.Anything, "c1ccccc1", []string{"c1ccccc1"}).Return([]string{"c2ccccc2"}, nil)

	w := doJSON(newTestRouter(svc, nil), http.MethodPost, "/api/v1/ring-order",
		ringOrderRequest{Skeleton: "c1ccccc1", Substituents: []string{"c1ccccc1"}})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"substituents":["c2ccccc2"]`)
}

//Personal.AI order the ending

package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/smilescombine/internal/application/library"
	domain "github.com/turtacn/smilescombine/internal/domain/library"
	"github.com/turtacn/smilescombine/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/smilescombine/pkg/errors"
)

// Enqueuer hands a generation request to the background workers.
type Enqueuer interface {
	Enqueue(ctx context.Context, req *domain.RequestedEvent) error
}

// SyncLimits bound a library built inside the request.  Queued requests are
// not affected.
type SyncLimits struct {
	// MaxNMax is the largest nmax accepted; negative disables the cap.
	MaxNMax int

	// DefaultNMax applies when the request omits nmax.  Values outside
	// [0, MaxNMax] fall back to MaxNMax.
	DefaultNMax int

	// Timeout cancels the generation; zero disables it.
	Timeout time.Duration
}

// LibraryHandler serves library generation and the SMILES utilities.
type LibraryHandler struct {
	svc      library.Service
	enqueuer Enqueuer
	logger   logging.Logger
	limits   SyncLimits
}

// HandlerOption configures a LibraryHandler.
type HandlerOption func(*LibraryHandler)

// WithSyncLimits bounds synchronous generation.
func WithSyncLimits(l SyncLimits) HandlerOption {
	return func(h *LibraryHandler) { h.limits = l }
}

// NewLibraryHandler creates the handler.  enqueuer may be nil, in which case
// asynchronous generation answers 503.  Without WithSyncLimits synchronous
// generation is unbounded.
func NewLibraryHandler(svc library.Service, enqueuer Enqueuer, logger logging.Logger, opts ...HandlerOption) *LibraryHandler {
	h := &LibraryHandler{svc: svc, enqueuer: enqueuer, logger: logger, limits: SyncLimits{MaxNMax: -1}}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// syncNMax applies the synchronous nmax cap to a requested value.
func (h *LibraryHandler) syncNMax(requested *int) (*int, error) {
	limit := h.limits.MaxNMax
	if limit < 0 {
		return requested, nil
	}
	if requested == nil {
		n := h.limits.DefaultNMax
		if n < 0 || n > limit {
			n = limit
		}
		return &n, nil
	}
	if *requested < 0 || *requested > limit {
		return nil, errors.Newf(errors.ErrCodeValidation,
			"nmax %d exceeds the synchronous limit %d; use async=true", *requested, limit)
	}
	return requested, nil
}

// RegisterRoutes mounts the handler.  generate wraps POST /libraries only,
// which is where rate limiting belongs.
func (h *LibraryHandler) RegisterRoutes(rg *gin.RouterGroup, generate ...gin.HandlerFunc) {
	rg.POST("/libraries", append(generate, h.Generate)...)
	rg.GET("/libraries", h.List)
	rg.GET("/libraries/:id", h.Get)
	rg.GET("/libraries/:id/structures", h.Structures)
	rg.POST("/canonicalize", h.Canonicalize)
	rg.POST("/ring-order", h.RingOrder)
}

// GenerateRequest is the body of POST /libraries.
type GenerateRequest struct {
	Name          string   `json:"name"`
	Skeleton      string   `json:"skeleton"`
	Substituents  []string `json:"substituents"`
	NMax          *int     `json:"nmax,omitempty"`
	NConnect      *int     `json:"nconnect,omitempty"`
	ConnectAtom   string   `json:"connect_atom,omitempty"`
	AutoPlacement *bool    `json:"auto_placement,omitempty"`
}

// QueuedResponse acknowledges an asynchronous request.
type QueuedResponse struct {
	Status string `json:"status"`
	Name   string `json:"name"`
}

// Generate handles POST /libraries.  With ?async=true the request is queued
// and answered with 202; otherwise the library is built inline.
func (h *LibraryHandler) Generate(c *gin.Context) {
	var body GenerateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, h.logger, badRequest(err))
		return
	}
	if body.Skeleton == "" {
		respondError(c, h.logger, errors.InvalidParam("skeleton is required"))
		return
	}
	if err := domain.ValidateName(body.Name); err != nil {
		respondError(c, h.logger, err)
		return
	}

	async, _ := strconv.ParseBool(c.Query("async"))
	if async {
		if h.enqueuer == nil {
			respondError(c, h.logger, errors.Unavailable("asynchronous generation is not configured"))
			return
		}
		evt := &domain.RequestedEvent{
			Name:          body.Name,
			Skeleton:      body.Skeleton,
			Substituents:  body.Substituents,
			NMax:          body.NMax,
			NConnect:      body.NConnect,
			ConnectAtom:   body.ConnectAtom,
			AutoPlacement: body.AutoPlacement,
		}
		if err := h.enqueuer.Enqueue(c.Request.Context(), evt); err != nil {
			respondError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusAccepted, QueuedResponse{Status: "queued", Name: body.Name})
		return
	}

	nmax, err := h.syncNMax(body.NMax)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	ctx := c.Request.Context()
	if h.limits.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.limits.Timeout)
		defer cancel()
	}
	res, err := h.svc.Generate(ctx, &library.Request{
		Name:          body.Name,
		Skeleton:      body.Skeleton,
		Substituents:  body.Substituents,
		NMax:          nmax,
		NConnect:      body.NConnect,
		ConnectAtom:   body.ConnectAtom,
		AutoPlacement: body.AutoPlacement,
		Source:        library.SourceHTTP,
	})
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded && c.Request.Context().Err() == nil {
			err = errors.Newf(errors.ErrCodeTimeout,
				"library generation exceeded %s; use async=true", h.limits.Timeout)
		}
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// List handles GET /libraries?limit=.
func (h *LibraryHandler) List(c *gin.Context) {
	runs, err := h.svc.ListRuns(c.Request.Context(), parseLimit(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if runs == nil {
		runs = []*domain.Run{}
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

func (h *LibraryHandler) Get(c *gin.Context) {
	run, err := h.svc.GetRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, run)
}

// Structures handles GET /libraries/:id/structures.  Accept: text/plain
// yields the structure file format, one SMILES per line.
func (h *LibraryHandler) Structures(c *gin.Context) {
	id := c.Param("id")
	structures, err := h.svc.Structures(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if c.NegotiateFormat(gin.MIMEJSON, gin.MIMEPlain) == gin.MIMEPlain {
		var buf []byte
		for _, s := range structures {
			buf = append(buf, s...)
			buf = append(buf, '\n')
		}
		c.Data(http.StatusOK, "text/plain; charset=utf-8", buf)
		return
	}
	if structures == nil {
		structures = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"run_id": id, "structures": structures})
}

type canonicalizeRequest struct {
	SMILES        string `json:"smiles"`
	AllHsExplicit bool   `json:"all_hs_explicit"`
}

type canonicalizeResponse struct {
	Input     string `json:"input"`
	Canonical string `json:"canonical"`
}

// Canonicalize handles POST /canonicalize.
func (h *LibraryHandler) Canonicalize(c *gin.Context) {
	var body canonicalizeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, h.logger, badRequest(err))
		return
	}
	out, err := h.svc.Canonicalize(c.Request.Context(), body.SMILES, body.AllHsExplicit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, canonicalizeResponse{Input: body.SMILES, Canonical: out})
}

type ringOrderRequest struct {
	Skeleton     string   `json:"skeleton"`
	Substituents []string `json:"substituents"`
}

// RingOrder handles POST /ring-order, returning the substituents with their
// ring-closure labels shifted past the skeleton's aromatic rings.
func (h *LibraryHandler) RingOrder(c *gin.Context) {
	var body ringOrderRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, h.logger, badRequest(err))
		return
	}
	subs, err := h.svc.AssignRingOrder(c.Request.Context(), body.Skeleton, body.Substituents)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if subs == nil {
		subs = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"skeleton": body.Skeleton, "substituents": subs})
}

//Personal.AI order the ending

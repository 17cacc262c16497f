// Package library orchestrates library generation runs: it builds a
// Combiner for each request, writes the structure list and hands the result
// to whichever run repository, artifact store and event publisher are
// configured.
package library

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/turtacn/smilescombine/internal/chem/smiles"
	"github.com/turtacn/smilescombine/internal/config"
	"github.com/turtacn/smilescombine/internal/domain/combiner"
	domain "github.com/turtacn/smilescombine/internal/domain/library"
	"github.com/turtacn/smilescombine/internal/infrastructure/database/redis"
	"github.com/turtacn/smilescombine/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/smilescombine/pkg/errors"
)

// Run sources, used as a metrics label.
const (
	SourceCLI    = "cli"
	SourceHTTP   = "http"
	SourceWorker = "worker"
)

// Service defines the library application operations.
type Service interface {
	Generate(ctx context.Context, req *Request) (*Result, error)
	Batch(ctx context.Context, reqs []*Request) ([]*Result, error)
	AssignRingOrder(ctx context.Context, skeleton string, substituents []string) ([]string, error)
	Canonicalize(ctx context.Context, s string, allHsExplicit bool) (string, error)
	GetRun(ctx context.Context, id string) (*domain.Run, error)
	ListRuns(ctx context.Context, limit int) ([]*domain.Run, error)
	Structures(ctx context.Context, runID string) ([]string, error)
	HandleRequested(ctx context.Context, evt *domain.RequestedEvent) error
}

// Request describes one library.  Nil or empty option fields take the
// service defaults.
type Request struct {
	Name          string
	Skeleton      string
	Substituents  []string
	NMax          *int
	NConnect      *int
	ConnectAtom   string
	AutoPlacement *bool
	// Output overrides <OutputDir>/<Name>.smi.
	Output string
	Source string
}

// Result is a finished run and its structures.
type Result struct {
	Run          *domain.Run `json:"run"`
	Combinations []string    `json:"combinations"`
	Summary      string      `json:"summary"`
}

// Metrics is the subset of the Prometheus metrics the service records.
type Metrics interface {
	RecordRun(source string, succeeded bool, d time.Duration, structures int)
	RecordCanonicalization(err error)
	ObserveUpload(d time.Duration)
	RecordError(component, code string)
}

// RunLocker hands out per-library distributed locks.
type RunLocker interface {
	ForLibrary(name string, opts ...redis.LockOption) redis.RunLock
}

// Deps are the collaborators of the service.  Engine and Logger are
// required; the rest are optional.
type Deps struct {
	Engine    combiner.Engine
	Runs      domain.RunRepository
	Artifacts domain.ArtifactStore
	Events    domain.EventPublisher
	Locker    RunLocker
	Metrics   Metrics
	Logger    logging.Logger
}

type serviceImpl struct {
	cfg       config.CombinerConfig
	engine    combiner.Engine
	runs      domain.RunRepository
	artifacts domain.ArtifactStore
	events    domain.EventPublisher
	locker    RunLocker
	metrics   Metrics
	logger    logging.Logger
}

// NewService creates the library service.
func NewService(cfg config.CombinerConfig, deps Deps) (Service, error) {
	if deps.Engine == nil {
		return nil, errors.InvalidParam("engine is required")
	}
	if deps.Logger == nil {
		deps.Logger = logging.NewNopLogger()
	}
	if cfg.ConnectAtom == "" {
		cfg.ConnectAtom = combiner.DefaultConnectAtom
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "."
	}
	return &serviceImpl{
		cfg:       cfg,
		engine:    deps.Engine,
		runs:      deps.Runs,
		artifacts: deps.Artifacts,
		events:    deps.Events,
		locker:    deps.Locker,
		metrics:   deps.Metrics,
		logger:    deps.Logger.Named("library"),
	}, nil
}

// resolved is a Request with every default applied.
type resolved struct {
	name          string
	nmax          *int
	nconnect      int
	connectAtom   string
	autoPlacement bool
	output        string
	source        string
}

func (s *serviceImpl) resolve(req *Request) (*resolved, error) {
	if req == nil {
		return nil, errors.InvalidParam("request is required")
	}
	r := &resolved{
		name:          strings.TrimSpace(req.Name),
		nconnect:      s.cfg.NConnect,
		connectAtom:   s.cfg.ConnectAtom,
		autoPlacement: s.cfg.AutoPlacement,
		output:        req.Output,
		source:        req.Source,
	}
	if r.name == "" && r.output != "" {
		r.name = strings.TrimSuffix(filepath.Base(r.output), filepath.Ext(r.output))
	}
	if err := domain.ValidateName(r.name); err != nil {
		return nil, err
	}
	if r.output == "" {
		r.output = filepath.Join(s.cfg.OutputDir, domain.OutputFile(r.name))
	}
	if r.source == "" {
		r.source = SourceCLI
	}

	switch {
	case req.NMax != nil:
		if *req.NMax >= 0 {
			n := *req.NMax
			r.nmax = &n
		}
	case s.cfg.NMax >= 0:
		n := s.cfg.NMax
		r.nmax = &n
	}
	if req.NConnect != nil {
		r.nconnect = *req.NConnect
	}
	if req.ConnectAtom != "" {
		r.connectAtom = req.ConnectAtom
	}
	if req.AutoPlacement != nil {
		r.autoPlacement = *req.AutoPlacement
	}
	return r, nil
}

func (s *serviceImpl) Generate(ctx context.Context, req *Request) (*Result, error) {
	r, err := s.resolve(req)
	if err != nil {
		return nil, err
	}

	if s.locker != nil {
		lock := s.locker.ForLibrary(r.name)
		ok, err := lock.TryLock(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, redis.ErrLockNotAcquired
		}
		defer func() {
			if err := lock.Unlock(context.WithoutCancel(ctx)); err != nil {
				s.logger.Warn("failed to release library lock", logging.String("name", r.name), logging.Err(err))
			}
		}()
	}

	run := domain.NewRun(r.name, req.Skeleton, req.Substituents)
	run.NMax = r.nmax
	run.NConnect = r.nconnect
	run.ConnectAtom = r.connectAtom
	run.AutoPlacement = r.autoPlacement
	run.OutputPath = r.output

	log := s.logger.With(logging.String("run_id", run.ID), logging.String("name", r.name))
	if s.runs != nil {
		if err := s.runs.Create(ctx, run); err != nil {
			return nil, err
		}
	}

	opts := []combiner.Option{
		combiner.WithNConnect(r.nconnect),
		combiner.WithConnectAtom(r.connectAtom),
		combiner.WithAutoPlacement(r.autoPlacement),
		combiner.WithLogger(log),
	}
	if r.nmax != nil {
		opts = append(opts, combiner.WithNMax(*r.nmax))
	}

	c, err := combiner.New(ctx, s.engine, req.Skeleton, req.Substituents, opts...)
	if err != nil {
		return nil, s.fail(ctx, run, r.source, err)
	}
	res, err := c.Combine(ctx)
	if err != nil {
		return nil, s.fail(ctx, run, r.source, err)
	}
	if err := combiner.WriteSMILESFile(r.output, res.Combinations); err != nil {
		return nil, s.fail(ctx, run, r.source, err)
	}

	if s.artifacts != nil {
		start := time.Now()
		uri, err := s.artifacts.Upload(ctx, run.ID, filepath.Base(r.output), r.output)
		if err != nil {
			return nil, s.fail(ctx, run, r.source, err)
		}
		if s.metrics != nil {
			s.metrics.ObserveUpload(time.Since(start))
		}
		run.ArtifactURI = uri
	}

	run.Succeed(res.Template, res.VacantSites, len(res.Combinations))
	if s.runs != nil {
		if _, err := s.runs.SaveStructures(ctx, run.ID, res.Combinations); err != nil {
			return nil, s.fail(ctx, run, r.source, err)
		}
		if err := s.runs.Update(ctx, run); err != nil {
			return nil, err
		}
	}
	if s.events != nil {
		if err := s.events.PublishGenerated(ctx, domain.NewGeneratedEvent(run)); err != nil {
			log.Warn("failed to publish library event", logging.Err(err))
		}
	}
	if s.metrics != nil {
		s.metrics.RecordRun(r.source, true, run.Duration(), run.Combinations)
	}

	log.Info("library generated",
		logging.String("skeleton", run.Skeleton),
		logging.String("template", run.Template),
		logging.Int("vacant_sites", run.VacantSites),
		logging.Int("unique_combinations", run.Combinations),
		logging.String("output", r.output),
		logging.Duration("elapsed", run.Duration()))

	return &Result{Run: run, Combinations: res.Combinations, Summary: c.String()}, nil
}

// fail marks run failed, records it and returns err unchanged.
func (s *serviceImpl) fail(ctx context.Context, run *domain.Run, source string, err error) error {
	run.Fail(err)
	if s.runs != nil {
		if uerr := s.runs.Update(context.WithoutCancel(ctx), run); uerr != nil {
			s.logger.Warn("failed to record failed run", logging.String("run_id", run.ID), logging.Err(uerr))
		}
	}
	if s.metrics != nil {
		s.metrics.RecordRun(source, false, run.Duration(), 0)
		s.metrics.RecordError("library", string(errors.GetCode(err)))
	}
	s.logger.Error("library generation failed",
		logging.String("run_id", run.ID),
		logging.String("name", run.Name),
		logging.Err(err))
	return err
}

// Batch runs reqs in order and stops at the first failure.  Results of the
// jobs before it are returned with the error.
func (s *serviceImpl) Batch(ctx context.Context, reqs []*Request) ([]*Result, error) {
	results := make([]*Result, 0, len(reqs))
	for i, req := range reqs {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := s.Generate(ctx, req)
		if err != nil {
			name := ""
			if req != nil {
				name = req.Name
			}
			return results, errors.Wrap(err, errors.CodeUnknown, "batch job failed").
				WithDetail(fmt.Sprintf("job %d %s", i+1, name))
		}
		results = append(results, res)
	}
	return results, nil
}

func (s *serviceImpl) AssignRingOrder(ctx context.Context, skeleton string, substituents []string) ([]string, error) {
	if strings.TrimSpace(skeleton) == "" {
		return nil, errors.InvalidParam("skeleton is required")
	}
	return combiner.AssignRingOrder(ctx, s.engine, skeleton, substituents)
}

func (s *serviceImpl) Canonicalize(ctx context.Context, in string, allHsExplicit bool) (string, error) {
	if strings.TrimSpace(in) == "" {
		return "", errors.InvalidParam("smiles is required")
	}
	out, err := s.engine.Canonicalize(ctx, in, smiles.RenderOptions{AllHsExplicit: allHsExplicit})
	if s.metrics != nil {
		s.metrics.RecordCanonicalization(err)
	}
	return out, err
}

var errNoRepository = errors.Unavailable("run repository is not configured")

func (s *serviceImpl) GetRun(ctx context.Context, id string) (*domain.Run, error) {
	if s.runs == nil {
		return nil, errNoRepository
	}
	return s.runs.GetByID(ctx, id)
}

func (s *serviceImpl) ListRuns(ctx context.Context, limit int) ([]*domain.Run, error) {
	if s.runs == nil {
		return nil, errNoRepository
	}
	return s.runs.ListRecent(ctx, limit)
}

func (s *serviceImpl) Structures(ctx context.Context, runID string) ([]string, error) {
	if s.runs == nil {
		return nil, errNoRepository
	}
	return s.runs.Structures(ctx, runID)
}

// HandleRequested generates the library a worker received.  Requests that
// can never succeed are logged and acknowledged; a held lock and
// infrastructure failures are returned so the consumer retries.
func (s *serviceImpl) HandleRequested(ctx context.Context, evt *domain.RequestedEvent) error {
	req := &Request{
		Name:          evt.Name,
		Skeleton:      evt.Skeleton,
		Substituents:  evt.Substituents,
		NMax:          evt.NMax,
		NConnect:      evt.NConnect,
		ConnectAtom:   evt.ConnectAtom,
		AutoPlacement: evt.AutoPlacement,
		Source:        SourceWorker,
	}
	_, err := s.Generate(ctx, req)
	if err == nil {
		return nil
	}
	code := errors.GetCode(err)
	if code != errors.ErrCodeConflict && errors.IsClientError(code) {
		s.logger.Warn("rejected library request",
			logging.String("name", evt.Name),
			logging.ErrCode(err),
			logging.Err(err))
		return nil
	}
	return err
}

//Personal.AI order the ending

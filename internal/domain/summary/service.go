// Package summary assembles a patient's record with their latest analyses
// and diet chart.
package summary

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/ahara/ahara/internal/domain/analysis"
	"github.com/ahara/ahara/internal/domain/dietchart"
	"github.com/ahara/ahara/internal/domain/patient"
	"github.com/ahara/ahara/internal/platform/db"
)

type PatientSource interface {
	GetPatient(ctx context.Context, id uuid.UUID) (*patient.Patient, error)
}

type AnalysisSource interface {
	LatestPrakriti(ctx context.Context, patientID uuid.UUID) (*analysis.PrakritiAnalysis, error)
	LatestHealth(ctx context.Context, patientID uuid.UUID) (*analysis.HealthAnalysis, error)
}

type ChartSource interface {
	LatestChart(ctx context.Context, patientID uuid.UUID) (*dietchart.DietChart, error)
}

// CacheObserver counts cache hits and misses. *telemetry.Provider satisfies it.
type CacheObserver interface {
	RecordCacheLookup(hit bool)
}

// ForkFunc hands each concurrent lookup its own database context.
type ForkFunc func(ctx context.Context) (context.Context, func(), error)

// Summary is the cached aggregate. Missing analyses or charts are nil.
type Summary struct {
	Patient   *patient.Patient           `json:"patient"`
	Prakriti  *analysis.PrakritiAnalysis `json:"latest_prakriti"`
	Health    *analysis.HealthAnalysis   `json:"latest_health_history"`
	DietChart *dietchart.DietChart       `json:"-"`
	BuiltAt   time.Time                  `json:"built_at"`
}

type cacheKey struct {
	clinic    string
	patientID uuid.UUID
}

type Service struct {
	patients PatientSource
	analyses AnalysisSource
	charts   ChartSource
	cache    *lru.Cache[cacheKey, *Summary]
	obs      CacheObserver
	fork     ForkFunc
	now      func() time.Time

	// mu orders invalidations against cache fills. generation advances on
	// every invalidation so a build that raced one is not cached.
	mu         sync.Mutex
	generation uint64
}

type Option func(*Service)

func WithObserver(obs CacheObserver) Option {
	return func(s *Service) { s.obs = obs }
}

func WithFork(fork ForkFunc) Option {
	return func(s *Service) { s.fork = fork }
}

func NewService(patients PatientSource, analyses AnalysisSource, charts ChartSource, cacheSize int, opts ...Option) (*Service, error) {
	cache, err := lru.New[cacheKey, *Summary](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("summary cache: %w", err)
	}
	s := &Service{
		patients: patients,
		analyses: analyses,
		charts:   charts,
		cache:    cache,
		fork: func(ctx context.Context) (context.Context, func(), error) {
			return ctx, func() {}, nil
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Invalidate drops the cached summaries of a patient in every clinic.
func (s *Service) Invalidate(patientID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	for _, k := range s.cache.Keys() {
		if k.patientID == patientID {
			s.cache.Remove(k)
		}
	}
}

func (s *Service) observe(hit bool) {
	if s.obs != nil {
		s.obs.RecordCacheLookup(hit)
	}
}

// Get returns the patient's summary, building it on a cache miss.
func (s *Service) Get(ctx context.Context, patientID uuid.UUID) (*Summary, error) {
	key := cacheKey{clinic: db.ClinicFromContext(ctx), patientID: patientID}
	if sum, ok := s.cache.Get(key); ok {
		s.observe(true)
		return sum, nil
	}
	s.observe(false)

	s.mu.Lock()
	gen := s.generation
	s.mu.Unlock()

	sum, err := s.build(ctx, patientID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.generation == gen {
		s.cache.Add(key, sum)
	}
	s.mu.Unlock()
	return sum, nil
}

func (s *Service) build(ctx context.Context, patientID uuid.UUID) (*Summary, error) {
	p, err := s.patients.GetPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	sum := &Summary{Patient: p, BuiltAt: s.now()}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.latest(gctx, func(ctx context.Context) (err error) {
			sum.Prakriti, err = s.analyses.LatestPrakriti(ctx, patientID)
			return err
		})
	})
	g.Go(func() error {
		return s.latest(gctx, func(ctx context.Context) (err error) {
			sum.Health, err = s.analyses.LatestHealth(ctx, patientID)
			return err
		})
	})
	g.Go(func() error {
		return s.latest(gctx, func(ctx context.Context) (err error) {
			sum.DietChart, err = s.charts.LatestChart(ctx, patientID)
			return err
		})
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("summary for patient %s: %w", patientID, err)
	}
	return sum, nil
}

// latest runs fetch on a forked context and treats not-found as empty.
func (s *Service) latest(ctx context.Context, fetch func(context.Context) error) error {
	fctx, release, err := s.fork(ctx)
	if err != nil {
		return err
	}
	defer release()
	if err := fetch(fctx); err != nil && !errors.Is(err, db.ErrNotFound) {
		return err
	}
	return nil
}

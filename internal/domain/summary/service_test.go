package summary

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/ahara/ahara/internal/assessment"
	"github.com/ahara/ahara/internal/domain/analysis"
	"github.com/ahara/ahara/internal/domain/dietchart"
	"github.com/ahara/ahara/internal/domain/patient"
	"github.com/ahara/ahara/internal/platform/db"
)

type fakeStore struct {
	mu       sync.Mutex
	calls    int
	patients map[uuid.UUID]*patient.Patient
	prakriti map[uuid.UUID]*analysis.PrakritiAnalysis
	health   map[uuid.UUID]*analysis.HealthAnalysis
	charts   map[uuid.UUID]*dietchart.DietChart
	fail     error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		patients: map[uuid.UUID]*patient.Patient{},
		prakriti: map[uuid.UUID]*analysis.PrakritiAnalysis{},
		health:   map[uuid.UUID]*analysis.HealthAnalysis{},
		charts:   map[uuid.UUID]*dietchart.DietChart{},
	}
}

func (f *fakeStore) count() {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
}

func (f *fakeStore) GetPatient(_ context.Context, id uuid.UUID) (*patient.Patient, error) {
	f.count()
	if p, ok := f.patients[id]; ok {
		return p, nil
	}
	return nil, db.ErrNotFound
}

func (f *fakeStore) LatestPrakriti(_ context.Context, id uuid.UUID) (*analysis.PrakritiAnalysis, error) {
	f.count()
	if a, ok := f.prakriti[id]; ok {
		return a, nil
	}
	return nil, db.ErrNotFound
}

func (f *fakeStore) LatestHealth(_ context.Context, id uuid.UUID) (*analysis.HealthAnalysis, error) {
	f.count()
	if f.fail != nil {
		return nil, f.fail
	}
	if a, ok := f.health[id]; ok {
		return a, nil
	}
	return nil, db.ErrNotFound
}

func (f *fakeStore) LatestChart(_ context.Context, id uuid.UUID) (*dietchart.DietChart, error) {
	f.count()
	if d, ok := f.charts[id]; ok {
		return d, nil
	}
	return nil, db.ErrNotFound
}

type countingObserver struct {
	mu           sync.Mutex
	hits, misses int
}

func (o *countingObserver) RecordCacheLookup(hit bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if hit {
		o.hits++
	} else {
		o.misses++
	}
}

func newTestService(t *testing.T, store *fakeStore, opts ...Option) *Service {
	t.Helper()
	svc, err := NewService(store, store, store, 8, opts...)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestGet_AssemblesLatestRecords(t *testing.T) {
	store := newFakeStore()
	id := uuid.New()
	store.patients[id] = &patient.Patient{ID: id, Name: "Asha Rao"}
	store.prakriti[id] = &analysis.PrakritiAnalysis{PatientID: id, Score: assessment.ConstitutionScore{Dominant: assessment.Kapha}}
	store.charts[id] = &dietchart.DietChart{PatientID: id, Name: "Plan"}

	sum, err := newTestService(t, store).Get(context.Background(), id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.Patient.Name != "Asha Rao" || sum.Prakriti.Score.Dominant != assessment.Kapha || sum.DietChart.Name != "Plan" {
		t.Errorf("unexpected summary: %+v", sum)
	}
	if sum.Health != nil {
		t.Errorf("expected no health analysis, got %+v", sum.Health)
	}
}

func TestGet_UnknownPatient(t *testing.T) {
	_, err := newTestService(t, newFakeStore()).Get(context.Background(), uuid.New())
	if !errors.Is(err, db.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGet_PropagatesFailures(t *testing.T) {
	store := newFakeStore()
	id := uuid.New()
	store.patients[id] = &patient.Patient{ID: id}
	store.fail = errors.New("connection reset")

	svc := newTestService(t, store)
	if _, err := svc.Get(context.Background(), id); err == nil || errors.Is(err, db.ErrNotFound) {
		t.Fatalf("expected a hard failure, got %v", err)
	}
	store.fail = nil
	if _, err := svc.Get(context.Background(), id); err != nil {
		t.Errorf("expected failure not to be cached, got %v", err)
	}
}

func TestGet_CachesAndInvalidates(t *testing.T) {
	store := newFakeStore()
	id := uuid.New()
	store.patients[id] = &patient.Patient{ID: id}
	obs := &countingObserver{}
	svc := newTestService(t, store, WithObserver(obs))

	ctx := db.WithClinic(context.Background(), "ayur_pune")
	for i := 0; i < 3; i++ {
		if _, err := svc.Get(ctx, id); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if store.calls != 4 {
		t.Errorf("expected one build of 4 lookups, got %d", store.calls)
	}
	if obs.hits != 2 || obs.misses != 1 {
		t.Errorf("expected 2 hits and 1 miss, got %d/%d", obs.hits, obs.misses)
	}

	store.charts[id] = &dietchart.DietChart{Name: "New"}
	svc.Invalidate(id)
	sum, err := svc.Get(ctx, id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.DietChart == nil || sum.DietChart.Name != "New" {
		t.Error("expected rebuilt summary after invalidation")
	}
}

func TestGet_CacheIsPerClinic(t *testing.T) {
	store := newFakeStore()
	id := uuid.New()
	store.patients[id] = &patient.Patient{ID: id}
	svc := newTestService(t, store)

	svc.Get(db.WithClinic(context.Background(), "north"), id)
	svc.Get(db.WithClinic(context.Background(), "south"), id)
	if store.calls != 8 {
		t.Errorf("expected separate builds per clinic, got %d lookups", store.calls)
	}
}

func TestGet_ForksEachLookup(t *testing.T) {
	store := newFakeStore()
	id := uuid.New()
	store.patients[id] = &patient.Patient{ID: id}

	var mu sync.Mutex
	forks, releases := 0, 0
	fork := func(ctx context.Context) (context.Context, func(), error) {
		mu.Lock()
		forks++
		mu.Unlock()
		return ctx, func() {
			mu.Lock()
			releases++
			mu.Unlock()
		}, nil
	}
	if _, err := newTestService(t, store, WithFork(fork)).Get(context.Background(), id); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if forks != 3 || releases != 3 {
		t.Errorf("expected 3 forks and releases, got %d/%d", forks, releases)
	}
}

func TestGet_InvalidationDuringBuildIsNotCached(t *testing.T) {
	store := newFakeStore()
	id := uuid.New()
	store.patients[id] = &patient.Patient{ID: id}

	var svc *Service
	var once sync.Once
	fork := func(ctx context.Context) (context.Context, func(), error) {
		once.Do(func() { svc.Invalidate(id) })
		return ctx, func() {}, nil
	}
	obs := &countingObserver{}
	svc = newTestService(t, store, WithFork(fork), WithObserver(obs))

	for i := 0; i < 2; i++ {
		if _, err := svc.Get(context.Background(), id); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if obs.misses != 2 || obs.hits != 0 {
		t.Errorf("expected the raced build to stay uncached, got %d hits %d misses", obs.hits, obs.misses)
	}
	if _, err := svc.Get(context.Background(), id); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if obs.hits != 1 {
		t.Errorf("expected the clean rebuild to be cached, got %d hits", obs.hits)
	}
}

func TestGet_ConcurrentInvalidation(t *testing.T) {
	store := newFakeStore()
	id := uuid.New()
	store.patients[id] = &patient.Patient{ID: id}
	svc := newTestService(t, store)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if _, err := svc.Get(context.Background(), id); err != nil {
					t.Errorf("unexpected error: %v", err)
					return
				}
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				svc.Invalidate(id)
			}
		}()
	}
	wg.Wait()

	store.charts[id] = &dietchart.DietChart{Name: "After"}
	svc.Invalidate(id)
	sum, err := svc.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.DietChart == nil || sum.DietChart.Name != "After" {
		t.Error("expected the summary built after the last invalidation")
	}
}

func TestNewService_InvalidSize(t *testing.T) {
	store := newFakeStore()
	if _, err := NewService(store, store, store, 0); err == nil {
		t.Error("expected error for zero cache size")
	}
}

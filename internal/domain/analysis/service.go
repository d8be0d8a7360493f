package analysis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ahara/ahara/internal/assessment"
	"github.com/ahara/ahara/internal/domain/patient"
	"github.com/ahara/ahara/internal/platform/auth"
)

// PatientGetter resolves the patient an analysis belongs to.
type PatientGetter interface {
	GetPatient(ctx context.Context, id uuid.UUID) (*patient.Patient, error)
}

// Observer receives derivation outcomes. *telemetry.Provider satisfies it.
type Observer interface {
	RecordDerivation(operation, outcome string, took time.Duration)
	RecordDominant(category string)
}

type noopObserver struct{}

func (noopObserver) RecordDerivation(string, string, time.Duration) {}
func (noopObserver) RecordDominant(string)                          {}

type Service struct {
	repo     Repository
	patients PatientGetter
	obs      Observer
	logger   zerolog.Logger

	mu        sync.RWMutex
	listeners []func(patientID uuid.UUID)
}

func NewService(repo Repository, patients PatientGetter, obs Observer, logger zerolog.Logger) *Service {
	if obs == nil {
		obs = noopObserver{}
	}
	return &Service{
		repo:     repo,
		patients: patients,
		obs:      obs,
		logger:   logger.With().Str("component", "analysis").Logger(),
	}
}

// OnChange registers fn to run after a new analysis is stored for a patient.
func (s *Service) OnChange(fn func(patientID uuid.UUID)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func (s *Service) changed(id uuid.UUID) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, fn := range s.listeners {
		fn(id)
	}
}

// RecordPrakriti scores req against the constitution questionnaire and
// stores the result. Engine validation errors are returned unwrapped.
func (s *Service) RecordPrakriti(ctx context.Context, patientID uuid.UUID, req SubmitRequest) (*PrakritiAnalysis, error) {
	if _, err := s.patients.GetPatient(ctx, patientID); err != nil {
		return nil, err
	}

	start := time.Now()
	score, err := assessment.Score(req.Answers)
	s.obs.RecordDerivation("score", assessment.ErrorKind(err), time.Since(start))
	if err != nil {
		return nil, err
	}
	s.obs.RecordDominant(string(score.Dominant))

	a := &PrakritiAnalysis{
		PatientID:      patientID,
		CatalogVersion: assessment.CatalogVersion,
		Answers:        req.Answers,
		Score:          score,
		Notes:          req.Notes,
		AnalyzedBy:     auth.UserIDFromContext(ctx),
	}
	if err := s.repo.CreatePrakriti(ctx, a); err != nil {
		return nil, fmt.Errorf("store prakriti analysis: %w", err)
	}

	s.logger.Debug().
		Str("patient_id", patientID.String()).
		Str("dominant", string(score.Dominant)).
		Str("secondary", string(score.Secondary)).
		Msg("prakriti analysis recorded")
	s.changed(patientID)
	return a, nil
}

func (s *Service) LatestPrakriti(ctx context.Context, patientID uuid.UUID) (*PrakritiAnalysis, error) {
	a, err := s.repo.LatestPrakriti(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("prakriti analysis for patient %s: %w", patientID, err)
	}
	return a, nil
}

func (s *Service) ListPrakriti(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*PrakritiAnalysis, int, error) {
	if _, err := s.patients.GetPatient(ctx, patientID); err != nil {
		return nil, 0, err
	}
	return s.repo.ListPrakriti(ctx, patientID, limit, offset)
}

// RecordHealth classifies req against the health-history questionnaire and
// stores the concern profile.
func (s *Service) RecordHealth(ctx context.Context, patientID uuid.UUID, req SubmitRequest) (*HealthAnalysis, error) {
	if _, err := s.patients.GetPatient(ctx, patientID); err != nil {
		return nil, err
	}

	start := time.Now()
	profile, err := assessment.Classify(req.Answers)
	s.obs.RecordDerivation("classify", assessment.ErrorKind(err), time.Since(start))
	if err != nil {
		return nil, err
	}

	answers := req.Answers
	if answers == nil {
		answers = []assessment.Answer{}
	}
	a := &HealthAnalysis{
		PatientID:      patientID,
		CatalogVersion: assessment.CatalogVersion,
		Answers:        answers,
		Profile:        profile,
		TotalConcerns:  profile.Total(),
		Assessment:     profile.Assessment(),
		Notes:          req.Notes,
		AnalyzedBy:     auth.UserIDFromContext(ctx),
	}
	if err := s.repo.CreateHealth(ctx, a); err != nil {
		return nil, fmt.Errorf("store health analysis: %w", err)
	}

	s.logger.Debug().
		Str("patient_id", patientID.String()).
		Int("concerns", a.TotalConcerns).
		Msg("health analysis recorded")
	s.changed(patientID)
	return a, nil
}

func (s *Service) LatestHealth(ctx context.Context, patientID uuid.UUID) (*HealthAnalysis, error) {
	a, err := s.repo.LatestHealth(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("health analysis for patient %s: %w", patientID, err)
	}
	return a, nil
}

func (s *Service) ListHealth(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*HealthAnalysis, int, error) {
	if _, err := s.patients.GetPatient(ctx, patientID); err != nil {
		return nil, 0, err
	}
	return s.repo.ListHealth(ctx, patientID, limit, offset)
}

package dietchart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ahara/ahara/internal/assessment"
	"github.com/ahara/ahara/internal/domain/analysis"
	"github.com/ahara/ahara/internal/domain/patient"
	"github.com/ahara/ahara/internal/platform/apierr"
	"github.com/ahara/ahara/internal/platform/auth"
	"github.com/ahara/ahara/internal/platform/db"
)

type PatientGetter interface {
	GetPatient(ctx context.Context, id uuid.UUID) (*patient.Patient, error)
}

// PrakritiSource supplies the dominant category when a request names none.
type PrakritiSource interface {
	LatestPrakriti(ctx context.Context, patientID uuid.UUID) (*analysis.PrakritiAnalysis, error)
}

// Recommender lists food names that suit and that aggravate a category.
type Recommender interface {
	Recommend(c assessment.Category) (good, avoid []string)
}

type Observer interface {
	RecordDerivation(operation, outcome string, took time.Duration)
}

type noopObserver struct{}

func (noopObserver) RecordDerivation(string, string, time.Duration) {}

type Service struct {
	repo     Repository
	patients PatientGetter
	prakriti PrakritiSource
	foods    Recommender
	obs      Observer
	logger   zerolog.Logger
	now      func() time.Time

	mu        sync.RWMutex
	listeners []func(patientID uuid.UUID)
}

func NewService(repo Repository, patients PatientGetter, prakriti PrakritiSource, foods Recommender, obs Observer, logger zerolog.Logger) *Service {
	if obs == nil {
		obs = noopObserver{}
	}
	return &Service{
		repo:     repo,
		patients: patients,
		prakriti: prakriti,
		foods:    foods,
		obs:      obs,
		logger:   logger.With().Str("component", "dietchart").Logger(),
		now:      time.Now,
	}
}

// OnChange registers fn to run after a chart of a patient is written.
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

func parseDate(field, v string) (time.Time, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(v))
	if err != nil {
		return time.Time{}, apierr.Invalidf("%s must be a YYYY-MM-DD date", field)
	}
	return t, nil
}

// resolveCategory picks the category to plan for. An empty result lets the
// planner fall back to its default row.
func (s *Service) resolveCategory(ctx context.Context, patientID uuid.UUID, requested string) (assessment.Category, *uuid.UUID, error) {
	if requested != "" {
		c, ok := assessment.ParseCategory(requested)
		if !ok {
			return "", nil, apierr.Invalidf("unknown category: %s", requested)
		}
		return c, nil, nil
	}
	latest, err := s.prakriti.LatestPrakriti(ctx, patientID)
	switch {
	case errors.Is(err, db.ErrNotFound):
		return "", nil, nil
	case err != nil:
		return "", nil, err
	}
	return latest.Score.Dominant, &latest.ID, nil
}

// Generate plans a chart for the patient from their demographics and
// constitution and stores it as a draft.
func (s *Service) Generate(ctx context.Context, patientID uuid.UUID, req GenerateRequest) (*DietChart, error) {
	p, err := s.patients.GetPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apierr.Invalidf("name is required")
	}
	chartType := req.Type
	if chartType == "" {
		chartType = Maintenance
	}
	if !chartType.Valid() {
		return nil, apierr.Invalidf("unknown chart type: %s", chartType)
	}
	duration := req.DurationDays
	if duration == 0 {
		duration = DefaultDurationDays
	}
	if duration < 0 {
		return nil, apierr.Invalidf("duration_days must be positive")
	}
	start := dateOf(s.now())
	if req.StartDate != "" {
		if start, err = parseDate("start_date", req.StartDate); err != nil {
			return nil, err
		}
	}

	category, prakritiID, err := s.resolveCategory(ctx, patientID, req.Category)
	if err != nil {
		return nil, err
	}

	demo := p.Demographics()
	if req.ActivityFactor != nil {
		demo.ActivityFactor = req.ActivityFactor
	}
	began := time.Now()
	plan, err := assessment.Plan(demo, category)
	s.obs.RecordDerivation("plan", assessment.ErrorKind(err), time.Since(began))
	if err != nil {
		return nil, err
	}

	good, avoid := s.foods.Recommend(plan.Category)
	d := &DietChart{
		PatientID:        patientID,
		Name:             name,
		Type:             chartType,
		Status:           Draft,
		StartDate:        start,
		EndDate:          start.AddDate(0, 0, duration),
		DurationDays:     duration,
		Category:         plan.Category,
		BMR:              plan.BMR,
		ActivityFactor:   plan.ActivityFactor,
		TargetCalories:   plan.Total,
		Meals:            plan.Slots,
		Defaulted:        defaultedFields(plan),
		BasedOnPrakriti:  prakritiID,
		RecommendedFoods: good,
		AvoidFoods:       avoid,
		Instructions:     req.Instructions,
		Notes:            req.Notes,
		CreatedBy:        auth.UserIDFromContext(ctx),
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, fmt.Errorf("store diet chart: %w", err)
	}

	s.logger.Debug().
		Str("patient_id", patientID.String()).
		Str("category", string(d.Category)).
		Int("target_calories", d.TargetCalories).
		Strs("defaulted", d.Defaulted).
		Msg("diet chart generated")
	s.changed(patientID)
	return d, nil
}

func defaultedFields(plan assessment.CalorieDistribution) []string {
	out := []string{}
	if plan.WeightDefaulted {
		out = append(out, "weight_kg")
	}
	if plan.HeightDefaulted {
		out = append(out, "height_cm")
	}
	if plan.ActivityDefaulted {
		out = append(out, "activity_factor")
	}
	if plan.CategoryDefaulted {
		out = append(out, "category")
	}
	return out
}

func (s *Service) GetChart(ctx context.Context, id uuid.UUID) (*DietChart, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("diet chart %s: %w", id, err)
	}
	return d, nil
}

func (s *Service) ListCharts(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*DietChart, int, error) {
	if _, err := s.patients.GetPatient(ctx, patientID); err != nil {
		return nil, 0, err
	}
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) LatestChart(ctx context.Context, patientID uuid.UUID) (*DietChart, error) {
	d, err := s.repo.LatestByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("diet chart for patient %s: %w", patientID, err)
	}
	return d, nil
}

// UpdateChart applies req to the stored chart. A new start date or duration
// moves the end date; an explicit end date recomputes the duration.
func (s *Service) UpdateChart(ctx context.Context, id uuid.UUID, req UpdateRequest) (*DietChart, error) {
	d, err := s.GetChart(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyUpdate(d, req); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, fmt.Errorf("diet chart %s: %w", id, err)
	}
	s.changed(d.PatientID)
	return d, nil
}

func applyUpdate(d *DietChart, req UpdateRequest) error {
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return apierr.Invalidf("name must not be empty")
		}
		d.Name = name
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return apierr.Invalidf("unknown status: %s", *req.Status)
		}
		d.Status = *req.Status
	}
	if req.StartDate != nil {
		start, err := parseDate("start_date", *req.StartDate)
		if err != nil {
			return err
		}
		d.StartDate = start
	}
	if req.DurationDays != nil {
		if *req.DurationDays <= 0 {
			return apierr.Invalidf("duration_days must be positive")
		}
		d.DurationDays = *req.DurationDays
	}
	if req.EndDate != nil {
		end, err := parseDate("end_date", *req.EndDate)
		if err != nil {
			return err
		}
		if !end.After(d.StartDate) {
			return apierr.Invalidf("end_date must be after start_date")
		}
		d.EndDate = end
		d.DurationDays = daysBetween(d.StartDate, end)
	} else {
		d.EndDate = d.StartDate.AddDate(0, 0, d.DurationDays)
	}
	if req.Meals != nil {
		if err := validateMeals(req.Meals); err != nil {
			return err
		}
		d.Meals = req.Meals
	}
	if req.Instructions != nil {
		d.Instructions = req.Instructions
	}
	if req.Notes != nil {
		d.Notes = req.Notes
	}
	return nil
}

func validateMeals(meals []assessment.SlotAllocation) error {
	seen := make(map[assessment.MealSlot]bool, len(meals))
	for _, m := range meals {
		known := false
		for _, slot := range assessment.MealSlots {
			if m.Slot == slot {
				known = true
				break
			}
		}
		if !known {
			return apierr.Invalidf("unknown meal slot: %s", m.Slot)
		}
		if seen[m.Slot] {
			return apierr.Invalidf("meal slot %s listed twice", m.Slot)
		}
		seen[m.Slot] = true
		if m.Percent < 0 || m.Calories < 0 {
			return apierr.Invalidf("meal slot %s must not be negative", m.Slot)
		}
	}
	return nil
}

func (s *Service) DeleteChart(ctx context.Context, id uuid.UUID) error {
	d, err := s.GetChart(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("diet chart %s: %w", id, err)
	}
	s.changed(d.PatientID)
	return nil
}

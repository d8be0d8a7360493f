package dietchart

import (
	"time"

	"github.com/google/uuid"

	"github.com/ahara/ahara/internal/assessment"
)

// Type is the therapeutic goal of a chart.
type Type string

const (
	WeightLoss  Type = "weight_loss"
	WeightGain  Type = "weight_gain"
	Maintenance Type = "maintenance"
	Therapeutic Type = "therapeutic"
	Detox       Type = "detox"
)

func (t Type) Valid() bool {
	switch t {
	case WeightLoss, WeightGain, Maintenance, Therapeutic, Detox:
		return true
	}
	return false
}

type Status string

const (
	Draft     Status = "draft"
	Active    Status = "active"
	Completed Status = "completed"
	Paused    Status = "paused"
	Cancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case Draft, Active, Completed, Paused, Cancelled:
		return true
	}
	return false
}

// DefaultDurationDays applies when a chart is generated without a duration.
const DefaultDurationDays = 30

const dateLayout = "2006-01-02"

// DietChart maps to the diet_chart table. Dates are calendar days in UTC.
type DietChart struct {
	ID               uuid.UUID                   `db:"id" json:"id"`
	PatientID        uuid.UUID                   `db:"patient_id" json:"patient_id"`
	Name             string                      `db:"name" json:"name"`
	Type             Type                        `db:"chart_type" json:"type"`
	Status           Status                      `db:"status" json:"status"`
	StartDate        time.Time                   `db:"start_date" json:"start_date"`
	EndDate          time.Time                   `db:"end_date" json:"end_date"`
	DurationDays     int                         `db:"duration_days" json:"duration_days"`
	Category         assessment.Category         `db:"category" json:"category"`
	BMR              float64                     `db:"bmr" json:"bmr"`
	ActivityFactor   float64                     `db:"activity_factor" json:"activity_factor"`
	TargetCalories   int                         `db:"target_calories" json:"target_calories"`
	Meals            []assessment.SlotAllocation `db:"meals" json:"meals"`
	Defaulted        []string                    `db:"defaulted" json:"defaulted"`
	BasedOnPrakriti  *uuid.UUID                  `db:"based_on_prakriti_id" json:"based_on_prakriti_id,omitempty"`
	RecommendedFoods []string                    `db:"recommended_foods" json:"recommended_foods"`
	AvoidFoods       []string                    `db:"avoid_foods" json:"avoid_foods"`
	Instructions     *string                     `db:"instructions" json:"instructions,omitempty"`
	Notes            *string                     `db:"notes" json:"notes,omitempty"`
	CreatedBy        string                      `db:"created_by" json:"created_by,omitempty"`
	CreatedAt        time.Time                   `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time                   `db:"updated_at" json:"updated_at"`
}

// dateOf truncates t to its calendar day in UTC.
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(dateOf(to).Sub(dateOf(from)).Hours() / 24)
}

// DaysRemaining counts the days from now until EndDate, never below zero.
func (d *DietChart) DaysRemaining(now time.Time) int {
	if d.EndDate.IsZero() {
		return 0
	}
	if n := daysBetween(now, d.EndDate); n > 0 {
		return n
	}
	return 0
}

// ProgressPercentage is 0 before the chart starts, 100 after it ends and
// the elapsed share of DurationDays in between, capped at 100.
func (d *DietChart) ProgressPercentage(now time.Time) float64 {
	if d.DurationDays <= 0 {
		return 0
	}
	today := dateOf(now)
	switch {
	case today.After(dateOf(d.EndDate)):
		return 100
	case today.Before(dateOf(d.StartDate)):
		return 0
	}
	p := float64(daysBetween(d.StartDate, today)) / float64(d.DurationDays) * 100
	if p > 100 {
		return 100
	}
	return p
}

// View is the API form of a chart with its date-derived fields.
type View struct {
	*DietChart
	DaysRemaining      int     `json:"days_remaining"`
	ProgressPercentage float64 `json:"progress_percentage"`
}

func (d *DietChart) View(now time.Time) View {
	return View{
		DietChart:          d,
		DaysRemaining:      d.DaysRemaining(now),
		ProgressPercentage: d.ProgressPercentage(now),
	}
}

// GenerateRequest is the body of POST /patients/:id/diet-charts. Category
// overrides the dominant category of the latest prakriti analysis.
type GenerateRequest struct {
	Name           string   `json:"name"`
	Type           Type     `json:"type"`
	Category       string   `json:"category,omitempty"`
	StartDate      string   `json:"start_date,omitempty"`
	DurationDays   int      `json:"duration_days,omitempty"`
	ActivityFactor *float64 `json:"activity_factor,omitempty"`
	Instructions   *string  `json:"instructions,omitempty"`
	Notes          *string  `json:"notes,omitempty"`
}

// UpdateRequest edits a chart. Nil fields are left unchanged.
type UpdateRequest struct {
	Name         *string                     `json:"name,omitempty"`
	Status       *Status                     `json:"status,omitempty"`
	StartDate    *string                     `json:"start_date,omitempty"`
	EndDate      *string                     `json:"end_date,omitempty"`
	DurationDays *int                        `json:"duration_days,omitempty"`
	Meals        []assessment.SlotAllocation `json:"meals,omitempty"`
	Instructions *string                     `json:"instructions,omitempty"`
	Notes        *string                     `json:"notes,omitempty"`
}

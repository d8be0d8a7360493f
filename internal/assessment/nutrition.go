package assessment

import (
	"fmt"
	"math"
	"strings"
)

// Sex selects the BMR formula branch.
type Sex string

const (
	Male   Sex = "male"
	Female Sex = "female"
)

// ParseSex resolves a case-insensitive sex value.
func ParseSex(s string) (Sex, bool) {
	switch Sex(strings.ToLower(strings.TrimSpace(s))) {
	case Male:
		return Male, true
	case Female:
		return Female, true
	}
	return "", false
}

// DefaultActivityFactor is the "moderate activity" multiplier used when the
// caller does not supply one.
const DefaultActivityFactor = 1.4

// Fallback body measurements used when weight or height is not supplied.
const (
	MaleFallbackWeightKG   = 70.0
	MaleFallbackHeightCM   = 175.0
	FemaleFallbackWeightKG = 60.0
	FemaleFallbackHeightCM = 165.0
)

// Upper bounds on supplied measurements. They sit well above any human
// value and keep the calorie target far inside the int range.
const (
	MaxWeightKG       = 1000.0
	MaxHeightCM       = 300.0
	MaxActivityFactor = 5.0
)

// Demographics is the planner input. Nil pointers mean "not supplied".
type Demographics struct {
	Sex            Sex      `json:"sex"`
	Age            int      `json:"age"`
	WeightKG       *float64 `json:"weight_kg,omitempty"`
	HeightCM       *float64 `json:"height_cm,omitempty"`
	ActivityFactor *float64 `json:"activity_factor,omitempty"`
}

// MealSlot names a portion of the daily calorie budget.
type MealSlot string

const (
	Breakfast MealSlot = "breakfast"
	Brunch    MealSlot = "brunch"
	Lunch     MealSlot = "lunch"
	Snack     MealSlot = "snack"
	Dinner    MealSlot = "dinner"
)

// MealSlots lists the meal slots in serving order.
var MealSlots = []MealSlot{Breakfast, Brunch, Lunch, Snack, Dinner}

// mealSplits holds whole-number percentages per slot, in MealSlots order.
// Each row sums to 100.
var mealSplits = map[Category][5]int{
	Vata:  {25, 15, 30, 10, 20},
	Pitta: {20, 15, 30, 10, 25},
	Kapha: {30, 10, 35, 5, 20},
}

// MealSplit returns the slot percentages for c, falling back to the vata row
// for an unknown category.
func MealSplit(c Category) []SlotAllocation {
	row, ok := mealSplits[c]
	if !ok {
		row = mealSplits[Vata]
	}
	out := make([]SlotAllocation, len(MealSlots))
	for i, s := range MealSlots {
		out[i] = SlotAllocation{Slot: s, Percent: row[i]}
	}
	return out
}

// SlotAllocation is the share of the daily target assigned to one slot.
type SlotAllocation struct {
	Slot     MealSlot `json:"slot"`
	Percent  int      `json:"percent"`
	Calories int      `json:"calories"`
}

// CalorieDistribution is the planner output. Slot calories are rounded
// independently, so their sum may differ from Total by up to 2 kcal.
type CalorieDistribution struct {
	BMR               float64          `json:"bmr"`
	ActivityFactor    float64          `json:"activity_factor"`
	Total             int              `json:"total"`
	Category          Category         `json:"category"`
	Slots             []SlotAllocation `json:"slots"`
	WeightDefaulted   bool             `json:"weight_defaulted"`
	HeightDefaulted   bool             `json:"height_defaulted"`
	ActivityDefaulted bool             `json:"activity_defaulted"`
	CategoryDefaulted bool             `json:"category_defaulted"`
}

// Calories returns the allocation for slot, or 0 if it is absent.
func (d CalorieDistribution) Calories(slot MealSlot) int {
	for _, s := range d.Slots {
		if s.Slot == slot {
			return s.Calories
		}
	}
	return 0
}

// Sum adds up the slot allocations.
func (d CalorieDistribution) Sum() int {
	n := 0
	for _, s := range d.Slots {
		n += s.Calories
	}
	return n
}

// Validate checks the demographic record without computing a plan.
func (d Demographics) Validate() error {
	if _, ok := ParseSex(string(d.Sex)); !ok {
		return &InvalidDemographicError{Field: "sex", Reason: "must be male or female"}
	}
	if d.Age <= 0 {
		return &InvalidDemographicError{Field: "age", Reason: "must be positive"}
	}
	if err := checkMeasurement("weight_kg", d.WeightKG, MaxWeightKG, true); err != nil {
		return err
	}
	if err := checkMeasurement("height_cm", d.HeightCM, MaxHeightCM, true); err != nil {
		return err
	}
	if err := checkMeasurement("activity_factor", d.ActivityFactor, MaxActivityFactor, false); err != nil {
		return err
	}
	return nil
}

// checkMeasurement rejects non-finite, negative and out-of-range values. NaN
// fails every comparison, so finiteness is checked first.
func checkMeasurement(field string, v *float64, limit float64, allowZero bool) error {
	if v == nil {
		return nil
	}
	switch x := *v; {
	case math.IsNaN(x) || math.IsInf(x, 0):
		return &InvalidDemographicError{Field: field, Reason: "must be a finite number"}
	case allowZero && x < 0:
		return &InvalidDemographicError{Field: field, Reason: "must not be negative"}
	case !allowZero && x <= 0:
		return &InvalidDemographicError{Field: field, Reason: "must be positive"}
	case x > limit:
		return &InvalidDemographicError{Field: field, Reason: fmt.Sprintf("must not exceed %g", limit)}
	}
	return nil
}

// BMR computes the revised Harris-Benedict basal metabolic rate.
func BMR(sex Sex, weightKG, heightCM float64, age int) float64 {
	if sex == Male {
		return 88.362 + 13.397*weightKG + 4.799*heightCM - 5.677*float64(age)
	}
	return 447.593 + 9.247*weightKG + 3.098*heightCM - 4.330*float64(age)
}

// Plan computes the daily calorie target for d and splits it across meal
// slots using the row for dominant. Missing weight, height or activity
// factor fall back to documented defaults and are flagged in the result;
// an unknown category falls back to the vata row.
func Plan(d Demographics, dominant Category) (CalorieDistribution, error) {
	if err := d.Validate(); err != nil {
		return CalorieDistribution{}, err
	}
	sex, _ := ParseSex(string(d.Sex))

	out := CalorieDistribution{}

	weight, height := FemaleFallbackWeightKG, FemaleFallbackHeightCM
	if sex == Male {
		weight, height = MaleFallbackWeightKG, MaleFallbackHeightCM
	}
	if d.WeightKG != nil {
		weight = *d.WeightKG
	} else {
		out.WeightDefaulted = true
	}
	if d.HeightCM != nil {
		height = *d.HeightCM
	} else {
		out.HeightDefaulted = true
	}

	factor := DefaultActivityFactor
	if d.ActivityFactor != nil {
		factor = *d.ActivityFactor
	} else {
		out.ActivityDefaulted = true
	}

	category, ok := ParseCategory(string(dominant))
	if !ok {
		category = Vata
		out.CategoryDefaulted = true
	}

	out.BMR = BMR(sex, weight, height, d.Age)
	out.ActivityFactor = factor
	// The linear formula goes negative for extreme inputs; floor at zero.
	out.Total = int(math.Max(0, math.Floor(out.BMR*factor+0.5)))
	out.Category = category

	out.Slots = MealSplit(category)
	for i := range out.Slots {
		out.Slots[i].Calories = roundHalfUpRatio(out.Total*out.Slots[i].Percent, 100)
	}
	return out, nil
}

package dietchart

import (
	"testing"
	"time"
)

func day(s string) time.Time {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestDietChart_DateDerivedFields(t *testing.T) {
	d := &DietChart{StartDate: day("2024-03-01"), EndDate: day("2024-03-31"), DurationDays: 30}
	tests := []struct {
		now       time.Time
		remaining int
		progress  float64
	}{
		{day("2024-02-20"), 40, 0},
		{day("2024-03-01"), 30, 0},
		{day("2024-03-16").Add(15 * time.Hour), 15, 50},
		{day("2024-03-31"), 0, 100},
		{day("2024-04-10"), 0, 100},
	}
	for _, tt := range tests {
		if got := d.DaysRemaining(tt.now); got != tt.remaining {
			t.Errorf("%s: expected %d days remaining, got %d", tt.now.Format(dateLayout), tt.remaining, got)
		}
		if got := d.ProgressPercentage(tt.now); got != tt.progress {
			t.Errorf("%s: expected progress %v, got %v", tt.now.Format(dateLayout), tt.progress, got)
		}
	}
}

func TestDietChart_ProgressWithoutDuration(t *testing.T) {
	d := &DietChart{StartDate: day("2024-03-01"), EndDate: day("2024-03-31")}
	if got := d.ProgressPercentage(day("2024-04-10")); got != 0 {
		t.Errorf("expected 0 without a duration, got %v", got)
	}
	if got := (&DietChart{}).DaysRemaining(day("2024-04-10")); got != 0 {
		t.Errorf("expected 0 without an end date, got %d", got)
	}
}

func TestTypeAndStatusValid(t *testing.T) {
	for _, ty := range []Type{WeightLoss, WeightGain, Maintenance, Therapeutic, Detox} {
		if !ty.Valid() {
			t.Errorf("expected %q to be valid", ty)
		}
	}
	if Type("cleanse").Valid() {
		t.Error("expected unknown type to be invalid")
	}
	for _, st := range []Status{Draft, Active, Completed, Paused, Cancelled} {
		if !st.Valid() {
			t.Errorf("expected %q to be valid", st)
		}
	}
	if Status("archived").Valid() {
		t.Error("expected unknown status to be invalid")
	}
}

package patient

import (
	"testing"

	"github.com/ahara/ahara/internal/assessment"
)

func TestPatient_Demographics(t *testing.T) {
	p := &Patient{Sex: " Male ", Age: 41, WeightKG: f64(80)}
	d := p.Demographics()
	if d.Sex != assessment.Male {
		t.Errorf("expected male, got %q", d.Sex)
	}
	if d.Age != 41 || d.WeightKG == nil || *d.WeightKG != 80 {
		t.Errorf("unexpected demographics: %+v", d)
	}
	if d.HeightCM != nil || d.ActivityFactor != nil {
		t.Error("expected missing measurements to stay nil")
	}

	plan, err := assessment.Plan(d, assessment.Kapha)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.WeightDefaulted || !plan.HeightDefaulted || !plan.ActivityDefaulted {
		t.Errorf("unexpected defaulted flags: %+v", plan)
	}
}

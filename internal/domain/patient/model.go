package patient

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ahara/ahara/internal/assessment"
)

// Patient maps to the patient table.
type Patient struct {
	ID             uuid.UUID `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	Email          *string   `db:"email" json:"email,omitempty"`
	Phone          *string   `db:"phone" json:"phone,omitempty"`
	Sex            string    `db:"sex" json:"sex"`
	Age            int       `db:"age" json:"age"`
	WeightKG       *float64  `db:"weight_kg" json:"weight_kg,omitempty"`
	HeightCM       *float64  `db:"height_cm" json:"height_cm,omitempty"`
	ActivityFactor *float64  `db:"activity_factor" json:"activity_factor,omitempty"`
	Occupation     *string   `db:"occupation" json:"occupation,omitempty"`
	Address        *string   `db:"address" json:"address,omitempty"`
	Notes          *string   `db:"notes" json:"notes,omitempty"`
	Active         bool      `db:"active" json:"active"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Demographics converts the record into nutrition planner input. Missing
// measurements stay nil so the planner applies its fallbacks.
func (p *Patient) Demographics() assessment.Demographics {
	return assessment.Demographics{
		Sex:            assessment.Sex(strings.ToLower(strings.TrimSpace(p.Sex))),
		Age:            p.Age,
		WeightKG:       p.WeightKG,
		HeightCM:       p.HeightCM,
		ActivityFactor: p.ActivityFactor,
	}
}

// ListFilter narrows List. Query matches name, email or phone.
type ListFilter struct {
	Query      string
	ActiveOnly bool
}

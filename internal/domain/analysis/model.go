package analysis

import (
	"time"

	"github.com/google/uuid"

	"github.com/ahara/ahara/internal/assessment"
)

// PrakritiAnalysis is one scored constitution questionnaire.
type PrakritiAnalysis struct {
	ID             uuid.UUID                    `db:"id" json:"id"`
	PatientID      uuid.UUID                    `db:"patient_id" json:"patient_id"`
	CatalogVersion string                       `db:"catalog_version" json:"catalog_version"`
	Answers        []assessment.Answer          `db:"answers" json:"answers"`
	Score          assessment.ConstitutionScore `db:"-" json:"score"`
	Notes          *string                      `db:"notes" json:"notes,omitempty"`
	AnalyzedBy     string                       `db:"analyzed_by" json:"analyzed_by,omitempty"`
	CreatedAt      time.Time                    `db:"created_at" json:"created_at"`
}

// HealthAnalysis is one classified health-history questionnaire.
type HealthAnalysis struct {
	ID             uuid.UUID                 `db:"id" json:"id"`
	PatientID      uuid.UUID                 `db:"patient_id" json:"patient_id"`
	CatalogVersion string                    `db:"catalog_version" json:"catalog_version"`
	Answers        []assessment.Answer       `db:"answers" json:"answers"`
	Profile        assessment.ConcernProfile `db:"profile" json:"profile"`
	TotalConcerns  int                       `db:"total_concerns" json:"total_concerns"`
	Assessment     string                    `db:"assessment" json:"assessment"`
	Notes          *string                   `db:"notes" json:"notes,omitempty"`
	AnalyzedBy     string                    `db:"analyzed_by" json:"analyzed_by,omitempty"`
	CreatedAt      time.Time                 `db:"created_at" json:"created_at"`
}

// SubmitRequest is the body of both questionnaire submissions.
type SubmitRequest struct {
	Answers []assessment.Answer `json:"answers"`
	Notes   *string             `json:"notes,omitempty"`
}

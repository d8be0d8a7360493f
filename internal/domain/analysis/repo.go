package analysis

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	CreatePrakriti(ctx context.Context, a *PrakritiAnalysis) error
	LatestPrakriti(ctx context.Context, patientID uuid.UUID) (*PrakritiAnalysis, error)
	ListPrakriti(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*PrakritiAnalysis, int, error)

	CreateHealth(ctx context.Context, a *HealthAnalysis) error
	LatestHealth(ctx context.Context, patientID uuid.UUID) (*HealthAnalysis, error)
	ListHealth(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*HealthAnalysis, int, error)
}

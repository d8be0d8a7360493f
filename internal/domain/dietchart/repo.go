package dietchart

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, d *DietChart) error
	GetByID(ctx context.Context, id uuid.UUID) (*DietChart, error)
	Update(ctx context.Context, d *DietChart) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*DietChart, int, error)
	LatestByPatient(ctx context.Context, patientID uuid.UUID) (*DietChart, error)
}

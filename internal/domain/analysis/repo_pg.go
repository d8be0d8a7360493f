package analysis

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ahara/ahara/internal/assessment"
	"github.com/ahara/ahara/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const prakritiCols = `id, patient_id, catalog_version, answers,
	vata_count, pitta_count, kapha_count,
	vata_percentage, pitta_percentage, kapha_percentage,
	dominant, secondary, notes, analyzed_by, created_at`

func scanPrakriti(row pgx.Row) (*PrakritiAnalysis, error) {
	var a PrakritiAnalysis
	var dominant, secondary string
	s := &a.Score
	err := row.Scan(&a.ID, &a.PatientID, &a.CatalogVersion, &a.Answers,
		&s.Counts.Vata, &s.Counts.Pitta, &s.Counts.Kapha,
		&s.Percentages.Vata, &s.Percentages.Pitta, &s.Percentages.Kapha,
		&dominant, &secondary, &a.Notes, &a.AnalyzedBy, &a.CreatedAt)
	if err != nil {
		return nil, db.NoRows(err)
	}
	s.Dominant = assessment.Category(dominant)
	s.Secondary = assessment.Category(secondary)
	return &a, nil
}

func (r *repoPG) CreatePrakriti(ctx context.Context, a *PrakritiAnalysis) error {
	a.ID = uuid.New()
	s := a.Score
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO prakriti_analysis (id, patient_id, catalog_version, answers,
			vata_count, pitta_count, kapha_count,
			vata_percentage, pitta_percentage, kapha_percentage,
			dominant, secondary, notes, analyzed_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		RETURNING created_at`,
		a.ID, a.PatientID, a.CatalogVersion, a.Answers,
		s.Counts.Vata, s.Counts.Pitta, s.Counts.Kapha,
		s.Percentages.Vata, s.Percentages.Pitta, s.Percentages.Kapha,
		string(s.Dominant), string(s.Secondary), a.Notes, a.AnalyzedBy,
	).Scan(&a.CreatedAt)
}

func (r *repoPG) LatestPrakriti(ctx context.Context, patientID uuid.UUID) (*PrakritiAnalysis, error) {
	return scanPrakriti(r.conn(ctx).QueryRow(ctx, `
		SELECT `+prakritiCols+` FROM prakriti_analysis
		WHERE patient_id = $1 ORDER BY created_at DESC, id DESC LIMIT 1`, patientID))
}

func (r *repoPG) ListPrakriti(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*PrakritiAnalysis, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM prakriti_analysis WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+prakritiCols+` FROM prakriti_analysis
		WHERE patient_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`,
		patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	items, err := db.CollectRows(rows, scanPrakriti)
	return items, total, err
}

const healthCols = `id, patient_id, catalog_version, answers, profile,
	total_concerns, assessment, notes, analyzed_by, created_at`

func scanHealth(row pgx.Row) (*HealthAnalysis, error) {
	var a HealthAnalysis
	err := row.Scan(&a.ID, &a.PatientID, &a.CatalogVersion, &a.Answers, &a.Profile,
		&a.TotalConcerns, &a.Assessment, &a.Notes, &a.AnalyzedBy, &a.CreatedAt)
	if err != nil {
		return nil, db.NoRows(err)
	}
	return &a, nil
}

func (r *repoPG) CreateHealth(ctx context.Context, a *HealthAnalysis) error {
	a.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO health_analysis (id, patient_id, catalog_version, answers, profile,
			total_concerns, assessment, notes, analyzed_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING created_at`,
		a.ID, a.PatientID, a.CatalogVersion, a.Answers, a.Profile,
		a.TotalConcerns, a.Assessment, a.Notes, a.AnalyzedBy,
	).Scan(&a.CreatedAt)
}

func (r *repoPG) LatestHealth(ctx context.Context, patientID uuid.UUID) (*HealthAnalysis, error) {
	return scanHealth(r.conn(ctx).QueryRow(ctx, `
		SELECT `+healthCols+` FROM health_analysis
		WHERE patient_id = $1 ORDER BY created_at DESC, id DESC LIMIT 1`, patientID))
}

func (r *repoPG) ListHealth(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*HealthAnalysis, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM health_analysis WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+healthCols+` FROM health_analysis
		WHERE patient_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`,
		patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	items, err := db.CollectRows(rows, scanHealth)
	return items, total, err
}

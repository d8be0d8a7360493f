package dietchart

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ahara/ahara/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const chartCols = `id, patient_id, name, chart_type, status, start_date, end_date,
	duration_days, category, bmr, activity_factor, target_calories, meals, defaulted,
	based_on_prakriti_id, recommended_foods, avoid_foods, instructions, notes,
	created_by, created_at, updated_at`

func scanChart(row pgx.Row) (*DietChart, error) {
	var d DietChart
	err := row.Scan(&d.ID, &d.PatientID, &d.Name, &d.Type, &d.Status, &d.StartDate, &d.EndDate,
		&d.DurationDays, &d.Category, &d.BMR, &d.ActivityFactor, &d.TargetCalories, &d.Meals, &d.Defaulted,
		&d.BasedOnPrakriti, &d.RecommendedFoods, &d.AvoidFoods, &d.Instructions, &d.Notes,
		&d.CreatedBy, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, db.NoRows(err)
	}
	return &d, nil
}

func (r *repoPG) Create(ctx context.Context, d *DietChart) error {
	d.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO diet_chart (id, patient_id, name, chart_type, status, start_date, end_date,
			duration_days, category, bmr, activity_factor, target_calories, meals, defaulted,
			based_on_prakriti_id, recommended_foods, avoid_foods, instructions, notes, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
		RETURNING created_at, updated_at`,
		d.ID, d.PatientID, d.Name, d.Type, d.Status, d.StartDate, d.EndDate,
		d.DurationDays, d.Category, d.BMR, d.ActivityFactor, d.TargetCalories, d.Meals, d.Defaulted,
		d.BasedOnPrakriti, d.RecommendedFoods, d.AvoidFoods, d.Instructions, d.Notes, d.CreatedBy,
	).Scan(&d.CreatedAt, &d.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*DietChart, error) {
	return scanChart(r.conn(ctx).QueryRow(ctx, `SELECT `+chartCols+` FROM diet_chart WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, d *DietChart) error {
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE diet_chart SET name=$2, status=$3, start_date=$4, end_date=$5, duration_days=$6,
			meals=$7, instructions=$8, notes=$9, updated_at=NOW()
		WHERE id = $1
		RETURNING updated_at`,
		d.ID, d.Name, d.Status, d.StartDate, d.EndDate, d.DurationDays,
		d.Meals, d.Instructions, d.Notes,
	).Scan(&d.UpdatedAt)
	return db.NoRows(err)
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	return db.Affected(r.conn(ctx).Exec(ctx, `DELETE FROM diet_chart WHERE id = $1`, id))
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*DietChart, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM diet_chart WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+chartCols+` FROM diet_chart
		WHERE patient_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`,
		patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	items, err := db.CollectRows(rows, scanChart)
	return items, total, err
}

func (r *repoPG) LatestByPatient(ctx context.Context, patientID uuid.UUID) (*DietChart, error) {
	return scanChart(r.conn(ctx).QueryRow(ctx, `
		SELECT `+chartCols+` FROM diet_chart
		WHERE patient_id = $1 ORDER BY created_at DESC, id DESC LIMIT 1`, patientID))
}

package patient

import (
	"context"
	"fmt"
	"strings"

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

const patientCols = `id, name, email, phone, sex, age, weight_kg, height_cm,
	activity_factor, occupation, address, notes, active, created_at, updated_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.Name, &p.Email, &p.Phone, &p.Sex, &p.Age, &p.WeightKG, &p.HeightCM,
		&p.ActivityFactor, &p.Occupation, &p.Address, &p.Notes, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, db.NoRows(err)
	}
	return &p, nil
}

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO patient (id, name, email, phone, sex, age, weight_kg, height_cm,
			activity_factor, occupation, address, notes, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		RETURNING created_at, updated_at`,
		p.ID, p.Name, p.Email, p.Phone, p.Sex, p.Age, p.WeightKG, p.HeightCM,
		p.ActivityFactor, p.Occupation, p.Address, p.Notes, p.Active,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return scanPatient(r.conn(ctx).QueryRow(ctx, `SELECT `+patientCols+` FROM patient WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE patient SET name=$2, email=$3, phone=$4, sex=$5, age=$6, weight_kg=$7,
			height_cm=$8, activity_factor=$9, occupation=$10, address=$11, notes=$12,
			active=$13, updated_at=NOW()
		WHERE id = $1
		RETURNING created_at, updated_at`,
		p.ID, p.Name, p.Email, p.Phone, p.Sex, p.Age, p.WeightKG,
		p.HeightCM, p.ActivityFactor, p.Occupation, p.Address, p.Notes, p.Active,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	return db.NoRows(err)
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	return db.Affected(r.conn(ctx).Exec(ctx, `DELETE FROM patient WHERE id = $1`, id))
}

func (r *repoPG) List(ctx context.Context, f ListFilter, limit, offset int) ([]*Patient, int, error) {
	var where []string
	var args []interface{}
	if q := strings.TrimSpace(f.Query); q != "" {
		args = append(args, "%"+q+"%")
		where = append(where, fmt.Sprintf("(name ILIKE $%[1]d OR email ILIKE $%[1]d OR phone ILIKE $%[1]d)", len(args)))
	}
	if f.ActiveOnly {
		where = append(where, "active")
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patient`+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := r.conn(ctx).Query(ctx, fmt.Sprintf(`SELECT %s FROM patient%s ORDER BY name, created_at LIMIT $%d OFFSET $%d`,
		patientCols, clause, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	items, err := db.CollectRows(rows, scanPatient)
	return items, total, err
}

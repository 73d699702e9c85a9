package patient

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vitaltriage/api/internal/platform/db"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func (r *repoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const patCols = `id, identifier, name, age, gender, blood_type, medical_notes,
	total_scans, first_scan_at, last_scan_at, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO patient (id, identifier, name, age, gender, blood_type, medical_notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		p.ID, p.Identifier, p.Name, p.Age, p.Gender, p.BloodType, p.MedicalNotes,
	)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return scanPatient(r.conn(ctx).QueryRow(ctx, `SELECT `+patCols+` FROM patient WHERE id = $1`, id))
}

func (r *repoPG) GetByIdentifier(ctx context.Context, identifier string) (*Patient, error) {
	return scanPatient(r.conn(ctx).QueryRow(ctx, `SELECT `+patCols+` FROM patient WHERE identifier = $1`, identifier))
}

func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE patient SET
			name=$2, age=$3, gender=$4, blood_type=$5, medical_notes=$6, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.Name, p.Age, p.Gender, p.BloodType, p.MedicalNotes,
	)
	return err
}

func (r *repoPG) IncrementScanCount(ctx context.Context, id uuid.UUID, scannedAt time.Time) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE patient SET
			total_scans = total_scans + 1,
			first_scan_at = COALESCE(first_scan_at, $2),
			last_scan_at = $2,
			updated_at = NOW()
		WHERE id = $1`,
		id, scannedAt,
	)
	return err
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(
		&p.ID, &p.Identifier, &p.Name, &p.Age, &p.Gender, &p.BloodType, &p.MedicalNotes,
		&p.TotalScans, &p.FirstScanAt, &p.LastScanAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

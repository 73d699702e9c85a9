package scan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

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

const scanCols = `id, facility_id, patient_id, findings, urgency_score, reasoning,
	recommended_action, risk_factors, ai_confidence, rag_enabled, hospital_cases_used,
	patient_history_found, status, uploaded_at, updated_at`

func (r *repoPG) Create(ctx context.Context, s *Scan) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.Status == "" {
		s.Status = StatusPending
	}
	// Findings are typed in the domain and JSONB only at this boundary.
	findings, err := json.Marshal(s.Findings)
	if err != nil {
		return fmt.Errorf("marshal findings: %w", err)
	}
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO scan (
			id, facility_id, patient_id, findings, urgency_score, reasoning,
			recommended_action, risk_factors, ai_confidence, rag_enabled,
			hospital_cases_used, patient_history_found, status
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		RETURNING uploaded_at, updated_at`,
		s.ID, s.FacilityID, s.PatientID, findings, s.UrgencyScore, s.Reasoning,
		s.RecommendedAction, s.RiskFactors, s.AIConfidence, s.RAGEnabled,
		s.HospitalCasesUsed, s.PatientHistoryFound, s.Status,
	).Scan(&s.UploadedAt, &s.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Scan, error) {
	return scanRow(r.conn(ctx).QueryRow(ctx, `SELECT `+scanCols+` FROM scan WHERE id = $1`, id))
}

func (r *repoPG) ListPending(ctx context.Context, facilityID *uuid.UUID) ([]*Scan, error) {
	sql := `SELECT ` + scanCols + ` FROM scan WHERE status = $1`
	args := []interface{}{StatusPending}
	if facilityID != nil {
		sql += ` AND facility_id = $2`
		args = append(args, *facilityID)
	}
	sql += ` ORDER BY urgency_score DESC, uploaded_at ASC`

	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scans []*Scan
	for rows.Next() {
		s, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		scans = append(scans, s)
	}
	return scans, rows.Err()
}

func (r *repoPG) CountPending(ctx context.Context, facilityID *uuid.UUID) (int, error) {
	sql := `SELECT COUNT(*) FROM scan WHERE status = $1`
	args := []interface{}{StatusPending}
	if facilityID != nil {
		sql += ` AND facility_id = $2`
		args = append(args, *facilityID)
	}
	var n int
	err := r.conn(ctx).QueryRow(ctx, sql, args...).Scan(&n)
	return n, err
}

func (r *repoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE scan SET status = $1, updated_at = now() WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{ByUrgency: map[string]int{}}
	var critical, urgent, routine int
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*),
			COALESCE(AVG(urgency_score), 0),
			COUNT(*) FILTER (WHERE urgency_score >= 8),
			COUNT(*) FILTER (WHERE urgency_score >= 4 AND urgency_score < 8),
			COUNT(*) FILTER (WHERE urgency_score < 4),
			COUNT(*) FILTER (WHERE status = 'pending')
		FROM scan`,
	).Scan(&st.TotalScans, &st.AvgUrgency, &critical, &urgent, &routine, &st.PendingScans)
	if err != nil {
		return nil, err
	}
	st.ByUrgency["critical"] = critical
	st.ByUrgency["urgent"] = urgent
	st.ByUrgency["routine"] = routine
	return st, nil
}

func scanRow(row pgx.Row) (*Scan, error) {
	var s Scan
	var findings []byte
	err := row.Scan(
		&s.ID, &s.FacilityID, &s.PatientID, &findings, &s.UrgencyScore, &s.Reasoning,
		&s.RecommendedAction, &s.RiskFactors, &s.AIConfidence, &s.RAGEnabled,
		&s.HospitalCasesUsed, &s.PatientHistoryFound, &s.Status, &s.UploadedAt, &s.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if len(findings) > 0 {
		if err := json.Unmarshal(findings, &s.Findings); err != nil {
			return nil, fmt.Errorf("unmarshal findings for %s: %w", s.ID, err)
		}
	}
	return &s, nil
}

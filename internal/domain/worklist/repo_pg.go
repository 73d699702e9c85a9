package worklist

import (
	"context"
	"encoding/json"
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

func (r *repoPG) ListPending(ctx context.Context, facilityID *uuid.UUID) ([]*QueueEntry, error) {
	sql := `
		SELECT s.id, s.facility_id, f.name,
			p.identifier, p.name, p.age,
			s.findings, s.urgency_score, s.recommended_action, s.risk_factors,
			s.ai_confidence, s.uploaded_at
		FROM scan s
		JOIN facility f ON f.id = s.facility_id
		LEFT JOIN patient p ON p.id = s.patient_id
		WHERE s.status = 'pending'`
	args := []interface{}{}
	if facilityID != nil {
		sql += ` AND s.facility_id = $1`
		args = append(args, *facilityID)
	}
	sql += ` ORDER BY s.uploaded_at`

	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*QueueEntry
	for rows.Next() {
		var e QueueEntry
		var findings []byte
		if err := rows.Scan(
			&e.ScanID, &e.FacilityID, &e.FacilityName,
			&e.PatientIdentifier, &e.PatientName, &e.PatientAge,
			&findings, &e.UrgencyScore, &e.RecommendedAction, &e.RiskFactors,
			&e.AIConfidence, &e.UploadedAt,
		); err != nil {
			return nil, err
		}
		if len(findings) > 0 {
			if err := json.Unmarshal(findings, &e.Findings); err != nil {
				return nil, fmt.Errorf("unmarshal findings for %s: %w", e.ScanID, err)
			}
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

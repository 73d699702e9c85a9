package rag

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

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// -- Hospital cases --

type caseRepoPG struct {
	pool *pgxpool.Pool
}

func NewCaseRepo(pool *pgxpool.Pool) CaseRepository {
	return &caseRepoPG{pool: pool}
}

func (r *caseRepoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *caseRepoPG) Add(ctx context.Context, c *HospitalCase) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.SearchContent == "" {
		c.SearchContent = c.DeriveSearchContent()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO hospital_case (
			id, case_id, conditions, urgency_score, outcome, time_to_treatment_minutes,
			facility_type, complications, patient_age_range, final_diagnosis,
			clinical_notes, search_content
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		c.ID, c.CaseID, c.Conditions, c.UrgencyScore, c.Outcome, c.TimeToTreatmentMinutes,
		c.FacilityType, c.Complications, c.PatientAgeRange, c.FinalDiagnosis,
		c.ClinicalNotes, c.SearchContent,
	)
	return err
}

func (r *caseRepoPG) FindSimilar(ctx context.Context, query string, limit int) ([]*HospitalCase, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, case_id, conditions, urgency_score, outcome, time_to_treatment_minutes,
			facility_type, complications, patient_age_range, final_diagnosis,
			clinical_notes, search_content, created_at,
			ts_rank(search_tsv, plainto_tsquery('english', $1)) AS rank
		FROM hospital_case
		WHERE search_tsv @@ plainto_tsquery('english', $1)
		ORDER BY rank DESC, created_at
		LIMIT $2`,
		query, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("case search %q: %w", query, err)
	}
	defer rows.Close()

	var cases []*HospitalCase
	for rows.Next() {
		var c HospitalCase
		if err := rows.Scan(
			&c.ID, &c.CaseID, &c.Conditions, &c.UrgencyScore, &c.Outcome, &c.TimeToTreatmentMinutes,
			&c.FacilityType, &c.Complications, &c.PatientAgeRange, &c.FinalDiagnosis,
			&c.ClinicalNotes, &c.SearchContent, &c.CreatedAt, &c.Similarity,
		); err != nil {
			return nil, err
		}
		cases = append(cases, &c)
	}
	return cases, rows.Err()
}

// -- Patient records --

type recordRepoPG struct {
	pool *pgxpool.Pool
}

func NewRecordRepo(pool *pgxpool.Pool) RecordRepository {
	return &recordRepoPG{pool: pool}
}

func (r *recordRepoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *recordRepoPG) Append(ctx context.Context, rec *PatientRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	// scan_history is typed in the domain and JSONB only at this boundary.
	history, err := json.Marshal(rec.ScanHistory)
	if err != nil {
		return fmt.Errorf("marshal scan history: %w", err)
	}
	_, err = r.conn(ctx).Exec(ctx, `
		INSERT INTO patient_record (
			id, patient_id, age, gender, chronic_conditions, risk_factors,
			scan_history, medication_history, last_admission_date, total_previous_scans
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		rec.ID, rec.PatientID, rec.Age, rec.Gender, rec.ChronicConditions, rec.RiskFactors,
		history, rec.MedicationHistory, rec.LastAdmissionDate, rec.TotalPreviousScans,
	)
	return err
}

func (r *recordRepoPG) ListByPatient(ctx context.Context, patientID string) ([]*PatientRecord, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, patient_id, age, gender, chronic_conditions, risk_factors,
			scan_history, medication_history, last_admission_date, total_previous_scans,
			created_at
		FROM patient_record
		WHERE patient_id = $1
		ORDER BY created_at`,
		patientID,
	)
	if err != nil {
		return nil, fmt.Errorf("list records for %s: %w", patientID, err)
	}
	defer rows.Close()

	var records []*PatientRecord
	for rows.Next() {
		var rec PatientRecord
		var history []byte
		if err := rows.Scan(
			&rec.ID, &rec.PatientID, &rec.Age, &rec.Gender, &rec.ChronicConditions, &rec.RiskFactors,
			&history, &rec.MedicationHistory, &rec.LastAdmissionDate, &rec.TotalPreviousScans,
			&rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		if len(history) > 0 {
			if err := json.Unmarshal(history, &rec.ScanHistory); err != nil {
				return nil, fmt.Errorf("unmarshal scan history for %s: %w", patientID, err)
			}
		}
		records = append(records, &rec)
	}
	return records, rows.Err()
}

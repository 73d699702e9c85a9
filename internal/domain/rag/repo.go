package rag

import "context"

// CaseRepository is the append-only store behind the historical case index.
type CaseRepository interface {
	Add(ctx context.Context, c *HospitalCase) error
	// FindSimilar runs a keyword query over search_content and returns the
	// best matches with Similarity populated, most relevant first.
	FindSimilar(ctx context.Context, query string, limit int) ([]*HospitalCase, error)
}

// RecordRepository is the append-only store of per-visit patient records.
type RecordRepository interface {
	Append(ctx context.Context, r *PatientRecord) error
	// ListByPatient returns all records for the identifier in storage order.
	ListByPatient(ctx context.Context, patientID string) ([]*PatientRecord, error)
}

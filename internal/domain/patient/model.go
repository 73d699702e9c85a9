package patient

import (
	"time"

	"github.com/google/uuid"
)

// Patient maps to the patient table. Identifier is the external patient ID
// supplied by the uploading facility (MRN or similar), unique across the
// registry. Demographic fields are optional because rural uploads often
// arrive with nothing but the identifier.
type Patient struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	Identifier   string     `db:"identifier" json:"identifier"`
	Name         *string    `db:"name" json:"name,omitempty"`
	Age          *int       `db:"age" json:"age,omitempty"`
	Gender       *string    `db:"gender" json:"gender,omitempty"`
	BloodType    *string    `db:"blood_type" json:"blood_type,omitempty"`
	MedicalNotes *string    `db:"medical_notes" json:"medical_notes,omitempty"`
	TotalScans   int        `db:"total_scans" json:"total_scans"`
	FirstScanAt  *time.Time `db:"first_scan_at" json:"first_scan_at,omitempty"`
	LastScanAt   *time.Time `db:"last_scan_at" json:"last_scan_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

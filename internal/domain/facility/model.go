package facility

import (
	"time"

	"github.com/google/uuid"
)

// Facility maps to the facility table.
type Facility struct {
	ID             uuid.UUID `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	City           string    `db:"city" json:"city"`
	State          string    `db:"state" json:"state"`
	Type           string    `db:"type" json:"type"`
	HasRadiologist bool      `db:"has_radiologist" json:"has_radiologist"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Facility types. Critical-access hospitals and rural clinics typically have
// no radiologist on site, which is why scans queue for remote review.
const (
	TypeCriticalAccess = "critical_access"
	TypeRuralClinic    = "rural_clinic"
	TypeRegional       = "regional"
)

var validTypes = map[string]bool{
	TypeCriticalAccess: true,
	TypeRuralClinic:    true,
	TypeRegional:       true,
}

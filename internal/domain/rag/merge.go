package rag

// MergeHistory folds per-visit patient records into one longitudinal view.
// Records must be supplied in storage order. Returns nil for zero records.
//
// Merge rules:
//   - age and gender: last non-null value wins
//   - total_previous_scans: maximum across records
//   - risk_factors: union, de-duplicated, first-seen order
//   - scan_history: concatenation in storage order, never re-sorted
//   - chronic_conditions, medication_history, last_admission_date: taken from
//     the first record only (the primary record written at registration)
func MergeHistory(records []*PatientRecord) *PatientHistory {
	if len(records) == 0 {
		return nil
	}

	h := &PatientHistory{
		PatientID:         records[0].PatientID,
		ChronicConditions: records[0].ChronicConditions,
		MedicationHistory: records[0].MedicationHistory,
		LastAdmissionDate: records[0].LastAdmissionDate,
	}

	seen := make(map[string]bool)
	for _, rec := range records {
		if rec.Age != nil {
			h.Age = rec.Age
		}
		if rec.Gender != nil && *rec.Gender != "" {
			h.Gender = rec.Gender
		}
		if rec.TotalPreviousScans > h.TotalPreviousScans {
			h.TotalPreviousScans = rec.TotalPreviousScans
		}
		for _, rf := range rec.RiskFactors {
			if rf != "" && !seen[rf] {
				seen[rf] = true
				h.RiskFactors = append(h.RiskFactors, rf)
			}
		}
		h.ScanHistory = append(h.ScanHistory, rec.ScanHistory...)
	}

	return h
}

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vitaltriage/api/internal/config"
	"github.com/vitaltriage/api/internal/domain/facility"
	"github.com/vitaltriage/api/internal/domain/rag"
	"github.com/vitaltriage/api/internal/platform/db"
)

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load demo facilities, hospital cases, and patient records",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			facRepo := facility.NewRepo(pool)
			for _, f := range seedFacilities() {
				if err := facRepo.Create(ctx, f); err != nil {
					return fmt.Errorf("seed facility %s: %w", f.Name, err)
				}
			}
			fmt.Printf("Seeded %d facilities.\n", len(seedFacilities()))

			caseRepo := rag.NewCaseRepo(pool)
			cases := seedHospitalCases()
			for _, c := range cases {
				if err := caseRepo.Add(ctx, c); err != nil {
					return fmt.Errorf("seed case %s: %w", c.CaseID, err)
				}
			}
			fmt.Printf("Seeded %d hospital cases.\n", len(cases))

			recordRepo := rag.NewRecordRepo(pool)
			records := seedPatientRecords()
			for _, r := range records {
				if err := recordRepo.Append(ctx, r); err != nil {
					return fmt.Errorf("seed record for %s: %w", r.PatientID, err)
				}
			}
			fmt.Printf("Seeded %d patient records.\n", len(records))
			return nil
		},
	}
}

func seedFacilities() []*facility.Facility {
	return []*facility.Facility{
		{Name: "Montana General Hospital", City: "Helena", State: "MT", Type: facility.TypeRegional, HasRadiologist: true},
		{Name: "Billings Regional Medical", City: "Billings", State: "MT", Type: facility.TypeRegional, HasRadiologist: true},
		{Name: "Missoula Community ER", City: "Missoula", State: "MT", Type: facility.TypeCriticalAccess},
	}
}

// seedHospitalCases is a spread of historical outcomes from Montana General:
// severe, moderate, and mild presentations of each common condition, so
// retrieval returns a meaningful comparison at every urgency level.
func seedHospitalCases() []*rag.HospitalCase {
	return []*rag.HospitalCase{
		{
			CaseID:                 "PTX001",
			Conditions:             []string{"Pneumothorax"},
			UrgencyScore:           10,
			Outcome:                "Emergency chest tube placement within 15 minutes. Patient stabilized.",
			TimeToTreatmentMinutes: 15,
			FacilityType:           "rural",
			Complications:          []string{"Respiratory_distress"},
			PatientAgeRange:        "60-70",
			FinalDiagnosis:         "Large spontaneous pneumothorax",
			ClinicalNotes:          "Rapid deterioration prevented by immediate intervention",
		},
		{
			CaseID:                 "PTX002",
			Conditions:             []string{"Pneumothorax"},
			UrgencyScore:           8,
			Outcome:                "Moderate pneumothorax. Observation then chest tube at 45 min.",
			TimeToTreatmentMinutes: 45,
			FacilityType:           "rural",
			PatientAgeRange:        "40-50",
			FinalDiagnosis:         "Moderate spontaneous pneumothorax",
			ClinicalNotes:          "Stable on presentation, intervention when oxygen requirement increased",
		},
		{
			CaseID:          "PTX003",
			Conditions:      []string{"Pneumothorax"},
			UrgencyScore:    6,
			Outcome:         "Small apical pneumothorax. Discharged with follow-up. Resolved spontaneously.",
			FacilityType:    "rural",
			PatientAgeRange: "20-30",
			FinalDiagnosis:  "Small spontaneous pneumothorax",
			ClinicalNotes:   "Young healthy patient, minimal symptoms",
		},
		{
			CaseID:                 "EFF001",
			Conditions:             []string{"Effusion"},
			UrgencyScore:           8,
			Outcome:                "Large pleural effusion. Thoracentesis performed. 800ml drained.",
			TimeToTreatmentMinutes: 60,
			FacilityType:           "rural",
			Complications:          []string{"Dyspnea"},
			PatientAgeRange:        "70-80",
			FinalDiagnosis:         "Large unilateral pleural effusion, likely malignant",
			ClinicalNotes:          "Significant symptomatic relief after drainage",
		},
		{
			CaseID:                 "EFF002",
			Conditions:             []string{"Effusion"},
			UrgencyScore:           6,
			Outcome:                "Moderate effusion. Diuretics started. Admitted for CHF exacerbation.",
			TimeToTreatmentMinutes: 120,
			FacilityType:           "rural",
			PatientAgeRange:        "65-75",
			FinalDiagnosis:         "Pleural effusion secondary to heart failure",
			ClinicalNotes:          "Known CHF, responded to diuresis",
		},
		{
			CaseID:                 "PNA001",
			Conditions:             []string{"Pneumonia", "Infiltration"},
			UrgencyScore:           8,
			Outcome:                "Severe pneumonia. ICU admission. Intubated within 4 hours.",
			TimeToTreatmentMinutes: 90,
			FacilityType:           "rural",
			Complications:          []string{"Respiratory_failure", "Sepsis"},
			PatientAgeRange:        "75-85",
			FinalDiagnosis:         "Severe community-acquired pneumonia",
			ClinicalNotes:          "Rapid progression, required transfer to tertiary center",
		},
		{
			CaseID:                 "PNA002",
			Conditions:             []string{"Infiltration"},
			UrgencyScore:           6,
			Outcome:                "Lobar pneumonia. Admitted for IV antibiotics. Discharged day 5.",
			TimeToTreatmentMinutes: 180,
			FacilityType:           "rural",
			PatientAgeRange:        "55-65",
			FinalDiagnosis:         "Right lower lobe pneumonia",
			ClinicalNotes:          "Stable on admission, good response to therapy",
		},
		{
			CaseID:                 "CAR001",
			Conditions:             []string{"Cardiomegaly", "Edema"},
			UrgencyScore:           9,
			Outcome:                "Acute decompensated heart failure. ICU admission. Diuresis and vasodilators.",
			TimeToTreatmentMinutes: 25,
			FacilityType:           "rural",
			Complications:          []string{"Respiratory_distress", "Hypotension"},
			PatientAgeRange:        "70-80",
			FinalDiagnosis:         "Acute on chronic systolic heart failure",
			ClinicalNotes:          "Critical presentation, required urgent intervention",
		},
		{
			CaseID:          "CAR002",
			Conditions:      []string{"Cardiomegaly"},
			UrgencyScore:    5,
			Outcome:         "Stable cardiomegaly. Cardiology referral. Outpatient echo scheduled.",
			FacilityType:    "rural",
			PatientAgeRange: "60-70",
			FinalDiagnosis:  "Chronic cardiomegaly, likely hypertensive",
			ClinicalNotes:   "Known hypertension, stable",
		},
		{
			CaseID:                 "MAS001",
			Conditions:             []string{"Mass"},
			UrgencyScore:           6,
			Outcome:                "Lung mass. CT ordered. Biopsy later confirmed malignancy.",
			TimeToTreatmentMinutes: 1440,
			FacilityType:           "rural",
			PatientAgeRange:        "65-75",
			FinalDiagnosis:         "Primary lung adenocarcinoma",
			ClinicalNotes:          "Referred to oncology",
		},
		{
			CaseID:          "NOD001",
			Conditions:      []string{"Nodule"},
			UrgencyScore:    4,
			Outcome:         "Indeterminate nodule. 3-month follow-up CT recommended.",
			FacilityType:    "rural",
			PatientAgeRange: "50-60",
			FinalDiagnosis:  "Indeterminate pulmonary nodule",
			ClinicalNotes:   "Low-risk patient, routine surveillance",
		},
		{
			CaseID:          "NOR001",
			Conditions:      []string{"Atelectasis"},
			UrgencyScore:    2,
			Outcome:         "Minor atelectasis. Incentive spirometry. Discharged same day.",
			FacilityType:    "rural",
			PatientAgeRange: "40-50",
			FinalDiagnosis:  "Subsegmental atelectasis",
			ClinicalNotes:   "Post-operative, expected finding",
		},
	}
}

func seedPatientRecords() []*rag.PatientRecord {
	return []*rag.PatientRecord{
		{
			PatientID:         "P12345",
			Age:               intPtr(72),
			Gender:            strPtr("M"),
			ChronicConditions: []string{"COPD", "Hypertension", "Diabetes"},
			RiskFactors:       []string{"Smoker_40_years", "COPD_severe", "Previous_ICU_admission"},
			ScanHistory: []rag.ScanEntry{
				{
					Date:                  "2025-06-15",
					ScanID:                "PTX001",
					Findings:              []string{"Pneumothorax"},
					Urgency:               10,
					Outcome:               "Required ICU admission, chest tube placement",
					Complications:         []string{"Respiratory_failure"},
					TreatmentDurationDays: 5,
				},
				{
					Date:     "2025-01-10",
					Findings: []string{"Emphysema"},
					Urgency:  4,
					Outcome:  "Stable, outpatient management",
				},
			},
			MedicationHistory:  []string{"Albuterol", "Metformin", "Lisinopril"},
			LastAdmissionDate:  "2025-06-15",
			TotalPreviousScans: 3,
		},
		{
			PatientID:         "P12346",
			Age:               intPtr(78),
			Gender:            strPtr("F"),
			ChronicConditions: []string{"CHF", "Atrial_fibrillation", "CKD"},
			RiskFactors:       []string{"Previous_ICU_admission", "Multiple_admissions"},
			ScanHistory: []rag.ScanEntry{
				{
					Date:                  "2025-05-20",
					ScanID:                "CAR001",
					Findings:              []string{"Cardiomegaly", "Edema"},
					Urgency:               9,
					Outcome:               "Acute heart failure, ICU admission",
					Complications:         []string{"Respiratory_distress"},
					TreatmentDurationDays: 7,
				},
			},
			MedicationHistory:  []string{"Furosemide", "Metoprolol", "Apixaban"},
			LastAdmissionDate:  "2025-05-20",
			TotalPreviousScans: 2,
		},
		{
			PatientID:         "P12348",
			Age:               intPtr(70),
			Gender:            strPtr("F"),
			ChronicConditions: []string{"Hypertension", "Diabetes", "Obesity"},
			RiskFactors:       []string{"BMI_38", "Previous_effusion"},
			ScanHistory: []rag.ScanEntry{
				{
					Date:                  "2025-03-10",
					ScanID:                "EFF001",
					Findings:              []string{"Effusion"},
					Urgency:               8,
					Outcome:               "Thoracentesis, large volume drained",
					TreatmentDurationDays: 2,
				},
			},
			MedicationHistory:  []string{"Lisinopril", "Metformin", "Omeprazole"},
			LastAdmissionDate:  "2025-03-10",
			TotalPreviousScans: 1,
		},
		{
			PatientID:         "P12349",
			Age:               intPtr(55),
			Gender:            strPtr("M"),
			ChronicConditions: []string{"Hypertension"},
			RiskFactors:       []string{"Previous_mild_findings"},
			ScanHistory: []rag.ScanEntry{
				{
					Date:     "2025-02-15",
					Findings: []string{"Infiltration"},
					Urgency:  5,
					Outcome:  "Outpatient antibiotics, resolved",
				},
			},
			MedicationHistory:  []string{"Amlodipine"},
			LastAdmissionDate:  "2025-02-15",
			TotalPreviousScans: 1,
		},
	}
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

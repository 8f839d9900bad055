package model

// Severity grades a single finding or recommendation
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
	SeverityInfo     Severity = "INFO"
)

// SeverityRank returns the fixed ordering used to sort recommendations:
// CRITICAL first, INFO last. Unknown severities sort after INFO.
func SeverityRank(s Severity) int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 3
	case SeverityInfo:
		return 4
	default:
		return 5
	}
}

// ViolationType names one detector in the PHI/quasi-identifier taxonomy
type ViolationType string

const (
	ViolationPhoneNumber   ViolationType = "phone_number"
	ViolationSSN           ViolationType = "ssn"
	ViolationEmail         ViolationType = "email"
	ViolationDate          ViolationType = "date"
	ViolationMedicalRecord ViolationType = "medical_record_number"
	ViolationAddress       ViolationType = "address"
	ViolationZipCode       ViolationType = "zip_code"
	ViolationIPAddress     ViolationType = "ip_address"
	ViolationURL           ViolationType = "url"
	ViolationAgeOver89     ViolationType = "age_over_89"

	ViolationControlledSubstance ViolationType = "controlled_substance_without_context"
)

// PatternViolation is one detector hit from the pattern scanner
type PatternViolation struct {
	Type        ViolationType `json:"type"`
	Matches     []string      `json:"matches"`
	Count       int           `json:"count"`
	Severity    Severity      `json:"severity"`
	Remediation string        `json:"remediation"`
}

// QuasiIdentifierRisk summarizes re-identification exposure from attribute
// combinations that are not directly identifying on their own
type QuasiIdentifierRisk struct {
	Categories []string `json:"categories"`
	Level      Severity `json:"level"`
}

// RegulatoryViolation flags a controlled-substance mention lacking
// DEA/prescription context
type RegulatoryViolation struct {
	Type        ViolationType `json:"type"`
	Substance   string        `json:"substance"`
	Schedule    string        `json:"schedule,omitempty"`
	Description string        `json:"description"`
	Severity    Severity      `json:"severity"`
}

// FDAViolation flags a missing disclosure for a high-risk medication
type FDAViolation struct {
	Medication  string   `json:"medication"`
	Requirement string   `json:"requirement"` // black_box_warning or rems
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
}

// MandatoryWarning records a required warning absent from the text
type MandatoryWarning struct {
	Medication string `json:"medication"`
	Warning    string `json:"warning"`
}

// MedicationIssueType names one medication-safety check
type MedicationIssueType string

const (
	IssueHighRiskWithoutWarning    MedicationIssueType = "high_risk_medication_without_warning"
	IssueDosingWithoutConsultation MedicationIssueType = "dosing_without_consultation"
)

// MedicationIssue is one medication-safety finding
type MedicationIssue struct {
	Type       MedicationIssueType `json:"type"`
	Medication string              `json:"medication,omitempty"`
	Detail     string              `json:"detail"`
	Severity   Severity            `json:"severity"`
}

// Recommendation is one remediation entry, ordered by severity then by the
// sequence the checks emitted it
type Recommendation struct {
	Severity Severity `json:"severity"`
	Category string   `json:"category"`
	Text     string   `json:"text"`
	Citation string   `json:"citation"` // regulation reference, e.g. "45 CFR §164.514(b)"
}

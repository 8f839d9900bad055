package model

import "time"

// RiskLevel is the ordinal risk classification shared by both analyses
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
	RiskUnknown  RiskLevel = "UNKNOWN"
)

// Issue is one detected hallucination concern
type Issue struct {
	Type        string    `json:"issue_type"`
	Description string    `json:"description"`
	Evidence    string    `json:"evidence"`
	RiskLevel   RiskLevel `json:"risk_level"`
	Explanation string    `json:"explanation,omitempty"`
}

// CitationAssessment is the evaluation of one citation found in the output
type CitationAssessment struct {
	Citation          string    `json:"citation"`
	Validity          string    `json:"validity"`
	Assessment        string    `json:"assessment"`
	RiskLevel         RiskLevel `json:"risk_level"`
	Explanation       string    `json:"explanation,omitempty"`
	CompletenessScore int       `json:"completeness_score"`
}

// HallucinationReport aggregates faithfulness analysis for one output.
// Even under partial failure every field is populated; ErrorStatus marks
// analyses that did not complete rather than omitting the section.
type HallucinationReport struct {
	ConfidenceScore int                  `json:"confidence_score"`
	Reasoning       string               `json:"reasoning"`
	Issues          []Issue              `json:"issues_detected"`
	Citations       []CitationAssessment `json:"citation_analysis"`
	ClaimVerdicts   []ClaimVerdict       `json:"claim_verdicts"`
	RiskLevel       RiskLevel            `json:"risk_level"`
	TotalIssues     int                  `json:"total_issues"`
	TotalCitations  int                  `json:"total_citations"`
	ErrorStatus     string               `json:"error_status,omitempty"`
}

// ComplianceStatus is the five-band compliance tier
type ComplianceStatus string

const (
	StatusFullyCompliant      ComplianceStatus = "FULLY_COMPLIANT"
	StatusMostlyCompliant     ComplianceStatus = "MOSTLY_COMPLIANT"
	StatusPartiallyCompliant  ComplianceStatus = "PARTIALLY_COMPLIANT"
	StatusMarginallyCompliant ComplianceStatus = "MARGINALLY_COMPLIANT"
	StatusNonCompliant        ComplianceStatus = "NON_COMPLIANT"
	StatusError               ComplianceStatus = "ERROR"
)

// PHIAnalysis carries the AI-assisted name/PHI review that complements the
// pattern scan. Confidence scales the PHI deduction and stays in [0,1].
type PHIAnalysis struct {
	Confidence float64  `json:"confidence"`
	Findings   []string `json:"findings,omitempty"`
	Source     string   `json:"source"` // "model" or "fallback"
}

// ComplianceReport aggregates privacy and drug-safety findings with a
// clamped 0-100 score and a prioritized remediation list
type ComplianceReport struct {
	PHIViolations        []PatternViolation    `json:"phi_violations"`
	QuasiIdentifiers     QuasiIdentifierRisk   `json:"quasi_identifier_risk"`
	PHIAnalysis          PHIAnalysis           `json:"phi_analysis"`
	RegulatoryViolations []RegulatoryViolation `json:"regulatory_violations"`
	FDAViolations        []FDAViolation        `json:"fda_violations"`
	MissingWarnings      []MandatoryWarning    `json:"missing_warnings"`
	MedicationIssues     []MedicationIssue     `json:"medication_issues"`
	Score                int                   `json:"compliance_score"`
	OverallStatus        ComplianceStatus      `json:"overall_status"`
	Recommendations      []Recommendation      `json:"recommendations"`
	ErrorStatus          string                `json:"error_status,omitempty"`
}

// CombinedAssessment merges both analyses into one advisory verdict. It is
// derived fresh per request and never mutated afterward.
type CombinedAssessment struct {
	OverallRiskLevel  RiskLevel        `json:"overall_risk_level"`
	RiskFactors       []string         `json:"risk_factors"`
	Recommendation    string           `json:"recommendation"`
	HallucinationRisk RiskLevel        `json:"hallucination_risk"`
	ComplianceScore   int              `json:"compliance_score"`
	ComplianceStatus  ComplianceStatus `json:"compliance_status"`
	Summary           string           `json:"summary"`
}

// InputSummary echoes the analyzed request's shape
type InputSummary struct {
	PromptLength int  `json:"prompt_length"`
	OutputLength int  `json:"output_length"`
	HasDocuments bool `json:"has_documents"`
}

// AnalysisReport is the full envelope returned for one analysis request
type AnalysisReport struct {
	ID            string              `json:"report_id"`
	Seq           int64               `json:"seq,omitempty"`
	Hallucination HallucinationReport `json:"hallucination_analysis"`
	Compliance    ComplianceReport    `json:"compliance_analysis"`
	Combined      CombinedAssessment  `json:"combined_assessment"`
	InputSummary  InputSummary        `json:"input_summary"`
	Status        string              `json:"status"`
	Timestamp     time.Time           `json:"timestamp"`
}

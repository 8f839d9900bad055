package compliance

import (
	"context"
	"strings"
	"testing"

	"github.com/deadly-nightshade/medguard/internal/model"
	"github.com/deadly-nightshade/medguard/internal/patterns"
)

type stubProvider struct {
	response string
	err      error
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) IsAvailable(ctx context.Context) bool { return s.err == nil }

func (s *stubProvider) Generate(ctx context.Context, p string) (string, error) {
	return s.response, s.err
}

func newTestScorer(provider *stubProvider) *Scorer {
	if provider == nil {
		return NewScorer(patterns.NewScanner(), nil)
	}
	return NewScorer(patterns.NewScanner(), provider)
}

func TestScoreSSNViolation(t *testing.T) {
	scorer := newTestScorer(nil)
	report := scorer.Score(context.Background(), "Patient SSN: 123-45-6789", "")

	if len(report.PHIViolations) != 1 {
		t.Fatalf("expected 1 PHI violation, got %d", len(report.PHIViolations))
	}
	if report.PHIViolations[0].Type != model.ViolationSSN {
		t.Errorf("type = %s, want ssn", report.PHIViolations[0].Type)
	}
	if report.PHIViolations[0].Severity != model.SeverityHigh {
		t.Errorf("severity = %s, want HIGH", report.PHIViolations[0].Severity)
	}
	if report.Score > 70 {
		t.Errorf("score = %d, want <= 70", report.Score)
	}
}

func TestScoreHighRiskMedicationWithoutWarning(t *testing.T) {
	scorer := newTestScorer(nil)
	report := scorer.Score(context.Background(), "Warfarin is effective for preventing clots.", "")

	var found *model.MedicationIssue
	for i := range report.MedicationIssues {
		if report.MedicationIssues[i].Type == model.IssueHighRiskWithoutWarning {
			found = &report.MedicationIssues[i]
			break
		}
	}
	if found == nil {
		t.Fatal("expected a high_risk_medication_without_warning issue")
	}
	if found.Severity != model.SeverityHigh {
		t.Errorf("severity = %s, want HIGH", found.Severity)
	}
	if found.Medication != "warfarin" {
		t.Errorf("medication = %q, want warfarin", found.Medication)
	}
}

func TestScoreHighRiskMedicationWithCautionNearby(t *testing.T) {
	scorer := newTestScorer(nil)
	report := scorer.Score(context.Background(), "Warfarin requires regular INR monitoring; consult your doctor about bleeding risk and its boxed warning.", "")

	for _, issue := range report.MedicationIssues {
		if issue.Type == model.IssueHighRiskWithoutWarning {
			t.Errorf("unexpected medication issue: %+v", issue)
		}
	}
	if len(report.FDAViolations) != 0 {
		t.Errorf("expected no FDA violations, got %+v", report.FDAViolations)
	}
	if len(report.MissingWarnings) != 0 {
		t.Errorf("expected no missing warnings, got %+v", report.MissingWarnings)
	}
}

func TestScoreCleanText(t *testing.T) {
	scorer := newTestScorer(nil)
	report := scorer.Score(context.Background(), "Staying hydrated and sleeping well support general health.", "")

	if report.Score != 100 {
		t.Errorf("score = %d, want 100", report.Score)
	}
	if report.OverallStatus != model.StatusFullyCompliant {
		t.Errorf("status = %s, want FULLY_COMPLIANT", report.OverallStatus)
	}
	if len(report.Recommendations) != 1 {
		t.Fatalf("expected single default recommendation, got %d", len(report.Recommendations))
	}
	rec := report.Recommendations[0]
	if rec.Severity != model.SeverityInfo || rec.Category != "general" {
		t.Errorf("default recommendation = %+v", rec)
	}
}

func TestScoreEmptyOutput(t *testing.T) {
	scorer := newTestScorer(nil)
	report := scorer.Score(context.Background(), "", "")

	if report.Score != 100 {
		t.Errorf("score = %d, want 100", report.Score)
	}
	if report.OverallStatus != model.StatusFullyCompliant {
		t.Errorf("status = %s, want FULLY_COMPLIANT", report.OverallStatus)
	}
}

func TestScoreClampedAtZero(t *testing.T) {
	// Pile every violation category into one text.
	text := strings.Join([]string{
		"Patient John, SSN: 123-45-6789, phone 555-123-4567, email j@example.com,",
		"MRN: 44821, seen 01/02/2023 at 12 Main Street.",
		"A 92-year-old male nurse took oxycodone, fentanyl, xanax and morphine.",
		"Warfarin, methotrexate, isotretinoin, clozapine and lithium at 20 mg daily.",
	}, " ")

	scorer := newTestScorer(nil)
	report := scorer.Score(context.Background(), text, "")

	if report.Score < 0 || report.Score > 100 {
		t.Fatalf("score %d outside [0,100]", report.Score)
	}
	if report.OverallStatus != model.StatusNonCompliant {
		t.Errorf("status = %s, want NON_COMPLIANT", report.OverallStatus)
	}
	if len(report.RegulatoryViolations) == 0 {
		t.Error("expected controlled-substance violations")
	}
	if len(report.FDAViolations) == 0 {
		t.Error("expected FDA disclosure violations")
	}
}

func TestControlledSubstanceContextSuppresses(t *testing.T) {
	scorer := newTestScorer(nil)

	without := scorer.checkControlledSubstances("Oxycodone relieves severe pain.")
	if len(without) != 1 {
		t.Fatalf("expected 1 violation, got %d", len(without))
	}
	if without[0].Schedule != "II" {
		t.Errorf("schedule = %q, want II", without[0].Schedule)
	}
	if without[0].Type != model.ViolationControlledSubstance {
		t.Errorf("type = %q, want %q", without[0].Type, model.ViolationControlledSubstance)
	}

	with := scorer.checkControlledSubstances("Oxycodone is a Schedule II controlled substance available only by prescription.")
	if len(with) != 0 {
		t.Errorf("expected no violations with prescription context, got %+v", with)
	}
}

func TestDosingWithoutConsultation(t *testing.T) {
	scorer := newTestScorer(nil)

	issues := scorer.checkMedicationSafety("Take 200 mg twice a day.")
	if len(issues) != 1 || issues[0].Type != model.IssueDosingWithoutConsultation {
		t.Fatalf("expected dosing issue, got %+v", issues)
	}
	if issues[0].Severity != model.SeverityMedium {
		t.Errorf("severity = %s, want MEDIUM", issues[0].Severity)
	}

	issues = scorer.checkMedicationSafety("Take 200 mg twice a day, but consult your pharmacist first.")
	if len(issues) != 0 {
		t.Errorf("expected no issues with consult language, got %+v", issues)
	}
}

func TestPHIAnalysisModelPath(t *testing.T) {
	provider := &stubProvider{response: `{"confidence": 0.4, "findings": ["first name present"]}`}
	scorer := newTestScorer(provider)

	analysis := scorer.analyzePHI(context.Background(), "Alice felt better today.", nil)
	if analysis.Source != "model" {
		t.Errorf("source = %q, want model", analysis.Source)
	}
	if analysis.Confidence != 0.4 {
		t.Errorf("confidence = %v, want 0.4", analysis.Confidence)
	}
	if len(analysis.Findings) != 1 {
		t.Errorf("findings = %v", analysis.Findings)
	}
}

func TestPHIAnalysisModelCannotErasePatternHits(t *testing.T) {
	provider := &stubProvider{response: `{"confidence": 0.1, "findings": []}`}
	scorer := newTestScorer(provider)

	violations := []model.PatternViolation{{Type: model.ViolationSSN, Severity: model.SeverityHigh, Count: 1}}
	analysis := scorer.analyzePHI(context.Background(), "SSN: 123-45-6789", violations)
	if analysis.Confidence != 1.0 {
		t.Errorf("confidence = %v, want 1.0 when pattern hits exist", analysis.Confidence)
	}
}

func TestPHIAnalysisFallback(t *testing.T) {
	provider := &stubProvider{response: "no json here"}
	scorer := newTestScorer(provider)

	analysis := scorer.analyzePHI(context.Background(), "some text", nil)
	if analysis.Source != "fallback" {
		t.Errorf("source = %q, want fallback", analysis.Source)
	}
	if analysis.Confidence != 1.0 {
		t.Errorf("confidence = %v, want 1.0", analysis.Confidence)
	}
}

func TestRecommendationOrdering(t *testing.T) {
	scorer := newTestScorer(nil)
	report := scorer.Score(context.Background(), "Patient SSN: 123-45-6789 takes 20 mg of something.", "")

	if len(report.Recommendations) < 2 {
		t.Fatalf("expected multiple recommendations, got %d", len(report.Recommendations))
	}
	for i := 1; i < len(report.Recommendations); i++ {
		prev := model.SeverityRank(report.Recommendations[i-1].Severity)
		cur := model.SeverityRank(report.Recommendations[i].Severity)
		if prev > cur {
			t.Errorf("recommendations out of severity order at %d: %s before %s",
				i, report.Recommendations[i-1].Severity, report.Recommendations[i].Severity)
		}
	}
}

func TestStatusForScore(t *testing.T) {
	tests := []struct {
		score int
		want  model.ComplianceStatus
	}{
		{100, model.StatusFullyCompliant},
		{95, model.StatusFullyCompliant},
		{94, model.StatusMostlyCompliant},
		{80, model.StatusMostlyCompliant},
		{79, model.StatusPartiallyCompliant},
		{60, model.StatusPartiallyCompliant},
		{59, model.StatusMarginallyCompliant},
		{40, model.StatusMarginallyCompliant},
		{39, model.StatusNonCompliant},
		{0, model.StatusNonCompliant},
	}
	for _, tt := range tests {
		if got := statusForScore(tt.score); got != tt.want {
			t.Errorf("statusForScore(%d) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

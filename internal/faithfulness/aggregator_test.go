package faithfulness

import (
	"strings"
	"testing"

	"github.com/deadly-nightshade/medguard/internal/model"
)

func verdict(status model.VerdictStatus, confidence int) model.ClaimVerdict {
	return model.ClaimVerdict{Claim: "test claim", Status: status, Confidence: confidence}
}

func TestAggregateNoClaims(t *testing.T) {
	agg := NewAggregator()
	report := agg.Aggregate(nil, nil, nil)

	if report.ConfidenceScore != 100 {
		t.Errorf("expected baseline confidence 100, got %d", report.ConfidenceScore)
	}
	if report.RiskLevel != model.RiskLow {
		t.Errorf("expected LOW risk, got %s", report.RiskLevel)
	}
	if report.ClaimVerdicts == nil || report.Citations == nil {
		t.Error("expected non-nil slices in report")
	}
	if report.TotalIssues != 0 {
		t.Errorf("expected 0 issues, got %d", report.TotalIssues)
	}
}

func TestAggregateConfidence(t *testing.T) {
	tests := []struct {
		name     string
		verdicts []model.ClaimVerdict
		want     int
	}{
		{
			name: "plain average",
			verdicts: []model.ClaimVerdict{
				verdict(model.VerdictNotAddressed, 40),
				verdict(model.VerdictNotAddressed, 60),
			},
			want: 50,
		},
		{
			name: "contradiction penalty",
			verdicts: []model.ClaimVerdict{
				verdict(model.VerdictContradicted, 80),
				verdict(model.VerdictNotAddressed, 60),
			},
			want: 45, // avg 70 - 25
		},
		{
			name: "penalty floors at zero",
			verdicts: []model.ClaimVerdict{
				verdict(model.VerdictContradicted, 10),
				verdict(model.VerdictContradicted, 10),
			},
			want: 0,
		},
		{
			name: "support bonus",
			verdicts: []model.ClaimVerdict{
				verdict(model.VerdictSupported, 80),
				verdict(model.VerdictSupported, 80),
				verdict(model.VerdictSupported, 80),
				verdict(model.VerdictNotAddressed, 40),
			},
			want: 80, // avg 70 + 10, 3/4 supported
		},
		{
			name: "support bonus caps at 100",
			verdicts: []model.ClaimVerdict{
				verdict(model.VerdictSupported, 95),
				verdict(model.VerdictSupported, 99),
			},
			want: 100,
		},
		{
			name: "below seventy percent support gets no bonus",
			verdicts: []model.ClaimVerdict{
				verdict(model.VerdictSupported, 80),
				verdict(model.VerdictNotAddressed, 80),
			},
			want: 80,
		},
	}

	agg := NewAggregator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := agg.Aggregate(tt.verdicts, nil, nil)
			if report.ConfidenceScore != tt.want {
				t.Errorf("confidence = %d, want %d", report.ConfidenceScore, tt.want)
			}
		})
	}
}

func TestAggregateIssueDerivation(t *testing.T) {
	verdicts := []model.ClaimVerdict{
		verdict(model.VerdictContradicted, 80),
		verdict(model.VerdictNoSearchResults, 0),
		verdict(model.VerdictError, 0),
		verdict(model.VerdictSupported, 90),
	}

	report := NewAggregator().Aggregate(verdicts, nil, nil)
	if report.TotalIssues != 3 {
		t.Fatalf("expected 3 issues, got %d", report.TotalIssues)
	}

	wantTypes := []string{"Contradicted Claim", "Unverifiable Claim", "Verification Error"}
	for i, want := range wantTypes {
		if report.Issues[i].Type != want {
			t.Errorf("issue %d: type = %q, want %q", i, report.Issues[i].Type, want)
		}
		if report.Issues[i].RiskLevel != model.RiskHigh {
			t.Errorf("issue %d: risk = %s, want HIGH", i, report.Issues[i].RiskLevel)
		}
	}
	if report.RiskLevel != model.RiskHigh {
		t.Errorf("report risk = %s, want HIGH", report.RiskLevel)
	}
}

func TestRiskLevelOrdering(t *testing.T) {
	critical := []model.Issue{{RiskLevel: model.RiskCritical}}
	high := []model.Issue{{RiskLevel: model.RiskHigh}}
	medium := []model.Issue{{RiskLevel: model.RiskMedium}}

	tests := []struct {
		name       string
		confidence int
		issues     []model.Issue
		want       model.RiskLevel
	}{
		{"critical issue dominates", 100, critical, model.RiskCritical},
		{"high issue dominates confidence", 100, high, model.RiskHigh},
		{"medium issue with decent confidence", 50, medium, model.RiskMedium},
		{"medium issue with low confidence escalates", 30, medium, model.RiskHigh},
		{"no issues high confidence", 85, nil, model.RiskLow},
		{"no issues medium confidence", 60, nil, model.RiskMedium},
		{"no issues low confidence", 30, nil, model.RiskHigh},
		{"no issues very low confidence", 10, nil, model.RiskCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := riskLevel(tt.confidence, tt.issues); got != tt.want {
				t.Errorf("riskLevel(%d) = %s, want %s", tt.confidence, got, tt.want)
			}
		})
	}
}

func TestHeuristicIssues(t *testing.T) {
	text := "Studies show that aspirin always prevents strokes in 94.73% of patients."
	issues := HeuristicIssues(text)
	if len(issues) != 3 {
		t.Fatalf("expected 3 issues, got %d", len(issues))
	}

	byType := map[string]model.Issue{}
	for _, issue := range issues {
		byType[issue.Type] = issue
	}

	if issue, ok := byType["Fabricated Details"]; !ok {
		t.Error("missing Fabricated Details issue")
	} else if !strings.Contains(issue.Evidence, "94.73%") {
		t.Errorf("evidence = %q, want the precise statistic", issue.Evidence)
	}

	if issue, ok := byType["Unverifiable References"]; !ok {
		t.Error("missing Unverifiable References issue")
	} else if issue.RiskLevel != model.RiskHigh {
		t.Errorf("risk = %s, want HIGH", issue.RiskLevel)
	}

	if issue, ok := byType["Unsupported Claims"]; !ok {
		t.Error("missing Unsupported Claims issue")
	} else if issue.RiskLevel != model.RiskMedium {
		t.Errorf("risk = %s, want MEDIUM", issue.RiskLevel)
	}
}

func TestHeuristicIssuesCleanText(t *testing.T) {
	if issues := HeuristicIssues("Take acetaminophen as directed by your clinician."); len(issues) != 0 {
		t.Errorf("expected no issues, got %d", len(issues))
	}
	if issues := HeuristicIssues(""); len(issues) != 0 {
		t.Errorf("expected no issues for empty text, got %d", len(issues))
	}
}

func TestAggregateMergesHeuristicIssues(t *testing.T) {
	heuristic := HeuristicIssues("Research proves this never causes harm.")
	verdicts := []model.ClaimVerdict{verdict(model.VerdictSupported, 90)}

	report := NewAggregator().Aggregate(verdicts, heuristic, nil)
	if report.TotalIssues != len(heuristic) {
		t.Errorf("expected %d issues, got %d", len(heuristic), report.TotalIssues)
	}
	if report.RiskLevel != model.RiskHigh {
		t.Errorf("risk = %s, want HIGH", report.RiskLevel)
	}
}

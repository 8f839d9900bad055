package patterns

import (
	"reflect"
	"testing"

	"github.com/deadly-nightshade/medguard/internal/model"
)

func findViolation(violations []model.PatternViolation, t model.ViolationType) *model.PatternViolation {
	for i := range violations {
		if violations[i].Type == t {
			return &violations[i]
		}
	}
	return nil
}

func TestScan_SSN(t *testing.T) {
	s := NewScanner()

	violations := s.Scan("Patient SSN: 123-45-6789 on file.")

	if len(violations) != 1 {
		t.Fatalf("expected exactly 1 violation, got %d: %+v", len(violations), violations)
	}
	v := violations[0]
	if v.Type != model.ViolationSSN {
		t.Errorf("type = %s, want ssn", v.Type)
	}
	if v.Severity != model.SeverityHigh {
		t.Errorf("severity = %s, want HIGH", v.Severity)
	}
	if v.Count != 1 || v.Matches[0] != "123-45-6789" {
		t.Errorf("matches = %v", v.Matches)
	}
}

func TestScan_MultipleTypes(t *testing.T) {
	s := NewScanner()

	text := "Call 555-123-4567 or email jane.doe@example.com. MRN: 884422. Seen on 03/14/2024 at 12 Elm Street."
	violations := s.Scan(text)

	wantTypes := map[model.ViolationType]model.Severity{
		model.ViolationPhoneNumber:   model.SeverityMedium,
		model.ViolationEmail:         model.SeverityMedium,
		model.ViolationMedicalRecord: model.SeverityHigh,
		model.ViolationDate:          model.SeverityMedium,
		model.ViolationAddress:       model.SeverityMedium,
	}

	for wt, ws := range wantTypes {
		v := findViolation(violations, wt)
		if v == nil {
			t.Errorf("expected a %s violation", wt)
			continue
		}
		if v.Severity != ws {
			t.Errorf("%s severity = %s, want %s", wt, v.Severity, ws)
		}
	}
}

func TestScan_AgeOver89(t *testing.T) {
	s := NewScanner()

	if v := findViolation(s.Scan("The patient is 92 years old."), model.ViolationAgeOver89); v == nil {
		t.Error("expected age_over_89 violation for a 92 year old")
	}
	if v := findViolation(s.Scan("The patient is 45 years old."), model.ViolationAgeOver89); v != nil {
		t.Error("did not expect age_over_89 violation for a 45 year old")
	}
}

func TestScan_EmptyText(t *testing.T) {
	s := NewScanner()

	if violations := s.Scan(""); len(violations) != 0 {
		t.Errorf("expected no violations on empty text, got %v", violations)
	}
}

func TestScan_Idempotent(t *testing.T) {
	s := NewScanner()
	text := "SSN 123-45-6789, email a@b.org, IP 10.0.0.1, see https://example.com/page"

	first := s.Scan(text)
	second := s.Scan(text)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("scan is not idempotent:\nfirst  %+v\nsecond %+v", first, second)
	}
}

func TestQuasiIdentifiers_RiskLevels(t *testing.T) {
	s := NewScanner()

	tests := []struct {
		name      string
		text      string
		wantLevel model.Severity
		wantMin   int
	}{
		{
			name:      "no quasi identifiers",
			text:      "Take the medication with food.",
			wantLevel: model.SeverityLow,
			wantMin:   0,
		},
		{
			name:      "two categories",
			text:      "A 34-year-old female patient.",
			wantLevel: model.SeverityMedium,
			wantMin:   2,
		},
		{
			name:      "four categories",
			text:      "A 34-year-old hispanic female who works as a teacher, zip 303.",
			wantLevel: model.SeverityHigh,
			wantMin:   4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			risk := s.QuasiIdentifiers(tt.text)
			if risk.Level != tt.wantLevel {
				t.Errorf("level = %s, want %s (categories %v)", risk.Level, tt.wantLevel, risk.Categories)
			}
			if len(risk.Categories) < tt.wantMin {
				t.Errorf("categories = %v, want at least %d", risk.Categories, tt.wantMin)
			}
		})
	}
}

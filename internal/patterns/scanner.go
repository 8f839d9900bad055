package patterns

import (
	"regexp"

	"github.com/deadly-nightshade/medguard/internal/model"
)

// phiPattern is one named detector in the fixed, ordered PHI taxonomy
type phiPattern struct {
	violationType model.ViolationType
	expr          string
	severity      model.Severity
	remediation   string
	re            *regexp.Regexp
}

// quasiPattern is one quasi-identifier category detector
type quasiPattern struct {
	category string
	expr     string
	re       *regexp.Regexp
}

// Scanner is a stateless detector for PHI-like tokens and quasi-identifier
// combinations. Scanning the same text twice yields identical results.
type Scanner struct {
	phi   []phiPattern
	quasi []quasiPattern
}

// NewScanner compiles the detector set. A pattern that fails to compile is
// skipped so one bad expression never disables the others.
func NewScanner() *Scanner {
	phi := []phiPattern{
		{
			violationType: model.ViolationPhoneNumber,
			expr:          `\b\d{3}[-.]?\d{3}[-.]?\d{4}\b`,
			severity:      model.SeverityMedium,
			remediation:   "Remove or mask telephone numbers",
		},
		{
			violationType: model.ViolationSSN,
			expr:          `\b\d{3}-\d{2}-\d{4}\b`,
			severity:      model.SeverityHigh,
			remediation:   "Remove Social Security numbers immediately",
		},
		{
			violationType: model.ViolationEmail,
			expr:          `\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`,
			severity:      model.SeverityMedium,
			remediation:   "Remove or mask email addresses",
		},
		{
			violationType: model.ViolationDate,
			expr:          `\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`,
			severity:      model.SeverityMedium,
			remediation:   "Generalize dates to year or remove them",
		},
		{
			violationType: model.ViolationMedicalRecord,
			expr:          `(?i)\b(?:MR|MRN)[:\s]*\d+\b`,
			severity:      model.SeverityHigh,
			remediation:   "Remove medical record numbers",
		},
		{
			violationType: model.ViolationAddress,
			expr:          `\b\d+\s+[A-Za-z\s]+(?:Street|St|Avenue|Ave|Road|Rd|Boulevard|Blvd)\b`,
			severity:      model.SeverityMedium,
			remediation:   "Remove street addresses; keep geography at state level or above",
		},
		{
			violationType: model.ViolationZipCode,
			expr:          `\b\d{5}(?:-\d{4})?\b`,
			severity:      model.SeverityLow,
			remediation:   "Truncate ZIP codes to the first three digits or remove them",
		},
		{
			violationType: model.ViolationIPAddress,
			expr:          `\b(?:\d{1,3}\.){3}\d{1,3}\b`,
			severity:      model.SeverityMedium,
			remediation:   "Remove IP addresses",
		},
		{
			violationType: model.ViolationURL,
			expr:          `https?://[^\s)>\]]+`,
			severity:      model.SeverityLow,
			remediation:   "Review URLs for patient-identifying paths or parameters",
		},
		{
			violationType: model.ViolationAgeOver89,
			expr:          `(?i)\b(?:9\d|1[0-4]\d)\s*(?:-?\s*years?\s*-?\s*old|y/?o)\b`,
			severity:      model.SeverityHigh,
			remediation:   "Aggregate ages over 89 into a single 90+ category",
		},
	}

	quasi := []quasiPattern{
		{category: "age", expr: `(?i)\b\d{1,3}\s*(?:-?\s*years?\s*-?\s*old|y/?o)\b`},
		{category: "gender", expr: `(?i)\b(?:male|female|man|woman|non-?binary)\b`},
		{category: "race_ethnicity", expr: `(?i)\b(?:caucasian|african[- ]american|asian|hispanic|latino|latina|native american|pacific islander)\b`},
		{category: "occupation", expr: `(?i)\b(?:teacher|nurse|engineer|lawyer|accountant|farmer|pilot|police officer|firefighter|electrician|plumber)\b`},
		{category: "zip3", expr: `(?i)\bzip(?:\s*code)?[:\s]+\d{3}\b`},
	}

	s := &Scanner{}
	for _, p := range phi {
		re, err := regexp.Compile(p.expr)
		if err != nil {
			continue
		}
		p.re = re
		s.phi = append(s.phi, p)
	}
	for _, q := range quasi {
		re, err := regexp.Compile(q.expr)
		if err != nil {
			continue
		}
		q.re = re
		s.quasi = append(s.quasi, q)
	}
	return s
}

// Scan evaluates every PHI detector against the text and returns one
// violation per matching type, in taxonomy order
func (s *Scanner) Scan(text string) []model.PatternViolation {
	var violations []model.PatternViolation
	if text == "" {
		return violations
	}

	for _, p := range s.phi {
		matches := p.re.FindAllString(text, -1)
		if len(matches) == 0 {
			continue
		}
		violations = append(violations, model.PatternViolation{
			Type:        p.violationType,
			Matches:     matches,
			Count:       len(matches),
			Severity:    p.severity,
			Remediation: p.remediation,
		})
	}

	return violations
}

// QuasiIdentifiers reports which quasi-identifier categories appear in the
// text and the derived re-identification risk: >=4 distinct categories is
// HIGH, >=2 is MEDIUM, otherwise LOW.
func (s *Scanner) QuasiIdentifiers(text string) model.QuasiIdentifierRisk {
	risk := model.QuasiIdentifierRisk{Level: model.SeverityLow}
	if text == "" {
		return risk
	}

	for _, q := range s.quasi {
		if q.re.MatchString(text) {
			risk.Categories = append(risk.Categories, q.category)
		}
	}

	switch {
	case len(risk.Categories) >= 4:
		risk.Level = model.SeverityHigh
	case len(risk.Categories) >= 2:
		risk.Level = model.SeverityMedium
	}

	return risk
}

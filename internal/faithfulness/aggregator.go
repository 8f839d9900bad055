package faithfulness

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/deadly-nightshade/medguard/internal/model"
)

// Tunable calibration constants for the confidence computation. Kept in one
// place; they are ad hoc weights, not derived values.
const (
	contradictionPenalty = 25
	supportBonus         = 10
	supportBonusRatio    = 0.7
	noClaimsBaseline     = 100
)

// Aggregator fuses per-claim verdicts, heuristic pattern findings, and
// citation assessments into a single bounded confidence score and ordinal
// risk level
type Aggregator struct{}

// NewAggregator creates a new aggregator
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Aggregate builds the hallucination report. Every field is populated even
// when the inputs are empty.
func (a *Aggregator) Aggregate(verdicts []model.ClaimVerdict, heuristicIssues []model.Issue, citationList []model.CitationAssessment) model.HallucinationReport {
	confidence, reasoning := a.confidence(verdicts)

	issues := a.deriveIssues(verdicts)
	issues = append(issues, heuristicIssues...)

	if verdicts == nil {
		verdicts = []model.ClaimVerdict{}
	}
	if citationList == nil {
		citationList = []model.CitationAssessment{}
	}

	return model.HallucinationReport{
		ConfidenceScore: confidence,
		Reasoning:       reasoning,
		Issues:          issues,
		Citations:       citationList,
		ClaimVerdicts:   verdicts,
		RiskLevel:       riskLevel(confidence, issues),
		TotalIssues:     len(issues),
		TotalCitations:  len(citationList),
	}
}

// confidence averages per-claim confidences, penalizes contradictions, and
// rewards a broadly supported claim set. The result stays in [0,100].
func (a *Aggregator) confidence(verdicts []model.ClaimVerdict) (int, string) {
	if len(verdicts) == 0 {
		return noClaimsBaseline, "No checkable claims were found in the output"
	}

	sum := 0
	supported := 0
	contradicted := 0
	for _, v := range verdicts {
		sum += v.Confidence
		switch v.Status {
		case model.VerdictSupported:
			supported++
		case model.VerdictContradicted:
			contradicted++
		}
	}

	confidence := sum / len(verdicts)
	confidence -= contradicted * contradictionPenalty
	if confidence < 0 {
		confidence = 0
	}
	if float64(supported)/float64(len(verdicts)) >= supportBonusRatio {
		confidence += supportBonus
		if confidence > 100 {
			confidence = 100
		}
	}

	reasoning := fmt.Sprintf("Verified %d claims: %d supported, %d contradicted", len(verdicts), supported, contradicted)
	return confidence, reasoning
}

// deriveIssues turns problem verdicts into report issues
func (a *Aggregator) deriveIssues(verdicts []model.ClaimVerdict) []model.Issue {
	var issues []model.Issue

	for _, v := range verdicts {
		switch v.Status {
		case model.VerdictContradicted:
			issues = append(issues, model.Issue{
				Type:        "Contradicted Claim",
				Description: "A claim in the output disagrees with retrieved evidence",
				Evidence:    v.Claim,
				RiskLevel:   model.RiskHigh,
				Explanation: v.Evidence,
			})
		case model.VerdictNoSearchResults:
			issues = append(issues, model.Issue{
				Type:        "Unverifiable Claim",
				Description: "No external evidence could be located for a claim",
				Evidence:    v.Claim,
				RiskLevel:   model.RiskHigh,
				Explanation: "Claims without any findable sources are a fabrication red flag",
			})
		case model.VerdictError:
			issues = append(issues, model.Issue{
				Type:        "Verification Error",
				Description: "Claim verification did not complete",
				Evidence:    v.Claim,
				RiskLevel:   model.RiskHigh,
				Explanation: v.Evidence,
			})
		}
	}

	return issues
}

// riskLevel maps (confidence, issues) to an ordinal risk. The checks are
// ordered: issue severity dominates, confidence buckets decide the rest.
func riskLevel(confidence int, issues []model.Issue) model.RiskLevel {
	hasCritical := false
	hasHigh := false
	hasMedium := false
	for _, issue := range issues {
		switch issue.RiskLevel {
		case model.RiskCritical:
			hasCritical = true
		case model.RiskHigh:
			hasHigh = true
		case model.RiskMedium:
			hasMedium = true
		}
	}

	switch {
	case hasCritical:
		return model.RiskCritical
	case hasHigh:
		return model.RiskHigh
	case hasMedium:
		if confidence >= 40 {
			return model.RiskMedium
		}
		return model.RiskHigh
	case confidence >= 85:
		return model.RiskLow
	case confidence >= 60:
		return model.RiskMedium
	case confidence >= 30:
		return model.RiskHigh
	default:
		return model.RiskCritical
	}
}

// Fallback hallucination heuristics used when, and alongside, model-based
// analysis: suspiciously precise numbers, vague study references, and
// absolute causal statements.
var (
	preciseStatsRe = regexp.MustCompile(`\b\d+\.\d{2,}%|\b\d+\.\d{3,}`)
	vagueStudyRe   = regexp.MustCompile(`(?i)\b(?:studies show|research proves|experts say|according to studies)\b`)
	absoluteRe     = regexp.MustCompile(`(?i)\b(?:always|never|all|every|none)\s+(?:causes?|leads? to|results? in|prevents?)\b`)
)

// HeuristicIssues pattern-detects hallucination red flags directly in the
// text, independent of any model call
func HeuristicIssues(text string) []model.Issue {
	var issues []model.Issue
	if text == "" {
		return issues
	}

	if matches := preciseStatsRe.FindAllString(text, -1); len(matches) > 0 {
		issues = append(issues, model.Issue{
			Type:        "Fabricated Details",
			Description: "Contains suspiciously precise statistics or numbers",
			Evidence:    strings.Join(capMatches(matches, 3), ", "),
			RiskLevel:   model.RiskHigh,
			Explanation: "Precise numbers without proper sourcing often indicate fabrication",
		})
	}

	if matches := vagueStudyRe.FindAllString(text, -1); len(matches) > 0 {
		issues = append(issues, model.Issue{
			Type:        "Unverifiable References",
			Description: "References vague studies or experts without proper citation",
			Evidence:    strings.Join(capMatches(matches, 3), ", "),
			RiskLevel:   model.RiskHigh,
			Explanation: "Vague references to studies without specific citations are red flags",
		})
	}

	if matches := absoluteRe.FindAllString(text, -1); len(matches) > 0 {
		issues = append(issues, model.Issue{
			Type:        "Unsupported Claims",
			Description: "Makes absolute statements about medical effects",
			Evidence:    strings.Join(capMatches(matches, 2), ", "),
			RiskLevel:   model.RiskMedium,
			Explanation: "Absolute medical statements are rarely accurate and often indicate oversimplification",
		})
	}

	return issues
}

func capMatches(matches []string, n int) []string {
	if len(matches) > n {
		return matches[:n]
	}
	return matches
}

package faithfulness

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/deadly-nightshade/medguard/internal/llm"
	"github.com/deadly-nightshade/medguard/internal/model"
)

// maxDocumentChars bounds how much source-document text goes into the
// detection prompt.
const maxDocumentChars = 800

const detectPrompt = `Analyze this AI response for hallucination issues.

Response: %q
Source documents: %q

Look for these patterns across the entire response:
1. Fabricated Details: specific facts, statistics, or details that appear made up
2. Unsupported Claims: statements not backed by the source documents
3. Contradictory Information: facts that contradict the source material
4. Unverifiable References: citations to studies, experts, or sources that cannot be verified
5. Overly Specific Information: suspiciously precise data without proper backing

Report only issues actually found. Return ONLY a JSON array, each element:
{"issue_type": "<short label>", "description": "<brief>", "evidence": "<examples from the text>", "risk_level": "LOW|MEDIUM|HIGH|CRITICAL", "explanation": "<why this is concerning>"}`

// IssueDetector finds hallucination issues in an output, preferring the
// judgment model and degrading to pure pattern heuristics when the model is
// unavailable or returns no parseable JSON.
type IssueDetector struct {
	provider llm.Provider
	log      *logrus.Entry
}

// NewIssueDetector creates a detector. provider may be nil; detection then
// always uses the pattern heuristics.
func NewIssueDetector(provider llm.Provider) *IssueDetector {
	return &IssueDetector{
		provider: provider,
		log:      logrus.WithField("component", "faithfulness"),
	}
}

// Detect returns the issues found in output, judged against the optional
// source documents
func (d *IssueDetector) Detect(ctx context.Context, output, documents string) []model.Issue {
	if output == "" {
		return nil
	}
	if d.provider == nil {
		return HeuristicIssues(output)
	}

	docs := documents
	if docs == "" {
		docs = "No sources provided"
	} else if len(docs) > maxDocumentChars {
		docs = docs[:maxDocumentChars]
	}

	raw, err := d.provider.Generate(ctx, fmt.Sprintf(detectPrompt, output, docs))
	if err != nil {
		d.log.WithError(err).Debug("issue detection model call failed, using pattern heuristics")
		return HeuristicIssues(output)
	}

	var parsed []struct {
		IssueType   string `json:"issue_type"`
		Description string `json:"description"`
		Evidence    string `json:"evidence"`
		RiskLevel   string `json:"risk_level"`
		Explanation string `json:"explanation"`
	}
	if !llm.ExtractJSON(raw, &parsed) {
		d.log.Debug("issue detection returned no parseable JSON, using pattern heuristics")
		return HeuristicIssues(output)
	}

	issues := make([]model.Issue, 0, len(parsed))
	for _, p := range parsed {
		issueType := p.IssueType
		if issueType == "" {
			issueType = "Unknown Issue"
		}
		issues = append(issues, model.Issue{
			Type:        issueType,
			Description: p.Description,
			Evidence:    p.Evidence,
			RiskLevel:   normalizeRisk(p.RiskLevel),
			Explanation: p.Explanation,
		})
	}
	return issues
}

func normalizeRisk(raw string) model.RiskLevel {
	level := model.RiskLevel(strings.ToUpper(strings.TrimSpace(raw)))
	switch level {
	case model.RiskLow, model.RiskMedium, model.RiskHigh, model.RiskCritical:
		return level
	default:
		return model.RiskMedium
	}
}

package citations

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/deadly-nightshade/medguard/internal/llm"
	"github.com/deadly-nightshade/medguard/internal/model"
)

// citationPatterns detect citation-like spans: author-year parentheticals,
// numbered brackets, DOIs, PubMed IDs, and bare URLs
var citationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\([^)]*\d{4}[^)]*\)`),
	regexp.MustCompile(`\[[^\]]*\d+[^\]]*\]`),
	regexp.MustCompile(`(?i)doi[:\s]*[^\s]+`),
	regexp.MustCompile(`(?i)PMID[:\s]*\d+`),
	regexp.MustCompile(`https?://[^\s)>\]]+`),
}

var (
	doiRe    = regexp.MustCompile(`(?i)doi[:\s]*([^\s]+)`)
	yearRe   = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	authorRe = regexp.MustCompile(`[A-Za-z]{3,}`)
)

const assessPrompt = `Evaluate this citation for academic/scientific validity:

Citation: %q
Context: %q

Assess completeness (author, year, title, source), format, verifiability,
and whether it fits the claim being made.

Return ONLY JSON:
{"completeness_score": <0-100>, "risk_level": "LOW|MEDIUM|HIGH", "assessment": "<brief assessment>", "explanation": "<why>"}`

// Checker finds citations in model output and assesses each one. All
// assessment paths return a well-formed result; model failures degrade to a
// deterministic middle-ground assessment.
type Checker struct {
	provider   llm.Provider
	httpClient *http.Client
	probeDOIs  bool
}

// NewChecker creates a citation checker. probeDOIs controls the network
// reachability probe against doi.org.
func NewChecker(provider llm.Provider, timeout time.Duration, probeDOIs bool) *Checker {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Checker{
		provider:   provider,
		httpClient: &http.Client{Timeout: timeout},
		probeDOIs:  probeDOIs,
	}
}

// FindCitations returns the unique citation-like spans in the text, in
// first-appearance order. Very short matches are dropped as noise.
func FindCitations(text string) []string {
	seen := make(map[string]bool)
	var found []string

	for _, re := range citationPatterns {
		for _, match := range re.FindAllString(text, -1) {
			match = strings.TrimSpace(match)
			if len(match) <= 3 || seen[match] {
				continue
			}
			seen[match] = true
			found = append(found, match)
		}
	}

	return found
}

// Check finds and assesses every citation in the text. Returns an empty
// slice when the output cites nothing.
func (c *Checker) Check(ctx context.Context, text string) []model.CitationAssessment {
	found := FindCitations(text)
	assessments := make([]model.CitationAssessment, 0, len(found))

	for _, citation := range found {
		assessment := c.Assess(ctx, citation, text)
		assessments = append(assessments, assessment)
	}

	return assessments
}

// Assess evaluates a single citation: a validity check (DOI probe or format
// heuristic) plus a model-based completeness assessment
func (c *Checker) Assess(ctx context.Context, citation, fullText string) model.CitationAssessment {
	assessment := model.CitationAssessment{
		Citation: citation,
		Validity: c.checkValidity(ctx, citation),
	}

	contextSnippet := fullText
	if len(contextSnippet) > 300 {
		contextSnippet = contextSnippet[:300]
	}

	if c.provider == nil {
		c.applyFallback(&assessment, "judgment model not configured")
		return assessment
	}

	raw, err := c.provider.Generate(ctx, fmt.Sprintf(assessPrompt, citation, contextSnippet))
	if err != nil {
		logrus.WithError(err).Debug("citation assessment model call failed")
		assessment.Assessment = "Citation analysis failed"
		assessment.RiskLevel = model.RiskHigh
		assessment.Explanation = "The judgment model was unavailable for this citation"
		assessment.CompletenessScore = 0
		return assessment
	}

	var parsed struct {
		CompletenessScore int    `json:"completeness_score"`
		RiskLevel         string `json:"risk_level"`
		Assessment        string `json:"assessment"`
		Explanation       string `json:"explanation"`
	}
	if !llm.ExtractJSON(raw, &parsed) {
		c.applyFallback(&assessment, snippetOf(raw))
		return assessment
	}

	assessment.CompletenessScore = clampScore(parsed.CompletenessScore)
	assessment.RiskLevel = normalizeRisk(parsed.RiskLevel)
	assessment.Assessment = parsed.Assessment
	assessment.Explanation = parsed.Explanation
	return assessment
}

// checkValidity probes DOIs against doi.org and falls back to a format
// heuristic for everything else
func (c *Checker) checkValidity(ctx context.Context, citation string) string {
	if m := doiRe.FindStringSubmatch(citation); m != nil && c.probeDOIs {
		doi := strings.Trim(m[1], ".,;")
		return c.probeDOI(ctx, doi)
	}

	hasYear := yearRe.MatchString(citation)
	hasAuthor := authorRe.MatchString(citation)
	switch {
	case hasYear && hasAuthor:
		return "format appears valid (author and year present)"
	case strings.Contains(strings.ToUpper(citation), "PMID"):
		return "PubMed identifier detected (not verified)"
	default:
		return "format unclear - manual verification recommended"
	}
}

func (c *Checker) probeDOI(ctx context.Context, doi string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, "https://doi.org/"+doi, nil)
	if err != nil {
		return "DOI probe failed"
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "DOI unreachable"
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 200 && resp.StatusCode < 400 {
		return "valid DOI (resolves)"
	}
	return fmt.Sprintf("invalid DOI (status %d)", resp.StatusCode)
}

func (c *Checker) applyFallback(assessment *model.CitationAssessment, detail string) {
	assessment.CompletenessScore = 50
	assessment.RiskLevel = model.RiskMedium
	assessment.Assessment = "Unable to fully assess citation"
	assessment.Explanation = detail
}

func normalizeRisk(s string) model.RiskLevel {
	switch model.RiskLevel(strings.ToUpper(strings.TrimSpace(s))) {
	case model.RiskLow:
		return model.RiskLow
	case model.RiskHigh:
		return model.RiskHigh
	case model.RiskCritical:
		return model.RiskCritical
	default:
		return model.RiskMedium
	}
}

func clampScore(s int) int {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}

func snippetOf(raw string) string {
	raw = strings.TrimSpace(raw)
	if len(raw) <= 200 {
		return raw
	}
	cut := 200
	for cut > 0 && !utf8.RuneStart(raw[cut]) {
		cut--
	}
	return raw[:cut]
}

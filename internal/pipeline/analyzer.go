package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/deadly-nightshade/medguard/internal/citations"
	"github.com/deadly-nightshade/medguard/internal/claims"
	"github.com/deadly-nightshade/medguard/internal/compliance"
	"github.com/deadly-nightshade/medguard/internal/faithfulness"
	"github.com/deadly-nightshade/medguard/internal/llm"
	"github.com/deadly-nightshade/medguard/internal/model"
	"github.com/deadly-nightshade/medguard/internal/patterns"
	"github.com/deadly-nightshade/medguard/internal/retrieve"
)

// Analyzer is the single entry point for one analysis request. It runs the
// hallucination and compliance branches concurrently and merges them into a
// combined assessment. Analyze never returns an error: internal failures
// surface as ErrorStatus fields inside the affected sub-report.
type Analyzer struct {
	extractor  *claims.Extractor
	verifier   *claims.Verifier
	checker    *citations.Checker
	detector   *faithfulness.IssueDetector
	aggregator *faithfulness.Aggregator
	scorer     *compliance.Scorer
	log        *logrus.Entry
}

// NewAnalyzer wires the full pipeline from configuration
func NewAnalyzer(cfg *model.Config) (*Analyzer, error) {
	provider, err := llm.NewProvider(cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("creating judgment model provider: %w", err)
	}

	searcher := retrieve.NewSearcher(cfg.Search)
	fetcher := retrieve.NewFetcher(cfg.HTTP)

	return &Analyzer{
		extractor:  claims.NewExtractor(provider),
		verifier:   claims.NewVerifier(searcher, fetcher, provider, cfg.Concurrency.VerifyWorkers),
		checker:    citations.NewChecker(provider, cfg.HTTP.Timeout, true),
		detector:   faithfulness.NewIssueDetector(provider),
		aggregator: faithfulness.NewAggregator(),
		scorer:     compliance.NewScorer(patterns.NewScanner(), provider),
		log:        logrus.WithField("component", "pipeline"),
	}, nil
}

// newAnalyzerFromParts is the test seam
func newAnalyzerFromParts(extractor *claims.Extractor, verifier *claims.Verifier, checker *citations.Checker, detector *faithfulness.IssueDetector, scorer *compliance.Scorer) *Analyzer {
	return &Analyzer{
		extractor:  extractor,
		verifier:   verifier,
		checker:    checker,
		detector:   detector,
		aggregator: faithfulness.NewAggregator(),
		scorer:     scorer,
		log:        logrus.WithField("component", "pipeline"),
	}
}

// Analyze runs both analysis branches over one (prompt, output, documents)
// triple and returns the full report envelope
func (a *Analyzer) Analyze(ctx context.Context, prompt, output, documents string) model.AnalysisReport {
	start := time.Now()

	var hallucination model.HallucinationReport
	var comp model.ComplianceReport
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		hallucination = a.AnalyzeHallucination(ctx, output, prompt, documents)
	}()
	go func() {
		defer wg.Done()
		comp = a.AnalyzeCompliance(ctx, output, prompt)
	}()
	wg.Wait()

	a.log.WithFields(logrus.Fields{
		"confidence":       hallucination.ConfidenceScore,
		"compliance_score": comp.Score,
		"duration":         time.Since(start).Round(time.Millisecond),
	}).Info("analysis completed")

	return model.AnalysisReport{
		Hallucination: hallucination,
		Compliance:    comp,
		Combined:      Combine(hallucination, comp),
		InputSummary: model.InputSummary{
			PromptLength: len(prompt),
			OutputLength: len(output),
			HasDocuments: documents != "",
		},
		Status:    "completed",
		Timestamp: time.Now().UTC(),
	}
}

// AnalyzeHallucination runs claim verification, issue detection, and
// citation checking, then aggregates them into the faithfulness report
func (a *Analyzer) AnalyzeHallucination(ctx context.Context, output, prompt, documents string) (report model.HallucinationReport) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Errorf("hallucination analysis panicked: %v", r)
			report = model.HallucinationReport{
				Reasoning:     "analysis did not complete",
				Issues:        []model.Issue{},
				Citations:     []model.CitationAssessment{},
				ClaimVerdicts: []model.ClaimVerdict{},
				RiskLevel:     model.RiskUnknown,
				ErrorStatus:   fmt.Sprintf("hallucination analysis failed: %v", r),
			}
		}
	}()

	claimList := a.extractor.Extract(ctx, output)
	verdicts := a.verifier.VerifyAll(ctx, claimList)
	issues := a.detector.Detect(ctx, output, documents)
	citationList := a.checker.Check(ctx, output)

	return a.aggregator.Aggregate(verdicts, issues, citationList)
}

// AnalyzeCompliance runs the compliance branch
func (a *Analyzer) AnalyzeCompliance(ctx context.Context, output, prompt string) (report model.ComplianceReport) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Errorf("compliance analysis panicked: %v", r)
			report = model.ComplianceReport{
				OverallStatus: model.StatusError,
				ErrorStatus:   fmt.Sprintf("compliance analysis failed: %v", r),
			}
		}
	}()

	return a.scorer.Score(ctx, output, prompt)
}

// Combine merges the two sub-reports into the overall advisory verdict
// using three independent boolean risk factors
func Combine(hallucination model.HallucinationReport, comp model.ComplianceReport) model.CombinedAssessment {
	var factors []string

	if hallucination.RiskLevel == model.RiskHigh || hallucination.RiskLevel == model.RiskCritical {
		factors = append(factors, fmt.Sprintf("High hallucination risk (%s)", hallucination.RiskLevel))
	}
	if comp.Score < 70 {
		factors = append(factors, fmt.Sprintf("Low compliance score (%d/100)", comp.Score))
	}
	if comp.OverallStatus == model.StatusNonCompliant || comp.OverallStatus == model.StatusPartiallyCompliant {
		factors = append(factors, fmt.Sprintf("Compliance status %s", comp.OverallStatus))
	}

	var overall model.RiskLevel
	var recommendation string
	switch {
	case len(factors) >= 2:
		overall = model.RiskHigh
		recommendation = "Do not release this output without human review and remediation of the listed risk factors"
	case len(factors) == 1:
		overall = model.RiskMedium
		recommendation = "Review the flagged risk factor before releasing this output"
	default:
		overall = model.RiskLow
		recommendation = "Output passed both analyses; routine review applies"
	}

	summary := fmt.Sprintf("Hallucination risk %s (confidence %d/100); compliance %s (score %d/100)",
		hallucination.RiskLevel, hallucination.ConfidenceScore, comp.OverallStatus, comp.Score)
	if len(factors) > 0 {
		summary += "; risk factors: " + strings.Join(factors, "; ")
	}

	return model.CombinedAssessment{
		OverallRiskLevel:  overall,
		RiskFactors:       factors,
		Recommendation:    recommendation,
		HallucinationRisk: hallucination.RiskLevel,
		ComplianceScore:   comp.Score,
		ComplianceStatus:  comp.OverallStatus,
		Summary:           summary,
	}
}

package claims

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/deadly-nightshade/medguard/internal/llm"
	"github.com/deadly-nightshade/medguard/internal/model"
)

// Searcher is the web-search capability: empty results on any failure,
// never an error
type Searcher interface {
	Search(ctx context.Context, query string) []model.SearchResult
}

// Fetcher is the URL-fetch capability: ok=false on any failure
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, bool)
}

const maxEvidenceFetches = 3

const classifyPrompt = `Classify whether the evidence supports this claim.

Claim: %q

Evidence from web sources:
%s

Classify the claim as exactly one of:
- SUPPORTED: the evidence confirms the claim
- CONTRADICTED: the evidence disagrees with the claim
- NOT_ADDRESSED: the evidence does not discuss the claim
- INSUFFICIENT_INFO: the evidence discusses the topic but cannot settle the claim

Return ONLY JSON in this shape:
{"status": "<one of the four>", "confidence": <0-100>, "evidence": "<short supporting excerpt>"}`

// Verifier resolves each claim through evidence retrieval and the judgment
// model. Every code path terminates in a well-formed verdict; no failure
// propagates past Verify.
type Verifier struct {
	searcher Searcher
	fetcher  Fetcher
	provider llm.Provider
	workers  int
}

// NewVerifier creates a claim verifier. workers bounds concurrent claim
// verification in VerifyAll.
func NewVerifier(searcher Searcher, fetcher Fetcher, provider llm.Provider, workers int) *Verifier {
	if workers <= 0 {
		workers = 3
	}
	return &Verifier{
		searcher: searcher,
		fetcher:  fetcher,
		provider: provider,
		workers:  workers,
	}
}

// VerifyAll verifies claims concurrently, bounded by the worker count.
// Verdicts are returned in claim order, not completion order.
func (v *Verifier) VerifyAll(ctx context.Context, claimList []model.Claim) []model.ClaimVerdict {
	if len(claimList) == 0 {
		return []model.ClaimVerdict{}
	}

	verdicts := make([]model.ClaimVerdict, len(claimList))
	semaphore := make(chan struct{}, v.workers)
	var wg sync.WaitGroup

	for i, claim := range claimList {
		wg.Add(1)
		go func(idx int, c model.Claim) {
			defer wg.Done()

			select {
			case <-ctx.Done():
				verdicts[idx] = errorVerdict(c, "verification cancelled")
				return
			case semaphore <- struct{}{}:
			}
			defer func() { <-semaphore }()

			verdicts[idx] = v.Verify(ctx, c)
		}(i, claim)
	}

	wg.Wait()
	return verdicts
}

// Verify resolves one claim to a verdict
func (v *Verifier) Verify(ctx context.Context, claim model.Claim) model.ClaimVerdict {
	results := v.searcher.Search(ctx, claim.Text)
	if len(results) == 0 {
		return model.ClaimVerdict{
			Claim:      claim.Text,
			Status:     model.VerdictNoSearchResults,
			Confidence: 0,
			Evidence:   "No search results found for this claim",
		}
	}

	evidence, sources := v.gatherEvidence(ctx, results)

	if v.provider == nil {
		return errorVerdict(claim, "judgment model not configured")
	}

	raw, err := v.provider.Generate(ctx, fmt.Sprintf(classifyPrompt, claim.Text, evidence))
	if err != nil {
		verdict := errorVerdict(claim, "judgment model unavailable")
		verdict.Sources = sources
		return verdict
	}

	verdict := v.parseVerdict(claim, raw)
	verdict.Sources = sources
	return verdict
}

// gatherEvidence fetches text from the top results, falling back to the
// search snippets when no page is retrievable
func (v *Verifier) gatherEvidence(ctx context.Context, results []model.SearchResult) (string, []string) {
	var docs []model.EvidenceDoc
	var sources []string

	for i, r := range results {
		if i >= maxEvidenceFetches {
			break
		}
		sources = append(sources, r.Link)
		if text, ok := v.fetcher.Fetch(ctx, r.Link); ok {
			docs = append(docs, model.EvidenceDoc{Title: r.Title, URL: r.Link, Excerpt: text})
		}
	}

	if len(docs) == 0 {
		for i, r := range results {
			if i >= maxEvidenceFetches {
				break
			}
			if r.Snippet != "" {
				docs = append(docs, model.EvidenceDoc{Title: r.Title, URL: r.Link, Excerpt: r.Snippet})
			}
		}
	}

	if len(docs) == 0 {
		return "(evidence pages unavailable)", sources
	}

	parts := make([]string, len(docs))
	for i, d := range docs {
		parts[i] = fmt.Sprintf("[%s] %s", d.Title, d.Excerpt)
	}
	return strings.Join(parts, "\n\n"), sources
}

type rawVerdict struct {
	Status     string `json:"status"`
	Confidence int    `json:"confidence"`
	Evidence   string `json:"evidence"`
}

// parseVerdict decodes the model's structured answer, falling back to
// keyword sniffing of the raw text when parsing fails
func (v *Verifier) parseVerdict(claim model.Claim, raw string) model.ClaimVerdict {
	var parsed rawVerdict
	if llm.ExtractJSON(raw, &parsed) {
		if status, ok := normalizeStatus(parsed.Status); ok {
			return model.ClaimVerdict{
				Claim:      claim.Text,
				Status:     status,
				Confidence: clampConfidence(parsed.Confidence),
				Evidence:   parsed.Evidence,
			}
		}
	}

	lower := strings.ToLower(raw)
	switch {
	case strings.Contains(lower, "support") || strings.Contains(lower, "confirm"):
		return model.ClaimVerdict{Claim: claim.Text, Status: model.VerdictSupported, Confidence: 75, Evidence: snippetOf(raw)}
	case strings.Contains(lower, "contradict") || strings.Contains(lower, "disagree"):
		return model.ClaimVerdict{Claim: claim.Text, Status: model.VerdictContradicted, Confidence: 75, Evidence: snippetOf(raw)}
	default:
		return model.ClaimVerdict{Claim: claim.Text, Status: model.VerdictNotAddressed, Confidence: 30, Evidence: snippetOf(raw)}
	}
}

func normalizeStatus(s string) (model.VerdictStatus, bool) {
	switch model.VerdictStatus(strings.ToUpper(strings.TrimSpace(s))) {
	case model.VerdictSupported:
		return model.VerdictSupported, true
	case model.VerdictContradicted:
		return model.VerdictContradicted, true
	case model.VerdictNotAddressed:
		return model.VerdictNotAddressed, true
	case model.VerdictInsufficientInfo:
		return model.VerdictInsufficientInfo, true
	default:
		return "", false
	}
}

func clampConfidence(c int) int {
	if c < 0 {
		return 0
	}
	if c > 100 {
		return 100
	}
	return c
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

func errorVerdict(claim model.Claim, reason string) model.ClaimVerdict {
	return model.ClaimVerdict{
		Claim:      claim.Text,
		Status:     model.VerdictError,
		Confidence: 0,
		Evidence:   reason,
	}
}

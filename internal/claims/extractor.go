package claims

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/deadly-nightshade/medguard/internal/llm"
	"github.com/deadly-nightshade/medguard/internal/model"
)

// maxClaims bounds how many claims one analysis verifies
const maxClaims = 5

// fallbackKeywords select checkable sentences when the model path is
// unavailable or returns unparsable output
var fallbackKeywords = []string{
	"study", "research", "percent", "%", "cause", "prevent", "reduce", "increase",
}

const extractPrompt = `Extract up to 5 specific factual claims from this text that can be verified through web search.

Text: %q

Select claims that are:
- Statistics or numeric assertions
- Attributions to studies, experts, or organizations
- Causal or definitive statements about effects

Return ONLY a JSON array of claim strings, nothing else.`

// Extractor decomposes model output into a small set of checkable claims.
// The primary path asks the judgment model for a JSON array; the fallback
// is keyword-based sentence selection.
type Extractor struct {
	provider llm.Provider
}

// NewExtractor creates a new claim extractor. A nil provider is allowed and
// forces the keyword fallback.
func NewExtractor(provider llm.Provider) *Extractor {
	return &Extractor{provider: provider}
}

// Extract returns at most 5 claims from the text
func (e *Extractor) Extract(ctx context.Context, text string) []model.Claim {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	if e.provider != nil {
		raw, err := e.provider.Generate(ctx, fmt.Sprintf(extractPrompt, text))
		if err == nil {
			var extracted []string
			if llm.ExtractJSON(raw, &extracted) {
				return claimsFromStrings(extracted)
			}
			logrus.Debug("claim extraction returned unparsable output, using keyword fallback")
		} else {
			logrus.WithError(err).Debug("claim extraction model call failed, using keyword fallback")
		}
	}

	return e.fallbackExtract(text)
}

func claimsFromStrings(texts []string) []model.Claim {
	var claims []model.Claim
	for _, t := range texts {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		claims = append(claims, model.Claim{Text: t, Heuristic: "llm"})
		if len(claims) >= maxClaims {
			break
		}
	}
	return claims
}

// fallbackExtract keeps the first 3 sentences longer than 20 characters
// whose lowercase form contains a checkability keyword
func (e *Extractor) fallbackExtract(text string) []model.Claim {
	var claims []model.Claim

	for i, sentence := range SplitSentences(text) {
		if len(sentence) <= 20 {
			continue
		}
		lower := strings.ToLower(sentence)
		for _, keyword := range fallbackKeywords {
			if strings.Contains(lower, keyword) {
				claims = append(claims, model.Claim{
					Text:      sentence,
					Heuristic: "keyword:" + keyword,
					Sentence:  i,
				})
				break // only match once per sentence
			}
		}
		if len(claims) >= 3 {
			break
		}
	}

	return claims
}

// SplitSentences splits text into sentences on terminators followed by
// whitespace (simple heuristic, avoids splitting on abbreviations mid-token)
func SplitSentences(text string) []string {
	text = strings.ReplaceAll(text, "\n", " ")

	var sentences []string
	var current strings.Builder

	for i, r := range text {
		current.WriteRune(r)

		if r == '.' || r == '!' || r == '?' {
			if i+1 >= len(text) || text[i+1] == ' ' || text[i+1] == '\t' {
				if sentence := strings.TrimSpace(current.String()); sentence != "" {
					sentences = append(sentences, sentence)
				}
				current.Reset()
			}
		}
	}

	if sentence := strings.TrimSpace(current.String()); sentence != "" {
		sentences = append(sentences, sentence)
	}

	return sentences
}

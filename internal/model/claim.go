package model

// Claim represents a checkable factual assertion extracted from model output
type Claim struct {
	Text      string `json:"text"`                // The claim text itself
	Heuristic string `json:"heuristic,omitempty"` // Which extraction path produced it (e.g., "llm", "keyword:study")
	Sentence  int    `json:"sentence,omitempty"`  // Sentence index in the output (0-based)
}

// VerdictStatus classifies the outcome of verifying one claim
type VerdictStatus string

const (
	VerdictSupported        VerdictStatus = "SUPPORTED"
	VerdictContradicted     VerdictStatus = "CONTRADICTED"
	VerdictNotAddressed     VerdictStatus = "NOT_ADDRESSED"
	VerdictInsufficientInfo VerdictStatus = "INSUFFICIENT_INFO"
	VerdictNoSearchResults  VerdictStatus = "NO_SEARCH_RESULTS"
	VerdictError            VerdictStatus = "VERIFICATION_ERROR"
)

// ClaimVerdict is the result of verifying one claim against external
// evidence. Confidence is always in [0,100] and Status is always one of the
// enumerated values; failures produce VerdictError rather than an absent
// verdict.
type ClaimVerdict struct {
	Claim      string        `json:"claim"`
	Status     VerdictStatus `json:"status"`
	Confidence int           `json:"confidence"`
	Evidence   string        `json:"evidence,omitempty"`
	Sources    []string      `json:"sources,omitempty"`
}

// SearchResult is one hit from the web-search capability
type SearchResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet,omitempty"`
}

// EvidenceDoc is a retrieved external document fragment. It is owned by the
// verification that fetched it and discarded once the verdict is computed.
type EvidenceDoc struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Excerpt string `json:"excerpt"`
}

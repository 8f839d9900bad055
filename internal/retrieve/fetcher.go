package retrieve

import (
	"context"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"

	"github.com/deadly-nightshade/medguard/internal/model"
)

// Fetcher retrieves readable text from evidence URLs. Every failure mode
// (network, robots denial, non-2xx, unparsable body) returns ok=false; the
// caller treats an unavailable page as missing evidence, not an error.
type Fetcher struct {
	httpClient  *http.Client
	userAgent   string
	maxBytes    int64
	maxExcerpt  int
	limiter     *Limiter
	robots      *RobotsChecker
	checkRobots bool
}

// NewFetcher creates a new Fetcher from HTTP configuration
func NewFetcher(cfg model.HTTPConfig) *Fetcher {
	maxExcerpt := cfg.MaxExcerptChars
	if maxExcerpt <= 0 {
		maxExcerpt = 2000
	}
	maxBytes := cfg.MaxBodyBytes
	if maxBytes <= 0 {
		maxBytes = 2_000_000
	}

	return &Fetcher{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
		userAgent:   cfg.UserAgent,
		maxBytes:    maxBytes,
		maxExcerpt:  maxExcerpt,
		limiter:     NewLimiter(cfg.RequestsPerSecond, cfg.Burst),
		robots:      NewRobotsChecker(cfg.UserAgent, cfg.Timeout),
		checkRobots: cfg.RespectRobots,
	}
}

// Fetch retrieves a URL's readable text: markup stripped, whitespace
// collapsed, truncated to the configured excerpt length
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, bool) {
	if rawURL == "" || !strings.HasPrefix(rawURL, "http") {
		return "", false
	}

	if f.checkRobots && !f.robots.CanFetch(ctx, rawURL) {
		logrus.WithField("url", rawURL).Debug("fetch disallowed by robots.txt")
		return "", false
	}

	if err := f.limiter.Wait(ctx, rawURL); err != nil {
		return "", false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", false
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		logrus.WithError(err).WithField("url", rawURL).Debug("evidence fetch failed")
		return "", false
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", false
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return "", false
	}

	text := ExtractReadableText(string(body))
	if text == "" {
		return "", false
	}

	return Truncate(text, f.maxExcerpt), true
}

// ExtractReadableText strips script/style markup from an HTML document and
// collapses runs of whitespace. Plain text passes through unchanged apart
// from whitespace collapsing.
func ExtractReadableText(content string) string {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return collapseWhitespace(content)
	}

	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
		}

		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return collapseWhitespace(buf.String())
}

// Truncate bounds text to max bytes without splitting a rune, and without
// splitting a word when a space is close to the cut
func Truncate(text string, max int) string {
	if max <= 0 || len(text) <= max {
		return text
	}

	cut := max
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}

	truncated := text[:cut]
	if idx := strings.LastIndexByte(truncated, ' '); idx > max/2 {
		truncated = truncated[:idx]
	}
	return truncated
}

func collapseWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

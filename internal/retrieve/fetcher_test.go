package retrieve

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/deadly-nightshade/medguard/internal/model"
)

func testHTTPConfig() model.HTTPConfig {
	return model.HTTPConfig{
		Timeout:           5 * time.Second,
		UserAgent:         "medguard-test",
		MaxBodyBytes:      1_000_000,
		MaxExcerptChars:   2000,
		RequestsPerSecond: 100,
		Burst:             100,
		RespectRobots:     false,
	}
}

func TestFetch_StripsMarkupAndCollapsesWhitespace(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><head><script>alert("x")</script><style>p{}</style></head>
<body><p>Warfarin   requires
regular    monitoring.</p></body></html>`))
	}))
	defer server.Close()

	f := NewFetcher(testHTTPConfig())
	text, ok := f.Fetch(context.Background(), server.URL)
	if !ok {
		t.Fatal("expected fetch to succeed")
	}

	if strings.Contains(text, "alert") || strings.Contains(text, "p{}") {
		t.Errorf("script/style content leaked into %q", text)
	}
	if !strings.Contains(text, "Warfarin requires regular monitoring.") {
		t.Errorf("text = %q, want collapsed sentence", text)
	}
}

func TestFetch_TruncatesToExcerptLength(t *testing.T) {
	long := strings.Repeat("evidence ", 1000)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body>" + long + "</body></html>"))
	}))
	defer server.Close()

	cfg := testHTTPConfig()
	cfg.MaxExcerptChars = 200

	f := NewFetcher(cfg)
	text, ok := f.Fetch(context.Background(), server.URL)
	if !ok {
		t.Fatal("expected fetch to succeed")
	}
	if len(text) > 200 {
		t.Errorf("len = %d, want <= 200", len(text))
	}
}

func TestFetch_FailureModes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	f := NewFetcher(testHTTPConfig())

	if _, ok := f.Fetch(context.Background(), server.URL); ok {
		t.Error("expected fetch of a 404 page to report unavailable")
	}
	if _, ok := f.Fetch(context.Background(), "not-a-url"); ok {
		t.Error("expected fetch of a malformed URL to report unavailable")
	}
	if _, ok := f.Fetch(context.Background(), ""); ok {
		t.Error("expected fetch of an empty URL to report unavailable")
	}
}

func TestExtractReadableText_PlainText(t *testing.T) {
	got := ExtractReadableText("plain  text\n\twith   gaps")
	if got != "plain text with gaps" {
		t.Errorf("got %q", got)
	}
}

func TestSearcher_EmptyQuery(t *testing.T) {
	s := NewSearcher(model.SearchConfig{MaxResults: 3, Timeout: time.Second})
	if results := s.Search(context.Background(), ""); len(results) != 0 {
		t.Errorf("expected no results for empty query, got %v", results)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 100); got != "short" {
		t.Errorf("got %q", got)
	}
	got := Truncate("one two three four five", 12)
	if len(got) > 12 {
		t.Errorf("len = %d, want <= 12", len(got))
	}
	if strings.HasSuffix(got, " ") {
		t.Errorf("trailing space in %q", got)
	}
}

func TestTruncate_NeverSplitsRunes(t *testing.T) {
	text := strings.Repeat("µ", 20) // 2 bytes each
	for max := 1; max <= len(text); max++ {
		got := Truncate(text, max)
		if !utf8.ValidString(got) {
			t.Fatalf("max=%d produced invalid UTF-8: %q", max, got)
		}
		if len(got) > max {
			t.Fatalf("max=%d, len = %d", max, len(got))
		}
	}
}

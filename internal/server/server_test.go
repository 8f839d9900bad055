package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/deadly-nightshade/medguard/internal/model"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := model.DefaultConfig()
	cfg.LLM.Provider = "" // no judgment model: every analysis uses its fallback path

	s, err := NewServer(cfg)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return s
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	router := newTestServer(t).Router()
	w := doJSON(t, router, http.MethodGet, "/healthz", nil)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestReportRequiresFields(t *testing.T) {
	router := newTestServer(t).Router()

	w := doJSON(t, router, http.MethodPost, "/api/report", map[string]string{"llm_output": "text"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing prompt: status = %d, want 400", w.Code)
	}

	w = doJSON(t, router, http.MethodPost, "/api/report", map[string]string{"original_prompt": "q"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing output: status = %d, want 400", w.Code)
	}
}

func TestReportRoundTrip(t *testing.T) {
	s := newTestServer(t)
	router := s.Router()

	w := doJSON(t, router, http.MethodPost, "/api/report", map[string]string{
		"original_prompt": "How should I rest after a cold?",
		"llm_output":      "Rest well and drink plenty of fluids.",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var report model.AnalysisReport
	if err := json.Unmarshal(w.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.ID == "" {
		t.Error("expected report_id")
	}
	if report.Status != "completed" {
		t.Errorf("status = %q", report.Status)
	}
	if report.Compliance.Score != 100 {
		t.Errorf("compliance score = %d, want 100", report.Compliance.Score)
	}

	w = doJSON(t, router, http.MethodGet, "/api/reports/"+report.ID, nil)
	if w.Code != http.StatusOK {
		t.Errorf("get report: status = %d", w.Code)
	}

	w = doJSON(t, router, http.MethodGet, "/api/reports?since=0", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list reports: status = %d", w.Code)
	}
	var listing struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &listing); err != nil {
		t.Fatalf("decode listing: %v", err)
	}
	if listing.Count != 1 {
		t.Errorf("count = %d, want 1", listing.Count)
	}
}

func TestGetReportNotFound(t *testing.T) {
	router := newTestServer(t).Router()
	w := doJSON(t, router, http.MethodGet, "/api/reports/nope", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestListReportsInvalidSince(t *testing.T) {
	router := newTestServer(t).Router()
	w := doJSON(t, router, http.MethodGet, "/api/reports?since=abc", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestListAgents(t *testing.T) {
	router := newTestServer(t).Router()
	w := doJSON(t, router, http.MethodGet, "/api/agents", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var resp AgentsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Agents) != 3 {
		t.Errorf("agents = %v, want 3", resp.Agents)
	}
	if resp.Default != "chat" {
		t.Errorf("default = %q, want chat", resp.Default)
	}
}

func TestChatValidation(t *testing.T) {
	router := newTestServer(t).Router()

	w := doJSON(t, router, http.MethodPost, "/api/chat", map[string]string{"message": ""})
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty message: status = %d, want 400", w.Code)
	}

	w = doJSON(t, router, http.MethodPost, "/api/chat", map[string]string{"message": "hi", "agent": "missing"})
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown agent: status = %d, want 404", w.Code)
	}
}

func TestChatWithGuardAgent(t *testing.T) {
	router := newTestServer(t).Router()
	w := doJSON(t, router, http.MethodPost, "/api/chat", map[string]string{
		"message": "are you ready?",
		"agent":   "hallucination_guard",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var resp ChatResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Agent != "hallucination_guard" || resp.Response == "" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestChatWithoutModelFails(t *testing.T) {
	// The default chat agent needs a judgment model; none is configured.
	router := newTestServer(t).Router()
	w := doJSON(t, router, http.MethodPost, "/api/chat", map[string]string{"message": "hello"})
	if w.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", w.Code)
	}
}

func TestAgentTask(t *testing.T) {
	router := newTestServer(t).Router()
	w := doJSON(t, router, http.MethodPost, "/api/agent/task", map[string]interface{}{
		"task":  "compliance check",
		"agent": "compliance_checker",
		"context": map[string]string{
			"llm_output":      "Rest well and stay warm.",
			"original_prompt": "What helps a cold?",
		},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var resp struct {
		Agent  string `json:"agent"`
		Result struct {
			Status string `json:"status"`
		} `json:"result"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Agent != "compliance_checker" || resp.Result.Status != "completed" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestAgentTaskRequiresTask(t *testing.T) {
	router := newTestServer(t).Router()
	w := doJSON(t, router, http.MethodPost, "/api/agent/task", map[string]string{"task": "  "})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

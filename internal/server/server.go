package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/deadly-nightshade/medguard/internal/agent"
	"github.com/deadly-nightshade/medguard/internal/llm"
	"github.com/deadly-nightshade/medguard/internal/model"
	"github.com/deadly-nightshade/medguard/internal/pipeline"
	"github.com/deadly-nightshade/medguard/internal/store"
)

// Server hosts the analysis pipeline over HTTP
type Server struct {
	analyzer       *pipeline.Analyzer
	agents         *agent.Manager
	reports        *store.ReportStore
	allowedOrigins []string
}

// NewServer wires the pipeline, agent registry, and report store from
// configuration
func NewServer(cfg *model.Config) (*Server, error) {
	analyzer, err := pipeline.NewAnalyzer(cfg)
	if err != nil {
		return nil, err
	}

	provider, err := llm.NewProvider(cfg.LLM)
	if err != nil {
		return nil, err
	}

	agents := agent.NewManager()
	agents.Register("chat", agent.NewChatAgent(provider), true)
	agents.Register("hallucination_guard", agent.NewGuardAgent(analyzer), false)
	agents.Register("compliance_checker", agent.NewComplianceAgent(analyzer), false)

	return &Server{
		analyzer:       analyzer,
		agents:         agents,
		reports:        store.NewReportStore(cfg.Store.TTL, cfg.Store.CleanupInterval),
		allowedOrigins: cfg.Server.AllowedOrigins,
	}, nil
}

// Router configures gin routes
func (s *Server) Router() *gin.Engine {
	r := gin.Default()

	corsCfg := cors.DefaultConfig()
	if len(s.allowedOrigins) == 0 || (len(s.allowedOrigins) == 1 && s.allowedOrigins[0] == "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = s.allowedOrigins
	}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	corsCfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	r.Use(cors.New(corsCfg))

	r.GET("/healthz", s.handleHealth)

	api := r.Group("/api")
	{
		api.POST("/report", s.handleReport)
		api.POST("/chat", s.handleChat)
		api.POST("/agent/task", s.handleAgentTask)
		api.GET("/agents", s.handleListAgents)
		api.GET("/reports", s.handleListReports)
		api.GET("/reports/:id", s.handleGetReport)
	}

	return r
}

// Run starts the HTTP server on addr and blocks
func (s *Server) Run(addr string) error {
	logrus.WithField("addr", addr).Info("starting server")
	return s.Router().Run(addr)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleReport(c *gin.Context) {
	var req ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.renderError(c, http.StatusBadRequest, err)
		return
	}
	if req.OriginalPrompt == nil {
		s.renderError(c, http.StatusBadRequest, errors.New("original_prompt is required"))
		return
	}
	if req.LLMOutput == nil {
		s.renderError(c, http.StatusBadRequest, errors.New("llm_output is required"))
		return
	}

	report := s.analyzer.Analyze(c.Request.Context(), *req.OriginalPrompt, *req.LLMOutput, req.RelevantDocuments)
	report = s.reports.Append(report)
	c.JSON(http.StatusOK, report)
}

func (s *Server) handleChat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.renderError(c, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		s.renderError(c, http.StatusBadRequest, errors.New("message is required"))
		return
	}

	a, ok := s.agents.Get(req.Agent)
	if !ok {
		s.renderError(c, http.StatusNotFound, errors.New("agent not found: "+req.Agent))
		return
	}

	response, err := a.ProcessMessage(c.Request.Context(), req.Message)
	if err != nil {
		logrus.WithError(err).WithField("agent", a.Name()).Warn("chat failed")
		s.renderError(c, http.StatusBadGateway, err)
		return
	}
	c.JSON(http.StatusOK, ChatResponse{Response: response, Agent: a.Name()})
}

func (s *Server) handleAgentTask(c *gin.Context) {
	var req TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.renderError(c, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.Task) == "" {
		s.renderError(c, http.StatusBadRequest, errors.New("task is required"))
		return
	}

	a, ok := s.agents.Get(req.Agent)
	if !ok {
		s.renderError(c, http.StatusNotFound, errors.New("agent not found: "+req.Agent))
		return
	}

	result, err := a.ExecuteTask(c.Request.Context(), req.Task, agent.TaskContext{
		Output:    req.Context.LLMOutput,
		Prompt:    req.Context.OriginalPrompt,
		Documents: req.Context.RelevantDocuments,
	})
	if err != nil {
		logrus.WithError(err).WithField("agent", a.Name()).Warn("task failed")
		s.renderError(c, http.StatusBadGateway, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"agent": a.Name(), "result": result})
}

func (s *Server) handleListAgents(c *gin.Context) {
	c.JSON(http.StatusOK, AgentsResponse{
		Agents:  s.agents.List(),
		Default: s.agents.Default(),
	})
}

func (s *Server) handleGetReport(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	report, found := s.reports.Get(id)
	if !found {
		s.renderError(c, http.StatusNotFound, errors.New("report not found: "+id))
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) handleListReports(c *gin.Context) {
	var since int64
	if value := strings.TrimSpace(c.Query("since")); value != "" {
		parsed, err := strconv.ParseInt(value, 10, 64)
		if err != nil || parsed < 0 {
			s.renderError(c, http.StatusBadRequest, errors.New("invalid since: "+value))
			return
		}
		since = parsed
	}

	reports := s.reports.ListSince(since)
	if reports == nil {
		reports = []model.AnalysisReport{}
	}
	c.JSON(http.StatusOK, gin.H{"reports": reports, "count": len(reports)})
}

func (s *Server) renderError(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{"error": err.Error()})
}

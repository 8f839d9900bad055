package agent

import (
	"context"
	"sort"
	"sync"

	"github.com/deadly-nightshade/medguard/internal/model"
)

// TaskContext carries the analyzable material for one task invocation
type TaskContext struct {
	Output    string `json:"llm_output"`
	Prompt    string `json:"original_prompt"`
	Documents string `json:"relevant_documents,omitempty"`
}

// TaskResult is the envelope every agent returns from ExecuteTask
type TaskResult struct {
	Task   string      `json:"task"`
	Result interface{} `json:"result"`
	Status string      `json:"status"`
}

// Agent is the capability interface shared by all analysis agents:
// free-form chat plus structured task execution.
type Agent interface {
	Name() string
	ProcessMessage(ctx context.Context, message string) (string, error)
	ExecuteTask(ctx context.Context, task string, tc TaskContext) (TaskResult, error)
}

// HallucinationAnalyzer produces the faithfulness report for one output
type HallucinationAnalyzer interface {
	AnalyzeHallucination(ctx context.Context, output, prompt, documents string) model.HallucinationReport
}

// ComplianceAnalyzer produces the compliance report for one output
type ComplianceAnalyzer interface {
	AnalyzeCompliance(ctx context.Context, output, prompt string) model.ComplianceReport
}

// Manager routes requests to registered agents by name. Safe for concurrent
// use.
type Manager struct {
	mu          sync.RWMutex
	agents      map[string]Agent
	defaultName string
}

// NewManager creates an empty registry
func NewManager() *Manager {
	return &Manager{agents: make(map[string]Agent)}
}

// Register adds an agent under name. The first agent registered becomes the
// default unless isDefault later overrides it.
func (m *Manager) Register(name string, a Agent, isDefault bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.agents[name] = a
	if isDefault || m.defaultName == "" {
		m.defaultName = name
	}
}

// Get returns the agent registered under name, or the default agent when
// name is empty
func (m *Manager) Get(name string) (Agent, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if name == "" {
		name = m.defaultName
	}
	a, ok := m.agents[name]
	return a, ok
}

// List returns the registered agent names in sorted order
func (m *Manager) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.agents))
	for name := range m.agents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Default returns the name of the default agent
func (m *Manager) Default() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultName
}

package agent

import (
	"context"

	"github.com/deadly-nightshade/medguard/internal/llm"
)

// ChatAgent answers free-form questions through the judgment model. It is
// the default conversational endpoint.
type ChatAgent struct {
	provider llm.Provider
}

func NewChatAgent(provider llm.Provider) *ChatAgent {
	return &ChatAgent{provider: provider}
}

func (a *ChatAgent) Name() string { return "chat" }

func (a *ChatAgent) ProcessMessage(ctx context.Context, message string) (string, error) {
	if a.provider == nil {
		return "", llm.ErrModelUnavailable
	}
	return a.provider.Generate(ctx, message)
}

func (a *ChatAgent) ExecuteTask(ctx context.Context, task string, tc TaskContext) (TaskResult, error) {
	response, err := a.ProcessMessage(ctx, task)
	if err != nil {
		return TaskResult{Task: task, Status: "error"}, err
	}
	return TaskResult{Task: task, Result: response, Status: "completed"}, nil
}

// GuardAgent runs the hallucination analysis over the task context
type GuardAgent struct {
	analyzer HallucinationAnalyzer
}

func NewGuardAgent(analyzer HallucinationAnalyzer) *GuardAgent {
	return &GuardAgent{analyzer: analyzer}
}

func (a *GuardAgent) Name() string { return "hallucination_guard" }

func (a *GuardAgent) ProcessMessage(ctx context.Context, message string) (string, error) {
	return "HallucinationGuard is ready. Use a task request with llm_output for a full analysis.", nil
}

func (a *GuardAgent) ExecuteTask(ctx context.Context, task string, tc TaskContext) (TaskResult, error) {
	report := a.analyzer.AnalyzeHallucination(ctx, tc.Output, tc.Prompt, tc.Documents)
	return TaskResult{Task: task, Result: report, Status: "completed"}, nil
}

// ComplianceAgent runs the compliance analysis over the task context
type ComplianceAgent struct {
	analyzer ComplianceAnalyzer
}

func NewComplianceAgent(analyzer ComplianceAnalyzer) *ComplianceAgent {
	return &ComplianceAgent{analyzer: analyzer}
}

func (a *ComplianceAgent) Name() string { return "compliance_checker" }

func (a *ComplianceAgent) ProcessMessage(ctx context.Context, message string) (string, error) {
	return "ComplianceChecker is ready. Use a task request with llm_output for a full compliance check.", nil
}

func (a *ComplianceAgent) ExecuteTask(ctx context.Context, task string, tc TaskContext) (TaskResult, error) {
	report := a.analyzer.AnalyzeCompliance(ctx, tc.Output, tc.Prompt)
	return TaskResult{Task: task, Result: report, Status: "completed"}, nil
}

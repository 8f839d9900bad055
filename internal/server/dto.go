package server

// ReportRequest is the body of POST /api/report. Prompt and output are
// required; empty strings are permitted once present.
type ReportRequest struct {
	OriginalPrompt    *string `json:"original_prompt"`
	LLMOutput         *string `json:"llm_output"`
	RelevantDocuments string  `json:"relevant_documents"`
}

// ChatRequest is the body of POST /api/chat
type ChatRequest struct {
	Message string `json:"message"`
	Agent   string `json:"agent"`
}

// ChatResponse is the reply to POST /api/chat
type ChatResponse struct {
	Response string `json:"response"`
	Agent    string `json:"agent"`
}

// TaskRequest is the body of POST /api/agent/task
type TaskRequest struct {
	Task    string      `json:"task"`
	Agent   string      `json:"agent"`
	Context TaskPayload `json:"context"`
}

// TaskPayload mirrors agent.TaskContext on the wire
type TaskPayload struct {
	LLMOutput         string `json:"llm_output"`
	OriginalPrompt    string `json:"original_prompt"`
	RelevantDocuments string `json:"relevant_documents"`
}

// AgentsResponse lists the registered agents
type AgentsResponse struct {
	Agents  []string `json:"agents"`
	Default string   `json:"default"`
}

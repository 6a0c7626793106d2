package models

// ClassifyRequest is the body of POST /api/v1/classify.
type ClassifyRequest struct {
	Code string `json:"code" binding:"required"`
}

// ClassifyResponse is returned by the classify endpoint.
type ClassifyResponse struct {
	Status          Verdict                 `json:"status"`
	Reasoning       string                  `json:"reasoning"`
	EvidenceSummary string                  `json:"evidence_summary"`
	Evidence        map[string]EvidenceItem `json:"evidence"`
}

// ChatRequest is the body of POST /api/v1/chat. The snippet and prior
// verdict are round-tripped by the client; the server keeps no session.
type ChatRequest struct {
	Message string `json:"message" binding:"required"`
	Code    string `json:"code" binding:"required"`
	Status  string `json:"status"`
}

// ChatResponse is returned by the chat endpoint.
type ChatResponse struct {
	Message string `json:"message"`
}

// BatchClassifyRequest is the body of POST /api/v1/classify/batch.
type BatchClassifyRequest struct {
	Snippets []SnippetInput `json:"snippets" binding:"required,min=1"`
}

// SnippetInput is one code sample in a batch request.
type SnippetInput struct {
	ID   *int64 `json:"id,omitempty"`
	Code string `json:"code" binding:"required"`
}

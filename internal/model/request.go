package model

import "encoding/json"

// AnalyzeRequest é o corpo enviado para POST /api/tasks/analyze/
type AnalyzeRequest struct {
	Tasks    []TaskDraft `json:"tasks"`
	Strategy string      `json:"strategy"`
}

// MarshalJSON implements json.Marshaler. Tarefas coladas seguem byte a byte.
func (r AnalyzeRequest) MarshalJSON() ([]byte, error) {
	tasks, err := TaskPayloads(r.Tasks)
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		Tasks    []json.RawMessage `json:"tasks"`
		Strategy string            `json:"strategy"`
	}{tasks, r.Strategy})
}

// AnalyzeResponse é a resposta do backend para a análise
type AnalyzeResponse struct {
	Results []TaskResult `json:"results"`
	Error   string       `json:"error,omitempty"`
}

// FeedbackResponse é a resposta do backend para o feedback
type FeedbackResponse struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// SuggestResponse é a resposta do backend para GET /api/tasks/suggest/
type SuggestResponse struct {
	Suggestions []Suggestion `json:"suggestions"`
}

// DraftForm representa os campos do formulário de nova tarefa
type DraftForm struct {
	Title          string `json:"title" form:"title"`
	DueDate        string `json:"due_date" form:"due_date"`
	EstimatedHours string `json:"estimated_hours" form:"estimated_hours"`
	Importance     string `json:"importance" form:"importance"`
	Dependencies   string `json:"dependencies" form:"dependencies"`
}

// AnalyzeForm representa o pedido de análise vindo da página ou da API
type AnalyzeForm struct {
	JSONInput string `json:"json_input" form:"json_input"`
	Strategy  string `json:"strategy" form:"strategy"`
}

// FeedbackForm identifica o controle clicado (com a versão da página) ou, na API, o título e o voto
type FeedbackForm struct {
	Control string `json:"control" form:"control"`
	Version uint64 `json:"version" form:"version"`
	Title   string `json:"title" form:"title"`
	Helpful *bool  `json:"helpful,omitempty" form:"helpful"`
}

// Response representa a resposta padrão da API
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// ErrorResponse representa uma resposta de erro
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

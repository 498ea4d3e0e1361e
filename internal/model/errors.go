package model

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidJSON indica que o JSON colado pelo usuário não é uma lista de tarefas válida
	ErrInvalidJSON = errors.New("json de entrada inválido")

	// ErrNoTasks indica que não há tarefas para analisar
	ErrNoTasks = errors.New("nenhuma tarefa informada")

	// ErrBackendUnreachable indica falha de rede ou resposta ilegível do backend
	ErrBackendUnreachable = errors.New("backend de análise inacessível")

	// ErrFeedbackLocked indica que os controles de feedback estão desabilitados
	ErrFeedbackLocked = errors.New("feedback temporariamente desabilitado")

	// ErrStaleAnalysis indica uma resposta superada por uma análise mais recente
	ErrStaleAnalysis = errors.New("análise superada por uma requisição mais recente")

	// ErrUnknownControl indica um controle de feedback que não existe na página atual
	ErrUnknownControl = errors.New("controle de feedback desconhecido")
)

// Mensagens exibidas na página
const (
	MsgInvalidJSON      = "Invalid JSON input!"
	MsgNoTasks          = "No tasks provided!"
	MsgBackendDown      = "Failed to reach backend API."
	MsgAPIError         = "API error"
	MsgFeedbackFailed   = "Failed to send feedback."
	MsgFeedbackLocked   = "Feedback is temporarily disabled."
	MsgStaleAnalysis    = "A newer analysis replaced this one."
	MsgUnknownControl   = "Unknown feedback control."
	MsgTaskAdded        = "Task added!"
	MsgMarkedHelpful    = "Marked helpful: "
	MsgMarkedNotHelpful = "Marked not helpful: "
)

// APIError é um erro de aplicação devolvido pelo backend (status não 2xx)
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend retornou status %d", e.Status)
	}
	return fmt.Sprintf("backend retornou status %d: %s", e.Status, e.Message)
}

// UserMessage converte um erro da análise no texto exibido inline na página
func UserMessage(err error) string {
	var apiErr *APIError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &apiErr):
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return MsgAPIError
	case errors.Is(err, ErrInvalidJSON):
		return MsgInvalidJSON
	case errors.Is(err, ErrNoTasks):
		return MsgNoTasks
	case errors.Is(err, ErrFeedbackLocked):
		return MsgFeedbackLocked
	case errors.Is(err, ErrStaleAnalysis):
		return MsgStaleAnalysis
	case errors.Is(err, ErrUnknownControl):
		return MsgUnknownControl
	default:
		return MsgBackendDown
	}
}

// FeedbackAlert converte um erro do envio de feedback no texto do alerta
func FeedbackAlert(err error) string {
	var apiErr *APIError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &apiErr) && apiErr.Message != "":
		return apiErr.Message
	case errors.Is(err, ErrFeedbackLocked):
		return MsgFeedbackLocked
	case errors.Is(err, ErrUnknownControl):
		return MsgUnknownControl
	default:
		return MsgFeedbackFailed
	}
}

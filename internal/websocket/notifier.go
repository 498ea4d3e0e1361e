package websocket

import (
	"github.com/Bristo123/smart-task-analyser/internal/service"
	"github.com/Bristo123/smart-task-analyser/internal/view"
)

var _ service.Notifier = (*Hub)(nil)

// Loading pushes the loading indicator state
func (h *Hub) Loading(sessionID string, visible bool) {
	h.push(sessionID, TypeLoading, map[string]bool{"visible": visible})
}

// Results pushes a freshly rendered page
func (h *Hub) Results(sessionID string, page *view.Page) {
	h.push(sessionID, TypeResults, page)
}

// Error pushes the inline error text
func (h *Hub) Error(sessionID, message string) {
	h.push(sessionID, TypeError, map[string]string{"message": message})
}

// Notice pushes a transient confirmation
func (h *Hub) Notice(sessionID, message string) {
	h.push(sessionID, TypeNotice, map[string]string{"message": message})
}

// Alert pushes a blocking alert
func (h *Hub) Alert(sessionID, message string) {
	h.push(sessionID, TypeAlert, map[string]string{"message": message})
}

// FeedbackControls pushes the enabled state of every feedback control
func (h *Hub) FeedbackControls(sessionID string, disabled bool) {
	h.push(sessionID, TypeFeedbackControls, map[string]bool{"disabled": disabled})
}

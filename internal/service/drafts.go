package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Bristo123/smart-task-analyser/internal/metrics"
	"github.com/Bristo123/smart-task-analyser/internal/model"
)

// ParseDependencies divide a lista separada por vírgulas.
// Tokens vazios são descartados; tokens numéricos viram número, o resto fica como texto.
func ParseDependencies(raw string) []model.Dependency {
	deps := []model.Dependency{}
	for _, token := range strings.Split(raw, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		if n, ok := parseFinite(token); ok {
			deps = append(deps, model.NumericDependency(n))
			continue
		}
		deps = append(deps, model.TextDependency(token))
	}
	return deps
}

func parseFinite(s string) (float64, bool) {
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// BuildDraft monta a tarefa a partir dos campos do formulário.
// Não há validação: valores numéricos inválidos seguem como null para o backend.
func BuildDraft(form model.DraftForm) model.TaskDraft {
	return model.TaskDraft{
		Title:          strings.TrimSpace(form.Title),
		DueDate:        form.DueDate,
		EstimatedHours: model.ParseNumber(form.EstimatedHours),
		Importance:     model.ParseNumber(form.Importance),
		Dependencies:   ParseDependencies(form.Dependencies),
	}
}

// AddTask monta o rascunho, acrescenta à lista da sessão e deixa a notificação "Task added!".
// Retorna o rascunho e o novo tamanho da lista.
func AddTask(sess *Session, form model.DraftForm) (model.TaskDraft, int) {
	draft := BuildDraft(form).Normalize()
	count := sess.AddDraft(draft)
	sess.SetNotice(model.MsgTaskAdded)
	metrics.Get().IncrementDraftAdded()
	return draft, count
}

// ParseOverride decodifica o JSON colado pelo usuário.
// Só exige um array JSON; cada elemento segue para o backend como foi colado,
// e campos inválidos são rejeitados pelo próprio backend.
func ParseOverride(raw string) ([]model.TaskDraft, error) {
	data := bytes.TrimSpace([]byte(raw))
	if len(data) == 0 || data[0] != '[' {
		return nil, model.ErrInvalidJSON
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidJSON, err)
	}

	drafts := make([]model.TaskDraft, len(elems))
	for i, e := range elems {
		drafts[i] = model.DraftFromJSON(e)
	}
	return drafts, nil
}

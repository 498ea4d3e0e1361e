package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
)

// Estratégias reconhecidas pela visualização.
// O backend pode aceitar outras; elas só afetam o score.
const (
	StrategySmartBalance   = "Smart Balance"
	StrategyHighImpact     = "High Impact"
	StrategyFastestWins    = "Fastest Wins"
	StrategyDeadlineDriven = "Deadline Driven"
)

// Strategies lista as opções oferecidas no seletor da página
var Strategies = []string{
	StrategySmartBalance,
	StrategyHighImpact,
	StrategyFastestWins,
	StrategyDeadlineDriven,
}

// ErrInvalidDependency indica uma dependência que não é número nem texto
var ErrInvalidDependency = errors.New("dependência deve ser número ou texto")

// Dependency referencia outra tarefa pela posição (número) ou por um nome opaco (texto)
type Dependency struct {
	Number  float64
	Text    string
	Numeric bool
}

// NumericDependency cria uma dependência numérica
func NumericDependency(n float64) Dependency {
	return Dependency{Number: n, Numeric: true}
}

// TextDependency cria uma dependência textual
func TextDependency(s string) Dependency {
	return Dependency{Text: s}
}

// NodeID retorna o id de nó referenciado quando a dependência é um inteiro
func (d Dependency) NodeID() (int, bool) {
	if !d.Numeric || d.Number != math.Trunc(d.Number) {
		return 0, false
	}
	if d.Number < math.MinInt32 || d.Number > math.MaxInt32 {
		return 0, false
	}
	return int(d.Number), true
}

// String formata a dependência para exibição
func (d Dependency) String() string {
	if d.Numeric {
		return strconv.FormatFloat(d.Number, 'f', -1, 64)
	}
	return d.Text
}

// MarshalJSON implements json.Marshaler
func (d Dependency) MarshalJSON() ([]byte, error) {
	if d.Numeric {
		return []byte(strconv.FormatFloat(d.Number, 'f', -1, 64)), nil
	}
	return json.Marshal(d.Text)
}

// UnmarshalJSON implements json.Unmarshaler
func (d *Dependency) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, jsonNull) {
		return ErrInvalidDependency
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*d = TextDependency(s)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return ErrInvalidDependency
	}
	*d = NumericDependency(f)
	return nil
}

// TaskDraft é uma tarefa digitada pelo usuário, ainda sem score
type TaskDraft struct {
	Title          string       `json:"title"`
	DueDate        string       `json:"due_date"`
	EstimatedHours Number       `json:"estimated_hours"`
	Importance     Number       `json:"importance"`
	Dependencies   []Dependency `json:"dependencies"`

	// Raw é o JSON colado pelo usuário; quando presente é enviado sem alteração
	Raw json.RawMessage `json:"-"`
}

// DraftFromJSON monta a visão tipada de uma tarefa colada, sem rejeitar nada.
// Campos de tipo inesperado ficam vazios aqui e seguem intactos em Raw.
func DraftFromJSON(raw json.RawMessage) TaskDraft {
	t := TaskDraft{Raw: raw}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return t.Normalize()
	}

	t.Title = looseString(fields["title"])
	t.DueDate = looseString(fields["due_date"])
	_ = json.Unmarshal(fields["estimated_hours"], &t.EstimatedHours)
	_ = json.Unmarshal(fields["importance"], &t.Importance)

	var deps []json.RawMessage
	if json.Unmarshal(fields["dependencies"], &deps) == nil {
		for _, d := range deps {
			var dep Dependency
			if dep.UnmarshalJSON(d) == nil {
				t.Dependencies = append(t.Dependencies, dep)
			}
		}
	}
	return t.Normalize()
}

// looseString lê um texto JSON; outros valores viram seu literal e null vira vazio
func looseString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, jsonNull) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// Payload retorna o JSON enviado ao backend para esta tarefa
func (t TaskDraft) Payload() (json.RawMessage, error) {
	if len(t.Raw) > 0 {
		return t.Raw, nil
	}
	return json.Marshal(t.Normalize())
}

// TaskPayloads serializa cada tarefa como será enviada ao backend
func TaskPayloads(tasks []TaskDraft) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, len(tasks))
	for i, t := range tasks {
		p, err := t.Payload()
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

// Normalize garante uma lista de dependências não nula (o backend espera um array)
func (t TaskDraft) Normalize() TaskDraft {
	if t.Dependencies == nil {
		t.Dependencies = []Dependency{}
	}
	return t
}

// TaskResult é a tarefa devolvida pelo backend.
// Score, WorkingDays, SkippedWeekends, SkippedHolidays e Explanation
// vêm sempre do backend; o cliente nunca os calcula.
type TaskResult struct {
	TaskDraft
	Score           Number   `json:"score"`
	WorkingDays     Number   `json:"working_days"`
	SkippedWeekends []string `json:"skipped_weekends"`
	SkippedHolidays []string `json:"skipped_holidays"`
	Explanation     string   `json:"explanation"`
}

// FeedbackSignal é o voto útil/não útil enviado ao backend.
// A identidade da tarefa é o título.
type FeedbackSignal struct {
	Title   string `json:"title"`
	Helpful bool   `json:"helpful"`
}

// Suggestion é uma sugestão retornada pelo endpoint /suggest do backend
type Suggestion struct {
	Title  string `json:"title"`
	Score  Number `json:"score"`
	Reason string `json:"reason"`
}

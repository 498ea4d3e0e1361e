package view

import (
	"fmt"

	"github.com/Bristo123/smart-task-analyser/internal/model"
)

// Quadrant is an urgency by importance bucket of the Eisenhower matrix
type Quadrant string

const (
	Q1 Quadrant = "q1" // urgent and important
	Q2 Quadrant = "q2" // important, not urgent
	Q3 Quadrant = "q3" // urgent, not important
	Q4 Quadrant = "q4" // neither
)

// Quadrants in display order
var Quadrants = []Quadrant{Q1, Q2, Q3, Q4}

var quadrantTitles = map[Quadrant]string{
	Q1: "Do First (Urgent & Important)",
	Q2: "Schedule (Important, Not Urgent)",
	Q3: "Delegate (Urgent, Not Important)",
	Q4: "Eliminate (Neither)",
}

// IsUrgent reports working_days <= 3. Anything that is not a JSON number is not urgent.
func IsUrgent(r model.TaskResult) bool {
	wd, ok := r.WorkingDays.Float()
	return ok && wd <= 3
}

// IsImportant reports importance >= 6. Anything that is not a JSON number is not important.
func IsImportant(r model.TaskResult) bool {
	imp, ok := r.Importance.Float()
	return ok && imp >= 6
}

// Classify places a result in its quadrant
func Classify(r model.TaskResult) Quadrant {
	urgent, important := IsUrgent(r), IsImportant(r)
	switch {
	case urgent && important:
		return Q1
	case important:
		return Q2
	case urgent:
		return Q3
	default:
		return Q4
	}
}

// MatrixItem is one row inside a quadrant
type MatrixItem struct {
	Title       string  `json:"title"`
	WorkingDays string  `json:"working_days"`
	Helpful     Control `json:"helpful_control"`
	NotHelpful  Control `json:"not_helpful_control"`
}

// QuadrantView is a quadrant with its items
type QuadrantView struct {
	ID    Quadrant     `json:"id"`
	Title string       `json:"title"`
	Items []MatrixItem `json:"items"`
}

// Matrix holds the four quadrants in display order
type Matrix struct {
	Quadrants []QuadrantView `json:"quadrants"`
}

// Quadrant returns the view of q
func (m Matrix) Quadrant(q Quadrant) QuadrantView {
	for _, qv := range m.Quadrants {
		if qv.ID == q {
			return qv
		}
	}
	return QuadrantView{ID: q}
}

// MatrixControlID names the feedback control of the j-th item of quadrant q
func MatrixControlID(q Quadrant, j int, helpful bool) string {
	if helpful {
		return fmt.Sprintf("matrix-%s-%d-helpful", q, j)
	}
	return fmt.Sprintf("matrix-%s-%d-not-helpful", q, j)
}

// BuildMatrix classifies every result. All four lists are built from scratch.
// Matrix controls bind to the item's title, not to its result index.
func BuildMatrix(results []model.TaskResult) (Matrix, []Binding) {
	byQuadrant := make(map[Quadrant][]model.TaskResult, len(Quadrants))
	for _, r := range results {
		q := Classify(r)
		byQuadrant[q] = append(byQuadrant[q], r)
	}

	m := Matrix{Quadrants: make([]QuadrantView, 0, len(Quadrants))}
	var bindings []Binding

	for _, q := range Quadrants {
		qv := QuadrantView{ID: q, Title: quadrantTitles[q], Items: []MatrixItem{}}
		for j, r := range byQuadrant[q] {
			item := MatrixItem{
				Title:       r.Title,
				WorkingDays: displayValue(r.WorkingDays),
				Helpful:     Control{ID: MatrixControlID(q, j, true), Helpful: true},
				NotHelpful:  Control{ID: MatrixControlID(q, j, false)},
			}
			qv.Items = append(qv.Items, item)
			bindings = append(bindings,
				Binding{Control: item.Helpful.ID, Action: Action{Title: r.Title, Helpful: true}},
				Binding{Control: item.NotHelpful.ID, Action: Action{Title: r.Title, Helpful: false}},
			)
		}
		m.Quadrants = append(m.Quadrants, qv)
	}

	return m, bindings
}

// Package view turns analysis results into the page view model.
// Everything here is pure: the same results and strategy always give the same Page.
package view

import "github.com/Bristo123/smart-task-analyser/internal/model"

// Action is what a feedback control does when clicked
type Action struct {
	Title   string `json:"title"`
	Helpful bool   `json:"helpful"`
}

// Binding pairs a rendered control with its action
type Binding struct {
	Control string `json:"control"`
	Action  Action `json:"action"`
}

// Page is everything the three renderers produce for one result list
type Page struct {
	// Version identifica a análise que produziu a página; controles de uma
	// versão anterior não são resolvidos
	Version  uint64             `json:"version"`
	Strategy string             `json:"strategy"`
	Results  []model.TaskResult `json:"results"`
	Cards    []Card             `json:"cards"`
	Graph    Graph              `json:"graph"`
	Matrix   Matrix             `json:"matrix"`
	Bindings []Binding          `json:"bindings"`
}

// Build renders cards, graph and matrix from the same result list
func Build(results []model.TaskResult, strategy string) Page {
	if results == nil {
		results = []model.TaskResult{}
	}

	cards, cardBindings := BuildCards(results)
	matrix, matrixBindings := BuildMatrix(results)

	bindings := make([]Binding, 0, len(cardBindings)+len(matrixBindings))
	bindings = append(bindings, cardBindings...)
	bindings = append(bindings, matrixBindings...)

	return Page{
		Strategy: strategy,
		Results:  results,
		Cards:    cards,
		Graph:    BuildGraph(results, strategy),
		Matrix:   matrix,
		Bindings: bindings,
	}
}

// Resolve finds the action bound to controlID on the page rendered as version
func (p *Page) Resolve(version uint64, controlID string) (Action, bool) {
	if p == nil || p.Version != version {
		return Action{}, false
	}
	for _, b := range p.Bindings {
		if b.Control == controlID {
			return b.Action, true
		}
	}
	return Action{}, false
}

// Empty reports whether there is nothing to render
func (p *Page) Empty() bool {
	return p == nil || len(p.Results) == 0
}

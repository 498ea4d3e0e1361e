package view

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/Bristo123/smart-task-analyser/internal/model"
)

const (
	neutralBackground = "#dce7ff"
	neutralBorder     = "#3050ff"
	edgeColor         = "#666"
)

// Color is the fill and border of a graph node
type Color struct {
	Background string `json:"background"`
	Border     string `json:"border"`
}

// NodeColor encodes the selected strategy's urgency or impact into the node color.
// Non-numeric inputs count as 0 and the intensity is clamped into 0..255.
func NodeColor(strategy string, r model.TaskResult) Color {
	switch strategy {
	case model.StrategyHighImpact:
		i := intensity(255 - r.Importance.FloatOr(0)*18)
		return Color{Background: fmt.Sprintf("rgb(255, %s, %s)", i, i), Border: "#b30000"}

	case model.StrategyFastestWins:
		effort := math.Min(r.EstimatedHours.FloatOr(0), 10)
		i := intensity(255 - effort*15)
		return Color{Background: fmt.Sprintf("rgb(220, 255, %s)", i), Border: "#008000"}

	case model.StrategyDeadlineDriven:
		urgency := math.Min(30, 30-r.WorkingDays.FloatOr(0))
		i := intensity(255 - urgency*7)
		return Color{Background: fmt.Sprintf("rgb(255, %s, %s)", i, i), Border: "#cc0000"}

	default:
		return Color{Background: neutralBackground, Border: neutralBorder}
	}
}

func intensity(v float64) string {
	v = math.Max(0, math.Min(255, v))
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Node is one task in the dependency graph. ID is the result's position.
type Node struct {
	ID    int    `json:"id"`
	Label string `json:"label"`
	Shape string `json:"shape"`
	Color Color  `json:"color"`
}

// Edge points from a dependency to the task that declares it.
// From keeps the token as given, so a token with no matching node dangles.
type Edge struct {
	From   model.Dependency `json:"from"`
	To     int              `json:"to"`
	Arrows string           `json:"arrows"`
	Color  string           `json:"color"`
}

// GraphOptions is passed unchanged to the vis-network widget
type GraphOptions struct {
	Nodes   map[string]interface{} `json:"nodes"`
	Edges   map[string]interface{} `json:"edges"`
	Layout  map[string]interface{} `json:"layout"`
	Physics map[string]interface{} `json:"physics"`
}

// Graph is a complete dependency graph. Every render produces a fresh value.
type Graph struct {
	Nodes   []Node       `json:"nodes"`
	Edges   []Edge       `json:"edges"`
	Options GraphOptions `json:"options"`
}

func defaultGraphOptions() GraphOptions {
	return GraphOptions{
		Nodes:   map[string]interface{}{"font": map[string]interface{}{"size": 14}},
		Edges:   map[string]interface{}{"smooth": true},
		Layout:  map[string]interface{}{"hierarchical": map[string]interface{}{"direction": "LR", "sortMethod": "directed"}},
		Physics: map[string]interface{}{"enabled": false},
	}
}

// BuildGraph builds one node per result and one edge per declared dependency
func BuildGraph(results []model.TaskResult, strategy string) Graph {
	g := Graph{
		Nodes:   make([]Node, 0, len(results)),
		Edges:   []Edge{},
		Options: defaultGraphOptions(),
	}

	for i, r := range results {
		g.Nodes = append(g.Nodes, Node{
			ID:    i,
			Label: fmt.Sprintf("%s\n(%s days left)", r.Title, displayValue(r.WorkingDays)),
			Shape: "box",
			Color: NodeColor(strategy, r),
		})

		for _, dep := range r.Dependencies {
			g.Edges = append(g.Edges, Edge{From: dep, To: i, Arrows: "to", Color: edgeColor})
		}
	}

	return g
}

// JSON encodes the graph for the page script
func (g Graph) JSON() (string, error) {
	data, err := json.Marshal(g)
	if err != nil {
		return "", fmt.Errorf("encode graph: %w", err)
	}
	return string(data), nil
}

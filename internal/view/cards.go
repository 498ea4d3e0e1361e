package view

import (
	"fmt"
	"strconv"

	"github.com/Bristo123/smart-task-analyser/internal/model"
)

// Tier is the priority level shown on a result card
type Tier string

const (
	TierHigh   Tier = "high"
	TierMedium Tier = "medium"
	TierLow    Tier = "low"
)

// NotAvailable is displayed in place of a value the backend did not send as a number
const NotAvailable = "n/a"

// PriorityTier maps a score to its tier. A missing or non-numeric score is low.
func PriorityTier(score model.Number) Tier {
	s, ok := score.Float()
	switch {
	case !ok:
		return TierLow
	case s >= 7:
		return TierHigh
	case s >= 4:
		return TierMedium
	default:
		return TierLow
	}
}

// FormatScore renders a score with two decimals
func FormatScore(score model.Number) string {
	s, ok := score.Float()
	if !ok {
		return NotAvailable
	}
	return strconv.FormatFloat(s, 'f', 2, 64)
}

// displayValue renders a pass-through field as the user typed it
func displayValue(n model.Number) string {
	if n.IsNull() {
		return NotAvailable
	}
	return n.String()
}

// Control is a feedback button. Its ID is what the browser posts back.
type Control struct {
	ID      string `json:"id"`
	Helpful bool   `json:"helpful"`
}

// Card is the display form of one result
type Card struct {
	Index           int     `json:"index"`
	Title           string  `json:"title"`
	Tier            Tier    `json:"tier"`
	Score           string  `json:"score"`
	DueDate         string  `json:"due_date"`
	Effort          string  `json:"effort"`
	Importance      string  `json:"importance"`
	WorkingDays     string  `json:"working_days"`
	SkippedWeekends int     `json:"skipped_weekends"`
	SkippedHolidays int     `json:"skipped_holidays"`
	Explanation     string  `json:"explanation"`
	Helpful         Control `json:"helpful_control"`
	NotHelpful      Control `json:"not_helpful_control"`
}

// CardControlID names the feedback control of the card at index
func CardControlID(index int, helpful bool) string {
	if helpful {
		return fmt.Sprintf("card-%d-helpful", index)
	}
	return fmt.Sprintf("card-%d-not-helpful", index)
}

// BuildCards maps each result, by position, to a card.
// The returned bindings resolve both controls of a card back to that result's title.
func BuildCards(results []model.TaskResult) ([]Card, []Binding) {
	cards := make([]Card, 0, len(results))
	bindings := make([]Binding, 0, 2*len(results))

	for i, r := range results {
		card := Card{
			Index:           i,
			Title:           r.Title,
			Tier:            PriorityTier(r.Score),
			Score:           FormatScore(r.Score),
			DueDate:         r.DueDate,
			Effort:          displayValue(r.EstimatedHours),
			Importance:      displayValue(r.Importance),
			WorkingDays:     displayValue(r.WorkingDays),
			SkippedWeekends: len(r.SkippedWeekends),
			SkippedHolidays: len(r.SkippedHolidays),
			Explanation:     r.Explanation,
			Helpful:         Control{ID: CardControlID(i, true), Helpful: true},
			NotHelpful:      Control{ID: CardControlID(i, false)},
		}
		cards = append(cards, card)

		bindings = append(bindings,
			Binding{Control: card.Helpful.ID, Action: Action{Title: r.Title, Helpful: true}},
			Binding{Control: card.NotHelpful.ID, Action: Action{Title: r.Title, Helpful: false}},
		)
	}

	return cards, bindings
}

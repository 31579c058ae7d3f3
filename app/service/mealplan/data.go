package mealplan

import (
	"fmt"
	"strings"
	"time"

	"babybites/app/rules"
)

// The four fixed daily meal occasions.
var slotTemplates = []rules.Slot{
	{Name: "breakfast", Time: "07:00-09:00"},
	{Name: "mid_morning", Time: "10:00-11:00"},
	{Name: "lunch", Time: "12:00-14:00"},
	{Name: "evening", Time: "16:00-18:00"},
}

// Plan is one day of meals. Built fresh per request, never persisted.
type Plan struct {
	Date      time.Time
	AgeMonths int
	Slots     []rules.Slot
	Note      string
}

// WhatsAppText renders the plan short and emoji-light for chat.
func (p Plan) WhatsAppText() string {
	lines := []string{fmt.Sprintf("*Meal Plan - %s*", p.Date.Format("2006-01-02")), ""}

	for _, s := range p.Slots {
		lines = append(lines,
			fmt.Sprintf("*%s* (%s)", s.Name, s.Time),
			s.Dish,
			fmt.Sprintf("  Qty: %d spoons | Texture: %s", s.Spoons, s.Texture),
		)
		if s.Note != "" {
			lines = append(lines, "  "+s.Note)
		}
		lines = append(lines, "")
	}

	if p.Note != "" {
		lines = append(lines, "_"+p.Note+"_")
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// SummaryLine is the compact one-day rendering used by the month view.
func (p Plan) SummaryLine() string {
	dishes := make([]string, 0, len(p.Slots))
	for _, s := range p.Slots {
		dishes = append(dishes, s.Dish)
	}

	return fmt.Sprintf("%s: %s", p.Date.Format("Jan 02"), strings.Join(dishes, ", "))
}

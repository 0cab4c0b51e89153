package templates

import (
	"context"
	"fmt"
	"html"
	"io"

	"github.com/a-h/templ"
)

// SlotView is a bookable time slot rendered into the portal slot picker.
type SlotView struct {
	Date      string
	StartTime string
	EndTime   string
}

// SlotList renders the available slots for a date as HTMX booking buttons.
func SlotList(date string, slots []SlotView) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if len(slots) == 0 {
			_, err := fmt.Fprintf(w, `<p class="muted">No open slots on %s.</p>`, html.EscapeString(date))
			return err
		}
		if _, err := io.WriteString(w, `<div class="slot-grid">`); err != nil {
			return err
		}
		for _, slot := range slots {
			_, err := fmt.Fprintf(w,
				`<form method="post" action="/portal/book">`+
					`<input type="hidden" name="date" value="%s">`+
					`<input type="hidden" name="start_time" value="%s">`+
					`<input type="hidden" name="end_time" value="%s">`+
					`<button class="btn" type="submit">%s - %s</button>`+
					`</form>`,
				html.EscapeString(slot.Date),
				html.EscapeString(slot.StartTime),
				html.EscapeString(slot.EndTime),
				html.EscapeString(slot.StartTime),
				html.EscapeString(slot.EndTime),
			)
			if err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</div>`)
		return err
	})
}

// MilestoneView is a single milestone row in the progress card.
type MilestoneView struct {
	Title    string
	Achieved bool
}

// ProgressView carries everything the portal progress card shows.
type ProgressView struct {
	TotalSessions int
	StreakWeeks   int
	BestStreak    int
	LevelName     string
	LevelNumber   int
	PercentToNext int
	Milestones    []MilestoneView
}

// ProgressCard renders the gamified progress summary fragment.
func ProgressCard(view ProgressView) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<div class="progress-card">`+
				`<p><span class="level-badge">Level %d</span> %s</p>`+
				`<div class="progress-track"><div class="progress-fill" style="width:%d%%;"></div></div>`+
				`<p class="muted">%d sessions · %d week streak (best %d)</p>`,
			view.LevelNumber,
			html.EscapeString(view.LevelName),
			view.PercentToNext,
			view.TotalSessions,
			view.StreakWeeks,
			view.BestStreak,
		)
		if err != nil {
			return err
		}
		if len(view.Milestones) > 0 {
			if _, err := io.WriteString(w, `<ul class="milestones">`); err != nil {
				return err
			}
			for _, milestone := range view.Milestones {
				mark := "○"
				if milestone.Achieved {
					mark = "●"
				}
				if _, err := fmt.Fprintf(w, `<li>%s %s</li>`, mark, html.EscapeString(milestone.Title)); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, `</ul>`); err != nil {
				return err
			}
		}
		_, err = io.WriteString(w, `</div>`)
		return err
	})
}

// ChatReply renders one assistant reply bubble appended to the chat log.
func ChatReply(userMessage, assistantReply string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<div class="chat-msg chat-user">%s</div>`+
				`<div class="chat-msg chat-assistant">%s</div>`,
			html.EscapeString(userMessage),
			html.EscapeString(assistantReply),
		)
		return err
	})
}

// RenderFragment writes a component as an HTML fragment response body.
func RenderFragment(ctx context.Context, w io.Writer, component templ.Component) error {
	if component == nil {
		return nil
	}
	return component.Render(ctx, w)
}

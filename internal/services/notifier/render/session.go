package render

import (
	"fmt"
	"strings"
)

// Session carries the fields rendered into portal booking alerts. JSON tags
// match the session outbox event payload.
type Session struct {
	ID       string `json:"id"`
	ClientID string `json:"client_id"`
	Date     string `json:"date"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Notes    string `json:"notes"`
}

// SessionMessage renders the studio's portal-booking alert in Telegram HTML.
func SessionMessage(session Session) string {
	var b strings.Builder
	b.WriteString("📅 <b>SESSION BOOKED — Fab The Stretch Lad</b>\n\n")
	fmt.Fprintf(&b, "🆔 <b>Ref:</b> #%s\n", ReferenceID(session.ID))
	fmt.Fprintf(&b, "👤 <b>Client:</b> %s\n", orDash(session.ClientID))
	fmt.Fprintf(&b, "📅 <b>Date:</b> %s\n", longDate(session.Date, "Mon, 2 Jan 2006", missing))
	fmt.Fprintf(&b, "⏰ <b>Time:</b> %s - %s\n", orDash(session.Start), orDash(session.End))
	fmt.Fprintf(&b, "✏️ <b>Notes:</b> %s", orDash(session.Notes))
	return b.String()
}

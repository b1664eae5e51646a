package telegram

import (
	"fmt"
	"html"
	"strings"

	tele "gopkg.in/telebot.v3"

	"downtime-panel-bot/internal/events"
	"downtime-panel-bot/internal/panels"
	"downtime-panel-bot/internal/status"
)

// Telegram has no client-side timestamp rendering, so instants are UTC text.
var style status.PlainStyle

func heading(p status.Projection) string {
	switch p.State {
	case status.InMaintenance:
		return emojiMaintenance + " " + p.Heading
	default:
		return emojiOnline + " " + p.Heading
	}
}

// statusText renders the short panel form of a projection as HTML.
func statusText(p status.Projection) string {
	return "<b>" + heading(p) + "</b>\n\n" + html.EscapeString(p.Short)
}

func detailText(p status.Projection) string {
	return "<b>" + heading(p) + "</b>\n\n" + html.EscapeString(p.Detail)
}

// alertText fits the detail view into a callback alert.
func alertText(p status.Projection) string {
	text := heading(p) + "\n\n" + p.Detail
	r := []rune(text)
	if len(r) > alertLimit {
		return string(r[:alertLimit-1]) + "…"
	}
	return text
}

func panelMarkup() *tele.ReplyMarkup {
	return &tele.ReplyMarkup{InlineKeyboard: [][]tele.InlineButton{{
		{Text: btnCheckStatus, Data: cbCheckStatus},
	}}}
}

var statusMarks = map[string]string{
	events.StatusStartingSoon: "🟡",
	events.StatusUpcoming:     "🔵",
	events.StatusEndingSoon:   "🟠",
	events.StatusActive:       "🟢",
}

func boardText(b events.Board) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "<b>%s %s</b>\n\n", b.Category.Emoji, html.EscapeString(b.Category.DisplayName))
	if len(b.Entries) == 0 {
		sb.WriteString(fmt.Sprintf(msgNoEvents, strings.ToLower(b.Category.DisplayName)))
		return sb.String()
	}
	for i, ev := range b.Entries {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "<b>%s %s: %s</b>\n", statusMarks[ev.Status], ev.Status, html.EscapeString(ev.Name))
		if ev.Status == events.StatusActive || ev.Status == events.StatusEndingSoon {
			fmt.Fprintf(&sb, "Ends: %s\n", style.Absolute(ev.EndTime()))
		} else {
			fmt.Fprintf(&sb, "Starts: %s\nEnds: %s\n", style.Absolute(ev.StartTime()), style.Absolute(ev.EndTime()))
		}
		rewards := "N/A"
		if len(ev.Rewards) > 0 {
			rewards = strings.Join(ev.Rewards, ", ")
		}
		fmt.Fprintf(&sb, "<b>Rewards:</b> %s", html.EscapeString(rewards))
		if ev.Link != "" {
			fmt.Fprintf(&sb, "\n🔗 <a href=\"%s\">Wiki Guide</a>", html.EscapeString(ev.Link))
		}
	}
	return sb.String()
}

func overviewText(boards []events.Board) string {
	if len(boards) == 0 {
		return "<b>" + titleAllEvents + "</b>\n\n" + msgNoEventsAll
	}
	sections := []string{"<b>" + titleAllEvents + "</b>"}
	for _, b := range boards {
		lines := []string{"<b>" + b.Category.Emoji + " " + html.EscapeString(b.Category.DisplayName) + "</b>"}
		for _, ev := range b.Entries {
			lines = append(lines, fmt.Sprintf("%s %s: %s • Ends %s",
				statusMarks[ev.Status], ev.Status, html.EscapeString(ev.Name), style.Relative(ev.EndTime())))
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}
	return strings.Join(sections, "\n\n")
}

// panelContent renders panel content as message text and keyboard.
func panelContent(c panels.Content) (string, *tele.ReplyMarkup, bool) {
	switch {
	case c.Status != nil:
		return statusText(*c.Status), panelMarkup(), true
	case c.Events != nil:
		return boardText(*c.Events), nil, true
	default:
		return "", nil, false
	}
}

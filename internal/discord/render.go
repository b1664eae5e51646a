package discord

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"downtime-panel-bot/internal/events"
	"downtime-panel-bot/internal/panels"
	"downtime-panel-bot/internal/status"
)

// Style renders instants as Discord timestamp markup, shown in each
// reader's own timezone.
type Style struct{}

func (Style) Relative(t time.Time) string { return fmt.Sprintf("<t:%d:R>", t.Unix()) }
func (Style) Absolute(t time.Time) string { return fmt.Sprintf("<t:%d:f>", t.Unix()) }

func fullDate(t time.Time) string { return fmt.Sprintf("<t:%d:F>", t.Unix()) }

// statusEmbed renders a projection. full is the private detail view; the
// panel shows the short form.
func statusEmbed(p status.Projection, full bool) *discordgo.MessageEmbed {
	var st Style
	e := &discordgo.MessageEmbed{Color: colorOnline}

	switch p.State {
	case status.NoSchedule:
		e.Title = emojiOnline + " " + p.Heading
		e.Description = p.Short
		return e
	case status.Upcoming:
		e.Title = emojiOnline + " " + p.Heading
		e.Description = p.Short
		if full {
			e.Description = strings.Join([]string{
				"**Upcoming Maintenance:** " + p.Title,
				"",
				emojiTime + " Game back online in: **" + status.FormatRemaining(p.Remaining) + "**",
				emojiTime + " Downtime begins: " + st.Relative(p.Start),
				emojiTime + " Start: " + st.Absolute(p.Start),
				emojiTime + " End: " + st.Absolute(p.End),
			}, "\n")
		}
	case status.InMaintenance:
		e.Title = emojiMaintenance + " " + p.Heading
		e.Color = colorMaintenance
		e.Description = p.Short
		if full {
			e.Description = strings.Join([]string{
				"**" + p.Title + "**",
				"",
				emojiTime + " Game back online in: **" + status.FormatRemaining(p.Remaining) + "**",
				emojiTime + " Maintenance ends at: " + st.Absolute(p.End),
			}, "\n")
		}
	default:
		e.Title = emojiOnline + " " + p.Heading
		e.Description = p.Short
		if full {
			e.Description = p.Detail
		}
	}

	if full {
		e.Footer = &discordgo.MessageEmbedFooter{Text: footerDetail}
	} else {
		e.Footer = &discordgo.MessageEmbedFooter{Text: footerPanel}
	}
	return e
}

func panelComponents() []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					CustomID: buttonCheckID,
					Label:    buttonCheckLabel,
					Style:    discordgo.PrimaryButton,
					Emoji:    &discordgo.ComponentEmoji{Name: emojiHeart},
				},
			},
		},
	}
}

var statusMarks = map[string]string{
	events.StatusStartingSoon: "🟡",
	events.StatusUpcoming:     "🔵",
	events.StatusEndingSoon:   "🟠",
	events.StatusActive:       "🟢",
}

func started(e events.Entry) bool {
	return e.Status == events.StatusActive || e.Status == events.StatusEndingSoon
}

// boardEmbed renders one category's event board.
func boardEmbed(b events.Board) *discordgo.MessageEmbed {
	e := &discordgo.MessageEmbed{
		Title:  b.Category.Emoji + " " + b.Category.DisplayName,
		Color:  b.Category.Color,
		Footer: &discordgo.MessageEmbedFooter{Text: footerEvents},
	}
	if len(b.Entries) == 0 {
		e.Description = fmt.Sprintf(msgNoEvents, strings.ToLower(b.Category.DisplayName))
		return e
	}

	var st Style
	entries := make([]string, 0, len(b.Entries))
	for _, ev := range b.Entries {
		lines := []string{fmt.Sprintf("**%s %s: %s**", statusMarks[ev.Status], ev.Status, ev.Name)}
		if started(ev) {
			lines = append(lines, "Ends: "+st.Relative(ev.EndTime())+" • "+fullDate(ev.EndTime()))
		} else {
			lines = append(lines,
				"Starts: "+st.Relative(ev.StartTime())+" • "+fullDate(ev.StartTime()),
				"Ends: "+fullDate(ev.EndTime()))
		}
		rewards := "N/A"
		if len(ev.Rewards) > 0 {
			rewards = strings.Join(ev.Rewards, ", ")
		}
		lines = append(lines, "**Rewards:** "+rewards)
		if ev.Link != "" {
			lines = append(lines, "🔗 [Wiki Guide]("+ev.Link+")")
		}
		entries = append(entries, strings.Join(lines, "\n"))
	}
	e.Description = strings.Join(entries, "\n\n──────────────────────\n\n")
	return e
}

// overviewEmbed lists every category that has events left.
func overviewEmbed(boards []events.Board) *discordgo.MessageEmbed {
	e := &discordgo.MessageEmbed{
		Title:  titleAllEvents,
		Color:  colorEvents,
		Footer: &discordgo.MessageEmbedFooter{Text: footerAllEvents},
	}
	if len(boards) == 0 {
		e.Description = msgNoEventsAll
		return e
	}

	var st Style
	sections := make([]string, 0, len(boards))
	for _, b := range boards {
		lines := []string{"**" + b.Category.Emoji + " " + b.Category.DisplayName + "**"}
		for _, ev := range b.Entries {
			lines = append(lines, fmt.Sprintf("%s %s: %s • Ends %s",
				statusMarks[ev.Status], ev.Status, ev.Name, st.Relative(ev.EndTime())))
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}
	e.Description = strings.Join(sections, "\n\n")
	return e
}

// panelMessage renders panel content as the embeds and components of a
// panel message.
func panelMessage(c panels.Content) ([]*discordgo.MessageEmbed, []discordgo.MessageComponent) {
	switch {
	case c.Status != nil:
		return []*discordgo.MessageEmbed{statusEmbed(*c.Status, false)}, panelComponents()
	case c.Events != nil:
		return []*discordgo.MessageEmbed{boardEmbed(*c.Events)}, []discordgo.MessageComponent{}
	default:
		return nil, nil
	}
}

package discord

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"downtime-panel-bot/internal/downtime"
	"downtime-panel-bot/internal/events"
	"downtime-panel-bot/internal/models"
	"downtime-panel-bot/internal/panels"
	"downtime-panel-bot/internal/timeparse"
)

const (
	cmdDowntime     = "downtime"
	cmdExtend       = "extenddowntime"
	cmdClear        = "cleardowntime"
	cmdPanel        = "panel"
	cmdStatus       = "status"
	cmdWizard       = "downtimewizard"
	cmdEventPanel   = "eventpanel"
	cmdUpdateEvents = "updateevents"
	cmdPostAll      = "postallevents"
	cmdEvents       = "events"

	optStart    = "start"
	optEnd      = "end"
	optTZ       = "tz"
	optTitle    = "title"
	optNewEnd   = "new_end"
	optCategory = "event_type"
)

// moderatorCommands require the downtime role.
var moderatorCommands = map[string]bool{
	cmdDowntime:     true,
	cmdExtend:       true,
	cmdClear:        true,
	cmdPanel:        true,
	cmdWizard:       true,
	cmdEventPanel:   true,
	cmdUpdateEvents: true,
	cmdPostAll:      true,
}

func commands() []*discordgo.ApplicationCommand {
	str := discordgo.ApplicationCommandOptionString
	var choices []*discordgo.ApplicationCommandOptionChoice
	for _, c := range events.Categories() {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: c.Emoji + " " + c.DisplayName, Value: c.Tag})
	}

	return []*discordgo.ApplicationCommand{
		{
			Name:        cmdDowntime,
			Description: descDowntime,
			Options: []*discordgo.ApplicationCommandOption{
				{Type: str, Name: optStart, Description: descDowntimeStart, Required: true},
				{Type: str, Name: optEnd, Description: descDowntimeEnd, Required: true},
				{Type: str, Name: optTZ, Description: descDowntimeTZ, Autocomplete: true},
				{Type: str, Name: optTitle, Description: descDowntimeTitle},
			},
		},
		{
			Name:        cmdExtend,
			Description: descExtend,
			Options: []*discordgo.ApplicationCommandOption{
				{Type: str, Name: optNewEnd, Description: descExtendNewEnd, Required: true},
				{Type: str, Name: optTZ, Description: descDowntimeTZ, Autocomplete: true},
			},
		},
		{Name: cmdClear, Description: descClear},
		{Name: cmdPanel, Description: descPanel},
		{Name: cmdStatus, Description: descStatus},
		{Name: cmdWizard, Description: descWizard},
		{
			Name:        cmdEventPanel,
			Description: descEventPanel,
			Options: []*discordgo.ApplicationCommandOption{
				{Type: str, Name: optCategory, Description: descEventCategory, Required: true, Choices: choices},
			},
		},
		{Name: cmdUpdateEvents, Description: descUpdateEvents},
		{Name: cmdPostAll, Description: descPostAll},
		{
			Name:        cmdEvents,
			Description: descEvents,
			Options: []*discordgo.ApplicationCommandOption{
				{Type: str, Name: optCategory, Description: descEventsCategory, Choices: choices},
			},
		},
	}
}

func (b *Bot) handleCommand(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, guildID int64) {
	data := i.ApplicationCommandData()
	if moderatorCommands[data.Name] && !b.hasRole(s, i) {
		b.reply(s, i, fmt.Sprintf(msgMissingRole, b.opts.RoleName))
		return
	}
	opts := optionMap(data.Options)

	switch data.Name {
	case cmdDowntime:
		b.applyDowntime(ctx, s, i, guildID, opts[optStart], opts[optEnd], opts[optTZ], opts[optTitle])
	case cmdExtend:
		b.handleExtend(ctx, s, i, guildID, opts[optNewEnd], opts[optTZ])
	case cmdClear:
		b.svc.ClearDowntime(ctx, guildID)
		b.reply(s, i, msgCleared)
	case cmdPanel:
		b.handlePanel(ctx, s, i, guildID)
	case cmdStatus:
		b.replyEmbed(s, i, statusEmbed(b.svc.Status(guildID, Style{}), true))
	case cmdWizard:
		b.respond(s, i, wizardModal())
	case cmdEventPanel:
		b.handleEventPanel(ctx, s, i, guildID, opts[optCategory])
	case cmdUpdateEvents:
		b.deferReply(s, i)
		b.svc.RefreshEvents(ctx, guildID)
		b.followup(s, i, msgEventsUpdated)
	case cmdPostAll:
		b.deferReply(s, i)
		posted, err := b.postBoards(ctx, s, i.ChannelID, guildID, b.svc.Boards())
		if err != nil {
			b.log.Warn("posting event panels stopped", zap.String("channel", i.ChannelID), zap.Int("posted", posted), zap.Error(err))
		}
		b.followup(s, i, fmt.Sprintf(msgPostedAll, posted))
	case cmdEvents:
		b.handleEvents(s, i, opts[optCategory])
	}
}

func optionMap(options []*discordgo.ApplicationCommandInteractionDataOption) map[string]string {
	m := make(map[string]string, len(options))
	for _, o := range options {
		if o.Type == discordgo.ApplicationCommandOptionString {
			m[o.Name] = o.StringValue()
		}
	}
	return m
}

func (b *Bot) applyDowntime(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, guildID int64, start, end, tz, title string) {
	applied, err := b.svc.SetDowntime(ctx, guildID, start, end, tz, title)
	if err != nil {
		b.replyError(s, i, err, tz, field{"Start", start}, field{"End", end})
		return
	}
	var st Style
	b.reply(s, i, fmt.Sprintf(msgDowntimeSet,
		applied.Window.TitleOr(models.DefaultTitle),
		st.Absolute(applied.Start), st.Absolute(applied.End), applied.Zone.Name))
}

func (b *Bot) handleExtend(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, guildID int64, newEnd, tz string) {
	ext, err := b.svc.ExtendDowntime(ctx, guildID, newEnd, tz)
	if err != nil {
		b.replyError(s, i, err, tz, field{"New End", newEnd})
		return
	}
	var st Style
	b.reply(s, i, fmt.Sprintf(msgExtended, st.Absolute(ext.PreviousEnd), st.Absolute(ext.End)))
}

func (b *Bot) handlePanel(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, guildID int64) {
	p := b.svc.Status(guildID, Style{})
	msg, err := s.ChannelMessageSendComplex(i.ChannelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{statusEmbed(p, false)},
		Components: panelComponents(),
	}, discordgo.WithContext(ctx))
	if err != nil {
		b.replyPostFailure(s, i, err)
		return
	}
	rec, err := panelRecord(guildID, msg)
	if err != nil {
		b.log.Error("bad panel message ids", zap.Error(err))
		b.reply(s, i, msgInternalError)
		return
	}
	b.svc.RegisterPanel(ctx, rec)
	b.reply(s, i, msgPanelPosted)
}

func (b *Bot) handleEventPanel(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, guildID int64, category string) {
	board, err := b.svc.Board(category)
	if err != nil {
		b.reply(s, i, fmt.Sprintf(msgInvalidCategory, categoryList()))
		return
	}
	if err := b.postBoard(ctx, s, i.ChannelID, guildID, board); err != nil {
		b.replyPostFailure(s, i, err)
		return
	}
	b.reply(s, i, fmt.Sprintf(msgEventPanelDone, board.Category.Emoji, board.Category.DisplayName))
}

type messageSender interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// postBoard sends board to the channel and registers the message as an event
// panel.
func (b *Bot) postBoard(ctx context.Context, sender messageSender, channelID string, guildID int64, board events.Board) error {
	msg, err := sender.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{boardEmbed(board)},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return err
	}
	rec, err := panelRecord(guildID, msg)
	if err != nil {
		return err
	}
	return b.svc.RegisterEventPanel(ctx, models.EventPanelRecord{PanelRecord: rec, EventCategory: board.Category.Tag})
}

// postBoards posts one event panel per board, in the given order, and stops at
// the first failure.
func (b *Bot) postBoards(ctx context.Context, sender messageSender, channelID string, guildID int64, boards []events.Board) (int, error) {
	for n, board := range boards {
		if err := b.postBoard(ctx, sender, channelID, guildID, board); err != nil {
			return n, fmt.Errorf("post %s panel: %w", board.Category.Tag, err)
		}
	}
	return len(boards), nil
}

func (b *Bot) handleEvents(s *discordgo.Session, i *discordgo.InteractionCreate, category string) {
	if category == "" {
		b.replyEmbed(s, i, overviewEmbed(b.svc.Boards()))
		return
	}
	board, err := b.svc.Board(category)
	if err != nil {
		b.reply(s, i, fmt.Sprintf(msgInvalidCategory, categoryList()))
		return
	}
	b.replyEmbed(s, i, boardEmbed(board))
}

func (b *Bot) handleAutocomplete(s *discordgo.Session, i *discordgo.InteractionCreate) {
	var current string
	for _, o := range i.ApplicationCommandData().Options {
		if o.Focused && o.Name == optTZ {
			current = o.StringValue()
		}
	}
	suggestions := b.resolver.Suggest(current)
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(suggestions))
	for _, name := range suggestions {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: name, Value: name})
	}
	b.respond(s, i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{Choices: choices},
	})
}

// ── Wizard modal ────────────────────────────────────────────────────

func wizardModal() *discordgo.InteractionResponse {
	input := func(id, label, placeholder string, required bool) discordgo.MessageComponent {
		return discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.TextInput{
				CustomID:    id,
				Label:       label,
				Style:       discordgo.TextInputShort,
				Placeholder: placeholder,
				Required:    required,
				MaxLength:   100,
			},
		}}
	}
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: modalWizardID,
			Title:    modalTitle,
			Components: []discordgo.MessageComponent{
				input(fieldStart, labelStart, placeholderStart, true),
				input(fieldEnd, labelEnd, placeholderEnd, true),
				input(fieldTZ, labelTZ, placeholderTZ, false),
				input(fieldTitle, labelTitle, placeholderTitle, false),
			},
		},
	}
}

func (b *Bot) handleWizardSubmit(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, guildID int64) {
	if !b.hasRole(s, i) {
		b.reply(s, i, fmt.Sprintf(msgMissingRole, b.opts.RoleName))
		return
	}
	values := modalValues(i.ModalSubmitData())
	tz := strings.TrimSpace(values[fieldTZ])
	if tz == "" {
		tz = "UTC"
	}
	b.applyDowntime(ctx, s, i, guildID, values[fieldStart], values[fieldEnd], tz, values[fieldTitle])
}

func modalValues(m discordgo.ModalSubmitInteractionData) map[string]string {
	values := make(map[string]string)
	for _, comp := range m.Components {
		row, ok := comp.(*discordgo.ActionsRow)
		if !ok || row == nil {
			continue
		}
		for _, c := range row.Components {
			if ti, ok := c.(*discordgo.TextInput); ok {
				values[ti.CustomID] = ti.Value
			}
		}
	}
	return values
}

// ── Authorization ───────────────────────────────────────────────────

func (b *Bot) hasRole(s *discordgo.Session, i *discordgo.InteractionCreate) bool {
	return hasRole(b.roleNames(s, i.GuildID, i.Member), b.opts.RoleName)
}

// roleNames resolves the member's role ids, from the state cache first.
func (b *Bot) roleNames(s *discordgo.Session, guildID string, m *discordgo.Member) []string {
	if m == nil {
		return nil
	}
	names := make([]string, 0, len(m.Roles))
	var fetched []*discordgo.Role
	for _, id := range m.Roles {
		if r, err := s.State.Role(guildID, id); err == nil {
			names = append(names, r.Name)
			continue
		}
		if fetched == nil {
			var err error
			if fetched, err = s.GuildRoles(guildID); err != nil {
				b.log.Warn("fetch guild roles failed", zap.String("guild", guildID), zap.Error(err))
				return names
			}
		}
		for _, r := range fetched {
			if r.ID == id {
				names = append(names, r.Name)
			}
		}
	}
	return names
}

func hasRole(names []string, want string) bool {
	for _, n := range names {
		if strings.EqualFold(n, want) {
			return true
		}
	}
	return false
}

// ── Errors ──────────────────────────────────────────────────────────

type field struct {
	label string
	value string
}

func (b *Bot) replyError(s *discordgo.Session, i *discordgo.InteractionCreate, err error, tz string, fields ...field) {
	if msg, ok := errorReply(err, tz, fields...); ok {
		b.reply(s, i, msg)
		return
	}
	b.log.Error("command failed", zap.String("guild", i.GuildID), zap.Error(err))
	b.reply(s, i, msgInternalError)
}

// errorReply explains a validation error and echoes the input. It reports
// false for errors that are not the user's fault.
func errorReply(err error, tz string, fields ...field) (string, bool) {
	var rangeErr *downtime.RangeError
	var st Style
	switch {
	case errors.Is(err, timeparse.ErrInvalidTimezone):
		return fmt.Sprintf(msgInvalidTimezone, tz), true
	case errors.Is(err, timeparse.ErrInvalidTimeFormat):
		formats := make([]string, 0, len(timeparse.SupportedFormats))
		for _, f := range timeparse.SupportedFormats {
			formats = append(formats, "• `"+f+"`")
		}
		echo := make([]string, 0, len(fields))
		for _, f := range fields {
			echo = append(echo, f.label+": `"+f.value+"`")
		}
		return fmt.Sprintf(msgInvalidTimeFormat, strings.Join(formats, "\n"), strings.Join(echo, "\n")), true
	case errors.As(err, &rangeErr):
		return fmt.Sprintf(msgInvalidRange, st.Absolute(rangeErr.Start), st.Absolute(rangeErr.End)), true
	case errors.Is(err, downtime.ErrInvalidDuration):
		raw := ""
		if len(fields) > 0 {
			raw = fields[0].value
		}
		return fmt.Sprintf(msgInvalidDuration, raw), true
	case errors.Is(err, downtime.ErrNoActiveWindow):
		return msgNoActiveWindow, true
	}
	return "", false
}

func (b *Bot) replyPostFailure(s *discordgo.Session, i *discordgo.InteractionCreate, err error) {
	err = classify(err)
	if errors.Is(err, panels.ErrPanelUnreachable) {
		b.reply(s, i, msgPanelFailed)
		return
	}
	b.log.Error("post panel failed", zap.String("channel", i.ChannelID), zap.Error(err))
	b.reply(s, i, msgInternalError)
}

func panelRecord(guildID int64, msg *discordgo.Message) (models.PanelRecord, error) {
	channelID, err := strconv.ParseInt(msg.ChannelID, 10, 64)
	if err != nil {
		return models.PanelRecord{}, fmt.Errorf("parse channel id: %w", err)
	}
	messageID, err := strconv.ParseInt(msg.ID, 10, 64)
	if err != nil {
		return models.PanelRecord{}, fmt.Errorf("parse message id: %w", err)
	}
	return models.PanelRecord{
		GuildID:   guildID,
		ChannelID: channelID,
		MessageID: messageID,
		Platform:  models.PlatformDiscord,
	}, nil
}

func categoryList() string {
	tags := make([]string, 0, len(events.Categories()))
	for _, c := range events.Categories() {
		tags = append(tags, c.Tag)
	}
	return strings.Join(tags, ", ")
}

package telegram

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"

	"downtime-panel-bot/internal/downtime"
	"downtime-panel-bot/internal/events"
	"downtime-panel-bot/internal/models"
	"downtime-panel-bot/internal/panels"
	"downtime-panel-bot/internal/timeparse"
	"downtime-panel-bot/internal/wizard"
)

func (b *Bot) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), b.timeout)
}

func (b *Bot) handleHelp(c tele.Context) error {
	return c.Send(msgHelp, htmlOpts)
}

// ── Public ──────────────────────────────────────────────────────────

func (b *Bot) handleStatus(c tele.Context) error {
	chat, ok := groupChat(c)
	if !ok {
		return c.Send(msgGroupOnly)
	}
	return c.Send(detailText(b.svc.Status(chat.ID, style)), htmlOpts)
}

func (b *Bot) handleEvents(c tele.Context) error {
	category := strings.TrimSpace(c.Message().Payload)
	if category == "" {
		return c.Send(overviewText(b.svc.Boards()), htmlOpts)
	}
	board, err := b.svc.Board(category)
	if err != nil {
		return c.Send(fmt.Sprintf(msgInvalidCategory, categoryList()), htmlOpts)
	}
	return c.Send(boardText(board), htmlOpts)
}

func (b *Bot) handleCallback(c tele.Context) error {
	data := strings.TrimSpace(c.Callback().Data)
	if data != cbCheckStatus {
		return c.Respond(&tele.CallbackResponse{})
	}
	chat := c.Chat()
	if chat == nil {
		return c.Respond(&tele.CallbackResponse{})
	}
	p := b.svc.Status(chat.ID, style)
	return c.Respond(&tele.CallbackResponse{Text: alertText(p), ShowAlert: true})
}

// ── Admin ───────────────────────────────────────────────────────────

func (b *Bot) handleDowntime(c tele.Context) error {
	chat, ok := b.requireAdmin(c)
	if !ok {
		return nil
	}
	args := splitArgs(c.Message().Payload)
	if len(args) < 2 {
		return c.Send(msgDowntimeUsage, htmlOpts)
	}
	tz, title := arg(args, 2), arg(args, 3)

	ctx, cancel := b.ctx()
	defer cancel()
	applied, err := b.svc.SetDowntime(ctx, chat.ID, args[0], args[1], tz, title)
	if err != nil {
		return b.sendError(c, err, tz, field{"Start", args[0]}, field{"End", args[1]})
	}
	return c.Send(appliedText(applied), htmlOpts)
}

func appliedText(a downtime.Applied) string {
	return fmt.Sprintf(msgDowntimeSet,
		html.EscapeString(a.Window.TitleOr(models.DefaultTitle)),
		style.Absolute(a.Start), style.Absolute(a.End), html.EscapeString(a.Zone.Name))
}

func (b *Bot) handleExtend(c tele.Context) error {
	chat, ok := b.requireAdmin(c)
	if !ok {
		return nil
	}
	args := splitArgs(c.Message().Payload)
	if len(args) < 1 {
		return c.Send(msgExtendUsage, htmlOpts)
	}
	tz := arg(args, 1)

	ctx, cancel := b.ctx()
	defer cancel()
	ext, err := b.svc.ExtendDowntime(ctx, chat.ID, args[0], tz)
	if err != nil {
		return b.sendError(c, err, tz, field{"New End", args[0]})
	}
	return c.Send(fmt.Sprintf(msgExtended, style.Absolute(ext.PreviousEnd), style.Absolute(ext.End)), htmlOpts)
}

func (b *Bot) handleClear(c tele.Context) error {
	chat, ok := b.requireAdmin(c)
	if !ok {
		return nil
	}
	ctx, cancel := b.ctx()
	defer cancel()
	b.svc.ClearDowntime(ctx, chat.ID)
	return c.Send(msgCleared)
}

func (b *Bot) handlePanel(c tele.Context) error {
	chat, ok := b.requireAdmin(c)
	if !ok {
		return nil
	}
	p := b.svc.Status(chat.ID, style)
	msg, err := b.bot.Send(chat, statusText(p), htmlOpts, panelMarkup())
	if err != nil {
		return b.sendPostFailure(c, err)
	}

	ctx, cancel := b.ctx()
	defer cancel()
	b.svc.RegisterPanel(ctx, panelRecord(chat, msg))
	return nil
}

func (b *Bot) handleEventPanel(c tele.Context) error {
	chat, ok := b.requireAdmin(c)
	if !ok {
		return nil
	}
	board, err := b.svc.Board(strings.TrimSpace(c.Message().Payload))
	if err != nil {
		return c.Send(fmt.Sprintf(msgInvalidCategory, categoryList()), htmlOpts)
	}
	msg, err := b.bot.Send(chat, boardText(board), htmlOpts)
	if err != nil {
		return b.sendPostFailure(c, err)
	}

	ctx, cancel := b.ctx()
	defer cancel()
	rec := models.EventPanelRecord{PanelRecord: panelRecord(chat, msg), EventCategory: board.Category.Tag}
	if err := b.svc.RegisterEventPanel(ctx, rec); err != nil {
		return c.Send(fmt.Sprintf(msgInvalidCategory, categoryList()), htmlOpts)
	}
	return nil
}

func (b *Bot) handleUpdateEvents(c tele.Context) error {
	chat, ok := b.requireAdmin(c)
	if !ok {
		return nil
	}
	ctx, cancel := b.ctx()
	defer cancel()
	b.svc.RefreshEvents(ctx, chat.ID)
	return c.Send(msgEventsUpdated)
}

// ── Wizard ──────────────────────────────────────────────────────────

func wizardKey(chat *tele.Chat, user *tele.User) wizard.Key {
	return wizard.Key{GuildID: chat.ID, UserID: user.ID}
}

var wizardPrompts = map[wizard.Step]string{
	wizard.StepTimezone: msgWizardTimezone,
	wizard.StepStart:    msgWizardStart,
	wizard.StepEnd:      msgWizardEnd,
	wizard.StepTitle:    msgWizardTitle,
}

func (b *Bot) handleWizard(c tele.Context) error {
	chat, ok := b.requireAdmin(c)
	if !ok {
		return nil
	}
	reply := b.wizard.Begin(wizardKey(chat, c.Sender()))
	return c.Send(wizardPrompts[reply.Next], htmlOpts)
}

func (b *Bot) handleCancel(c tele.Context) error {
	chat := c.Chat()
	if chat == nil || c.Sender() == nil {
		return nil
	}
	if b.wizard.Cancel(wizardKey(chat, c.Sender())) {
		return c.Send(msgWizardCancel)
	}
	return c.Send(msgWizardNone)
}

func (b *Bot) handleText(c tele.Context) error {
	chat := c.Chat()
	if chat == nil || c.Sender() == nil {
		return nil
	}
	key := wizardKey(chat, c.Sender())

	ctx, cancel := b.ctx()
	defer cancel()
	reply, err := b.wizard.Answer(ctx, key, c.Text())
	switch {
	case errors.Is(err, wizard.ErrNoSession):
		return nil
	case errors.Is(err, wizard.ErrExpired):
		return c.Send(msgWizardTimeout)
	case err != nil:
		msg, ok := errorReply(err, c.Text(), field{"Input", c.Text()})
		if !ok {
			b.log.Error("wizard failed", zap.Int64("chat", chat.ID), zap.Error(err))
			return c.Send(msgError)
		}
		return c.Send(msg+"\n\n"+wizardPrompts[reply.Next], htmlOpts)
	case reply.Cancelled:
		return c.Send(msgWizardCancel)
	case reply.Done:
		return c.Send(appliedText(reply.Applied), htmlOpts)
	default:
		return c.Send(wizardPrompts[reply.Next], htmlOpts)
	}
}

// ── Helpers ─────────────────────────────────────────────────────────

func groupChat(c tele.Context) (*tele.Chat, bool) {
	chat := c.Chat()
	if chat == nil || chat.Type == tele.ChatPrivate {
		return nil, false
	}
	return chat, true
}

// requireAdmin replies and reports false unless the sender administers
// the group.
func (b *Bot) requireAdmin(c tele.Context) (*tele.Chat, bool) {
	chat, ok := groupChat(c)
	if !ok {
		_ = c.Send(msgGroupOnly)
		return nil, false
	}
	member, err := b.bot.ChatMemberOf(chat, c.Sender())
	if err != nil {
		b.log.Warn("chat member lookup failed", zap.Int64("chat", chat.ID), zap.Error(err))
		_ = c.Send(msgError)
		return nil, false
	}
	if member.Role != tele.Administrator && member.Role != tele.Creator {
		_ = c.Send(msgAdminOnly)
		return nil, false
	}
	return chat, true
}

// splitArgs splits a "a | b | c" payload into trimmed parts.
func splitArgs(payload string) []string {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil
	}
	parts := strings.Split(payload, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func arg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

func panelRecord(chat *tele.Chat, msg *tele.Message) models.PanelRecord {
	return models.PanelRecord{
		GuildID:   chat.ID,
		ChannelID: chat.ID,
		MessageID: int64(msg.ID),
		Platform:  models.PlatformTelegram,
	}
}

func categoryList() string {
	tags := make([]string, 0, len(events.Categories()))
	for _, c := range events.Categories() {
		tags = append(tags, c.Tag)
	}
	return strings.Join(tags, ", ")
}

type field struct {
	label string
	value string
}

func (b *Bot) sendError(c tele.Context, err error, tz string, fields ...field) error {
	if msg, ok := errorReply(err, tz, fields...); ok {
		return c.Send(msg, htmlOpts)
	}
	b.log.Error("command failed", zap.Int64("chat", c.Chat().ID), zap.Error(err))
	return c.Send(msgError)
}

func (b *Bot) sendPostFailure(c tele.Context, err error) error {
	if errors.Is(classify(err), panels.ErrPanelUnreachable) {
		return c.Send(msgPanelFailed)
	}
	b.log.Error("post panel failed", zap.Int64("chat", c.Chat().ID), zap.Error(err))
	return c.Send(msgError)
}

// errorReply explains a validation error and echoes the input. It reports
// false for errors that are not the user's fault.
func errorReply(err error, tz string, fields ...field) (string, bool) {
	var rangeErr *downtime.RangeError
	switch {
	case errors.Is(err, timeparse.ErrInvalidTimezone):
		return fmt.Sprintf(msgInvalidTimezone, html.EscapeString(tz)), true
	case errors.Is(err, timeparse.ErrInvalidTimeFormat):
		formats := make([]string, 0, len(timeparse.SupportedFormats))
		for _, f := range timeparse.SupportedFormats {
			formats = append(formats, "• <code>"+f+"</code>")
		}
		echo := make([]string, 0, len(fields))
		for _, f := range fields {
			echo = append(echo, f.label+": <code>"+html.EscapeString(f.value)+"</code>")
		}
		return fmt.Sprintf(msgInvalidTimeFormat, strings.Join(formats, "\n"), strings.Join(echo, "\n")), true
	case errors.As(err, &rangeErr):
		return fmt.Sprintf(msgInvalidRange, style.Absolute(rangeErr.Start), style.Absolute(rangeErr.End)), true
	case errors.Is(err, downtime.ErrInvalidDuration):
		raw := ""
		if len(fields) > 0 {
			raw = fields[0].value
		}
		return fmt.Sprintf(msgInvalidDuration, html.EscapeString(raw)), true
	case errors.Is(err, downtime.ErrNoActiveWindow):
		return msgNoActiveWindow, true
	}
	return "", false
}

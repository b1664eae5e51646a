// Package telegram is the Telegram adapter. Each group chat acts as a
// guild keyed by its chat id.
package telegram

import (
	"context"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"

	"downtime-panel-bot/internal/downtime"
	"downtime-panel-bot/internal/events"
	"downtime-panel-bot/internal/models"
	"downtime-panel-bot/internal/panels"
	"downtime-panel-bot/internal/status"
	"downtime-panel-bot/internal/wizard"
)

// Service is what the adapter needs from the maintenance service.
type Service interface {
	SetDowntime(ctx context.Context, guildID int64, startRaw, endRaw, tzRaw, title string) (downtime.Applied, error)
	ExtendDowntime(ctx context.Context, guildID int64, newEndRaw, tzRaw string) (downtime.Extended, error)
	ClearDowntime(ctx context.Context, guildID int64)
	Status(guildID int64, style status.Style) status.Projection
	Board(category string) (events.Board, error)
	Boards() []events.Board
	RegisterPanel(ctx context.Context, rec models.PanelRecord)
	RegisterEventPanel(ctx context.Context, rec models.EventPanelRecord) error
	RefreshEvents(ctx context.Context, guildID int64) panels.Report
}

type Options struct {
	AllowedChatIDs []int64 // empty allows every chat
}

// Bot wraps the Telegram bot and its command handlers.
type Bot struct {
	bot     *tele.Bot
	svc     Service
	wizard  *wizard.Manager
	opts    Options
	log     *zap.Logger
	timeout time.Duration
}

var htmlOpts = &tele.SendOptions{ParseMode: tele.ModeHTML, DisableWebPagePreview: true}

// New creates and configures the Telegram bot.
func New(token string, svc Service, wiz *wizard.Manager, opts Options, log *zap.Logger) (*Bot, error) {
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c tele.Context) {
			log.Error("telegram handler failed", zap.Error(err))
		},
	}

	tb, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}

	b := &Bot{
		bot:     tb,
		svc:     svc,
		wizard:  wiz,
		opts:    opts,
		log:     log,
		timeout: 15 * time.Second,
	}
	b.registerHandlers()

	if err := tb.SetCommands([]tele.Command{
		{Text: "status", Description: "Current server status"},
		{Text: "events", Description: "Active and upcoming events"},
		{Text: "downtime", Description: "[Admin] start | end | tz | title"},
		{Text: "extenddowntime", Description: "[Admin] +2h or new end | tz"},
		{Text: "cleardowntime", Description: "[Admin] Clear scheduled downtime"},
		{Text: "wizard", Description: "[Admin] Schedule step by step"},
		{Text: "panel", Description: "[Admin] Post the status panel here"},
		{Text: "eventpanel", Description: "[Admin] Post an event panel here"},
		{Text: "updateevents", Description: "[Admin] Refresh event panels"},
		{Text: "cancel", Description: "Stop the wizard"},
		{Text: "help", Description: "Command help"},
	}); err != nil {
		log.Warn("failed to set commands", zap.Error(err))
	}
	return b, nil
}

// Start begins polling for Telegram updates. It blocks until Stop.
func (b *Bot) Start() {
	b.log.Info("starting telegram polling", zap.String("user", b.bot.Me.Username))
	b.bot.Start()
}

// Stop gracefully stops the bot.
func (b *Bot) Stop() {
	b.bot.Stop()
}

// Surface returns the panel surface backed by this bot.
func (b *Bot) Surface() *Surface {
	return NewSurface(b.bot)
}

func (b *Bot) allowed(chatID int64) bool {
	return len(b.opts.AllowedChatIDs) == 0 || slices.Contains(b.opts.AllowedChatIDs, chatID)
}

func (b *Bot) registerHandlers() {
	b.bot.Use(b.allowlist)

	b.bot.Handle("/start", b.handleHelp)
	b.bot.Handle("/help", b.handleHelp)
	b.bot.Handle("/status", b.handleStatus)
	b.bot.Handle("/events", b.handleEvents)
	b.bot.Handle("/downtime", b.handleDowntime)
	b.bot.Handle("/extenddowntime", b.handleExtend)
	b.bot.Handle("/cleardowntime", b.handleClear)
	b.bot.Handle("/panel", b.handlePanel)
	b.bot.Handle("/eventpanel", b.handleEventPanel)
	b.bot.Handle("/updateevents", b.handleUpdateEvents)
	b.bot.Handle("/wizard", b.handleWizard)
	b.bot.Handle("/cancel", b.handleCancel)

	// Callback queries for inline buttons.
	b.bot.Handle(tele.OnCallback, b.handleCallback)

	// Plain text feeds the wizard.
	b.bot.Handle(tele.OnText, b.handleText)
}

// allowlist drops updates from group chats that are not allowed.
func (b *Bot) allowlist(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		if chat := c.Chat(); chat != nil && chat.Type != tele.ChatPrivate && !b.allowed(chat.ID) {
			b.log.Debug("ignoring chat not on allowlist", zap.Int64("chat", chat.ID))
			return nil
		}
		return next(c)
	}
}

// RunWizardSweeper tells users when their wizard timed out. It blocks
// until ctx is done.
func (b *Bot) RunWizardSweeper(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, k := range b.wizard.Expire() {
				if _, err := b.bot.Send(&tele.Chat{ID: k.GuildID}, msgWizardTimeout, htmlOpts); err != nil {
					b.log.Warn("wizard timeout notice failed", zap.Int64("chat", k.GuildID), zap.Error(err))
				}
			}
		}
	}
}

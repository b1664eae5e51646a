// Package discord is the Discord adapter: slash commands, the wizard modal,
// the panel button and the panel surface.
package discord

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"downtime-panel-bot/internal/downtime"
	"downtime-panel-bot/internal/events"
	"downtime-panel-bot/internal/models"
	"downtime-panel-bot/internal/panels"
	"downtime-panel-bot/internal/status"
	"downtime-panel-bot/internal/timeparse"
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
	SyncGuildIDs        []int64 // register commands per guild; empty registers globally
	AllowedGuildIDs     []int64 // empty allows every guild
	ClearGlobalCommands bool
	RoleName            string
}

// Bot wraps the Discord session and command handling.
type Bot struct {
	session  *discordgo.Session
	svc      Service
	resolver *timeparse.Resolver
	opts     Options
	log      *zap.Logger
	timeout  time.Duration
}

// New creates the session and installs handlers. Call Start to connect.
func New(token string, svc Service, resolver *timeparse.Resolver, opts Options, log *zap.Logger) (*Bot, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds

	b := &Bot{
		session:  s,
		svc:      svc,
		resolver: resolver,
		opts:     opts,
		log:      log,
		timeout:  15 * time.Second,
	}
	s.AddHandler(b.onReady)
	s.AddHandler(b.onGuildCreate)
	s.AddHandler(b.onInteraction)
	return b, nil
}

// Surface returns the panel surface backed by this session.
func (b *Bot) Surface() *Surface {
	return NewSurface(b.session)
}

// Start opens the gateway connection.
func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}
	return nil
}

// Stop closes the gateway connection.
func (b *Bot) Stop() error {
	return b.session.Close()
}

func (b *Bot) allowed(guildID int64) bool {
	return len(b.opts.AllowedGuildIDs) == 0 || slices.Contains(b.opts.AllowedGuildIDs, guildID)
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.log.Info("discord connected",
		zap.String("user", r.User.Username),
		zap.Int("guilds", len(r.Guilds)),
		zap.Int64s("sync_guilds", b.opts.SyncGuildIDs),
		zap.Int64s("allowed_guilds", b.opts.AllowedGuildIDs))
	if err := b.registerCommands(s, r.User.ID); err != nil {
		b.log.Error("register commands failed", zap.Error(err))
	}
}

func (b *Bot) registerCommands(s *discordgo.Session, appID string) error {
	cmds := commands()
	if len(b.opts.SyncGuildIDs) == 0 {
		synced, err := s.ApplicationCommandBulkOverwrite(appID, "", cmds)
		if err != nil {
			return fmt.Errorf("sync global commands: %w", err)
		}
		b.log.Info("synced global commands", zap.Int("count", len(synced)))
		return nil
	}

	if b.opts.ClearGlobalCommands {
		if _, err := s.ApplicationCommandBulkOverwrite(appID, "", []*discordgo.ApplicationCommand{}); err != nil {
			return fmt.Errorf("clear global commands: %w", err)
		}
		b.log.Info("cleared global commands")
	}
	for _, guildID := range b.opts.SyncGuildIDs {
		synced, err := s.ApplicationCommandBulkOverwrite(appID, strconv.FormatInt(guildID, 10), cmds)
		if err != nil {
			b.log.Error("sync guild commands failed", zap.Int64("guild", guildID), zap.Error(err))
			continue
		}
		b.log.Info("synced guild commands", zap.Int64("guild", guildID), zap.Int("count", len(synced)))
	}
	return nil
}

// onGuildCreate leaves guilds that are not on the allowlist.
func (b *Bot) onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	guildID, err := strconv.ParseInt(g.ID, 10, 64)
	if err != nil || b.allowed(guildID) {
		return
	}
	b.log.Warn("leaving guild not on allowlist", zap.Int64("guild", guildID), zap.String("name", g.Name))
	if err := s.GuildLeave(g.ID); err != nil {
		b.log.Error("leave guild failed", zap.Int64("guild", guildID), zap.Error(err))
	}
}

func (b *Bot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()

	guildID, err := strconv.ParseInt(i.GuildID, 10, 64)
	if err != nil || i.Member == nil {
		b.reply(s, i, msgGuildOnly)
		return
	}
	if !b.allowed(guildID) {
		b.reply(s, i, msgNotAllowed)
		return
	}

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		b.handleCommand(ctx, s, i, guildID)
	case discordgo.InteractionApplicationCommandAutocomplete:
		b.handleAutocomplete(s, i)
	case discordgo.InteractionMessageComponent:
		if i.MessageComponentData().CustomID == buttonCheckID {
			b.replyEmbed(s, i, statusEmbed(b.svc.Status(guildID, Style{}), true))
		}
	case discordgo.InteractionModalSubmit:
		if i.ModalSubmitData().CustomID == modalWizardID {
			b.handleWizardSubmit(ctx, s, i, guildID)
		}
	}
}

// ── Responses ───────────────────────────────────────────────────────

func (b *Bot) reply(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	b.respond(s, i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: content, Flags: discordgo.MessageFlagsEphemeral},
	})
}

func (b *Bot) replyEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, e *discordgo.MessageEmbed) {
	b.respond(s, i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{e},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
}

func (b *Bot) respond(s *discordgo.Session, i *discordgo.InteractionCreate, resp *discordgo.InteractionResponse) {
	if err := s.InteractionRespond(i.Interaction, resp); err != nil {
		b.log.Warn("interaction response failed", zap.String("guild", i.GuildID), zap.Error(err))
	}
}

// deferReply acknowledges a slow interaction; finish with followup.
func (b *Bot) deferReply(s *discordgo.Session, i *discordgo.InteractionCreate) {
	b.respond(s, i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	})
}

func (b *Bot) followup(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	_, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Content: content,
		Flags:   discordgo.MessageFlagsEphemeral,
	})
	if err != nil {
		b.log.Warn("followup failed", zap.String("guild", i.GuildID), zap.Error(err))
	}
}

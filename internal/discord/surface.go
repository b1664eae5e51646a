package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/bwmarrin/discordgo"

	"downtime-panel-bot/internal/panels"
	"downtime-panel-bot/internal/status"
)

// api is the part of *discordgo.Session the panel surface needs.
type api interface {
	Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessage(channelID, messageID string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEditComplex(m *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Surface edits panels posted in Discord channels.
type Surface struct {
	api api
}

func NewSurface(s *discordgo.Session) *Surface {
	return &Surface{api: s}
}

func (s *Surface) Style() status.Style { return Style{} }

func (s *Surface) ResolveChannel(ctx context.Context, channelID int64) (panels.Channel, error) {
	id := strconv.FormatInt(channelID, 10)
	ch, err := s.api.Channel(id, discordgo.WithContext(ctx))
	if err != nil {
		return nil, classify(err)
	}
	return channel{api: s.api, id: id, kind: ch.Type}, nil
}

type channel struct {
	api  api
	id   string
	kind discordgo.ChannelType
}

func (c channel) FetchMessage(ctx context.Context, messageID int64) (panels.Message, error) {
	if !holdsMessages(c.kind) {
		return nil, panels.ErrLookupUnsupported
	}
	id := strconv.FormatInt(messageID, 10)
	if _, err := c.api.ChannelMessage(c.id, id, discordgo.WithContext(ctx)); err != nil {
		return nil, classify(err)
	}
	return message{api: c.api, channelID: c.id, id: id}, nil
}

type message struct {
	api       api
	channelID string
	id        string
}

func (m message) Edit(ctx context.Context, content panels.Content) error {
	embeds, components := panelMessage(content)
	if embeds == nil {
		return fmt.Errorf("empty panel content")
	}
	edit := discordgo.NewMessageEdit(m.channelID, m.id).SetEmbeds(embeds)
	edit.Components = &components
	if _, err := m.api.ChannelMessageEditComplex(edit, discordgo.WithContext(ctx)); err != nil {
		return classify(err)
	}
	return nil
}

// holdsMessages reports whether a channel type supports message lookup.
func holdsMessages(t discordgo.ChannelType) bool {
	switch t {
	case discordgo.ChannelTypeGuildCategory,
		discordgo.ChannelTypeGuildForum,
		discordgo.ChannelTypeGuildStore,
		discordgo.ChannelTypeGuildDirectory:
		return false
	}
	return true
}

var unreachableCodes = map[int]bool{
	discordgo.ErrCodeUnknownChannel:     true,
	discordgo.ErrCodeUnknownMessage:     true,
	discordgo.ErrCodeMissingAccess:      true,
	discordgo.ErrCodeMissingPermissions: true,
}

// classify wraps errors meaning the panel is gone for good with
// panels.ErrPanelUnreachable.
func classify(err error) error {
	var rest *discordgo.RESTError
	if !errors.As(err, &rest) {
		return err
	}
	if rest.Message != nil && unreachableCodes[rest.Message.Code] {
		return fmt.Errorf("%w: %v", panels.ErrPanelUnreachable, err)
	}
	if rest.Response != nil && rest.Response.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %v", panels.ErrPanelUnreachable, err)
	}
	return err
}

package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v3"

	"downtime-panel-bot/internal/panels"
	"downtime-panel-bot/internal/status"
)

// api is the part of *tele.Bot the panel surface needs.
type api interface {
	ChatByID(id int64) (*tele.Chat, error)
	Edit(msg tele.Editable, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// Surface edits panels posted in Telegram chats.
type Surface struct {
	api api
}

func NewSurface(b *tele.Bot) *Surface {
	return &Surface{api: b}
}

func (s *Surface) Style() status.Style { return style }

func (s *Surface) ResolveChannel(_ context.Context, channelID int64) (panels.Channel, error) {
	chat, err := s.api.ChatByID(channelID)
	if err != nil {
		return nil, classify(err)
	}
	return channel{api: s.api, chat: chat}, nil
}

type channel struct {
	api  api
	chat *tele.Chat
}

// FetchMessage returns a handle without a round trip; the Bot API has no
// message lookup, so a missing message surfaces on Edit.
func (c channel) FetchMessage(_ context.Context, messageID int64) (panels.Message, error) {
	return message{api: c.api, ref: tele.StoredMessage{
		MessageID: fmt.Sprint(messageID),
		ChatID:    c.chat.ID,
	}}, nil
}

type message struct {
	api api
	ref tele.StoredMessage
}

func (m message) Edit(_ context.Context, content panels.Content) error {
	text, markup, ok := panelContent(content)
	if !ok {
		return fmt.Errorf("empty panel content")
	}
	opts := &tele.SendOptions{ParseMode: tele.ModeHTML, ReplyMarkup: markup, DisableWebPagePreview: true}
	_, err := m.api.Edit(m.ref, text, opts)
	if err != nil && !notModified(err) {
		return classify(err)
	}
	return nil
}

// notModified reports the harmless error for an edit with identical content.
func notModified(err error) bool {
	return errors.Is(err, tele.ErrMessageNotModified) ||
		strings.Contains(err.Error(), "message is not modified")
}

// isChannelError reports whether a Telegram API error means the bot lost access to a chat.
func isChannelError(err error) bool {
	return errors.Is(err, tele.ErrChatNotFound) ||
		errors.Is(err, tele.ErrKickedFromGroup) ||
		errors.Is(err, tele.ErrKickedFromSuperGroup) ||
		errors.Is(err, tele.ErrKickedFromChannel) ||
		errors.Is(err, tele.ErrNotChannelMember) ||
		errors.Is(err, tele.ErrNoRightsToSend) ||
		strings.Contains(err.Error(), "message to edit not found")
}

func classify(err error) error {
	if isChannelError(err) {
		return fmt.Errorf("%w: %v", panels.ErrPanelUnreachable, err)
	}
	return err
}

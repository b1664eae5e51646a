package mock

import (
	"context"
	"errors"
	"sync"

	"downtime-panel-bot/internal/panels"
	"downtime-panel-bot/internal/status"
)

var (
	ErrUnknownChannel = errors.New("unknown channel")
	ErrUnknownMessage = errors.New("unknown message")
)

// Surface is an in-memory panels.Surface.
type Surface struct {
	mu          sync.Mutex
	messages    map[int64]map[int64]*Message
	unsupported map[int64]bool

	// OnEdit, when set, is called before every successful edit.
	OnEdit func(channelID, messageID int64)
}

func NewSurface() *Surface {
	return &Surface{
		messages:    make(map[int64]map[int64]*Message),
		unsupported: make(map[int64]bool),
	}
}

// AddMessage makes a message resolvable.
func (s *Surface) AddMessage(channelID, messageID int64) *Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.messages[channelID] == nil {
		s.messages[channelID] = make(map[int64]*Message)
	}
	m := &Message{surface: s, ChannelID: channelID, MessageID: messageID}
	s.messages[channelID][messageID] = m
	return m
}

// AddUnsupportedChannel makes a channel resolvable without message lookup.
func (s *Surface) AddUnsupportedChannel(channelID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unsupported[channelID] = true
}

// Message returns a previously added message.
func (s *Surface) Message(channelID, messageID int64) *Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.messages[channelID][messageID]
}

func (s *Surface) Style() status.Style { return status.PlainStyle{} }

func (s *Surface) ResolveChannel(ctx context.Context, channelID int64) (panels.Channel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unsupported[channelID] {
		return channel{surface: s, id: channelID, unsupported: true}, nil
	}
	if _, ok := s.messages[channelID]; !ok {
		return nil, ErrUnknownChannel
	}
	return channel{surface: s, id: channelID}, nil
}

type channel struct {
	surface     *Surface
	id          int64
	unsupported bool
}

func (c channel) FetchMessage(_ context.Context, messageID int64) (panels.Message, error) {
	if c.unsupported {
		return nil, panels.ErrLookupUnsupported
	}
	c.surface.mu.Lock()
	defer c.surface.mu.Unlock()
	m, ok := c.surface.messages[c.id][messageID]
	if !ok {
		return nil, ErrUnknownMessage
	}
	return m, nil
}

// Message records the edits applied to it.
type Message struct {
	surface   *Surface
	ChannelID int64
	MessageID int64
	Edits     []panels.Content
	// EditErr, when set, fails every edit.
	EditErr error
}

func (m *Message) Edit(ctx context.Context, content panels.Content) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.EditErr != nil {
		return m.EditErr
	}
	if m.surface.OnEdit != nil {
		m.surface.OnEdit(m.ChannelID, m.MessageID)
	}
	m.surface.mu.Lock()
	defer m.surface.mu.Unlock()
	m.Edits = append(m.Edits, content)
	return nil
}

// Last returns the most recent content, or the zero value.
func (m *Message) Last() panels.Content {
	m.surface.mu.Lock()
	defer m.surface.mu.Unlock()
	if len(m.Edits) == 0 {
		return panels.Content{}
	}
	return m.Edits[len(m.Edits)-1]
}

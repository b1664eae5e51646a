package panels

import (
	"context"
	"errors"

	"downtime-panel-bot/internal/events"
	"downtime-panel-bot/internal/status"
)

var (
	// ErrPanelUnreachable marks a panel whose channel or message is gone.
	// It never leaves the synchronizer.
	ErrPanelUnreachable = errors.New("panel unreachable")
	// ErrLookupUnsupported is returned for channel types without message lookup.
	ErrLookupUnsupported = errors.New("channel does not support message lookup")
)

// Content is what a panel shows. Exactly one field is set.
type Content struct {
	Status *status.Projection
	Events *events.Board
}

// Surface is a chat platform that hosts panels.
type Surface interface {
	// Style renders instants the way the platform displays them.
	Style() status.Style
	ResolveChannel(ctx context.Context, channelID int64) (Channel, error)
}

// Channel is a resolved channel on a Surface.
type Channel interface {
	FetchMessage(ctx context.Context, messageID int64) (Message, error)
}

// Message is a posted panel message.
type Message interface {
	// Edit replaces the message content in place. Implementations treat an
	// unchanged-content response as success.
	Edit(ctx context.Context, content Content) error
}

package mq

import (
	"context"

	"downtime-panel-bot/internal/maintenance"
)

// ChangeNotifier implements maintenance.Notifier by publishing to RabbitMQ.
type ChangeNotifier struct {
	pub *Publisher
}

func NewChangeNotifier(pub *Publisher) *ChangeNotifier {
	return &ChangeNotifier{pub: pub}
}

// DowntimeChanged publishes a downtime.changed message.
func (n *ChangeNotifier) DowntimeChanged(ctx context.Context, c maintenance.Change) error {
	return n.pub.Publish(ctx, RoutingDowntimeChanged, changedMsg(c))
}

func changedMsg(c maintenance.Change) DowntimeChangedMsg {
	return DowntimeChangedMsg{
		GuildID: c.GuildID,
		Action:  c.Action,
		Start:   c.Window.Start,
		End:     c.Window.End,
		Title:   c.Window.Title,
		At:      c.At.UTC(),
	}
}

// RefreshRequester asks running bots to re-render panels.
type RefreshRequester struct {
	pub *Publisher
}

func NewRefreshRequester(pub *Publisher) *RefreshRequester {
	return &RefreshRequester{pub: pub}
}

// Request publishes a panels.refresh message.
func (r *RefreshRequester) Request(ctx context.Context, guildID int64, events bool) error {
	return r.pub.Publish(ctx, RoutingPanelsRefresh, RefreshRequestMsg{GuildID: guildID, Events: events})
}

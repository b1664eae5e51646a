package main

import (
	"context"

	"go.uber.org/zap"

	"downtime-panel-bot/internal/mq"
	"downtime-panel-bot/internal/panels"
)

type refresher interface {
	Refresh(ctx context.Context, guildID int64) panels.Report
	RefreshEvents(ctx context.Context, guildID int64) panels.Report
}

// listener consumes refresh requests from RabbitMQ and re-renders panels.
type listener struct {
	svc      refresher
	consumer *mq.Consumer
	log      *zap.Logger
}

func newListener(svc refresher, consumer *mq.Consumer, log *zap.Logger) *listener {
	return &listener{svc: svc, consumer: consumer, log: log}
}

func (l *listener) start(ctx context.Context) {
	refreshCh, err := l.consumer.Consume(mq.QueuePanelsRefresh)
	if err != nil {
		l.log.Fatal("failed to consume", zap.String("queue", mq.QueuePanelsRefresh), zap.Error(err))
	}

	l.log.Info("consuming", zap.String("queue", mq.QueuePanelsRefresh))

	for {
		select {
		case <-ctx.Done():
			l.log.Info("listener stopped")
			return
		case d, ok := <-refreshCh:
			if !ok {
				return
			}
			l.handleRefresh(ctx, d.Body)
			d.Ack(false)
		}
	}
}

// handleRefresh runs one requested pass. Malformed bodies are dropped.
func (l *listener) handleRefresh(ctx context.Context, body []byte) {
	req, err := mq.DecodeRefreshRequest(body)
	if err != nil {
		l.log.Warn("bad refresh request", zap.Error(err))
		return
	}

	var report panels.Report
	if req.Events {
		report = l.svc.RefreshEvents(ctx, req.GuildID)
	} else {
		report = l.svc.Refresh(ctx, req.GuildID)
	}
	l.log.Info("refresh requested",
		zap.Int64("guild", req.GuildID),
		zap.Bool("events", req.Events),
		zap.Int("refreshed", report.Refreshed),
		zap.Int("pruned", report.Pruned))
}

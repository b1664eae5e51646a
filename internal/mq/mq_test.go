package mq

import (
	"testing"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"downtime-panel-bot/internal/maintenance"
	"downtime-panel-bot/internal/models"
)

func TestTopologyDeclaresOnlyConsumedQueues(t *testing.T) {
	// downtimebot.panels_refresh is read by the bot's listener. Nothing in
	// this repo reads downtime.changed, so no durable queue may collect it.
	consumed := map[string]bool{QueuePanelsRefresh: true}
	for _, b := range bindings {
		assert.True(t, consumed[b.queue], "queue %s has no consumer", b.queue)
		assert.NotEqual(t, RoutingDowntimeChanged, b.key)
	}
	assert.Equal(t, []binding{{QueuePanelsRefresh, RoutingPanelsRefresh}}, bindings)
}

func TestNewPublishing(t *testing.T) {
	now := time.Date(2026, 2, 15, 21, 0, 0, 0, time.UTC)
	pub, err := newPublishing(RefreshRequestMsg{GuildID: 42, Events: true}, now)
	require.NoError(t, err)

	assert.Equal(t, "application/json", pub.ContentType)
	assert.Equal(t, amqp.Persistent, pub.DeliveryMode)
	assert.Equal(t, now, pub.Timestamp)
	_, err = uuid.Parse(pub.MessageId)
	assert.NoError(t, err)
	assert.JSONEq(t, `{"guild_id":42,"events":true}`, string(pub.Body))

	msg, err := DecodeRefreshRequest(pub.Body)
	require.NoError(t, err)
	assert.Equal(t, RefreshRequestMsg{GuildID: 42, Events: true}, msg)
}

func TestDecodeRefreshRequestRejectsGarbage(t *testing.T) {
	_, err := DecodeRefreshRequest([]byte("not json"))
	assert.Error(t, err)
}

func TestChangedMsg(t *testing.T) {
	start := time.Date(2026, 2, 15, 21, 0, 0, 0, time.UTC)
	w := models.NewWindow(start, start.Add(2*time.Hour), "Patch")
	at := time.Date(2026, 2, 1, 9, 0, 0, 0, time.FixedZone("x", 3600))

	msg := changedMsg(maintenance.Change{GuildID: 7, Action: maintenance.ActionSet, Window: w, At: at})
	assert.Equal(t, int64(7), msg.GuildID)
	assert.Equal(t, maintenance.ActionSet, msg.Action)
	assert.Equal(t, start.Unix(), *msg.Start)
	assert.Equal(t, "Patch", *msg.Title)
	assert.Equal(t, time.UTC, msg.At.Location())

	cleared := changedMsg(maintenance.Change{GuildID: 7, Action: maintenance.ActionClear, At: at})
	assert.Nil(t, cleared.Start)
	assert.Nil(t, cleared.End)
}

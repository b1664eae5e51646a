package telegram

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v3"

	"downtime-panel-bot/internal/panels"
)

type edit struct {
	ref  tele.Editable
	text string
	opts *tele.SendOptions
}

type fakeAPI struct {
	chats   map[int64]bool
	edits   []edit
	editErr error
}

func (f *fakeAPI) ChatByID(id int64) (*tele.Chat, error) {
	if !f.chats[id] {
		return nil, tele.ErrChatNotFound
	}
	return &tele.Chat{ID: id, Type: tele.ChatSuperGroup}, nil
}

func (f *fakeAPI) Edit(msg tele.Editable, what interface{}, opts ...interface{}) (*tele.Message, error) {
	if f.editErr != nil {
		return nil, f.editErr
	}
	e := edit{ref: msg, text: what.(string)}
	if len(opts) > 0 {
		e.opts, _ = opts[0].(*tele.SendOptions)
	}
	f.edits = append(f.edits, e)
	return &tele.Message{}, nil
}

func newSurface(f *fakeAPI) *Surface {
	return &Surface{api: f}
}

func fetch(t *testing.T, s *Surface, chatID, msgID int64) panels.Message {
	t.Helper()
	ch, err := s.ResolveChannel(context.Background(), chatID)
	require.NoError(t, err)
	msg, err := ch.FetchMessage(context.Background(), msgID)
	require.NoError(t, err)
	return msg
}

func TestSurfaceEditsPanel(t *testing.T) {
	f := &fakeAPI{chats: map[int64]bool{-100123: true}}
	msg := fetch(t, newSurface(f), -100123, 42)

	p := project(start.Add(-time.Hour), "Patch")
	require.NoError(t, msg.Edit(context.Background(), panels.Content{Status: &p}))

	require.Len(t, f.edits, 1)
	id, chatID := f.edits[0].ref.MessageSig()
	assert.Equal(t, "42", id)
	assert.Equal(t, int64(-100123), chatID)
	assert.Contains(t, f.edits[0].text, "ONLINE")
	require.NotNil(t, f.edits[0].opts)
	assert.Equal(t, tele.ModeHTML, f.edits[0].opts.ParseMode)
	assert.NotNil(t, f.edits[0].opts.ReplyMarkup)
}

func TestSurfaceUnknownChatIsUnreachable(t *testing.T) {
	_, err := newSurface(&fakeAPI{}).ResolveChannel(context.Background(), 7)
	assert.ErrorIs(t, err, panels.ErrPanelUnreachable)
}

func TestSurfaceNotModifiedIsSuccess(t *testing.T) {
	f := &fakeAPI{chats: map[int64]bool{1: true}, editErr: tele.ErrMessageNotModified}
	msg := fetch(t, newSurface(f), 1, 2)
	p := project(start, "Patch")
	assert.NoError(t, msg.Edit(context.Background(), panels.Content{Status: &p}))
}

func TestSurfaceEditErrors(t *testing.T) {
	p := project(start, "Patch")
	tests := []struct {
		name        string
		err         error
		unreachable bool
	}{
		{"kicked", tele.ErrKickedFromSuperGroup, true},
		{"no rights", tele.ErrNoRightsToSend, true},
		{"message gone", errors.New("telegram: Bad Request: message to edit not found (400)"), true},
		{"flood", errors.New("telegram: retry after 5 (429)"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeAPI{chats: map[int64]bool{1: true}, editErr: tt.err}
			err := fetch(t, newSurface(f), 1, 2).Edit(context.Background(), panels.Content{Status: &p})
			require.Error(t, err)
			assert.Equal(t, tt.unreachable, errors.Is(err, panels.ErrPanelUnreachable))
		})
	}
}

func TestSurfaceEmptyContent(t *testing.T) {
	f := &fakeAPI{chats: map[int64]bool{1: true}}
	err := fetch(t, newSurface(f), 1, 2).Edit(context.Background(), panels.Content{})
	assert.Error(t, err)
	assert.Empty(t, f.edits)
}

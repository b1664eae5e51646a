// Package wizard runs the step-by-step scheduling dialogue. Answers are
// validated as they arrive and nothing is written until the last step.
package wizard

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"downtime-panel-bot/internal/downtime"
	"downtime-panel-bot/internal/timeparse"
)

var (
	ErrNoSession = errors.New("no wizard in progress")
	ErrExpired   = errors.New("wizard timed out")
)

// CancelToken aborts the dialogue at any step.
const CancelToken = "cancel"

// DefaultStepTimeout is how long each step waits for an answer.
const DefaultStepTimeout = 2 * time.Minute

// Step is the question the dialogue is waiting on.
type Step int

const (
	StepTimezone Step = iota
	StepStart
	StepEnd
	StepTitle
)

// Key identifies one dialogue: a user inside a guild or chat.
type Key struct {
	GuildID int64
	UserID  int64
}

// Answers collected so far.
type Answers struct {
	Timezone string
	Start    string
	End      string
	Title    string
}

// Applier writes the finished window.
type Applier interface {
	SetDowntime(ctx context.Context, guildID int64, startRaw, endRaw, tzRaw, title string) (downtime.Applied, error)
}

// Reply tells the caller what to say next.
type Reply struct {
	Next      Step // valid unless Done or Cancelled
	Done      bool
	Cancelled bool
	Applied   downtime.Applied
}

type session struct {
	step     Step
	answers  Answers
	zone     timeparse.Zone
	deadline time.Time
}

type Config struct {
	Resolver    *timeparse.Resolver
	Parser      *timeparse.Parser
	Applier     Applier
	StepTimeout time.Duration
	Now         func() time.Time
}

// Manager holds the open dialogues.
type Manager struct {
	mu       sync.Mutex
	sessions map[Key]*session

	resolver *timeparse.Resolver
	parser   *timeparse.Parser
	apply    Applier
	timeout  time.Duration
	now      func() time.Time
}

func New(cfg Config) *Manager {
	m := &Manager{
		sessions: make(map[Key]*session),
		resolver: cfg.Resolver,
		parser:   cfg.Parser,
		apply:    cfg.Applier,
		timeout:  cfg.StepTimeout,
		now:      cfg.Now,
	}
	if m.timeout <= 0 {
		m.timeout = DefaultStepTimeout
	}
	if m.now == nil {
		m.now = time.Now
	}
	return m
}

// Begin opens a dialogue for key, discarding any previous one.
func (m *Manager) Begin(key Key) Reply {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[key] = &session{step: StepTimezone, deadline: m.now().Add(m.timeout)}
	return Reply{Next: StepTimezone}
}

// Active reports whether key has an open, unexpired dialogue.
func (m *Manager) Active(key Key) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[key]
	return ok && !m.now().After(s.deadline)
}

// Cancel drops the dialogue. It reports whether one was open.
func (m *Manager) Cancel(key Key) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[key]
	delete(m.sessions, key)
	return ok
}

// Expire removes every dialogue whose step deadline has passed and returns
// their keys.
func (m *Manager) Expire() []Key {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	var expired []Key
	for k, s := range m.sessions {
		if now.After(s.deadline) {
			expired = append(expired, k)
			delete(m.sessions, k)
		}
	}
	return expired
}

// Answer feeds the user's text to the current step. A validation error
// leaves the dialogue on the same step so the user can retry.
func (m *Manager) Answer(ctx context.Context, key Key, text string) (Reply, error) {
	text = strings.TrimSpace(text)

	m.mu.Lock()
	s, ok := m.sessions[key]
	if !ok {
		m.mu.Unlock()
		return Reply{}, ErrNoSession
	}
	now := m.now()
	if now.After(s.deadline) {
		delete(m.sessions, key)
		m.mu.Unlock()
		return Reply{}, ErrExpired
	}
	if strings.EqualFold(text, CancelToken) {
		delete(m.sessions, key)
		m.mu.Unlock()
		return Reply{Cancelled: true}, nil
	}
	s.deadline = now.Add(m.timeout)

	if err := m.accept(s, text); err != nil {
		m.mu.Unlock()
		return Reply{Next: s.step}, err
	}
	if s.step != StepTitle+1 {
		next := s.step
		m.mu.Unlock()
		return Reply{Next: next}, nil
	}
	answers := s.answers
	delete(m.sessions, key)
	m.mu.Unlock()

	applied, err := m.apply.SetDowntime(ctx, key.GuildID, answers.Start, answers.End, answers.Timezone, answers.Title)
	if err != nil {
		if errors.Is(err, downtime.ErrInvalidRange) {
			m.reopen(key, s, StepEnd)
			return Reply{Next: StepEnd}, err
		}
		return Reply{}, err
	}
	return Reply{Done: true, Applied: applied}, nil
}

func (m *Manager) accept(s *session, text string) error {
	switch s.step {
	case StepTimezone:
		if text == "" || text == "-" {
			text = "UTC"
		}
		zone, err := m.resolver.Resolve(text)
		if err != nil {
			return err
		}
		s.zone = zone
		s.answers.Timezone = text
	case StepStart:
		if _, err := m.parser.Parse(text, s.zone); err != nil {
			return err
		}
		s.answers.Start = text
	case StepEnd:
		if _, err := m.parser.Parse(text, s.zone); err != nil {
			return err
		}
		s.answers.End = text
	case StepTitle:
		if text == "-" || strings.EqualFold(text, "skip") {
			text = ""
		}
		s.answers.Title = text
	}
	s.step++
	return nil
}

// reopen puts a finished dialogue back on step, unless a new one started.
func (m *Manager) reopen(key Key, s *session, step Step) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[key]; ok {
		return
	}
	s.step = step
	s.deadline = m.now().Add(m.timeout)
	m.sessions[key] = s
}

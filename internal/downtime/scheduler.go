package downtime

import (
	"strings"
	"time"

	"downtime-panel-bot/internal/models"
	"downtime-panel-bot/internal/timeparse"
)

// Applied describes a window written by ApplyWindow.
type Applied struct {
	Window     models.DowntimeWindow
	Zone       timeparse.Zone
	Start      time.Time
	End        time.Time
	RolledOver bool // end was moved to the next day
}

// Extended describes a window changed by ExtendWindow.
type Extended struct {
	Window      models.DowntimeWindow
	PreviousEnd time.Time
	End         time.Time
	Added       time.Duration  // set for "+duration" input
	Zone        timeparse.Zone
}

// Scheduler validates scheduling input and writes it into the Store.
// Every operation either fully applies or leaves the store untouched.
type Scheduler struct {
	store    *Store
	resolver *timeparse.Resolver
	parser   *timeparse.Parser
}

func NewScheduler(store *Store, resolver *timeparse.Resolver, parser *timeparse.Parser) *Scheduler {
	return &Scheduler{store: store, resolver: resolver, parser: parser}
}

// ApplyWindow replaces the guild's window with [startRaw, endRaw) read in tzRaw.
func (s *Scheduler) ApplyWindow(guildID int64, startRaw, endRaw, tzRaw, title string) (Applied, error) {
	zone, err := s.resolver.Resolve(tzRaw)
	if err != nil {
		return Applied{}, err
	}
	start, err := s.parser.Parse(startRaw, zone)
	if err != nil {
		return Applied{}, err
	}
	end, err := s.parser.Parse(endRaw, zone)
	if err != nil {
		return Applied{}, err
	}

	rolled := false
	if start.TimeOnly && end.TimeOnly && !end.Local.After(start.Local) {
		end.Local = end.Local.AddDate(0, 0, 1)
		end.UTC = end.Local.UTC()
		rolled = true
	}
	if !end.UTC.After(start.UTC) {
		return Applied{}, &RangeError{Start: start.UTC, End: end.UTC}
	}

	title = strings.TrimSpace(title)
	if title == "" {
		title = models.DefaultTitle
	}
	w := models.NewWindow(start.UTC, end.UTC, title)
	s.store.Set(guildID, w)
	return Applied{Window: w, Zone: zone, Start: start.UTC, End: end.UTC, RolledOver: rolled}, nil
}

// ExtendWindow moves the end of the guild's active window. newEndRaw is
// either "+[Nh][Nm]" relative to the stored end or an absolute time in tzRaw.
func (s *Scheduler) ExtendWindow(guildID int64, newEndRaw, tzRaw string) (Extended, error) {
	w := s.store.Get(guildID)
	if !w.Active() {
		return Extended{}, ErrNoActiveWindow
	}
	start, prevEnd := w.StartTime(), w.EndTime()

	zone, err := s.resolver.Resolve(tzRaw)
	if err != nil {
		return Extended{}, err
	}

	ext := Extended{Zone: zone}
	raw := strings.TrimSpace(newEndRaw)
	if rest, ok := strings.CutPrefix(raw, "+"); ok {
		d, err := ParseDuration(rest)
		if err != nil {
			return Extended{}, err
		}
		ext.Added = d
		ext.End = prevEnd.Add(d)
	} else {
		res, err := s.parser.Parse(raw, zone)
		if err != nil {
			return Extended{}, err
		}
		ext.End = res.UTC
	}

	if !ext.End.After(start) {
		return Extended{}, &RangeError{Start: start, End: ext.End}
	}

	end := ext.End.Unix()
	w.End = &end
	s.store.Set(guildID, w)
	ext.Window = w
	ext.PreviousEnd = prevEnd
	return ext, nil
}

// ClearWindow removes the guild's window.
func (s *Scheduler) ClearWindow(guildID int64) {
	s.store.Clear(guildID)
}

// Window returns the guild's current window.
func (s *Scheduler) Window(guildID int64) models.DowntimeWindow {
	return s.store.Get(guildID)
}

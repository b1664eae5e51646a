package timeparse

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/text/width"
)

type dateKind int

const (
	fullDate dateKind = iota
	monthDay
	timeOnly
)

type layout struct {
	value string
	kind  dateKind
}

// layouts are tried in order; longer formats come before the shorter ones
// that would match a truncated prefix of the same input.
var layouts = []layout{
	{"2006-1-2 15:04", fullDate},
	{"2006-1-2 3:04 PM", fullDate},
	{"2006-1-2 3 PM", fullDate},
	{"1/2/2006 15:04", fullDate},
	{"1/2/2006 3:04 PM", fullDate},
	{"1/2/2006 3 PM", fullDate},

	{"1/2/06 15:04", fullDate},
	{"1/2/06 3:04 PM", fullDate},
	{"1/2/06 3 PM", fullDate},
	{"1/2/06 3PM", fullDate},

	{"1/2 15:04", monthDay},
	{"1/2 3:04 PM", monthDay},
	{"1/2 3 PM", monthDay},
	{"1/2 3PM", monthDay},

	{"15:04", timeOnly},
	{"3:04 PM", timeOnly},
	{"3 PM", timeOnly},
	{"3PM", timeOnly},
}

// SupportedFormats is shown to users whose input did not parse.
var SupportedFormats = []string{
	"2026-02-15 21:00",
	"2/15/2026 9:00 PM",
	"2/15/26 9 PM",
	"2/15 9:00 PM",
	"21:00",
	"9:48PM",
	"4pm",
}

var (
	punctuation    = strings.NewReplacer("∕", "/", "⁄", "/", ",", "")
	datePrefixJoin = regexp.MustCompile(`^(\d{1,2}[/-]\d{1,2})\s*[:\-]\s*`)
)

// Result is a parsed instant.
type Result struct {
	Local    time.Time
	UTC      time.Time
	TimeOnly bool // no date was typed; the date is today's in the zone
}

// Parser reads human-entered date/time strings.
type Parser struct {
	now   func() time.Time
	log   *zap.Logger
	debug bool
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) ParserOption {
	return func(p *Parser) { p.now = now }
}

// WithDebugLog logs every input that fails to parse.
func WithDebugLog(log *zap.Logger) ParserOption {
	return func(p *Parser) {
		p.log = log
		p.debug = true
	}
}

func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{now: time.Now, log: zap.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse interprets raw in zone. Partial dates are completed against the
// current date in that zone.
func (p *Parser) Parse(raw string, zone Zone) (Result, error) {
	text := Normalize(raw)
	loc := zone.Location
	if loc == nil {
		loc = time.UTC
	}
	now := p.now().In(loc)

	for _, l := range layouts {
		t, err := time.Parse(l.value, text)
		if err != nil {
			continue
		}
		var local time.Time
		switch l.kind {
		case fullDate:
			local = time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, loc)
		case monthDay:
			local = time.Date(now.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, loc)
			if local.Month() != t.Month() || local.Day() != t.Day() {
				// Feb 29 outside a leap year.
				return Result{}, p.fail(raw, text)
			}
		case timeOnly:
			local = time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, loc)
		}
		return Result{Local: local, UTC: local.UTC(), TimeOnly: l.kind == timeOnly}, nil
	}
	return Result{}, p.fail(raw, text)
}

func (p *Parser) fail(raw, normalized string) error {
	if p.debug {
		p.log.Debug("time parse failed", zap.String("input", raw), zap.String("normalized", normalized))
	}
	return fmt.Errorf("%w: %q", ErrInvalidTimeFormat, raw)
}

// Normalize rewrites the many ways people type a time into the shapes the
// layout table understands.
func Normalize(raw string) string {
	s := width.Narrow.String(strings.TrimSpace(raw))
	s = punctuation.Replace(s)
	s = strings.Join(strings.Fields(s), " ")
	s = strings.ReplaceAll(s, ".", ":")
	s = datePrefixJoin.ReplaceAllString(s, "$1 ")
	return splitMeridiem(s)
}

// splitMeridiem turns "9:48pm" and "4 pm" into "9:48 PM" and "4 PM".
func splitMeridiem(s string) string {
	if len(s) < 3 {
		return s
	}
	suffix := strings.ToUpper(s[len(s)-2:])
	if suffix != "AM" && suffix != "PM" {
		return s
	}
	head := strings.TrimRight(s[:len(s)-2], " ")
	if head == "" || !unicode.IsDigit(rune(head[len(head)-1])) {
		return s
	}
	return head + " " + suffix
}

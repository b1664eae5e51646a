package downtime

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidRange    = errors.New("end must be after start")
	ErrInvalidDuration = errors.New("invalid duration")
	ErrNoActiveWindow  = errors.New("no active downtime window")
)

// RangeError reports an end that is not after the start.
type RangeError struct {
	Start time.Time
	End   time.Time
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("end %s is not after start %s", e.End.Format(time.RFC3339), e.Start.Format(time.RFC3339))
}

func (e *RangeError) Is(target error) bool {
	return target == ErrInvalidRange
}

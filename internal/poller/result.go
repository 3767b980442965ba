package poller

import (
	"errors"
	"fmt"
	"time"

	"github.com/albapepper/doctolib-checker/internal/availability"
	"github.com/albapepper/doctolib-checker/internal/config"
	"github.com/albapepper/doctolib-checker/internal/notifications"
	"github.com/albapepper/doctolib-checker/internal/provider/doctolib"
)

// Stage names the step of a cycle that failed.
type Stage string

const (
	StageFetch     Stage = "fetch"
	StageParse     Stage = "parse"
	StageSelect    Stage = "select"
	StageNotify    Stage = "notify"
	StageHeartbeat Stage = "heartbeat"
)

// Error classes, used in logs, metrics, and status output.
const (
	ClassConfig   = "ConfigError"
	ClassNetwork  = "NetworkError"
	ClassParse    = "ParseError"
	ClassDispatch = "NotificationDispatchError"
	ClassUnknown  = "UnknownError"
)

// CycleError tags a failure with the stage that produced it.
type CycleError struct {
	Stage Stage
	Err   error
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *CycleError) Unwrap() error {
	return e.Err
}

// StageOf returns the failing stage, or "" if err is not a *CycleError.
func StageOf(err error) Stage {
	var ce *CycleError
	if errors.As(err, &ce) {
		return ce.Stage
	}
	return ""
}

// Classify maps err onto the error taxonomy. Typed errors win; otherwise the
// stage decides (a rate limiter wait failing during fetch is a NetworkError).
func Classify(err error) string {
	var (
		cfgErr      *config.ConfigError
		netErr      *doctolib.NetworkError
		parseErr    *availability.ParseError
		dispatchErr *notifications.DispatchError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &cfgErr):
		return ClassConfig
	case errors.As(err, &netErr):
		return ClassNetwork
	case errors.As(err, &parseErr):
		return ClassParse
	case errors.As(err, &dispatchErr):
		return ClassDispatch
	}

	switch StageOf(err) {
	case StageFetch:
		return ClassNetwork
	case StageParse, StageSelect:
		return ClassParse
	case StageNotify, StageHeartbeat:
		return ClassDispatch
	default:
		return ClassUnknown
	}
}

// CycleResult describes one completed cycle.
type CycleResult struct {
	StartedAt  time.Time
	FinishedAt time.Time
	Total      int
	Closest    string // raw timestamp of the closest slot within the limit
	NextSlot   string // raw next_slot from the payload, any date
	Event      notifications.Kind
	Sent       []notifications.Kind
	Err        error
}

// OK reports whether the cycle finished without a failure.
func (r CycleResult) OK() bool {
	return r.Err == nil
}

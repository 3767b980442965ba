package poller

import (
	"sync"
	"time"
)

// State of the poll loop.
type State string

const (
	StateRunning State = "running"
	StateStopped State = "stopped"
)

// Status holds the latest cycle outcome for readers outside the poll loop.
type Status struct {
	mu       sync.RWMutex
	state    State
	last     *CycleResult
	cycles   int
	failures int
	sent     int
}

// Snapshot is the JSON shape served at /status.
type Snapshot struct {
	State             State         `json:"state"`
	Cycles            int           `json:"cycles"`
	Failures          int           `json:"failures"`
	NotificationsSent int           `json:"notifications_sent"`
	LastCycle         *CycleSummary `json:"last_cycle,omitempty"`
}

type CycleSummary struct {
	StartedAt          time.Time     `json:"started_at"`
	FinishedAt         time.Time     `json:"finished_at"`
	Total              int           `json:"total"`
	ClosestWithinLimit string        `json:"closest_within_limit,omitempty"`
	NextSlot           string        `json:"next_slot,omitempty"`
	Event              string        `json:"event,omitempty"`
	Sent               []string      `json:"sent"`
	Error              *ErrorSummary `json:"error,omitempty"`
}

type ErrorSummary struct {
	Stage   string `json:"stage"`
	Class   string `json:"class"`
	Message string `json:"message"`
}

// NewStatus returns an empty, stopped status.
func NewStatus() *Status {
	return &Status{state: StateStopped}
}

func (s *Status) setState(st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = st
}

func (s *Status) record(res CycleResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = &res
	s.cycles++
	if res.Err != nil {
		s.failures++
	}
	s.sent += len(res.Sent)
}

// Snapshot copies the current state.
func (s *Status) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		State:             s.state,
		Cycles:            s.cycles,
		Failures:          s.failures,
		NotificationsSent: s.sent,
	}
	if s.last == nil {
		return snap
	}

	last := s.last
	sum := &CycleSummary{
		StartedAt:          last.StartedAt,
		FinishedAt:         last.FinishedAt,
		Total:              last.Total,
		ClosestWithinLimit: last.Closest,
		NextSlot:           last.NextSlot,
		Event:              string(last.Event),
		Sent:               make([]string, 0, len(last.Sent)),
	}
	for _, k := range last.Sent {
		sum.Sent = append(sum.Sent, string(k))
	}
	if last.Err != nil {
		sum.Error = &ErrorSummary{
			Stage:   string(StageOf(last.Err)),
			Class:   Classify(last.Err),
			Message: last.Err.Error(),
		}
	}
	snap.LastCycle = sum
	return snap
}

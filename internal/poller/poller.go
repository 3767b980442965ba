// Package poller runs the fetch → parse → select → notify → heartbeat cycle
// and the loop around it. A failed cycle is reported through the
// notification channel and never stops the loop.
//
// The poller is single-threaded: cycle N+1 starts only after cycle N and the
// inter-cycle wait have completed. Clock and wait are injectable so tests can
// drive many cycles without real delays.
package poller

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/albapepper/doctolib-checker/internal/availability"
	"github.com/albapepper/doctolib-checker/internal/config"
	"github.com/albapepper/doctolib-checker/internal/metrics"
	"github.com/albapepper/doctolib-checker/internal/notifications"
)

// Fetcher retrieves the raw availability payload.
type Fetcher interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// Sender delivers a rendered message.
type Sender interface {
	Send(ctx context.Context, message string) error
}

// WaitFunc blocks for d or until ctx is done, returning ctx.Err() in the
// latter case.
type WaitFunc func(ctx context.Context, d time.Duration) error

// Sleep is the default WaitFunc.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Option customises a Poller.
type Option func(*Poller)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Poller) { p.now = now }
}

// WithWait replaces Sleep.
func WithWait(wait WaitFunc) Option {
	return func(p *Poller) { p.wait = wait }
}

// WithStatus shares a Status with the status server.
func WithStatus(s *Status) Option {
	return func(p *Poller) { p.status = s }
}

// Poller orchestrates poll cycles.
type Poller struct {
	cfg      *config.Config
	fetcher  Fetcher
	sender   Sender
	composer notifications.Composer
	alive    notifications.AliveCheck
	loc      *time.Location
	now      func() time.Time
	wait     WaitFunc
	status   *Status
	logger   *slog.Logger
}

// New creates a Poller. cfg must already be validated.
func New(cfg *config.Config, fetcher Fetcher, sender Sender, logger *slog.Logger, opts ...Option) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	p := &Poller{
		cfg:     cfg,
		fetcher: fetcher,
		sender:  sender,
		composer: notifications.Composer{
			Limit:     cfg.Limit,
			StartDate: cfg.StartDate,
			LimitDate: cfg.LimitDate,
		},
		alive: notifications.AliveCheck{
			Enabled: cfg.AliveCheck,
			Hour:    cfg.HourOfAliveCheck,
		},
		loc:    loc,
		now:    time.Now,
		wait:   Sleep,
		status: NewStatus(),
		logger: logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Status returns the shared status snapshot holder.
func (p *Poller) Status() *Status {
	return p.status
}

// Run executes cycles until run_in_loop is false (after one cycle) or ctx
// is cancelled. Cancellation is honoured at the cycle boundary and during
// the wait; an in-flight fetch or send is aborted through ctx.
func (p *Poller) Run(ctx context.Context) {
	p.logger.Info("Starting checker",
		"start_date", p.cfg.StartDate,
		"limit_date", p.cfg.LimitDate,
		"limit", p.cfg.Limit,
		"run_in_loop", p.cfg.RunInLoop,
		"interval", p.cfg.Interval())

	p.status.setState(StateRunning)
	defer p.status.setState(StateStopped)

	for {
		p.RunCycle(ctx)

		if !p.cfg.RunInLoop {
			p.logger.Debug("Single run mode - exiting")
			return
		}

		p.logger.Debug("Waiting before next check", "interval", p.cfg.Interval())
		if err := p.wait(ctx, p.cfg.Interval()); err != nil {
			p.logger.Info("Checker stopped", "reason", err)
			return
		}
	}
}

// RunCycle executes one cycle. Failures are converted into an error
// notification and recorded on the result; they are never returned.
func (p *Poller) RunCycle(ctx context.Context) CycleResult {
	res := CycleResult{StartedAt: p.now()}
	if err := p.cycle(ctx, &res); err != nil {
		res.Err = err
		p.reportFailure(ctx, &res, err)
	}
	res.FinishedAt = p.now()
	p.record(res)
	return res
}

func (p *Poller) cycle(ctx context.Context, res *CycleResult) error {
	start := time.Now()
	payload, err := p.fetcher.Fetch(ctx)
	metrics.FetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return &CycleError{Stage: StageFetch, Err: err}
	}

	resp, err := availability.Parse(payload)
	if err != nil {
		return &CycleError{Stage: StageParse, Err: err}
	}
	res.Total = resp.Total
	res.NextSlot = resp.NextSlot
	metrics.AppointmentsTotal.Set(float64(resp.Total))
	p.logDays(ctx, resp)

	ev, err := notifications.Select(resp, p.cfg.LimitDay)
	if err != nil {
		return &CycleError{Stage: StageSelect, Err: err}
	}
	if found, ok := ev.(notifications.AppointmentsFound); ok {
		res.Closest = found.Closest.Timestamp
	}
	p.logSummary(res)

	if ev != nil {
		res.Event = ev.Kind()
		p.logger.Info("Sending notification", "kind", ev.Kind(), "total", resp.Total)
		if err := p.notify(ctx, ev); err != nil {
			return &CycleError{Stage: StageNotify, Err: err}
		}
		res.Sent = append(res.Sent, ev.Kind())
	} else if resp.Total > 0 {
		p.logger.Debug("Appointments found but none on or before limit date", "total", resp.Total, "limit_date", p.cfg.LimitDate)
	}

	if notifications.HeartbeatDue(p.now().In(p.loc), p.alive) {
		p.logger.Debug("Sending alive check notification")
		if err := p.notify(ctx, notifications.AliveHeartbeat{}); err != nil {
			return &CycleError{Stage: StageHeartbeat, Err: err}
		}
		res.Sent = append(res.Sent, notifications.KindAliveHeartbeat)
	}
	return nil
}

// reportFailure sends the error notification. If that send fails too, the
// secondary failure is logged and dropped.
func (p *Poller) reportFailure(ctx context.Context, res *CycleResult, err error) {
	if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
		p.logger.Info("Cycle interrupted by shutdown", "error", err)
		return
	}

	stage, class := StageOf(err), Classify(err)
	p.logger.Error("Cycle failed", "stage", stage, "class", class, "error", err)
	metrics.CycleErrors.WithLabelValues(string(stage), class).Inc()

	if sendErr := p.notify(ctx, notifications.ErrorOccurred{Description: err.Error()}); sendErr != nil {
		p.logger.Warn("Error notification failed", "error", sendErr)
		return
	}
	res.Sent = append(res.Sent, notifications.KindErrorOccurred)
}

func (p *Poller) notify(ctx context.Context, ev notifications.Event) error {
	err := p.sender.Send(ctx, p.composer.Compose(ev))
	status := "sent"
	if err != nil {
		status = "failed"
	}
	metrics.NotificationsTotal.WithLabelValues(string(ev.Kind()), status).Inc()
	return err
}

func (p *Poller) record(res CycleResult) {
	result := "ok"
	if res.Err != nil {
		result = "error"
	}
	metrics.CyclesTotal.WithLabelValues(result).Inc()
	metrics.LastCycleTimestamp.Set(float64(res.FinishedAt.Unix()))
	p.status.record(res)
}

// --------------------------------------------------------------------------
// Logging helpers
// --------------------------------------------------------------------------

func (p *Poller) logDays(ctx context.Context, resp *availability.Response) {
	if !p.logger.Enabled(ctx, slog.LevelDebug) {
		return
	}
	p.logger.Debug("Checking availability entries", "total", resp.Total, "entries", len(resp.Availabilities))
	for _, d := range resp.Availabilities {
		if len(d.Slots) == 0 {
			p.logger.Debug("No slots available", "date", d.Date)
			continue
		}
		p.logger.Debug("Found slots", "date", d.Date, "count", len(d.Slots), "slots", d.Slots)
	}
}

// logSummary emits one line per successful cycle.
func (p *Poller) logSummary(res *CycleResult) {
	p.logger.Info("Cycle summary",
		"total", res.Total,
		"closest_within_limit", dayOrDash(res.Closest),
		"next_slot_any", dayOrDash(res.NextSlot),
		"limit_date", p.cfg.LimitDate)
}

func dayOrDash(ts string) string {
	if ts == "" {
		return "-"
	}
	d, err := availability.DateOf(ts)
	if err != nil {
		return ts
	}
	return d.Format(availability.DateLayout)
}

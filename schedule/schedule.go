// Package schedule dispatches UserActionRequests on cron expressions through
// a TaskHandler, covering the recurring maintenance actions (feed refreshes,
// directory syncs) a deployment runs outside user traffic.
package schedule

import (
	"context"
	"sync"
	"time"

	action "github.com/goliatone/go-action"
	"github.com/goliatone/go-errors"
	rcron "github.com/robfig/cron/v3"
)

// Handle controls one scheduled dispatch.
type Handle interface {
	Stop()
}

// Scheduler wraps cron scheduling around a task handler.
type Scheduler struct {
	mu      sync.Mutex
	cron    *rcron.Cron
	handler action.TaskHandler
	logger  action.Logger
	timeout time.Duration

	location     *time.Location
	errorHandler func(error)
	started      bool
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLocation sets the scheduler time zone.
func WithLocation(loc *time.Location) Option {
	return func(s *Scheduler) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithLogger sets the scheduler logger.
func WithLogger(l action.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithErrorHandler receives dispatch failures. Defaults to logging.
func WithErrorHandler(fn func(error)) Option {
	return func(s *Scheduler) {
		if fn != nil {
			s.errorHandler = fn
		}
	}
}

// WithDispatchTimeout bounds each dispatch; zero means no deadline.
func WithDispatchTimeout(d time.Duration) Option {
	return func(s *Scheduler) {
		s.timeout = d
	}
}

// NewScheduler builds a scheduler dispatching through handler.
func NewScheduler(handler action.TaskHandler, opts ...Option) (*Scheduler, error) {
	if handler == nil {
		return nil, errors.New("scheduler requires a task handler", errors.CategoryBadInput).
			WithTextCode("SCHEDULER_NO_HANDLER")
	}

	s := &Scheduler{
		handler:  handler,
		logger:   action.NewFmtLogger(nil),
		location: time.Local,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.errorHandler == nil {
		s.errorHandler = func(err error) {
			s.logger.Error("scheduled dispatch failed: %v", err)
		}
	}

	s.cron = rcron.New(rcron.WithLocation(s.location))
	return s, nil
}

// Schedule dispatches req on every tick of expr.
func (s *Scheduler) Schedule(expr string, req action.UserActionRequest) (Handle, error) {
	if expr == "" {
		return nil, errors.New("cron expression cannot be empty", errors.CategoryBadInput).
			WithTextCode("SCHEDULER_NO_EXPRESSION")
	}

	job := rcron.FuncJob(func() {
		ctx := context.Background()
		var cancel context.CancelFunc = func() {}
		if s.timeout > 0 {
			ctx, cancel = context.WithTimeout(ctx, s.timeout)
		}
		defer cancel()

		if err := s.handler.HandleTask(ctx, req); err != nil {
			s.errorHandler(errors.Wrap(err, errors.CategoryHandler, "scheduled task failed").
				WithTextCode("SCHEDULED_TASK_FAILED").
				WithMetadata(map[string]any{
					"action_key": req.ActionKey,
				}))
		}
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	entryID, err := s.cron.AddJob(expr, job)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryBadInput, "invalid cron expression").
			WithTextCode("SCHEDULER_BAD_EXPRESSION").
			WithMetadata(map[string]any{
				"expression": expr,
			})
	}

	return &handle{scheduler: s, entryID: entryID}, nil
}

// Apply registers every schedule entry of cfg.
func (s *Scheduler) Apply(cfg action.Config) error {
	var errs error
	for _, entry := range cfg.Schedules {
		req := action.NewUserActionRequest(entry.ActionKey, entry.Params)
		if _, err := s.Schedule(entry.Expression, req); err != nil {
			errs = errors.Join(errs, err)
		}
	}
	return errs
}

// Start begins dispatching in the background.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true
	s.cron.Start()
}

// Stop halts dispatching and waits for running jobs to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	s.started = false
	<-s.cron.Stop().Done()
}

type handle struct {
	scheduler *Scheduler
	entryID   rcron.EntryID
}

func (h *handle) Stop() {
	h.scheduler.mu.Lock()
	defer h.scheduler.mu.Unlock()
	h.scheduler.cron.Remove(h.entryID)
}

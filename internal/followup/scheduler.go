package followup

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spigell/resumebek/internal/lang"
	"github.com/spigell/resumebek/internal/logger"
	"github.com/spigell/resumebek/internal/metrics"
	"github.com/spigell/resumebek/internal/notify"
	"github.com/spigell/resumebek/internal/utils"
	"go.uber.org/zap"
)

const DefaultDelay = 24 * time.Hour

// Scheduler arms a timer per job and delivers the follow-up when it fires.
// Jobs are persisted before they are armed and removed once delivered, so a
// restarted process can pick them up with Restore.
type Scheduler struct {
	store    Store
	notifier notify.Notifier
	metrics  metrics.Sink
	cta      notify.CTA
	logger   *zap.Logger

	now  func() time.Time
	wait func(ctx context.Context, d time.Duration) error

	mu      sync.RWMutex
	delay   time.Duration
	pending map[string]*timer

	base   context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// timer is an armed job. cancel stops its wait.
type timer struct {
	job    Job
	cancel context.CancelFunc
}

// Options configures a Scheduler.
type Options struct {
	Delay  time.Duration
	CTA    notify.CTA
	Logger *zap.Logger
}

func NewScheduler(store Store, notifier notify.Notifier, sink metrics.Sink, opts Options) (*Scheduler, error) {
	if store == nil {
		return nil, errors.New("follow-up store is required")
	}
	if notifier == nil {
		return nil, errors.New("notifier is required")
	}
	if sink == nil {
		sink = metrics.Nop{}
	}
	if opts.Delay <= 0 {
		opts.Delay = DefaultDelay
	}

	base, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		store:    store,
		notifier: notifier,
		metrics:  sink,
		cta:      opts.CTA,
		logger:   logger.WithFields(opts.Logger),
		now:      time.Now,
		wait:     utils.WaitFor,
		delay:    opts.Delay,
		pending:  map[string]*timer{},
		base:     base,
		cancel:   cancel,
	}, nil
}

// Delay returns the delay used by Schedule when none is given.
func (s *Scheduler) Delay() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.delay
}

// SetDelay changes the delay to d and moves every armed job to its CreatedAt
// plus d. Moved jobs are persisted with the new schedule first and fire
// immediately when already overdue. A non-positive d is ignored. It returns
// the number of moved jobs.
func (s *Scheduler) SetDelay(ctx context.Context, d time.Duration) (int, error) {
	if d <= 0 {
		return 0, nil
	}

	s.mu.Lock()
	s.delay = d
	if len(s.pending) > 0 {
		// Keeps Wait blocked while jobs are moved from one timer to the next.
		s.wg.Add(1)
		defer s.wg.Done()
	}
	jobs := make([]Job, 0, len(s.pending))
	for _, t := range s.pending {
		jobs = append(jobs, t.job)
	}
	s.mu.Unlock()
	sortJobs(jobs)

	now := s.now()
	moved := 0
	for _, job := range jobs {
		if job.CreatedAt.IsZero() || job.CreatedAt.Add(d).Equal(job.ScheduledFor) {
			continue
		}
		// A job that fired in the meantime is no longer pending.
		if !s.disarm(job.ID) {
			continue
		}

		updated := job
		updated.ScheduledFor = job.CreatedAt.Add(d)
		if err := s.store.Save(ctx, updated); err != nil {
			s.arm(job, max(job.ScheduledFor.Sub(now), 0))
			return moved, fmt.Errorf("persist follow-up %s: %w", job.ID, err)
		}

		delay := max(updated.ScheduledFor.Sub(now), 0)
		s.arm(updated, delay)
		moved++

		s.logger.Info("rescheduled follow-up", zap.String("job", updated.Name()), zap.Duration("delay", delay))
	}

	return moved, nil
}

// Schedule persists a follow-up for the user and arms it. A non-positive delay
// selects the configured default.
func (s *Scheduler) Schedule(ctx context.Context, userID, chatID int64, language lang.Language, delay time.Duration) (Job, error) {
	if delay <= 0 {
		delay = s.Delay()
	}

	now := s.now()
	job := Job{
		ID:           uuid.NewString(),
		UserID:       userID,
		ChatID:       chatID,
		Language:     language.OrDefault(),
		CreatedAt:    now,
		ScheduledFor: now.Add(delay),
	}

	if err := s.store.Save(ctx, job); err != nil {
		return Job{}, fmt.Errorf("persist follow-up: %w", err)
	}

	s.arm(job, delay)

	s.logger.Info("scheduled follow-up",
		append(logger.UserFields(userID, chatID, string(job.Language)),
			zap.String("job", job.Name()),
			zap.Duration("delay", delay),
		)...,
	)

	return job, nil
}

// Restore arms every persisted job. Overdue jobs fire immediately. Jobs without
// a schedule are dropped. It returns the number of armed jobs.
func (s *Scheduler) Restore(ctx context.Context) (int, error) {
	jobs, err := s.store.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list follow-ups: %w", err)
	}

	now := s.now()
	restored := 0
	for _, job := range jobs {
		if job.ScheduledFor.IsZero() {
			s.logger.Error("drop follow-up without schedule", zap.String("id", job.ID), zap.String("job", job.Name()))
			if err := s.store.Remove(ctx, job.ID); err != nil {
				s.logger.Error("failed to drop follow-up", zap.String("id", job.ID), zap.Error(err))
			}
			continue
		}

		delay := max(job.ScheduledFor.Sub(now), 0)
		s.arm(job, delay)
		restored++

		if delay == 0 {
			s.logger.Info("sending overdue follow-up", zap.String("job", job.Name()))
		} else {
			s.logger.Info("restored follow-up", zap.String("job", job.Name()), zap.Duration("delay", delay))
		}
	}

	s.logger.Info("restored follow-ups", zap.Int("count", restored))
	return restored, nil
}

// Wait blocks until every armed job has fired or been cancelled.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

// Close cancels pending timers and waits for running deliveries. Cancelled jobs
// stay persisted.
func (s *Scheduler) Close() {
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) arm(job Job, delay time.Duration) {
	ctx, cancel := context.WithCancel(s.base)
	t := &timer{job: job, cancel: cancel}

	s.mu.Lock()
	if prev, ok := s.pending[job.ID]; ok {
		prev.cancel()
	}
	s.pending[job.ID] = t
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		defer cancel()

		err := s.wait(ctx, delay)

		s.mu.Lock()
		current := s.pending[job.ID] == t
		if current {
			delete(s.pending, job.ID)
		}
		s.mu.Unlock()

		if err != nil || !current {
			s.logger.Debug("follow-up cancelled", zap.String("job", job.Name()), zap.Error(err))
			return
		}
		s.fire(s.base, job)
	}()
}

// disarm cancels the timer of job id and reports whether one was pending.
func (s *Scheduler) disarm(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.pending[id]
	if !ok {
		return false
	}
	t.cancel()
	delete(s.pending, id)
	return true
}

func (s *Scheduler) fire(ctx context.Context, job Job) {
	log := s.logger.With(logger.UserFields(job.UserID, job.ChatID, string(job.Language))...)

	button := notify.PhotoButton(s.cta, job.UserID, job.Language)
	msg := notify.Message{Text: lang.Text(lang.FollowUp, job.Language), Button: &button}

	if _, err := s.notifier.Send(ctx, job.ChatID, msg); err != nil {
		log.Error("failed to send follow-up", zap.Error(err))
		return
	}

	event := metrics.Event{
		Name:      metrics.FollowUpSent,
		UserID:    job.UserID,
		Language:  string(job.Language),
		Timestamp: s.now(),
	}
	if err := s.metrics.Track(ctx, event); err != nil {
		log.Warn("failed to track follow-up", zap.Error(err))
	}

	if err := s.store.Remove(ctx, job.ID); err != nil {
		log.Error("failed to remove delivered follow-up", zap.Error(err))
	}

	log.Info("follow-up sent")
}

package followup

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spigell/resumebek/internal/lang"
	"github.com/spigell/resumebek/internal/metrics"
	"github.com/spigell/resumebek/internal/notify"
)

type sentMessage struct {
	chatID int64
	msg    notify.Message
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (f *fakeNotifier) Send(_ context.Context, chatID int64, msg notify.Message) (notify.MessageRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return notify.MessageRef{}, f.err
	}
	f.sent = append(f.sent, sentMessage{chatID: chatID, msg: msg})
	return notify.MessageRef{ChatID: chatID, MessageID: int64(len(f.sent))}, nil
}

func (f *fakeNotifier) Edit(context.Context, notify.MessageRef, notify.Message) error {
	return nil
}

type fakeSink struct {
	mu     sync.Mutex
	events []metrics.Event
}

func (f *fakeSink) Track(_ context.Context, e metrics.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
	return nil
}

type waitRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
	// blockOver makes waits longer than it block until cancelled. Negative
	// blocks every wait, zero blocks none.
	blockOver time.Duration
}

func (w *waitRecorder) wait(ctx context.Context, d time.Duration) error {
	w.mu.Lock()
	w.delays = append(w.delays, d)
	block := w.blockOver != 0 && d > w.blockOver
	w.mu.Unlock()

	if block {
		<-ctx.Done()
		return ctx.Err()
	}
	return nil
}

func newTestScheduler(t *testing.T, n notify.Notifier, sink metrics.Sink) (*Scheduler, Store, *waitRecorder) {
	t.Helper()

	store, err := NewFileStore(afero.NewMemMapFs(), "jobs.json")
	require.NoError(t, err)

	s, err := NewScheduler(store, n, sink, Options{Logger: zap.NewNop()})
	require.NoError(t, err)

	w := &waitRecorder{}
	s.wait = w.wait
	s.now = func() time.Time { return base }

	return s, store, w
}

func TestScheduleDeliversFollowUp(t *testing.T) {
	n := &fakeNotifier{}
	sink := &fakeSink{}
	s, store, w := newTestScheduler(t, n, sink)

	job, err := s.Schedule(context.Background(), 42, 420, lang.English, 0)
	require.NoError(t, err)
	s.Wait()

	assert.NotEmpty(t, job.ID)
	assert.Equal(t, "followup_42_420", job.Name())
	assert.Equal(t, base.Add(DefaultDelay), job.ScheduledFor)
	assert.Equal(t, []time.Duration{DefaultDelay}, w.delays)

	require.Len(t, n.sent, 1)
	assert.Equal(t, int64(420), n.sent[0].chatID)
	assert.Equal(t, lang.Text(lang.FollowUp, lang.English), n.sent[0].msg.Text)
	require.NotNil(t, n.sent[0].msg.Button)
	assert.Equal(t, notify.PhotoButton(notify.CTA{}, 42, lang.English), *n.sent[0].msg.Button)

	require.Len(t, sink.events, 1)
	assert.Equal(t, metrics.FollowUpSent, sink.events[0].Name)
	assert.Equal(t, int64(42), sink.events[0].UserID)
	assert.Equal(t, "en", sink.events[0].Language)

	jobs, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestScheduleUsesExplicitAndUpdatedDelay(t *testing.T) {
	s, _, w := newTestScheduler(t, &fakeNotifier{}, nil)

	_, err := s.Schedule(context.Background(), 1, 1, lang.Russian, time.Minute)
	require.NoError(t, err)
	s.Wait()

	moved, err := s.SetDelay(context.Background(), 2*time.Hour)
	require.NoError(t, err)
	assert.Zero(t, moved)

	moved, err = s.SetDelay(context.Background(), -time.Hour)
	require.NoError(t, err)
	assert.Zero(t, moved)
	assert.Equal(t, 2*time.Hour, s.Delay())

	_, err = s.Schedule(context.Background(), 1, 1, lang.Russian, 0)
	require.NoError(t, err)
	s.Wait()

	assert.Equal(t, []time.Duration{time.Minute, 2 * time.Hour}, w.delays)
}

func TestFailedDeliveryKeepsJob(t *testing.T) {
	n := &fakeNotifier{err: errors.New("chat not found")}
	sink := &fakeSink{}
	s, store, _ := newTestScheduler(t, n, sink)

	job, err := s.Schedule(context.Background(), 5, 50, lang.Kazakh, 0)
	require.NoError(t, err)
	s.Wait()

	assert.Empty(t, sink.events)

	jobs, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, job.ID, jobs[0].ID)
}

func TestRestore(t *testing.T) {
	n := &fakeNotifier{}
	s, store, w := newTestScheduler(t, n, &fakeSink{})
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, job("future", 1, 3*time.Hour)))
	require.NoError(t, store.Save(ctx, job("overdue", 2, -time.Hour)))
	require.NoError(t, store.Save(ctx, Job{ID: "broken", UserID: 3}))

	restored, err := s.Restore(ctx)
	require.NoError(t, err)
	s.Wait()

	assert.Equal(t, 2, restored)
	assert.ElementsMatch(t, []time.Duration{0, 3 * time.Hour}, w.delays)
	assert.Len(t, n.sent, 2)

	jobs, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestCloseCancelsPendingJobs(t *testing.T) {
	n := &fakeNotifier{}
	s, store, w := newTestScheduler(t, n, &fakeSink{})
	w.blockOver = -1

	_, err := s.Schedule(context.Background(), 9, 90, lang.Russian, 0)
	require.NoError(t, err)

	s.Close()

	assert.Empty(t, n.sent)
	jobs, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, jobs, 1)
}

func TestSetDelayMovesPendingJobEarlier(t *testing.T) {
	n := &fakeNotifier{}
	s, store, w := newTestScheduler(t, n, &fakeSink{})
	w.blockOver = time.Hour
	s.now = func() time.Time { return base.Add(3 * time.Hour) }
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, job("pending", 4, DefaultDelay)))

	restored, err := s.Restore(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, restored)

	// Created at base, so a 2h delay is already overdue at base+3h.
	moved, err := s.SetDelay(ctx, 2*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, moved)
	s.Wait()

	assert.ElementsMatch(t, []time.Duration{21 * time.Hour, 0}, w.delays)
	require.Len(t, n.sent, 1)
	assert.Equal(t, int64(40), n.sent[0].chatID)

	jobs, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestSetDelayMovesPendingJobLater(t *testing.T) {
	n := &fakeNotifier{}
	s, store, w := newTestScheduler(t, n, &fakeSink{})
	w.blockOver = -1
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, job("pending", 4, DefaultDelay)))

	_, err := s.Restore(ctx)
	require.NoError(t, err)

	moved, err := s.SetDelay(ctx, 48*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, moved)
	assert.Equal(t, 48*time.Hour, s.Delay())

	// Same delay again is a no-op.
	moved, err = s.SetDelay(ctx, 48*time.Hour)
	require.NoError(t, err)
	assert.Zero(t, moved)

	s.Close()

	assert.Empty(t, n.sent)
	assert.ElementsMatch(t, []time.Duration{DefaultDelay, 48 * time.Hour}, w.delays)

	jobs, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.True(t, jobs[0].ScheduledFor.Equal(base.Add(48*time.Hour)))
}

func TestNewSchedulerValidatesDependencies(t *testing.T) {
	store, err := NewFileStore(afero.NewMemMapFs(), "jobs.json")
	require.NoError(t, err)

	_, err = NewScheduler(nil, &fakeNotifier{}, nil, Options{})
	assert.Error(t, err)

	_, err = NewScheduler(store, nil, nil, Options{})
	assert.Error(t, err)
}

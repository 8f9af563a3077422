// Package jobs runs long sensitivity analyses in the background. Jobs are
// queued in memory, picked up by a fixed set of workers and can be polled,
// cancelled or timed out.
package jobs

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/SuperKoro/Capstone-FUZZYAHP-INTERVALTOPSIS/internal/events"
	"github.com/SuperKoro/Capstone-FUZZYAHP-INTERVALTOPSIS/internal/metrics"
)

type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Finished reports whether the job reached a terminal status.
func (s Status) Finished() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

var (
	ErrNotFound  = errors.New("job not found")
	ErrQueueFull = errors.New("job queue is full")
	ErrStopped   = errors.New("job manager stopped")
	ErrTimeout   = errors.New("job exceeded its time limit")
	errCancelled = errors.New("job cancelled")
)

type Progress struct {
	Done  int `json:"done"`
	Total int `json:"total"`
}

// ProgressFunc reports completed units of work out of a total.
type ProgressFunc func(done, total int)

// RunFunc does the work of one job. It must return promptly once ctx is
// cancelled.
type RunFunc func(ctx context.Context, progress ProgressFunc) (interface{}, error)

// Job is a snapshot of a background job.
type Job struct {
	ID         uuid.UUID   `json:"id"`
	Kind       string      `json:"kind"`
	Status     Status      `json:"status"`
	Progress   Progress    `json:"progress"`
	Result     interface{} `json:"result,omitempty"`
	Error      string      `json:"error,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
	StartedAt  *time.Time  `json:"started_at,omitempty"`
	FinishedAt *time.Time  `json:"finished_at,omitempty"`
}

type Options struct {
	Workers   int
	QueueSize int
	// Timeout bounds the time from submission to completion. Zero disables
	// the limit.
	Timeout       time.Duration
	CheckInterval time.Duration
	// Retention is how long finished jobs stay queryable.
	Retention time.Duration
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = 1
	}
	if o.QueueSize <= 0 {
		o.QueueSize = 16
	}
	if o.CheckInterval <= 0 {
		o.CheckInterval = time.Second
	}
	if o.Retention <= 0 {
		o.Retention = time.Hour
	}
	return o
}

type entry struct {
	job        Job
	run        RunFunc
	cancel     context.CancelCauseFunc
	lastUpdate time.Time
}

type Manager struct {
	opts   Options
	events events.Publisher
	logger *slog.Logger

	mu   sync.RWMutex
	jobs map[uuid.UUID]*entry

	queue    chan *entry
	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

func New(opts Options, pub events.Publisher, logger *slog.Logger) *Manager {
	opts = opts.withDefaults()
	return &Manager{
		opts:   opts,
		events: pub,
		logger: logger,
		jobs:   make(map[uuid.UUID]*entry),
		queue:  make(chan *entry, opts.QueueSize),
		stopCh: make(chan struct{}),
	}
}

func (m *Manager) Start(ctx context.Context) {
	m.wg.Add(m.opts.Workers + 1)
	for i := 0; i < m.opts.Workers; i++ {
		go m.worker(ctx)
	}
	go m.deadlineLoop(ctx)
}

// Stop cancels running jobs and waits for the workers to exit.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopCh)
		m.mu.RLock()
		for _, e := range m.jobs {
			if e.cancel != nil {
				e.cancel(ErrStopped)
			}
		}
		m.mu.RUnlock()
	})
	m.wg.Wait()
}

// Submit queues a job and returns its initial snapshot.
func (m *Manager) Submit(kind string, run RunFunc) (Job, error) {
	e := &entry{
		job: Job{
			ID:        uuid.New(),
			Kind:      kind,
			Status:    StatusQueued,
			CreatedAt: time.Now().UTC(),
		},
		run: run,
	}

	select {
	case <-m.stopCh:
		return Job{}, ErrStopped
	default:
	}

	m.mu.Lock()
	select {
	case m.queue <- e:
		m.jobs[e.job.ID] = e
	default:
		m.mu.Unlock()
		return Job{}, ErrQueueFull
	}
	snap := e.job
	m.mu.Unlock()

	metrics.JobsQueued.Inc()
	m.logger.Info("job queued", "job_id", snap.ID, "kind", kind)
	m.publish(events.SubjectJobQueued(snap.ID.String()), snap)
	return snap, nil
}

func (m *Manager) Get(id uuid.UUID) (Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.jobs[id]
	if !ok {
		return Job{}, ErrNotFound
	}
	return e.job, nil
}

// List returns every retained job, newest first.
func (m *Manager) List() []Job {
	m.mu.RLock()
	out := make([]Job, 0, len(m.jobs))
	for _, e := range m.jobs {
		out = append(out, e.job)
	}
	m.mu.RUnlock()
	sortNewest(out)
	return out
}

// Cancel stops a queued or running job. Finished jobs are returned as they
// are.
func (m *Manager) Cancel(id uuid.UUID) (Job, error) {
	m.mu.Lock()
	e, ok := m.jobs[id]
	if !ok {
		m.mu.Unlock()
		return Job{}, ErrNotFound
	}
	switch e.job.Status {
	case StatusQueued:
		m.finishLocked(e, StatusCancelled, nil, errCancelled)
		snap := e.job
		m.mu.Unlock()
		metrics.JobsQueued.Dec()
		m.logger.Info("job cancelled before start", "job_id", id)
		m.publish(events.SubjectJobCancelled(id.String()), snap)
		return snap, nil
	case StatusRunning:
		e.cancel(errCancelled)
	}
	snap := e.job
	m.mu.Unlock()
	return snap, nil
}

func (m *Manager) worker(ctx context.Context) {
	defer m.wg.Done()
	for {
		select {
		case <-m.stopCh:
			return
		case <-ctx.Done():
			return
		case e := <-m.queue:
			m.execute(ctx, e)
		}
	}
}

func (m *Manager) execute(ctx context.Context, e *entry) {
	m.mu.Lock()
	if e.job.Status != StatusQueued {
		m.mu.Unlock()
		return
	}
	jctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	now := time.Now().UTC()
	e.cancel = cancel
	e.job.Status = StatusRunning
	e.job.StartedAt = &now
	snap := e.job
	m.mu.Unlock()

	metrics.JobsQueued.Dec()
	metrics.JobsRunning.Inc()
	defer metrics.JobsRunning.Dec()
	m.logger.Info("job started", "job_id", snap.ID, "kind", snap.Kind)
	m.publish(events.SubjectJobStarted(snap.ID.String()), snap)

	result, err := e.run(jctx, func(done, total int) { m.progress(e, done, total) })
	if err != nil {
		if cause := context.Cause(jctx); cause != nil {
			err = cause
		}
	}

	status := StatusCompleted
	subject := events.SubjectJobCompleted(snap.ID.String())
	switch {
	case err == nil:
	case errors.Is(err, errCancelled), errors.Is(err, ErrStopped), errors.Is(err, context.Canceled):
		status = StatusCancelled
		subject = events.SubjectJobCancelled(snap.ID.String())
	default:
		status = StatusFailed
		subject = events.SubjectJobFailed(snap.ID.String())
	}

	m.mu.Lock()
	m.finishLocked(e, status, result, err)
	snap = e.job
	m.mu.Unlock()

	metrics.Jobs.WithLabelValues(string(status)).Inc()
	if status == StatusFailed {
		m.logger.Warn("job failed", "job_id", snap.ID, "kind", snap.Kind, "error", err)
	} else {
		m.logger.Info("job finished", "job_id", snap.ID, "kind", snap.Kind, "status", status)
	}
	m.publish(subject, snap)
}

func (m *Manager) finishLocked(e *entry, status Status, result interface{}, err error) {
	now := time.Now().UTC()
	e.job.Status = status
	e.job.FinishedAt = &now
	if status == StatusCompleted {
		e.job.Result = result
	}
	if err != nil {
		e.job.Error = err.Error()
	}
	e.cancel = nil
}

// progress records worker progress and publishes it at most every 250ms
// plus once on completion.
func (m *Manager) progress(e *entry, done, total int) {
	now := time.Now()
	m.mu.Lock()
	e.job.Progress = Progress{Done: done, Total: total}
	publish := done == total || now.Sub(e.lastUpdate) >= 250*time.Millisecond
	if publish {
		e.lastUpdate = now
	}
	id := e.job.ID.String()
	kind := e.job.Kind
	m.mu.Unlock()

	if publish {
		events.Publish(m.events, m.logger, events.SubjectJobProgress(id), events.JobEvent{
			JobID:     id,
			Kind:      kind,
			Status:    string(StatusRunning),
			Done:      done,
			Total:     total,
			Timestamp: now.UTC(),
		})
	}
}

func (m *Manager) publish(subject string, j Job) {
	events.Publish(m.events, m.logger, subject, events.JobEvent{
		JobID:     j.ID.String(),
		Kind:      j.Kind,
		Status:    string(j.Status),
		Done:      j.Progress.Done,
		Total:     j.Progress.Total,
		Error:     j.Error,
		Timestamp: time.Now().UTC(),
	})
}

package jobs

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/SuperKoro/Capstone-FUZZYAHP-INTERVALTOPSIS/internal/events"
	"github.com/SuperKoro/Capstone-FUZZYAHP-INTERVALTOPSIS/internal/metrics"
)

func (m *Manager) deadlineLoop(ctx context.Context) {
	defer m.wg.Done()
	ticker := time.NewTicker(m.opts.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.checkDeadlines(time.Now())
		}
	}
}

// checkDeadlines times out jobs older than the configured limit and forgets
// finished jobs past retention.
func (m *Manager) checkDeadlines(now time.Time) {
	var expired []Job
	m.mu.Lock()
	for id, e := range m.jobs {
		j := &e.job
		if j.Status.Finished() {
			if j.FinishedAt != nil && now.Sub(*j.FinishedAt) > m.opts.Retention {
				delete(m.jobs, id)
			}
			continue
		}
		if m.opts.Timeout <= 0 || now.Sub(j.CreatedAt) <= m.opts.Timeout {
			continue
		}
		switch j.Status {
		case StatusQueued:
			m.finishLocked(e, StatusFailed, nil, ErrTimeout)
			metrics.JobsQueued.Dec()
			metrics.Jobs.WithLabelValues(string(StatusFailed)).Inc()
			expired = append(expired, e.job)
		case StatusRunning:
			// The worker records the outcome once the run returns.
			e.cancel(ErrTimeout)
		}
	}
	m.mu.Unlock()

	for _, j := range expired {
		m.logger.Warn("job timed out in queue", "job_id", j.ID, "kind", j.Kind)
		m.publish(events.SubjectJobFailed(j.ID.String()), j)
	}
}

func sortNewest(jobs []Job) {
	sort.Slice(jobs, func(i, k int) bool {
		if !jobs[i].CreatedAt.Equal(jobs[k].CreatedAt) {
			return jobs[i].CreatedAt.After(jobs[k].CreatedAt)
		}
		return lessID(jobs[i].ID, jobs[k].ID)
	})
}

func lessID(a, b uuid.UUID) bool {
	return a.String() < b.String()
}

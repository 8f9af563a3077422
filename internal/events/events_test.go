package events

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(subject string, data interface{}) error {
	return m.Called(subject, data).Error(0)
}

func (m *mockPublisher) Close() { m.Called() }

func TestSubjectsShareStreamPrefix(t *testing.T) {
	subjects := []string{
		SubjectRunCompleted("r1"), SubjectRunFailed("r1"), SubjectRunWarning("r1"),
		SubjectJobQueued("j1"), SubjectJobStarted("j1"), SubjectJobProgress("j1"),
		SubjectJobCompleted("j1"), SubjectJobFailed("j1"), SubjectJobCancelled("j1"),
	}
	for _, s := range subjects {
		assert.True(t, strings.HasPrefix(s, SubjectPrefix+"."), s)
	}
	assert.Equal(t, "mcdm.run.r1.completed", SubjectRunCompleted("r1"))
	assert.Equal(t, "mcdm.job.j1.progress", SubjectJobProgress("j1"))
}

func TestPublishNilPublisher(t *testing.T) {
	Publish(nil, slog.New(slog.NewTextHandler(io.Discard, nil)), "mcdm.run.x.completed", nil)
}

func TestPublishSwallowsErrors(t *testing.T) {
	p := &mockPublisher{}
	p.On("Publish", "mcdm.run.x.failed", mock.Anything).Return(errors.New("no responders"))

	var buf strings.Builder
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	Publish(p, logger, "mcdm.run.x.failed", RunFailedEvent{RunID: "x"})

	p.AssertExpectations(t)
	assert.Contains(t, buf.String(), "failed to publish event")
}

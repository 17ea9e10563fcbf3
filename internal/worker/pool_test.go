package worker

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingJob struct {
	id   string
	runs *atomic.Int32
	done chan struct{}
}

func (j *countingJob) ID() string { return j.id }

func (j *countingJob) Execute() error {
	j.runs.Add(1)
	close(j.done)
	return nil
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func TestDispatcherRunsSubmittedJobs(t *testing.T) {
	d := NewDispatcher(2, 10, quietLogger())
	d.Run()
	defer d.Stop()

	var runs atomic.Int32
	jobs := make([]*countingJob, 5)
	for i := range jobs {
		jobs[i] = &countingJob{id: fmt.Sprintf("job-%d", i), runs: &runs, done: make(chan struct{})}
		require.NoError(t, d.Submit(jobs[i]))
	}

	for _, j := range jobs {
		select {
		case <-j.done:
		case <-time.After(2 * time.Second):
			t.Fatalf("job %s never ran", j.id)
		}
	}
	assert.Equal(t, int32(5), runs.Load())
}

func TestSubmitReportsFullQueue(t *testing.T) {
	// No Run(): nothing drains the queue.
	d := NewDispatcher(1, 1, quietLogger())

	var runs atomic.Int32
	require.NoError(t, d.Submit(&countingJob{id: "a", runs: &runs, done: make(chan struct{})}))
	err := d.Submit(&countingJob{id: "b", runs: &runs, done: make(chan struct{})})
	assert.ErrorIs(t, err, ErrQueueFull)
}

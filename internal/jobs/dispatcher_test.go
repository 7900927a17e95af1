package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/smart-review/smart-review/internal/core"
)

type countingJob struct {
	mu   sync.Mutex
	seen []string
}

func (j *countingJob) Run(_ context.Context, event *core.ReviewEvent) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.seen = append(j.seen, event.RepoFullName)
	return nil
}

func TestDispatcher_ProcessesQueuedEvents(t *testing.T) {
	job := &countingJob{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	d := NewDispatcher(job, 2, logger)
	for i := 0; i < 5; i++ {
		event := validEvent()
		if err := d.Dispatch(context.Background(), event); err != nil {
			t.Fatalf("Dispatch() error = %v", err)
		}
	}
	d.Stop()

	job.mu.Lock()
	defer job.mu.Unlock()
	if len(job.seen) != 5 {
		t.Errorf("processed %d events, want 5", len(job.seen))
	}
}

type blockingJob struct{ release chan struct{} }

func (j *blockingJob) Run(context.Context, *core.ReviewEvent) error {
	<-j.release
	return nil
}

func TestDispatcher_RejectsWhenQueueFull(t *testing.T) {
	job := &blockingJob{release: make(chan struct{})}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	d := NewDispatcher(job, 1, logger)

	// One event occupies the worker, 100 fill the queue; the next must fail.
	var err error
	for i := 0; i < 102; i++ {
		err = d.Dispatch(context.Background(), validEvent())
		if err != nil {
			break
		}
		// Give the worker a beat to pull the first event off the queue.
		if i == 0 {
			time.Sleep(10 * time.Millisecond)
		}
	}
	if !errors.Is(err, ErrQueueFull) {
		t.Fatalf("Dispatch() error = %v, want ErrQueueFull", err)
	}

	close(job.release)
	d.Stop()
}

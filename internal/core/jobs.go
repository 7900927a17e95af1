package core

import (
	"context"
)

// JobDispatcher defines the contract for a system that can accept and queue
// background review jobs for asynchronous processing. This interface decouples
// the event source (the webhook handler) from the job execution mechanism.
type JobDispatcher interface {
	// Dispatch accepts a ReviewEvent and queues it for processing. It returns
	// an error if the job cannot be queued, for example when the queue is
	// full, providing a mechanism for backpressure.
	Dispatch(ctx context.Context, event *ReviewEvent) error

	// Stop drains the queue and waits for in-flight jobs to finish.
	Stop()
}

// Job represents a single, executable unit of work processed by the
// dispatcher. Each job is triggered by a ReviewEvent and performs one
// pull-request review.
type Job interface {
	Run(ctx context.Context, event *ReviewEvent) error
}

package queue

import (
	"context"

	"github.com/atxlegis/bill-analyzer/internal/domain"
)

// Producer hands analysis jobs to a queue backend.
type Producer interface {
	Enqueue(ctx context.Context, message domain.QueueMessage) error
}

// Consumer delivers queued jobs to a handler. A handler error is an
// infrastructure failure (the job row could not be touched); job-level
// failures are recorded on the job and acked, never retried.
type Consumer interface {
	Consume(ctx context.Context, handler func(context.Context, domain.QueueMessage) error) error
}

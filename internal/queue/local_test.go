package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/atxlegis/bill-analyzer/internal/domain"
)

func TestLocalQueueDeliversMessages(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewLocalQueue(4, nil)
	delivered := make(chan domain.QueueMessage, 1)

	go func() {
		_ = q.Consume(ctx, func(_ context.Context, message domain.QueueMessage) error {
			delivered <- message
			return nil
		})
	}()

	message := domain.QueueMessage{
		JobID:       "job-1",
		BillNumber:  "HB00150",
		Session:     "89R",
		RequestedAt: time.Now().UTC(),
	}
	if err := q.Enqueue(ctx, message); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	select {
	case got := <-delivered:
		if got.JobID != "job-1" || got.BillNumber != "HB00150" {
			t.Fatalf("unexpected message %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatalf("message not delivered")
	}
}

func TestLocalQueueHandlerErrorGoesToDLQ(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewLocalQueue(4, nil)
	handled := make(chan struct{}, 1)

	go func() {
		_ = q.Consume(ctx, func(context.Context, domain.QueueMessage) error {
			defer func() { handled <- struct{}{} }()
			return errors.New("job row unreachable")
		})
	}()

	if err := q.Enqueue(ctx, domain.QueueMessage{JobID: "job-2"}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	select {
	case <-handled:
	case <-time.After(time.Second):
		t.Fatalf("handler never ran")
	}

	deadline := time.Now().Add(time.Second)
	for q.DLQSize() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("message never reached DLQ")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestLocalQueueEnqueueRespectsCancellation(t *testing.T) {
	q := NewLocalQueue(1, nil)
	ctx, cancel := context.WithCancel(context.Background())

	// Fill the buffer, then cancel: the next enqueue must not block.
	if err := q.Enqueue(ctx, domain.QueueMessage{JobID: "a"}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	cancel()
	if err := q.Enqueue(ctx, domain.QueueMessage{JobID: "b"}); err == nil {
		t.Fatalf("expected context error")
	}
}

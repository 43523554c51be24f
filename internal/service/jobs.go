package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/atxlegis/bill-analyzer/internal/domain"
	"github.com/atxlegis/bill-analyzer/internal/queue"
	"github.com/atxlegis/bill-analyzer/internal/repository"
)

// JobsService creates and looks up background analysis jobs.
type JobsService struct {
	repo     repository.JobsRepository
	producer queue.Producer
}

func NewJobsService(repo repository.JobsRepository, producer queue.Producer) *JobsService {
	return &JobsService{repo: repo, producer: producer}
}

// Enqueue records a queued job and hands it to the worker pool. A job that
// cannot reach the queue is marked failed immediately so polls are never
// stuck on it.
func (s *JobsService) Enqueue(
	ctx context.Context,
	id domain.BillIdentifier,
	session string,
) (*domain.Job, error) {
	now := time.Now().UTC()
	job := &domain.Job{
		ID:         uuid.NewString(),
		BillNumber: id.String(),
		Session:    session,
		Status:     domain.JobStatusQueued,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}

	message := domain.QueueMessage{
		JobID:       job.ID,
		BillNumber:  job.BillNumber,
		Session:     session,
		Attempt:     0,
		RequestedAt: now,
	}
	if err := s.producer.Enqueue(ctx, message); err != nil {
		job.Status = domain.JobStatusFailed
		job.ErrorMessage = err.Error()
		job.UpdatedAt = time.Now().UTC()
		_ = s.repo.UpdateJob(ctx, job)
		return nil, fmt.Errorf("enqueue job: %w", err)
	}

	return job, nil
}

func (s *JobsService) GetJob(ctx context.Context, jobID string) (*domain.Job, error) {
	return s.repo.GetJob(ctx, jobID)
}

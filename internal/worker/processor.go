package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/atxlegis/bill-analyzer/internal/domain"
	"github.com/atxlegis/bill-analyzer/internal/queue"
	"github.com/atxlegis/bill-analyzer/internal/repository"
	"github.com/atxlegis/bill-analyzer/internal/service"
)

// Processor drains the job queue and runs the analysis pipeline for each
// message, recording status transitions on the job row. Failed jobs are
// terminal: the error text is stored verbatim and the message is acked,
// never re-queued.
type Processor struct {
	consumer queue.Consumer
	repo     repository.JobsRepository
	analysis *service.AnalysisService
	logger   *log.Logger
}

func NewProcessor(
	consumer queue.Consumer,
	repo repository.JobsRepository,
	analysis *service.AnalysisService,
	logger *log.Logger,
) *Processor {
	return &Processor{
		consumer: consumer,
		repo:     repo,
		analysis: analysis,
		logger:   logger,
	}
}

func (p *Processor) Start(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		err := p.consumer.Consume(ctx, p.processMessage)
		if err == nil || ctx.Err() != nil {
			return
		}
		if p.logger != nil {
			p.logger.Printf("worker consume loop error: %v", err)
		}

		timer := time.NewTimer(2 * time.Second)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// processMessage returns an error only for infrastructure failures (the
// job row is unreachable); pipeline failures are recorded on the job and
// the message is acked.
func (p *Processor) processMessage(ctx context.Context, message domain.QueueMessage) error {
	job, err := p.repo.GetJob(ctx, message.JobID)
	if err != nil {
		return fmt.Errorf("load job %s: %w", message.JobID, err)
	}
	if job.Status.Terminal() {
		// Redelivery of an already-settled job.
		return nil
	}

	job.Status = domain.JobStatusProcessing
	job.UpdatedAt = time.Now().UTC()
	if err := p.repo.UpdateJob(ctx, job); err != nil {
		return fmt.Errorf("mark processing: %w", err)
	}

	result, buildErr := p.runPipeline(ctx, message)
	if buildErr != nil {
		job.Status = domain.JobStatusFailed
		job.ErrorMessage = buildErr.Error()
		job.UpdatedAt = time.Now().UTC()
		if err := p.repo.UpdateJob(ctx, job); err != nil {
			return fmt.Errorf("mark failed: %w", err)
		}
		if p.logger != nil {
			p.logger.Printf("job failed job_id=%s bill=%s err=%v", job.ID, job.BillNumber, buildErr)
		}
		return nil
	}

	encoded, err := json.Marshal(result)
	if err != nil {
		job.Status = domain.JobStatusFailed
		job.ErrorMessage = fmt.Sprintf("encode result: %v", err)
		job.UpdatedAt = time.Now().UTC()
		_ = p.repo.UpdateJob(ctx, job)
		return nil
	}

	job.Status = domain.JobStatusFinished
	job.ErrorMessage = ""
	job.Result = encoded
	job.UpdatedAt = time.Now().UTC()
	if err := p.repo.UpdateJob(ctx, job); err != nil {
		return fmt.Errorf("mark finished: %w", err)
	}

	if p.logger != nil {
		p.logger.Printf("job processed job_id=%s bill=%s session=%s", job.ID, job.BillNumber, job.Session)
	}
	return nil
}

func (p *Processor) runPipeline(
	ctx context.Context,
	message domain.QueueMessage,
) (*domain.AnalysisResult, error) {
	id, err := domain.ParseBillIdentifier(message.BillNumber)
	if err != nil {
		return nil, err
	}

	result, analysisErr := p.analysis.Build(ctx, id, message.Session, nil)
	if analysisErr != nil {
		// "Bill not found" is a valid analysis outcome, not a job failure.
		if analysisErr.Result != nil {
			analysisErr.Result.ErrorMessage = analysisErr.Message
			return analysisErr.Result, nil
		}
		return nil, analysisErr
	}
	return result, nil
}

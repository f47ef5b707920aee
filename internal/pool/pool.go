package pool

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/aws-samples/sample-genai-sign-language-translator/internal/domain"
	"github.com/aws-samples/sample-genai-sign-language-translator/internal/metrics"
	"github.com/aws-samples/sample-genai-sign-language-translator/internal/usecase"
)

// WorkerPool manages a fixed-size pool of goroutines that run workflow
// executions. Each consumed message becomes one independent engine run;
// the pool never serializes unrelated executions beyond its size.
type WorkerPool struct {
	size   int
	jobs   <-chan *domain.JobMessage
	runUC  *usecase.RunTranslationUsecase
	logger *zap.Logger
	wg     sync.WaitGroup
}

// NewWorkerPool creates a new fixed-size worker pool.
func NewWorkerPool(size int, jobs <-chan *domain.JobMessage, runUC *usecase.RunTranslationUsecase, logger *zap.Logger) *WorkerPool {
	return &WorkerPool{
		size:   size,
		jobs:   jobs,
		runUC:  runUC,
		logger: logger,
	}
}

// Start launches all worker goroutines. Call Stop to wait for them to finish.
func (p *WorkerPool) Start(ctx context.Context) {
	p.logger.Info("Starting worker pool", zap.Int("pool_size", p.size))

	for i := 0; i < p.size; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
}

// Stop waits for all workers to finish their current jobs and exit.
func (p *WorkerPool) Stop() {
	p.wg.Wait()
	p.logger.Info("Worker pool stopped")
}

func (p *WorkerPool) worker(ctx context.Context, id int) {
	defer p.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Worker panic recovered",
				zap.Int("worker_id", id),
				zap.Any("panic", r),
			)
		}
	}()

	p.logger.Debug("Worker started", zap.Int("worker_id", id))

	for {
		select {
		case <-ctx.Done():
			p.logger.Debug("Worker shutting down", zap.Int("worker_id", id))
			return
		case msg, ok := <-p.jobs:
			if !ok {
				p.logger.Debug("Job channel closed", zap.Int("worker_id", id))
				return
			}

			job := msg.Job

			p.logger.Info("Worker processing job",
				zap.Int("worker_id", id),
				zap.String("handle", job.Handle),
				zap.String("kind", string(job.Kind)),
			)

			metrics.WorkersActive.Inc()
			err := p.runUC.Execute(ctx, job)
			metrics.WorkersActive.Dec()

			if err != nil {
				p.logger.Error("Job run failed",
					zap.Int("worker_id", id),
					zap.String("handle", job.Handle),
					zap.Error(err),
				)

				// Nack without requeue: unusable jobs go to the DLQ.
				// A Failed execution is a delivered outcome and never lands
				// here; requeuing a deterministic failure would loop forever.
				if nackErr := msg.Nack(false); nackErr != nil {
					p.logger.Error("Failed to NACK message",
						zap.String("handle", job.Handle),
						zap.Error(nackErr),
					)
				}
				continue
			}

			// Terminal record written: ACK the message.
			if ackErr := msg.Ack(); ackErr != nil {
				p.logger.Error("Failed to ACK message after run",
					zap.String("handle", job.Handle),
					zap.Error(ackErr),
				)
			}
		}
	}
}

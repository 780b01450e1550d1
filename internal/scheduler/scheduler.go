package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Job is a named periodic task. Run receives a context that is cancelled
// when the scheduler stops.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Scheduler runs registered jobs on their own tickers. Jobs fire after one
// full interval, not at startup.
type Scheduler struct {
	jobs    []Job
	closing chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
	logger  *zap.Logger
}

// New creates a Scheduler with the given jobs.
func New(jobs []Job, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		jobs:    jobs,
		closing: make(chan struct{}),
		logger:  logger.Named("Scheduler"),
	}
}

// Start launches one goroutine per job. Jobs with a non-positive interval
// are skipped.
func (s *Scheduler) Start() {
	for _, job := range s.jobs {
		if job.Interval <= 0 {
			s.logger.Warn("Skipping job with non-positive interval", zap.String("job", job.Name))
			continue
		}
		s.wg.Add(1)
		go s.runLoop(job)
		s.logger.Info("Scheduled job", zap.String("job", job.Name), zap.Duration("interval", job.Interval))
	}
}

// Stop cancels running jobs and waits for their goroutines to exit.
func (s *Scheduler) Stop() {
	s.once.Do(func() { close(s.closing) })
	s.wg.Wait()
	s.logger.Info("Scheduler stopped")
}

func (s *Scheduler) runLoop(job Job) {
	defer s.wg.Done()

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-s.closing
		cancel()
	}()

	for {
		select {
		case <-ticker.C:
			start := time.Now()
			if err := job.Run(ctx); err != nil {
				s.logger.Error("Job failed",
					zap.String("job", job.Name),
					zap.Duration("took", time.Since(start)),
					zap.Error(err),
				)
				continue
			}
			s.logger.Info("Job finished",
				zap.String("job", job.Name),
				zap.Duration("took", time.Since(start)),
			)
		case <-s.closing:
			return
		}
	}
}

package processor

import (
	"context"
	"strings"
	"time"

	"github.com/ClearPeaks/knime-audit/internal/audit"
	"github.com/ClearPeaks/knime-audit/internal/backup"
	"github.com/ClearPeaks/knime-audit/internal/filter"
	"github.com/ClearPeaks/knime-audit/internal/knimeapi"
	"github.com/ClearPeaks/knime-audit/pkg/log"
)

// MetadataAPI is the slice of the REST client the processor needs.
type MetadataAPI interface {
	GetJobInfo(ctx context.Context, jobID string) (*knimeapi.JobInfo, error)
	GetWorkflowSummary(ctx context.Context, jobID string) ([]byte, error)
}

// BackupWriter persists the artifact set for one job. *backup.Writer
// satisfies it.
type BackupWriter interface {
	Create(ctx context.Context, jobID string, info *knimeapi.JobInfo, workflowSummary []byte) (*backup.Record, error)
}

// EventSender delivers one audit event. *audit.Sender satisfies it.
type EventSender interface {
	Send(ctx context.Context, event audit.Event) error
}

// JobQueue is the FIFO the processor drains. *queue.Queue satisfies it.
type JobQueue interface {
	Dequeue(ctx context.Context) (string, error)
	Enqueue(jobID string)
}

// Options configures a Processor.
type Options struct {
	Queue  JobQueue
	API    MetadataAPI
	Backup BackupWriter
	Sender EventSender
	Filter filter.Filter
	// Host names this machine in the audit event.
	Host string
	// RetryDelay is the pause after a failed job before the loop resumes.
	RetryDelay time.Duration

	Logger log.Logger
}

// Processor drains the job queue one entry at a time. A job that fails at
// any stage is requeued at the tail and the loop pauses for the retry
// delay; nothing is ever dropped, and there is no retry cap. Delivery is
// therefore at-least-once and downstream consumers must tolerate
// duplicates.
type Processor struct {
	opts   Options
	logger log.Logger
}

// New builds a Processor.
func New(opts Options) *Processor {
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 10 * time.Second
	}
	return &Processor{opts: opts, logger: opts.Logger}
}

// Run processes jobs until ctx is cancelled.
func (p *Processor) Run(ctx context.Context) error {
	for {
		jobID, err := p.opts.Queue.Dequeue(ctx)
		if err != nil {
			return err
		}
		p.logger.Info("processing job", log.Str("job_id", jobID))
		if err := p.process(ctx, jobID); err != nil {
			p.logger.Error("job processing failed, requeueing",
				log.Str("job_id", jobID), log.Err(err))
			p.opts.Queue.Enqueue(jobID)
			if !sleepCtx(ctx, p.opts.RetryDelay) {
				return ctx.Err()
			}
		}
	}
}

// process runs the per-job pipeline. Each stage returns an explicit error;
// the first failure aborts the attempt and the caller requeues.
func (p *Processor) process(ctx context.Context, jobID string) error {
	info, err := p.opts.API.GetJobInfo(ctx, jobID)
	if err != nil {
		return err
	}
	summary, err := p.opts.API.GetWorkflowSummary(ctx, jobID)
	if err != nil {
		return err
	}

	if !p.opts.Filter.Match(jobID, info.Owner, info.State, info.Workflow, p.opts.Host) {
		p.logger.Info("job excluded by audit filter",
			log.Str("job_id", jobID), log.Str("workflow", info.Workflow))
		return nil
	}

	rec, err := p.opts.Backup.Create(ctx, jobID, info, summary)
	if err != nil {
		return err
	}

	return p.opts.Sender.Send(ctx, buildEvent(jobID, p.opts.Host, info, rec))
}

// buildEvent assembles the audit event from the job metadata and the
// finished backup record.
func buildEvent(jobID, host string, info *knimeapi.JobInfo, rec *backup.Record) audit.Event {
	errorMessage := ""
	if n := len(info.NodeMessages); n > 0 {
		errorMessage = info.NodeMessages[n-1].Message
	}
	// createdAt may carry a zone-id suffix like "[Europe/Madrid]"
	timestamp := info.CreatedAt
	if i := strings.Index(timestamp, "["); i >= 0 {
		timestamp = timestamp[:i]
	}
	return audit.Event{
		JobID:             jobID,
		UserID:            info.Owner,
		Host:              host,
		WorkflowState:     info.State,
		WorkflowTimestamp: timestamp,
		ErrorMessage:      errorMessage,
		Paths:             rec.Paths,
		AuditPath:         rec.Dir,
	}
}

// sleepCtx sleeps for d, returning false if ctx is cancelled first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

package backup

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ClearPeaks/knime-audit/internal/knimeapi"
	"github.com/ClearPeaks/knime-audit/pkg/log"
)

// Downloader fetches workflow archive bytes. *knimeapi.Client satisfies it.
type Downloader interface {
	DownloadWorkflowData(ctx context.Context, path string) (io.ReadCloser, error)
}

// ArchiveRewriter rewrites a downloaded archive in place and returns the
// dataset paths it references. *knwf.Rewriter satisfies it.
type ArchiveRewriter interface {
	Rewrite(archivePath, extractRoot, jobID string) ([]string, error)
}

// Record is the on-disk artifact set produced for one job. The directory is
// created once and never mutated after the archive rewrite finishes.
type Record struct {
	// Dir is the per-job backup directory.
	Dir string
	// ArchivePath is the rewritten .knwf inside Dir.
	ArchivePath string
	// Paths are the dataset paths extracted during the archive rewrite.
	Paths []string
}

// Writer persists job metadata, the workflow summary, and the workflow
// archive under <root>/<yyyymmdd>/<job>-<yyyymmddHHMMSS>/, then hands the
// archive to the rewriter.
type Writer struct {
	rootPath    string
	extractRoot string
	api         Downloader
	rewriter    ArchiveRewriter
	logger      log.Logger
}

// NewWriter builds a Writer rooted at rootPath, extracting archives under
// extractRoot during rewriting.
func NewWriter(rootPath, extractRoot string, api Downloader, rewriter ArchiveRewriter, logger log.Logger) *Writer {
	return &Writer{
		rootPath:    rootPath,
		extractRoot: extractRoot,
		api:         api,
		rewriter:    rewriter,
		logger:      logger,
	}
}

// Create builds the backup record for one job. The daily directory is
// created idempotently; the per-job directory must be new (its name is
// unique by construction) and any failure is fatal to this attempt.
func (w *Writer) Create(ctx context.Context, jobID string, info *knimeapi.JobInfo, workflowSummary []byte) (*Record, error) {
	created, err := creationTime(info.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("job %s: parse createdAt %q: %w", jobID, info.CreatedAt, err)
	}

	dailyDir := filepath.Join(w.rootPath, created.Format("20060102"))
	if err := os.MkdirAll(dailyDir, 0o755); err != nil {
		return nil, fmt.Errorf("create daily dir: %w", err)
	}
	jobDir := filepath.Join(dailyDir, fmt.Sprintf("%s-%s", jobID, created.Format("20060102150405")))
	if err := os.Mkdir(jobDir, 0o755); err != nil {
		return nil, fmt.Errorf("create job dir: %w", err)
	}
	w.logger.Info("storing job backup", log.Str("job_id", jobID), log.Str("dir", jobDir))

	if err := os.WriteFile(filepath.Join(jobDir, "job-summary.json"), info.Raw, 0o644); err != nil {
		return nil, fmt.Errorf("write job summary: %w", err)
	}
	if err := os.WriteFile(filepath.Join(jobDir, "workflow-summary.json"), workflowSummary, 0o644); err != nil {
		return nil, fmt.Errorf("write workflow summary: %w", err)
	}

	archivePath := filepath.Join(jobDir, jobID+".knwf")
	if err := w.download(ctx, info.Workflow, archivePath); err != nil {
		return nil, fmt.Errorf("download workflow data: %w", err)
	}

	paths, err := w.rewriter.Rewrite(archivePath, w.extractRoot, jobID)
	if err != nil {
		return nil, fmt.Errorf("rewrite archive: %w", err)
	}
	return &Record{Dir: jobDir, ArchivePath: archivePath, Paths: paths}, nil
}

func (w *Writer) download(ctx context.Context, workflowPath, target string) error {
	rc, err := w.api.DownloadWorkflowData(ctx, workflowPath)
	if err != nil {
		return err
	}
	defer rc.Close()
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// creationTime parses the job's createdAt timestamp to second granularity,
// ignoring fractional seconds, zone offsets, and zone-id suffixes.
func creationTime(createdAt string) (time.Time, error) {
	s := createdAt
	if i := strings.IndexAny(s, ".+["); i >= 0 {
		s = s[:i]
	}
	return time.Parse("2006-01-02T15:04:05", s)
}

package tailer

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ClearPeaks/knime-audit/pkg/log"
)

// Sink receives job identifiers extracted from completion lines.
// *queue.Queue satisfies it.
type Sink interface {
	Enqueue(jobID string)
}

// Options configures a Tailer.
type Options struct {
	// LogsPath is the directory holding the daily-rotated executor logs.
	LogsPath string
	// FilePrefix names the log files: <prefix>.<YYYY-MM-DD>.log.
	FilePrefix string
	// RotationGrace keeps the tailer on the outgoing file after the new
	// day's file first appears, so slow writers can finish flushing it.
	RotationGrace time.Duration
	// PollInterval bounds the sleep between tail iterations.
	PollInterval time.Duration
	// Cursor persists {file, offset} across restarts. Optional; without it
	// every start begins at the current end of today's file.
	Cursor *CursorStore
	// Now is the clock, injectable for tests. Defaults to time.Now.
	Now func() time.Time

	Sink   Sink
	Logger log.Logger
}

// Tailer follows the daily-rotated executor log, surviving the midnight
// rollover without losing or duplicating completion lines, and pushes
// extracted job identifiers to its sink. All state is owned by the tailing
// goroutine; nothing here is shared.
type Tailer struct {
	opts   Options
	logger log.Logger

	file          string
	offset        int64
	rolloverSince time.Time
}

// New builds a Tailer. Options.LogsPath, Sink and Logger are required.
func New(opts Options) *Tailer {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 500 * time.Millisecond
	}
	return &Tailer{opts: opts, logger: opts.Logger}
}

// Run tails until ctx is cancelled. It never returns on read errors; a
// transiently unreadable file is retried on the next iteration.
func (t *Tailer) Run(ctx context.Context) error {
	t.start()
	for {
		t.poll()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(t.opts.PollInterval):
		}
	}
}

// start positions the tailer. A persisted cursor naming today's file resumes
// from the stored offset; anything else starts at the current end of file,
// so an old log is never reprocessed wholesale.
func (t *Tailer) start() {
	t.file = t.expectedFile(t.opts.Now())
	if t.opts.Cursor != nil {
		if cur, ok := t.opts.Cursor.Load(); ok && cur.File == t.file {
			t.offset = cur.Offset
			t.logger.Info("resuming from persisted cursor",
				log.Str("file", t.file), log.Int64("offset", t.offset))
			return
		}
	}
	if info, err := os.Stat(t.file); err == nil {
		t.offset = info.Size()
	}
	t.logger.Info("tailing from end of file",
		log.Str("file", t.file), log.Int64("offset", t.offset))
}

// poll runs one tail iteration: resolve the target file (handling rollover),
// drain complete lines from the stored offset, and persist the new cursor.
func (t *Tailer) poll() {
	now := t.opts.Now()
	expected := t.expectedFile(now)

	if expected != t.file {
		switch {
		case !fileExists(expected):
			// The day boundary has not produced a new file yet; stay put.
		case t.rolloverSince.IsZero():
			t.rolloverSince = now
			t.logger.Info("new log file observed, draining old file first",
				log.Str("old", t.file), log.Str("new", expected))
		case now.Sub(t.rolloverSince) >= t.opts.RotationGrace:
			t.file = expected
			t.offset = 0
			t.rolloverSince = time.Time{}
			t.logger.Info("switched to new log file", log.Str("file", t.file))
		}
	}

	if err := t.drain(); err != nil {
		t.logger.Warn("log read failed, will retry", log.Str("file", t.file), log.Err(err))
		return
	}

	if t.opts.Cursor != nil {
		if err := t.opts.Cursor.Save(Cursor{File: t.file, Offset: t.offset}); err != nil {
			t.logger.Warn("cursor save failed", log.Err(err))
		}
	}
}

// drain reads complete lines from the current offset to end of file. A
// trailing partial line (no newline yet) is left unconsumed so the next
// iteration sees it whole.
func (t *Tailer) drain() error {
	f, err := os.Open(t.file)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Seek(t.offset, io.SeekStart); err != nil {
		return fmt.Errorf("seek %s to %d: %w", t.file, t.offset, err)
	}

	r := bufio.NewReader(f)
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			// err is io.EOF or a read failure; either way the partial
			// line is not consumed and the offset stays before it.
			if err == io.EOF {
				return nil
			}
			return err
		}
		t.offset += int64(len(line))
		if jobID := ExtractJobID(strings.TrimSpace(line)); jobID != "" {
			t.logger.Info("encountered finished job", log.Str("job_id", jobID))
			t.opts.Sink.Enqueue(jobID)
		}
	}
}

// expectedFile computes today's log file name from the wall clock.
func (t *Tailer) expectedFile(now time.Time) string {
	name := fmt.Sprintf("%s.%s.log", t.opts.FilePrefix, now.Format("2006-01-02"))
	return filepath.Join(t.opts.LogsPath, name)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

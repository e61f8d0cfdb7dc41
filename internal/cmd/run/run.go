package run

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/ClearPeaks/knime-audit/internal/audit"
	"github.com/ClearPeaks/knime-audit/internal/backup"
	cfgpkg "github.com/ClearPeaks/knime-audit/internal/config"
	"github.com/ClearPeaks/knime-audit/internal/filter"
	"github.com/ClearPeaks/knime-audit/internal/knimeapi"
	"github.com/ClearPeaks/knime-audit/internal/knwf"
	"github.com/ClearPeaks/knime-audit/internal/processor"
	"github.com/ClearPeaks/knime-audit/internal/queue"
	pebblestore "github.com/ClearPeaks/knime-audit/internal/storage/pebble"
	"github.com/ClearPeaks/knime-audit/internal/tailer"
	logpkg "github.com/ClearPeaks/knime-audit/pkg/log"
)

// Options carries everything Run needs. Config must already have env
// overrides applied; Run validates it.
type Options struct {
	Config cfgpkg.Config
}

// buildLogger assembles the process-wide logger from the config's log
// section, falling back to info/text on a bad level.
func buildLogger(cfg cfgpkg.LogConfig) logpkg.Logger {
	level, err := logpkg.ParseLevel(cfg.Level)
	if err != nil {
		level = logpkg.InfoLevel
	}
	opts := []logpkg.Option{
		logpkg.WithLevel(level),
		logpkg.WithFormat(cfg.Format),
	}
	if cfg.File != "" {
		opts = append(opts, logpkg.WithFile(cfg.File, cfg.MaxSizeMB, cfg.MaxBackups))
	}
	return logpkg.NewLogger(opts...)
}

// Run wires the tailer and the processing loop together and blocks until
// ctx is cancelled. The tailer feeds job identifiers into the queue; the
// processor drains it against the REST API, backup tree and AMQP broker.
func Run(ctx context.Context, opts Options) error {
	// Layer a local signal context over the provided one so callers that
	// pass a plain context still get SIGINT/SIGTERM shutdown.
	sctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := opts.Config
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.DataDir == "" {
		cfg.DataDir = cfgpkg.DefaultDataDir()
	}

	logger := buildLogger(cfg.Log)
	logger.Info("starting knime-audit",
		logpkg.Str("logs_path", cfg.Tailer.LogsPath),
		logpkg.Str("backup_root", cfg.Backup.RootPath),
		logpkg.Str("data_dir", cfg.DataDir),
		logpkg.Str("amqp_queue", cfg.AMQP.QueueName),
	)

	db, err := pebblestore.Open(pebblestore.Options{DataDir: filepath.Join(cfg.DataDir, "store")})
	if err != nil {
		return fmt.Errorf("open cursor store: %w", err)
	}
	defer db.Close()

	host := cfg.RestAPI.Host
	if host == "" {
		host, _ = os.Hostname()
	}

	api, err := knimeapi.NewClient(knimeapi.Options{
		Host:       cfg.RestAPI.Host,
		Port:       cfg.RestAPI.Port,
		User:       cfg.RestAPI.User,
		Password:   cfg.RestAPI.Password,
		CACertFile: cfg.RestAPI.CACertFile,
		Timeout:    time.Duration(cfg.RestAPI.TimeoutSeconds) * time.Second,
		Logger:     logger.With(logpkg.Component("knimeapi")),
	})
	if err != nil {
		return fmt.Errorf("rest api client: %w", err)
	}
	// Fail fast on bad credentials or an unreachable server rather than
	// discovering it on the first completed job.
	if _, err := api.ListJobs(sctx); err != nil {
		return fmt.Errorf("rest api probe: %w", err)
	}

	for _, dir := range []string{cfg.Backup.RootPath, cfg.Backup.TempExtractionPath} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}

	rewriter := knwf.NewRewriter(cfg.Backup.MaxAuditPaths, cfg.Backup.FilesToKeep,
		logger.With(logpkg.Component("knwf")))
	writer := backup.NewWriter(cfg.Backup.RootPath, cfg.Backup.TempExtractionPath, api, rewriter,
		logger.With(logpkg.Component("backup")))

	sender, err := audit.NewSender(audit.SenderOptions{
		URL:        cfg.AMQP.URL,
		Queue:      cfg.AMQP.QueueName,
		CACertFile: cfg.AMQP.CACertFile,
		Logger:     logger.With(logpkg.Component("audit")),
	})
	if err != nil {
		return fmt.Errorf("amqp sender: %w", err)
	}

	flt, err := filter.New(cfg.AuditFilter)
	if err != nil {
		return fmt.Errorf("audit filter: %w", err)
	}

	q := queue.New()

	tl := tailer.New(tailer.Options{
		LogsPath:      cfg.Tailer.LogsPath,
		FilePrefix:    cfg.Tailer.FilePrefix,
		RotationGrace: time.Duration(cfg.Tailer.RotationGraceSeconds) * time.Second,
		PollInterval:  time.Duration(cfg.Tailer.PollIntervalMs) * time.Millisecond,
		Cursor:        tailer.NewCursorStore(db),
		Sink:          q,
		Logger:        logger.With(logpkg.Component("tailer")),
	})

	proc := processor.New(processor.Options{
		Queue:      q,
		API:        api,
		Backup:     writer,
		Sender:     sender,
		Filter:     flt,
		Host:       host,
		RetryDelay: time.Duration(cfg.RetryDelaySeconds) * time.Second,
		Logger:     logger.With(logpkg.Component("processor")),
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := tl.Run(sctx); err != nil && sctx.Err() == nil {
			logger.Error("tailer stopped", logpkg.Err(err))
		}
	}()

	err = proc.Run(sctx)
	wg.Wait()
	if sctx.Err() != nil {
		logger.Info("shutting down")
		return nil
	}
	return err
}

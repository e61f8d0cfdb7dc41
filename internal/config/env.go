package config

import (
	"os"
	"strconv"
	"strings"
)

// FromEnv overlays KNIME_AUDIT_* environment variables onto cfg.
func FromEnv(cfg *Config) {
	if v := os.Getenv("KNIME_AUDIT_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("KNIME_AUDIT_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("KNIME_AUDIT_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
	if v := os.Getenv("KNIME_AUDIT_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("KNIME_AUDIT_LOGS_PATH"); v != "" {
		cfg.Tailer.LogsPath = v
	}
	if v := os.Getenv("KNIME_AUDIT_LOG_FILE_PREFIX"); v != "" {
		cfg.Tailer.FilePrefix = v
	}
	if v := os.Getenv("KNIME_AUDIT_ROTATION_GRACE_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Tailer.RotationGraceSeconds = n
		}
	}
	if v := os.Getenv("KNIME_AUDIT_POLL_INTERVAL_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Tailer.PollIntervalMs = n
		}
	}
	if v := os.Getenv("KNIME_AUDIT_BACKUP_ROOT"); v != "" {
		cfg.Backup.RootPath = v
	}
	if v := os.Getenv("KNIME_AUDIT_TEMP_EXTRACTION_PATH"); v != "" {
		cfg.Backup.TempExtractionPath = v
	}
	if v := os.Getenv("KNIME_AUDIT_MAX_AUDIT_PATHS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Backup.MaxAuditPaths = n
		}
	}
	if v := os.Getenv("KNIME_AUDIT_FILES_TO_KEEP"); v != "" {
		parts := strings.Split(v, ",")
		cfg.Backup.FilesToKeep = nil
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cfg.Backup.FilesToKeep = append(cfg.Backup.FilesToKeep, p)
			}
		}
	}
	if v := os.Getenv("KNIME_AUDIT_REST_HOST"); v != "" {
		cfg.RestAPI.Host = v
	}
	if v := os.Getenv("KNIME_AUDIT_REST_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RestAPI.Port = n
		}
	}
	if v := os.Getenv("KNIME_AUDIT_REST_USER"); v != "" {
		cfg.RestAPI.User = v
	}
	if v := os.Getenv("KNIME_AUDIT_REST_PASSWORD"); v != "" {
		cfg.RestAPI.Password = v
	}
	if v := os.Getenv("KNIME_AUDIT_CA_CERT_FILE"); v != "" {
		cfg.RestAPI.CACertFile = v
		cfg.AMQP.CACertFile = v
	}
	if v := os.Getenv("KNIME_AUDIT_REST_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RestAPI.TimeoutSeconds = n
		}
	}
	if v := os.Getenv("KNIME_AUDIT_AMQP_URL"); v != "" {
		cfg.AMQP.URL = v
	}
	if v := os.Getenv("KNIME_AUDIT_AMQP_QUEUE"); v != "" {
		cfg.AMQP.QueueName = v
	}
	if v := os.Getenv("KNIME_AUDIT_RETRY_DELAY_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RetryDelaySeconds = n
		}
	}
	if v := os.Getenv("KNIME_AUDIT_FILTER"); v != "" {
		cfg.AuditFilter = v
	}
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Tailer.FilePrefix != "localhost" {
		t.Fatalf("default file prefix")
	}
	if cfg.Tailer.RotationGraceSeconds != 60 {
		t.Fatalf("default rotation grace")
	}
	if cfg.RetryDelaySeconds != 10 {
		t.Fatalf("default retry delay")
	}
	if len(cfg.Backup.FilesToKeep) == 0 {
		t.Fatalf("default keep-list empty")
	}
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "knime-audit.json")
	data := []byte(`{"tailer":{"logsPath":"/var/log/knime","rotationGraceSeconds":120},"backup":{"rootPath":"/backups","maxAuditPaths":5},"amqp":{"url":"amqps://mq:5671","queueName":"audit"}}`)
	if err := os.WriteFile(file, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(file)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Tailer.LogsPath != "/var/log/knime" {
		t.Fatalf("logsPath")
	}
	if cfg.Tailer.RotationGraceSeconds != 120 {
		t.Fatalf("rotation grace override")
	}
	// untouched keys keep defaults
	if cfg.Tailer.FilePrefix != "localhost" {
		t.Fatalf("prefix default lost")
	}
	if cfg.Backup.MaxAuditPaths != 5 {
		t.Fatalf("maxAuditPaths")
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "knime-audit.yaml")
	data := []byte("tailer:\n  logsPath: /srv/knime/logs\n  filePrefix: executor\nbackup:\n  rootPath: /srv/backups\n  filesToKeep:\n    - settings.xml\n")
	if err := os.WriteFile(file, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(file)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Tailer.LogsPath != "/srv/knime/logs" || cfg.Tailer.FilePrefix != "executor" {
		t.Fatalf("yaml tailer: %+v", cfg.Tailer)
	}
	if len(cfg.Backup.FilesToKeep) != 1 || cfg.Backup.FilesToKeep[0] != "settings.xml" {
		t.Fatalf("yaml keep-list: %+v", cfg.Backup.FilesToKeep)
	}
}

func TestFromEnv(t *testing.T) {
	cfg := Default()
	t.Setenv("KNIME_AUDIT_LOGS_PATH", "/tmp/logs")
	t.Setenv("KNIME_AUDIT_ROTATION_GRACE_SECONDS", "30")
	t.Setenv("KNIME_AUDIT_FILES_TO_KEEP", "settings.xml, workflow.knime")
	t.Setenv("KNIME_AUDIT_AMQP_QUEUE", "audit-events")
	FromEnv(&cfg)
	if cfg.Tailer.LogsPath != "/tmp/logs" {
		t.Fatalf("env logsPath")
	}
	if cfg.Tailer.RotationGraceSeconds != 30 {
		t.Fatalf("env rotation grace")
	}
	if len(cfg.Backup.FilesToKeep) != 2 || cfg.Backup.FilesToKeep[1] != "workflow.knime" {
		t.Fatalf("env keep-list: %+v", cfg.Backup.FilesToKeep)
	}
	if cfg.AMQP.QueueName != "audit-events" {
		t.Fatalf("env amqp queue")
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	err := cfg.Validate()
	if err == nil {
		t.Fatalf("expected validation errors on bare defaults")
	}
	for _, want := range []string{"tailer.logsPath", "backup.rootPath", "amqp.url"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("missing %q in %v", want, err)
		}
	}

	cfg.Tailer.LogsPath = "/var/log/knime"
	cfg.Backup.RootPath = "/backups"
	cfg.Backup.TempExtractionPath = "/tmp/knwf"
	cfg.AMQP.URL = "amqps://mq:5671"
	cfg.AMQP.QueueName = "audit"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
}

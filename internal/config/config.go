package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration loaded from file/env.
type Config struct {
	Log               LogConfig    `json:"log" yaml:"log"`
	DataDir           string       `json:"dataDir" yaml:"dataDir"`
	Tailer            TailerConfig `json:"tailer" yaml:"tailer"`
	Backup            BackupConfig `json:"backup" yaml:"backup"`
	RestAPI           RestConfig   `json:"restApi" yaml:"restApi"`
	AMQP              AMQPConfig   `json:"amqp" yaml:"amqp"`
	RetryDelaySeconds int          `json:"retryDelaySeconds" yaml:"retryDelaySeconds"`
	AuditFilter       string       `json:"auditFilter" yaml:"auditFilter"`
}

// LogConfig controls the daemon's own log output.
type LogConfig struct {
	Level      string `json:"level" yaml:"level"`
	Format     string `json:"format" yaml:"format"`
	File       string `json:"file" yaml:"file"`
	MaxSizeMB  int    `json:"maxSizeMb" yaml:"maxSizeMb"`
	MaxBackups int    `json:"maxBackups" yaml:"maxBackups"`
}

// TailerConfig locates the KNIME executor log and tunes rollover handling.
type TailerConfig struct {
	// LogsPath is the directory holding the daily-rotated executor logs.
	LogsPath string `json:"logsPath" yaml:"logsPath"`
	// FilePrefix names the log files: <prefix>.<YYYY-MM-DD>.log.
	FilePrefix string `json:"filePrefix" yaml:"filePrefix"`
	// RotationGraceSeconds keeps the tailer on the outgoing file after the
	// new day's file first appears, so slow writers can finish flushing.
	RotationGraceSeconds int `json:"rotationGraceSeconds" yaml:"rotationGraceSeconds"`
	PollIntervalMs       int `json:"pollIntervalMs" yaml:"pollIntervalMs"`
}

// BackupConfig controls the on-disk backup tree and archive rewriting.
type BackupConfig struct {
	RootPath           string   `json:"rootPath" yaml:"rootPath"`
	TempExtractionPath string   `json:"tempExtractionPath" yaml:"tempExtractionPath"`
	MaxAuditPaths      int      `json:"maxAuditPaths" yaml:"maxAuditPaths"`
	FilesToKeep        []string `json:"filesToKeep" yaml:"filesToKeep"`
}

// RestConfig points at the KNIME Server REST API.
type RestConfig struct {
	// Host defaults to the local hostname when empty; the daemon runs
	// alongside the server it watches.
	Host           string `json:"host" yaml:"host"`
	Port           int    `json:"port" yaml:"port"`
	User           string `json:"user" yaml:"user"`
	Password       string `json:"password" yaml:"password"`
	CACertFile     string `json:"caCertFile" yaml:"caCertFile"`
	TimeoutSeconds int    `json:"timeoutSeconds" yaml:"timeoutSeconds"`
}

// AMQPConfig points at the ActiveMQ broker receiving audit events.
type AMQPConfig struct {
	URL        string `json:"url" yaml:"url"`
	QueueName  string `json:"queueName" yaml:"queueName"`
	CACertFile string `json:"caCertFile" yaml:"caCertFile"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Tailer: TailerConfig{
			FilePrefix:           "localhost",
			RotationGraceSeconds: 60,
			PollIntervalMs:       500,
		},
		Backup: BackupConfig{
			MaxAuditPaths: 20,
			FilesToKeep:   []string{"settings.xml", "workflow.knime"},
		},
		RestAPI: RestConfig{
			Port:           8443,
			TimeoutSeconds: 30,
		},
		RetryDelaySeconds: 10,
	}
}

// Load reads configuration from a JSON or YAML file (by extension). If path
// is empty, returns defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	return cfg, nil
}

// Validate checks the settings the daemon cannot run without.
func (c Config) Validate() error {
	var errs []error
	if c.Tailer.LogsPath == "" {
		errs = append(errs, errors.New("tailer.logsPath is required"))
	}
	if c.Backup.RootPath == "" {
		errs = append(errs, errors.New("backup.rootPath is required"))
	}
	if c.Backup.TempExtractionPath == "" {
		errs = append(errs, errors.New("backup.tempExtractionPath is required"))
	}
	if c.Backup.MaxAuditPaths <= 0 {
		errs = append(errs, errors.New("backup.maxAuditPaths must be positive"))
	}
	if c.AMQP.URL == "" {
		errs = append(errs, errors.New("amqp.url is required"))
	}
	if c.AMQP.QueueName == "" {
		errs = append(errs, errors.New("amqp.queueName is required"))
	}
	return errors.Join(errs...)
}

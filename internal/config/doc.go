// Package config defines the knime-audit configuration surface: where the
// executor logs live, where backups go, how the KNIME Server REST API and
// the ActiveMQ broker are reached, and the retry/rollover tunables.
//
// Configuration is loaded from a JSON or YAML file, then overlaid with
// KNIME_AUDIT_* environment variables.
package config

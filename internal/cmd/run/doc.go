// Package run exposes the shared Run entrypoint used by the CLI to start
// the audit daemon: it wires the log tailer, job queue, backup writer and
// AMQP sender from a validated config and blocks until shutdown.
package run

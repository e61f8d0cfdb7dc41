// Package audit builds the audit event document for a completed job and
// delivers it to the ActiveMQ broker over AMQP 1.0.
package audit

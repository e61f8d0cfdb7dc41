// Package processor runs the single-consumer job loop: for each job
// identifier from the queue it fetches metadata, writes the backup, and
// delivers the audit event, requeueing the job after a fixed delay on any
// failure.
package processor

// Package tailer follows the KNIME executor's daily-rotated log and feeds
// job identifiers from completion lines into the processing queue.
//
// The executor writes to <prefix>.<YYYY-MM-DD>.log and starts a new file at
// midnight. The tailer resolves the expected file from the clock each
// iteration; when the new day's file appears it keeps draining the old file
// for a configurable grace period before switching, so lines still being
// flushed to the outgoing file are not lost. The read position is persisted
// as a cursor so a restart mid-file neither re-emits nor skips lines.
package tailer

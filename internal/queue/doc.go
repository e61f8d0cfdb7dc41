// Package queue implements the FIFO hand-off between the log tailer and the
// job processor. It is the only synchronization point between the two loops:
// no other mutable state crosses that boundary.
package queue

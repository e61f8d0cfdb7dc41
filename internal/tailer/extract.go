package tailer

import "strings"

// Completion markers written by the executor when a job leaves the running
// state. Both outcomes are audited.
const (
	markerFinished = "EXECUTION_FINISHED"
	markerFailed   = "EXECUTION_FAILED"
)

// ExtractJobID pulls the job identifier out of a completion line. The
// identifier is the 8th token from the end, wrapped in parentheses. Lines
// without a completion marker yield "".
func ExtractJobID(line string) string {
	if !strings.Contains(line, markerFinished) && !strings.Contains(line, markerFailed) {
		return ""
	}
	fields := strings.Fields(line)
	if len(fields) < 8 {
		return ""
	}
	return strings.Trim(fields[len(fields)-8], "()")
}

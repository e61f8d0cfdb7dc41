// Package backup persists the audit artifact set for each completed job: a
// date-partitioned directory holding the job metadata document, the
// workflow summary, and the rewritten workflow archive.
//
// Layout:
//
//	<root>/
//	    yyyymmdd/
//	        <job>-<yyyymmddHHMMSS>/
//	            job-summary.json
//	            workflow-summary.json
//	            <job>.knwf
package backup

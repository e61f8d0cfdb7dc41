// Package filter provides the optional CEL expression that selects which
// completed jobs are audited. Operators set it in configuration; the empty
// expression audits everything.
package filter

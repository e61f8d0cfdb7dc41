// Package knimeapi is the client for the KNIME Server REST API (v4): job
// metadata, workflow summaries, and workflow archive downloads, with basic
// auth and an operator-provided CA certificate.
package knimeapi

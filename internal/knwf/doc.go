// Package knwf rewrites KNIME workflow archives (.knwf, zip containers) for
// audit backup: execution artifacts are stripped down to a keep-list, the
// dataset paths referenced by node settings documents are collected up to a
// configured maximum, and the filtered tree replaces the archive at its
// original path.
package knwf

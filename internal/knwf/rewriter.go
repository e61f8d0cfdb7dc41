package knwf

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ClearPeaks/knime-audit/pkg/log"
)

// settingsFile is the per-node configuration document inside a .knwf archive.
const settingsFile = "settings.xml"

// pathEntryMarker identifies a dataset path entry inside settings.xml.
const pathEntryMarker = `<entry key="path" type="xstring" value="`

// PathsTruncated is appended (at most once) to the extracted path list when
// the archive references more paths than the configured maximum.
const PathsTruncated = "..."

// Rewriter rewrites .knwf archives in place: it unpacks the archive, deletes
// files not on the keep-list, collects the dataset paths referenced by the
// remaining settings documents, and repacks the filtered tree over the
// original archive path.
type Rewriter struct {
	maxPaths int
	keep     map[string]struct{}
	logger   log.Logger
}

// NewRewriter builds a Rewriter. maxPaths caps the collected dataset paths;
// filesToKeep lists the archive-internal file names that survive rewriting.
func NewRewriter(maxPaths int, filesToKeep []string, logger log.Logger) *Rewriter {
	keep := make(map[string]struct{}, len(filesToKeep))
	for _, name := range filesToKeep {
		keep[name] = struct{}{}
	}
	return &Rewriter{maxPaths: maxPaths, keep: keep, logger: logger}
}

// Rewrite unpacks the archive at archivePath into <extractRoot>/<jobID>,
// filters and scans it, and repacks the result back to archivePath. The
// extraction directory is removed unconditionally, also on error. Returns
// the ordered dataset paths discovered in the settings documents.
func (r *Rewriter) Rewrite(archivePath, extractRoot, jobID string) ([]string, error) {
	dest := filepath.Join(extractRoot, jobID)
	defer os.RemoveAll(dest)

	r.logger.Info("extracting archive", log.Str("archive", archivePath), log.Str("dest", dest))
	if err := unpack(archivePath, dest); err != nil {
		return nil, fmt.Errorf("unpack %s: %w", archivePath, err)
	}

	if err := r.deleteUnkept(dest); err != nil {
		return nil, err
	}
	paths, err := r.collectPaths(dest)
	if err != nil {
		return nil, err
	}

	if err := repack(dest, archivePath); err != nil {
		return nil, fmt.Errorf("repack %s: %w", archivePath, err)
	}
	return paths, nil
}

// deleteUnkept removes every file whose name is not on the keep-list,
// trimming execution artifacts from the backup. Directories are kept.
func (r *Rewriter) deleteUnkept(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := r.keep[d.Name()]; ok {
			return nil
		}
		r.logger.Debug("removing file", log.Str("file", path))
		return os.Remove(path)
	})
}

// collectPaths scans each directory's settings document for dataset path
// entries. The cap applies across all directories; once reached, a single
// truncation sentinel is appended and scanning stops.
func (r *Rewriter) collectPaths(root string) ([]string, error) {
	var paths []string
	truncated := false
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		settings := filepath.Join(path, settingsFile)
		if _, serr := os.Stat(settings); serr != nil {
			return nil
		}
		matches, serr := scanSettings(settings)
		if serr != nil {
			return serr
		}
		for _, m := range matches {
			if len(paths) >= r.maxPaths {
				truncated = true
				return fs.SkipAll
			}
			paths = append(paths, m)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if truncated {
		r.logger.Info("dataset path cap reached, truncating",
			log.Int("max", r.maxPaths))
		paths = append(paths, PathsTruncated)
	}
	return paths, nil
}

// scanSettings returns the dataset path values found in one settings document.
func scanSettings(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var matches []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		i := strings.Index(line, pathEntryMarker)
		if i < 0 {
			continue
		}
		value := line[i+len(pathEntryMarker):]
		if j := strings.Index(value, `"`); j >= 0 {
			value = value[:j]
		}
		matches = append(matches, strings.TrimSpace(value))
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return matches, nil
}

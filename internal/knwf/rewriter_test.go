package knwf

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"testing"

	"github.com/ClearPeaks/knime-audit/pkg/log"
)

func buildArchive(t *testing.T, path string, files map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	zw := zip.NewWriter(f)
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(files[name])); err != nil {
			t.Fatalf("zip write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
}

func settingsWithPaths(paths ...string) string {
	doc := "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<config>\n"
	doc += "    <entry key=\"name\" type=\"xstring\" value=\"CSV Reader\"/>\n"
	for _, p := range paths {
		doc += fmt.Sprintf("    <entry key=\"path\" type=\"xstring\" value=\"%s\"/>\n", p)
	}
	doc += "</config>\n"
	return doc
}

func archiveNames(t *testing.T, path string) []string {
	t.Helper()
	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("open rewritten archive: %v", err)
	}
	defer zr.Close()
	var names []string
	for _, f := range zr.File {
		if !f.FileInfo().IsDir() {
			names = append(names, f.Name)
		}
	}
	sort.Strings(names)
	return names
}

func newTestRewriter(maxPaths int) *Rewriter {
	return NewRewriter(maxPaths, []string{"settings.xml", "workflow.knime"}, log.NewNop())
}

func TestRewriteFiltersAndCollects(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "job-7.knwf")
	buildArchive(t, archive, map[string]string{
		"MyFlow/workflow.knime":           "<workflow/>",
		"MyFlow/data.bin":                 "binary junk",
		"MyFlow/CSV Reader/settings.xml":  settingsWithPaths("data/input.csv"),
		"MyFlow/CSV Reader/internals.tmp": "scratch",
		"MyFlow/Writer/settings.xml":      settingsWithPaths("data/out.csv", "data/extra.csv"),
	})

	paths, err := newTestRewriter(10).Rewrite(archive, filepath.Join(dir, "tmp"), "job-7")
	if err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	want := []string{"data/input.csv", "data/out.csv", "data/extra.csv"}
	if !reflect.DeepEqual(paths, want) {
		t.Fatalf("paths %v want %v", paths, want)
	}

	// a file still exists at the original path, holding only kept files
	names := archiveNames(t, archive)
	wantNames := []string{
		"MyFlow/CSV Reader/settings.xml",
		"MyFlow/Writer/settings.xml",
		"MyFlow/workflow.knime",
	}
	if !reflect.DeepEqual(names, wantNames) {
		t.Fatalf("archive contents %v want %v", names, wantNames)
	}

	// extraction directory cleaned up
	if _, err := os.Stat(filepath.Join(dir, "tmp", "job-7")); !os.IsNotExist(err) {
		t.Fatalf("extraction dir left behind")
	}
}

func TestPathCapExactNoSentinel(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "job.knwf")
	buildArchive(t, archive, map[string]string{
		"Flow/Node/settings.xml": settingsWithPaths("a.csv", "b.csv"),
	})
	paths, err := newTestRewriter(2).Rewrite(archive, filepath.Join(dir, "tmp"), "job")
	if err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	if !reflect.DeepEqual(paths, []string{"a.csv", "b.csv"}) {
		t.Fatalf("paths %v", paths)
	}
}

func TestPathCapTruncates(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "job.knwf")
	buildArchive(t, archive, map[string]string{
		"Flow/A/settings.xml": settingsWithPaths("1.csv", "2.csv"),
		"Flow/B/settings.xml": settingsWithPaths("3.csv", "4.csv"),
		"Flow/C/settings.xml": settingsWithPaths("5.csv"),
	})
	paths, err := newTestRewriter(3).Rewrite(archive, filepath.Join(dir, "tmp"), "job")
	if err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	want := []string{"1.csv", "2.csv", "3.csv", PathsTruncated}
	if !reflect.DeepEqual(paths, want) {
		t.Fatalf("paths %v want %v", paths, want)
	}
}

func TestNoSettingsDocuments(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "job.knwf")
	buildArchive(t, archive, map[string]string{
		"Flow/workflow.knime": "<workflow/>",
	})
	paths, err := newTestRewriter(5).Rewrite(archive, filepath.Join(dir, "tmp"), "job")
	if err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	if len(paths) != 0 {
		t.Fatalf("expected no paths, got %v", paths)
	}
}

func TestMalformedArchive(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "job.knwf")
	if err := os.WriteFile(archive, []byte("not a zip container"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := newTestRewriter(5).Rewrite(archive, filepath.Join(dir, "tmp"), "job"); err == nil {
		t.Fatalf("expected error for malformed archive")
	}
	// cleanup still ran
	if _, err := os.Stat(filepath.Join(dir, "tmp", "job")); !os.IsNotExist(err) {
		t.Fatalf("extraction dir left behind after failure")
	}
}

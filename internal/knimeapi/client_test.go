package knimeapi

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ClearPeaks/knime-audit/pkg/log"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewClient(Options{
		BaseURL: srv.URL + "/knime/rest/v4",
		User:    "auditor",
		Logger:  log.NewNop(),
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestGetJobInfo(t *testing.T) {
	const body = `{"id":"job-42","owner":"alice","state":"EXECUTED","workflow":"wf/MyFlow","createdAt":"2025-08-30T09:00:00.123+02:00[Europe/Madrid]","nodeMessages":[{"type":"WARNING","message":"deprecated node"}]}`
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/knime/rest/v4/jobs/job-42" {
			t.Errorf("path %s", r.URL.Path)
		}
		if _, _, ok := r.BasicAuth(); !ok {
			t.Errorf("missing basic auth")
		}
		w.Write([]byte(body))
	}))

	info, err := c.GetJobInfo(context.Background(), "job-42")
	if err != nil {
		t.Fatalf("get job info: %v", err)
	}
	if info.Owner != "alice" || info.State != "EXECUTED" || info.Workflow != "wf/MyFlow" {
		t.Fatalf("parsed %+v", info)
	}
	if len(info.NodeMessages) != 1 || info.NodeMessages[0].Message != "deprecated node" {
		t.Fatalf("node messages %+v", info.NodeMessages)
	}
	if string(info.Raw) != body {
		t.Fatalf("raw document not preserved")
	}
}

func TestGetWorkflowSummaryQuery(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/knime/rest/v4/jobs/job-1/workflow-summary" {
			t.Errorf("path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("format") != "JSON" || q.Get("includeExecutionInfo") != "true" {
			t.Errorf("query %s", r.URL.RawQuery)
		}
		w.Write([]byte(`{"summary":true}`))
	}))
	body, err := c.GetWorkflowSummary(context.Background(), "job-1")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if string(body) != `{"summary":true}` {
		t.Fatalf("body %s", body)
	}
}

func TestDownloadWorkflowData(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/knime/rest/v4/repository/wf/MyFlow:data" {
			t.Errorf("path %s", r.URL.Path)
		}
		w.Write([]byte("knwf-bytes"))
	}))
	rc, err := c.DownloadWorkflowData(context.Background(), "wf/MyFlow")
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	defer rc.Close()
	b, _ := io.ReadAll(rc)
	if string(b) != "knwf-bytes" {
		t.Fatalf("body %q", b)
	}
}

func TestNonSuccessIsError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	if _, err := c.GetJobInfo(context.Background(), "job-404"); err == nil {
		t.Fatalf("expected error on 404")
	}
	if _, err := c.ListJobs(context.Background()); err == nil {
		t.Fatalf("expected error on 404")
	}
}

func TestTriggerSwap(t *testing.T) {
	var gotMethod, gotPath string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
	}))
	if err := c.TriggerSwap(context.Background(), "job-9"); err != nil {
		t.Fatalf("swap: %v", err)
	}
	if gotMethod != http.MethodPut || gotPath != "/knime/rest/v4/jobs/job-9/swap" {
		t.Fatalf("%s %s", gotMethod, gotPath)
	}
}

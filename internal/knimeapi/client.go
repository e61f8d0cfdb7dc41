package knimeapi

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/ClearPeaks/knime-audit/pkg/log"
)

const acceptMason = "application/vnd.mason+json"

// Options configures a Client.
type Options struct {
	// Host defaults to the local hostname; the daemon runs alongside the
	// KNIME Server it watches.
	Host       string
	Port       int
	User       string
	Password   string
	CACertFile string
	Timeout    time.Duration
	// BaseURL overrides scheme/host/port entirely. Used in tests.
	BaseURL string

	Logger log.Logger
}

// Client talks to the KNIME Server REST API (v4). Non-2xx responses surface
// as errors so the processing loop's retry path can trigger.
type Client struct {
	baseURL  string
	user     string
	password string
	hc       *http.Client
	logger   log.Logger
}

// NewClient builds a Client. When Options.CACertFile is set, the server
// certificate is verified against that CA only.
func NewClient(opts Options) (*Client, error) {
	baseURL := opts.BaseURL
	if baseURL == "" {
		host := opts.Host
		if host == "" {
			h, err := os.Hostname()
			if err != nil {
				return nil, fmt.Errorf("resolve hostname: %w", err)
			}
			host = h
		}
		baseURL = fmt.Sprintf("https://%s:%d/knime/rest/v4", host, opts.Port)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if opts.CACertFile != "" {
		pem, err := os.ReadFile(opts.CACertFile)
		if err != nil {
			return nil, fmt.Errorf("read CA cert: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no certificates found in %s", opts.CACertFile)
		}
		transport.TLSClientConfig = &tls.Config{RootCAs: pool}
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:  baseURL,
		user:     opts.User,
		password: opts.Password,
		hc:       &http.Client{Transport: transport, Timeout: timeout},
		logger:   opts.Logger,
	}, nil
}

// NodeMessage is one entry of a job's node message list.
type NodeMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// JobInfo is the job metadata document. Raw preserves the document exactly
// as served, for backup; the struct fields cover what the audit needs.
type JobInfo struct {
	ID           string        `json:"id"`
	Owner        string        `json:"owner"`
	State        string        `json:"state"`
	Workflow     string        `json:"workflow"`
	CreatedAt    string        `json:"createdAt"`
	NodeMessages []NodeMessage `json:"nodeMessages"`

	Raw []byte `json:"-"`
}

// ListJobs lists all jobs managed by the server. Used as a connectivity
// probe at startup; the body is returned raw.
func (c *Client) ListJobs(ctx context.Context) ([]byte, error) {
	return c.get(ctx, c.baseURL+"/jobs/", acceptMason)
}

// GetJobInfo fetches the metadata document for a finished job.
func (c *Client) GetJobInfo(ctx context.Context, jobID string) (*JobInfo, error) {
	body, err := c.get(ctx, c.baseURL+"/jobs/"+url.PathEscape(jobID), acceptMason)
	if err != nil {
		return nil, err
	}
	info := &JobInfo{Raw: body}
	if err := json.Unmarshal(body, info); err != nil {
		return nil, fmt.Errorf("parse job info for %s: %w", jobID, err)
	}
	return info, nil
}

// GetWorkflowSummary fetches the workflow summary document for a job,
// including execution statistics. The body is returned raw.
func (c *Client) GetWorkflowSummary(ctx context.Context, jobID string) ([]byte, error) {
	u := c.baseURL + "/jobs/" + url.PathEscape(jobID) + "/workflow-summary?format=JSON&includeExecutionInfo=true"
	return c.get(ctx, u, "application/json")
}

// DownloadWorkflowData streams the workflow archive (.knwf) stored at the
// given repository path. The caller must close the returned reader.
func (c *Client) DownloadWorkflowData(ctx context.Context, path string) (io.ReadCloser, error) {
	u := c.baseURL + "/repository/" + path + ":data"
	resp, err := c.do(ctx, http.MethodGet, u, acceptMason)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// TriggerSwap forces the server to swap the job to disk, ensuring the
// workflow summary is materialized before it is fetched.
func (c *Client) TriggerSwap(ctx context.Context, jobID string) error {
	u := c.baseURL + "/jobs/" + url.PathEscape(jobID) + "/swap"
	return c.put(ctx, u)
}

// CopyJobInRepo copies a job into the server repository at path, so users
// cannot delete the job out from under the audit trail.
func (c *Client) CopyJobInRepo(ctx context.Context, jobID, path string) error {
	u := c.baseURL + "/repository/" + path + ":data?from-job=" + url.QueryEscape(jobID)
	return c.put(ctx, u)
}

// DeleteWorkflowData deletes the workflow data stored at a repository path.
func (c *Client) DeleteWorkflowData(ctx context.Context, path string) error {
	resp, err := c.do(ctx, http.MethodDelete, c.baseURL+"/repository/"+path, acceptMason)
	if err != nil {
		return err
	}
	return drain(resp.Body)
}

func (c *Client) get(ctx context.Context, u, accept string) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodGet, u, accept)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response from %s: %w", u, err)
	}
	return body, nil
}

func (c *Client) put(ctx context.Context, u string) error {
	resp, err := c.do(ctx, http.MethodPut, u, acceptMason)
	if err != nil {
		return err
	}
	return drain(resp.Body)
}

func (c *Client) do(ctx context.Context, method, u, accept string) (*http.Response, error) {
	c.logger.Debug("api call", log.Str("method", method), log.Str("url", u))
	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("accept", accept)
	req.SetBasicAuth(c.user, c.password)
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = drain(resp.Body)
		return nil, fmt.Errorf("%s %s: unexpected status %s", method, u, resp.Status)
	}
	return resp, nil
}

func drain(body io.ReadCloser) error {
	_, _ = io.Copy(io.Discard, body)
	return body.Close()
}

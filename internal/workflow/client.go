package workflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"
)

// engineMarker tags log lines emitted by the engine itself rather than
// the pipeline; they are stripped from user-facing logs.
const engineMarker = "argo=true"

// Config holds the connection parameters for the engine API.
type Config struct {
	URL       string
	Token     string
	Namespace string
	Timeout   time.Duration
}

// Client talks to the engine's REST API. All calls are bounded by the
// configured HTTP timeout so a stalled engine cannot wedge a caller.
type Client struct {
	baseURL   string
	token     string
	namespace string
	httpc     *http.Client
}

// NewClient builds a Client from config.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:   strings.TrimRight(cfg.URL, "/"),
		token:     cfg.Token,
		namespace: cfg.Namespace,
		httpc:     &http.Client{Timeout: timeout},
	}
}

// ListExecutions fetches every execution in the configured namespace.
func (c *Client) ListExecutions(ctx context.Context) ([]Execution, error) {
	body, err := c.do(ctx, http.MethodGet, listURL(c.baseURL, c.namespace), nil)
	if err != nil {
		return nil, err
	}
	var list executionList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("decode execution list: %w", err)
	}
	return list.Items, nil
}

// Submit creates an execution from a stored template.
func (c *Client) Submit(ctx context.Context, req SubmitRequest) (SubmitResult, error) {
	payload := submitBody{
		Namespace:    c.namespace,
		ResourceKind: "WorkflowTemplate",
		ResourceName: req.TemplateName,
		SubmitOptions: submitOptions{
			Labels:       joinLabels(req.Labels),
			Parameters:   joinParameters(req.Parameters),
			GenerateName: req.GenerateName,
		},
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("encode submit request: %w", err)
	}
	body, err := c.do(ctx, http.MethodPost, submitURL(c.baseURL, c.namespace), encoded)
	if err != nil {
		return SubmitResult{}, err
	}
	var resp submitResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return SubmitResult{}, fmt.Errorf("decode submit response: %w", err)
	}
	return SubmitResult{
		Name:      resp.Metadata.Name,
		CreatedAt: resp.Metadata.CreationTimestamp,
	}, nil
}

// DeleteExecution removes an execution, using the archival-tier
// endpoint when required. Missing identifiers mean there is nothing to
// delete and succeed silently.
func (c *Client) DeleteExecution(ctx context.Context, name, uid string, archived bool) error {
	var url string
	switch {
	case archived && uid != "":
		url = deleteArchivedURL(c.baseURL, uid)
	case !archived && name != "":
		url = deleteURL(c.baseURL, c.namespace, name)
	default:
		return nil
	}
	_, err := c.do(ctx, http.MethodDelete, url, nil)
	return err
}

// ExecutionLogs fetches the execution's log stream and concatenates the
// pipeline's lines, dropping the engine's own control output.
func (c *Client) ExecutionLogs(ctx context.Context, name, uid string, archived bool) (string, error) {
	var url string
	switch {
	case archived && uid != "":
		url = logsArchivedURL(c.baseURL, c.namespace, uid, name)
	case !archived && name != "":
		url = logsURL(c.baseURL, c.namespace, name)
	default:
		return "", nil
	}
	body, err := c.do(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	return filterLogs(body)
}

// filterLogs parses the NDJSON log stream, keeping only lines the
// pipeline itself produced.
func filterLogs(raw []byte) (string, error) {
	var out strings.Builder
	for _, line := range strings.Split(string(raw), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		var entry logLine
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			return "", fmt.Errorf("decode log line: %w", err)
		}
		if strings.Contains(entry.Result.Content, engineMarker) {
			continue
		}
		out.WriteString(entry.Result.Content)
		out.WriteByte('\n')
	}
	return out.String(), nil
}

func (c *Client) do(ctx context.Context, method, url string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%s %s: engine returned %d: %s", method, url, resp.StatusCode, trimBody(payload))
	}
	return payload, nil
}

func trimBody(b []byte) string {
	const max = 256
	s := strings.TrimSpace(string(b))
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}

// joinLabels renders labels as the "k=v,k=v" string the submit endpoint
// expects, in deterministic key order.
func joinLabels(labels map[string]string) string {
	if len(labels) == 0 {
		return ""
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+labels[k])
	}
	return strings.Join(pairs, ",")
}

func joinParameters(params map[string]string) []string {
	if len(params) == 0 {
		return nil
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+params[k])
	}
	return out
}

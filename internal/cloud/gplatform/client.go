package gplatform

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"net/http"
	"strings"

	"github.com/ktcloud-ops/snapguard/internal/cloud"
)

// DefaultEndpoint is the fixed G-platform API endpoint.
const DefaultEndpoint = "https://api.ucloudbiz.olleh.com/server/v1/client/api"

// Client talks to the KT Cloud G-platform API. Every request is a GET against
// a single endpoint, authenticated by the signed query string from Sign.
//
// The credential pair is read-only after NewClient; the client is safe for use
// from multiple workflows.
type Client struct {
	// Endpoint overrides DefaultEndpoint, mainly for tests.
	Endpoint  string
	APIKey    string
	SecretKey string

	// InsecureSkipVerify disables TLS certificate validation. The provider
	// endpoint serves a self-signed certificate, so production configs run
	// with this enabled. It is a deliberate trust decision surfaced in the
	// configuration file rather than hard-coded.
	InsecureSkipVerify bool

	// RetryConfig defines transport-level retry behavior for transient errors.
	RetryConfig cloud.RetryConfig

	httpClient *http.Client
}

// NewClient validates the credentials and prepares the underlying HTTP client.
func (c *Client) NewClient() error {
	if c.APIKey == "" || c.SecretKey == "" {
		return fmt.Errorf("g-platform client requires both an api key and a secret key")
	}
	if c.Endpoint == "" {
		c.Endpoint = DefaultEndpoint
	}

	transport := &http.Transport{}
	if c.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	c.httpClient = &http.Client{Transport: transport}

	return nil
}

// idempotentCommands are the read-only operations safe to re-issue. A create
// or delete may have committed server-side even when its response is lost, so
// re-sending it could duplicate the mutation; mutations get exactly one
// outbound request and surface their first error.
var idempotentCommands = map[string]bool{
	"listVolumes":         true,
	"listSnapshots":       true,
	"queryAsyncJobResult": true,
}

// call performs one signed API request and returns the raw "{command}response"
// envelope. Transient failures are retried per RetryConfig for idempotent
// commands only; each attempt is a single outbound request.
func (c *Client) call(ctx context.Context, command string, params map[string]string) (json.RawMessage, error) {
	all := map[string]string{
		"apiKey":   c.APIKey,
		"command":  command,
		"response": "json",
	}
	maps.Copy(all, params)

	requestURL := c.Endpoint + "?" + Sign(all, c.SecretKey)
	envelopeKey := strings.ToLower(command) + "response"

	var envelope json.RawMessage

	operation := func(innerCtx context.Context) error {
		req, err := http.NewRequestWithContext(innerCtx, http.MethodGet, requestURL, nil)
		if err != nil {
			return &TransportError{Err: err}
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return &TransportError{Err: err}
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return &TransportError{Err: err}
		}

		if resp.StatusCode >= 400 {
			return &APIError{StatusCode: resp.StatusCode, Body: string(body)}
		}

		var top map[string]json.RawMessage
		if err := json.Unmarshal(body, &top); err != nil {
			return &ResponseShapeError{Command: command, Field: "valid json body"}
		}

		raw, ok := top[envelopeKey]
		if !ok {
			return &ResponseShapeError{Command: command, Field: envelopeKey}
		}

		envelope = raw
		return nil
	}

	if idempotentCommands[command] {
		if err := ExecuteAction(ctx, c.RetryConfig, command, operation); err != nil {
			return nil, err
		}
		return envelope, nil
	}

	opCtx, cancel := context.WithTimeout(ctx, c.RetryConfig.OperationTimeout)
	defer cancel()
	if err := operation(opCtx); err != nil {
		return nil, err
	}

	return envelope, nil
}

// ListDisks fetches the full volume inventory.
func (c *Client) ListDisks(ctx context.Context) ([]Disk, error) {
	raw, err := c.call(ctx, "listVolumes", nil)
	if err != nil {
		return nil, err
	}

	var body struct {
		Volume []Disk `json:"volume"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, &ResponseShapeError{Command: "listVolumes", Field: "volume"}
	}

	for i := range body.Volume {
		if body.Volume[i].OwnerName == "" {
			// Unattached disks come back without a vmdisplayname.
			body.Volume[i].OwnerName = "--"
		}
	}

	return body.Volume, nil
}

// ListSnapshots fetches the full snapshot inventory.
func (c *Client) ListSnapshots(ctx context.Context) ([]Snapshot, error) {
	raw, err := c.call(ctx, "listSnapshots", nil)
	if err != nil {
		return nil, err
	}

	var body struct {
		Snapshot []Snapshot `json:"snapshot"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, &ResponseShapeError{Command: "listSnapshots", Field: "snapshot"}
	}

	return body.Snapshot, nil
}

// CreateSnapshot asks the provider to snapshot a disk and returns the id of
// the asynchronous job tracking it.
func (c *Client) CreateSnapshot(ctx context.Context, diskID, name string) (string, error) {
	raw, err := c.call(ctx, "createSnapshot", map[string]string{
		"volumeid": diskID,
		"name":     name,
	})
	if err != nil {
		return "", err
	}

	return extractJobID(raw, "createSnapshot")
}

// DeleteSnapshot asks the provider to delete a snapshot and returns the id of
// the asynchronous job tracking it.
func (c *Client) DeleteSnapshot(ctx context.Context, snapshotID string) (string, error) {
	raw, err := c.call(ctx, "deleteSnapshot", map[string]string{
		"id": snapshotID,
	})
	if err != nil {
		return "", err
	}

	return extractJobID(raw, "deleteSnapshot")
}

func extractJobID(raw json.RawMessage, command string) (string, error) {
	var body struct {
		JobID string `json:"jobid"`
	}
	if err := json.Unmarshal(raw, &body); err != nil || body.JobID == "" {
		return "", &ResponseShapeError{Command: command, Field: "jobid"}
	}
	return body.JobID, nil
}

// QueryJob polls the status of an asynchronous job. A still-processing job is
// a valid outcome, not an error. Polling is stateless; callers re-poll to see
// jobs that have since completed.
func (c *Client) QueryJob(ctx context.Context, jobID string) (JobOutcome, error) {
	raw, err := c.call(ctx, "queryAsyncJobResult", map[string]string{
		"jobid": jobID,
	})
	if err != nil {
		return JobOutcome{}, err
	}

	var body struct {
		JobStatus *int   `json:"jobstatus"`
		Cmd       string `json:"cmd"`
		JobResult struct {
			ErrorText string `json:"errortext"`
		} `json:"jobresult"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return JobOutcome{}, &ResponseShapeError{Command: "queryAsyncJobResult", Field: "jobstatus"}
	}

	// A missing or unknown status code is treated as a failure, never as
	// pending, so reconciliation cannot over-count in-flight work.
	status := JobFailed
	if body.JobStatus != nil {
		switch *body.JobStatus {
		case 0:
			status = JobPending
		case 1:
			status = JobSucceeded
		}
	}

	return JobOutcome{
		Status:    status,
		ErrorText: body.JobResult.ErrorText,
		Command:   body.Cmd,
	}, nil
}

package clustersync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"workspace-console/backend/internal/membership/domain"
)

// Client implements Syncer against the cluster control plane's binding API.
//
//	PUT    {base}/v1/workspaces/{workspace}/bindings/{user}  body {"role": "..."}
//	DELETE {base}/v1/workspaces/{workspace}/bindings/{user}
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a Client for the given base URL. timeout bounds each
// sync call; expired deadlines surface as TransientError.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

type bindingRequest struct {
	Role string `json:"role"`
}

// Sync applies the desired role binding, or removes it when role is nil.
// A DELETE against a missing binding is success: the desired state holds.
func (c *Client) Sync(ctx context.Context, workspaceID, userID string, role *domain.Role) error {
	url := fmt.Sprintf("%s/v1/workspaces/%s/bindings/%s", c.baseURL, workspaceID, userID)

	var req *http.Request
	var err error
	if role == nil {
		req, err = http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	} else {
		payload, mErr := json.Marshal(bindingRequest{Role: string(*role)})
		if mErr != nil {
			return &PermanentError{Err: mErr}
		}
		req, err = http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(payload))
		if err == nil {
			req.Header.Set("Content-Type", "application/json")
		}
	}
	if err != nil {
		return &PermanentError{Err: err}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransientError{Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusNotFound && role == nil:
		// Binding already gone; removal converged.
		return nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return &TransientError{Err: statusError(resp)}
	default:
		return &PermanentError{Err: statusError(resp)}
	}
}

func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return fmt.Errorf("cluster API returned %s", resp.Status)
	}
	return fmt.Errorf("cluster API returned %s: %s", resp.Status, msg)
}

package inventory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"backendrouter/pkg/backend"
)

const defaultStatusTimeout = 10 * time.Second

// Remote is a backend whose status is fetched over HTTP on every query.
// The endpoint must answer GET with a JSON object.
type Remote struct {
	name   string
	config backend.Attributes
	url    string
	client *http.Client
}

// NewRemote builds a Remote backend. A zero timeout means 10s.
func NewRemote(name string, configuration backend.Attributes, statusURL string, timeout time.Duration) *Remote {
	if configuration == nil {
		configuration = backend.Attributes{}
	}
	if timeout <= 0 {
		timeout = defaultStatusTimeout
	}
	return &Remote{
		name:   name,
		config: configuration,
		url:    statusURL,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (r *Remote) Name() string { return r.name }

func (r *Remote) Configuration() backend.Attributes { return r.config }

func (r *Remote) Status(ctx context.Context) (backend.Attributes, error) {
	if r.url == "" {
		return nil, fmt.Errorf("backend %s: status URL is empty", r.name)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend %s: status query: %w", r.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("backend %s: unexpected status code: %d", r.name, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var status backend.Attributes
	if err := json.Unmarshal(body, &status); err != nil {
		return nil, fmt.Errorf("backend %s: decode status: %w", r.name, err)
	}
	if status == nil {
		status = backend.Attributes{}
	}
	return status, nil
}

package scenario

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/HatiCode/retrofit/pkg/city"
)

// maxDocumentBytes bounds the size of a fetched scenario document.
const maxDocumentBytes = 4 << 20

// HTTPSource fetches a JSON scenario from a REST endpoint.
//
// Example pulling the scenario nested under "data.scenario":
//
//	src := &HTTPSource{
//	    URL:      "https://planning.example.com/api/cities/riga",
//	    Headers:  map[string]string{"Authorization": "Bearer token"},
//	    RootPath: "data.scenario",
//	}
type HTTPSource struct {
	// URL is the endpoint to call (required).
	URL string

	// Method defaults to GET.
	Method string

	// Headers are added to the request.
	Headers map[string]string

	// RootPath is an optional gjson path to the scenario object inside the
	// response body.
	RootPath string

	// HTTPClient is optional; if nil a client with a 10s timeout is used.
	HTTPClient *http.Client
}

func (h *HTTPSource) Name() string { return "http" }

// Load implements Source.
func (h *HTTPSource) Load(ctx context.Context) (city.Scenario, error) {
	if h.URL == "" {
		return city.Scenario{}, errors.New("http source: URL is required")
	}

	method := h.Method
	if method == "" {
		method = http.MethodGet
	}

	cli := h.HTTPClient
	if cli == nil {
		cli = &http.Client{Timeout: 10 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, method, h.URL, nil)
	if err != nil {
		return city.Scenario{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for key, value := range h.Headers {
		req.Header.Set(key, value)
	}

	resp, err := cli.Do(req)
	if err != nil {
		return city.Scenario{}, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return city.Scenario{}, fmt.Errorf("http status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
	if err != nil {
		return city.Scenario{}, fmt.Errorf("read response: %w", err)
	}

	s, err := ParseJSONAt(body, h.RootPath)
	if err != nil {
		return city.Scenario{}, fmt.Errorf("parse response: %w", err)
	}
	return s, nil
}

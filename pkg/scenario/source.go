// Package scenario loads simulation scenarios from external sources and
// normalizes them into city.Scenario values.
//
// Available sources:
//   - FileSource    reads a YAML or JSON document from disk
//   - HTTPSource    fetches a JSON document from any REST endpoint
//   - DefaultSource returns the built-in reference city
//
// Fields missing from a document keep the value of the built-in reference
// scenario, so a source only needs to describe what differs from it.
package scenario

import (
	"context"
	"fmt"
	"strings"

	"github.com/HatiCode/retrofit/pkg/city"
)

// Source is implemented by everything that can produce a scenario.
//
// Load is synchronous and should respect context cancellation and deadlines.
// The returned scenario is not validated; callers run Validate before use.
type Source interface {
	Load(ctx context.Context) (city.Scenario, error)

	// Name returns a short identifier such as "file", "http" or "default".
	Name() string
}

// DefaultSource returns city.DefaultScenario.
type DefaultSource struct{}

func (DefaultSource) Name() string { return "default" }

// Load implements Source.
func (DefaultSource) Load(ctx context.Context) (city.Scenario, error) {
	if err := ctx.Err(); err != nil {
		return city.Scenario{}, err
	}
	return city.DefaultScenario(), nil
}

// New creates a source based on kind and a generic configuration map.
//
// Supported kinds:
//   - "default": the built-in scenario
//   - "file":    requires "path"
//   - "http":    requires "url"; optional "method", "rootPath" (gjson path),
//     "headers" (comma separated key=value pairs)
func New(kind string, config map[string]string) (Source, error) {
	switch kind {
	case "", "default":
		return DefaultSource{}, nil
	case "file":
		path := config["path"]
		if path == "" {
			return nil, fmt.Errorf("file source requires 'path' config")
		}
		return &FileSource{Path: path}, nil
	case "http":
		return newHTTP(config)
	default:
		return nil, fmt.Errorf("unknown scenario source: %s (must be default, file, or http)", kind)
	}
}

func newHTTP(config map[string]string) (Source, error) {
	url := config["url"]
	if url == "" {
		return nil, fmt.Errorf("http source requires 'url' config")
	}

	method := config["method"]
	if method == "" {
		method = "GET"
	}

	headers, err := parseHeaders(config["headers"])
	if err != nil {
		return nil, err
	}

	return &HTTPSource{
		URL:      url,
		Method:   method,
		Headers:  headers,
		RootPath: config["rootPath"],
	}, nil
}

func parseHeaders(raw string) (map[string]string, error) {
	if raw == "" {
		return nil, nil
	}
	headers := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid header %q: expected key=value", pair)
		}
		headers[k] = v
	}
	return headers, nil
}

// FromLocation builds a source from a single string: "" or "default" for the
// built-in scenario, an http(s) URL, or a file path.
func FromLocation(location string) (Source, error) {
	switch {
	case location == "" || location == "default":
		return New("default", nil)
	case strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://"):
		return New("http", map[string]string{"url": location})
	default:
		return New("file", map[string]string{"path": location})
	}
}

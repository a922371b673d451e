package scenario

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/HatiCode/retrofit/pkg/city"
)

// FileSource reads a scenario document from disk. Files ending in .json are
// parsed as JSON, everything else as YAML.
type FileSource struct {
	Path string
}

func (f *FileSource) Name() string { return "file" }

// Load implements Source.
func (f *FileSource) Load(ctx context.Context) (city.Scenario, error) {
	if err := ctx.Err(); err != nil {
		return city.Scenario{}, err
	}
	if f.Path == "" {
		return city.Scenario{}, fmt.Errorf("file source: path is required")
	}

	data, err := os.ReadFile(f.Path)
	if err != nil {
		return city.Scenario{}, fmt.Errorf("read scenario file: %w", err)
	}

	if strings.EqualFold(filepath.Ext(f.Path), ".json") {
		s, err := ParseJSON(data)
		if err != nil {
			return city.Scenario{}, fmt.Errorf("parse %s: %w", f.Path, err)
		}
		return s, nil
	}

	s, err := ParseYAML(data)
	if err != nil {
		return city.Scenario{}, fmt.Errorf("parse %s: %w", f.Path, err)
	}
	return s, nil
}

// ParseYAML decodes a YAML scenario document over city.DefaultScenario.
// Unknown keys are rejected.
func ParseYAML(data []byte) (city.Scenario, error) {
	s := city.DefaultScenario()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return s, nil
		}
		return city.Scenario{}, err
	}

	fillMeasureCategories(&s)
	return s, nil
}

// MarshalYAML renders s as a YAML document that ParseYAML reads back.
func MarshalYAML(s city.Scenario) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

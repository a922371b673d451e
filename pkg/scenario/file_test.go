package scenario

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/HatiCode/retrofit/pkg/city"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestFileSource_YAML(t *testing.T) {
	path := writeFile(t, "city.yaml", `
name: tallinn
horizon: 5
budget:
  basePerYear: 120
  annualIncrement: 0
  tariff: 0
categories:
  - name: flats
    monthlyPerUnit: 250
    units: 1000
    growthRate: 0.02
measures:
  - name: insulation
    cost: 25
    effect: 0.15
    stepPercent: 10
`)

	s, err := (&FileSource{Path: path}).Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, "tallinn", s.Name)
	require.Equal(t, 5, s.Horizon)
	require.Equal(t, 120.0, s.Budget.BasePerYear)
	require.Len(t, s.Categories, 1)
	require.Equal(t, []string{"flats"}, s.Measures[0].Categories)
	require.Equal(t, city.DefaultEmissionFactor, s.EmissionFactor)
	require.NoError(t, s.Validate())
}

func TestFileSource_JSON(t *testing.T) {
	path := writeFile(t, "city.json", `{"name": "vilnius", "horizon": 2}`)

	s, err := (&FileSource{Path: path}).Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, "vilnius", s.Name)
	require.Equal(t, 2, s.Horizon)
	require.Len(t, s.Categories, 3)
}

func TestFileSource_Errors(t *testing.T) {
	_, err := (&FileSource{}).Load(context.Background())
	require.Error(t, err)

	_, err = (&FileSource{Path: filepath.Join(t.TempDir(), "missing.yaml")}).Load(context.Background())
	require.Error(t, err)

	path := writeFile(t, "bad.yaml", "unknownKey: 1\n")
	_, err = (&FileSource{Path: path}).Load(context.Background())
	require.Error(t, err, "unknown keys are rejected")
}

func TestParseYAML_NonFiniteRejected(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"NaN effect", "measures:\n  - name: led\n    cost: 10\n    effect: .nan\n    stepPercent: 10\n"},
		{"infinite monthly", "categories:\n  - name: flats\n    units: 10\n    monthlyPerUnit: .inf\n"},
		{"NaN emission factor", "emissionFactor: .nan\n"},
		{"NaN tariff", "budget:\n  tariff: .nan\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := ParseYAML([]byte(tt.doc))
			require.NoError(t, err)
			require.ErrorIs(t, s.Validate(), city.ErrInvalidConfiguration)
		})
	}
}

func TestParseYAML_ZeroHorizonRejected(t *testing.T) {
	s, err := ParseYAML([]byte("horizon: 0\n"))
	require.NoError(t, err)
	require.Equal(t, 0, s.Horizon)
	require.ErrorIs(t, s.Validate(), city.ErrInvalidConfiguration)
}

func TestParseYAML_FractionalCostRejected(t *testing.T) {
	_, err := ParseYAML([]byte("measures:\n  - name: led\n    cost: 10.7\n    effect: 0.1\n    stepPercent: 10\n"))
	require.Error(t, err)
}

func TestParseYAML_Empty(t *testing.T) {
	s, err := ParseYAML(nil)
	require.NoError(t, err)
	require.Equal(t, city.DefaultScenario(), s)
}

func TestMarshalYAML_ReadsBack(t *testing.T) {
	want := city.DefaultScenario()

	data, err := MarshalYAML(want)
	require.NoError(t, err)

	got, err := ParseYAML(data)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

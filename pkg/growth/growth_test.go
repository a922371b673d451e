package growth

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/HatiCode/retrofit/pkg/city"
)

func TestAdvance(t *testing.T) {
	cats := []city.Category{
		{Name: "a", Units: 40000, GrowthRate: 0.03},
		{Name: "b", Units: 5000, GrowthRate: 0},
		{Name: "c", Units: 333, GrowthRate: 0.01}, // 336.33 truncates to 336
	}
	next, ratios := Advance(cats)

	require.Equal(t, 41200, next[0].Units)
	require.Equal(t, 5000, next[1].Units)
	require.Equal(t, 336, next[2].Units)
	require.Equal(t, 40000, cats[0].Units, "input must not be modified")

	require.InDelta(t, 40000.0/41200, ratios[0], 1e-15)
	require.Equal(t, 1.0, ratios[1])
	require.InDelta(t, 333.0/336, ratios[2], 1e-15)
}

func TestAdvance_ZeroUnits(t *testing.T) {
	next, ratios := Advance([]city.Category{{Name: "a", Units: 0, GrowthRate: 0.5}})
	require.Equal(t, 0, next[0].Units)
	require.Equal(t, 1.0, ratios[0])
}

func TestDilute_ZeroGrowthUnchanged(t *testing.T) {
	cov := city.Coverage{{0.3, 0.7}, {0.1, 1}}
	want := cov.Clone()
	_, ratios := Advance([]city.Category{
		{Name: "a", Units: 100, GrowthRate: 0},
		{Name: "b", Units: 100, GrowthRate: 0},
	})
	Dilute(cov, ratios)
	require.Equal(t, want, cov)
}

func TestDilute_Identity(t *testing.T) {
	cov := city.Coverage{{0.5, 1}}
	_, ratios := Advance([]city.Category{{Name: "a", Units: 1000, GrowthRate: 0.25}})
	Dilute(cov, ratios)

	// new = old * old/(old*(1+g))
	require.InDelta(t, 0.5/1.25, cov[0][0], 1e-12)
	require.InDelta(t, 1/1.25, cov[0][1], 1e-12)
}

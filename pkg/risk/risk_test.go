package risk

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ref = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func TestImpactWeight(t *testing.T) {
	assert.Equal(t, 1.0, ImpactWeight("High"))
	assert.Equal(t, 0.6, ImpactWeight("Medium"))
	assert.Equal(t, 0.3, ImpactWeight("Low"))
	assert.Equal(t, 0.5, ImpactWeight("Catastrophic"))
	assert.Equal(t, 0.5, ImpactWeight(""))
}

func TestRawRisk_ClipsInputs(t *testing.T) {
	e := NewsEvent{
		TariffChange:  -3,
		StockShock:    0.4,
		WarFlag:       1,
		CalamityFlag:  -1,
		CurrencyShift: -0.5,
	}
	// 0.25*1 + 0.25*0.4 + 0.30*1 + 0.10*0 + 0.10*0.5
	assert.InDelta(t, 0.70, RawRisk(e), 1e-9)
}

func TestRecency(t *testing.T) {
	assert.InDelta(t, 1.0, Recency("2025-01-01", ref), 1e-9)
	assert.InDelta(t, math.Exp(-1), Recency("garbage", ref), 1e-9)
	assert.InDelta(t, math.Exp(-1), Recency("", ref), 1e-9)
	assert.Greater(t, Recency("2025-12-31", ref), 1.0)
}

func TestComputeIndustryRisk_MinMax(t *testing.T) {
	events := []NewsEvent{
		{Date: "2025-01-01", Industry: "Textiles", Impact: "High", WarFlag: 1},
		{Date: "2025-01-01", Industry: "Solar", Impact: "Low", TariffChange: 0.2},
		{Date: "2024-01-01", Industry: "Chemicals", Impact: "Medium", StockShock: 0.8, CurrencyShift: 0.4},
	}

	m := ComputeIndustryRisk(events, ref)
	require.Len(t, m, 3)

	// raw: textiles 0.30, solar 0.05, chemicals 0.24
	assert.InDelta(t, 1.0, m["Textiles"], 1e-9)
	assert.InDelta(t, 0.0, m["Solar"], 1e-9)
	assert.InDelta(t, (0.24-0.05)/(0.30-0.05), m["Chemicals"], 1e-9)

	for _, v := range m {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
}

func TestComputeIndustryRisk_WeightedAverage(t *testing.T) {
	events := []NewsEvent{
		{Date: "2025-01-01", Industry: "A", Impact: "High", WarFlag: 1},
		{Date: "2025-01-01", Industry: "A", Impact: "Low"},
		{Date: "2025-01-01", Industry: "B", Impact: "High"},
	}

	m := ComputeIndustryRisk(events, ref)
	// A = (1.0*0.30 + 0.3*0) / 1.3, B = 0, span = A
	assert.InDelta(t, 1.0, m["A"], 1e-9)
	assert.InDelta(t, 0.0, m["B"], 1e-9)
}

func TestComputeIndustryRisk_AllEqual(t *testing.T) {
	events := []NewsEvent{
		{Date: "2025-01-01", Industry: "A", Impact: "High", WarFlag: 1},
		{Date: "2024-01-01", Industry: "B", Impact: "Low", WarFlag: 1},
	}
	m := ComputeIndustryRisk(events, ref)
	assert.Equal(t, 0.0, m["A"])
	assert.Equal(t, 0.0, m["B"])
}

func TestComputeIndustryRisk_Empty(t *testing.T) {
	m := ComputeIndustryRisk(nil, ref)
	assert.Empty(t, m)
	assert.Equal(t, DefaultRisk, m.For("Anything"))
}

func TestMap_ForAndSorted(t *testing.T) {
	m := Map{"A": 0.2, "B": 0.9, "C": 0.2}
	assert.Equal(t, 0.9, m.For("B"))
	assert.Equal(t, DefaultRisk, m.For("Z"))

	list := m.Sorted()
	require.Len(t, list, 3)
	assert.Equal(t, "B", list[0].Industry)
	assert.Equal(t, "A", list[1].Industry)
	assert.Equal(t, "C", list[2].Industry)
}

package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore_PremiumLane(t *testing.T) {
	s := NewScorer(nil)
	b := s.Score("Gujarat", "Germany", "Chemicals")

	assert.InDelta(t, 0.95, b.Corridor, 1e-9)
	assert.InDelta(t, 1.0, b.StateSpec, 1e-9)
	assert.InDelta(t, 0.75, b.Regulatory, 1e-9)
	assert.InDelta(t, 0.78, b.Logistics, 1e-9)
	assert.InDelta(t, 0.908, b.Score, 1e-9)
	assert.Equal(t, TierPremium, b.Label)
}

func TestScore_UnknownKeysUseDefaults(t *testing.T) {
	s := NewScorer(nil)
	b := s.Score("Atlantis", "Narnia", "Spice")

	assert.InDelta(t, 0.40, b.Corridor, 1e-9)
	assert.InDelta(t, 0.50, b.StateSpec, 1e-9)
	assert.InDelta(t, 0.55, b.Regulatory, 1e-9)
	assert.InDelta(t, 0.55, b.Logistics, 1e-9)
	// 0.16 + 0.15 + 0.11 + 0.055
	assert.InDelta(t, 0.475, b.Score, 1e-9)
	assert.Equal(t, TierWeak, b.Label)
}

func TestScore_KnownStateUnknownIndustry(t *testing.T) {
	s := NewScorer(nil)
	b := s.Score("Gujarat", "UAE", "Spice")
	assert.InDelta(t, 0.50, b.StateSpec, 1e-9)
	assert.InDelta(t, 0.40, b.Corridor, 1e-9)
	assert.InDelta(t, 0.95, b.Regulatory, 1e-9)
}

func TestScore_CustomTables(t *testing.T) {
	tables := &Tables{
		Corridors: map[Lane]float64{{Industry: "Tea", Country: "UK"}: 2.0},
		Defaults:  Defaults{Corridor: 0.1, StateSpec: 0.1, Regulatory: 0.1, Logistics: 0.1},
	}
	b := NewScorer(tables).Score("Assam", "UK", "Tea")
	assert.Equal(t, 1.0, b.Corridor, "out of range table values are clamped")
	assert.InDelta(t, 0.4+0.03+0.02+0.01, b.Score, 1e-9)
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		score float64
		want  Tier
	}{
		{1.0, TierPremium},
		{0.80, TierPremium},
		{0.7999, TierStrong},
		{0.65, TierStrong},
		{0.50, TierModerate},
		{0.4999, TierWeak},
		{0, TierWeak},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, TierFor(tt.score), "score %v", tt.score)
	}
}

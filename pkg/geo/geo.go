package geo

import "math"

// Tier is the human-readable geo fit label.
type Tier string

const (
	TierPremium  Tier = "Premium"
	TierStrong   Tier = "Strong"
	TierModerate Tier = "Moderate"
	TierWeak     Tier = "Weak"

	weightCorridor   = 0.40
	weightStateSpec  = 0.30
	weightRegulatory = 0.20
	weightLogistics  = 0.10

	thresholdPremium  = 0.80
	thresholdStrong   = 0.65
	thresholdModerate = 0.50
)

// Breakdown is the composite geo score with the sub-scores it was built from.
type Breakdown struct {
	Score      float64 `json:"geo_score" yaml:"geoScore"`
	Corridor   float64 `json:"corridor_score" yaml:"corridorScore"`
	StateSpec  float64 `json:"state_spec_score" yaml:"stateSpecScore"`
	Regulatory float64 `json:"regulatory_score" yaml:"regulatoryScore"`
	Logistics  float64 `json:"logistics_score" yaml:"logisticsScore"`
	Label      Tier    `json:"geo_label" yaml:"geoLabel"`
}

// Scorer computes the location fit of an exporter state to buyer country lane.
type Scorer struct {
	tables *Tables
}

// NewScorer returns a Scorer over t, or over DefaultTables when t is nil.
func NewScorer(t *Tables) *Scorer {
	if t == nil {
		t = DefaultTables()
	}
	return &Scorer{tables: t}
}

// Score never fails: unknown states, countries, or industries fall back to
// the table defaults.
func (s *Scorer) Score(state, country, industry string) Breakdown {
	t := s.tables

	corridor, ok := t.Corridors[Lane{Industry: industry, Country: country}]
	if !ok {
		corridor = t.Defaults.Corridor
	}

	spec, ok := t.Specialisation[state][industry]
	if !ok {
		spec = t.Defaults.StateSpec
	}

	reg, ok := t.RegulatoryEase[country]
	if !ok {
		reg = t.Defaults.Regulatory
	}

	logistics, ok := t.Logistics[country]
	if !ok {
		logistics = t.Defaults.Logistics
	}

	b := Breakdown{
		Corridor:   clamp(corridor),
		StateSpec:  clamp(spec),
		Regulatory: clamp(reg),
		Logistics:  clamp(logistics),
	}
	b.Score = clamp(weightCorridor*b.Corridor +
		weightStateSpec*b.StateSpec +
		weightRegulatory*b.Regulatory +
		weightLogistics*b.Logistics)
	b.Label = TierFor(b.Score)

	return b
}

// TierFor maps a geo score to its tier using fixed thresholds.
func TierFor(score float64) Tier {
	switch {
	case score >= thresholdPremium:
		return TierPremium
	case score >= thresholdStrong:
		return TierStrong
	case score >= thresholdModerate:
		return TierModerate
	default:
		return TierWeak
	}
}

func clamp(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}

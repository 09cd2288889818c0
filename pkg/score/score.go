// Package score computes the per-pair dimension scores of an exporter and an
// importer. Every dimension is bounded to [0,1] regardless of input quality.
package score

import (
	"math"

	"github.com/mchmarny/tradepulse/pkg/geo"
	"github.com/mchmarny/tradepulse/pkg/profile"
	"github.com/mchmarny/tradepulse/pkg/risk"
)

// Empirical 5th/95th percentile anchors of the live-signal columns.
const (
	LinkedInP5, LinkedInP95           = 500.0, 24000.0
	ExpViewsP5, ExpViewsP95           = 100.0, 14000.0
	ImpVisitsP5, ImpVisitsP95         = 200.0, 19000.0
	ShipmentValueP5, ShipmentValueP95 = 10000.0, 850000.0
	QuantityP5, QuantityP95           = 10.0, 4500.0

	demandSweetSpot = 3.0
)

// Components is the full per-pair result: the fused dimensions, pair recency,
// and the geo breakdown the geo dimension came from.
type Components struct {
	DemandFit             float64       `json:"demand_fit" yaml:"demandFit"`
	GeoFit                float64       `json:"geo_fit" yaml:"geoFit"`
	BehavioralFit         float64       `json:"behavioral_fit" yaml:"behavioralFit"`
	Reliability           float64       `json:"reliability" yaml:"reliability"`
	ScaleFit              float64       `json:"scale_fit" yaml:"scaleFit"`
	OutreachReceptiveness float64       `json:"outreach_receptiveness" yaml:"outreachReceptiveness"`
	Momentum              float64       `json:"momentum" yaml:"momentum"`
	TradeSignal           float64       `json:"trade_signal" yaml:"tradeSignal"`
	SafetyScore           float64       `json:"safety_score" yaml:"safetyScore"`
	Recency               float64       `json:"recency" yaml:"recency"`
	Geo                   geo.Breakdown `json:"geo" yaml:"geo"`
}

// Vector returns the fused dimensions in Dimension order.
func (c Components) Vector() Vector {
	return Vector{
		DemandFit:             c.DemandFit,
		GeoFit:                c.GeoFit,
		BehavioralFit:         c.BehavioralFit,
		Reliability:           c.Reliability,
		ScaleFit:              c.ScaleFit,
		OutreachReceptiveness: c.OutreachReceptiveness,
		Momentum:              c.Momentum,
		TradeSignal:           c.TradeSignal,
		SafetyScore:           c.SafetyScore,
	}
}

// Estimate is the single-pair score: the CC weighted sum of the raw
// (not population normalized) components. It is not comparable to the
// fused batch score.
type Estimate struct {
	Components Components `json:"components" yaml:"components"`
	Raw        float64    `json:"raw_score" yaml:"rawScore"`
	Final      float64    `json:"final_score" yaml:"finalScore"`
}

// Scorer computes pair components. Safe for concurrent use.
type Scorer struct {
	geo *geo.Scorer
}

// NewScorer returns a Scorer using g, or the default geo tables if g is nil.
func NewScorer(g *geo.Scorer) *Scorer {
	if g == nil {
		g = geo.NewScorer(nil)
	}
	return &Scorer{geo: g}
}

// Compute scores one exporter/importer pair. Missing industries in risks
// count as DefaultRisk.
func (s *Scorer) Compute(exp *profile.Exporter, imp *profile.Importer, risks risk.Map) Components {
	g := s.geo.Score(exp.State, imp.Country, exp.Industry)

	c := Components{
		DemandFit:             DemandFitScore(exp.CapacityTons, imp.AvgOrderTons),
		GeoFit:                g.Score,
		BehavioralFit:         behavioralFit(exp, imp),
		Reliability:           reliability(exp, imp),
		ScaleFit:              scaleFit(exp, imp),
		OutreachReceptiveness: outreach(imp),
		Momentum:              momentum(exp, imp),
		TradeSignal:           tradeSignal(exp),
		SafetyScore:           safety(exp, imp, risks.For(exp.Industry)),
		Recency:               math.Sqrt(Clamp(exp.RecencyWeight) * Clamp(imp.RecencyWeight)),
		Geo: geo.Breakdown{
			Score:      Round4(g.Score),
			Corridor:   Round4(g.Corridor),
			StateSpec:  Round4(g.StateSpec),
			Regulatory: Round4(g.Regulatory),
			Logistics:  Round4(g.Logistics),
			Label:      g.Label,
		},
	}

	for _, p := range []*float64{
		&c.DemandFit, &c.GeoFit, &c.BehavioralFit, &c.Reliability, &c.ScaleFit,
		&c.OutreachReceptiveness, &c.Momentum, &c.TradeSignal, &c.SafetyScore, &c.Recency,
	} {
		*p = Round4(Clamp(*p))
	}

	return c
}

// EstimatePair scores a lone pair without a candidate population.
func (s *Scorer) EstimatePair(exp *profile.Exporter, imp *profile.Importer, risks risk.Map) Estimate {
	c := s.Compute(exp, imp, risks)
	raw := c.Vector().Dot(CCWeights)
	return Estimate{
		Components: c,
		Raw:        Round4(raw),
		Final:      Round4(Clamp(raw)),
	}
}

// DemandFitScore has no penalty for 1x-3x capacity over the order size, log
// decay for oversupply past that, and a linear penalty for undersupply.
func DemandFitScore(capacity, order float64) float64 {
	capacity = floorOne(capacity)
	order = floorOne(order)

	ratio := capacity / order
	if ratio >= 1 {
		return Clamp(1 - 0.1*math.Max(0, math.Log(ratio)-math.Log(demandSweetSpot)))
	}
	return Clamp(0.8 * ratio)
}

func scaleFit(exp *profile.Exporter, imp *profile.Importer) float64 {
	return 0.6*LogRatioSimilarity(exp.RevenueUSD, imp.RevenueUSD) +
		0.4*LogRatioSimilarity(exp.TeamSize, imp.TeamSize)
}

func behavioralFit(exp *profile.Exporter, imp *profile.Importer) float64 {
	return 0.6*avg(Clamp(exp.IntentScore), Clamp(imp.IntentScore)) +
		0.4*avg(Clamp(exp.ResponseScore), Clamp(imp.ResponseScore))
}

func reliability(exp *profile.Exporter, imp *profile.Importer) float64 {
	return 0.6*avg(Clamp(exp.PaymentTerms), Clamp(imp.PaymentHistory)) +
		0.4*Jaccard(exp.Certifications, imp.Certifications)
}

func momentum(exp *profile.Exporter, imp *profile.Importer) float64 {
	e := 0.35*Clamp(exp.HiringSignal) +
		0.35*NormLinear(exp.LinkedInActivity, LinkedInP5, LinkedInP95) +
		0.30*NormLinear(exp.ProfileViews, ExpViewsP5, ExpViewsP95)
	i := 0.30*Clamp(imp.HiringGrowth) +
		0.30*Clamp(imp.FundingEvent) +
		0.40*NormLinear(imp.ProfileVisits, ImpVisitsP5, ImpVisitsP95)
	return avg(e, i)
}

func outreach(imp *profile.Importer) float64 {
	return 0.5*Clamp(imp.ResponseProbability) +
		0.3*Clamp(imp.EngagementSpike) +
		0.2*Clamp(imp.DecisionMakerChange)
}

func tradeSignal(exp *profile.Exporter) float64 {
	return 0.5*NormLog(exp.ShipmentValueUSD, ShipmentValueP5, ShipmentValueP95) +
		0.5*NormLog(exp.QuantityTons, QuantityP5, QuantityP95)
}

// exporter tariff impact is signed [-1,1] and shifted onto [0,1]
func safety(exp *profile.Exporter, imp *profile.Importer, industryRisk float64) float64 {
	riskExp := 0.40*Clamp(exp.WarRisk) +
		0.30*Clamp((exp.TariffImpact+1)/2) +
		0.30*Clamp(exp.CalamityRisk)
	riskImp := 0.40*Clamp(imp.WarEvent) +
		0.30*Clamp(imp.TariffNews) +
		0.30*Clamp(imp.Calamity)
	return 1 - Clamp(0.40*Clamp(industryRisk)+0.35*riskExp+0.25*riskImp)
}

func floorOne(v float64) float64 {
	if math.IsNaN(v) || v < 1 {
		return 1
	}
	return v
}

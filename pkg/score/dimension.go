package score

import (
	"encoding/json"
	"fmt"
	"math"
)

// Dimension is one of the fused signal dimensions.
type Dimension int

const (
	DemandFit Dimension = iota
	GeoFit
	BehavioralFit
	Reliability
	ScaleFit
	OutreachReceptiveness
	Momentum
	TradeSignal
	SafetyScore

	// NumDimensions is the count of fused dimensions (recency is not one).
	NumDimensions = 9
)

var dimensionNames = [NumDimensions]string{
	"demand_fit",
	"geo_fit",
	"behavioral_fit",
	"reliability",
	"scale_fit",
	"outreach_receptiveness",
	"momentum",
	"trade_signal",
	"safety_score",
}

var dimensionLabels = [NumDimensions]string{
	"Supply-Demand Fit",
	"Geographic Fit",
	"Behavioural Intent",
	"Reliability & Trust",
	"Scale Compatibility",
	"Outreach Receptiveness",
	"Growth Momentum",
	"Trade History Signal",
	"Macro Safety",
}

var dimensionQuestions = [NumDimensions]string{
	"Can the exporter fulfil the buyer's order volume?",
	"Is the exporter state to buyer country lane a proven trade corridor?",
	"Are both parties actively in buy or sell mode right now?",
	"Payment history and certification overlap",
	"Revenue and team size fit, as a log ratio",
	"Is this the right moment to reach out?",
	"Hiring, LinkedIn, SalesNav and funding activity",
	"Proven shipment track record, value and quantity",
	"War, tariff and calamity exposure on both sides plus industry news",
}

// Dimensions lists all dimensions in fusion order.
func Dimensions() []Dimension {
	d := make([]Dimension, NumDimensions)
	for i := range d {
		d[i] = Dimension(i)
	}
	return d
}

func (d Dimension) String() string {
	if d < 0 || int(d) >= NumDimensions {
		return fmt.Sprintf("dimension(%d)", int(d))
	}
	return dimensionNames[d]
}

// Label is the display name of d.
func (d Dimension) Label() string {
	if d < 0 || int(d) >= NumDimensions {
		return d.String()
	}
	return dimensionLabels[d]
}

// Question is the business question d answers.
func (d Dimension) Question() string {
	if d < 0 || int(d) >= NumDimensions {
		return ""
	}
	return dimensionQuestions[d]
}

// Vector holds one value per dimension, indexed by Dimension.
type Vector [NumDimensions]float64

// CCWeights are the fixed convex-combination weights. They sum to 1.
var CCWeights = Vector{
	DemandFit:             0.18,
	GeoFit:                0.15,
	BehavioralFit:         0.17,
	Reliability:           0.15,
	ScaleFit:              0.12,
	OutreachReceptiveness: 0.10,
	Momentum:              0.08,
	TradeSignal:           0.03,
	SafetyScore:           0.02,
}

// Sum adds up the vector.
func (v Vector) Sum() float64 {
	s := 0.0
	for _, x := range v {
		s += x
	}
	return s
}

// Dot is the inner product of v and w.
func (v Vector) Dot(w Vector) float64 {
	s := 0.0
	for i := range v {
		s += v[i] * w[i]
	}
	return s
}

// Normalized scales v to sum to 1. A zero vector is returned unchanged.
func (v Vector) Normalized() Vector {
	s := v.Sum()
	if s == 0 || math.IsNaN(s) {
		return v
	}
	for i := range v {
		v[i] /= s
	}
	return v
}

// Map returns the vector keyed by dimension name.
func (v Vector) Map() map[string]float64 {
	m := make(map[string]float64, NumDimensions)
	for i, x := range v {
		m[dimensionNames[i]] = x
	}
	return m
}

// MarshalJSON encodes the vector as a name keyed object.
func (v Vector) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Map())
}

// MarshalYAML encodes the vector as a name keyed mapping.
func (v Vector) MarshalYAML() (any, error) {
	return v.Map(), nil
}

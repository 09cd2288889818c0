// Package risk reduces dated news events into one normalized risk score per
// industry. Recent, high-impact events weigh the most.
package risk

import (
	"math"
	"sort"
	"time"

	"github.com/mchmarny/tradepulse/pkg/profile"
)

const (
	// DefaultRisk is used for industries with no (or zero-weight) news.
	DefaultRisk = 0.5

	// UndatedDaysOld is the assumed age of events with missing or bad dates.
	UndatedDaysOld = 730

	unmappedImpactWeight = 0.5

	weightTariff   = 0.25
	weightStock    = 0.25
	weightWar      = 0.30
	weightCalamity = 0.10
	weightCurrency = 0.10
)

var impactWeights = map[string]float64{
	"High":   1.0,
	"Medium": 0.6,
	"Low":    0.3,
}

// NewsEvent is one dated market or geopolitical signal tagged to an industry.
type NewsEvent struct {
	Date          string  `json:"date" yaml:"date"`
	Industry      string  `json:"industry" yaml:"industry"`
	Impact        string  `json:"impact" yaml:"impact"`
	TariffChange  float64 `json:"tariff_change" yaml:"tariffChange"`
	StockShock    float64 `json:"stock_shock" yaml:"stockShock"`
	WarFlag       float64 `json:"war_flag" yaml:"warFlag"`
	CalamityFlag  float64 `json:"calamity_flag" yaml:"calamityFlag"`
	CurrencyShift float64 `json:"currency_shift" yaml:"currencyShift"`
}

// Map is industry -> risk in [0,1]. Read-only once built.
type Map map[string]float64

// For returns the risk of industry, DefaultRisk when it is absent.
func (m Map) For(industry string) float64 {
	if v, ok := m[industry]; ok {
		return v
	}
	return DefaultRisk
}

// Entry is a single industry risk value.
type Entry struct {
	Industry string  `json:"industry" yaml:"industry"`
	Risk     float64 `json:"risk" yaml:"risk"`
}

// Sorted lists industries riskiest first, ties by name.
func (m Map) Sorted() []Entry {
	list := make([]Entry, 0, len(m))
	for k, v := range m {
		list = append(list, Entry{Industry: k, Risk: v})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Risk != list[j].Risk {
			return list[i].Risk > list[j].Risk
		}
		return list[i].Industry < list[j].Industry
	})
	return list
}

// ImpactWeight maps High/Medium/Low to 1.0/0.6/0.3, anything else to 0.5.
func ImpactWeight(level string) float64 {
	if w, ok := impactWeights[level]; ok {
		return w
	}
	return unmappedImpactWeight
}

// Recency returns the decay weight of an event dated date relative to ref.
// Events are not clamped at ref, so post-dated news weighs above 1.
func Recency(date string, ref time.Time) float64 {
	days := float64(UndatedDaysOld)
	if t, ok := profile.ParseDate(date); ok {
		days = profile.DaysBetween(t, ref)
	}
	return math.Exp(-days / profile.RecencyDecayDays)
}

// RawRisk is the severity of a single event before weighting, in [0,1].
func RawRisk(e NewsEvent) float64 {
	return weightTariff*clip(math.Abs(e.TariffChange)) +
		weightStock*clip(math.Abs(e.StockShock)) +
		weightWar*clip(e.WarFlag) +
		weightCalamity*clip(e.CalamityFlag) +
		weightCurrency*clip(math.Abs(e.CurrencyShift))
}

// ComputeIndustryRisk averages the raw risk of each industry's events using
// recency x impact as weights, then min-max rescales across industries.
// When all industries are equal they all end up at 0.
func ComputeIndustryRisk(events []NewsEvent, ref time.Time) Map {
	type acc struct{ sum, weight float64 }

	groups := make(map[string]*acc)
	for _, e := range events {
		g, ok := groups[e.Industry]
		if !ok {
			g = &acc{}
			groups[e.Industry] = g
		}
		w := Recency(e.Date, ref) * ImpactWeight(e.Impact)
		g.sum += w * RawRisk(e)
		g.weight += w
	}

	m := make(Map, len(groups))
	if len(groups) == 0 {
		return m
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for ind, g := range groups {
		v := DefaultRisk
		if g.weight > 0 {
			v = g.sum / g.weight
		}
		m[ind] = v
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	span := 1.0
	if hi > lo {
		span = hi - lo
	}
	for k, v := range m {
		m[k] = (v - lo) / span
	}

	return m
}

func clip(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}

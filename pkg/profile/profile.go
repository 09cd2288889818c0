package profile

import (
	"math"
	"strings"
	"time"
)

const (
	// RecencyDecayDays is the e-folding period (in days) of the record age decay.
	RecencyDecayDays = 730

	// RecencyUnknown is the weight used when the record date can't be parsed.
	RecencyUnknown = 0.5

	// DateFormat is the canonical record date layout.
	DateFormat = "2006-01-02"
)

var dateLayouts = []string{
	DateFormat,
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
	"02-01-2006",
}

// Exporter is a single exporter record (supply side). It is read-only after
// the loader creates it.
type Exporter struct {
	ID                string   `json:"id" yaml:"id"`
	Date              string   `json:"date" yaml:"date"`
	Industry          string   `json:"industry" yaml:"industry"`
	State             string   `json:"state" yaml:"state"`
	MSME              bool     `json:"msme" yaml:"msme"`
	CapacityTons      float64  `json:"capacity_tons" yaml:"capacityTons"`
	RevenueUSD        float64  `json:"revenue_usd" yaml:"revenueUSD"`
	TeamSize          float64  `json:"team_size" yaml:"teamSize"`
	Certifications    []string `json:"certifications,omitempty" yaml:"certifications,omitempty"`
	PaymentTerms      float64  `json:"payment_terms" yaml:"paymentTerms"`
	ResponseScore     float64  `json:"response_score" yaml:"responseScore"`
	HiringSignal      float64  `json:"hiring_signal" yaml:"hiringSignal"`
	LinkedInActivity  float64  `json:"linkedin_activity" yaml:"linkedinActivity"`
	ProfileViews      float64  `json:"profile_views" yaml:"profileViews"`
	JobChange         float64  `json:"job_change" yaml:"jobChange"`
	IntentScore       float64  `json:"intent_score" yaml:"intentScore"`
	ShipmentValueUSD  float64  `json:"shipment_value_usd" yaml:"shipmentValueUSD"`
	QuantityTons      float64  `json:"quantity_tons" yaml:"quantityTons"`
	TariffImpact      float64  `json:"tariff_impact" yaml:"tariffImpact"`
	StockMarketImpact float64  `json:"stock_market_impact" yaml:"stockMarketImpact"`
	WarRisk           float64  `json:"war_risk" yaml:"warRisk"`
	CalamityRisk      float64  `json:"calamity_risk" yaml:"calamityRisk"`
	CurrencyShift     float64  `json:"currency_shift" yaml:"currencyShift"`
	RecencyWeight     float64  `json:"recency_weight" yaml:"recencyWeight"`
}

// Importer is a single buyer record (demand side).
type Importer struct {
	ID                  string   `json:"id" yaml:"id"`
	Date                string   `json:"date" yaml:"date"`
	Industry            string   `json:"industry" yaml:"industry"`
	Country             string   `json:"country" yaml:"country"`
	AvgOrderTons        float64  `json:"avg_order_tons" yaml:"avgOrderTons"`
	RevenueUSD          float64  `json:"revenue_usd" yaml:"revenueUSD"`
	TeamSize            float64  `json:"team_size" yaml:"teamSize"`
	Certifications      []string `json:"certifications,omitempty" yaml:"certifications,omitempty"`
	PaymentHistory      float64  `json:"payment_history" yaml:"paymentHistory"`
	ResponseScore       float64  `json:"response_score" yaml:"responseScore"`
	HiringGrowth        float64  `json:"hiring_growth" yaml:"hiringGrowth"`
	FundingEvent        float64  `json:"funding_event" yaml:"fundingEvent"`
	EngagementSpike     float64  `json:"engagement_spike" yaml:"engagementSpike"`
	ProfileVisits       float64  `json:"profile_visits" yaml:"profileVisits"`
	DecisionMakerChange float64  `json:"decision_maker_change" yaml:"decisionMakerChange"`
	IntentScore         float64  `json:"intent_score" yaml:"intentScore"`
	PreferredChannel    string   `json:"preferred_channel" yaml:"preferredChannel"`
	ResponseProbability float64  `json:"response_probability" yaml:"responseProbability"`
	TariffNews          float64  `json:"tariff_news" yaml:"tariffNews"`
	StockMarketShock    float64  `json:"stock_market_shock" yaml:"stockMarketShock"`
	WarEvent            float64  `json:"war_event" yaml:"warEvent"`
	Calamity            float64  `json:"calamity" yaml:"calamity"`
	CurrencyFluctuation float64  `json:"currency_fluctuation" yaml:"currencyFluctuation"`
	RecencyWeight       float64  `json:"recency_weight" yaml:"recencyWeight"`
}

// ParseDate parses the date formats found in the source datasets.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DaysBetween returns the whole days from t to ref (floored, may be negative).
func DaysBetween(t, ref time.Time) float64 {
	return math.Floor(ref.Sub(t).Hours() / 24)
}

// RecencyWeight decays exponentially with record age: 1.0 for records dated
// on (or after) ref, ~0.37 at two years. Unparseable dates get RecencyUnknown.
func RecencyWeight(date string, ref time.Time) float64 {
	t, ok := ParseDate(date)
	if !ok {
		return RecencyUnknown
	}
	days := math.Max(DaysBetween(t, ref), 0)
	return math.Exp(-days / RecencyDecayDays)
}

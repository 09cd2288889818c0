package data

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/mchmarny/tradepulse/pkg/net"
	"github.com/mchmarny/tradepulse/pkg/profile"
	"github.com/mchmarny/tradepulse/pkg/risk"
)

const (
	defaultLocation            = "Unknown"
	defaultChannel             = "Email"
	defaultResponseProbability = 0.5
)

var (
	exporterColumns = []string{
		"Exporter_ID", "Date", "Industry", "MSME_Udyam", "Manufacturing_Capacity_Tons",
		"Revenue_Size_USD", "Team_Size", "Certification", "Good_Payment_Terms",
		"Prompt_Response_Score", "Hiring_Signal", "LinkedIn_Activity", "SalesNav_ProfileViews",
		"SalesNav_JobChange", "Intent_Score", "Shipment_Value_USD", "Quantity_Tons",
		"Tariff_Impact", "StockMarket_Impact", "War_Risk", "Natural_Calamity_Risk", "Currency_Shift",
	}

	importerColumns = []string{
		"Buyer_ID", "Date", "Industry", "Avg_Order_Tons", "Revenue_Size_USD", "Team_Size",
		"Certification", "Good_Payment_History", "Prompt_Response", "Hiring_Growth",
		"Funding_Event", "Engagement_Spike", "SalesNav_ProfileVisits", "DecisionMaker_Change",
		"Intent_Score", "Preferred_Channel", "Response_Probability", "Tariff_News",
		"StockMarket_Shock", "War_Event", "Natural_Calamity", "Currency_Fluctuation",
	}

	newsColumns = []string{
		"Date", "Affected_Industry", "Impact_Level", "Tariff_Change", "StockMarket_Shock",
		"War_Flag", "Natural_Calamity_Flag", "Currency_Shift",
	}
)

// Sources are the three dataset locations, local paths or http(s) URLs.
type Sources struct {
	Exporters string `json:"exporters" yaml:"exporters"`
	Importers string `json:"importers" yaml:"importers"`
	News      string `json:"news" yaml:"news"`
}

// Validate checks that every source is set.
func (s Sources) Validate() error {
	var errs []error
	if s.Exporters == "" {
		errs = append(errs, errors.New("exporters source required"))
	}
	if s.Importers == "" {
		errs = append(errs, errors.New("importers source required"))
	}
	if s.News == "" {
		errs = append(errs, errors.New("news source required"))
	}
	return errors.Join(errs...)
}

// Load reads all three sources, imputes missing values, and reduces the news
// into industry risk. ref is the date recency decay is measured from.
func Load(ctx context.Context, src Sources, ref time.Time) (*Artifacts, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}

	a := &Artifacts{ReferenceDate: ref, Sources: src}

	err := withSource(ctx, src.Exporters, func(name string, r io.Reader) (err error) {
		a.Exporters, err = LoadExporters(name, r, ref)
		return err
	})
	if err != nil {
		return nil, err
	}

	err = withSource(ctx, src.Importers, func(name string, r io.Reader) (err error) {
		a.Importers, err = LoadImporters(name, r, ref)
		return err
	})
	if err != nil {
		return nil, err
	}

	var events []risk.NewsEvent
	err = withSource(ctx, src.News, func(name string, r io.Reader) (err error) {
		events, err = LoadNews(name, r)
		return err
	})
	if err != nil {
		return nil, err
	}
	a.NewsEvents = len(events)
	a.Risks = risk.ComputeIndustryRisk(events, ref)

	slog.Info("datasets loaded",
		"exporters", len(a.Exporters),
		"importers", len(a.Importers),
		"news", a.NewsEvents,
		"industries", len(a.Risks),
	)

	return a, nil
}

// withSource opens src, downloading it first when it is a URL, and hands
// the content to fn.
func withSource(ctx context.Context, src string, fn func(name string, r io.Reader) error) error {
	path := src
	if net.IsRemote(src) {
		slog.Debug("downloading source", "url", src)
		p, err := net.DownloadTemp(ctx, src, "")
		if err != nil {
			return fmt.Errorf("error downloading %s: %w", src, err)
		}
		defer os.Remove(p)
		path = p
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("error opening %s: %w", src, err)
	}
	defer file.Close()

	return fn(src, file)
}

// LoadExporters parses the exporter dataset. Capacity and shipment value
// blanks take the column median, MSME_Udyam is 0 unless numeric, and a
// missing State column reads as Unknown.
func LoadExporters(name string, r io.Reader, ref time.Time) ([]*profile.Exporter, error) {
	t, err := readTable(name, r)
	if err != nil {
		return nil, err
	}
	if err := t.require(exporterColumns...); err != nil {
		return nil, err
	}

	capacityMedian := t.median("Manufacturing_Capacity_Tons")
	shipmentMedian := t.median("Shipment_Value_USD")

	list := make([]*profile.Exporter, 0, len(t.rows))
	for i := range t.rows {
		id := t.str(i, "Exporter_ID")
		if id == "" {
			return nil, t.cellErr(i, "Exporter_ID", errors.New("value required"))
		}

		e := &profile.Exporter{
			ID:             id,
			Date:           t.str(i, "Date"),
			Industry:       t.str(i, "Industry"),
			State:          t.strOr(i, "State", defaultLocation),
			MSME:           t.coerce(i, "MSME_Udyam") != 0,
			Certifications: splitCertifications(t.str(i, "Certification")),
		}

		p := &rowParser{t: t, row: i}
		e.CapacityTons = p.numOr("Manufacturing_Capacity_Tons", capacityMedian)
		e.ShipmentValueUSD = p.numOr("Shipment_Value_USD", shipmentMedian)
		e.RevenueUSD = p.num("Revenue_Size_USD")
		e.TeamSize = math.Trunc(p.num("Team_Size"))
		e.PaymentTerms = p.num("Good_Payment_Terms")
		e.ResponseScore = p.num("Prompt_Response_Score")
		e.HiringSignal = p.num("Hiring_Signal")
		e.LinkedInActivity = p.num("LinkedIn_Activity")
		e.ProfileViews = p.num("SalesNav_ProfileViews")
		e.JobChange = p.num("SalesNav_JobChange")
		e.IntentScore = p.num("Intent_Score")
		e.QuantityTons = p.num("Quantity_Tons")
		e.TariffImpact = p.num("Tariff_Impact")
		e.StockMarketImpact = p.num("StockMarket_Impact")
		e.WarRisk = p.num("War_Risk")
		e.CalamityRisk = p.num("Natural_Calamity_Risk")
		e.CurrencyShift = p.num("Currency_Shift")
		if p.err != nil {
			return nil, p.err
		}

		e.RecencyWeight = profile.RecencyWeight(e.Date, ref)
		list = append(list, e)
	}

	return list, nil
}

// LoadImporters parses the buyer dataset. Rows without a Buyer_ID are
// skipped. Order size blanks take the column median, response probability
// defaults to 0.5, and the preferred channel to Email.
func LoadImporters(name string, r io.Reader, ref time.Time) ([]*profile.Importer, error) {
	t, err := readTable(name, r)
	if err != nil {
		return nil, err
	}
	if err := t.require(importerColumns...); err != nil {
		return nil, err
	}

	orderMedian := t.median("Avg_Order_Tons")

	list := make([]*profile.Importer, 0, len(t.rows))
	skipped := 0
	for i := range t.rows {
		id := t.str(i, "Buyer_ID")
		if id == "" || id == "nan" {
			skipped++
			continue
		}

		m := &profile.Importer{
			ID:               id,
			Date:             t.str(i, "Date"),
			Industry:         t.str(i, "Industry"),
			Country:          t.strOr(i, "Country", defaultLocation),
			Certifications:   splitCertifications(t.str(i, "Certification")),
			FundingEvent:     t.coerce(i, "Funding_Event"),
			PreferredChannel: t.str(i, "Preferred_Channel"),
		}
		if m.PreferredChannel == "" {
			m.PreferredChannel = defaultChannel
		}

		p := &rowParser{t: t, row: i}
		m.AvgOrderTons = p.numOr("Avg_Order_Tons", orderMedian)
		m.ResponseProbability = p.numOr("Response_Probability", defaultResponseProbability)
		m.RevenueUSD = p.num("Revenue_Size_USD")
		m.TeamSize = math.Trunc(p.num("Team_Size"))
		m.PaymentHistory = p.num("Good_Payment_History")
		m.ResponseScore = p.num("Prompt_Response")
		m.HiringGrowth = p.num("Hiring_Growth")
		m.EngagementSpike = p.num("Engagement_Spike")
		m.ProfileVisits = p.num("SalesNav_ProfileVisits")
		m.DecisionMakerChange = p.num("DecisionMaker_Change")
		m.IntentScore = p.num("Intent_Score")
		m.TariffNews = p.num("Tariff_News")
		m.StockMarketShock = p.num("StockMarket_Shock")
		m.WarEvent = p.num("War_Event")
		m.Calamity = p.num("Natural_Calamity")
		m.CurrencyFluctuation = p.num("Currency_Fluctuation")
		if p.err != nil {
			return nil, p.err
		}

		m.RecencyWeight = profile.RecencyWeight(m.Date, ref)
		list = append(list, m)
	}

	if skipped > 0 {
		slog.Warn("skipped buyer rows without ID", "source", name, "count", skipped)
	}

	return list, nil
}

// LoadNews parses the news dataset. Numeric blanks read as 0 and rows
// without an industry are dropped.
func LoadNews(name string, r io.Reader) ([]risk.NewsEvent, error) {
	t, err := readTable(name, r)
	if err != nil {
		return nil, err
	}
	if err := t.require(newsColumns...); err != nil {
		return nil, err
	}

	list := make([]risk.NewsEvent, 0, len(t.rows))
	for i := range t.rows {
		e := risk.NewsEvent{
			Date:     t.str(i, "Date"),
			Industry: t.str(i, "Affected_Industry"),
			Impact:   t.str(i, "Impact_Level"),
		}
		if e.Industry == "" {
			continue
		}

		p := &rowParser{t: t, row: i}
		e.TariffChange = p.numOr("Tariff_Change", 0)
		e.StockShock = p.numOr("StockMarket_Shock", 0)
		e.WarFlag = p.numOr("War_Flag", 0)
		e.CalamityFlag = p.numOr("Natural_Calamity_Flag", 0)
		e.CurrencyShift = p.numOr("Currency_Shift", 0)
		if p.err != nil {
			return nil, p.err
		}

		list = append(list, e)
	}

	return list, nil
}

// rowParser keeps the first cell error of a row so field assignments can
// be written in sequence.
type rowParser struct {
	t   *table
	row int
	err error
}

func (p *rowParser) num(col string) float64 {
	if p.err != nil {
		return 0
	}
	v, err := p.t.num(p.row, col)
	p.err = err
	return v
}

func (p *rowParser) numOr(col string, def float64) float64 {
	if p.err != nil {
		return 0
	}
	v, err := p.t.numOr(p.row, col, def)
	p.err = err
	return v
}

// Package match finds the best counterparties for an exporter or a buyer
// within the same industry.
package match

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/mchmarny/tradepulse/pkg/fusion"
	"github.com/mchmarny/tradepulse/pkg/profile"
	"github.com/mchmarny/tradepulse/pkg/risk"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultTopK is the number of matches returned when topK is not positive.
	DefaultTopK = 100

	// DefaultWorkers bounds batch parallelism when workers is not positive.
	DefaultWorkers = 4
)

// Matchmaker orients anchor and candidates into exporter/importer pairs and
// ranks them. Safe for concurrent use.
type Matchmaker struct {
	engine *fusion.Engine
}

// New returns a Matchmaker over e, or over a default engine when e is nil.
func New(e *fusion.Engine) *Matchmaker {
	if e == nil {
		e = fusion.NewEngine(nil)
	}
	return &Matchmaker{engine: e}
}

// TopBuyers ranks the importers in exp's industry. No candidates is not an
// error: the result is empty.
func (m *Matchmaker) TopBuyers(exp *profile.Exporter, importers []*profile.Importer, risks risk.Map, topK int) []fusion.Result {
	pairs := make([]fusion.Pair, 0)
	for _, imp := range importers {
		if imp.Industry == exp.Industry {
			pairs = append(pairs, fusion.Pair{ID: imp.ID, Exporter: exp, Importer: imp})
		}
	}
	if len(pairs) == 0 {
		slog.Warn("no buyers found for industry", "exporter", exp.ID, "industry", exp.Industry)
		return []fusion.Result{}
	}
	return top(m.engine.Rank(pairs, risks), topK)
}

// TopExporters ranks the exporters in imp's industry.
func (m *Matchmaker) TopExporters(imp *profile.Importer, exporters []*profile.Exporter, risks risk.Map, topK int) []fusion.Result {
	pairs := make([]fusion.Pair, 0)
	for _, exp := range exporters {
		if exp.Industry == imp.Industry {
			pairs = append(pairs, fusion.Pair{ID: exp.ID, Exporter: exp, Importer: imp})
		}
	}
	if len(pairs) == 0 {
		slog.Warn("no exporters found for industry", "buyer", imp.ID, "industry", imp.Industry)
		return []fusion.Result{}
	}
	return top(m.engine.Rank(pairs, risks), topK)
}

// Batch is the ranked buyer list of one exporter.
type Batch struct {
	ExporterID string          `json:"exporter_id" yaml:"exporterID"`
	Industry   string          `json:"industry" yaml:"industry"`
	Matches    []fusion.Result `json:"matches" yaml:"matches"`
}

// TopBuyersBatch runs TopBuyers for every exporter on up to workers
// goroutines. Each anchor is ranked independently and the result keeps the
// exporters' order.
func (m *Matchmaker) TopBuyersBatch(ctx context.Context, exporters []*profile.Exporter, importers []*profile.Importer, risks risk.Map, topK, workers int) ([]Batch, error) {
	if workers <= 0 {
		workers = DefaultWorkers
	}

	byIndustry := make(map[string][]*profile.Importer)
	for _, imp := range importers {
		byIndustry[imp.Industry] = append(byIndustry[imp.Industry], imp)
	}

	out := make([]Batch, len(exporters))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, exp := range exporters {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("batch cancelled at exporter %s: %w", exp.ID, err)
			}
			out[i] = Batch{
				ExporterID: exp.ID,
				Industry:   exp.Industry,
				Matches:    m.TopBuyers(exp, byIndustry[exp.Industry], risks, topK),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	slog.Debug("batch complete", "exporters", len(exporters), "workers", workers)
	return out, nil
}

// top sorts by descending score, keeping input order on ties, and trims to k.
func top(list []fusion.Result, k int) []fusion.Result {
	if k <= 0 {
		k = DefaultTopK
	}
	slices.SortStableFunc(list, func(a, b fusion.Result) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})
	if len(list) > k {
		list = list[:k]
	}
	return list
}

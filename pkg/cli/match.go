package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/mchmarny/tradepulse/pkg/data"
	"github.com/mchmarny/tradepulse/pkg/fusion"
	"github.com/mchmarny/tradepulse/pkg/geo"
	"github.com/mchmarny/tradepulse/pkg/match"
	"github.com/mchmarny/tradepulse/pkg/profile"
	"github.com/mchmarny/tradepulse/pkg/score"
	"github.com/urfave/cli/v3"
)

const (
	sideExporter = "exporter"
	sideImporter = "importer"
)

const (
	idFlag      = "id"
	topFlag     = "top"
	explainFlag = "explain"
	workersFlag = "workers"
)

func matchCommand() *cli.Command {
	return &cli.Command{
		Name:    "match",
		Aliases: []string{"m"},
		Usage:   "Rank the best buyers for an exporter, or the best exporters for a buyer",
		UsageText: `tradepulse match --id EXP_5094
   tradepulse --format table match --id BUY_69687 --top 10 --explain`,
		Action: cmdMatch,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     idFlag,
				Usage:    "Exporter or buyer ID (e.g. EXP_5094, BUY_69687)",
				Required: true,
			},
			newTopFlag(),
			&cli.BoolFlag{
				Name:  explainFlag,
				Usage: "Include the per-dimension breakdown and effective weights",
			},
		},
	}
}

func batchCommand() *cli.Command {
	return &cli.Command{
		Name:   "batch",
		Usage:  "Rank the best buyers for every exporter",
		Action: cmdBatch,
		Flags: []cli.Flag{
			newTopFlag(),
			&cli.IntFlag{
				Name:  workersFlag,
				Usage: "Exporters ranked in parallel (default: workers in config)",
			},
		},
	}
}

func newTopFlag() *cli.IntFlag {
	return &cli.IntFlag{
		Name:  topFlag,
		Usage: "Number of matches to return (default: top_k in config)",
	}
}

// MatchResult is the ranked list for one anchor.
type MatchResult struct {
	Anchor           string           `json:"anchor" yaml:"anchor"`
	Side             string           `json:"side" yaml:"side"`
	Industry         string           `json:"industry" yaml:"industry"`
	Location         string           `json:"location" yaml:"location"`
	MSME             bool             `json:"msme,omitempty" yaml:"msme,omitempty"`
	EffectiveWeights *score.Vector    `json:"effective_weights,omitempty" yaml:"effectiveWeights,omitempty"`
	Matches          []*MatchListItem `json:"matches" yaml:"matches"`
}

// MatchListItem is one ranked candidate.
type MatchListItem struct {
	Rank      int               `json:"rank" yaml:"rank"`
	ID        string            `json:"id" yaml:"id"`
	Location  string            `json:"location" yaml:"location"`
	GeoTier   geo.Tier          `json:"geo_tier" yaml:"geoTier"`
	Score     float64           `json:"score" yaml:"score"`
	Breakdown *fusion.Breakdown `json:"breakdown,omitempty" yaml:"breakdown,omitempty"`
}

// BatchResult is the ranked buyer list of one exporter.
type BatchResult struct {
	ExporterID string           `json:"exporter_id" yaml:"exporterId"`
	Industry   string           `json:"industry" yaml:"industry"`
	Matches    []*MatchListItem `json:"matches" yaml:"matches"`
}

func cmdMatch(_ context.Context, cmd *cli.Command) error {
	cfg := getConfig(cmd)
	id := cmd.String(idFlag)

	a, err := loadArtifacts(cfg)
	if err != nil {
		return err
	}

	topK := cmd.Int(topFlag)
	if topK <= 0 {
		topK = cfg.Config.TopK
	}
	explain := cmd.Bool(explainFlag)
	m := match.New(nil)

	exporters := indexByID(a.Exporters, func(e *profile.Exporter) string { return e.ID })
	importers := indexByID(a.Importers, func(b *profile.Importer) string { return b.ID })

	var res *MatchResult
	if exp, ok := exporters[id]; ok {
		res = &MatchResult{
			Anchor:   exp.ID,
			Side:     sideExporter,
			Industry: exp.Industry,
			Location: exp.State,
			MSME:     exp.MSME,
		}
		res.Matches = toListItems(m.TopBuyers(exp, a.Importers, a.Risks, topK), explain, func(id string) string {
			if b, ok := importers[id]; ok {
				return b.Country
			}
			return ""
		})
	} else if imp, ok := importers[id]; ok {
		res = &MatchResult{
			Anchor:   imp.ID,
			Side:     sideImporter,
			Industry: imp.Industry,
			Location: imp.Country,
		}
		res.Matches = toListItems(m.TopExporters(imp, a.Exporters, a.Risks, topK), explain, func(id string) string {
			if e, ok := exporters[id]; ok {
				return e.State
			}
			return ""
		})
	} else {
		return fmt.Errorf("%s: %w", id, data.ErrNotFound)
	}

	if explain && len(res.Matches) > 0 {
		res.EffectiveWeights = &res.Matches[0].Breakdown.EffectiveWeights
	}

	return output(cmd, res, func(r *renderer) {
		r.matchResult(res, explain)
	})
}

func cmdBatch(ctx context.Context, cmd *cli.Command) error {
	cfg := getConfig(cmd)

	a, err := loadArtifacts(cfg)
	if err != nil {
		return err
	}

	topK := cmd.Int(topFlag)
	if topK <= 0 {
		topK = cfg.Config.TopK
	}
	workers := cmd.Int(workersFlag)
	if workers <= 0 {
		workers = cfg.Config.Workers
	}

	importers := indexByID(a.Importers, func(b *profile.Importer) string { return b.ID })

	batches, err := match.New(nil).TopBuyersBatch(ctx, a.Exporters, a.Importers, a.Risks, topK, workers)
	if err != nil {
		return fmt.Errorf("failed to rank batch: %w", err)
	}

	list := make([]*BatchResult, 0, len(batches))
	for _, b := range batches {
		list = append(list, &BatchResult{
			ExporterID: b.ExporterID,
			Industry:   b.Industry,
			Matches: toListItems(b.Matches, false, func(id string) string {
				if m, ok := importers[id]; ok {
					return m.Country
				}
				return ""
			}),
		})
	}

	return output(cmd, list, func(r *renderer) {
		r.batchResult(list)
	})
}

func loadArtifacts(cfg *appConfig) (*data.Artifacts, error) {
	a, err := data.LoadArtifacts(cfg.DB)
	if err != nil {
		if errors.Is(err, data.ErrNotFound) {
			return nil, errors.New("no data imported yet, run import first")
		}
		return nil, fmt.Errorf("failed to load artifacts: %w", err)
	}
	return a, nil
}

// indexByID maps IDs to records. IDs may repeat across rows, the first row
// wins, same as data.GetExporter and data.GetImporter.
func indexByID[T any](list []*T, id func(*T) string) map[string]*T {
	m := make(map[string]*T, len(list))
	for _, v := range list {
		k := id(v)
		if _, ok := m[k]; !ok {
			m[k] = v
		}
	}
	return m
}

func toListItems(results []fusion.Result, explain bool, location func(id string) string) []*MatchListItem {
	list := make([]*MatchListItem, 0, len(results))
	for i, r := range results {
		item := &MatchListItem{
			Rank:     i + 1,
			ID:       r.ID,
			Location: location(r.ID),
			GeoTier:  r.Breakdown.Geo.Label,
			Score:    r.Score,
		}
		if explain {
			bd := r.Breakdown
			item.Breakdown = &bd
		}
		list = append(list, item)
	}
	return list
}

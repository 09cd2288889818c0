package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/mchmarny/tradepulse/pkg/data"
	"github.com/mchmarny/tradepulse/pkg/fusion"
	"github.com/mchmarny/tradepulse/pkg/geo"
	"github.com/mchmarny/tradepulse/pkg/score"
	"github.com/urfave/cli/v3"
)

const (
	stateFlag      = "state"
	countryFlag    = "country"
	industryFlag   = "industry"
	exporterIDFlag = "exporter"
	importerIDFlag = "importer"
)

func riskCommand() *cli.Command {
	return &cli.Command{
		Name:   "risk",
		Usage:  "List industry risk from the imported news, riskiest first",
		Action: cmdRisk,
	}
}

func geoCommand() *cli.Command {
	return &cli.Command{
		Name:   "geo",
		Usage:  "Score the trade lane of an exporter state and a buyer country",
		Action: cmdGeo,
		Flags: []cli.Flag{
			requiredString(stateFlag, "Exporter state (e.g. Gujarat)"),
			requiredString(countryFlag, "Buyer country (e.g. Germany)"),
			requiredString(industryFlag, "Industry (e.g. Chemicals)"),
		},
	}
}

func estimateCommand() *cli.Command {
	return &cli.Command{
		Name:   "estimate",
		Usage:  "Score a single exporter and buyer pair without ranking a population",
		Action: cmdEstimate,
		Flags: []cli.Flag{
			requiredString(exporterIDFlag, "Exporter ID"),
			requiredString(importerIDFlag, "Buyer ID"),
		},
	}
}

func basisCommand() *cli.Command {
	return &cli.Command{
		Name:   "basis",
		Usage:  "Explain the dimensions matches are classified on",
		Action: cmdBasis,
	}
}

func infoCommand() *cli.Command {
	return &cli.Command{
		Name:   "info",
		Usage:  "Show what is in the artifact store",
		Action: cmdInfo,
	}
}

func requiredString(name, usage string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:     name,
		Usage:    usage,
		Required: true,
	}
}

// GeoResult is the lane the geo breakdown was computed for.
type GeoResult struct {
	State    string        `json:"state" yaml:"state"`
	Country  string        `json:"country" yaml:"country"`
	Industry string        `json:"industry" yaml:"industry"`
	Geo      geo.Breakdown `json:"geo" yaml:"geo"`
}

// EstimateResult is a single pair estimate.
type EstimateResult struct {
	ExporterID string         `json:"exporter_id" yaml:"exporterId"`
	ImporterID string         `json:"importer_id" yaml:"importerId"`
	Estimate   score.Estimate `json:"estimate" yaml:"estimate"`
}

// BasisItem explains one classification dimension.
type BasisItem struct {
	Name     string  `json:"name" yaml:"name"`
	Label    string  `json:"label" yaml:"label"`
	Question string  `json:"question" yaml:"question"`
	Weight   float64 `json:"cc_weight,omitempty" yaml:"ccWeight,omitempty"`
}

// InfoResult describes the artifact store.
type InfoResult struct {
	DBPath  string           `json:"db_path" yaml:"dbPath"`
	Counts  map[string]int64 `json:"counts" yaml:"counts"`
	LastRun *data.ImportRun  `json:"last_run,omitempty" yaml:"lastRun,omitempty"`
}

func cmdRisk(_ context.Context, cmd *cli.Command) error {
	cfg := getConfig(cmd)

	m, err := data.GetIndustryRisk(cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to get industry risk: %w", err)
	}

	list := m.Sorted()
	return output(cmd, list, func(r *renderer) {
		r.risks(list)
	})
}

func cmdGeo(_ context.Context, cmd *cli.Command) error {
	res := &GeoResult{
		State:    cmd.String(stateFlag),
		Country:  cmd.String(countryFlag),
		Industry: cmd.String(industryFlag),
	}
	res.Geo = geo.NewScorer(nil).Score(res.State, res.Country, res.Industry)

	return output(cmd, res, func(r *renderer) {
		r.geoResult(res)
	})
}

func cmdEstimate(_ context.Context, cmd *cli.Command) error {
	cfg := getConfig(cmd)

	exp, err := data.GetExporter(cfg.DB, cmd.String(exporterIDFlag))
	if err != nil {
		return fmt.Errorf("failed to get exporter: %w", err)
	}

	imp, err := data.GetImporter(cfg.DB, cmd.String(importerIDFlag))
	if err != nil {
		return fmt.Errorf("failed to get buyer: %w", err)
	}

	risks, err := data.GetIndustryRisk(cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to get industry risk: %w", err)
	}

	res := &EstimateResult{
		ExporterID: exp.ID,
		ImporterID: imp.ID,
		Estimate:   score.NewScorer(nil).EstimatePair(exp, imp, risks),
	}

	return output(cmd, res, func(r *renderer) {
		r.estimateResult(res)
	})
}

func cmdBasis(_ context.Context, cmd *cli.Command) error {
	list := make([]*BasisItem, 0, score.NumDimensions+1)
	for _, d := range score.Dimensions() {
		list = append(list, &BasisItem{
			Name:     d.String(),
			Label:    d.Label(),
			Question: d.Question(),
			Weight:   score.CCWeights[d],
		})
	}
	list = append(list, &BasisItem{
		Name:     "msme_bonus",
		Label:    "MSME Equity Bonus",
		Question: fmt.Sprintf("Flat +%.2f boost for registered MSME exporters", fusion.EquityBonus),
	})

	return output(cmd, list, func(r *renderer) {
		r.basis(list)
	})
}

func cmdInfo(_ context.Context, cmd *cli.Command) error {
	cfg := getConfig(cmd)

	counts, err := data.GetDataState(cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to get data state: %w", err)
	}

	res := &InfoResult{
		DBPath: cfg.DBPath,
		Counts: counts,
	}

	run, err := data.LastRun(cfg.DB)
	if err != nil && !errors.Is(err, data.ErrNotFound) {
		return fmt.Errorf("failed to get last import: %w", err)
	}
	res.LastRun = run

	return output(cmd, res, func(r *renderer) {
		r.info(res)
	})
}

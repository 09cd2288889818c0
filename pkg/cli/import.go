package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mchmarny/tradepulse/pkg/data"
	"github.com/mchmarny/tradepulse/pkg/risk"
	"github.com/urfave/cli/v3"
)

const (
	exportersSourceFlag = "exporters"
	importersSourceFlag = "importers"
	newsSourceFlag      = "news"
	referenceDateFlag   = "reference-date"
)

func importCommand() *cli.Command {
	return &cli.Command{
		Name:    "import",
		Aliases: []string{"i"},
		Usage:   "Load, impute, and store the exporter, buyer, and news datasets",
		UsageText: `tradepulse import --exporters exp.csv --importers imp.csv --news news.csv
   tradepulse import --news https://example.com/news.csv   # other sources from config
   tradepulse import                                       # all sources from config`,
		Action: cmdImport,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  exportersSourceFlag,
				Usage: "Exporter dataset, local CSV path or http(s) URL (default: sources.exporters in config)",
			},
			&cli.StringFlag{
				Name:  importersSourceFlag,
				Usage: "Buyer dataset, local CSV path or http(s) URL (default: sources.importers in config)",
			},
			&cli.StringFlag{
				Name:  newsSourceFlag,
				Usage: "News dataset, local CSV path or http(s) URL (default: sources.news in config)",
			},
			&cli.StringFlag{
				Name:  referenceDateFlag,
				Usage: "Date recency is measured from, YYYY-MM-DD (default: reference_date in config)",
			},
		},
	}
}

type ImportResult struct {
	Run      *data.ImportRun `json:"run" yaml:"run"`
	News     int             `json:"news_events" yaml:"newsEvents"`
	Risks    []risk.Entry    `json:"industry_risk" yaml:"industryRisk"`
	Duration string          `json:"duration" yaml:"duration"`
}

func cmdImport(ctx context.Context, cmd *cli.Command) error {
	start := time.Now()
	cfg := getConfig(cmd)

	src := data.Sources(cfg.Config.Sources)
	if v := cmd.String(exportersSourceFlag); v != "" {
		src.Exporters = v
	}
	if v := cmd.String(importersSourceFlag); v != "" {
		src.Importers = v
	}
	if v := cmd.String(newsSourceFlag); v != "" {
		src.News = v
	}

	c := *cfg.Config
	if v := cmd.String(referenceDateFlag); v != "" {
		c.ReferenceDate = v
	}
	ref, err := c.Reference()
	if err != nil {
		return err
	}

	slog.Info("importing datasets", "reference_date", c.ReferenceDate)
	a, err := data.Load(ctx, src, ref)
	if err != nil {
		return fmt.Errorf("failed to load datasets: %w", err)
	}

	run, err := data.SaveArtifacts(cfg.DB, a)
	if err != nil {
		return fmt.Errorf("failed to save artifacts: %w", err)
	}

	res := &ImportResult{
		Run:      run,
		News:     a.NewsEvents,
		Risks:    a.Risks.Sorted(),
		Duration: time.Since(start).String(),
	}

	return output(cmd, res, func(r *renderer) {
		r.importResult(res)
	})
}

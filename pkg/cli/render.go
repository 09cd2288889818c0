package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mchmarny/tradepulse/pkg/geo"
	"github.com/mchmarny/tradepulse/pkg/logging"
	"github.com/mchmarny/tradepulse/pkg/risk"
	"github.com/mchmarny/tradepulse/pkg/score"
)

const (
	barWidth       = 20
	weightBarWidth = 25
	subBarWidth    = 15
	breakdownTop   = 5
	ruleWidth      = 72

	barChar    = "█"
	weightChar = "▓"
)

type theme struct {
	title  lipgloss.Style
	header lipgloss.Style
	label  lipgloss.Style
	value  lipgloss.Style
	bar    lipgloss.Style
	muted  lipgloss.Style
}

func newTheme(r *lipgloss.Renderer, color bool) theme {
	if !color {
		plain := r.NewStyle()
		return theme{
			title:  plain,
			header: plain,
			label:  plain,
			value:  plain,
			bar:    plain,
			muted:  plain,
		}
	}

	accent := lipgloss.Color("#58d4ff")
	muted := lipgloss.Color("#9fb3c8")
	return theme{
		title:  r.NewStyle().Foreground(accent).Bold(true),
		header: r.NewStyle().Bold(true),
		label:  r.NewStyle().Faint(true),
		value:  r.NewStyle().Foreground(accent).Bold(true),
		bar:    r.NewStyle().Foreground(accent),
		muted:  r.NewStyle().Foreground(muted),
	}
}

// renderer prints results as console tables.
type renderer struct {
	w     io.Writer
	theme theme
}

func newRenderer(w io.Writer) *renderer {
	return &renderer{
		w:     w,
		theme: newTheme(lipgloss.NewRenderer(w), logging.SupportsColor(w)),
	}
}

func (r *renderer) println(s string) {
	fmt.Fprintln(r.w, s)
}

func (r *renderer) rule(char string) {
	r.println("  " + r.theme.muted.Render(strings.Repeat(char, ruleWidth)))
}

func (r *renderer) field(label, value string) {
	r.println(fmt.Sprintf("  %s : %s", r.theme.label.Render(pad(label, 9)), value))
}

func (r *renderer) scoreRow(label string, labelWidth int, v float64, width int, char string) {
	r.println(fmt.Sprintf("  %s %s %.4f", pad(label, labelWidth), r.theme.bar.Render(bar(v, width, char)), v))
}

// bar is a fixed width gauge of v in [0,1].
func bar(v float64, width int, char string) string {
	n := int(v * float64(width))
	n = max(0, min(width, n))
	return strings.Repeat(char, n) + strings.Repeat(" ", width-n)
}

func pad(s string, width int) string {
	return fmt.Sprintf("%-*s", width, s)
}

func (r *renderer) importResult(res *ImportResult) {
	r.println(r.theme.title.Render("Import complete"))
	if res.Run != nil {
		r.field("Run", res.Run.ID)
		r.field("Reference", res.Run.ReferenceDate)
		r.field("Exporters", fmt.Sprint(res.Run.Exporters))
		r.field("Buyers", fmt.Sprint(res.Run.Importers))
	}
	r.field("News", fmt.Sprint(res.News))
	r.field("Duration", res.Duration)
	r.println("")
	r.risks(res.Risks)
}

func (r *renderer) risks(list []risk.Entry) {
	r.println(r.theme.title.Render("Industry risk scores (from news signals):"))
	if len(list) == 0 {
		r.println("  " + r.theme.muted.Render("no industry risk imported"))
		return
	}
	for _, e := range list {
		r.println(fmt.Sprintf("  %s %s %.3f", pad(e.Industry, 20), r.theme.bar.Render(bar(e.Risk, weightBarWidth, barChar)), e.Risk))
	}
}

func (r *renderer) matchResult(res *MatchResult, explain bool) {
	other, place := "Buyers", "State"
	candidate, candidatePlace := "Buyer ID", "Country"
	if res.Side == sideImporter {
		other, place = "Exporters", "Country"
		candidate, candidatePlace = "Exporter ID", "State"
	}

	title := fmt.Sprintf("Top %d %s for %s [%s]", len(res.Matches), other, strings.ToUpper(res.Side[:1])+res.Side[1:], res.Anchor)
	r.println(r.theme.title.Render(title))
	r.field("Industry", res.Industry)
	r.field(place, res.Location)
	if res.Side == sideExporter {
		r.field("MSME", yesNo(res.MSME))
	}
	r.println(strings.Repeat("=", ruleWidth))

	if len(res.Matches) == 0 {
		r.println("  " + r.theme.muted.Render("no candidates share this industry"))
		return
	}

	if explain && res.EffectiveWeights != nil {
		r.effectiveWeights(*res.EffectiveWeights)
	}

	r.println(r.theme.header.Render(fmt.Sprintf("  %s %s %s %s %7s",
		pad("Rank", 5), pad(candidate, 15), pad(candidatePlace, 14), pad("Geo Tier", 10), "Score")))
	r.rule("─")
	for _, m := range res.Matches {
		r.println(fmt.Sprintf("  %s %s %s %s %s",
			pad(fmt.Sprint(m.Rank), 5), pad(m.ID, 15), pad(m.Location, 14), pad(string(m.GeoTier), 10),
			r.theme.value.Render(fmt.Sprintf("%.4f", m.Score))))
	}

	if !explain {
		return
	}
	for _, m := range res.Matches[:min(breakdownTop, len(res.Matches))] {
		r.breakdown(res, m)
	}
}

func (r *renderer) effectiveWeights(w score.Vector) {
	r.println("")
	r.println(r.theme.title.Render("  Effective weights (auto-computed for this search)"))
	r.println("  " + r.theme.muted.Render("higher means the dimension separated candidates most"))
	for _, d := range score.Dimensions() {
		r.scoreRow(d.Label(), 26, w[d], weightBarWidth, weightChar)
	}
	r.println("")
}

func (r *renderer) breakdown(res *MatchResult, m *MatchListItem) {
	if m.Breakdown == nil {
		return
	}
	bd := m.Breakdown

	r.println("")
	r.println(r.theme.title.Render(fmt.Sprintf("  Rank %d: %s  Score: %.4f", m.Rank, m.ID, m.Score)))

	state, country := res.Location, m.Location
	if res.Side == sideImporter {
		state, country = m.Location, res.Location
	}
	r.println(fmt.Sprintf("  Location: %s (India) -> %s  |  Geo Tier: %s", state, country, bd.Geo.Label))
	r.println("")

	r.println(r.theme.header.Render(fmt.Sprintf("  %s %s  SCORE", pad("DIMENSION", 26), pad("SCORE BAR", barWidth))))
	r.rule("─")
	v := bd.Components.Vector()
	for _, d := range score.Dimensions() {
		r.scoreRow(d.Label(), 26, v[d], barWidth, barChar)
	}

	r.println("")
	r.println("  Geographic breakdown:")
	r.geoRows(bd.Geo)

	f := bd.Fusion
	r.println("")
	r.println("  Fusion scores:")
	r.println(fmt.Sprintf("    CC score          : %.4f", f.CC))
	r.println(fmt.Sprintf("    WRRF score        : %.4f", f.WRRF))
	r.println(fmt.Sprintf("    Consensus bonus   : %.4f", f.Consensus))
	r.println(fmt.Sprintf("    Recency multiplier: %.4f", f.RecencyMult))
	r.println(fmt.Sprintf("    Equity bonus      : %.4f", f.Equity))
	r.println(fmt.Sprintf("    Final score       : %s", r.theme.value.Render(fmt.Sprintf("%.4f", f.Final))))
}

func (r *renderer) geoRows(g geo.Breakdown) {
	r.scoreRow("  Trade Corridor Strength", 28, g.Corridor, subBarWidth, barChar)
	r.scoreRow("  State Specialisation", 28, g.StateSpec, subBarWidth, barChar)
	r.scoreRow("  Regulatory/FTA Ease", 28, g.Regulatory, subBarWidth, barChar)
	r.scoreRow("  Logistics Proximity", 28, g.Logistics, subBarWidth, barChar)
}

func (r *renderer) batchResult(list []*BatchResult) {
	for _, b := range list {
		r.println(r.theme.title.Render(fmt.Sprintf("%s [%s]", b.ExporterID, b.Industry)))
		if len(b.Matches) == 0 {
			r.println("  " + r.theme.muted.Render("no candidates share this industry"))
			continue
		}
		for _, m := range b.Matches {
			r.println(fmt.Sprintf("  %s %s %s %s %.4f",
				pad(fmt.Sprint(m.Rank), 5), pad(m.ID, 15), pad(m.Location, 14), pad(string(m.GeoTier), 10), m.Score))
		}
	}
}

func (r *renderer) geoResult(res *GeoResult) {
	r.println(r.theme.title.Render(fmt.Sprintf("%s (India) -> %s  [%s]", res.State, res.Country, res.Industry)))
	r.scoreRow("Geo Score", 28, res.Geo.Score, subBarWidth, barChar)
	r.geoRows(res.Geo)
	r.field("Geo Tier", r.theme.value.Render(string(res.Geo.Label)))
}

func (r *renderer) estimateResult(res *EstimateResult) {
	r.println(r.theme.title.Render(fmt.Sprintf("Estimate: %s -> %s", res.ExporterID, res.ImporterID)))
	v := res.Estimate.Components.Vector()
	for _, d := range score.Dimensions() {
		r.scoreRow(d.Label(), 26, v[d], barWidth, barChar)
	}
	r.scoreRow("Recency", 26, res.Estimate.Components.Recency, barWidth, barChar)
	r.println("")
	r.println(fmt.Sprintf("  Raw score   : %.4f", res.Estimate.Raw))
	r.println(fmt.Sprintf("  Final score : %s", r.theme.value.Render(fmt.Sprintf("%.4f", res.Estimate.Final))))
}

func (r *renderer) basis(list []*BasisItem) {
	r.println(strings.Repeat("═", ruleWidth))
	r.println(r.theme.title.Render(fmt.Sprintf("HOW MATCHES ARE CLASSIFIED: %d Dimensions Explained", len(list))))
	r.println(strings.Repeat("═", ruleWidth))
	for i, b := range list {
		r.println(fmt.Sprintf("  %s %s %s",
			pad(fmt.Sprintf("%d.", i+1), 3), r.theme.header.Render(pad(b.Label, 24)), b.Question))
	}
	r.println(strings.Repeat("═", ruleWidth))
}

func (r *renderer) info(res *InfoResult) {
	r.println(r.theme.title.Render("Artifact store"))
	r.field("Path", res.DBPath)
	for _, k := range []string{"exporter", "importer", "industry", "industry_risk", "import_run"} {
		r.field(k, fmt.Sprint(res.Counts[k]))
	}
	if res.LastRun != nil {
		r.field("Last run", fmt.Sprintf("%s (%s)", res.LastRun.ID, res.LastRun.ImportedAt.Format("2006-01-02 15:04:05")))
	}
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

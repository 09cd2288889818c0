package fusion

import (
	"fmt"
	"math"
	"testing"

	"github.com/mchmarny/tradepulse/pkg/profile"
	"github.com/mchmarny/tradepulse/pkg/risk"
	"github.com/mchmarny/tradepulse/pkg/score"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRisks = risk.Map{"Chemicals": 0.3}

func exporter(id string, capacity float64) *profile.Exporter {
	return &profile.Exporter{
		ID:               id,
		Industry:         "Chemicals",
		State:            "Gujarat",
		CapacityTons:     capacity,
		RevenueUSD:       1_500_000,
		TeamSize:         40,
		Certifications:   []string{"ISO9001"},
		PaymentTerms:     0.7,
		ResponseScore:    0.6,
		HiringSignal:     0.4,
		LinkedInActivity: 3000,
		ProfileViews:     900,
		IntentScore:      0.7,
		ShipmentValueUSD: 90_000,
		QuantityTons:     120,
		WarRisk:          0.1,
		RecencyWeight:    0.9,
	}
}

func importer(id string, order float64) *profile.Importer {
	return &profile.Importer{
		ID:                  id,
		Industry:            "Chemicals",
		Country:             "Germany",
		AvgOrderTons:        order,
		RevenueUSD:          3_000_000,
		TeamSize:            80,
		Certifications:      []string{"ISO9001", "REACH"},
		PaymentHistory:      0.8,
		ResponseScore:       0.5,
		ProfileVisits:       1500,
		IntentScore:         0.6,
		ResponseProbability: 0.5,
		RecencyWeight:       0.8,
	}
}

func exporterPairs(imp *profile.Importer, exps ...*profile.Exporter) []Pair {
	pairs := make([]Pair, len(exps))
	for i, e := range exps {
		pairs[i] = Pair{ID: e.ID, Exporter: e, Importer: imp}
	}
	return pairs
}

func TestRank_Empty(t *testing.T) {
	e := NewEngine(nil)
	list := e.Rank(nil, testRisks)
	require.NotNil(t, list)
	assert.Empty(t, list)
}

func TestRank_InputOrderAndBounds(t *testing.T) {
	imp := importer("BUY_1", 500)
	var exps []*profile.Exporter
	for i := range 25 {
		x := exporter(fmt.Sprintf("EXP_%d", i), float64(50+i*60))
		x.IntentScore = float64(i%7) / 7
		x.MSME = i%3 == 0
		exps = append(exps, x)
	}

	list := NewEngine(nil).Rank(exporterPairs(imp, exps...), testRisks)
	require.Len(t, list, len(exps))
	for i, r := range list {
		assert.Equal(t, exps[i].ID, r.ID)
		assert.GreaterOrEqual(t, r.Score, 0.0)
		assert.LessOrEqual(t, r.Score, 1.0)
		assert.Equal(t, r.Score, r.Breakdown.Fusion.Final)
		assert.GreaterOrEqual(t, r.Breakdown.Fusion.Consensus, 0.0)
		assert.LessOrEqual(t, r.Breakdown.Fusion.Consensus, ConsensusCap+1e-12)
		assert.GreaterOrEqual(t, r.Breakdown.Fusion.RecencyMult, RecencyFloor)
	}
}

func TestRank_Idempotent(t *testing.T) {
	imp := importer("BUY_1", 500)
	pairs := exporterPairs(imp,
		exporter("EXP_1", 100),
		exporter("EXP_2", 800),
		exporter("EXP_3", 500),
		exporter("EXP_4", 5000),
	)

	e := NewEngine(nil)
	first := e.Rank(pairs, testRisks)
	second := e.Rank(pairs, testRisks)
	assert.Equal(t, first, second)
}

func TestRank_SingleCandidate(t *testing.T) {
	imp := importer("BUY_1", 500)
	exp := exporter("EXP_1", 1000)

	for _, msme := range []bool{false, true} {
		exp.MSME = msme
		list := NewEngine(nil).Rank(exporterPairs(imp, exp), testRisks)
		require.Len(t, list, 1)

		f := list[0].Breakdown.Fusion
		assert.Equal(t, 0.0, f.CC)
		assert.Equal(t, 0.5, f.WRRF)
		assert.Equal(t, 0.0, f.Consensus)
		assert.Equal(t, 0.5, f.Final)
		assert.Equal(t, 0.5, list[0].Score)

		wantEquity := 0.0
		if msme {
			wantEquity = EquityBonus
		}
		assert.Equal(t, wantEquity, f.Equity)
		assert.InDelta(t, (1-CCAlpha)*0.5*f.RecencyMult+wantEquity, f.Hybrid, 1e-12)
	}
}

func TestRank_CapacityWithinSweetSpotRanksAbove(t *testing.T) {
	imp := importer("BUY_1", 500)
	small := exporter("EXP_SMALL", 100)
	big := exporter("EXP_BIG", 1000)

	// both input orders
	for _, pairs := range [][]Pair{
		exporterPairs(imp, small, big),
		exporterPairs(imp, big, small),
	} {
		list := NewEngine(nil).Rank(pairs, testRisks)
		require.Len(t, list, 2)

		byID := map[string]Result{}
		for _, r := range list {
			byID[r.ID] = r
		}
		assert.Equal(t, 1.0, byID["EXP_BIG"].Breakdown.DemandFit)
		assert.InDelta(t, 0.16, byID["EXP_SMALL"].Breakdown.DemandFit, 1e-9)
		assert.Greater(t, byID["EXP_BIG"].Score, byID["EXP_SMALL"].Score)
		assert.Equal(t, 1.0, byID["EXP_BIG"].Score)
		assert.Equal(t, 0.0, byID["EXP_SMALL"].Score)
	}
}

func TestRank_EquityBonusBound(t *testing.T) {
	imp := importer("BUY_1", 500)
	build := func(flag bool) []Pair {
		mid := exporter("EXP_MID", 400)
		mid.MSME = flag
		return exporterPairs(imp, exporter("EXP_LOW", 100), mid, exporter("EXP_HIGH", 1000))
	}

	e := NewEngine(nil)
	plain := e.Rank(build(false), testRisks)
	flagged := e.Rank(build(true), testRisks)

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, r := range plain {
		lo = math.Min(lo, r.Breakdown.Fusion.Hybrid)
		hi = math.Max(hi, r.Breakdown.Fusion.Hybrid)
	}
	require.Greater(t, hi-lo, 0.0)

	assert.InDelta(t, EquityBonus, flagged[1].Breakdown.Fusion.Hybrid-plain[1].Breakdown.Fusion.Hybrid, 1e-12)
	assert.Equal(t, plain[0].Breakdown.Fusion.Hybrid, flagged[0].Breakdown.Fusion.Hybrid)
	assert.Equal(t, plain[2].Breakdown.Fusion.Hybrid, flagged[2].Breakdown.Fusion.Hybrid)

	diff := flagged[1].Score - plain[1].Score
	assert.GreaterOrEqual(t, diff, 0.0)
	assert.LessOrEqual(t, diff, EquityBonus/(hi-lo)+1e-9)
}

func TestRank_EffectiveWeights(t *testing.T) {
	imp := importer("BUY_1", 500)

	single := NewEngine(nil).Rank(exporterPairs(imp, exporter("EXP_1", 1000)), testRisks)
	require.Len(t, single, 1)
	eff := single[0].Breakdown.EffectiveWeights
	assert.InDelta(t, 1.0, eff.Sum(), 1e-9)
	for d := range eff {
		assert.InDelta(t, score.CCWeights[d], eff[d], 1e-9)
	}

	many := NewEngine(nil).Rank(exporterPairs(imp,
		exporter("EXP_1", 100),
		exporter("EXP_2", 400),
		exporter("EXP_3", 2000),
	), testRisks)
	eff = many[0].Breakdown.EffectiveWeights
	assert.InDelta(t, 1.0, eff.Sum(), 1e-9)
	for _, r := range many {
		assert.Equal(t, eff, r.Breakdown.EffectiveWeights)
	}
	// only demand fit varies, so it takes the whole spread share
	assert.InDelta(t, 0.5+0.5*score.CCWeights[score.DemandFit], eff[score.DemandFit], 1e-9)
}

func TestHardRanks(t *testing.T) {
	assert.Equal(t, []float64{2, 1, 3}, hardRanks([]float64{0.5, 0.9, 0.1}))
	assert.Equal(t, []float64{1, 2, 3}, hardRanks([]float64{0.4, 0.4, 0.4}))
	assert.Equal(t, []float64{3, 1, 2}, hardRanks([]float64{0.1, 0.7, 0.7}))
}

func TestMedian(t *testing.T) {
	assert.Equal(t, 2.0, median([]float64{3, 1, 2}))
	assert.Equal(t, 2.5, median([]float64{4, 1, 3, 2}))
	assert.Equal(t, 7.0, median([]float64{7}))
}

func TestMinMax(t *testing.T) {
	assert.Equal(t, []float64{0, 0.5, 1}, minMax([]float64{2, 3, 4}))
	assert.Equal(t, []float64{0.5, 0.5}, minMax([]float64{1, 1}))
}

func TestAlphas(t *testing.T) {
	a := alphas([]float64{0, 0.5, 0.5, 0.5, 1})
	for _, v := range a {
		assert.GreaterOrEqual(t, v, alphaFloor)
		assert.LessOrEqual(t, v, 1.0)
	}
	// the outliers outweigh the median values
	assert.Greater(t, a[0], a[2])
	assert.Equal(t, a[0], a[4])
}

func TestConsensus(t *testing.T) {
	cols := make([][]float64, score.NumDimensions)
	for d := range cols {
		cols[d] = []float64{0.5, 0.5, 0.5, 0.5}
	}
	assert.Equal(t, []float64{0, 0, 0, 0}, consensus(cols, 4))

	cols[0] = []float64{0.9, 0.1, 0.2, 0.3}
	cb := consensus(cols, 4)
	assert.InDelta(t, ConsensusCap, cb[0], 1e-12)
	assert.Equal(t, 0.0, cb[1])
}

func TestWRRFSkipsConstantColumns(t *testing.T) {
	cols := make([][]float64, score.NumDimensions)
	for d := range cols {
		cols[d] = []float64{0.3, 0.3}
	}
	assert.Equal(t, []float64{0, 0}, wrrfScores(cols, 2))
}

package data

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testExporters = `Exporter_ID,Date,Industry,State,MSME_Udyam,Manufacturing_Capacity_Tons,Revenue_Size_USD,Team_Size,Certification,Good_Payment_Terms,Prompt_Response_Score,Hiring_Signal,LinkedIn_Activity,SalesNav_ProfileViews,SalesNav_JobChange,Intent_Score,Shipment_Value_USD,Quantity_Tons,Tariff_Impact,StockMarket_Impact,War_Risk,Natural_Calamity_Risk,Currency_Shift
EXP_1,2025-01-01,Textiles,Gujarat,1,500,1000000,25.7,"ISO9001, FDA",1,0.8,1,50,120,0,0.7,20000,100,0.1,0.1,0,0,0.05
EXP_2,2024-01-01,Textiles,Tamil Nadu,,,2000000,40,nan,0,0.6,0,30,80,1,0.5,,200,0.2,0.1,0.1,0,0.02
EXP_3,2023-06-01,Steel,Maharashtra,yes,300,500000,10,,1,0.9,1,10,40,0,0.9,40000,50,0,0,0,0,0
`

	testImporters = `Buyer_ID,Date,Industry,Country,Avg_Order_Tons,Revenue_Size_USD,Team_Size,Certification,Good_Payment_History,Prompt_Response,Hiring_Growth,Funding_Event,Engagement_Spike,SalesNav_ProfileVisits,DecisionMaker_Change,Intent_Score,Preferred_Channel,Response_Probability,Tariff_News,StockMarket_Shock,War_Event,Natural_Calamity,Currency_Fluctuation
BUY_1,2024-12-01,Textiles,USA,120,3000000,50,ISO9001,1,0.9,1,1,1,200,0,0.8,LinkedIn,0.7,0.1,0.1,0,0,0.03
,2024-12-01,Textiles,USA,120,3000000,50,ISO9001,1,0.9,1,1,1,200,0,0.8,LinkedIn,0.7,0.1,0.1,0,0,0.03
BUY_2,2024-10-01,Textiles,Germany,,1000000,12.9,,0,0.5,0,,0,50,1,0.4,,,0,0,0,0,0
BUY_3,2024-06-01,Steel,UAE,80,800000,20,FDA,1,0.7,0,0,1,90,0,0.6,Email,0.4,0,0.2,0,0,0
`

	testNews = `Date,Affected_Industry,Impact_Level,Tariff_Change,StockMarket_Shock,War_Flag,Natural_Calamity_Flag,Currency_Shift
2024-12-01,Textiles,High,5,,0,0,0.02
2024-12-01,,High,1,1,1,1,1
2024-11-01,Steel,Low,0,1,0,0,0
`
)

var testRef = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestLoadExporters(t *testing.T) {
	list, err := LoadExporters("exporters.csv", strings.NewReader(testExporters), testRef)
	require.NoError(t, err)
	require.Len(t, list, 3)

	e1, e2, e3 := list[0], list[1], list[2]

	assert.Equal(t, "EXP_1", e1.ID)
	assert.Equal(t, "Gujarat", e1.State)
	assert.True(t, e1.MSME)
	assert.Equal(t, 25.0, e1.TeamSize)
	assert.Equal(t, []string{"ISO9001", "FDA"}, e1.Certifications)
	assert.Equal(t, 1.0, e1.RecencyWeight)

	// blanks take the column median
	assert.Equal(t, 400.0, e2.CapacityTons)
	assert.Equal(t, 30000.0, e2.ShipmentValueUSD)
	assert.False(t, e2.MSME)
	assert.Empty(t, e2.Certifications)
	assert.Less(t, e2.RecencyWeight, 1.0)

	// non-numeric flag coerces to 0
	assert.False(t, e3.MSME)
	assert.Equal(t, "Steel", e3.Industry)
}

func TestLoadExporters_MissingState(t *testing.T) {
	in := strings.Replace(testExporters, "State,", "Region,", 1)
	list, err := LoadExporters("exporters.csv", strings.NewReader(in), testRef)
	require.NoError(t, err)
	for _, e := range list {
		assert.Equal(t, "Unknown", e.State)
	}
}

func TestLoadExporters_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{
			name:    "missing column",
			input:   strings.Replace(testExporters, "Intent_Score", "Intent", 1),
			wantErr: "Intent_Score",
		},
		{
			name:    "non numeric",
			input:   strings.Replace(testExporters, "1000000", "lots", 1),
			wantErr: "row 2 column Revenue_Size_USD",
		},
		{
			name:    "blank required",
			input:   strings.Replace(testExporters, ",500000,", ",,", 1),
			wantErr: "row 4 column Revenue_Size_USD",
		},
		{
			name:    "blank id",
			input:   strings.Replace(testExporters, "EXP_2,", ",", 1),
			wantErr: "row 3 column Exporter_ID",
		},
		{
			name:    "empty",
			input:   "",
			wantErr: "no header row",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadExporters("exporters.csv", strings.NewReader(tt.input), testRef)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadExporters_MissingColumnSentinel(t *testing.T) {
	_, err := LoadExporters("exporters.csv", strings.NewReader("Exporter_ID\nEXP_1\n"), testRef)
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestLoadImporters(t *testing.T) {
	list, err := LoadImporters("importers.csv", strings.NewReader(testImporters), testRef)
	require.NoError(t, err)
	require.Len(t, list, 3, "row without buyer ID is skipped")

	b1, b2, b3 := list[0], list[1], list[2]

	assert.Equal(t, "BUY_1", b1.ID)
	assert.Equal(t, "LinkedIn", b1.PreferredChannel)
	assert.Equal(t, 0.7, b1.ResponseProbability)
	assert.Equal(t, 1.0, b1.FundingEvent)

	assert.Equal(t, "BUY_2", b2.ID)
	// median is taken before rows without a buyer ID are dropped: {120, 120, 80}
	assert.Equal(t, 120.0, b2.AvgOrderTons)
	assert.Equal(t, 0.5, b2.ResponseProbability)
	assert.Equal(t, "Email", b2.PreferredChannel)
	assert.Equal(t, 0.0, b2.FundingEvent)
	assert.Equal(t, 12.0, b2.TeamSize)

	assert.Equal(t, "UAE", b3.Country)
	assert.Equal(t, []string{"FDA"}, b3.Certifications)
}

func TestLoadNews(t *testing.T) {
	list, err := LoadNews("news.csv", strings.NewReader(testNews))
	require.NoError(t, err)
	require.Len(t, list, 2, "row without industry is skipped")

	assert.Equal(t, "Textiles", list[0].Industry)
	assert.Equal(t, "High", list[0].Impact)
	assert.Equal(t, 5.0, list[0].TariffChange)
	assert.Equal(t, 0.0, list[0].StockShock)
	assert.Equal(t, "Steel", list[1].Industry)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	src := Sources{
		Exporters: writeFile(t, dir, "exporters.csv", testExporters),
		Importers: writeFile(t, dir, "importers.csv", testImporters),
		News:      writeFile(t, dir, "news.csv", testNews),
	}

	a, err := Load(t.Context(), src, testRef)
	require.NoError(t, err)
	assert.Len(t, a.Exporters, 3)
	assert.Len(t, a.Importers, 3)
	assert.Equal(t, 2, a.NewsEvents)
	assert.Equal(t, src, a.Sources)
	assert.Equal(t, testRef, a.ReferenceDate)

	require.Len(t, a.Risks, 2)
	for industry, v := range a.Risks {
		assert.GreaterOrEqual(t, v, 0.0, industry)
		assert.LessOrEqual(t, v, 1.0, industry)
	}
}

func TestLoad_Remote(t *testing.T) {
	files := map[string]string{
		"/exporters.csv": testExporters,
		"/importers.csv": testImporters,
		"/news.csv":      testNews,
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		content, ok := files[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(content))
	}))
	defer srv.Close()

	src := Sources{
		Exporters: srv.URL + "/exporters.csv",
		Importers: srv.URL + "/importers.csv",
		News:      srv.URL + "/news.csv",
	}
	a, err := Load(t.Context(), src, testRef)
	require.NoError(t, err)
	assert.Len(t, a.Exporters, 3)

	src.News = srv.URL + "/missing.csv"
	_, err = Load(t.Context(), src, testRef)
	assert.Error(t, err)
}

func TestLoad_MissingSource(t *testing.T) {
	_, err := Load(t.Context(), Sources{Exporters: "a.csv"}, testRef)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "importers source required")
	assert.Contains(t, err.Error(), "news source required")

	_, err = Load(t.Context(), Sources{Exporters: "nope.csv", Importers: "nope.csv", News: "nope.csv"}, testRef)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

package sector

import (
	"encoding/json"
	"testing"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"techtrack/pkg/model"
)

func rec(ticker, sector string, cur, prev null.Int) model.Record {
	return model.Record{Ticker: ticker, Sector: sector, Rating1: cur, Rating1Prev1: prev}
}

func rated(ticker, sector string, cur int64) model.Record {
	return rec(ticker, sector, null.IntFrom(cur), null.Int{})
}

func tickers(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Ticker
	}
	return out
}

func TestSummarizeRanking(t *testing.T) {
	tax := Taxonomy{
		Mapping: map[string]string{"NH": "Ngân hàng"},
		Groups:  []Group{{Name: "Ngân hàng", Top: 3, Bottom: 2}},
	}
	records := []model.Record{
		rated("A", "NH", 10),
		rated("B", "NH", 7),
		rated("C", "NH", 7),
		rated("D", "NH", -3),
		rated("E", "NH", -8),
	}

	s := Summarize(records, tax)
	require.Len(t, s.Sectors, 1)
	got := s.Sectors[0]

	assert.Equal(t, "Ngân hàng", got.Name)
	assert.Equal(t, []string{"A", "B", "C"}, tickers(got.Top))
	assert.Equal(t, []string{"E", "D"}, tickers(got.Bottom))
	assert.Equal(t, Positive, got.Top[0].Tone)
	assert.Equal(t, Negative, got.Bottom[0].Tone)
}

func TestSummarizeBreakthrough(t *testing.T) {
	records := []model.Record{
		rec("UP", "CK", null.IntFrom(16), null.IntFrom(5)),
		rec("NEAR", "CK", null.IntFrom(14), null.IntFrom(5)),
		rec("DOWN", "BDS", null.IntFrom(-6), null.IntFrom(4)),
		rec("NOPREV", "BDS", null.IntFrom(30), null.Int{}),
		rec("IDX", "Index", null.IntFrom(20), null.IntFrom(0)),
	}

	s := Summarize(records, DefaultTaxonomy())

	require.Len(t, s.BreakthroughUp, 1)
	assert.Equal(t, "UP (5 -> 16)", s.BreakthroughUp[0].String())
	require.Len(t, s.BreakthroughDown, 1)
	assert.Equal(t, "DOWN (4 -> -6)", s.BreakthroughDown[0].String())
}

func TestSummarizeMapping(t *testing.T) {
	records := []model.Record{
		rated("CTD", "XD", 5),
		rated("HPG", "VLXD", 9),
		rated("DCM", "DTC", 1),
		rated("PVS", "DAU", 2),
		rated("XYZ", "OTHER", 4),
		rated("TOT", "TOTAL", 99),
		rated("BLANK", "", 99),
	}

	s := Summarize(records, DefaultTaxonomy())

	require.Len(t, s.Sectors, 2)
	assert.Equal(t, "Xây dựng & ĐTC, VLXD", s.Sectors[0].Name)
	assert.Equal(t, []string{"HPG", "CTD", "DCM"}, tickers(s.Sectors[0].Top))
	assert.Equal(t, "Dầu, Hàng không, Agri", s.Sectors[1].Name)
}

func TestSummarizeGroupOrder(t *testing.T) {
	records := []model.Record{
		rated("VCB", "NH", 3),
		rated("SSI", "CK", 1),
	}

	s := Summarize(records, DefaultTaxonomy())

	require.Len(t, s.Sectors, 2)
	assert.Equal(t, "Chứng khoán", s.Sectors[0].Name)
	assert.Equal(t, "Ngân hàng", s.Sectors[1].Name)
}

func TestSummarizeSkipsUnrated(t *testing.T) {
	records := []model.Record{
		{Ticker: "BAD", Sector: "NH", Error: "no data available"},
		rated("VCB", "NH", 0),
	}

	s := Summarize(records, DefaultTaxonomy())

	require.Len(t, s.Sectors, 1)
	assert.Equal(t, []string{"VCB"}, tickers(s.Sectors[0].Top))
	assert.Equal(t, Zero, s.Sectors[0].Top[0].Tone)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil, DefaultTaxonomy())
	assert.Empty(t, s.Sectors)
	assert.NotNil(t, s.BreakthroughUp)
	assert.NotNil(t, s.BreakthroughDown)
}

func TestTaxonomyResolve(t *testing.T) {
	tax := DefaultTaxonomy()
	assert.Equal(t, "Xuất khẩu", tax.Resolve("XK"))
	assert.Equal(t, "Xuất khẩu", tax.Resolve(" XK "))
	assert.Equal(t, "TECH", tax.Resolve("TECH"))
	assert.ElementsMatch(t, []string{"DAU", "HK", "AGRI"}, tax.Codes("Dầu, Hàng không, Agri"))
}

func TestToneOf(t *testing.T) {
	assert.Equal(t, Positive, ToneOf(1))
	assert.Equal(t, Negative, ToneOf(-1))
	assert.Equal(t, Zero, ToneOf(0))
	assert.Equal(t, "negative", Negative.String())
}

func TestToneText(t *testing.T) {
	for _, tone := range []Tone{Zero, Positive, Negative} {
		b, err := tone.MarshalText()
		require.NoError(t, err)

		var got Tone
		require.NoError(t, got.UnmarshalText(b))
		assert.Equal(t, tone, got)
	}

	var bad Tone
	assert.Error(t, bad.UnmarshalText([]byte("neutral")))
}

func TestSummaryJSONRoundTrip(t *testing.T) {
	records := []model.Record{
		rated("VCB", "NH", 12),
		rated("BID", "NH", -4),
		rated("CTG", "NH", 0),
	}
	want := Summarize(records, DefaultTaxonomy())

	data, err := json.Marshal(want)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"tone":"negative"`)

	var got Summary
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, want, got)
}

func TestSummarizeExcludesPaddedCodes(t *testing.T) {
	records := []model.Record{
		rec("VNINDEX", " Index", null.IntFrom(20), null.IntFrom(5)),
		rec("SUM", "TOTAL ", null.IntFrom(30), null.IntFrom(5)),
		rec("SSI", "CK", null.IntFrom(16), null.IntFrom(5)),
	}
	got := Summarize(records, DefaultTaxonomy())

	require.Len(t, got.Sectors, 1)
	assert.Equal(t, "Chứng khoán", got.Sectors[0].Name)
	assert.Equal(t, []string{"SSI"}, tickers(got.Sectors[0].Top))
	assert.Equal(t, []Move{{Ticker: "SSI", Prev: 5, Cur: 16}}, got.BreakthroughUp)
}

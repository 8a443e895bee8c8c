package symbols

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"techtrack/pkg/model"
)

// ErrNoTickerColumn is returned when the CSV header has no Ticker column
var ErrNoTickerColumn = errors.New("missing Ticker column")

// LoadCSV loads the tracking list from a CSV file with a header row
// naming Ticker and optionally Sector and Exchange, in any order.
func LoadCSV(path string) ([]model.Stock, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening stock list: %w", err)
	}
	defer f.Close()

	stocks, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("loading stock list %s: %w", path, err)
	}
	return stocks, nil
}

// ReadCSV parses a tracking list. Rows with an empty ticker are skipped,
// as are repeats of a ticker already seen.
func ReadCSV(r io.Reader) ([]model.Stock, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrNoTickerColumn
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	cols := map[string]int{"ticker": -1, "sector": -1, "exchange": -1}
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, ok := cols[name]; ok {
			cols[name] = i
		}
	}
	if cols["ticker"] < 0 {
		return nil, ErrNoTickerColumn
	}

	field := func(row []string, name string) string {
		i := cols[name]
		if i < 0 || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var stocks []model.Stock
	seen := make(map[string]bool)
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row: %w", err)
		}

		ticker := strings.ToUpper(field(row, "ticker"))
		if ticker == "" || seen[ticker] {
			continue
		}
		seen[ticker] = true

		stocks = append(stocks, model.Stock{
			Ticker:   ticker,
			Sector:   field(row, "sector"),
			Exchange: strings.ToUpper(field(row, "exchange")),
		})
	}
	return stocks, nil
}

// FromList builds stocks for ad-hoc tickers. Entries may carry an
// exchange suffix, e.g. "VCB:HOSE"; otherwise exchange is used.
func FromList(tickers []string, exchange string) []model.Stock {
	stocks := make([]model.Stock, 0, len(tickers))
	for _, t := range tickers {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		ex := strings.ToUpper(exchange)
		if sym, venue, ok := strings.Cut(t, ":"); ok {
			t, ex = sym, venue
		}
		stocks = append(stocks, model.Stock{Ticker: t, Exchange: ex})
	}
	return stocks
}

// BySector keeps stocks whose sector code equals sector. An empty
// sector or "All" keeps everything.
func BySector(stocks []model.Stock, sector string) []model.Stock {
	if sector == "" || strings.EqualFold(sector, "all") {
		return stocks
	}
	var out []model.Stock
	for _, s := range stocks {
		if s.Sector == sector {
			out = append(out, s)
		}
	}
	return out
}

// Sectors returns the distinct sector codes, sorted
func Sectors(stocks []model.Stock) []string {
	set := make(map[string]bool)
	for _, s := range stocks {
		set[s.Sector] = true
	}
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

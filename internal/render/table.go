package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"techtrack/internal/sector"
	"techtrack/pkg/model"
)

var recordHeader = []string{
	"Sector", "Ticker", "Price", "% Change",
	"vs MA5", "vs MA10", "vs MA20", "vs MA50", "vs MA200",
	"ST", "LT",
	"R1", "R1 T-1", "R1 T-2",
	"R2", "R2 T-1", "R2 T-2",
	"MA50>MA200",
}

// RecordRow returns the display cells of one record
func RecordRow(r model.Record) []string {
	s := r.Snapshot
	return []string{
		r.Sector,
		r.Ticker,
		Price(r.Price, r.Sector),
		Change(r.Change),
		Num(s.CloseVsMA5),
		Num(s.CloseVsMA10),
		Num(s.CloseVsMA20),
		Num(s.CloseVsMA50),
		Num(s.CloseVsMA200),
		Num(s.StrengthST),
		Num(s.StrengthLT),
		Int(r.Rating1),
		Int(r.Rating1Prev1),
		Int(r.Rating1Prev2),
		Int(r.Rating2),
		Int(r.Rating2Prev1),
		Int(r.Rating2Prev2),
		Flag(r.MA50AboveMA200),
	}
}

// TotalsRow returns the cells of the TOTAL line. Zero sums stay empty.
func TotalsRow(t Totals) []string {
	f := func(v float64) string { return blankZero(fmt.Sprintf("%.4f", v), v == 0) }
	i := func(v int64) string { return blankZero(strconv.FormatInt(v, 10), v == 0) }
	return []string{
		"TOTAL",
		fmt.Sprintf("(%d stocks)", t.Count),
		"", "", "", "", "", "", "",
		f(t.StrengthST),
		f(t.StrengthLT),
		i(t.Rating1),
		i(t.Rating1Prev1),
		i(t.Rating1Prev2),
		i(t.Rating2),
		i(t.Rating2Prev1),
		i(t.Rating2Prev2),
		"",
	}
}

// RecordTable writes the analysed records followed by a totals line.
// Failed records are left out; see Errors.
func RecordTable(w io.Writer, records []model.Record) error {
	table := tablewriter.NewTable(w,
		tablewriter.WithHeader(recordHeader),
	)

	var shown []model.Record
	for _, r := range records {
		if r.Failed() {
			continue
		}
		shown = append(shown, r)
		table.Append(RecordRow(r))
	}
	table.Append(TotalsRow(ComputeTotals(shown)))

	return table.Render()
}

// SectorTable writes the per-sector top/bottom lists and the two
// breakthrough lines.
func SectorTable(w io.Writer, s sector.Summary) error {
	table := tablewriter.NewTable(w,
		tablewriter.WithHeader([]string{"Rating", "Top cao điểm", "Top thấp điểm"}),
	)

	for _, sr := range s.Sectors {
		table.Append([]string{sr.Name, joinEntries(sr.Top), joinEntries(sr.Bottom)})
	}
	table.Append([]string{"Nhóm đột phá", joinMoves(s.BreakthroughUp), ""})
	table.Append([]string{"Nhóm giảm điểm", joinMoves(s.BreakthroughDown), ""})

	return table.Render()
}

// Errors writes one line per failed ticker
func Errors(w io.Writer, errs []string) {
	if len(errs) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%d ticker(s) failed:\n", len(errs))
	for _, e := range errs {
		fmt.Fprintf(w, "  - %s\n", e)
	}
}

func joinEntries(entries []sector.Entry) string {
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}

func joinMoves(moves []sector.Move) string {
	parts := make([]string, len(moves))
	for i, m := range moves {
		parts[i] = m.String()
	}
	return strings.Join(parts, ", ")
}

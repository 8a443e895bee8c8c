// Package render formats batch results for terminals and exports.
package render

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/guregu/null/v6"

	"techtrack/pkg/model"
)

// IndexSector marks index rows, whose prices keep one decimal
const IndexSector = "Index"

// Price formats a close with thousands separators: one decimal for
// indices, whole units for stocks. Undefined prices render empty.
func Price(p null.Float, sector string) string {
	if !p.Valid {
		return ""
	}
	if sector == IndexSector {
		return humanize.FormatFloat("#,###.#", p.Float64)
	}
	return humanize.Comma(int64(p.Float64))
}

// Change formats a percent change as "1.2%"
func Change(c null.Float) string {
	if !c.Valid {
		return ""
	}
	return fmt.Sprintf("%.1f%%", c.Float64)
}

// Num formats an indicator value with four decimals
func Num(v null.Float) string {
	if !v.Valid {
		return ""
	}
	return fmt.Sprintf("%.4f", v.Float64)
}

// Int formats a rating, N/A when unavailable
func Int(v null.Int) string {
	if !v.Valid {
		return "N/A"
	}
	return fmt.Sprintf("%d", v.Int64)
}

// Volume formats a share count with thousands separators
func Volume(v null.Float) string {
	if !v.Valid {
		return ""
	}
	return humanize.Comma(int64(v.Float64))
}

// Flag renders a boolean as the report's Yes/No column
func Flag(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// Totals sums the strength scores and ratings over a set of records
type Totals struct {
	Count        int     `json:"count"`
	StrengthST   float64 `json:"strength_st"`
	StrengthLT   float64 `json:"strength_lt"`
	Rating1      int64   `json:"rating1"`
	Rating1Prev1 int64   `json:"rating1_prev1"`
	Rating1Prev2 int64   `json:"rating1_prev2"`
	Rating2      int64   `json:"rating2"`
	Rating2Prev1 int64   `json:"rating2_prev1"`
	Rating2Prev2 int64   `json:"rating2_prev2"`
}

// ComputeTotals adds up every defined value across records
func ComputeTotals(records []model.Record) Totals {
	t := Totals{Count: len(records)}
	addF := func(dst *float64, v null.Float) {
		if v.Valid {
			*dst += v.Float64
		}
	}
	addI := func(dst *int64, v null.Int) {
		if v.Valid {
			*dst += v.Int64
		}
	}
	for _, r := range records {
		addF(&t.StrengthST, r.Snapshot.StrengthST)
		addF(&t.StrengthLT, r.Snapshot.StrengthLT)
		addI(&t.Rating1, r.Rating1)
		addI(&t.Rating1Prev1, r.Rating1Prev1)
		addI(&t.Rating1Prev2, r.Rating1Prev2)
		addI(&t.Rating2, r.Rating2)
		addI(&t.Rating2Prev1, r.Rating2Prev1)
		addI(&t.Rating2Prev2, r.Rating2Prev2)
	}
	return t
}

// blankZero renders zero totals as empty cells
func blankZero(s string, zero bool) string {
	if zero {
		return ""
	}
	return s
}

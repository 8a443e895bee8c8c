// Package sector ranks analysed tickers within display sectors and
// picks out day-over-day rating breakthroughs.
package sector

import (
	"fmt"
	"sort"
	"strings"

	"techtrack/pkg/model"
)

// BreakthroughThreshold is the Rating1 swing that marks a breakthrough
const BreakthroughThreshold = 10

// Tone classifies a rating for display colouring
type Tone int8

const (
	Zero Tone = iota
	Positive
	Negative
)

func (t Tone) String() string {
	switch t {
	case Positive:
		return "positive"
	case Negative:
		return "negative"
	default:
		return "zero"
	}
}

func (t Tone) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *Tone) UnmarshalText(b []byte) error {
	switch string(b) {
	case "positive":
		*t = Positive
	case "negative":
		*t = Negative
	case "zero":
		*t = Zero
	default:
		return fmt.Errorf("unknown tone %q", b)
	}
	return nil
}

// ToneOf returns the tone of a rating
func ToneOf(rating int) Tone {
	switch {
	case rating > 0:
		return Positive
	case rating < 0:
		return Negative
	default:
		return Zero
	}
}

// Entry is one ranked ticker
type Entry struct {
	Ticker string `json:"ticker"`
	Rating int    `json:"rating"`
	Tone   Tone   `json:"tone"`
}

func (e Entry) String() string {
	return fmt.Sprintf("%s (%d)", e.Ticker, e.Rating)
}

// SectorRanking holds the highest and lowest rated tickers of a sector
type SectorRanking struct {
	Name   string  `json:"name"`
	Top    []Entry `json:"top"`
	Bottom []Entry `json:"bottom"`
}

// Move is a Rating1 change between the previous and current bar
type Move struct {
	Ticker string `json:"ticker"`
	Prev   int    `json:"prev"`
	Cur    int    `json:"cur"`
}

func (m Move) String() string {
	return fmt.Sprintf("%s (%d -> %d)", m.Ticker, m.Prev, m.Cur)
}

// Delta returns Cur - Prev
func (m Move) Delta() int {
	return m.Cur - m.Prev
}

// Summary is the sector view of one batch
type Summary struct {
	Sectors          []SectorRanking `json:"sectors"`
	BreakthroughUp   []Move          `json:"breakthrough_up"`
	BreakthroughDown []Move          `json:"breakthrough_down"`
}

// Summarize groups records by display sector and ranks them by current
// Rating1. Ties keep record order. Sectors with no records are left out;
// records without a current Rating1 are never ranked.
func Summarize(records []model.Record, tax Taxonomy) Summary {
	bySector := make(map[string][]model.Record)
	summary := Summary{
		Sectors:          []SectorRanking{},
		BreakthroughUp:   []Move{},
		BreakthroughDown: []Move{},
	}

	for _, r := range records {
		if Excluded[strings.TrimSpace(r.Sector)] {
			continue
		}
		name := tax.Resolve(r.Sector)
		bySector[name] = append(bySector[name], r)

		if !r.Rating1.Valid || !r.Rating1Prev1.Valid {
			continue
		}
		m := Move{Ticker: r.Ticker, Prev: int(r.Rating1Prev1.Int64), Cur: int(r.Rating1.Int64)}
		switch d := m.Delta(); {
		case d >= BreakthroughThreshold:
			summary.BreakthroughUp = append(summary.BreakthroughUp, m)
		case d <= -BreakthroughThreshold:
			summary.BreakthroughDown = append(summary.BreakthroughDown, m)
		}
	}

	for _, g := range tax.Groups {
		members, ok := bySector[g.Name]
		if !ok {
			continue
		}
		summary.Sectors = append(summary.Sectors, rank(g, members))
	}
	return summary
}

func rank(g Group, records []model.Record) SectorRanking {
	rated := make([]Entry, 0, len(records))
	for _, r := range records {
		if !r.Rating1.Valid {
			continue
		}
		v := int(r.Rating1.Int64)
		rated = append(rated, Entry{Ticker: r.Ticker, Rating: v, Tone: ToneOf(v)})
	}

	desc := append([]Entry(nil), rated...)
	sort.SliceStable(desc, func(i, j int) bool { return desc[i].Rating > desc[j].Rating })

	asc := append([]Entry(nil), rated...)
	sort.SliceStable(asc, func(i, j int) bool { return asc[i].Rating < asc[j].Rating })

	return SectorRanking{
		Name:   g.Name,
		Top:    head(desc, g.Top),
		Bottom: head(asc, g.Bottom),
	}
}

func head(entries []Entry, n int) []Entry {
	switch {
	case n < 0:
		n = 0
	case n > len(entries):
		n = len(entries)
	}
	return entries[:n]
}

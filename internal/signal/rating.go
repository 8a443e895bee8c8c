package signal

import (
	"math"

	"techtrack/pkg/model"
)

// Rating is the pair of integer scores derived from signal counts
type Rating struct {
	Rating1 int `json:"rating1"`
	Rating2 int `json:"rating2"`
}

// Count tallies buy and sell verdicts per family
func Count(set Set) model.Counts {
	var c model.Counts
	for k := Kind(0); k < NumKinds; k++ {
		tally(&c, k.Family(), set[k])
	}
	return c
}

// CountNamed tallies a name-keyed set, ignoring names that are not
// a known kind.
func CountNamed(named map[string]model.Verdict) model.Counts {
	var c model.Counts
	for name, v := range named {
		k, ok := Lookup(name)
		if !ok {
			continue
		}
		tally(&c, k.Family(), v)
	}
	return c
}

func tally(c *model.Counts, f Family, v model.Verdict) {
	switch f {
	case Oscillator:
		switch v {
		case model.Buy:
			c.OscBuy++
		case model.Sell:
			c.OscSell++
		}
	case MovingAverage:
		switch v {
		case model.Buy:
			c.MABuy++
		case model.Sell:
			c.MASell++
		}
	}
}

// Ratings computes
//
//	Rating1 = 2*oscBuy - oscSell + maBuy - maSell
//	Rating2 = 2*oscBuy + maBuy
func Ratings(c model.Counts) Rating {
	return Rating{
		Rating1: 2*c.OscBuy - c.OscSell + c.MABuy - c.MASell,
		Rating2: 2*c.OscBuy + c.MABuy,
	}
}

// Rate evaluates, counts and rates one snapshot
func Rate(s model.Snapshot) (Set, model.Counts, Rating) {
	set := Evaluate(s)
	counts := Count(set)
	return set, counts, Ratings(counts)
}

// Summary is the overall verdict across all signals of a set
type Summary struct {
	Overall      model.Verdict `json:"overall"`
	BuyCount     int           `json:"buy_count"`
	SellCount    int           `json:"sell_count"`
	NeutralCount int           `json:"neutral_count"`
	Total        int           `json:"total"`
	BuyPercent   float64       `json:"buy_pct"`
	SellPercent  float64       `json:"sell_pct"`
}

// Summarize reports the majority verdict, Neutral on a tie
func Summarize(set Set) Summary {
	var s Summary
	for _, v := range set {
		switch v {
		case model.Buy:
			s.BuyCount++
		case model.Sell:
			s.SellCount++
		default:
			s.NeutralCount++
		}
	}
	s.Total = len(set)

	switch {
	case s.BuyCount > s.SellCount:
		s.Overall = model.Buy
	case s.SellCount > s.BuyCount:
		s.Overall = model.Sell
	}
	if s.Total > 0 {
		s.BuyPercent = round1(float64(s.BuyCount) / float64(s.Total) * 100)
		s.SellPercent = round1(float64(s.SellCount) / float64(s.Total) * 100)
	}
	return s
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

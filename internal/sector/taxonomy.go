package sector

import "strings"

// Excluded sector codes never take part in rankings
var Excluded = map[string]bool{"": true, "TOTAL": true, "Index": true}

// Group is one display sector and how many tickers to list at each end
type Group struct {
	Name   string `yaml:"name" json:"name" validate:"required"`
	Top    int    `yaml:"top" json:"top" validate:"gte=0"`
	Bottom int    `yaml:"bottom" json:"bottom" validate:"gte=0"`
}

// Taxonomy maps raw sector codes to display sectors. Several codes may
// share one display name; codes without a mapping keep their raw name.
type Taxonomy struct {
	Mapping map[string]string `yaml:"mapping" json:"mapping"`
	Groups  []Group           `yaml:"groups" json:"groups" validate:"dive"`
}

// DefaultTaxonomy returns the Vietnamese-market grouping used by the
// daily report.
func DefaultTaxonomy() Taxonomy {
	const (
		securities   = "Chứng khoán"
		realEstate   = "Bất động sản"
		construction = "Xây dựng & ĐTC, VLXD"
		energy       = "Dầu, Hàng không, Agri"
		export       = "Xuất khẩu"
		banking      = "Ngân hàng"
		fav          = "FAV"
	)
	return Taxonomy{
		Mapping: map[string]string{
			"CK":   securities,
			"BDS":  realEstate,
			"DTC":  construction,
			"XD":   construction,
			"VLXD": construction,
			"DAU":  energy,
			"HK":   energy,
			"AGRI": energy,
			"XK":   export,
			"NH":   banking,
			"FAV":  fav,
		},
		Groups: []Group{
			{Name: securities, Top: 3, Bottom: 3},
			{Name: realEstate, Top: 3, Bottom: 3},
			{Name: construction, Top: 3, Bottom: 3},
			{Name: energy, Top: 3, Bottom: 3},
			{Name: export, Top: 2, Bottom: 2},
			{Name: banking, Top: 3, Bottom: 3},
			{Name: fav, Top: 3, Bottom: 3},
		},
	}
}

// Resolve returns the display sector for a raw code
func (t Taxonomy) Resolve(code string) string {
	code = strings.TrimSpace(code)
	if name, ok := t.Mapping[code]; ok {
		return name
	}
	return code
}

// Codes returns the raw codes mapped to a display sector, in no
// particular order.
func (t Taxonomy) Codes(name string) []string {
	var codes []string
	for code, n := range t.Mapping {
		if n == name {
			codes = append(codes, code)
		}
	}
	return codes
}

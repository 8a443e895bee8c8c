package symbols

import "techtrack/pkg/model"

// Universe represents a predefined ticker list
type Universe string

const (
	UniverseVN30    Universe = "vn30"
	UniverseIndices Universe = "indices"
	UniverseTest    Universe = "test" // Small set for testing
)

// GetUniverse returns the stocks of a predefined universe, or nil
func GetUniverse(u Universe) []model.Stock {
	var src []model.Stock
	switch u {
	case UniverseVN30:
		src = append(append(src, Indices...), VN30...)
	case UniverseIndices:
		src = Indices
	case UniverseTest:
		src = TestStocks
	default:
		return nil
	}
	return append([]model.Stock(nil), src...)
}

// Indices are the market indices tracked alongside stocks
var Indices = []model.Stock{
	{Ticker: "VNINDEX", Sector: "Index", Exchange: "INDEX"},
	{Ticker: "VNMID", Sector: "Index", Exchange: "INDEX"},
}

// TestStocks is a small set for quick testing
var TestStocks = []model.Stock{
	{Ticker: "VNINDEX", Sector: "Index", Exchange: "INDEX"},
	{Ticker: "SSI", Sector: "CK", Exchange: "HOSE"},
	{Ticker: "VCB", Sector: "NH", Exchange: "HOSE"},
	{Ticker: "HPG", Sector: "VLXD", Exchange: "HOSE"},
	{Ticker: "SHS", Sector: "CK", Exchange: "HNX"},
}

// VN30 is the VN30 basket (2024 composition) with report sector codes
var VN30 = []model.Stock{
	{Ticker: "ACB", Sector: "NH", Exchange: "HOSE"},
	{Ticker: "BCM", Sector: "BDS", Exchange: "HOSE"},
	{Ticker: "BID", Sector: "NH", Exchange: "HOSE"},
	{Ticker: "BVH", Sector: "BH", Exchange: "HOSE"},
	{Ticker: "CTG", Sector: "NH", Exchange: "HOSE"},
	{Ticker: "FPT", Sector: "CN", Exchange: "HOSE"},
	{Ticker: "GAS", Sector: "DAU", Exchange: "HOSE"},
	{Ticker: "GVR", Sector: "AGRI", Exchange: "HOSE"},
	{Ticker: "HDB", Sector: "NH", Exchange: "HOSE"},
	{Ticker: "HPG", Sector: "VLXD", Exchange: "HOSE"},
	{Ticker: "MBB", Sector: "NH", Exchange: "HOSE"},
	{Ticker: "MSN", Sector: "FAV", Exchange: "HOSE"},
	{Ticker: "MWG", Sector: "FAV", Exchange: "HOSE"},
	{Ticker: "PLX", Sector: "DAU", Exchange: "HOSE"},
	{Ticker: "POW", Sector: "DAU", Exchange: "HOSE"},
	{Ticker: "SAB", Sector: "FAV", Exchange: "HOSE"},
	{Ticker: "SHB", Sector: "NH", Exchange: "HOSE"},
	{Ticker: "SSB", Sector: "NH", Exchange: "HOSE"},
	{Ticker: "SSI", Sector: "CK", Exchange: "HOSE"},
	{Ticker: "STB", Sector: "NH", Exchange: "HOSE"},
	{Ticker: "TCB", Sector: "NH", Exchange: "HOSE"},
	{Ticker: "TPB", Sector: "NH", Exchange: "HOSE"},
	{Ticker: "VCB", Sector: "NH", Exchange: "HOSE"},
	{Ticker: "VHM", Sector: "BDS", Exchange: "HOSE"},
	{Ticker: "VIB", Sector: "NH", Exchange: "HOSE"},
	{Ticker: "VIC", Sector: "BDS", Exchange: "HOSE"},
	{Ticker: "VJC", Sector: "HK", Exchange: "HOSE"},
	{Ticker: "VNM", Sector: "XK", Exchange: "HOSE"},
	{Ticker: "VPB", Sector: "NH", Exchange: "HOSE"},
	{Ticker: "VRE", Sector: "BDS", Exchange: "HOSE"},
}

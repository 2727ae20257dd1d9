package resolve

import "consumo_wpp_backend/internal/catalog"

// StockPointService resolves the warehouse the input came from.
type StockPointService struct{}

func NewStockPointService() *StockPointService {
	return &StockPointService{}
}

// Resolve returns the plausible stock points. A grower with a single
// stock point gets it as the implicit default even when none was named.
// A named stock point fuzzy-matches against all entries; every match is
// returned and the caller disambiguates. Unnamed with several entries
// resolves to nothing.
func (s *StockPointService) Resolve(mentioned string, points []catalog.StockPoint) []catalog.StockPoint {
	if len(points) == 0 {
		return nil
	}
	if len(points) == 1 {
		return points[:1]
	}
	if mentioned == "" {
		return nil
	}

	byName := map[string][]catalog.StockPoint{}
	names := make([]string, 0, len(points))
	for _, p := range points {
		byName[p.Name] = append(byName[p.Name], p)
		names = append(names, p.Name)
	}

	var out []catalog.StockPoint
	for _, m := range matchNames(mentioned, names, nameScoreCutoff) {
		out = append(out, byName[m.Name]...)
	}
	return out
}

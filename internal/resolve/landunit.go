package resolve

import "consumo_wpp_backend/internal/catalog"

// LandUnitService resolves allocation targets: plots (via plantings)
// and whole properties.
type LandUnitService struct{}

func NewLandUnitService() *LandUnitService {
	return &LandUnitService{}
}

// ResolvePlot matches a mentioned plot name against the plantings of
// the grower, since allocations reference the planting, not the bare
// plot. Every fuzzy match above the cutoff is returned.
func (s *LandUnitService) ResolvePlot(mentioned string, plantings []catalog.Planting) []catalog.Planting {
	byName := map[string][]catalog.Planting{}
	names := make([]string, 0, len(plantings))
	for _, p := range plantings {
		byName[p.PlotName] = append(byName[p.PlotName], p)
		names = append(names, p.PlotName)
	}

	var out []catalog.Planting
	for _, m := range matchNames(mentioned, names, nameScoreCutoff) {
		out = append(out, byName[m.Name]...)
	}
	return out
}

// ResolveProperty matches a mentioned property name against the
// grower's farms.
func (s *LandUnitService) ResolveProperty(mentioned string, properties []catalog.Property) []catalog.Property {
	byName := map[string][]catalog.Property{}
	names := make([]string, 0, len(properties))
	for _, p := range properties {
		byName[p.Name] = append(byName[p.Name], p)
		names = append(names, p.Name)
	}

	var out []catalog.Property
	for _, m := range matchNames(mentioned, names, nameScoreCutoff) {
		out = append(out, byName[m.Name]...)
	}
	return out
}

package resolve

import (
	"strings"

	"consumo_wpp_backend/internal/catalog"
)

// MachineService resolves tractors, sprayers and other fixed assets.
type MachineService struct{}

func NewMachineService() *MachineService {
	return &MachineService{}
}

// Resolve finds machines for a search term. An exact case-insensitive
// serial number match wins outright; otherwise every name fuzzy-match
// above the cutoff is returned.
func (s *MachineService) Resolve(term string, machines []catalog.Machine) []catalog.Machine {
	if len(machines) == 0 {
		return nil
	}

	lowered := strings.ToLower(term)
	for i, m := range machines {
		if m.SerialNumber != "" && strings.ToLower(m.SerialNumber) == lowered {
			return machines[i : i+1]
		}
	}

	byName := map[string][]catalog.Machine{}
	names := make([]string, 0, len(machines))
	for _, m := range machines {
		byName[m.Name] = append(byName[m.Name], m)
		names = append(names, m.Name)
	}

	var out []catalog.Machine
	for _, match := range matchNames(term, names, nameScoreCutoff) {
		out = append(out, byName[match.Name]...)
	}
	return out
}

package consumption

import "strings"

// Verify audits a resolved record before it is persisted. The checks
// are deterministic rules; a violation returns one combined friendly
// message that never exposes internal field names.
func Verify(rec ResolvedConsumption) (bool, string) {
	var missing []string

	if len(rec.Products) == 0 {
		missing = append(missing, "qual produto foi utilizado")
	} else {
		for _, p := range rec.Products {
			if p.ID == "" || p.Quantity <= 0 {
				missing = append(missing, "o produto e a quantidade aplicada")
				break
			}
		}
	}

	if rec.StockPointID == "" {
		missing = append(missing, "de qual estoque o produto saiu")
	}
	if rec.HarvestID == "" {
		missing = append(missing, "a qual safra o consumo pertence")
	}
	if rec.Date.IsZero() {
		missing = append(missing, "em que dia foi a aplicação")
	}

	switch rec.AllocationKind {
	case AllocationPlot:
		if len(rec.PlantingIDs) == 0 {
			missing = append(missing, "em qual talhão foi feita a aplicação")
		}
	case AllocationProperty:
		if len(rec.PropertyIDs) == 0 {
			missing = append(missing, "em qual propriedade foi feita a aplicação")
		}
	default:
		missing = append(missing, "onde foi feita a aplicação")
	}

	for _, m := range rec.Machines {
		if m.ID == "" || m.HourStart == nil || m.HourEnd == nil {
			missing = append(missing, "os horímetros inicial e final da máquina utilizada")
			break
		}
	}

	if len(missing) == 0 {
		return true, ""
	}
	return false, "Antes de salvar, preciso confirmar " + joinNatural(missing) + ". Poderia me informar, por favor?"
}

// joinNatural joins items as "a, b e c".
func joinNatural(items []string) string {
	switch len(items) {
	case 1:
		return items[0]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " e " + items[len(items)-1]
	}
}

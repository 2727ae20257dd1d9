package consumption

import "strings"

// QuestionPrefix opens every clarification asking for missing fields.
const QuestionPrefix = "Para registrar o consumo, preciso de mais algumas informações: "

const (
	questionProduct    = "Qual foi o produto utilizado?"
	questionQuantity   = "Qual foi a quantidade consumida?"
	questionAllocation = "Em qual propriedade ou talhão foi feita a aplicação?"
)

// CheckCompleteness validates the mandatory minimum of a reported
// record: at least one product with a non-empty quantity, plus an
// allocation target consistent with the allocation kind. The second
// return is the clarification question when the record is incomplete.
func CheckCompleteness(rec ReportedConsumption) (bool, string) {
	var questions []string

	if len(rec.Products) == 0 {
		questions = append(questions, questionProduct)
	} else {
		for _, p := range rec.Products {
			if strings.TrimSpace(p.Quantity) == "" {
				questions = append(questions, questionQuantity)
				break
			}
		}
	}

	if !hasAllocationTarget(rec) {
		questions = append(questions, questionAllocation)
	}

	if len(questions) == 0 {
		return true, ""
	}
	return false, QuestionPrefix + strings.Join(questions, " ")
}

func hasAllocationTarget(rec ReportedConsumption) bool {
	switch rec.AllocationKind {
	case AllocationPlot:
		return len(rec.Plots) > 0
	case AllocationProperty:
		return len(rec.Properties) > 0
	default:
		return false
	}
}

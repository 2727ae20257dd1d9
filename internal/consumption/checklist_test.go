package consumption

import (
	"strings"
	"testing"
)

func TestCheckCompleteness_CompletePlotRecord(t *testing.T) {
	rec := ReportedConsumption{
		Products:       []ReportedProduct{{Name: "Tordon", Quantity: "15 litros"}},
		AllocationKind: AllocationPlot,
		Plots:          []string{"T-04"},
	}

	ok, question := CheckCompleteness(rec)
	if !ok {
		t.Fatalf("expected complete, got question %q", question)
	}
}

func TestCheckCompleteness_MissingEverything(t *testing.T) {
	ok, question := CheckCompleteness(ReportedConsumption{})
	if ok {
		t.Fatal("expected incomplete")
	}
	if !strings.HasPrefix(question, QuestionPrefix) {
		t.Fatalf("question missing prefix: %q", question)
	}
	if !strings.Contains(question, "Qual foi o produto utilizado?") {
		t.Fatalf("expected product question, got %q", question)
	}
	if !strings.Contains(question, "Em qual propriedade ou talhão foi feita a aplicação?") {
		t.Fatalf("expected allocation question, got %q", question)
	}
	if strings.Contains(question, "Qual foi a quantidade consumida?") {
		t.Fatalf("quantity question should not appear without a product: %q", question)
	}
}

func TestCheckCompleteness_ProductWithoutQuantity(t *testing.T) {
	rec := ReportedConsumption{
		Products:       []ReportedProduct{{Name: "Tordon"}},
		AllocationKind: AllocationProperty,
		Properties:     []string{"Fazenda Santa Rita"},
	}

	ok, question := CheckCompleteness(rec)
	if ok {
		t.Fatal("expected incomplete")
	}
	if !strings.Contains(question, "Qual foi a quantidade consumida?") {
		t.Fatalf("expected quantity question, got %q", question)
	}
}

func TestCheckCompleteness_PropertyKindRequiresProperties(t *testing.T) {
	rec := ReportedConsumption{
		Products:       []ReportedProduct{{Name: "Tordon", Quantity: "2"}},
		AllocationKind: AllocationProperty,
		Plots:          []string{"T-04"},
	}

	ok, _ := CheckCompleteness(rec)
	if ok {
		t.Fatal("plots do not satisfy a property allocation")
	}
}

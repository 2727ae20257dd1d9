package resolve

import (
	"testing"

	"consumo_wpp_backend/internal/catalog"
)

func TestStockPointResolve_SingleEntryIsImplicitDefault(t *testing.T) {
	svc := NewStockPointService()
	points := []catalog.StockPoint{{ID: "1", Name: "Depósito Central"}}

	got := svc.Resolve("", points)
	if len(got) != 1 || got[0].ID != "1" {
		t.Fatalf("expected the sole stock point, got %+v", got)
	}
}

func TestStockPointResolve_UnnamedWithSeveralEntriesResolvesNothing(t *testing.T) {
	svc := NewStockPointService()
	points := []catalog.StockPoint{
		{ID: "1", Name: "Depósito Central"},
		{ID: "2", Name: "Galpão Sul"},
	}

	if got := svc.Resolve("", points); len(got) != 0 {
		t.Fatalf("expected empty, got %+v", got)
	}
}

func TestStockPointResolve_NamedMatchesFuzzy(t *testing.T) {
	svc := NewStockPointService()
	points := []catalog.StockPoint{
		{ID: "1", Name: "Depósito Central"},
		{ID: "2", Name: "Galpão Sul"},
	}

	got := svc.Resolve("deposito central", points)
	if len(got) != 1 || got[0].ID != "1" {
		t.Fatalf("expected stock point 1, got %+v", got)
	}
}

func TestStockPointResolve_NamedWithoutMatch(t *testing.T) {
	svc := NewStockPointService()
	points := []catalog.StockPoint{
		{ID: "1", Name: "Depósito Central"},
		{ID: "2", Name: "Galpão Sul"},
	}

	if got := svc.Resolve("armazém do rio", points); len(got) != 0 {
		t.Fatalf("expected empty, got %+v", got)
	}
}

func TestStockPointResolve_NoEntries(t *testing.T) {
	svc := NewStockPointService()
	if got := svc.Resolve("qualquer", nil); got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
}

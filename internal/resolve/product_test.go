package resolve

import (
	"context"
	"testing"

	"consumo_wpp_backend/internal/catalog"
	"consumo_wpp_backend/platform/logger"
)

type fakeGateway struct {
	catalog.Gateway

	inStock  []catalog.Product
	recent   []catalog.Product
	askedFor [][]string
}

func (f *fakeGateway) ProductsInStock(_ context.Context, _ string, names []string) ([]catalog.Product, error) {
	f.askedFor = append(f.askedFor, names)
	return f.inStock, nil
}

func (f *fakeGateway) RecentlyConsumedProducts(_ context.Context, _ string, names []string) ([]catalog.Product, error) {
	f.askedFor = append(f.askedFor, names)
	return f.recent, nil
}

var productCatalog = []catalog.Product{
	{ID: "1", Name: "Tordon XT"},
	{ID: "2", Name: "Tordon Ultra"},
	{ID: "3", Name: "Roundup Original", ActiveIngredients: []string{"Glifosato"}},
	{ID: "4", Name: "Zapp QI", ActiveIngredients: []string{"Glifosato"}},
	{ID: "5", Name: "Calda Bordalesa"},
}

func TestProductResolve_SingleCandidateSkipsEnrichment(t *testing.T) {
	gw := &fakeGateway{}
	svc := NewProductService(gw, logger.New("test"))

	res, err := svc.Resolve(context.Background(), "350", "calda bordalesa", productCatalog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Product == nil || res.Product.ID != "5" {
		t.Fatalf("expected product 5, got %+v", res)
	}
	if len(gw.askedFor) != 0 {
		t.Fatal("single candidate must not trigger enrichment calls")
	}
}

func TestProductResolve_NotFound(t *testing.T) {
	svc := NewProductService(&fakeGateway{}, logger.New("test"))

	res, err := svc.Resolve(context.Background(), "350", "nitrato de amonio", productCatalog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Product != nil || len(res.Candidates) != 0 {
		t.Fatalf("expected not found, got %+v", res)
	}
}

func TestProductResolve_RecentConsumptionBreaksTie(t *testing.T) {
	gw := &fakeGateway{
		recent:  []catalog.Product{{ID: "2", Name: "Tordon Ultra"}},
		inStock: []catalog.Product{{ID: "1", Name: "Tordon XT"}, {ID: "2", Name: "Tordon Ultra"}},
	}
	svc := NewProductService(gw, logger.New("test"))

	res, err := svc.Resolve(context.Background(), "350", "tordon", productCatalog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Product == nil || res.Product.ID != "2" {
		t.Fatalf("expected recently consumed product 2, got %+v", res)
	}
}

func TestProductResolve_StockBreaksTieWhenRecentDoesNot(t *testing.T) {
	gw := &fakeGateway{
		inStock: []catalog.Product{{ID: "1", Name: "Tordon XT"}},
	}
	svc := NewProductService(gw, logger.New("test"))

	res, err := svc.Resolve(context.Background(), "350", "tordon", productCatalog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Product == nil || res.Product.ID != "1" {
		t.Fatalf("expected in-stock product 1, got %+v", res)
	}
}

func TestProductResolve_ResidualAmbiguityNamesContenders(t *testing.T) {
	gw := &fakeGateway{
		recent: []catalog.Product{{ID: "1"}, {ID: "2"}},
	}
	svc := NewProductService(gw, logger.New("test"))

	res, err := svc.Resolve(context.Background(), "350", "tordon", productCatalog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Product != nil {
		t.Fatalf("expected ambiguity, got %+v", res.Product)
	}
	if len(res.Candidates) != 2 {
		t.Fatalf("expected 2 contenders, got %d", len(res.Candidates))
	}
}

func TestProductResolve_IngredientFallback(t *testing.T) {
	gw := &fakeGateway{
		recent: []catalog.Product{{ID: "4"}},
	}
	svc := NewProductService(gw, logger.New("test"))

	res, err := svc.Resolve(context.Background(), "350", "glifosato", productCatalog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Product == nil || res.Product.ID != "4" {
		t.Fatalf("expected ingredient match narrowed by recent use, got %+v", res)
	}
}

func TestTieBreak_NarrowingKeepsSubsetAsAmbiguity(t *testing.T) {
	a := catalog.Product{ID: "1", Name: "A"}
	b := catalog.Product{ID: "2", Name: "B"}
	c := catalog.Product{ID: "3", Name: "C"}

	res := tieBreak(CandidateSet{
		Similar:      []catalog.Product{a, b, c},
		RecentlyUsed: []catalog.Product{a, b},
		InStock:      nil,
	})

	if res.Product != nil {
		t.Fatalf("expected ambiguity, got %+v", res.Product)
	}
	if len(res.Candidates) != 2 || res.Candidates[0].ID != "1" || res.Candidates[1].ID != "2" {
		t.Fatalf("expected narrowed set {1,2}, got %+v", res.Candidates)
	}
}

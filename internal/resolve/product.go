package resolve

import (
	"context"

	"consumo_wpp_backend/internal/catalog"
	"consumo_wpp_backend/platform/logger"
)

// ProductResolution is the outcome of resolving one mentioned product.
// Exactly one case holds: Product set (resolved), Candidates set
// (ambiguous, listing the competitors), or neither (not found).
type ProductResolution struct {
	Product    *catalog.Product
	Candidates []catalog.Product
}

// CandidateSet carries the three lists the tie-break rule consumes.
type CandidateSet struct {
	Similar      []catalog.Product
	InStock      []catalog.Product
	RecentlyUsed []catalog.Product
}

// ProductService resolves product names against the grower's catalog.
type ProductService struct {
	gateway catalog.Gateway
	log     *logger.Logger
}

func NewProductService(gateway catalog.Gateway, log *logger.Logger) *ProductService {
	return &ProductService{gateway: gateway, log: log}
}

// Resolve finds the catalog product for a mentioned name. Name
// similarity first; when no name matches, active-ingredient similarity
// with a stricter cutoff. A single candidate resolves immediately.
// Multiple candidates are narrowed by recent consumption, then stock.
func (s *ProductService) Resolve(ctx context.Context, growerID, mentioned string, products []catalog.Product) (ProductResolution, error) {
	candidates := s.candidates(mentioned, products)
	if len(candidates) == 0 {
		return ProductResolution{}, nil
	}
	if len(candidates) == 1 {
		return ProductResolution{Product: &candidates[0]}, nil
	}

	names := make([]string, 0, len(candidates))
	for _, c := range candidates {
		names = append(names, c.Name)
	}

	set := CandidateSet{Similar: candidates}
	var err error
	set.RecentlyUsed, err = s.gateway.RecentlyConsumedProducts(ctx, growerID, names)
	if err != nil {
		return ProductResolution{}, err
	}
	set.InStock, err = s.gateway.ProductsInStock(ctx, growerID, names)
	if err != nil {
		return ProductResolution{}, err
	}

	return tieBreak(set), nil
}

// candidates applies the two-stage similarity search and dedups by id.
func (s *ProductService) candidates(mentioned string, products []catalog.Product) []catalog.Product {
	byName := map[string][]catalog.Product{}
	nameList := make([]string, 0, len(products))
	for _, p := range products {
		byName[p.Name] = append(byName[p.Name], p)
		nameList = append(nameList, p.Name)
	}

	var picked []catalog.Product
	for _, m := range matchNames(mentioned, nameList, nameScoreCutoff) {
		picked = append(picked, byName[m.Name]...)
	}

	if len(picked) == 0 {
		for _, p := range products {
			if len(matchNames(mentioned, p.ActiveIngredients, ingredientScoreCutoff)) > 0 {
				picked = append(picked, p)
			}
		}
	}

	return dedupByID(picked)
}

// tieBreak narrows multiple candidates: recently consumed wins over
// merely in stock, which wins over a bare name match. A narrowing step
// that leaves several products keeps them as the ambiguity set, so the
// clarification question names only real contenders.
func tieBreak(set CandidateSet) ProductResolution {
	candidates := set.Similar

	for _, pool := range [][]catalog.Product{set.RecentlyUsed, set.InStock} {
		narrowed := intersectByID(candidates, pool)
		if len(narrowed) == 1 {
			return ProductResolution{Product: &narrowed[0]}
		}
		if len(narrowed) > 1 {
			candidates = narrowed
		}
	}

	return ProductResolution{Candidates: candidates}
}

func dedupByID(products []catalog.Product) []catalog.Product {
	seen := map[string]bool{}
	out := make([]catalog.Product, 0, len(products))
	for _, p := range products {
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		out = append(out, p)
	}
	return out
}

func intersectByID(base, pool []catalog.Product) []catalog.Product {
	inPool := map[string]bool{}
	for _, p := range pool {
		inPool[p.ID] = true
	}
	var out []catalog.Product
	for _, p := range base {
		if inPool[p.ID] {
			out = append(out, p)
		}
	}
	return out
}

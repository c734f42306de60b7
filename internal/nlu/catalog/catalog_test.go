package catalog_test

import (
	"context"
	"testing"

	"booking-assistant-nlu/internal/nlu/catalog"
)

func TestResolve(t *testing.T) {
	r := catalog.NewFuzzyResolver(catalog.DefaultEntries())
	ctx := context.Background()

	t.Run("Exact Name", func(t *testing.T) {
		res, err := r.Resolve(ctx, "Sofa Cleaning")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !res.Resolved || res.Method != "exact" {
			t.Fatalf("expected exact resolution, got %+v", res)
		}
		if res.SubcategoryID != "sub_sofa_clean" {
			t.Errorf("expected sub_sofa_clean, got %s", res.SubcategoryID)
		}
		if res.Confidence != 1.0 {
			t.Errorf("expected confidence 1.0, got %f", res.Confidence)
		}
	})

	t.Run("Exact Alias", func(t *testing.T) {
		res, _ := r.Resolve(ctx, "fridge repair")
		if !res.Resolved || res.SubcategoryID != "sub_fridge" {
			t.Errorf("expected fridge entry via alias, got %+v", res)
		}
	})

	t.Run("Typo Resolves Fuzzily", func(t *testing.T) {
		res, _ := r.Resolve(ctx, "sofa cleanng")
		if !res.Resolved {
			t.Fatalf("expected typo to resolve, got %+v", res)
		}
		if res.SubcategoryID != "sub_sofa_clean" {
			t.Errorf("expected sub_sofa_clean, got %+v", res)
		}
		if res.Method != "fuzzy" {
			t.Errorf("expected fuzzy method, got %s", res.Method)
		}
	})

	t.Run("Unknown Text", func(t *testing.T) {
		res, _ := r.Resolve(ctx, "quantum flux capacitor")
		if res.Resolved {
			t.Errorf("expected unresolved, got %+v", res)
		}
	})

	t.Run("Empty Text", func(t *testing.T) {
		res, _ := r.Resolve(ctx, "   ")
		if res.Resolved {
			t.Errorf("expected unresolved for blank input, got %+v", res)
		}
	})

	t.Run("Cached Result Is Stable", func(t *testing.T) {
		first, _ := r.Resolve(ctx, "deep clean")
		second, _ := r.Resolve(ctx, "deep clean")
		if first.SubcategoryID != second.SubcategoryID || first.Confidence != second.Confidence {
			t.Errorf("cache returned different results: %+v vs %+v", first, second)
		}
	})
}

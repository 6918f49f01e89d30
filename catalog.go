package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// neighborCount is how many nearest catalog items a query retrieves before
// the top slice is taken. Capped to the catalog size for tiny catalogs.
const neighborCount = 5

// topRecommendations is how many of the retrieved neighbors are returned,
// in distance order. The vegetarian filter runs after this slice, so callers
// can legitimately receive fewer items.
const topRecommendations = 3

// Fixed heuristic profile for the query vector: only the calorie component
// varies with the meal budget, the macro components are constants tuned for a
// typical balanced plate.
const (
	queryProteinG = 18
	queryFatG     = 7
	queryCarbsG   = 22
)

// nonVegetarianMarkers are matched case-insensitively against item names by
// the vegetarian post-filter.
var nonVegetarianMarkers = []string{"chicken", "egg", "fish"}

/* ─── Index ──────────────────────────────────────────────────────────── */

// foodIndex is a nearest-neighbor index over the 4-dimensional feature vector
// (calories, protein, fat, carbs) of the food catalog. Built exactly once at
// startup and never mutated afterwards, so it is safe for concurrent readers
// with no locking. The catalog is small enough that exhaustive distance
// scanning beats any tree structure.
type foodIndex struct {
	items    []foodItem
	features [][4]float64
}

// buildFoodIndex constructs the index from catalog rows. A nil or empty slice
// yields a usable index that answers every query with no results.
func buildFoodIndex(items []foodItem) *foodIndex {
	ix := &foodIndex{
		items:    items,
		features: make([][4]float64, len(items)),
	}
	for i, it := range items {
		ix.features[i] = [4]float64{it.Calories, it.Protein, it.Fat, it.Carbs}
	}
	return ix
}

func (ix *foodIndex) size() int { return len(ix.items) }

// nearest returns up to k catalog items ordered by ascending Euclidean
// distance to target. Ties keep catalog order, so identical catalogs always
// produce identical rankings.
func (ix *foodIndex) nearest(target [4]float64, k int) []foodItem {
	if k > len(ix.items) {
		k = len(ix.items)
	}
	if k <= 0 {
		return nil
	}

	type ranked struct {
		pos  int
		dist float64
	}
	all := make([]ranked, len(ix.items))
	for i, f := range ix.features {
		var sum float64
		for d := 0; d < 4; d++ {
			delta := f[d] - target[d]
			sum += delta * delta
		}
		all[i] = ranked{pos: i, dist: math.Sqrt(sum)}
	}
	sort.SliceStable(all, func(a, b int) bool { return all[a].dist < all[b].dist })

	out := make([]foodItem, k)
	for i := 0; i < k; i++ {
		out[i] = ix.items[all[i].pos]
	}
	return out
}

// recommendFor maps a single meal's calorie budget onto catalog items: build
// the fixed heuristic query vector, retrieve the nearest neighbors, keep the
// top slice, then apply the vegetarian filter. An empty catalog produces an
// empty (non-nil) result rather than an error.
func (ix *foodIndex) recommendFor(mealCalories float64, vegetarianOnly bool) []recommendedFood {
	target := [4]float64{mealCalories / 4, queryProteinG, queryFatG, queryCarbsG}

	neighbors := ix.nearest(target, neighborCount)
	if len(neighbors) > topRecommendations {
		neighbors = neighbors[:topRecommendations]
	}

	out := make([]recommendedFood, 0, len(neighbors))
	for _, it := range neighbors {
		if vegetarianOnly && !isVegetarianSafe(it.Name) {
			continue
		}
		out = append(out, recommendedFood{
			Name:     it.Name,
			Calories: it.Calories,
			Protein:  it.Protein,
		})
	}
	return out
}

// isVegetarianSafe reports whether an item name carries none of the
// non-vegetarian markers. Substring match, case-insensitive.
func isVegetarianSafe(name string) bool {
	lower := strings.ToLower(name)
	for _, marker := range nonVegetarianMarkers {
		if strings.Contains(lower, marker) {
			return false
		}
	}
	return true
}

/* ─── Catalog loading ────────────────────────────────────────────────── */

// loadCatalog reads the full food catalog in id order. Called once at startup
// to feed buildFoodIndex; the table is treated as immutable afterwards.
func loadCatalog(ctx context.Context, pool *pgxpool.Pool) ([]foodItem, error) {
	rows, err := pool.Query(ctx, "SELECT * FROM food_catalog ORDER BY id")
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[foodItem])
}

// loadCatalogCSV reads catalog rows from the seed CSV (header: Food, Calories,
// Protein, Fat, Carbs). Used by the no-database mode; cmd/seed-catalog loads
// the same file into Postgres.
func loadCatalogCSV(path string) ([]foodItem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(records) < 2 {
		return nil, nil
	}

	items := make([]foodItem, 0, len(records)-1)
	for i, rec := range records[1:] {
		if len(rec) != 5 {
			return nil, fmt.Errorf("%s row %d: want 5 columns, got %d", path, i+2, len(rec))
		}
		item := foodItem{ID: i + 1, Name: rec[0]}
		for j, dst := range []*float64{&item.Calories, &item.Protein, &item.Fat, &item.Carbs} {
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[j+1]), 64)
			if err != nil {
				return nil, fmt.Errorf("%s row %d: %w", path, i+2, err)
			}
			*dst = v
		}
		items = append(items, item)
	}
	return items, nil
}

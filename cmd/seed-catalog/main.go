// CLI tool to load db/foods.csv into the food_catalog table.
// Rerunning updates nutrition values for existing names and adds new rows;
// it never deletes, so ids (and therefore index order) stay stable.
// Usage: go run ./cmd/seed-catalog (from the repo root)
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
)

const csvPath = "db/foods.csv"

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading .env file: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, os.Getenv("DB_URL"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close(ctx)

	f, err := os.Open(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening %s: %v\n", csvPath, err)
		os.Exit(1)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing %s: %v\n", csvPath, err)
		os.Exit(1)
	}
	if len(records) < 2 {
		fmt.Fprintf(os.Stderr, "%s has no data rows\n", csvPath)
		os.Exit(1)
	}

	// Header is Food,Calories,Protein,Fat,Carbs; all rows go in one
	// transaction so a bad row leaves the catalog untouched.
	tx, err := conn.Begin(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error starting transaction: %v\n", err)
		os.Exit(1)
	}

	seeded := 0
	for i, rec := range records[1:] {
		if len(rec) != 5 {
			tx.Rollback(ctx)
			fmt.Fprintf(os.Stderr, "Row %d: want 5 columns, got %d\n", i+2, len(rec))
			os.Exit(1)
		}
		nums := make([]float64, 4)
		for j := range nums {
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[j+1]), 64)
			if err != nil {
				tx.Rollback(ctx)
				fmt.Fprintf(os.Stderr, "Row %d: %v\n", i+2, err)
				os.Exit(1)
			}
			nums[j] = v
		}

		_, err := tx.Exec(ctx,
			`INSERT INTO food_catalog (name, calories, protein, fat, carbs)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (name) DO UPDATE SET
				calories = EXCLUDED.calories,
				protein  = EXCLUDED.protein,
				fat      = EXCLUDED.fat,
				carbs    = EXCLUDED.carbs`,
			rec[0], nums[0], nums[1], nums[2], nums[3])
		if err != nil {
			tx.Rollback(ctx)
			fmt.Fprintf(os.Stderr, "Row %d (%s): %v\n", i+2, rec[0], err)
			os.Exit(1)
		}
		seeded++
	}

	if err := tx.Commit(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error committing: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%d catalog item(s) seeded.\n", seeded)
}

package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

// catalogCSVPath feeds the catalog index when no database is configured.
const catalogCSVPath = "db/foods.csv"

func main() {
	log.SetPrefix("lg/fitness-dashboard-go-api: ")
	log.SetFlags(0)

	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	h := &Handler{}
	if os.Getenv("DB_URL") != "" {
		pool := getDBPool()
		h.db = pool
		h.ledger = newPostgresLedger(pool)
		h.game = newPostgresGamification(pool)

		items, err := loadCatalog(context.Background(), pool)
		if err != nil {
			log.Fatalf("failed to load food catalog: %v", err)
		}
		h.catalog = buildFoodIndex(items)
	} else {
		// Single-process mode: in-memory stores, catalog straight from CSV.
		// Everything runs as the demo user; nothing survives a restart.
		log.Println("DB_URL not set — running with in-memory stores")
		h.ledger = newMemoryLedger()
		h.game = newMemoryGamification()

		items, err := loadCatalogCSV(catalogCSVPath)
		if err != nil {
			log.Printf("failed to load %s: %v", catalogCSVPath, err)
		}
		h.catalog = buildFoodIndex(items)
	}
	if h.catalog.size() == 0 {
		log.Println("food catalog is empty — recommendations will return no items")
	}

	router := gin.Default()
	router.SetTrustedProxies(nil)

	// rs/cors is net/http middleware; run it inside gin and short-circuit
	// preflight requests before they reach the route handlers.
	corsMW := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE"},
		AllowedHeaders: []string{"*"},
	})
	router.Use(func(c *gin.Context) {
		corsMW.HandlerFunc(c.Writer, c.Request)
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	h.registerRoutes(router)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("listening on :%s", port)
	router.Run(":" + port)
}

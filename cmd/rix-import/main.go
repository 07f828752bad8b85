// rix-import mirrors a JSON pattern corpus into a SQLite database.
package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/infopercept/rix/internal/adapters/corpusfile"
	"github.com/infopercept/rix/internal/adapters/storage"
	"github.com/infopercept/rix/internal/core/domain"
)

func main() {
	corpusDir := flag.String("corpus", "patterns", "Path to the pattern corpus directory")
	dbPath := flag.String("db", "./data/rix.db", "Path to SQLite database")
	flag.Parse()

	log.Println("=== Corpus Importer ===")
	log.Printf("Corpus: %s", *corpusDir)
	log.Printf("Database: %s", *dbPath)

	if err := os.MkdirAll(filepath.Dir(*dbPath), 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	loader := corpusfile.NewLoader(nil)
	c, issues, err := loader.LoadDir(*corpusDir)
	if err != nil {
		log.Fatalf("Failed to load corpus: %v", err)
	}
	for _, issue := range issues {
		log.Printf("Skipped: %s", issue.String())
	}

	store, err := storage.NewSQLiteStore(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer store.Close()

	all := c.All()
	entries := make([]domain.ProductEntry, 0, len(all))
	for _, e := range all {
		entries = append(entries, *e)
	}

	if err := store.SaveAll(entries); err != nil {
		log.Fatalf("Failed to import corpus: %v", err)
	}

	count, _ := store.Count()
	log.Printf("Database now contains %d products", count)
}

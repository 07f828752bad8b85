// rix-match runs a one-shot detection from the command line: text comes from
// a file or stdin, results go to stdout as a table or JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/infopercept/rix/internal/adapters/corpusfile"
	"github.com/infopercept/rix/internal/core/domain"
	"github.com/infopercept/rix/internal/core/services/match"
)

func main() {
	corpusDir := flag.String("corpus", "patterns", "Path to the pattern corpus directory")
	inputFile := flag.String("file", "", "File to scan (empty reads stdin)")
	vendorID := flag.String("vendor", "", "Restrict matching to this vendor ID (requires -product)")
	productID := flag.String("product", "", "Restrict matching to this product ID (requires -vendor)")
	asJSON := flag.Bool("json", false, "Emit results as JSON")
	best := flag.Bool("best", false, "Keep only the best match per product")
	timeout := flag.Duration("timeout", 30*time.Second, "Overall matching deadline")
	flag.Parse()

	if (*vendorID == "") != (*productID == "") {
		log.Fatal("-vendor and -product must be used together")
	}

	text, err := readInput(*inputFile)
	if err != nil {
		log.Fatalf("Failed to read input: %v", err)
	}

	loader := corpusfile.NewLoader(nil)
	c, issues, err := loader.LoadDir(*corpusDir)
	if err != nil {
		log.Fatalf("Failed to load corpus: %v", err)
	}
	for _, issue := range issues {
		log.Printf("Warning: %s", issue.String())
	}

	engine := match.NewEngine(c, match.Options{})

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	var results []domain.MatchResult
	if *vendorID != "" {
		results = engine.MatchProduct(ctx, text, *vendorID, *productID)
	} else {
		results = engine.Match(ctx, text)
	}
	if *best {
		results = match.BestPerProduct(results)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			log.Fatalf("Failed to encode results: %v", err)
		}
		return
	}

	if len(results) == 0 {
		fmt.Println("No matches.")
		return
	}

	for _, r := range results {
		version := r.NormalizedVersion
		if version == "" {
			version = "unknown"
		}
		fmt.Printf("%-30s %-20s version=%-12s priority=%d confidence=%.2f rule=%s\n",
			r.Vendor, r.Product, version, r.Priority, r.Confidence, r.PatternName)
	}
}

func readInput(path string) (string, error) {
	if path == "" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	return string(data), err
}

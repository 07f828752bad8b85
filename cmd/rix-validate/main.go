// rix-validate walks a pattern corpus tree, validates every record and
// replays embedded test cases. Exit status 1 means at least one problem.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/infopercept/rix/internal/adapters/corpusfile"
	"github.com/infopercept/rix/internal/core/services/corpus"
)

func main() {
	corpusDir := flag.String("corpus", "patterns", "Path to the pattern corpus directory")
	quiet := flag.Bool("quiet", false, "Only print the summary line")
	flag.Parse()

	loader := corpusfile.NewLoader(nil)
	c, loadIssues, err := loader.LoadDir(*corpusDir)
	if err != nil {
		log.Fatalf("Failed to load corpus: %v", err)
	}

	problems := len(loadIssues)
	if !*quiet {
		for _, issue := range loadIssues {
			fmt.Printf("LOAD  %s\n", issue.String())
		}
	}

	validated := 0
	for _, entry := range c.All() {
		issues := corpus.ValidateEntry(entry)
		problems += len(issues)
		validated++
		if *quiet {
			continue
		}
		for _, issue := range issues {
			fmt.Printf("CHECK %s/%s: %s\n", entry.VendorID, entry.ProductID, issue.String())
		}
	}

	stats := c.Stats()
	fmt.Printf("Validated %d products (%d rules, %d vendors): %d problem(s)\n",
		validated, stats.Rules, stats.Vendors, problems)

	if problems > 0 {
		os.Exit(1)
	}
}

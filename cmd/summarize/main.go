package main

// Summarize rating files offline, without the API server:
//   go run ./cmd/summarize -independent ratings.csv -out ./out

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"annostat-backend/internal/ratings"
	"annostat-backend/internal/summaries"
)

func main() {
	var (
		independentPath    = flag.String("independent", "", "path to an independent ratings CSV")
		pairwisePath       = flag.String("pairwise", "", "path to a pairwise ratings CSV")
		counterfactualPath = flag.String("counterfactual", "", "path to a counterfactual pairs CSV")
		workbookPath       = flag.String("workbook", "", "path to an xlsx workbook with rubric sheets")
		outDir             = flag.String("out", ".", "directory for the output CSV files")
		resamples          = flag.Int("resamples", 0, "bootstrap resamples (default 1000)")
		seed               = flag.Int64("seed", 0, "bootstrap seed (default 12345)")
		excludeRaterType   = flag.String("exclude-rater-type", "", "rater type to drop before aggregation")
		source1            = flag.String("source1", "", "label for the first answer source")
		source2            = flag.String("source2", "", "label for the second answer source")
	)
	flag.Parse()

	tables, err := loadTables(*workbookPath, *independentPath, *pairwisePath, *counterfactualPath)
	if err != nil {
		log.Fatalf("load ratings: %v", err)
	}
	if len(tables) == 0 {
		log.Fatal("at least one of -independent, -pairwise, -counterfactual or -workbook is required")
	}

	opts := summaries.Options{
		Resamples:        *resamples,
		Seed:             *seed,
		ExcludeRaterType: *excludeRaterType,
		Source1:          *source1,
		Source2:          *source2,
	}.WithDefaults()

	result, err := summaries.Summarize(tables, opts)
	if err != nil {
		log.Fatalf("summarize: %v", err)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("create output dir: %v", err)
	}
	outPath := filepath.Join(*outDir, "summary.csv")
	f, err := os.Create(outPath)
	if err != nil {
		log.Fatalf("create %s: %v", outPath, err)
	}
	defer f.Close()

	if err := summaries.WriteResultCSV(f, result); err != nil {
		log.Fatalf("write %s: %v", outPath, err)
	}

	for _, table := range result.Tables {
		fmt.Printf("%s: %d rows\n", table.Name, len(table.Rows))
	}
	if result.UnmatchedPairs > 0 {
		fmt.Printf("unmatched counterfactual pairs: %d\n", result.UnmatchedPairs)
	}
	fmt.Printf("wrote %s\n", outPath)
}

func loadTables(workbookPath, independentPath, pairwisePath, counterfactualPath string) (map[ratings.Kind]ratings.Table, error) {
	tables := make(map[ratings.Kind]ratings.Table)

	if workbookPath != "" {
		f, err := os.Open(workbookPath)
		if err != nil {
			return nil, err
		}
		parsed, err := ratings.ReadWorkbook(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", workbookPath, err)
		}
		for kind, t := range parsed {
			tables[kind] = t
		}
	}

	// Standalone CSV files take precedence over workbook sheets.
	csvRefs := []struct {
		path string
		kind ratings.Kind
	}{
		{independentPath, ratings.KindIndependent},
		{pairwisePath, ratings.KindPairwise},
		{counterfactualPath, ratings.KindCounterfactual},
	}
	for _, ref := range csvRefs {
		if ref.path == "" {
			continue
		}
		f, err := os.Open(ref.path)
		if err != nil {
			return nil, err
		}
		t, err := ratings.ReadCSV(ref.kind, f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ref.path, err)
		}
		tables[ref.kind] = t
	}

	return tables, nil
}

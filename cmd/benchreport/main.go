// benchreport prints the per-query comparison table for a benchmark results
// CSV: standard vs adaptive time, improvement and replication factor, most
// popular patterns first, followed by the overall totals.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sashank1508/IDIOMS/src/benchdata"
)

func main() {
	var file string
	var max int
	flag.StringVar(&file, "file", "benchmark_results.csv", "Path to benchmark results CSV")
	flag.IntVar(&max, "n", 0, "Limit to the N most popular query patterns (0 = all)")
	flag.Parse()

	recs, err := benchdata.LoadResults(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if max <= 0 {
		max = len(recs)
	}
	rows := benchdata.TopByPopularity(recs, max)

	fmt.Printf("%-25s | %15s | %15s | %15s | %10s\n", "Query", "Standard (ms)", "Adaptive (ms)", "Improvement", "RF")
	for _, r := range rows {
		improvement := "n/a"
		if r.StandardTime != 0 {
			improvement = fmt.Sprintf("%.2f%%", (r.StandardTime-r.AdaptiveTime)/r.StandardTime*100)
		}
		fmt.Printf("%-25s | %15.2f | %15.2f | %15s | %10d\n", r.Query, r.StandardTime, r.AdaptiveTime, improvement, r.ReplicationFactor)
	}

	sum := benchdata.OverallTotals(recs)
	fmt.Printf("\nTotal queries: %d\n", len(recs))
	fmt.Printf("Total standard time:  %.2f ms\n", sum.StandardTotal)
	fmt.Printf("Total adaptive time:  %.2f ms\n", sum.AdaptiveTotal)
	if sum.Valid {
		fmt.Printf("Overall improvement:  %.2f%%\n", sum.ImprovementPct)
	} else {
		fmt.Println("Overall improvement:  n/a (zero standard total)")
	}
}

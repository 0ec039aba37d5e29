// Package benchdata loads adaptive-vs-standard benchmark results and computes
// the aggregates the report charts are built from. The CSV is produced by the
// benchmark run (one row per query pattern) and is treated as immutable here:
// every aggregation works on copies and leaves the loaded records untouched.
package benchdata

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/stat"
)

// Record is one measured query pattern from benchmark_results.csv.
type Record struct {
	Query             string
	StandardTime      float64 // ms, standard strategy
	AdaptiveTime      float64 // ms, adaptive strategy
	Improvement       float64 // percent, precomputed by the benchmark
	Popularity        float64
	ReplicationFactor int
}

// column names as written by the benchmark. The writer orders them
// Query,StandardTime,AdaptiveTime,Improvement,ReplicationFactor,Popularity
// but we key every field off the header so column order never matters.
const (
	colQuery             = "Query"
	colStandardTime      = "StandardTime"
	colAdaptiveTime      = "AdaptiveTime"
	colImprovement       = "Improvement"
	colPopularity        = "Popularity"
	colReplicationFactor = "ReplicationFactor"
)

// LoadResults parses a benchmark results CSV into records. A missing file,
// missing column or unparsable value is an error; there is no partial load.
func LoadResults(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s: empty results file", path)
		}
		return nil, fmt.Errorf("%s: read header: %w", path, err)
	}
	idx := map[string]int{}
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}
	for _, name := range []string{colQuery, colStandardTime, colAdaptiveTime, colImprovement, colPopularity, colReplicationFactor} {
		if _, ok := idx[name]; !ok {
			return nil, fmt.Errorf("%s: missing column %q in header %v", path, name, header)
		}
	}

	var recs []Record
	line := 1
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: read row: %w", path, err)
		}
		line++
		rec := Record{Query: strings.TrimSpace(row[idx[colQuery]])}
		if rec.StandardTime, err = parseField(row, idx, colStandardTime); err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, line, err)
		}
		if rec.AdaptiveTime, err = parseField(row, idx, colAdaptiveTime); err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, line, err)
		}
		if rec.Improvement, err = parseField(row, idx, colImprovement); err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, line, err)
		}
		if rec.Popularity, err = parseField(row, idx, colPopularity); err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, line, err)
		}
		rf, err := strconv.Atoi(strings.TrimSpace(row[idx[colReplicationFactor]]))
		if err != nil {
			return nil, fmt.Errorf("%s line %d: parse %s: %w", path, line, colReplicationFactor, err)
		}
		rec.ReplicationFactor = rf
		recs = append(recs, rec)
	}
	log.Debug().Str("path", path).Int("records", len(recs)).Msg("loaded benchmark results")
	return recs, nil
}

func parseField(row []string, idx map[string]int, name string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(row[idx[name]]), 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", name, err)
	}
	return v, nil
}

// OverallSummary aggregates total query time per strategy across all records.
type OverallSummary struct {
	StandardTotal  float64 // ms
	AdaptiveTotal  float64 // ms
	ImprovementPct float64
	// Valid is false when the standard total is zero; the improvement
	// percentage is undefined in that case and must not be reported.
	Valid bool
}

// OverallTotals sums both strategies over all records.
func OverallTotals(recs []Record) OverallSummary {
	var s OverallSummary
	for _, r := range recs {
		s.StandardTotal += r.StandardTime
		s.AdaptiveTotal += r.AdaptiveTime
	}
	if s.StandardTotal != 0 {
		s.ImprovementPct = (s.StandardTotal - s.AdaptiveTotal) / s.StandardTotal * 100
		s.Valid = true
	}
	return s
}

// TopByPopularity returns up to n records sorted by descending popularity.
// The input slice is not reordered.
func TopByPopularity(recs []Record, n int) []Record {
	out := make([]Record, len(recs))
	copy(out, recs)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Popularity > out[j].Popularity })
	if n >= 0 && n < len(out) {
		out = out[:n]
	}
	return out
}

// ReplicationGroup holds per-replication-factor means across the matching rows.
type ReplicationGroup struct {
	Factor           int
	Count            int
	MeanStandardTime float64
	MeanAdaptiveTime float64
	MeanImprovement  float64
	MeanPopularity   float64
}

// GroupByReplication buckets records by replication factor (ascending) and
// averages each metric within its bucket.
func GroupByReplication(recs []Record) []ReplicationGroup {
	byFactor := map[int][]Record{}
	for _, r := range recs {
		byFactor[r.ReplicationFactor] = append(byFactor[r.ReplicationFactor], r)
	}
	factors := make([]int, 0, len(byFactor))
	for f := range byFactor {
		factors = append(factors, f)
	}
	sort.Ints(factors)

	groups := make([]ReplicationGroup, 0, len(factors))
	for _, f := range factors {
		rows := byFactor[f]
		std := make([]float64, len(rows))
		adp := make([]float64, len(rows))
		imp := make([]float64, len(rows))
		pop := make([]float64, len(rows))
		for i, r := range rows {
			std[i] = r.StandardTime
			adp[i] = r.AdaptiveTime
			imp[i] = r.Improvement
			pop[i] = r.Popularity
		}
		groups = append(groups, ReplicationGroup{
			Factor:           f,
			Count:            len(rows),
			MeanStandardTime: stat.Mean(std, nil),
			MeanAdaptiveTime: stat.Mean(adp, nil),
			MeanImprovement:  stat.Mean(imp, nil),
			MeanPopularity:   stat.Mean(pop, nil),
		})
	}
	return groups
}

// Trend is a first-degree least-squares fit of improvement over popularity.
type Trend struct {
	Slope     float64
	Intercept float64
}

// TrendLine fits improvement = slope*popularity + intercept. It reports false
// when fewer than two distinct popularity values exist, which leaves the fit
// undefined.
func TrendLine(recs []Record) (Trend, bool) {
	xs := make([]float64, len(recs))
	ys := make([]float64, len(recs))
	distinct := map[float64]struct{}{}
	for i, r := range recs {
		xs[i] = r.Popularity
		ys[i] = r.Improvement
		distinct[r.Popularity] = struct{}{}
	}
	if len(distinct) < 2 {
		return Trend{}, false
	}
	intercept, slope := stat.LinearRegression(xs, ys, nil, false)
	return Trend{Slope: slope, Intercept: intercept}, true
}

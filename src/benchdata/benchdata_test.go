package benchdata

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

const floatEps = 1e-9

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "benchmark_results.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestLoadResults_AllFieldsPopulated(t *testing.T) {
	// writer column order: Query,StandardTime,AdaptiveTime,Improvement,ReplicationFactor,Popularity
	path := writeCSV(t, "Query,StandardTime,AdaptiveTime,Improvement,ReplicationFactor,Popularity\n"+
		"key=A,10.5,8.25,21.43,3,12.5\n"+
		"key=B,20,15,25,1,4\n"+
		"key=C,7.75,7,9.68,2,9.25\n")
	recs, err := LoadResults(path)
	if err != nil {
		t.Fatalf("LoadResults: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("expected 3 records, got %d", len(recs))
	}
	want := Record{Query: "key=A", StandardTime: 10.5, AdaptiveTime: 8.25, Improvement: 21.43, Popularity: 12.5, ReplicationFactor: 3}
	if recs[0] != want {
		t.Fatalf("record mismatch: got %+v want %+v", recs[0], want)
	}
	for i, r := range recs {
		if r.Query == "" || r.StandardTime == 0 || r.AdaptiveTime == 0 || r.ReplicationFactor == 0 {
			t.Fatalf("record %d has unpopulated fields: %+v", i, r)
		}
	}
}

func TestLoadResults_HeaderOrderIndependent(t *testing.T) {
	// spec order (Popularity before ReplicationFactor) must load identically
	writerOrder := writeCSV(t, "Query,StandardTime,AdaptiveTime,Improvement,ReplicationFactor,Popularity\n"+
		"key=A,10,8,20,2,5\n")
	specOrder := writeCSV(t, "Query,StandardTime,AdaptiveTime,Improvement,Popularity,ReplicationFactor\n"+
		"key=A,10,8,20,5,2\n")
	a, err := LoadResults(writerOrder)
	if err != nil {
		t.Fatalf("writer order: %v", err)
	}
	b, err := LoadResults(specOrder)
	if err != nil {
		t.Fatalf("spec order: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("orders disagree: %+v vs %+v", a, b)
	}
}

func TestLoadResults_MissingFile(t *testing.T) {
	if _, err := LoadResults(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLoadResults_MissingColumn(t *testing.T) {
	path := writeCSV(t, "Query,StandardTime,AdaptiveTime,Improvement,ReplicationFactor\n"+
		"key=A,10,8,20,2\n")
	if _, err := LoadResults(path); err == nil {
		t.Fatalf("expected error for missing Popularity column")
	}
}

func TestLoadResults_BadNumber(t *testing.T) {
	path := writeCSV(t, "Query,StandardTime,AdaptiveTime,Improvement,ReplicationFactor,Popularity\n"+
		"key=A,ten,8,20,2,5\n")
	if _, err := LoadResults(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestOverallTotals_ImprovementPct(t *testing.T) {
	recs := []Record{
		{StandardTime: 60, AdaptiveTime: 50},
		{StandardTime: 40, AdaptiveTime: 30},
	}
	sum := OverallTotals(recs)
	if !sum.Valid {
		t.Fatalf("expected valid summary")
	}
	if math.Abs(sum.StandardTotal-100) > floatEps || math.Abs(sum.AdaptiveTotal-80) > floatEps {
		t.Fatalf("bad totals: %+v", sum)
	}
	if math.Abs(sum.ImprovementPct-20) > floatEps {
		t.Fatalf("improvement = %v, want 20", sum.ImprovementPct)
	}
}

func TestOverallTotals_ZeroStandardTotal(t *testing.T) {
	sum := OverallTotals([]Record{{StandardTime: 0, AdaptiveTime: 5}})
	if sum.Valid {
		t.Fatalf("expected invalid summary when standard total is zero, got %+v", sum)
	}
}

func TestTopByPopularity_SelectsAndOrders(t *testing.T) {
	recs := make([]Record, 15)
	for i := range recs {
		recs[i] = Record{Query: fmt.Sprintf("q%d", i), Popularity: float64(i)}
	}
	top := TopByPopularity(recs, 10)
	if len(top) != 10 {
		t.Fatalf("expected 10 rows, got %d", len(top))
	}
	for i, r := range top {
		if want := float64(14 - i); r.Popularity != want {
			t.Fatalf("row %d popularity = %v, want %v", i, r.Popularity, want)
		}
	}
	// input must stay untouched
	if recs[0].Popularity != 0 || recs[14].Popularity != 14 {
		t.Fatalf("input slice was reordered")
	}
}

func TestTopByPopularity_FewerRowsThanLimit(t *testing.T) {
	recs := []Record{{Popularity: 2}, {Popularity: 9}, {Popularity: 5}}
	top := TopByPopularity(recs, 10)
	if len(top) != 3 {
		t.Fatalf("expected all 3 rows, got %d", len(top))
	}
	if top[0].Popularity != 9 || top[2].Popularity != 2 {
		t.Fatalf("not sorted descending: %+v", top)
	}
}

func TestGroupByReplication_MeansPerSubset(t *testing.T) {
	recs := []Record{
		{ReplicationFactor: 1, StandardTime: 10, AdaptiveTime: 9, Improvement: 10, Popularity: 1},
		{ReplicationFactor: 1, StandardTime: 20, AdaptiveTime: 15, Improvement: 25, Popularity: 3},
		{ReplicationFactor: 2, StandardTime: 30, AdaptiveTime: 20, Improvement: 33, Popularity: 2},
		{ReplicationFactor: 2, StandardTime: 10, AdaptiveTime: 8, Improvement: 20, Popularity: 4},
		{ReplicationFactor: 2, StandardTime: 20, AdaptiveTime: 14, Improvement: 30, Popularity: 6},
		{ReplicationFactor: 3, StandardTime: 40, AdaptiveTime: 10, Improvement: 75, Popularity: 8},
	}
	groups := GroupByReplication(recs)
	if len(groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(groups))
	}
	if groups[0].Factor != 1 || groups[1].Factor != 2 || groups[2].Factor != 3 {
		t.Fatalf("groups not ascending by factor: %+v", groups)
	}
	if groups[0].Count != 2 || groups[1].Count != 3 || groups[2].Count != 1 {
		t.Fatalf("wrong group sizes: %+v", groups)
	}
	if math.Abs(groups[0].MeanImprovement-17.5) > floatEps {
		t.Fatalf("factor 1 mean improvement = %v, want 17.5", groups[0].MeanImprovement)
	}
	if math.Abs(groups[1].MeanStandardTime-20) > floatEps || math.Abs(groups[1].MeanPopularity-4) > floatEps {
		t.Fatalf("factor 2 means wrong: %+v", groups[1])
	}
	if math.Abs(groups[2].MeanAdaptiveTime-10) > floatEps {
		t.Fatalf("factor 3 mean adaptive = %v, want 10", groups[2].MeanAdaptiveTime)
	}
}

func TestTrendLine_RecoversLinearFit(t *testing.T) {
	// improvement = 2*popularity + 5, exactly
	var recs []Record
	for i := 1; i <= 6; i++ {
		p := float64(i)
		recs = append(recs, Record{Popularity: p, Improvement: 2*p + 5})
	}
	trend, ok := TrendLine(recs)
	if !ok {
		t.Fatalf("expected a fit")
	}
	if math.Abs(trend.Slope-2) > 1e-6 {
		t.Fatalf("slope = %v, want 2.00", trend.Slope)
	}
	if math.Abs(trend.Intercept-5) > 1e-6 {
		t.Fatalf("intercept = %v, want 5.00", trend.Intercept)
	}
}

func TestTrendLine_DegenerateX(t *testing.T) {
	recs := []Record{
		{Popularity: 4, Improvement: 10},
		{Popularity: 4, Improvement: 20},
	}
	if _, ok := TrendLine(recs); ok {
		t.Fatalf("expected no fit for a single distinct popularity value")
	}
}

func TestAggregations_Deterministic(t *testing.T) {
	recs := []Record{
		{Query: "a", StandardTime: 12, AdaptiveTime: 9, Improvement: 25, Popularity: 7, ReplicationFactor: 2},
		{Query: "b", StandardTime: 30, AdaptiveTime: 21, Improvement: 30, Popularity: 3, ReplicationFactor: 1},
		{Query: "c", StandardTime: 18, AdaptiveTime: 12, Improvement: 33.3, Popularity: 11, ReplicationFactor: 2},
	}
	if OverallTotals(recs) != OverallTotals(recs) {
		t.Fatalf("OverallTotals not deterministic")
	}
	if !reflect.DeepEqual(TopByPopularity(recs, 2), TopByPopularity(recs, 2)) {
		t.Fatalf("TopByPopularity not deterministic")
	}
	if !reflect.DeepEqual(GroupByReplication(recs), GroupByReplication(recs)) {
		t.Fatalf("GroupByReplication not deterministic")
	}
	t1, ok1 := TrendLine(recs)
	t2, ok2 := TrendLine(recs)
	if ok1 != ok2 || t1 != t2 {
		t.Fatalf("TrendLine not deterministic")
	}
}

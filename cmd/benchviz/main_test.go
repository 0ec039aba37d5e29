package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sashank1508/IDIOMS/src/charts"
)

const fixtureCSV = "Query,StandardTime,AdaptiveTime,Improvement,ReplicationFactor,Popularity\n" +
	"key1=val,45.2,32.1,28.98,3,15.5\n" +
	"key2=val,38.7,30.4,21.45,2,11.2\n" +
	"key3=val,52.1,48.9,6.14,1,8.4\n" +
	"key4=val,29.5,21.3,27.80,3,6.1\n" +
	"key5=val,33.0,31.5,4.55,1,2.9\n"

func TestRunPipeline_WritesAllFourImages(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "benchmark_results.csv")
	if err := os.WriteFile(file, []byte(fixtureCSV), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	outDir := filepath.Join(dir, "out")
	if err := runPipeline(file, outDir); err != nil {
		t.Fatalf("runPipeline: %v", err)
	}
	for _, name := range []string{charts.OverallFile, charts.PerQueryFile, charts.CorrelationFile, charts.ReplicationFile} {
		info, err := os.Stat(filepath.Join(outDir, name))
		if err != nil {
			t.Fatalf("missing output %s: %v", name, err)
		}
		if info.Size() == 0 {
			t.Fatalf("output %s is empty", name)
		}
	}
}

func TestRunPipeline_MissingInputProducesNoImages(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")
	if err := runPipeline(filepath.Join(dir, "nope.csv"), outDir); err == nil {
		t.Fatalf("expected error for missing input file")
	}
	if entries, err := os.ReadDir(outDir); err == nil && len(entries) > 0 {
		t.Fatalf("expected no outputs, found %d", len(entries))
	}
}

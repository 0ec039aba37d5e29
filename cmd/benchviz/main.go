// benchviz reads benchmark_results.csv (written by the adaptive query
// distribution benchmark) and generates the four report charts in the current
// directory. Running it with no arguments executes the full pipeline; flags
// only relocate the input/output.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/sashank1508/IDIOMS/src/benchdata"
	"github.com/sashank1508/IDIOMS/src/charts"
)

// runPipeline loads the results once and runs the four report stages
// sequentially. Each stage is independent; a failure stops the pipeline but
// leaves already-written images on disk.
func runPipeline(file, outDir string) error {
	recs, err := benchdata.LoadResults(file)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create out dir: %w", err)
	}
	source := filepath.Base(file)

	stages := []struct {
		name string
		fn   func([]benchdata.Record, string, string) error
	}{
		{charts.OverallFile, charts.RenderOverall},
		{charts.PerQueryFile, charts.RenderPerQuery},
		{charts.CorrelationFile, charts.RenderCorrelation},
		{charts.ReplicationFile, charts.RenderReplication},
	}
	for _, st := range stages {
		if err := st.fn(recs, source, filepath.Join(outDir, st.name)); err != nil {
			return fmt.Errorf("%s: %w", st.name, err)
		}
		fmt.Printf("Saved %s\n", st.name)
	}
	fmt.Println("All visualizations generated successfully")
	return nil
}

func main() {
	var file, outDir, logLevel string
	flag.StringVar(&file, "file", "benchmark_results.csv", "Path to benchmark results CSV")
	flag.StringVar(&outDir, "out", ".", "Directory for generated chart images")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug|info|warn|error)")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	if lvl, err := zerolog.ParseLevel(logLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	if err := runPipeline(file, outDir); err != nil {
		log.Fatal().Err(err).Str("file", file).Msg("chart generation failed")
	}
}

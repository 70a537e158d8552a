// Field stats tool - checks that generated particles fill the globe uniformly by
// volume, using a chi-square test on radial shell counts.
//
// Usage: go run ./cmd/fieldstats -count 3000 -bins 10 -seeds 20 -out shells.csv
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/pthm-cable/particlefield/config"
	"github.com/pthm-cable/particlefield/particles"
)

// shellRecord is one radial shell of one seed.
type shellRecord struct {
	Seed     int64   `csv:"seed"`
	Shell    int     `csv:"shell"`
	Observed float64 `csv:"observed"`
	Expected float64 `csv:"expected"`
}

// seedResult is the goodness-of-fit of one generated set.
type seedResult struct {
	Seed   int64
	Chi2   float64
	PValue float64
}

// evaluate generates one set and tests its radial counts against the volume law.
func evaluate(count int, globe float64, bins int, seed int64) (seedResult, []shellRecord) {
	set := particles.Generate(count, globe, rand.New(rand.NewSource(seed)))
	obs := particles.RadialHistogram(set, globe, bins)
	exp := particles.ExpectedRadialCounts(set.Len(), bins)

	chi2 := stat.ChiSquare(obs, exp)
	dist := distuv.ChiSquared{K: float64(bins - 1)}

	records := make([]shellRecord, bins)
	for i := range obs {
		records[i] = shellRecord{Seed: seed, Shell: i, Observed: obs[i], Expected: exp[i]}
	}
	return seedResult{Seed: seed, Chi2: chi2, PValue: dist.Survival(chi2)}, records
}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	count := flag.Int("count", 0, "Particle count (0 = config value)")
	bins := flag.Int("bins", 10, "Radial shells")
	seeds := flag.Int("seeds", 20, "Number of generated sets")
	alpha := flag.Float64("alpha", 0.01, "Significance level for rejecting uniformity")
	outPath := flag.String("out", "", "CSV file for per-shell counts (empty = none)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	n := cfg.Field.Count
	if *count > 0 {
		n = *count
	}
	if *bins < 2 {
		log.Fatal("--bins must be at least 2")
	}
	// Chi-square needs roughly 5 expected particles in the innermost shell
	if inner := particles.ExpectedRadialCounts(n, *bins)[0]; inner < 5 {
		fmt.Printf("warning: only %.1f particles expected in the innermost shell; use fewer bins or more particles\n", inner)
	}

	var all []shellRecord
	pvalues := make([]float64, 0, *seeds)
	rejected := 0
	for i := 0; i < *seeds; i++ {
		res, records := evaluate(n, cfg.Field.GlobeSize, *bins, int64(i+1))
		all = append(all, records...)
		pvalues = append(pvalues, res.PValue)
		if res.PValue < *alpha {
			rejected++
		}
		fmt.Printf("seed %3d: chi2=%7.3f p=%.4f\n", res.Seed, res.Chi2, res.PValue)
	}

	mean, std := stat.MeanStdDev(pvalues, nil)
	fmt.Printf("\n%d particles, %d shells, %d sets: mean p=%.3f (sd %.3f), rejected at alpha=%.3g: %d\n",
		n, *bins, *seeds, mean, std, *alpha, rejected)

	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			log.Fatalf("failed to create %s: %v", *outPath, err)
		}
		defer f.Close()
		if err := gocsv.MarshalFile(&all, f); err != nil {
			log.Fatalf("failed to write %s: %v", *outPath, err)
		}
		fmt.Printf("Shell counts written to: %s\n", *outPath)
	}
}

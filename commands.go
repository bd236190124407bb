package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/banshee-data/auditsample/internal/db"
	"github.com/banshee-data/auditsample/internal/ingest"
	"github.com/banshee-data/auditsample/internal/monitoring"
	"github.com/banshee-data/auditsample/internal/sampling"
	"github.com/banshee-data/auditsample/internal/security"
	"github.com/banshee-data/auditsample/internal/version"
)

type cliArgs struct {
	listen     string
	dbPath     string
	dataDir    string
	configPath string
	args       []string
}

func parseCLI() *cliArgs {
	listen := flag.String("listen", ":8080", "Listen address")
	dbPath := flag.String("db", "auditsample.db", "Path to the SQLite database file")
	dataDir := flag.String("data", "", "Directory the server may load population files from")
	configPath := flag.String("config", "", "Path to a sampling defaults JSON file")
	flag.Parse()

	return &cliArgs{
		listen:     *listen,
		dbPath:     *dbPath,
		dataDir:    *dataDir,
		configPath: *configPath,
		args:       flag.Args(),
	}
}

func runCommand(cli *cliArgs) {
	switch cli.args[0] {
	case "size":
		runSizeCommand(cli)

	case "sample":
		runSampleCommand(cli)

	case "migrate":
		db.RunMigrateCommand(cli.args[1:], cli.dbPath)

	case "version":
		fmt.Printf("auditsample %s (%s) built %s\n", version.Version, version.GitSHA, version.BuildTime)

	case "help":
		printUsage()

	default:
		fmt.Printf("Unknown command: %s\n\n", cli.args[0])
		printUsage()
		os.Exit(1)
	}
}

// runSizeCommand computes a statistical sample size without drawing anything.
func runSizeCommand(cli *cliArgs) {
	defaults := loadDefaults(cli.configPath)

	fs := flag.NewFlagSet("size", flag.ExitOnError)
	population := fs.Int("n", 0, "Population size (required)")
	confidence := fs.Float64("confidence", defaults.GetConfidence(), "Confidence level in (0,1)")
	tolerable := fs.Float64("tolerable", defaults.GetTolerableErrorRate(), "Tolerable error rate in (0,1)")
	expected := fs.Float64("expected", defaults.GetExpectedErrorRate(), "Expected error rate in [0,1)")
	fs.Parse(cli.args[1:])

	size, err := sampling.CalculateSampleSize(*population, *confidence, *tolerable, *expected)
	if err != nil {
		log.Fatalf("size calculation failed: %v", err)
	}
	z, err := sampling.ZScore(*confidence)
	if err != nil {
		log.Fatalf("size calculation failed: %v", err)
	}

	fmt.Printf("Population size:      %d\n", *population)
	fmt.Printf("Confidence:           %.4f (z = %.4f)\n", *confidence, z)
	fmt.Printf("Tolerable error rate: %.4f\n", *tolerable)
	fmt.Printf("Expected error rate:  %.4f\n", *expected)
	fmt.Printf("Required sample size: %d\n", size)
}

// runSampleCommand draws a sample from a population file and emits the full
// result (sample, plan, and audit summary) as JSON.
func runSampleCommand(cli *cliArgs) {
	defaults := loadDefaults(cli.configPath)

	fs := flag.NewFlagSet("sample", flag.ExitOnError)
	file := fs.String("file", "", "Population file, .csv or .json (required)")
	method := fs.String("method", string(defaults.GetMethod()), "Sampling method: statistical, simple_random, systematic, percentage")
	size := fs.Int("size", 0, "Explicit sample size override")
	percent := fs.Float64("percent", 0, "Sample percentage of the population (0-100)")
	confidence := fs.Float64("confidence", defaults.GetConfidence(), "Confidence level in (0,1)")
	tolerable := fs.Float64("tolerable", defaults.GetTolerableErrorRate(), "Tolerable error rate in (0,1)")
	expected := fs.Float64("expected", defaults.GetExpectedErrorRate(), "Expected error rate in [0,1)")
	seed := fs.Uint("seed", uint(defaults.GetSeed()), "Deterministic generator seed")
	stratify := fs.String("stratify", "", "Comma-separated stratification fields")
	idField := fs.String("id-field", defaults.GetIDField(), "Field carrying the record identifier")
	step := fs.Int("step", 0, "Explicit systematic interval override")
	randomStart := fs.Bool("random-start", defaults.GetRandomStart(), "Randomize the systematic offset")
	coverage := fs.Bool("coverage", false, "Force at least one selection per observed stratum")
	justification := fs.String("justification", "", "Justification recorded for parameter overrides")
	save := fs.Bool("save", false, "Persist the plan and run to the database")
	out := fs.String("out", "", "Write the result JSON to this file instead of stdout")
	fs.Parse(cli.args[1:])

	if *file == "" {
		fs.Usage()
		log.Fatal("sample: -file is required")
	}

	rows, err := ingest.LoadFile(*file, filepath.Dir(*file), 0)
	if err != nil {
		log.Fatalf("failed to load population: %v", err)
	}
	monitoring.Logf("loaded %d rows from %s", len(rows), *file)

	cfg := defaults.SamplingConfig()
	cfg.Method = sampling.Method(*method)
	cfg.Confidence = *confidence
	cfg.TolerableErrorRate = *tolerable
	cfg.ExpectedErrorRate = *expected
	cfg.Seed = uint32(*seed)
	cfg.IDField = *idField
	cfg.RandomStart = *randomStart
	cfg.OverrideJustification = *justification
	if *size > 0 {
		cfg.SampleSize = size
	}
	if *percent > 0 {
		cfg.SamplePercentage = percent
	}
	if *step > 0 {
		cfg.SystematicStep = step
	}
	if *stratify != "" {
		for _, f := range strings.Split(*stratify, ",") {
			if f = strings.TrimSpace(f); f != "" {
				cfg.StratifyFields = append(cfg.StratifyFields, f)
			}
		}
	}

	plan, err := sampling.BuildPlan(rows, cfg)
	if err != nil {
		log.Fatalf("failed to build plan: %v", err)
	}
	if *coverage {
		sampling.ApplyCoverageOverrides(plan)
	}

	result, err := sampling.SampleData(rows, cfg, plan)
	if err != nil {
		log.Fatalf("sampling failed: %v", err)
	}
	result.Summary.SourceFile = filepath.Base(*file)

	monitoring.Logf("sampled %d of %d rows across %d strata (plan %s)",
		len(result.Sample), plan.PopulationSize, len(plan.Allocations), plan.ID)

	if *save {
		database, err := db.OpenCurrentDB(cli.dbPath)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer database.Close()

		run := &db.Run{
			ID:             uuid.New().String(),
			PlanID:         plan.ID,
			Method:         string(cfg.Method),
			Seed:           cfg.Seed,
			PopulationSize: plan.PopulationSize,
			SampleSize:     len(result.Sample),
			Result:         result,
		}
		if err := database.SavePlan(cfg, plan); err != nil {
			log.Fatalf("failed to save plan: %v", err)
		}
		if err := database.SaveRun(run); err != nil {
			log.Fatalf("failed to save run: %v", err)
		}
		monitoring.Logf("saved run %s", run.ID)
	}

	payload, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("failed to encode result: %v", err)
	}
	if *out != "" {
		if err := security.ValidateExportPath(*out); err != nil {
			log.Fatalf("refusing to write %s: %v", *out, err)
		}
		if err := os.WriteFile(*out, payload, 0644); err != nil {
			log.Fatalf("failed to write %s: %v", *out, err)
		}
		monitoring.Logf("wrote result to %s", *out)
		return
	}
	fmt.Println(string(payload))
}

func printUsage() {
	fmt.Println("auditsample: deterministic statistical sampling for compliance audits")
	fmt.Println()
	fmt.Println("Usage: auditsample [flags] <command> [command flags]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  serve           Run the HTTP API server (default when no command given)")
	fmt.Println("  size            Calculate a statistical sample size")
	fmt.Println("  sample          Draw a sample from a population file")
	fmt.Println("  migrate         Manage database schema migrations")
	fmt.Println("  version         Show build information")
	fmt.Println("  help            Show this help message")
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Println("  -listen <addr>  Listen address for serve (default :8080)")
	fmt.Println("  -db <path>      SQLite database file (default auditsample.db)")
	fmt.Println("  -data <dir>     Directory the server may load population files from")
	fmt.Println("  -config <path>  Sampling defaults JSON file")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  auditsample size -n 1000 -confidence 0.95 -tolerable 0.05 -expected 0.01")
	fmt.Println("  auditsample sample -file invoices.csv -method statistical -stratify region,risk")
	fmt.Println("  auditsample -listen :9000 -data ./populations serve")
	fmt.Println("  auditsample migrate up")
}

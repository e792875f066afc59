// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"crosspair/internal/config"
	"crosspair/internal/datasets"
	"crosspair/internal/download"
	"crosspair/internal/extract"
	"crosspair/internal/observability"
	"crosspair/internal/pairs"
	"crosspair/internal/parallel"
	"crosspair/internal/paths"
	"crosspair/internal/report"
	"crosspair/internal/version"

	"crosspair/internal/formatters"
	_ "crosspair/internal/formatters/csv"
	_ "crosspair/internal/formatters/json"
	_ "crosspair/internal/formatters/text"

	"golang.org/x/term"
)

// configFlags holds command line flag values
type configFlags struct {
	outputFormat  string
	schema        string
	datasetList   string
	perEntityCap  int
	seed          int64
	categories    string
	workers       int
	minNameLength int
	verbose       bool
	debug         bool
	noColor       bool
}

// finalConfiguration holds resolved configuration values
type finalConfiguration struct {
	format         string
	schema         string
	datasetList    []string
	nameProperties []string
	splitSeparator string
	perEntityCap   int
	seed           int64
	categories     []string
	workers        int
	minNameLength  int
	verbose        bool
	debug          bool
	noColor        bool
}

// resolveConfiguration resolves final configuration values from config file, profile, and command line flags
func resolveConfiguration(cfg *config.Config, activeProfile *config.Profile, flags *configFlags) *finalConfiguration {
	final := &finalConfiguration{}

	// Format
	final.format = "csv" // default fallback
	if cfg != nil && cfg.Defaults.Format != "" {
		final.format = cfg.Defaults.Format
	}
	if activeProfile != nil && activeProfile.Format != "" {
		final.format = activeProfile.Format
	}
	if isFlagSet("format") && flags.outputFormat != "" {
		final.format = flags.outputFormat
	}

	// Schema filter
	final.schema = "Person" // default fallback
	if cfg != nil && cfg.Defaults.Schema != "" {
		final.schema = cfg.Defaults.Schema
	}
	if activeProfile != nil && activeProfile.Schema != "" {
		final.schema = activeProfile.Schema
	}
	if isFlagSet("schema") && flags.schema != "" {
		final.schema = flags.schema
	}

	// Name-bearing properties and the multi-name separator are config-only
	// settings; no flag overrides them.
	final.splitSeparator = " / " // default fallback
	if cfg != nil && len(cfg.Defaults.NameProperties) > 0 {
		final.nameProperties = cfg.Defaults.NameProperties
	}
	if cfg != nil {
		final.splitSeparator = cfg.Defaults.SplitSeparator
	}
	if activeProfile != nil && len(activeProfile.NameProperties) > 0 {
		final.nameProperties = activeProfile.NameProperties
	}
	if activeProfile != nil && activeProfile.SplitSeparator != "" {
		final.splitSeparator = activeProfile.SplitSeparator
	}

	// Dataset allowlist; empty means the built-in sanctions set
	if cfg != nil {
		final.datasetList = cfg.Datasets
	}
	if activeProfile != nil && len(activeProfile.Datasets) > 0 {
		final.datasetList = activeProfile.Datasets
	}
	if isFlagSet("datasets") && flags.datasetList != "" {
		final.datasetList = splitCommaList(flags.datasetList)
	}

	// Per-entity cap
	final.perEntityCap = 100 // default fallback
	if cfg != nil {
		final.perEntityCap = cfg.Defaults.PerEntityCap
	}
	if activeProfile != nil && activeProfile.PerEntityCap > 0 {
		final.perEntityCap = activeProfile.PerEntityCap
	}
	if isFlagSet("per-entity-cap") {
		final.perEntityCap = flags.perEntityCap
	}

	// Seed
	final.seed = 42 // default fallback
	if cfg != nil {
		final.seed = cfg.Defaults.Seed
	}
	if activeProfile != nil && activeProfile.Seed != 0 {
		final.seed = activeProfile.Seed
	}
	if isFlagSet("seed") {
		final.seed = flags.seed
	}

	// Categories; empty means all three
	if cfg != nil {
		final.categories = cfg.Defaults.Categories
	}
	if activeProfile != nil && len(activeProfile.Categories) > 0 {
		final.categories = activeProfile.Categories
	}
	if isFlagSet("categories") && flags.categories != "" {
		final.categories = splitCommaList(flags.categories)
	}

	// Workers; zero means auto
	if cfg != nil {
		final.workers = cfg.Defaults.Workers
	}
	if activeProfile != nil && activeProfile.Workers > 0 {
		final.workers = activeProfile.Workers
	}
	if isFlagSet("workers") {
		final.workers = flags.workers
	}

	// Minimum name length
	final.minNameLength = 2 // default fallback
	if cfg != nil && cfg.Defaults.MinNameLength > 0 {
		final.minNameLength = cfg.Defaults.MinNameLength
	}
	if activeProfile != nil && activeProfile.MinNameLength > 0 {
		final.minNameLength = activeProfile.MinNameLength
	}
	if isFlagSet("min-name-length") {
		final.minNameLength = flags.minNameLength
	}

	// Verbose
	final.verbose = false // default fallback
	if cfg != nil {
		final.verbose = cfg.Defaults.Verbose
	}
	if activeProfile != nil {
		final.verbose = activeProfile.Verbose
	}
	if isFlagSet("verbose") {
		final.verbose = flags.verbose
	}

	// Debug
	final.debug = false // default fallback
	if cfg != nil {
		final.debug = cfg.Defaults.Debug
	}
	if activeProfile != nil {
		final.debug = activeProfile.Debug
	}
	if isFlagSet("debug") {
		final.debug = flags.debug
	}

	// No color
	final.noColor = false // default fallback
	if cfg != nil {
		final.noColor = cfg.Defaults.NoColor
	}
	if activeProfile != nil {
		final.noColor = activeProfile.NoColor
	}
	if isFlagSet("no-color") {
		final.noColor = flags.noColor
	}

	return final
}

// handleProfiles handles profile listing and selection
func handleProfiles(cfg *config.Config, listProfiles bool, profileName string) *config.Profile {
	if listProfiles {
		profiles := cfg.ListProfiles()
		if len(profiles) == 0 {
			fmt.Println("No profiles defined in configuration file.")
		} else {
			fmt.Println("Available profiles:")
			for _, name := range profiles {
				profile := cfg.GetProfile(name)
				if profile != nil && profile.Description != "" {
					fmt.Printf("  - %s: %s\n", name, profile.Description)
				} else {
					fmt.Printf("  - %s\n", name)
				}
			}
		}
		os.Exit(0)
	}

	var activeProfile *config.Profile
	if profileName != "" {
		activeProfile = cfg.GetProfile(profileName)
		if activeProfile == nil {
			fmt.Fprintf(os.Stderr, "Error: Profile '%s' not found in config file\n", profileName)
			os.Exit(1)
		}
	}
	return activeProfile
}

func main() {
	// Parse command line flags
	inputFile := flag.String("file", "", "Path to the FtM JSON lines input file")
	outputFile := flag.String("output", "", "Path to output file (if not specified, output to stdout)")
	outputFormat := flag.String("format", "", "Output format: csv, json, text (default: csv)")
	configFile := flag.String("config", "", "Path to configuration file (YAML)")
	profileName := flag.String("profile", "", "Profile name to use from config file")
	listProfiles := flag.Bool("list-profiles", false, "List available profiles in config file")
	schema := flag.String("schema", "", "FtM schema to keep (default: Person)")
	datasetList := flag.String("datasets", "", "Comma-separated dataset ids to keep (default: built-in sanctions set)")
	perEntityCap := flag.Int("per-entity-cap", 100, "Maximum pairs emitted per entity (0 disables capping)")
	seed := flag.Int64("seed", 42, "Global random seed for per-entity cap sampling")
	categories := flag.String("categories", "", "Comma-separated pair categories to emit: cross_script, latin_latin, non_latin (default: all)")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: number of CPUs, capped at 8)")
	minNameLength := flag.Int("min-name-length", 2, "Minimum name length in runes after trimming")
	statsOnly := flag.Bool("stats-only", false, "Compute and print the summary without writing pairs")
	downloadData := flag.Bool("download", false, "Download the OpenSanctions snapshot to the data directory and exit")
	downloadURL := flag.String("download-url", datasets.SourceURL, "Source URL for --download")
	verbose := flag.Bool("verbose", false, "Display detailed information for each pair")
	debug := flag.Bool("debug", false, "Enable debug logging of pipeline operations")
	noColor := flag.Bool("no-color", false, "Disable colored output")
	quiet := flag.Bool("quiet", false, "Suppress progress and summary output (useful for scripts and CI/CD)")
	showVersion := flag.Bool("version", false, "Show version information")

	flag.Parse()

	// Handle version command
	if *showVersion {
		fmt.Println(version.Info())
		return
	}

	// Auto-detect non-interactive environment
	isInteractive := isTerminal(os.Stderr)
	if !isInteractive || *quiet || os.Getenv("CI") != "" {
		*noColor = true
	}

	// Load configuration
	cfg := config.LoadConfigOrDefault(*configFile)

	// Handle profile operations
	activeProfile := handleProfiles(cfg, *listProfiles, *profileName)

	// Resolve final configuration values
	finalConfig := resolveConfiguration(cfg, activeProfile, &configFlags{
		outputFormat:  *outputFormat,
		schema:        *schema,
		datasetList:   *datasetList,
		perEntityCap:  *perEntityCap,
		seed:          *seed,
		categories:    *categories,
		workers:       *workers,
		minNameLength: *minNameLength,
		verbose:       *verbose,
		debug:         *debug,
		noColor:       *noColor,
	})

	if os.Getenv("CROSSPAIR_DEBUG") != "" {
		finalConfig.debug = true
	}

	// Set up observability
	var observer *observability.StandardObserver
	if finalConfig.debug {
		debugObs := observability.NewDebugObserver(os.Stderr)
		debugObs.LogDetail("main", fmt.Sprintf("Command line arguments: %v", os.Args))
		debugObs.LogDetail("config", fmt.Sprintf("format=%s schema=%s cap=%d seed=%d workers=%d",
			finalConfig.format, finalConfig.schema, finalConfig.perEntityCap, finalConfig.seed, finalConfig.workers))
		observer = debugObs.StandardObserver
		observer.DebugObserver = debugObs
	} else {
		observer = observability.NewStandardObserver(observability.ObservabilityMetrics, os.Stderr)
	}

	// Download mode: fetch the snapshot and exit
	if *downloadData {
		dest := *inputFile
		if dest == "" {
			dest = filepath.Join(paths.GetDataDir(), "targets.nested.json")
		}
		runDownload(*downloadURL, dest, *quiet, observer)
		return
	}

	if *inputFile == "" {
		fmt.Fprintf(os.Stderr, "Error: Input file is required\n")
		fmt.Fprintf(os.Stderr, "Specify the FtM JSON lines file with -file, or fetch one with -download\n")
		os.Exit(1)
	}

	// Build the extraction configuration
	extractCfg := extract.DefaultConfig()
	extractCfg.SchemaFilter = finalConfig.schema
	extractCfg.MinNameLength = finalConfig.minNameLength
	if len(finalConfig.nameProperties) > 0 {
		extractCfg.NameProperties = finalConfig.nameProperties
	}
	extractCfg.SplitSeparator = finalConfig.splitSeparator
	if len(finalConfig.datasetList) > 0 {
		extractCfg.Datasets = datasets.FromList(finalConfig.datasetList)
	}

	// Build the pairing configuration
	pairCfg := pairs.Config{
		PerEntityCap: finalConfig.perEntityCap,
		Seed:         finalConfig.seed,
	}
	if len(finalConfig.categories) > 0 {
		pairCfg.IncludeCategories = make(map[string]bool)
		for _, c := range finalConfig.categories {
			if !validCategory(c) {
				fmt.Fprintf(os.Stderr, "Error: Unknown pair category '%s' (valid: %s)\n",
					c, strings.Join(pairs.Categories(), ", "))
				os.Exit(1)
			}
			pairCfg.IncludeCategories[c] = true
		}
	}

	stream, err := extract.OpenStream(*inputFile, extractCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer stream.Close()

	// Run the stream through the worker pool, collecting per-entity results.
	processor := parallel.NewProcessor(finalConfig.workers, pairCfg, observer)
	summary := report.NewSummary()

	var collected []pairs.NamePair
	showProgress := !*quiet && isInteractive && !finalConfig.debug
	start := time.Now()

	var endStage func(success bool, details string)
	if observer.DebugObserver != nil {
		endStage = observer.DebugObserver.StartStage("pairing", *inputFile)
	}

	stats, err := processor.Run(stream, func(r *parallel.Result) {
		summary.AddEntity(r.EntityID, r.NameCount, r.Pairs)
		if !*statsOnly {
			collected = append(collected, r.Pairs...)
		}
		if showProgress && summary.TotalEntities%10000 == 0 {
			fmt.Fprintf(os.Stderr, "\rProcessed %d entities, %d pairs...", summary.TotalEntities, summary.TotalPairs)
		}
	})
	if showProgress && summary.TotalEntities >= 10000 {
		fmt.Fprintf(os.Stderr, "\r%s\r", strings.Repeat(" ", 60))
	}
	if endStage != nil {
		endStage(err == nil, fmt.Sprintf("%d entities, %d pairs", summary.TotalEntities, summary.TotalPairs))
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	summary.Elapsed = time.Since(start)

	if !*statsOnly {
		output, err := formatters.Export(finalConfig.format, collected, formatters.FormatterOptions{
			Verbose: finalConfig.verbose,
			NoColor: finalConfig.noColor || *outputFile != "",
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if *outputFile != "" {
			if err := os.WriteFile(*outputFile, []byte(output+"\n"), 0o600); err != nil {
				fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
				os.Exit(1)
			}
		} else {
			fmt.Println(output)
		}
	}

	// Summary goes to stderr so it never mixes with piped pair output.
	if !*quiet {
		fmt.Fprintln(os.Stderr, summary.Render(finalConfig.noColor))
		if finalConfig.debug {
			fmt.Fprintf(os.Stderr, "workers=%d avg_entity=%s\n", stats.WorkerCount, stats.AvgEntityTime)
		}
	}
}

// runDownload fetches the snapshot with progress on stderr.
func runDownload(url, dest string, quiet bool, observer *observability.StandardObserver) {
	var onProgress func(int64)
	if !quiet {
		fmt.Fprintf(os.Stderr, "Downloading %s\n", url)
		onProgress = func(written int64) {
			fmt.Fprintf(os.Stderr, "\r%d MiB...", written>>20)
		}
	}

	err := download.Fetch(context.Background(), download.Options{
		URL:        url,
		DestPath:   dest,
		OnProgress: onProgress,
		Observer:   observer,
	})
	if !quiet {
		fmt.Fprintln(os.Stderr)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Download failed: %v\n", err)
		os.Exit(1)
	}
	if !quiet {
		fmt.Fprintf(os.Stderr, "Saved to %s\n", dest)
	}
}

func validCategory(c string) bool {
	for _, known := range pairs.Categories() {
		if c == known {
			return true
		}
	}
	return false
}

func splitCommaList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// isFlagSet checks whether a flag was explicitly set on the command line
func isFlagSet(name string) bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// isTerminal checks if the file descriptor is a terminal
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Command ipa batch-transcribes personal names to broad IPA via an
// OpenAI-compatible inference endpoint.
package main

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"crosspair/internal/ipa"
	"crosspair/internal/version"
)

func main() {
	namesFile := flag.String("names-file", "", "Path to a plain text file with one name per line")
	inputFile := flag.String("input", "", "Path to a pairs CSV to pull names from (see -columns)")
	columns := flag.String("columns", "name_a,name_b", "Comma-separated CSV column names to read names from")
	outputFile := flag.String("output", "", "Path to output CSV (if not specified, output to stdout)")
	apiBase := flag.String("api-base", "", "OpenAI-compatible endpoint base URL (default: http://localhost:8355/v1)")
	model := flag.String("model", "", "Model identifier passed to the endpoint")
	n := flag.Int("n", 10, "Candidates generated per name (best-of-N)")
	temperature := flag.Float64("temperature", 0.6, "Sampling temperature")
	concurrency := flag.Int64("concurrency", 32, "Maximum API calls in flight")
	quiet := flag.Bool("quiet", false, "Suppress progress output")
	showVersion := flag.Bool("version", false, "Show version information")

	flag.Parse()

	if *showVersion {
		fmt.Println(version.Info())
		return
	}

	names, err := collectNames(*namesFile, *inputFile, *columns)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(names) == 0 {
		fmt.Fprintf(os.Stderr, "Error: No names to transcribe\n")
		fmt.Fprintf(os.Stderr, "Provide -names-file or -input with -columns\n")
		os.Exit(1)
	}

	generator := ipa.NewGenerator(ipa.GenerationConfig{
		APIBase:     *apiBase,
		Model:       *model,
		N:           *n,
		Temperature: *temperature,
		Concurrency: *concurrency,
	})

	var onProgress func(done, total int)
	if !*quiet {
		fmt.Fprintf(os.Stderr, "Transcribing %d names...\n", len(names))
		onProgress = func(done, total int) {
			fmt.Fprintf(os.Stderr, "\r%d/%d names...", done, total)
		}
	}

	results, err := generator.GenerateBatch(context.Background(), names, onProgress)
	if !*quiet {
		fmt.Fprintln(os.Stderr)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := writeResults(*outputFile, results); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if !*quiet {
		printSummary(results)
	}
}

// collectNames gathers the deduplicated name list from whichever input was
// given. Order of first appearance is preserved.
func collectNames(namesFile, inputFile, columns string) ([]string, error) {
	var names []string
	seen := make(map[string]struct{})
	add := func(name string) {
		name = strings.TrimSpace(name)
		if name == "" {
			return
		}
		if _, dup := seen[name]; dup {
			return
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}

	if namesFile != "" {
		f, err := os.Open(namesFile)
		if err != nil {
			return nil, fmt.Errorf("opening names file: %w", err)
		}
		defer f.Close()

		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			add(scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("reading names file: %w", err)
		}
	}

	if inputFile != "" {
		if err := collectFromCSV(inputFile, columns, add); err != nil {
			return nil, err
		}
	}

	return names, nil
}

// collectFromCSV pulls names out of the named columns of a CSV file.
func collectFromCSV(path, columns string, add func(string)) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening input CSV: %w", err)
	}
	defer f.Close()

	wanted := make(map[string]struct{})
	for _, c := range strings.Split(columns, ",") {
		if trimmed := strings.TrimSpace(c); trimmed != "" {
			wanted[trimmed] = struct{}{}
		}
	}
	if len(wanted) == 0 {
		return fmt.Errorf("no columns specified")
	}

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("reading CSV header: %w", err)
	}

	var indexes []int
	for i, col := range header {
		if _, ok := wanted[col]; ok {
			indexes = append(indexes, i)
		}
	}
	if len(indexes) == 0 {
		return fmt.Errorf("none of the columns %q found in CSV header %v", columns, header)
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("reading CSV: %w", err)
		}
		for _, idx := range indexes {
			if idx < len(record) {
				add(record[idx])
			}
		}
	}
	return nil
}

// writeResults emits name,ipa,confidence,n_candidates CSV rows.
func writeResults(outputFile string, results []ipa.Result) error {
	out := os.Stdout
	if outputFile != "" {
		f, err := os.OpenFile(outputFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	w := csv.NewWriter(out)
	if err := w.Write([]string{"name", "ipa", "confidence", "n_candidates"}); err != nil {
		return err
	}
	for _, r := range results {
		row := []string{
			r.Name,
			r.IPA,
			strconv.FormatFloat(r.Confidence, 'f', 2, 64),
			strconv.Itoa(len(r.Candidates)),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// printSummary reports consensus quality on stderr.
func printSummary(results []ipa.Result) {
	var transcribed, highConf, failed int
	confidences := make([]float64, 0, len(results))
	for _, r := range results {
		if r.IPA == "" {
			failed++
			continue
		}
		transcribed++
		if r.Confidence >= 0.5 {
			highConf++
		}
		confidences = append(confidences, r.Confidence)
	}

	fmt.Fprintf(os.Stderr, "Transcribed %d names (%d high-confidence, %d failed)\n",
		transcribed, highConf, failed)
	if len(confidences) > 0 {
		sort.Float64s(confidences)
		var sum float64
		for _, c := range confidences {
			sum += c
		}
		fmt.Fprintf(os.Stderr, "Confidence: mean %.2f, median %.2f\n",
			sum/float64(len(confidences)), confidences[len(confidences)/2])
	}
}

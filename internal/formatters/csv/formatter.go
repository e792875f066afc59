// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package csv

import (
	"fmt"
	"strings"

	"crosspair/internal/formatters"
	"crosspair/internal/pairs"
)

// Formatter implements CSV output formatting
type Formatter struct{}

// NewFormatter creates a new CSV formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Name() string {
	return "csv"
}

func (f *Formatter) Description() string {
	return "Comma-separated values for spreadsheet and training-data pipelines"
}

func (f *Formatter) FileExtension() string {
	return ".csv"
}

// header is the fixed column order. Downstream training pipelines key on
// these names, so they never change with options.
var header = []string{
	"pair_id", "entity_id",
	"name_a", "script_a", "property_a",
	"name_b", "script_b", "property_b",
	"pair_category", "source_datasets",
}

func (f *Formatter) Format(results []pairs.NamePair, options formatters.FormatterOptions) (string, error) {
	csvRows := []string{strings.Join(header, ",")}

	for _, pair := range results {
		row := []string{
			pair.PairID,
			f.escapeCSVField(pair.EntityID),
			f.escapeCSVField(pair.NameA),
			f.escapeCSVField(pair.ScriptA),
			f.escapeCSVField(pair.PropertyA),
			f.escapeCSVField(pair.NameB),
			f.escapeCSVField(pair.ScriptB),
			f.escapeCSVField(pair.PropertyB),
			f.escapeCSVField(pair.Category),
			f.escapeCSVField(strings.Join(pair.SourceDatasets, "|")),
		}
		csvRows = append(csvRows, strings.Join(row, ","))
	}

	return strings.Join(csvRows, "\n"), nil
}

// escapeCSVField properly escapes a field for CSV format. Names are emitted
// verbatim (no formula neutralization): transliteration training data must
// round-trip exactly, including names starting with "-" or "+".
func (f *Formatter) escapeCSVField(field string) string {
	if strings.Contains(field, ",") || strings.Contains(field, "\"") || strings.Contains(field, "\n") || strings.Contains(field, "\r") {
		escaped := strings.ReplaceAll(field, "\"", "\"\"")
		return fmt.Sprintf("\"%s\"", escaped)
	}
	return field
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}

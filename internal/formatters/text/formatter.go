// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package text

import (
	"fmt"
	"strings"

	"crosspair/internal/formatters"
	"crosspair/internal/pairs"

	"github.com/fatih/color"
)

// Formatter implements text-based output formatting
type Formatter struct {
	colors map[string]*color.Color
}

// NewFormatter creates a new text formatter
func NewFormatter() *Formatter {
	return &Formatter{
		colors: map[string]*color.Color{
			"green":   color.New(color.FgGreen),
			"yellow":  color.New(color.FgYellow),
			"cyan":    color.New(color.FgCyan),
			"magenta": color.New(color.FgMagenta),
			"white":   color.New(color.FgWhite, color.Bold),
		},
	}
}

func (f *Formatter) Name() string {
	return "text"
}

func (f *Formatter) Description() string {
	return "Human-readable text output with colors"
}

func (f *Formatter) FileExtension() string {
	return ".txt"
}

func (f *Formatter) Format(results []pairs.NamePair, options formatters.FormatterOptions) (string, error) {
	// Disable colors if requested
	if options.NoColor {
		color.NoColor = true
	}

	if len(results) == 0 {
		return "No pairs generated.", nil
	}

	var builder strings.Builder
	currentEntity := ""
	for _, pair := range results {
		if pair.EntityID != currentEntity {
			currentEntity = pair.EntityID
			builder.WriteString(f.colors["white"].Sprintf("%s", pair.EntityID))
			builder.WriteString("\n")
		}
		if options.Verbose {
			builder.WriteString(fmt.Sprintf("  [%s] %s  %s (%s/%s) <-> %s (%s/%s)  datasets=%s\n",
				f.categoryColor(pair.Category).Sprint(pair.Category),
				pair.PairID,
				pair.NameA, pair.ScriptA, pair.PropertyA,
				pair.NameB, pair.ScriptB, pair.PropertyB,
				strings.Join(pair.SourceDatasets, "|")))
		} else {
			builder.WriteString(fmt.Sprintf("  [%s] %s <-> %s\n",
				f.categoryColor(pair.Category).Sprint(pair.Category),
				pair.NameA, pair.NameB))
		}
	}

	return builder.String(), nil
}

func (f *Formatter) categoryColor(category string) *color.Color {
	switch category {
	case pairs.CategoryCrossScript:
		return f.colors["cyan"]
	case pairs.CategoryLatinLatin:
		return f.colors["green"]
	default:
		return f.colors["magenta"]
	}
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}

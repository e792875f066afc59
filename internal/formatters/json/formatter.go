// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package json

import (
	"encoding/json"
	"fmt"

	"crosspair/internal/formatters"
	"crosspair/internal/pairs"
)

// Formatter implements JSON output formatting
type Formatter struct{}

// NewFormatter creates a new JSON formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Name() string {
	return "json"
}

func (f *Formatter) Description() string {
	return "Structured JSON output for programmatic consumption"
}

func (f *Formatter) FileExtension() string {
	return ".json"
}

func (f *Formatter) Format(results []pairs.NamePair, options formatters.FormatterOptions) (string, error) {
	if len(results) == 0 {
		return "[]", nil
	}

	var jsonData []byte
	var err error
	if options.Verbose {
		jsonData, err = json.MarshalIndent(results, "", "  ")
	} else {
		jsonData, err = json.Marshal(results)
	}
	if err != nil {
		return "", fmt.Errorf("error formatting JSON: %w", err)
	}

	return string(jsonData), nil
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}

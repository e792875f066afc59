// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package extract turns raw FtM entity records into filtered, classified
// name sets ready for pair generation.
package extract

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"crosspair/internal/datasets"
	"crosspair/internal/scripts"
)

// NameRecord is one surviving name string attached to an entity.
// Immutable once created.
type NameRecord struct {
	Text           string
	Scripts        map[string]struct{}
	SourceProperty string // "name", "alias", "previousName", "weakAlias"
}

// EntityRecord is one filtered, processed entity.
type EntityRecord struct {
	EntityID string
	Datasets []string // sorted intersection with the target dataset set
	Names    []NameRecord
}

// Config controls entity filtering and name extraction.
// The zero value is not usable; start from DefaultConfig.
type Config struct {
	// SchemaFilter keeps only records whose schema tag matches.
	SchemaFilter string
	// NameProperties are the name-bearing property keys, in scan order.
	// The order is significant: it fixes dedup precedence and the canonical
	// ordering tie-breaks downstream.
	NameProperties []string
	// Datasets is the target dataset set; nil means datasets.Default.
	Datasets map[string]struct{}
	// SplitSeparator splits multi-name values; empty disables splitting.
	SplitSeparator string
	// MinNameLength rejects trimmed parts shorter than this.
	MinNameLength int
}

// DefaultConfig returns the extraction configuration used by the CLI when
// nothing is overridden.
func DefaultConfig() Config {
	return Config{
		SchemaFilter:   "Person",
		NameProperties: []string{"name", "alias", "previousName", "weakAlias"},
		SplitSeparator: " / ",
		MinNameLength:  2,
	}
}

// EffectiveDatasets resolves the target dataset set.
func (c Config) EffectiveDatasets() map[string]struct{} {
	if c.Datasets != nil {
		return c.Datasets
	}
	return datasets.Default
}

// CleanNames extracts, splits, filters, and deduplicates name strings from
// one entity's name-bearing properties, tagging each survivor with its
// script set and source property.
//
// Scan order is properties in configured order, then raw-value order, then
// split order. Dedup is by exact trimmed text; the first occurrence wins
// even when a later duplicate comes from a different property.
func CleanNames(props map[string][]string, cfg Config, classifier *scripts.Classifier) []NameRecord {
	seen := make(map[string]struct{})
	var records []NameRecord

	for _, key := range cfg.NameProperties {
		for _, raw := range props[key] {
			parts := []string{raw}
			if cfg.SplitSeparator != "" {
				parts = strings.Split(raw, cfg.SplitSeparator)
			}
			for _, part := range parts {
				text := strings.TrimSpace(part)
				if utf8.RuneCountInString(text) < cfg.MinNameLength {
					continue
				}
				if !hasLetter(text) {
					continue
				}
				if _, dup := seen[text]; dup {
					continue
				}
				seen[text] = struct{}{}
				records = append(records, NameRecord{
					Text:           text,
					Scripts:        classifier.DetectScripts(text),
					SourceProperty: key,
				})
			}
		}
	}
	return records
}

func hasLetter(text string) bool {
	for _, r := range text {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

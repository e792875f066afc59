// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package report accumulates run statistics and renders the end-of-run
// summary. A single Summary is fed from the collector goroutine, so no
// locking is needed.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"crosspair/internal/pairs"

	"github.com/fatih/color"
)

// EntityCount is one row of the per-entity leaderboard.
type EntityCount struct {
	EntityID string `json:"entity_id"`
	Pairs    int    `json:"pairs"`
}

// Summary aggregates counters over one extraction run.
type Summary struct {
	TotalEntities    int            `json:"total_entities"`
	EligibleEntities int            `json:"eligible_entities"` // entities that produced at least one pair
	TotalNames       int            `json:"total_names"`
	TotalPairs       int            `json:"total_pairs"`
	PairsByCategory  map[string]int `json:"pairs_by_category"`
	ScriptCounts     map[string]int `json:"script_counts"` // dominant script of each name
	Elapsed          time.Duration  `json:"elapsed_ms"`

	entityPairs map[string]int
}

// NewSummary creates an empty summary.
func NewSummary() *Summary {
	return &Summary{
		PairsByCategory: make(map[string]int),
		ScriptCounts:    make(map[string]int),
		entityPairs:     make(map[string]int),
	}
}

// AddEntity records one processed entity and its generated pairs.
func (s *Summary) AddEntity(entityID string, nameCount int, generated []pairs.NamePair) {
	s.TotalEntities++
	s.TotalNames += nameCount
	if len(generated) == 0 {
		return
	}
	s.EligibleEntities++
	s.TotalPairs += len(generated)
	s.entityPairs[entityID] += len(generated)
	for _, p := range generated {
		s.PairsByCategory[p.Category]++
		s.ScriptCounts[p.ScriptA]++
		s.ScriptCounts[p.ScriptB]++
	}
}

// TopEntities returns the n entities with the most pairs, ties broken by
// entity ID so the leaderboard is stable across runs.
func (s *Summary) TopEntities(n int) []EntityCount {
	counts := make([]EntityCount, 0, len(s.entityPairs))
	for id, c := range s.entityPairs {
		counts = append(counts, EntityCount{EntityID: id, Pairs: c})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Pairs != counts[j].Pairs {
			return counts[i].Pairs > counts[j].Pairs
		}
		return counts[i].EntityID < counts[j].EntityID
	})
	if len(counts) > n {
		counts = counts[:n]
	}
	return counts
}

// Render returns the human-readable summary block.
func (s *Summary) Render(noColor bool) string {
	if noColor {
		color.NoColor = true
	}

	header := color.New(color.FgWhite, color.Bold)
	label := color.New(color.FgCyan)
	num := color.New(color.FgGreen)

	var b strings.Builder
	b.WriteString(header.Sprint("Extraction Summary"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s %s\n", label.Sprint("Entities processed:"), num.Sprintf("%d", s.TotalEntities)))
	b.WriteString(fmt.Sprintf("  %s %s\n", label.Sprint("Entities with pairs:"), num.Sprintf("%d", s.EligibleEntities)))
	b.WriteString(fmt.Sprintf("  %s %s\n", label.Sprint("Names seen:"), num.Sprintf("%d", s.TotalNames)))
	b.WriteString(fmt.Sprintf("  %s %s\n", label.Sprint("Pairs generated:"), num.Sprintf("%d", s.TotalPairs)))

	b.WriteString("  Pairs by category:\n")
	for _, category := range pairs.Categories() {
		b.WriteString(fmt.Sprintf("    %-14s %d\n", category, s.PairsByCategory[category]))
	}

	if len(s.ScriptCounts) > 0 {
		b.WriteString("  Scripts:\n")
		scripts := make([]string, 0, len(s.ScriptCounts))
		for sc := range s.ScriptCounts {
			scripts = append(scripts, sc)
		}
		sort.Strings(scripts)
		for _, sc := range scripts {
			b.WriteString(fmt.Sprintf("    %-14s %d\n", sc, s.ScriptCounts[sc]))
		}
	}

	if top := s.TopEntities(10); len(top) > 0 {
		b.WriteString("  Top entities:\n")
		for _, e := range top {
			b.WriteString(fmt.Sprintf("    %-24s %d\n", e.EntityID, e.Pairs))
		}
	}

	b.WriteString(fmt.Sprintf("  %s %s\n", label.Sprint("Elapsed:"), s.Elapsed.Round(time.Millisecond)))
	return b.String()
}

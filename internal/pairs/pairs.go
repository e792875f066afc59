// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package pairs generates classified, canonically ordered, capped
// within-entity name pairs. Everything here is deterministic: a fixed
// entity and configuration always produce the same pair set, the same
// (a, b) orderings, and the same pair ids, across runs and processes.
package pairs

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math/rand"

	"crosspair/internal/extract"
	"crosspair/internal/scripts"
)

// Pair categories, in capping priority order. Cross-script pairs are the
// highest-value training signal and are never dropped while a lower tier
// is kept.
const (
	CategoryCrossScript = "cross_script"
	CategoryLatinLatin  = "latin_latin"
	CategoryNonLatin    = "non_latin"
)

// tierOrder fixes the capping walk. Never reorder: the cap semantics and
// the determinism tests depend on it.
var tierOrder = [...]string{CategoryCrossScript, CategoryLatinLatin, CategoryNonLatin}

// Categories returns the pair categories in priority order.
func Categories() []string {
	return []string{CategoryCrossScript, CategoryLatinLatin, CategoryNonLatin}
}

// NamePair is one output pair for one entity, in canonical order.
type NamePair struct {
	PairID         string   `json:"pair_id"`
	EntityID       string   `json:"entity_id"`
	NameA          string   `json:"name_a"`
	ScriptA        string   `json:"script_a"`
	PropertyA      string   `json:"property_a"`
	NameB          string   `json:"name_b"`
	ScriptB        string   `json:"script_b"`
	PropertyB      string   `json:"property_b"`
	Category       string   `json:"pair_category"`
	SourceDatasets []string `json:"source_datasets"`
}

// Config controls pair generation and capping.
type Config struct {
	// PerEntityCap bounds the pairs emitted for one entity. Some entities
	// carry 50+ aliases, which would otherwise contribute thousands of pairs.
	// Zero or negative disables capping.
	PerEntityCap int
	// Seed is the global RNG seed; combined per entity with a hash of the
	// entity id so capping is reproducible across runs.
	Seed int64
	// IncludeCategories filters emitted categories; nil means all three.
	IncludeCategories map[string]bool
}

// DefaultConfig returns the pairing configuration used by the CLI when
// nothing is overridden.
func DefaultConfig() Config {
	return Config{
		PerEntityCap: 100,
		Seed:         42,
	}
}

func (c Config) includes(category string) bool {
	if c.IncludeCategories == nil {
		return true
	}
	return c.IncludeCategories[category]
}

// PairID computes the content-addressed pair identifier: the first 16 hex
// characters of SHA-256 over entity_id, canonical name_a, and canonical
// name_b joined by NUL bytes. No dependence on process state or randomized
// hashing.
func PairID(entityID, nameA, nameB string) string {
	h := sha256.New()
	h.Write([]byte(entityID))
	h.Write([]byte{0})
	h.Write([]byte(nameA))
	h.Write([]byte{0})
	h.Write([]byte(nameB))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// classifyPair labels a pair from its two dominant scripts.
func classifyPair(domA, domB string) string {
	if domA == domB {
		if domA == "Latin" {
			return CategoryLatinLatin
		}
		return CategoryNonLatin
	}
	return CategoryCrossScript
}

// canonicalOrder fixes which side is (a). Cross-script pairs put a
// Latin-dominant side first; everything else orders ascending by
// (dominant script, text). The ordering is a strict total order over the
// two sides, so swapping the inputs yields the identical canonical pair.
func canonicalOrder(nrA extract.NameRecord, domA string, nrB extract.NameRecord, domB string, category string) (extract.NameRecord, string, extract.NameRecord, string) {
	if category == CategoryCrossScript {
		if domA == "Latin" {
			return nrA, domA, nrB, domB
		}
		if domB == "Latin" {
			return nrB, domB, nrA, domA
		}
	}
	if domA < domB || (domA == domB && nrA.Text <= nrB.Text) {
		return nrA, domA, nrB, domB
	}
	return nrB, domB, nrA, domA
}

// entityRand builds the per-entity deterministic generator: the global seed
// XORed with the first 32 bits of SHA-256(entity_id). Never a language-level
// hash, which is salted per process.
func entityRand(seed int64, entityID string) *rand.Rand {
	sum := sha256.Sum256([]byte(entityID))
	return rand.New(rand.NewSource(seed ^ int64(binary.BigEndian.Uint32(sum[:4]))))
}

// shuffle is an explicit Fisher-Yates so the selection order is pinned to
// this algorithm rather than whatever rand.Shuffle does in a given release.
func shuffle(ps []NamePair, r *rand.Rand) {
	for i := len(ps) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		ps[i], ps[j] = ps[j], ps[i]
	}
}

// GeneratePairs produces the full, classified, capped pair set for one
// entity. Entities with fewer than two names yield nil. The function
// performs no I/O and cannot fail.
func GeneratePairs(entity extract.EntityRecord, cfg Config) []NamePair {
	names := entity.Names
	if len(names) < 2 {
		return nil
	}

	dominants := make([]string, len(names))
	for i, nr := range names {
		dominants[i] = scripts.DominantScript(nr.Scripts)
	}

	buckets := map[string][]NamePair{}
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			category := classifyPair(dominants[i], dominants[j])
			if !cfg.includes(category) {
				continue
			}
			cA, cDomA, cB, cDomB := canonicalOrder(names[i], dominants[i], names[j], dominants[j], category)
			buckets[category] = append(buckets[category], NamePair{
				PairID:         PairID(entity.EntityID, cA.Text, cB.Text),
				EntityID:       entity.EntityID,
				NameA:          cA.Text,
				ScriptA:        cDomA,
				PropertyA:      cA.SourceProperty,
				NameB:          cB.Text,
				ScriptB:        cDomB,
				PropertyB:      cB.SourceProperty,
				Category:       category,
				SourceDatasets: entity.Datasets,
			})
		}
	}

	// Tiered cap: walk categories in priority order, keeping whole tiers
	// while they fit; the first tier that overflows is sampled via the
	// entity-seeded shuffle and exhausts the budget.
	if cfg.PerEntityCap <= 0 {
		var selected []NamePair
		for _, tier := range tierOrder {
			selected = append(selected, buckets[tier]...)
		}
		return selected
	}

	budget := cfg.PerEntityCap
	rng := entityRand(cfg.Seed, entity.EntityID)
	var selected []NamePair
	for _, tier := range tierOrder {
		candidates := buckets[tier]
		if len(candidates) == 0 || budget <= 0 {
			continue
		}
		if len(candidates) <= budget {
			selected = append(selected, candidates...)
			budget -= len(candidates)
			continue
		}
		shuffle(candidates, rng)
		selected = append(selected, candidates[:budget]...)
		budget = 0
	}
	return selected
}

// Generate runs GeneratePairs over a sequence of entities, appending into a
// single slice. Convenience for callers that do not need the worker pool.
func Generate(entities []extract.EntityRecord, cfg Config) []NamePair {
	var out []NamePair
	for _, e := range entities {
		out = append(out, GeneratePairs(e, cfg)...)
	}
	return out
}

// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package pairs

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crosspair/internal/extract"
	"crosspair/internal/scripts"
)

func nameRecord(text, property string) extract.NameRecord {
	return extract.NameRecord{
		Text:           text,
		Scripts:        scripts.DetectScripts(text),
		SourceProperty: property,
	}
}

func entity(id string, names ...extract.NameRecord) extract.EntityRecord {
	return extract.EntityRecord{
		EntityID: id,
		Datasets: []string{"us_ofac_sdn"},
		Names:    names,
	}
}

func TestGeneratePairs_CrossScript(t *testing.T) {
	e := entity("e1",
		nameRecord("Vladimir Putin", "name"),
		nameRecord("Владимир Путин", "alias"),
	)

	got := GeneratePairs(e, DefaultConfig())
	require.Len(t, got, 1)

	p := got[0]
	assert.Equal(t, CategoryCrossScript, p.Category)
	assert.Equal(t, "Vladimir Putin", p.NameA, "Latin side must come first")
	assert.Equal(t, "Latin", p.ScriptA)
	assert.Equal(t, "Владимир Путин", p.NameB)
	assert.Equal(t, "Cyrillic", p.ScriptB)
	assert.Equal(t, "name", p.PropertyA)
	assert.Equal(t, "alias", p.PropertyB)
	assert.Equal(t, []string{"us_ofac_sdn"}, p.SourceDatasets)

	sum := sha256.Sum256([]byte("e1\x00Vladimir Putin\x00Владимир Путин"))
	assert.Equal(t, hex.EncodeToString(sum[:])[:16], p.PairID)
}

func TestGeneratePairs_CountInvariant(t *testing.T) {
	for _, n := range []int{2, 3, 5, 10} {
		var names []extract.NameRecord
		for i := 0; i < n; i++ {
			names = append(names, nameRecord(fmt.Sprintf("Name Number %d", i), "name"))
		}
		cfg := DefaultConfig()
		cfg.PerEntityCap = n * n // no truncation
		got := GeneratePairs(entity("e", names...), cfg)
		assert.Len(t, got, n*(n-1)/2, "n=%d", n)
	}
}

func TestGeneratePairs_FewerThanTwoNames(t *testing.T) {
	assert.Empty(t, GeneratePairs(entity("e"), DefaultConfig()))
	assert.Empty(t, GeneratePairs(entity("e", nameRecord("Solo Name", "name")), DefaultConfig()))
}

func TestGeneratePairs_Deterministic(t *testing.T) {
	var names []extract.NameRecord
	for i := 0; i < 20; i++ {
		names = append(names, nameRecord(fmt.Sprintf("Alias Number %d", i), "alias"))
	}
	e := entity("Q4242", names...)
	cfg := DefaultConfig()
	cfg.PerEntityCap = 25 // force sampling

	first := GeneratePairs(e, cfg)
	second := GeneratePairs(e, cfg)
	require.Equal(t, first, second, "same input and seed must reproduce the exact selection")

	cfg.Seed = 43
	reseeded := GeneratePairs(e, cfg)
	assert.NotEqual(t, first, reseeded, "a different seed should select a different sample")
}

func TestCanonicalOrder_Symmetric(t *testing.T) {
	a := nameRecord("Abu Mohammed", "name")
	b := nameRecord("محمد", "alias")

	forward := GeneratePairs(entity("e1", a, b), DefaultConfig())
	reversed := GeneratePairs(entity("e1", b, a), DefaultConfig())
	require.Len(t, forward, 1)
	require.Len(t, reversed, 1)

	assert.Equal(t, forward[0].PairID, reversed[0].PairID)
	assert.Equal(t, forward[0].NameA, reversed[0].NameA)
	assert.Equal(t, forward[0].NameB, reversed[0].NameB)
}

func TestCanonicalOrder_SameScriptAlphabetical(t *testing.T) {
	a := nameRecord("Zelda Fitzgerald", "name")
	b := nameRecord("Anna Karenina", "alias")

	got := GeneratePairs(entity("e1", a, b), DefaultConfig())
	require.Len(t, got, 1)
	assert.Equal(t, CategoryLatinLatin, got[0].Category)
	assert.Equal(t, "Anna Karenina", got[0].NameA, "same-script pairs order by (script, text)")
	assert.Equal(t, "Zelda Fitzgerald", got[0].NameB)
}

func TestGeneratePairs_NonLatinCategory(t *testing.T) {
	got := GeneratePairs(entity("e1",
		nameRecord("Владимир", "name"),
		nameRecord("Вова", "alias"),
	), DefaultConfig())
	require.Len(t, got, 1)
	assert.Equal(t, CategoryNonLatin, got[0].Category)
	assert.Equal(t, "Cyrillic", got[0].ScriptA)
	assert.Equal(t, "Cyrillic", got[0].ScriptB)
}

func TestGeneratePairs_IncludeCategories(t *testing.T) {
	e := entity("e1",
		nameRecord("Vladimir Putin", "name"),
		nameRecord("Vladimir Vladimirovich", "name"),
		nameRecord("Владимир Путин", "alias"),
	)
	cfg := DefaultConfig()
	cfg.IncludeCategories = map[string]bool{CategoryCrossScript: true}

	got := GeneratePairs(e, cfg)
	require.Len(t, got, 2)
	for _, p := range got {
		assert.Equal(t, CategoryCrossScript, p.Category)
	}
}

func TestGeneratePairs_CapInvariant(t *testing.T) {
	// 4 Latin + 4 Cyrillic names: 16 cross-script, 6 latin_latin, 6 non_latin.
	var names []extract.NameRecord
	for i := 0; i < 4; i++ {
		names = append(names, nameRecord(fmt.Sprintf("Latin Name %d", i), "name"))
		names = append(names, nameRecord(fmt.Sprintf("Имя Номер %d", i), "alias"))
	}
	e := entity("capped", names...)

	cfg := DefaultConfig()
	cfg.PerEntityCap = 20
	got := GeneratePairs(e, cfg)
	require.Len(t, got, 20, "emitted count is min(cap, total)")

	byCategory := map[string]int{}
	for _, p := range got {
		byCategory[p.Category]++
	}
	// Cross-script pairs have absolute priority: all 16 kept, the remaining
	// budget of 4 sampled from latin_latin, non_latin skipped entirely.
	assert.Equal(t, 16, byCategory[CategoryCrossScript])
	assert.Equal(t, 4, byCategory[CategoryLatinLatin])
	assert.Equal(t, 0, byCategory[CategoryNonLatin])
}

func TestGeneratePairs_CapBelowCrossScript(t *testing.T) {
	var names []extract.NameRecord
	for i := 0; i < 4; i++ {
		names = append(names, nameRecord(fmt.Sprintf("Latin Name %d", i), "name"))
		names = append(names, nameRecord(fmt.Sprintf("Имя Номер %d", i), "alias"))
	}
	cfg := DefaultConfig()
	cfg.PerEntityCap = 10
	got := GeneratePairs(entity("capped", names...), cfg)

	require.Len(t, got, 10)
	for _, p := range got {
		assert.Equal(t, CategoryCrossScript, p.Category,
			"when the top tier overflows, no lower-priority pair may appear")
	}
}

func TestGeneratePairs_ZeroCapDisablesCapping(t *testing.T) {
	var names []extract.NameRecord
	for i := 0; i < 6; i++ {
		names = append(names, nameRecord(fmt.Sprintf("Latin Name %d", i), "name"))
		names = append(names, nameRecord(fmt.Sprintf("Имя Номер %d", i), "alias"))
	}
	e := entity("uncapped", names...)

	cfg := DefaultConfig()
	cfg.PerEntityCap = 0
	got := GeneratePairs(e, cfg)
	assert.Len(t, got, 12*11/2, "cap 0 must emit the full pair set")

	cfg.PerEntityCap = -1
	assert.Len(t, GeneratePairs(e, cfg), 12*11/2, "negative cap also disables capping")

	// Minimal case from the flag's contract: a two-name entity still pairs.
	small := entity("e1",
		nameRecord("Vladimir Putin", "name"),
		nameRecord("Владимир Путин", "alias"),
	)
	cfg.PerEntityCap = 0
	require.Len(t, GeneratePairs(small, cfg), 1)
}

func TestGeneratePairs_NoTruncationBelowCap(t *testing.T) {
	e := entity("small",
		nameRecord("Ivan Petrov", "name"),
		nameRecord("Иван Петров", "alias"),
		nameRecord("John Doe", "weakAlias"),
	)
	got := GeneratePairs(e, DefaultConfig())
	assert.Len(t, got, 3, "3 names yield C(3,2) pairs, well under the cap")
}

func TestPairID_Stable(t *testing.T) {
	id := PairID("e1", "Alpha", "Beta")
	assert.Len(t, id, 16)
	assert.Equal(t, id, PairID("e1", "Alpha", "Beta"))
	assert.NotEqual(t, id, PairID("e2", "Alpha", "Beta"))
	assert.NotEqual(t, id, PairID("e1", "Beta", "Alpha"))
}

func TestGenerate_MultipleEntities(t *testing.T) {
	es := []extract.EntityRecord{
		entity("e1", nameRecord("Ivan Petrov", "name"), nameRecord("Иван Петров", "alias")),
		entity("e2", nameRecord("Solo Name", "name")),
		entity("e3", nameRecord("Anna Pavlova", "name"), nameRecord("Анна Павлова", "alias")),
	}
	got := Generate(es, DefaultConfig())
	assert.Len(t, got, 2)
}

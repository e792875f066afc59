// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package scripts

import (
	"sort"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/unicode/runenames"
)

// scriptNames maps the leading word of a rune's formal Unicode name to a
// human-readable script label. Covers every script observed in OpenSanctions
// Person entities plus common edge cases; anything else degrades to a
// synthetic Other(...) label rather than growing the table.
var scriptNames = map[string]string{
	"LATIN":             "Latin",
	"CYRILLIC":          "Cyrillic",
	"ARABIC":            "Arabic",
	"ARABIC-INDIC":      "Arabic",
	"CJK":               "CJK",
	"KANGXI":            "CJK",
	"IDEOGRAPHIC":       "CJK",
	"FULLWIDTH":         "CJK",
	"HALFWIDTH":         "CJK",
	"HANGUL":            "Hangul",
	"DEVANAGARI":        "Devanagari",
	"HIRAGANA":          "Hiragana",
	"KATAKANA":          "Katakana",
	"KATAKANA-HIRAGANA": "Katakana",
	"THAI":              "Thai",
	"GEORGIAN":          "Georgian",
	"ARMENIAN":          "Armenian",
	"HEBREW":            "Hebrew",
	"BENGALI":           "Bengali",
	"GURMUKHI":          "Gurmukhi",
	"GUJARATI":          "Gujarati",
	"TAMIL":             "Tamil",
	"TELUGU":            "Telugu",
	"KANNADA":           "Kannada",
	"MALAYALAM":         "Malayalam",
	"MYANMAR":           "Myanmar",
	"KHMER":             "Khmer",
	"TIBETAN":           "Tibetan",
	"ETHIOPIC":          "Ethiopic",
	"GREEK":             "Greek",
}

// Classifier assigns script labels to runes, memoizing every lookup.
// The Unicode name lookup is the expensive part (~10k distinct runes across
// 240k names in a full extraction run), so each distinct rune is resolved
// exactly once. The cache stores the empty string for runes that carry no
// label, so misses are memoized too. Safe for concurrent use; a cache fill
// races at worst to the same value (the classification is pure).
type Classifier struct {
	cache sync.Map // rune -> string ("" means no label)
}

// NewClassifier creates a classifier with an empty memo cache.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// defaultClassifier backs the package-level convenience functions.
var defaultClassifier = NewClassifier()

// ClassifyRune returns the script label for an alphabetic rune.
// ok is false for non-letters and for letters without a Unicode name.
func (c *Classifier) ClassifyRune(r rune) (label string, ok bool) {
	if v, hit := c.cache.Load(r); hit {
		label = v.(string)
		return label, label != ""
	}
	if unicode.IsLetter(r) {
		if name := runenames.Name(r); name != "" {
			prefix, _, _ := strings.Cut(name, " ")
			if mapped, known := scriptNames[prefix]; known {
				label = mapped
			} else {
				label = "Other(" + prefix + ")"
			}
		}
	}
	c.cache.Store(r, label)
	return label, label != ""
}

// DetectScripts returns the set of script labels present among the
// alphabetic runes of text.
func (c *Classifier) DetectScripts(text string) map[string]struct{} {
	found := make(map[string]struct{})
	for _, r := range text {
		if label, ok := c.ClassifyRune(r); ok {
			found[label] = struct{}{}
		}
	}
	return found
}

// ClassifyRune classifies a rune using the shared default classifier.
func ClassifyRune(r rune) (string, bool) {
	return defaultClassifier.ClassifyRune(r)
}

// DetectScripts detects scripts using the shared default classifier.
func DetectScripts(text string) map[string]struct{} {
	return defaultClassifier.DetectScripts(text)
}

// DominantScript collapses a set of script labels to a single representative
// label for coarse pair classification. Rules, in order:
//
//   - empty set: "Unknown"
//   - single label: that label
//   - Latin plus exactly one non-Latin: the non-Latin (stray Latin runes in
//     otherwise non-Latin names must not mask the real script)
//   - multiple non-Latin: the lexicographically smallest, for determinism
//   - only Latin: "Latin"
//
// Pure and total; never fails.
func DominantScript(found map[string]struct{}) string {
	if len(found) == 0 {
		return "Unknown"
	}
	if len(found) == 1 {
		for label := range found {
			return label
		}
	}
	nonLatin := make([]string, 0, len(found))
	for label := range found {
		if label != "Latin" {
			nonLatin = append(nonLatin, label)
		}
	}
	switch len(nonLatin) {
	case 0:
		return "Latin"
	case 1:
		return nonLatin[0]
	}
	sort.Strings(nonLatin)
	return nonLatin[0]
}

// DominantScriptWeighted determines the dominant script of text by rune
// frequency. More accurate than DominantScript(DetectScripts(text)) for
// mixed-script names, since it weights by count. Ties break toward the
// lexicographically smaller label.
func (c *Classifier) DominantScriptWeighted(text string) string {
	counts := make(map[string]int)
	for _, r := range text {
		if label, ok := c.ClassifyRune(r); ok {
			counts[label]++
		}
	}
	if len(counts) == 0 {
		return "Unknown"
	}
	best := ""
	bestCount := -1
	for label, n := range counts {
		if n > bestCount || (n == bestCount && label < best) {
			best = label
			bestCount = n
		}
	}
	return best
}

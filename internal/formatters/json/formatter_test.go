// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package json

import (
	"encoding/json"
	"testing"

	"crosspair/internal/formatters"
	"crosspair/internal/pairs"
)

func TestJSONFormatter_RoundTrip(t *testing.T) {
	input := []pairs.NamePair{
		{
			PairID:         "deadbeef00112233",
			EntityID:       "NK-xyz",
			NameA:          "Kim Chol",
			ScriptA:        "Latin",
			PropertyA:      "name",
			NameB:          "김철",
			ScriptB:        "Hangul",
			PropertyB:      "alias",
			Category:       pairs.CategoryCrossScript,
			SourceDatasets: []string{"un_sc_sanctions"},
		},
	}

	f := NewFormatter()
	out, err := f.Format(input, formatters.FormatterOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded []pairs.NamePair
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded) != 1 {
		t.Fatalf("expected 1 pair, got %d", len(decoded))
	}
	if decoded[0].PairID != input[0].PairID || decoded[0].Category != input[0].Category {
		t.Errorf("round-trip mismatch: %+v", decoded[0])
	}
	if decoded[0].NameB != "김철" {
		t.Errorf("non-Latin text must survive encoding, got %q", decoded[0].NameB)
	}
}

func TestJSONFormatter_Empty(t *testing.T) {
	f := NewFormatter()
	out, err := f.Format(nil, formatters.FormatterOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "[]" {
		t.Errorf("expected [], got %q", out)
	}
}

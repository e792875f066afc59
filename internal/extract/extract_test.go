// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package extract

import (
	"testing"

	"crosspair/internal/scripts"
)

func cleanNames(t *testing.T, props map[string][]string) []NameRecord {
	t.Helper()
	return CleanNames(props, DefaultConfig(), scripts.NewClassifier())
}

func texts(records []NameRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Text
	}
	return out
}

func TestCleanNames_SplitAndTrim(t *testing.T) {
	got := cleanNames(t, map[string][]string{
		"name": {"Ivan Petrov /  Иван Петров "},
	})
	want := []string{"Ivan Petrov", "Иван Петров"}
	if len(got) != len(want) {
		t.Fatalf("expected %d names, got %d: %v", len(want), len(got), texts(got))
	}
	for i := range want {
		if got[i].Text != want[i] {
			t.Errorf("name %d: got %q, want %q", i, got[i].Text, want[i])
		}
	}
}

func TestCleanNames_Filters(t *testing.T) {
	got := cleanNames(t, map[string][]string{
		"name": {
			"X",        // below min length
			"12345",    // no alphabetic character
			"--- ---",  // no alphabetic character
			"Ed",       // exactly min length, kept
			"   ",      // empty after trim
		},
	})
	if len(got) != 1 || got[0].Text != "Ed" {
		t.Fatalf("expected only %q to survive, got %v", "Ed", texts(got))
	}
}

func TestCleanNames_DedupFirstOccurrenceWins(t *testing.T) {
	got := cleanNames(t, map[string][]string{
		"name":  {"Ivan Petrov"},
		"alias": {"Ivan Petrov", "Vanya"},
	})
	if len(got) != 2 {
		t.Fatalf("expected 2 names, got %v", texts(got))
	}
	if got[0].Text != "Ivan Petrov" || got[0].SourceProperty != "name" {
		t.Errorf("duplicate must keep the first occurrence's property; got %q from %q",
			got[0].Text, got[0].SourceProperty)
	}
	if got[1].Text != "Vanya" || got[1].SourceProperty != "alias" {
		t.Errorf("unexpected second record: %q from %q", got[1].Text, got[1].SourceProperty)
	}
}

func TestCleanNames_PropertyScanOrder(t *testing.T) {
	got := cleanNames(t, map[string][]string{
		"weakAlias":    {"Weak Alias"},
		"name":         {"Primary Name"},
		"previousName": {"Previous Name"},
		"alias":        {"An Alias"},
	})
	want := []string{"Primary Name", "An Alias", "Previous Name", "Weak Alias"}
	if len(got) != len(want) {
		t.Fatalf("expected %d names, got %v", len(want), texts(got))
	}
	for i := range want {
		if got[i].Text != want[i] {
			t.Errorf("position %d: got %q, want %q (scan order must follow configured properties)",
				i, got[i].Text, want[i])
		}
	}
}

func TestCleanNames_ScriptTagging(t *testing.T) {
	got := cleanNames(t, map[string][]string{
		"name": {"Vladimir Путин"},
	})
	if len(got) != 1 {
		t.Fatalf("expected 1 name, got %v", texts(got))
	}
	if _, ok := got[0].Scripts["Latin"]; !ok {
		t.Error("expected Latin in script set")
	}
	if _, ok := got[0].Scripts["Cyrillic"]; !ok {
		t.Error("expected Cyrillic in script set")
	}
}

func TestCleanNames_SeparatorDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SplitSeparator = ""
	got := CleanNames(map[string][]string{
		"name": {"Ivan Petrov / Иван Петров"},
	}, cfg, scripts.NewClassifier())
	if len(got) != 1 || got[0].Text != "Ivan Petrov / Иван Петров" {
		t.Fatalf("disabled separator must keep the raw value intact, got %v", texts(got))
	}
}

// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package parallel

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"testing"

	"crosspair/internal/extract"
	"crosspair/internal/observability"
	"crosspair/internal/pairs"
	"crosspair/internal/scripts"
)

// sliceSource adapts a slice of entities to the EntitySource boundary.
type sliceSource struct {
	entities []extract.EntityRecord
	pos      int
	failAt   int // fail after this many entities have been yielded; 0 disables
}

func (s *sliceSource) Next() (*extract.EntityRecord, error) {
	if s.failAt > 0 && s.pos == s.failAt {
		return nil, errors.New("malformed record")
	}
	if s.pos >= len(s.entities) {
		return nil, io.EOF
	}
	rec := s.entities[s.pos]
	s.pos++
	return &rec, nil
}

func testEntity(id string, names ...string) extract.EntityRecord {
	var records []extract.NameRecord
	for _, n := range names {
		records = append(records, extract.NameRecord{
			Text:           n,
			Scripts:        scripts.DetectScripts(n),
			SourceProperty: "name",
		})
	}
	return extract.EntityRecord{EntityID: id, Datasets: []string{"us_ofac_sdn"}, Names: records}
}

func TestProcessor_CollectsAllPairs(t *testing.T) {
	var entities []extract.EntityRecord
	for i := 0; i < 50; i++ {
		entities = append(entities, testEntity(
			fmt.Sprintf("e%d", i),
			fmt.Sprintf("Latin Name %d", i),
			fmt.Sprintf("Имя Номер %d", i),
			"Shared Alias",
		))
	}

	p := NewProcessor(4, pairs.DefaultConfig(), nil)
	var collected []pairs.NamePair
	stats, err := p.Run(&sliceSource{entities: entities}, func(r *Result) {
		collected = append(collected, r.Pairs...)
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if stats.TotalEntities != 50 {
		t.Errorf("expected 50 entities, got %d", stats.TotalEntities)
	}
	// Each entity has 3 names -> 3 pairs.
	if len(collected) != 150 {
		t.Errorf("expected 150 pairs, got %d", len(collected))
	}
	if stats.TotalPairs != len(collected) {
		t.Errorf("stats pair count %d disagrees with collected %d", stats.TotalPairs, len(collected))
	}
}

func TestProcessor_DeterministicAcrossWorkerCounts(t *testing.T) {
	var entities []extract.EntityRecord
	for i := 0; i < 20; i++ {
		entities = append(entities, testEntity(
			fmt.Sprintf("e%d", i),
			fmt.Sprintf("Alias Number %d", i),
			fmt.Sprintf("Псевдоним %d", i),
		))
	}

	run := func(workers int) []string {
		p := NewProcessor(workers, pairs.DefaultConfig(), nil)
		var ids []string
		_, err := p.Run(&sliceSource{entities: entities}, func(r *Result) {
			for _, pr := range r.Pairs {
				ids = append(ids, pr.PairID)
			}
		})
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		sort.Strings(ids)
		return ids
	}

	one := run(1)
	eight := run(8)
	if len(one) != len(eight) {
		t.Fatalf("pair counts differ across worker counts: %d vs %d", len(one), len(eight))
	}
	for i := range one {
		if one[i] != eight[i] {
			t.Fatalf("pair id sets differ across worker counts at %d: %s vs %s", i, one[i], eight[i])
		}
	}
}

func TestProcessor_StreamErrorPropagates(t *testing.T) {
	entities := []extract.EntityRecord{
		testEntity("e0", "First Person", "Первый"),
		testEntity("e1", "Second Person", "Второй"),
	}
	p := NewProcessor(2, pairs.DefaultConfig(), nil)
	_, err := p.Run(&sliceSource{entities: entities, failAt: 2}, nil)
	if err == nil {
		t.Fatal("expected the source error to propagate")
	}
}

func TestProcessor_DebugEntityLogging(t *testing.T) {
	var buf bytes.Buffer
	debugObs := observability.NewDebugObserver(&buf)
	obs := debugObs.StandardObserver
	obs.DebugObserver = debugObs

	p := NewProcessor(2, pairs.DefaultConfig(), obs)
	_, err := p.Run(&sliceSource{entities: []extract.EntityRecord{
		testEntity("e9", "Ivan Petrov", "Иван Петров"),
	}}, nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !strings.Contains(buf.String(), "entity e9: 2 names, 1 pairs") {
		t.Errorf("expected a per-entity debug line, got:\n%s", buf.String())
	}
}

func TestDefaultWorkers(t *testing.T) {
	if w := DefaultWorkers(); w < 1 || w > 8 {
		t.Errorf("DefaultWorkers out of range: %d", w)
	}
}

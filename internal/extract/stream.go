// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package extract

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"crosspair/internal/scripts"
)

const (
	// Nested FtM entities can run to several megabytes per line.
	initialLineBuffer = 64 * 1024
	maxLineBuffer     = 32 * 1024 * 1024
)

// rawEntity is the self-describing FtM record shape we care about.
// Properties stay raw because non-name properties may hold nested entities
// rather than plain strings.
type rawEntity struct {
	ID         string                     `json:"id"`
	Schema     string                     `json:"schema"`
	Datasets   []string                   `json:"datasets"`
	Properties map[string]json.RawMessage `json:"properties"`
}

// Stream is a lazy cursor over an FtM JSONL source. It materializes one
// EntityRecord at a time and keeps no resumption state: restarting means
// re-reading the source.
type Stream struct {
	scanner    *bufio.Scanner
	closer     io.Closer
	cfg        Config
	targets    map[string]struct{}
	classifier *scripts.Classifier
	line       int
}

// NewStream creates a stream over r with the given configuration.
func NewStream(r io.Reader, cfg Config) *Stream {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, initialLineBuffer), maxLineBuffer)
	return &Stream{
		scanner:    scanner,
		cfg:        cfg,
		targets:    cfg.EffectiveDatasets(),
		classifier: scripts.NewClassifier(),
	}
}

// OpenStream opens path and returns a stream over its contents.
// The caller owns Close.
func OpenStream(path string, cfg Config) (*Stream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	s := NewStream(f, cfg)
	s.closer = f
	return s, nil
}

// Next returns the next entity that passes the schema, dataset, and name
// filters. It returns io.EOF when the source is exhausted. A malformed line
// or a record without an id fails the stream immediately: silently skipping
// corrupt rows in a sanctions dataset is unacceptable.
func (s *Stream) Next() (*EntityRecord, error) {
	for s.scanner.Scan() {
		s.line++
		data := s.scanner.Bytes()
		if len(data) == 0 {
			continue
		}

		var raw rawEntity
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("line %d: malformed record: %w", s.line, err)
		}
		if raw.ID == "" {
			return nil, fmt.Errorf("line %d: record missing id", s.line)
		}

		if raw.Schema != s.cfg.SchemaFilter {
			continue
		}
		overlap := s.datasetOverlap(raw.Datasets)
		if len(overlap) == 0 {
			continue
		}
		names := CleanNames(s.nameProperties(raw.Properties), s.cfg, s.classifier)
		if len(names) == 0 {
			continue
		}

		return &EntityRecord{
			EntityID: raw.ID,
			Datasets: overlap,
			Names:    names,
		}, nil
	}
	if err := s.scanner.Err(); err != nil {
		return nil, fmt.Errorf("line %d: read: %w", s.line, err)
	}
	return nil, io.EOF
}

// Line reports the number of source lines consumed so far.
func (s *Stream) Line() int {
	return s.line
}

// Close releases the underlying file, if the stream owns one.
func (s *Stream) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// datasetOverlap intersects the record's dataset tags with the target set,
// deduplicated and sorted for deterministic output.
func (s *Stream) datasetOverlap(tags []string) []string {
	var overlap []string
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		if _, target := s.targets[tag]; !target {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		overlap = append(overlap, tag)
	}
	sort.Strings(overlap)
	return overlap
}

// nameProperties decodes only the configured name-bearing properties into
// string slices, tolerating mixed-type arrays by keeping string elements.
func (s *Stream) nameProperties(props map[string]json.RawMessage) map[string][]string {
	out := make(map[string][]string, len(s.cfg.NameProperties))
	for _, key := range s.cfg.NameProperties {
		raw, ok := props[key]
		if !ok {
			continue
		}
		var values []string
		if err := json.Unmarshal(raw, &values); err == nil {
			out[key] = values
			continue
		}
		var mixed []any
		if err := json.Unmarshal(raw, &mixed); err != nil {
			continue
		}
		for _, v := range mixed {
			if str, isStr := v.(string); isStr {
				values = append(values, str)
			}
		}
		out[key] = values
	}
	return out
}

// ReadAll drains a stream into a slice. Intended for tests and small inputs;
// production callers should iterate Next to keep the one-entity memory
// profile.
func ReadAll(s *Stream) ([]EntityRecord, error) {
	var all []EntityRecord
	for {
		rec, err := s.Next()
		if err == io.EOF {
			return all, nil
		}
		if err != nil {
			return all, err
		}
		all = append(all, *rec)
	}
}

// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package observability

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// DebugObserver layers step-by-step pipeline logging on top of the
// standard observer. Workers log entities concurrently, so all writes
// go through one mutex.
type DebugObserver struct {
	*StandardObserver
	mu     sync.Mutex
	indent int
}

// NewDebugObserver creates a debug observer writing human-readable steps
// alongside the standard JSON events.
func NewDebugObserver(writer io.Writer) *DebugObserver {
	return &DebugObserver{
		StandardObserver: NewStandardObserver(ObservabilityDebug, writer),
	}
}

// StartStage begins a pipeline stage (download, stream, pairing, format)
// and returns a closure that ends it with an outcome line.
func (d *DebugObserver) StartStage(stage, target string) func(success bool, details string) {
	start := time.Now()

	d.mu.Lock()
	fmt.Fprintf(d.writer, "%s🔄 %s: %s\n", strings.Repeat("  ", d.indent), stage, target)
	d.indent++
	d.mu.Unlock()

	return func(success bool, details string) {
		duration := time.Since(start)

		d.mu.Lock()
		defer d.mu.Unlock()
		d.indent--
		marker := "✅"
		if !success {
			marker = "❌"
		}
		fmt.Fprintf(d.writer, "%s%s %s: done (%dms) %s\n",
			strings.Repeat("  ", d.indent), marker, stage, duration.Milliseconds(), details)
	}
}

// LogDetail logs a detail line within the current stage.
func (d *DebugObserver) LogDetail(component, detail string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprintf(d.writer, "%s   → %s: %s\n", strings.Repeat("  ", d.indent), component, detail)
}

// LogEntity logs one processed entity with its name and pair counts.
func (d *DebugObserver) LogEntity(entityID string, nameCount, pairCount int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprintf(d.writer, "%s   → entity %s: %d names, %d pairs\n",
		strings.Repeat("  ", d.indent), entityID, nameCount, pairCount)
}

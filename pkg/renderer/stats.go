package renderer

import (
	"sync"
	"time"
)

// Stats aggregates counters and stage timings over a render run. All
// methods are safe for concurrent use: job bodies record their own stage
// durations from worker goroutines.
type Stats struct {
	mu sync.Mutex

	Batches         int
	FramesPresented int
	SamplesTraced   uint64
	Invalidated     uint64

	stageTime  [numStages]time.Duration
	stageCount [numStages]int
	start      time.Time
}

// NewStats returns stats with the run clock started
func NewStats() *Stats {
	return &Stats{start: time.Now()}
}

// RecordStage adds one timed execution of a stage
func (s *Stats) RecordStage(stage Stage, d time.Duration) {
	s.mu.Lock()
	s.stageTime[stage] += d
	s.stageCount[stage]++
	s.mu.Unlock()
}

// RecordBatch folds a completed batch's diagnostics into the run totals
func (s *Stats) RecordBatch(summary DiagSummary) {
	s.mu.Lock()
	s.Batches++
	s.SamplesTraced += summary.PrimaryRays
	s.Invalidated += summary.Invalidated
	s.mu.Unlock()
}

// RecordFrame counts a finalized frame handed to the display
func (s *Stats) RecordFrame() {
	s.mu.Lock()
	s.FramesPresented++
	s.mu.Unlock()
}

// Elapsed returns wall time since the run started
func (s *Stats) Elapsed() time.Duration {
	return time.Since(s.start)
}

// StageRow is one line of the per-stage timing report
type StageRow struct {
	Stage Stage
	Runs  int
	Total time.Duration
	Mean  time.Duration
}

// StageRows returns per-stage timing in stage order
func (s *Stats) StageRows() []StageRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := make([]StageRow, 0, numStages)
	for stage := Stage(0); stage < numStages; stage++ {
		row := StageRow{Stage: stage, Runs: s.stageCount[stage], Total: s.stageTime[stage]}
		if row.Runs > 0 {
			row.Mean = row.Total / time.Duration(row.Runs)
		}
		rows = append(rows, row)
	}
	return rows
}

// Snapshot returns a copy of the counters safe to read while jobs run
func (s *Stats) Snapshot() (batches, frames int, samples, invalid uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Batches, s.FramesPresented, s.SamplesTraced, s.Invalidated
}

package renderer

// Stage identifies one of the four pipeline stages
type Stage int

const (
	StageAccumulate Stage = iota
	StageCombine
	StageDenoise
	StageFinalize
	numStages
)

func (s Stage) String() string {
	switch s {
	case StageAccumulate:
		return "accumulate"
	case StageCombine:
		return "combine"
	case StageDenoise:
		return "denoise"
	case StageFinalize:
		return "finalize"
	}
	return "unknown"
}

// Scheduler runs at most one job per stage at a time and holds the rest in
// per-stage FIFO queues. Running accumulate jobs one at a time is what makes
// successive batches strictly sequential: batch N+1 cannot start writing the
// accumulation buffers until batch N's job has completed.
//
// Tick never blocks. Completion callbacks run on the caller's goroutine so
// all post-batch reductions and buffer bookkeeping are single threaded.
type Scheduler struct {
	queues [numStages][]*Job
	active [numStages]*Job
}

// NewScheduler returns an empty scheduler
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Enqueue appends a job to a stage queue. It does not start the job; the
// next Tick will.
func (s *Scheduler) Enqueue(stage Stage, job *Job) {
	s.queues[stage] = append(s.queues[stage], job)
}

// Tick advances every stage once: reaps a finished active job (running its
// completion callback) and starts the next queued job if the stage is idle
func (s *Scheduler) Tick() {
	for stage := Stage(0); stage < numStages; stage++ {
		if job := s.active[stage]; job != nil && job.Done() {
			s.active[stage] = nil
			job.complete()
		}
		if s.active[stage] == nil && len(s.queues[stage]) > 0 {
			next := s.queues[stage][0]
			s.queues[stage][0] = nil
			s.queues[stage] = s.queues[stage][1:]
			s.active[stage] = next
			next.Start()
		}
	}
}

// Outstanding reports how many jobs a stage holds, queued plus active
func (s *Scheduler) Outstanding(stage Stage) int {
	n := len(s.queues[stage])
	if s.active[stage] != nil {
		n++
	}
	return n
}

// Idle reports whether no stage has queued or active work
func (s *Scheduler) Idle() bool {
	for stage := Stage(0); stage < numStages; stage++ {
		if s.Outstanding(stage) > 0 {
			return false
		}
	}
	return true
}

// Drain force-completes every outstanding job, blocking until all stages are
// empty. Callers cancel the relevant tokens first so skipped bodies finish
// immediately; completion callbacks still run so every buffer is released.
func (s *Scheduler) Drain() {
	for !s.Idle() {
		for stage := Stage(0); stage < numStages; stage++ {
			if job := s.active[stage]; job != nil {
				job.Wait()
				s.active[stage] = nil
				job.complete()
			}
		}
		s.Tick()
	}
}

package renderer

import (
	"sync/atomic"
)

// CancelToken is a cooperative cancellation flag shared by every job in a
// batch chain. Cancellation is advisory: job bodies poll it at pixel
// granularity and skip remaining work, but the job still completes so its
// buffers are released and downstream bookkeeping runs.
type CancelToken struct {
	flag atomic.Bool
}

// NewCancelToken returns an uncancelled token
func NewCancelToken() *CancelToken {
	return &CancelToken{}
}

// Cancel sets the flag. Safe to call from any goroutine, idempotent.
func (t *CancelToken) Cancel() {
	t.flag.Store(true)
}

// Cancelled reports whether Cancel has been called
func (t *CancelToken) Cancelled() bool {
	return t.flag.Load()
}

// Job is one unit of pipeline work. The body runs on its own goroutine and
// is skipped entirely when the token is already cancelled at start, leaving
// its input buffers untouched. The onComplete callback runs later on the
// scheduler goroutine, where it returns buffers to the pool and enqueues the
// next stage.
type Job struct {
	Name       string
	token      *CancelToken
	body       func()
	onComplete func()
	done       chan struct{}
}

// NewJob builds a job; body may be nil for pure bookkeeping jobs
func NewJob(name string, token *CancelToken, body, onComplete func()) *Job {
	return &Job{
		Name:       name,
		token:      token,
		body:       body,
		onComplete: onComplete,
		done:       make(chan struct{}),
	}
}

// Start launches the job body on a new goroutine
func (j *Job) Start() {
	go func() {
		defer close(j.done)
		if j.body != nil && !j.token.Cancelled() {
			j.body()
		}
	}()
}

// Done polls completion without blocking
func (j *Job) Done() bool {
	select {
	case <-j.done:
		return true
	default:
		return false
	}
}

// Wait blocks until the job body has finished. Used only at teardown;
// steady-state scheduling never blocks.
func (j *Job) Wait() {
	<-j.done
}

// Cancelled reports whether this job's batch chain was cancelled
func (j *Job) Cancelled() bool {
	return j.token.Cancelled()
}

func (j *Job) complete() {
	if j.onComplete != nil {
		j.onComplete()
	}
}

package infrastructure

import (
	"sync"
	"time"
)

// misfireGrace is how late a job may still fire. A fire time that passed
// while the process was down fires right after startup, unless it is older
// than the grace window, in which case the job is silently dropped — no
// catch-up storm after long outages.
const misfireGrace = 10 * time.Minute

type registration struct {
	cancel func()
}

// Scheduler is an in-memory timer facility with identity: scheduling an
// existing job id atomically replaces the previous registration, so one id
// never fires twice. It holds no domain knowledge.
type Scheduler struct {
	mu   sync.Mutex
	jobs map[string]*registration
}

func NewScheduler() *Scheduler {
	return &Scheduler{jobs: make(map[string]*registration)}
}

// Schedule registers fn to run once at fireAt, replacing any existing job
// with the same id.
func (s *Scheduler) Schedule(jobID string, fireAt time.Time, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelLocked(jobID)

	delay := time.Until(fireAt)
	if delay < 0 {
		if -delay > misfireGrace {
			return
		}
		delay = 0
	}

	reg := &registration{}
	var timer *time.Timer
	timer = time.AfterFunc(delay, func() {
		s.mu.Lock()
		current := s.jobs[jobID]
		if current == reg {
			delete(s.jobs, jobID)
		}
		s.mu.Unlock()
		// A concurrent replace or cancel wins over a firing timer.
		if current != reg {
			return
		}
		fn()
	})
	reg.cancel = func() { timer.Stop() }
	s.jobs[jobID] = reg
}

// ScheduleRecurring registers fn to run every interval, replacing any
// existing job with the same id. The first run happens one interval from
// now.
func (s *Scheduler) ScheduleRecurring(jobID string, interval time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelLocked(jobID)

	reg := &registration{}
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				// A tick may already be buffered when Cancel runs; skip
				// it unless this registration is still the live one.
				s.mu.Lock()
				current := s.jobs[jobID]
				s.mu.Unlock()
				if current != reg {
					return
				}
				fn()
			}
		}
	}()
	var once sync.Once
	reg.cancel = func() {
		ticker.Stop()
		once.Do(func() { close(done) })
	}
	s.jobs[jobID] = reg
}

// Cancel removes a pending job. Canceling an absent id is a no-op.
func (s *Scheduler) Cancel(jobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked(jobID)
}

func (s *Scheduler) cancelLocked(jobID string) {
	if reg, ok := s.jobs[jobID]; ok {
		reg.cancel()
		delete(s.jobs, jobID)
	}
}

// Pending reports whether a job with the given id is still registered.
func (s *Scheduler) Pending(jobID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.jobs[jobID]
	return ok
}

// Stop cancels every registered job.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, reg := range s.jobs {
		reg.cancel()
		delete(s.jobs, id)
	}
}

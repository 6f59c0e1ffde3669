package organizer

import (
	"errors"
	"fmt"
	"time"
)

// ShowFailure records a show (or a whole task, when Show is empty) that could
// not be reconciled during a pass.
type ShowFailure struct {
	Task string
	Show string
	Err  error
}

func (f ShowFailure) Error() string {
	if f.Show == "" {
		return fmt.Sprintf("task %s: %v", f.Task, f.Err)
	}
	return fmt.Sprintf("task %s: show %s: %v", f.Task, f.Show, f.Err)
}

func (f ShowFailure) Unwrap() error { return f.Err }

// Report summarises one reconciliation pass.
type Report struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Tasks      int
	Shows      int
	Moved      int
	Failures   []ShowFailure
}

// Err joins every failure of the pass, or returns nil.
func (r *Report) Err() error {
	if r == nil || len(r.Failures) == 0 {
		return nil
	}
	errs := make([]error, 0, len(r.Failures))
	for _, f := range r.Failures {
		errs = append(errs, f)
	}
	return errors.Join(errs...)
}

func (r *Report) fail(task, show string, err error) {
	r.Failures = append(r.Failures, ShowFailure{Task: task, Show: show, Err: err})
}

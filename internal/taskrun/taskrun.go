// Package taskrun defines the one scheduling primitive spec.md's Design
// Notes call for: a task either yields (stop == false, optionally asking
// to be rerun no sooner than After), or stops (stop == true, meaning "do
// not reschedule me"). The tile cache's cooperative scheduler and the GPS
// client's reconnect/no-data timers both use it, so the host event loop
// (internal/widgethost) only has to implement one posting contract.
package taskrun

import "time"

// Result is what a scheduled callback returns.
type Result struct {
	Stop  bool
	After time.Duration
}

// Continue reschedules the task as soon as possible.
func Continue() Result { return Result{} }

// StopResult tells the host not to reschedule this task.
func StopResult() Result { return Result{Stop: true} }

// After reschedules the task no sooner than d from now.
func After(d time.Duration) Result { return Result{After: d} }

// Host is the event-loop collaborator contract from spec.md §6: something
// that can post a one-shot prioritized task or a delay-based timer, and
// knows to repost a callback that returned a non-stopping Result.
type Host interface {
	// PostTask schedules cb to run once, ordered by prio relative to other
	// pending tasks (lower prio value runs first within the same tick). If cb
	// returns a non-stop Result, the host reposts it after Result.After.
	PostTask(prio int, cb func() Result)

	// PostTimer schedules cb to run once after d. If cb returns a
	// non-stop Result, the host reposts it after the returned delay
	// (falling back to d if Result.After is zero).
	PostTimer(d time.Duration, cb func() Result)
}

package infer

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/skerry-lang/skerry/classifier"
	"github.com/skerry-lang/skerry/diag"
)

// Task is one declaration to infer. Run receives a fresh session and
// records its requirements; the manager solves afterwards.
type Task struct {
	Name string
	Run  func(*Session)
}

// Result is one task's outcome. A task skipped by cancellation has an
// empty SessionID.
type Result struct {
	Name      string
	SessionID string
	OK        bool
	Diags     []diag.Diagnostic
}

// Manager fans tasks out to parallel sessions over one shared registry,
// a bounded number at a time. Sessions never share variables, so tasks
// need no coordination beyond the registry's own interning.
type Manager struct {
	reg     *classifier.Registry
	workers int
	opts    []Option
}

// NewManager builds a manager running at most workers sessions at once.
// workers <= 0 means one per available CPU.
func NewManager(reg *classifier.Registry, workers int, opts ...Option) *Manager {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Manager{reg: reg, workers: workers, opts: opts}
}

// Run executes every task and returns results in task order. A
// canceled ctx keeps new sessions from starting; running ones finish.
func (m *Manager) Run(ctx context.Context, tasks []Task) []Result {
	results := make([]Result, len(tasks))
	sem := make(chan struct{}, m.workers)
	var wg sync.WaitGroup
	for i, task := range tasks {
		wg.Add(1)
		go func(i int, task Task) {
			defer wg.Done()
			res := Result{Name: task.Name}
			defer func() { results[i] = res }()
			if ctx.Err() != nil {
				return
			}
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return
			}
			defer func() { <-sem }()
			s := NewSession(m.reg, m.opts...)
			res.SessionID = s.ID()
			task.Run(s)
			res.OK = s.Solve()
			res.Diags = s.Diagnostics()
		}(i, task)
	}
	wg.Wait()
	return results
}

// Errs folds the failed results into one error, nil when every task
// succeeded.
func Errs(results []Result) error {
	var errs []error
	for _, r := range results {
		if r.OK {
			continue
		}
		if r.SessionID == "" {
			errs = append(errs, fmt.Errorf("%s: not run", r.Name))
			continue
		}
		if len(r.Diags) > 0 {
			errs = append(errs, fmt.Errorf("%s: %s", r.Name, r.Diags[0].String()))
			continue
		}
		errs = append(errs, fmt.Errorf("%s: failed", r.Name))
	}
	return errors.Join(errs...)
}

// Package task runs fire-and-join background work. A task's panic is
// converted to an error returned from Wait.
package task

import (
	"sync"

	"github.com/sourcegraph/conc"
)

type Task struct {
	wg   conc.WaitGroup
	once sync.Once
	err  error
}

// Go starts fn in the background.
func Go(fn func() error) *Task {
	t := &Task{}
	t.wg.Go(func() {
		t.err = fn()
	})
	return t
}

// Wait blocks until the task finishes. Safe to call more than once and on a
// nil task.
func (t *Task) Wait() error {
	if t == nil {
		return nil
	}
	t.once.Do(func() {
		if r := t.wg.WaitAndRecover(); r != nil {
			t.err = r.AsError()
		}
	})
	return t.err
}

package burst

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/ALEYI17/InfraSight_arena/internal/alloc"
	"github.com/ALEYI17/InfraSight_arena/pkg/types"
)

var (
	ErrWorkerPanic = errors.New("worker panicked")
	ErrAlloc       = errors.New("worker allocation failed")
	ErrFree        = errors.New("worker free failed")
)

// WorkerError identifies the worker that failed.
type WorkerError struct {
	ID  int
	Err error
}

func (e *WorkerError) Error() string {
	return fmt.Sprintf("worker %d: %v", e.ID, e.Err)
}

func (e *WorkerError) Unwrap() error {
	return e.Err
}

// Worker performs Allocs cycles of allocate, touch every byte, free. It owns
// nothing shared with other workers.
type Worker struct {
	ID        int
	Allocator types.Allocator
	Allocs    int
	Size      int

	// ExitThread pins the worker to its OS thread and leaves it pinned, so the
	// runtime tears the thread down once the worker's goroutine exits.
	ExitThread bool
}

func (w Worker) Run() (err error) {
	if w.ExitThread {
		runtime.LockOSThread()
	}

	defer func() {
		if r := recover(); r != nil {
			err = &WorkerError{ID: w.ID, Err: fmt.Errorf("%w: %v", ErrWorkerPanic, r)}
		}
	}()

	for i := 0; i < w.Allocs; i++ {
		b, err := w.Allocator.Alloc(w.Size)
		if err != nil {
			return &WorkerError{ID: w.ID, Err: fmt.Errorf("%w: %w", ErrAlloc, err)}
		}
		alloc.Touch(b)
		if err := w.Allocator.Free(b); err != nil {
			return &WorkerError{ID: w.ID, Err: fmt.Errorf("%w: %w", ErrFree, err)}
		}
	}
	return nil
}

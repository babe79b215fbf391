package async

import (
	"context"
	"fmt"
	"sync"
)

// Task represents an asynchronous operation with a name and function.
type Task struct {
	Name string
	Func func(context.Context) error
}

// RunParallel executes tasks concurrently and waits for all of them. The first
// error, in completion order, is returned once every task has finished.
func RunParallel(ctx context.Context, tasks []Task) error {
	if len(tasks) == 0 {
		return nil
	}

	type result struct {
		name string
		err  error
	}

	resultChan := make(chan result, len(tasks))
	for _, task := range tasks {
		go func() {
			resultChan <- result{name: task.Name, err: task.Func(ctx)}
		}()
	}

	var firstError error
	for range len(tasks) {
		res := <-resultChan
		if res.err != nil && firstError == nil {
			firstError = fmt.Errorf("%s: %w", res.name, res.err)
		}
	}
	return firstError
}

// Future is the pending result of a function started with Go.
type Future[T any] struct {
	name  string
	done  chan struct{}
	once  sync.Once
	value T
	err   error
}

// Go starts fn in its own goroutine and returns a Future for its result.
// A panic in fn is recovered and reported as the Future's error.
func Go[T any](ctx context.Context, name string, fn func(context.Context) (T, error)) *Future[T] {
	f := &Future[T]{name: name, done: make(chan struct{})}
	go func() {
		defer func() {
			if r := recover(); r != nil {
				f.err = fmt.Errorf("%s panicked: %v", name, r)
			}
			f.once.Do(func() { close(f.done) })
		}()
		f.value, f.err = fn(ctx)
	}()
	return f
}

// Resolved returns a Future that is already complete.
func Resolved[T any](name string, value T, err error) *Future[T] {
	f := &Future[T]{name: name, done: make(chan struct{}), value: value, err: err}
	f.once.Do(func() { close(f.done) })
	return f
}

// Await blocks until the result is available or ctx is done.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, fmt.Errorf("waiting for %s: %w", f.name, ctx.Err())
	}
}

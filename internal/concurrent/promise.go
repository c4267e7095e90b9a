package concurrent

import "context"

// Promise is the result of a computation running on its own go routine.
type Promise[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// Async executes the given function in the background and returns a promise for its result.
func Async[T any](exec func() (T, error)) *Promise[T] {
	p := &Promise[T]{
		done: make(chan struct{}),
	}
	go func() {
		defer close(p.done)
		p.value, p.err = exec()
	}()
	return p
}

// Done is closed once the promise is resolved.
func (p *Promise[T]) Done() <-chan struct{} {
	return p.done
}

// Await blocks until the promise is resolved or the context is done.
// A done context abandons the wait, not the computation.
func (p *Promise[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-p.done:
		return p.value, p.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Then chains a transformation onto the promise result.
func Then[T, U any](ctx context.Context, p *Promise[T], exec func(T) (U, error)) *Promise[U] {
	return Async(func() (U, error) {
		v, err := p.Await(ctx)
		if err != nil {
			var zero U
			return zero, err
		}
		return exec(v)
	})
}

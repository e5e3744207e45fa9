package dataflow

import (
	"context"
	"sync"
)

// FanIn merges streams into one. The result closes once every input has
// closed or ctx is done; items of one input keep their relative order.
func FanIn[T any](ctx context.Context, streams ...Stream[T]) Stream[T] {
	out := make(chan T)

	var wg sync.WaitGroup
	wg.Add(len(streams))
	for _, in := range streams {
		go func() {
			defer wg.Done()
			forward(ctx, in, out)
		}()
	}

	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

func forward[T any](ctx context.Context, in Stream[T], out chan<- T) {
	for {
		select {
		case <-ctx.Done():
			return
		case item, ok := <-in:
			if !ok {
				return
			}
			select {
			case <-ctx.Done():
				return
			case out <- item:
			}
		}
	}
}

// Load runs load in its own goroutine and streams what it returns. The
// returned func blocks until the stream is closed and reports load's error.
func Load[T any](ctx context.Context, load func(context.Context) ([]T, error)) (Stream[T], func() error) {
	out := make(chan T)
	done := make(chan struct{})
	var err error

	go func() {
		defer close(done)
		defer close(out)

		var items []T
		if items, err = load(ctx); err != nil {
			return
		}
		for _, item := range items {
			select {
			case <-ctx.Done():
				return
			case out <- item:
			}
		}
	}()

	return out, func() error {
		<-done
		return err
	}
}

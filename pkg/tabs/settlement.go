package tabs

import "context"

// Settlement tracks the asynchronous half of an optimistic mutation. The
// optimistic effect is already visible in the cache when a Settlement is
// returned; Done closes once the network call has been confirmed or
// rolled back and the post-settlement refresh has completed.
type Settlement struct {
	done chan struct{}
	err  error
}

func newSettlement() *Settlement {
	return &Settlement{done: make(chan struct{})}
}

// Done is closed when the mutation has settled.
func (s *Settlement) Done() <-chan struct{} {
	return s.done
}

// Err returns the network error the mutation settled with, if any. Only
// valid after Done is closed. A non-nil error means the optimistic state
// was rolled back.
func (s *Settlement) Err() error {
	return s.err
}

// Wait blocks until the mutation settles or ctx is canceled. A canceled
// ctx does not cancel the mutation itself; the in-flight request is
// allowed to complete and reconcile the cache.
func (s *Settlement) Wait(ctx context.Context) error {
	select {
	case <-s.done:
		return s.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Settlement) settle(err error) {
	s.err = err
	close(s.done)
}

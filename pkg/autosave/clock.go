package autosave

import "time"

// Clock abstracts timer creation so the debounce window can be driven
// manually in tests.
type Clock interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

// Timer is the subset of *time.Timer the pipeline needs.
type Timer interface {
	Stop() bool
	Reset(d time.Duration) bool
}

type wallClock struct{}

func (wallClock) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// WallClock returns the real-time Clock used by default.
func WallClock() Clock {
	return wallClock{}
}

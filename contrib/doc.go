// Package contrib provides additional functionality and utilities
// for the pad.ws Go SDK.
//
// Everything in this package is intended to extend the core SDK with
// tooling that is not part of the core library, and it is outside of
// the backward compatibility guarantees provided by the SDK itself.
//
// The contrib directory includes [github.com/padws/pad.go/contrib/padctl],
// a command-line client for managing pads from the terminal, and
// [github.com/padws/pad.go/contrib/testenv], test helpers such as a
// deterministic slog handler for asserting on log output.
package contrib

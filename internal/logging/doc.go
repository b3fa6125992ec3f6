// Package logging provides concrete implementations of the dwhload.Logger interface.
//
// Available implementations:
//   - ConsoleLogger: writes prefixed lines to stderr, coloured when stderr is a terminal
//   - NullLogger: discards all messages (useful for testing)
//
// All logger implementations are safe for concurrent use by multiple goroutines.
package logging

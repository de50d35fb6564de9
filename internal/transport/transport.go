// Package transport delivers discrete command tokens from the ground
// station to the command task. The harness imposes no framing beyond one
// command per datagram.
package transport

// Link is a non-blocking source of command tokens.
type Link interface {
	// PollCommand returns the next pending command token, if any, without
	// blocking the caller.
	PollCommand() (token string, ok bool)

	Close() error
}

package port

// Streamer is the reconciler-facing contract of a venue watcher, whether it
// holds a live socket or polls. The reconciler never touches connections
// directly; it only swaps pair sets.
type Streamer interface {
	Venue() string
	// Pairs returns the currently desired pair set.
	Pairs() []string
	// Restart replaces the desired set. The most recent instruction wins:
	// it supersedes any pending reconnect and closes a live connection.
	Restart(pairs []string)
	// Stop drops the connection and idles the watcher until the next
	// non-empty Restart.
	Stop()
}

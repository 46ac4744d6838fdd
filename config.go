package scheduler

// Config holds Pool configuration.
type Config struct {
	// Workers is the fixed number of worker goroutines. Must be >= 1.
	// Default: runtime.GOMAXPROCS(0).
	Workers int

	// StartUnpaused clears the pause flag at construction; by default a
	// new Pool starts with the flag set until the first Resume. The flag
	// does not hold back execution: workers run queued tasks either way.
	// Default: false.
	StartUnpaused bool
}

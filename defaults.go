package scheduler

import "runtime"

// defaultConfig centralizes Config defaults, applied by New before
// functional options are processed.
func defaultConfig() Config {
	return Config{
		Workers:       runtime.GOMAXPROCS(0),
		StartUnpaused: false,
	}
}

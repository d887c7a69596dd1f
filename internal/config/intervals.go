package config

import "time"

// Worker intervals
const (
	// VisitFlushInterval defines how often dirty visited-cell state is
	// flushed to the visit store.
	VisitFlushInterval = 10 * time.Second
)

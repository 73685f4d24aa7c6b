package kafka

import "time"

// Config holds the broker connection parameters shared by producers
// and consumers.
type Config struct {
	Brokers []string

	// BatchTimeout bounds how long a writer buffers before flushing.
	// Zero selects the package default.
	BatchTimeout time.Duration
}

package publisher

// Publisher represents a service for publishing search jobs
type Publisher interface {
	// Publish publishes a message under key, the retailer the job targets
	Publish(key string, message []byte) error

	// TrimStreams trims all streams to the configured maximum length
	TrimStreams() error

	// Close closes the publisher connection
	Close() error
}

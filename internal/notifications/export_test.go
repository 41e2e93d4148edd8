package notifications

// NewServiceWithPublisher exposes the NATS-backed service over a custom publisher for tests.
func NewServiceWithPublisher(pub interface {
	Publish(subject string, data []byte) error
}, prefix string) Service {
	return newNATSService(pub, prefix)
}

package manager

// StatePublisher receives every lifecycle state the Manager publishes, in
// publication order. Unlike the latest-value bus, nothing is collapsed.
// Implementations must be lightweight and non-blocking; PublishState must
// not panic.
type StatePublisher interface {
	PublishState(State)
}

// noopPublisher is the default; it drops states.
type noopPublisher struct{}

func (noopPublisher) PublishState(State) {}

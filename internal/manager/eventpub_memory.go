package manager

import "sync"

// MemoryPublisher stores published states in-memory for tests.
type MemoryPublisher struct {
	mu     sync.Mutex
	states []State
}

func NewMemoryPublisher() *MemoryPublisher { return &MemoryPublisher{} }

func (p *MemoryPublisher) PublishState(s State) {
	p.mu.Lock()
	p.states = append(p.states, s)
	p.mu.Unlock()
}

func (p *MemoryPublisher) States() []State {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]State, len(p.states))
	copy(out, p.states)
	return out
}

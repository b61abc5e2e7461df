package orchestration

import (
	"strings"
	"sync"
)

// responseBuffer accumulates streamed response fragments in arrival order.
// One goroutine appends while observers may iterate concurrently; the final
// text is the concatenation of the fragments once Complete has been called.
type responseBuffer struct {
	mu                sync.Mutex
	fragments         []string
	fragmentsConsumed int
	complete          bool
	cleared           bool
	updateSignal      chan struct{}
}

func newResponseBuffer() *responseBuffer {
	return &responseBuffer{
		updateSignal: make(chan struct{}, 1),
	}
}

func (b *responseBuffer) AddFragment(fragment string) {
	b.mu.Lock()
	b.fragments = append(b.fragments, fragment)
	b.mu.Unlock()
	b.signalUpdate()
}

func (b *responseBuffer) Complete() {
	b.mu.Lock()
	b.complete = true
	b.mu.Unlock()
	b.signalUpdate()
}

// Fragments yields accumulated fragments in arrival order, blocking until
// more arrive, and returns once the buffer is complete or cleared.
func (b *responseBuffer) Fragments(yield func(string) bool) {
	for {
		b.mu.Lock()
		if b.cleared {
			b.mu.Unlock()
			return
		}

		if b.fragmentsConsumed < len(b.fragments) {
			fragment := b.fragments[b.fragmentsConsumed]
			b.fragmentsConsumed++
			b.mu.Unlock()
			if !yield(fragment) {
				return
			}
			continue
		}

		if b.complete {
			b.mu.Unlock()
			return
		}

		b.mu.Unlock()
		<-b.updateSignal
	}
}

func (b *responseBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return strings.Join(b.fragments, "")
}

func (b *responseBuffer) Clear() {
	b.mu.Lock()
	b.cleared = true
	b.mu.Unlock()
	b.signalUpdate()
}

func (b *responseBuffer) signalUpdate() {
	select {
	case b.updateSignal <- struct{}{}:
	default:
	}
}

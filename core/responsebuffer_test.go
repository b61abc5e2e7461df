package orchestration

import (
	"strings"
	"testing"
	"time"
)

func TestResponseBufferConcatenatesFragmentsInArrivalOrder(t *testing.T) {
	buffer := newResponseBuffer()

	for _, fragment := range []string{"Hel", "lo, ", "world!"} {
		buffer.AddFragment(fragment)
	}
	buffer.Complete()

	if got := buffer.String(); got != "Hello, world!" {
		t.Fatalf("expected %q, got %q", "Hello, world!", got)
	}
}

func TestResponseBufferYieldsFragmentsToObserver(t *testing.T) {
	buffer := newResponseBuffer()

	observed := make(chan string, 1)
	go func() {
		var builder strings.Builder
		for fragment := range buffer.Fragments {
			builder.WriteString(fragment)
		}
		observed <- builder.String()
	}()

	buffer.AddFragment("slow ")
	buffer.AddFragment("stream")
	buffer.Complete()

	select {
	case got := <-observed:
		if got != "slow stream" {
			t.Fatalf("expected observer to assemble %q, got %q", "slow stream", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for the observer to finish")
	}
}

func TestResponseBufferClearEndsIteration(t *testing.T) {
	buffer := newResponseBuffer()
	buffer.AddFragment("discarded")

	done := make(chan struct{})
	go func() {
		defer close(done)
		for range buffer.Fragments {
		}
	}()

	buffer.Clear()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for iteration to end after clear")
	}
}

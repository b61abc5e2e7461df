package orchestration

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestScopeCancelFiresOnCancelHookOnce(t *testing.T) {
	scope := newSessionScope(context.Background())
	defer scope.Close()

	fired := make(chan struct{}, 2)
	scope.OnCancel(nil, func() { fired <- struct{}{} })

	scope.Cancel()
	scope.Cancel()

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for the cancel hook")
	}

	select {
	case <-fired:
		t.Fatalf("expected the cancel hook to fire exactly once")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestScopeReleasedHookDoesNotFireOnClose(t *testing.T) {
	scope := newSessionScope(context.Background())

	fired := make(chan struct{}, 1)
	release := scope.OnCancel(nil, func() { fired <- struct{}{} })
	release()

	scope.Close()

	select {
	case <-fired:
		t.Fatalf("expected a released hook to stay silent on teardown")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPanicSafeWorkerConvertsPanicToError(t *testing.T) {
	worker := panicSafeNamedWorker("test", func(context.Context) error {
		panic("boom")
	})

	err := worker(context.Background())
	if err == nil {
		t.Fatalf("expected a panic to surface as an error")
	}
}

func TestPanicSafeWorkerWrapsErrors(t *testing.T) {
	sentinel := errors.New("broken")
	worker := panicSafeNamedWorker("test", func(context.Context) error {
		return sentinel
	})

	if err := worker(context.Background()); !errors.Is(err, sentinel) {
		t.Fatalf("expected the wrapped error to match the sentinel, got %v", err)
	}
}

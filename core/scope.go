package orchestration

import (
	"context"
	"fmt"
)

// sessionScope is the cancellation arena for one session. It owns a derived
// context shared by every stage of every turn; Cancel fires it once and Close
// releases it deterministically when the session ends.
type sessionScope struct {
	ctx    context.Context
	cancel context.CancelFunc
}

func newSessionScope(parent context.Context) *sessionScope {
	if parent == nil {
		parent = context.Background()
	}

	ctx, cancel := context.WithCancel(parent)
	return &sessionScope{ctx: ctx, cancel: cancel}
}

func (s *sessionScope) Context() context.Context {
	if s == nil {
		return context.Background()
	}
	return s.ctx
}

func (s *sessionScope) Cancelled() bool {
	if s == nil {
		return false
	}

	select {
	case <-s.ctx.Done():
		return true
	default:
		return false
	}
}

// Cancel requests cooperative cancellation of everything running under the
// scope. Safe to call repeatedly.
func (s *sessionScope) Cancel() {
	if s == nil {
		return
	}
	s.cancel()
}

// Close releases the scope's resources. The scope must not be used after
// Close returns.
func (s *sessionScope) Close() {
	s.Cancel()
}

// OnCancel arranges for onDone to run once when the scope (or the given
// narrower context) is cancelled. The returned release function detaches the
// hook; calling it after the hook fired is a no-op. Callers must release the
// hook when the guarded work completes normally, or onDone will fire during
// scope teardown.
func (s *sessionScope) OnCancel(ctx context.Context, onDone func()) (release func()) {
	if ctx == nil {
		ctx = s.Context()
	}

	done := withContextCancelHook(ctx, onDone)
	return func() {
		select {
		case <-done:
		default:
			close(done)
		}
	}
}

func withContextCancelHook(ctx context.Context, onContextDone func()) chan struct{} {
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			onContextDone()
		case <-done:
		}
	}()
	return done
}

type workerRun func(context.Context) error

func panicSafeNamedWorker(name string, run func(context.Context) error) workerRun {
	return func(ctx context.Context) (err error) {
		defer func() {
			if recovered := recover(); recovered != nil {
				err = fmt.Errorf("%s worker panicked: %v", name, recovered)
			}
		}()

		if err = run(ctx); err != nil {
			return fmt.Errorf("%s worker failed: %w", name, err)
		}

		return nil
	}
}

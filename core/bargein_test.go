package orchestration

import "testing"

func TestBargeInRequiresSustainedSpeech(t *testing.T) {
	detector := newBargeInDetector(0.1, 3, 1)

	if detector.Observe(0.5) || detector.Observe(0.5) {
		t.Fatalf("expected no trigger before the voiced run is long enough")
	}
	if !detector.Observe(0.5) {
		t.Fatalf("expected trigger on the third consecutive voiced frame")
	}
}

func TestBargeInToleratesBriefSilence(t *testing.T) {
	detector := newBargeInDetector(0.1, 3, 1)

	detector.Observe(0.5)
	detector.Observe(0.5)
	detector.Observe(0.01) // one silent frame within the release allowance
	if !detector.Observe(0.5) {
		t.Fatalf("expected a single silent frame not to reset the run")
	}
}

func TestBargeInResetsAfterSilenceBeyondRelease(t *testing.T) {
	detector := newBargeInDetector(0.1, 3, 1)

	detector.Observe(0.5)
	detector.Observe(0.5)
	detector.Observe(0.01)
	detector.Observe(0.01) // past the release allowance; run resets
	if detector.Observe(0.5) || detector.Observe(0.5) {
		t.Fatalf("expected a fresh run after the reset")
	}
	if !detector.Observe(0.5) {
		t.Fatalf("expected trigger once the fresh run is sustained")
	}
}

func TestBargeInIgnoresLevelsBelowThreshold(t *testing.T) {
	detector := newBargeInDetector(0.1, 2, 0)

	for range 10 {
		if detector.Observe(0.05) {
			t.Fatalf("expected playback-level audio never to trigger")
		}
	}
}

func TestBargeInReset(t *testing.T) {
	detector := newBargeInDetector(0.1, 2, 0)

	detector.Observe(0.5)
	detector.Reset()
	if detector.Observe(0.5) {
		t.Fatalf("expected reset to clear the voiced run")
	}
}

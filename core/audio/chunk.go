package audio

import "time"

// Chunk is a single capture buffer in flight between the audio device and a
// recognizer. Chunks are ephemeral: consumers must not retain Data after the
// iteration that yielded it moves on.
type Chunk struct {
	// Seq is the position of the chunk within its capture, starting at 0.
	Seq int
	// Data holds the raw payload in the capture's encoding.
	Data []byte
	// Silence is the continuous silence observed up to and including this
	// chunk. A voiced chunk resets it to zero, so end-of-utterance decisions
	// can be made from the chunk alone.
	Silence time.Duration
}

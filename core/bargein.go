package orchestration

import "github.com/quillchat/voice-core/core/audio"

// bargeInDetector decides when capture frames observed during playback
// amount to the user talking over the assistant. Detection uses RMS energy
// with hysteresis: triggerFrames consecutive voiced frames are required to
// fire, and up to releaseFrames silent frames in between are tolerated so a
// breath between words does not reset the run.
type bargeInDetector struct {
	threshold     float64
	triggerFrames int
	releaseFrames int

	voicedRun  int
	silentSlip int
}

func newBargeInDetector(threshold float64, triggerFrames, releaseFrames int) *bargeInDetector {
	if triggerFrames < 1 {
		triggerFrames = 1
	}
	if releaseFrames < 0 {
		releaseFrames = 0
	}

	return &bargeInDetector{
		threshold:     threshold,
		triggerFrames: triggerFrames,
		releaseFrames: releaseFrames,
	}
}

// Observe feeds one capture frame level and reports whether sustained user
// speech has been detected.
func (d *bargeInDetector) Observe(level float64) bool {
	if level >= d.threshold {
		d.voicedRun++
		d.silentSlip = 0
	} else {
		d.silentSlip++
		if d.silentSlip > d.releaseFrames {
			d.voicedRun = 0
			d.silentSlip = 0
		}
	}

	return d.voicedRun >= d.triggerFrames
}

// ObserveChunk is Observe over a raw capture chunk.
func (d *bargeInDetector) ObserveChunk(chunk audio.Chunk, encodingInfo audio.EncodingInfo) bool {
	return d.Observe(audio.Level(chunk.Data, encodingInfo))
}

func (d *bargeInDetector) Reset() {
	d.voicedRun = 0
	d.silentSlip = 0
}

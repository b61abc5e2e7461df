package audio

import (
	"encoding/binary"
	"math"
)

// Level reports the normalized RMS energy of a payload in the given encoding,
// in the range [0, 1]. Only linear16 payloads carry level information; other
// encodings report 0.
func Level(payload []byte, encodingInfo EncodingInfo) float64 {
	if encodingInfo.Format != EncodingLinear16 {
		return 0
	}

	sampleCount := len(payload) / 2
	if sampleCount == 0 {
		return 0
	}

	var sum float64
	for i := 0; i+1 < len(payload); i += 2 {
		sample := int16(binary.LittleEndian.Uint16(payload[i:]))
		normalized := float64(sample) / 32768.0
		sum += normalized * normalized
	}

	return math.Sqrt(sum / float64(sampleCount))
}

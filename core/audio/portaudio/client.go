// Package portaudio drives the default capture and playback devices through
// the PortAudio library. It is the fallback for hosts where miniaudio is not
// available.
package portaudio

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"

	"github.com/quillchat/voice-core/core/audio"
)

type Client struct {
	bufferSize int
	stream     *portaudio.Stream

	in  []int16
	out []int16

	leftoverAudio []byte
	audioMu       sync.Mutex

	captureStop chan struct{}
	captureDone chan struct{}
	mu          sync.Mutex
}

func NewClient(bufferSize int) (*Client, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize portaudio: %w", err)
	}

	in := make([]int16, bufferSize)
	out := make([]int16, bufferSize)
	stream, err := portaudio.OpenDefaultStream(1, 1, audio.DefaultSampleRate, bufferSize, in, out)
	if err != nil {
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("failed to open portaudio stream: %w", err)
	}

	return &Client{
		bufferSize: bufferSize,
		stream:     stream,
		in:         in,
		out:        out,
	}, nil
}

func (c *Client) StartCapture(_ context.Context, onAudio func(payload []byte)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.captureStop != nil {
		return nil
	}

	if err := c.stream.Start(); err != nil {
		return fmt.Errorf("failed to start portaudio stream: %w", err)
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	c.captureStop = stop
	c.captureDone = done

	go func() {
		defer close(done)
		for {
			select {
			case <-stop:
				return
			default:
			}

			if err := c.stream.Read(); err != nil {
				continue
			}

			audioBuffer := bytes.Buffer{}
			_ = binary.Write(&audioBuffer, binary.LittleEndian, c.in)
			onAudio(audioBuffer.Bytes())
		}
	}()

	return nil
}

func (c *Client) StopCapture() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.captureStop == nil {
		return nil
	}

	close(c.captureStop)
	<-c.captureDone
	c.captureStop = nil
	c.captureDone = nil

	if err := c.stream.Stop(); err != nil {
		return fmt.Errorf("failed to stop portaudio stream: %w", err)
	}
	return nil
}

func (c *Client) Close() {
	_ = c.StopCapture()
	c.stream.Close()
	portaudio.Terminate()
}

// Play writes the payload to the output device in bufferSize chunks, keeping
// any partial chunk queued for the next call.
func (c *Client) Play(payload []byte) error {
	c.audioMu.Lock()
	defer c.audioMu.Unlock()

	chunkSize := c.bufferSize * 2

	payload = append(c.leftoverAudio, payload...)
	for i := 0; ; i++ {
		if (i+1)*chunkSize > len(payload) {
			c.leftoverAudio = make([]byte, len(payload)-i*chunkSize)
			copy(c.leftoverAudio, payload[i*chunkSize:])
			break
		}

		_ = binary.Read(bytes.NewBuffer(payload[i*chunkSize:(i+1)*chunkSize]), binary.LittleEndian, c.out)
		if err := c.stream.Write(); err != nil {
			return fmt.Errorf("failed to write to portaudio stream: %w", err)
		}
	}

	return nil
}

func (c *Client) ClearPlayback() {
	c.audioMu.Lock()
	defer c.audioMu.Unlock()
	c.leftoverAudio = nil
}

// AwaitDrain flushes the queued partial chunk, padded with silence up to a
// full device buffer.
func (c *Client) AwaitDrain(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.audioMu.Lock()
	defer c.audioMu.Unlock()

	if len(c.leftoverAudio) == 0 {
		return nil
	}

	chunkSize := c.bufferSize * 2
	padded := make([]byte, chunkSize)
	copy(padded, c.leftoverAudio)
	c.leftoverAudio = nil

	_ = binary.Read(bytes.NewBuffer(padded), binary.LittleEndian, c.out)
	if err := c.stream.Write(); err != nil {
		return fmt.Errorf("failed to write to portaudio stream: %w", err)
	}
	return nil
}

func (c *Client) EncodingInfo() audio.EncodingInfo {
	return audio.GetDefaultEncodingInfo()
}

// Package soundfile probes a sound file for the channel and frame
// counts internal/session needs to size a buffer loaded from disk
// (SPEC_FULL.md §4.9's "sound-file metadata library" collaborator).
package soundfile

import (
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Prober decodes a WAV file's header to report its channel and frame
// count, satisfying session.SoundFileProber without internal/session
// importing this package directly.
type Prober struct{}

// NewProber returns a Prober ready for use.
func NewProber() *Prober { return &Prober{} }

// probeChunkFrames bounds how many frames Probe decodes per PCMBuffer
// call while counting a file's length.
const probeChunkFrames = 8192

// Probe opens path, reads its WAV header, and returns its channel and
// frame count. Frame count comes from walking the PCM data once rather
// than trusting a header-derived duration, the same way the teacher's
// audio loader reads WAV files chunk by chunk.
func (p *Prober) Probe(path string) (channelCount, frameCount int, err error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("opening sound file: %w", err)
	}
	defer file.Close()

	decoder := wav.NewDecoder(file)
	decoder.ReadInfo()
	if !decoder.IsValidFile() {
		return 0, 0, fmt.Errorf("%s is not a valid WAV file", path)
	}

	channelCount = int(decoder.NumChans)
	buf := &audio.IntBuffer{
		Data:   make([]int, probeChunkFrames*channelCount),
		Format: &audio.Format{SampleRate: int(decoder.SampleRate), NumChannels: channelCount},
	}

	for {
		n, err := decoder.PCMBuffer(buf)
		if err != nil {
			return 0, 0, fmt.Errorf("reading sound file frames: %w", err)
		}
		if n == 0 {
			break
		}
		frameCount += n / channelCount
	}

	return channelCount, frameCount, nil
}

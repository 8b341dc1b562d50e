package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"
)

// ErrFormat reports a file that is not a PCM WAV we can slice.
var ErrFormat = errors.New("audio: unsupported or malformed WAV")

const (
	riffHeaderLen = 12
	chunkHeadLen  = 8
	pcmFormat     = 1
)

// WAV is a decoded RIFF/PCM recording. It satisfies transcribe.Source:
// slices are frame-aligned and re-wrapped with a fresh header so every
// chunk is a standalone playable file.
type WAV struct {
	sampleRate    uint32
	channels      uint16
	bitsPerSample uint16
	data          []byte
}

// Decode parses a WAV file. Only uncompressed PCM is supported; the
// transcription backends expect nothing else.
func Decode(b []byte) (*WAV, error) {
	if len(b) < riffHeaderLen || string(b[0:4]) != "RIFF" || string(b[8:12]) != "WAVE" {
		return nil, fmt.Errorf("%w: missing RIFF/WAVE header", ErrFormat)
	}

	w := &WAV{}
	haveFmt := false
	haveData := false

	// Walk the chunk list; fmt and data are the only chunks we care about.
	for off := riffHeaderLen; off+chunkHeadLen <= len(b); {
		id := string(b[off : off+4])
		size := int(binary.LittleEndian.Uint32(b[off+4 : off+8]))
		body := off + chunkHeadLen
		if body+size > len(b) {
			return nil, fmt.Errorf("%w: chunk %q overruns file", ErrFormat, id)
		}

		switch id {
		case "fmt ":
			if size < 16 {
				return nil, fmt.Errorf("%w: fmt chunk too short", ErrFormat)
			}
			format := binary.LittleEndian.Uint16(b[body : body+2])
			if format != pcmFormat {
				return nil, fmt.Errorf("%w: format tag %d, want PCM", ErrFormat, format)
			}
			w.channels = binary.LittleEndian.Uint16(b[body+2 : body+4])
			w.sampleRate = binary.LittleEndian.Uint32(b[body+4 : body+8])
			w.bitsPerSample = binary.LittleEndian.Uint16(b[body+14 : body+16])
			if w.channels == 0 || w.sampleRate == 0 || w.bitsPerSample%8 != 0 || w.bitsPerSample == 0 {
				return nil, fmt.Errorf("%w: bad fmt chunk", ErrFormat)
			}
			haveFmt = true
		case "data":
			w.data = b[body : body+size]
			haveData = true
		}

		// Chunks are word-aligned; odd sizes carry a pad byte.
		off = body + size + size%2
	}

	if !haveFmt || !haveData {
		return nil, fmt.Errorf("%w: missing fmt or data chunk", ErrFormat)
	}
	return w, nil
}

func (w *WAV) frameSize() int {
	return int(w.channels) * int(w.bitsPerSample) / 8
}

func (w *WAV) frames() int {
	return len(w.data) / w.frameSize()
}

// SampleRate returns samples per second per channel.
func (w *WAV) SampleRate() int { return int(w.sampleRate) }

// Channels returns the channel count.
func (w *WAV) Channels() int { return int(w.channels) }

// Duration is the playback length of the recording.
func (w *WAV) Duration() time.Duration {
	return time.Duration(w.frames()) * time.Second / time.Duration(w.sampleRate)
}

// Slice returns the audio for [start, end) as a complete WAV file.
// Boundaries are clamped to the recording and aligned to whole frames.
func (w *WAV) Slice(start, end time.Duration) ([]byte, error) {
	if start < 0 || end < start {
		return nil, fmt.Errorf("audio: invalid slice [%v, %v)", start, end)
	}

	startFrame := w.frameAt(start)
	endFrame := w.frameAt(end)
	total := w.frames()
	if endFrame > total {
		endFrame = total
	}
	if startFrame > endFrame {
		startFrame = endFrame
	}

	fs := w.frameSize()
	pcm := w.data[startFrame*fs : endFrame*fs]
	return Encode(int(w.sampleRate), int(w.channels), int(w.bitsPerSample), pcm), nil
}

func (w *WAV) frameAt(t time.Duration) int {
	return int(t * time.Duration(w.sampleRate) / time.Second)
}

// Encode wraps raw PCM samples in a minimal RIFF/PCM WAV container.
func Encode(sampleRate, channels, bitsPerSample int, pcm []byte) []byte {
	frameSize := channels * bitsPerSample / 8
	byteRate := sampleRate * frameSize

	out := make([]byte, 0, 44+len(pcm))
	out = append(out, "RIFF"...)
	out = binary.LittleEndian.AppendUint32(out, uint32(36+len(pcm)))
	out = append(out, "WAVE"...)

	out = append(out, "fmt "...)
	out = binary.LittleEndian.AppendUint32(out, 16)
	out = binary.LittleEndian.AppendUint16(out, pcmFormat)
	out = binary.LittleEndian.AppendUint16(out, uint16(channels))
	out = binary.LittleEndian.AppendUint32(out, uint32(sampleRate))
	out = binary.LittleEndian.AppendUint32(out, uint32(byteRate))
	out = binary.LittleEndian.AppendUint16(out, uint16(frameSize))
	out = binary.LittleEndian.AppendUint16(out, uint16(bitsPerSample))

	out = append(out, "data"...)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(pcm)))
	out = append(out, pcm...)
	return out
}

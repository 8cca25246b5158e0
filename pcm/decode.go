// Package pcm decodes audio files into 16-bit stereo PCM outside the browser,
// where decodeAudioData is not available.
package pcm

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/hajimehoshi/ebiten/v2/audio/mp3"
	"github.com/hajimehoshi/ebiten/v2/audio/vorbis"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"

	"github.com/simukka/filter-surface/engine"
)

// ErrUnknownFormat is returned for data that is not WAV, MP3 or Ogg Vorbis.
var ErrUnknownFormat = errors.New("unknown audio format")

// Format identifies a container.
type Format int

const (
	Unknown Format = iota
	WAV
	MP3
	Vorbis
)

func (f Format) String() string {
	switch f {
	case WAV:
		return "wav"
	case MP3:
		return "mp3"
	case Vorbis:
		return "vorbis"
	}
	return "unknown"
}

// Sniff detects the container from magic bytes.
func Sniff(data []byte) Format {
	switch {
	case len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WAVE":
		return WAV
	case len(data) >= 4 && string(data[0:4]) == "OggS":
		return Vorbis
	case len(data) >= 3 && string(data[0:3]) == "ID3":
		return MP3
	case len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		return MP3
	}
	return Unknown
}

// Buffer is decoded interleaved stereo audio.
type Buffer struct {
	Samples    []int16
	SampleRate int
}

// Frames returns the number of stereo frames.
func (b *Buffer) Frames() int {
	return len(b.Samples) / 2
}

func (b *Buffer) Duration() time.Duration {
	if b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(b.Frames()) * time.Second / time.Duration(b.SampleRate)
}

func (b *Buffer) Channels() int { return 2 }

// Decoder implements loader.Decoder with ebiten's audio decoders.
type Decoder struct{}

type stream interface {
	io.Reader
	SampleRate() int
}

func (Decoder) Decode(ctx context.Context, data []byte) (engine.Buffer, error) {
	var (
		s   stream
		err error
	)
	src := bytes.NewReader(data)
	switch f := Sniff(data); f {
	case WAV:
		s, err = wav.DecodeWithoutResampling(src)
	case MP3:
		s, err = mp3.DecodeWithoutResampling(src)
	case Vorbis:
		s, err = vorbis.DecodeWithoutResampling(src)
	default:
		return nil, ErrUnknownFormat
	}
	if err != nil {
		return nil, err
	}

	raw, err := io.ReadAll(s)
	if err != nil {
		return nil, fmt.Errorf("read pcm: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	samples := make([]int16, len(raw)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(raw[i*2:]))
	}
	return &Buffer{Samples: samples, SampleRate: s.SampleRate()}, nil
}

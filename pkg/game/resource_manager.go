package game

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/audio/mp3"
	"github.com/hajimehoshi/ebiten/v2/audio/vorbis"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/decker502/carnival/pkg/embedded"
)

// bytesPerFrame 解码后的 PCM 格式：16 位立体声
const bytesPerFrame = 4

// AudioStream 解码后的音频流
type AudioStream interface {
	io.ReadSeeker
	Length() int64
}

// ResourceManager is responsible for loading and caching the presentation's assets.
// Audio files are read fully into memory once and decoded into a fresh stream on
// every request, so a track can be rebound without reopening the file.
//
// This implementation is NOT thread-safe. All loading happens on the game loop.
//
// Usage:
//
//	audioContext := audio.NewContext(48000)
//	rm := NewResourceManager(audioContext)
//	stream, err := rm.LoadAudioStream("assets/music/Track1.mp3")
type ResourceManager struct {
	audioContext  *audio.Context
	audioCache    map[string][]byte           // path -> raw file bytes
	fontSource    *text.GoTextFaceSource      // Go Regular, parsed once
	fontFaceCache map[float64]*text.GoTextFace // size -> face
}

// NewResourceManager creates a ResourceManager bound to the global audio context.
func NewResourceManager(audioContext *audio.Context) *ResourceManager {
	return &ResourceManager{
		audioContext:  audioContext,
		audioCache:    make(map[string][]byte),
		fontFaceCache: make(map[float64]*text.GoTextFace),
	}
}

// AudioContext returns the global audio context.
func (rm *ResourceManager) AudioContext() *audio.Context {
	return rm.audioContext
}

// LoadAudioStream decodes the audio file at path, resampled to the context's sample rate.
// Supported formats: MP3 (.mp3), OGG Vorbis (.ogg) and WAV (.wav).
//
// Parameters:
//   - path: the audio file path (embedded "data/..." or a path on disk).
//
// Returns:
//   - a stream positioned at the beginning, ready to be wrapped by an audio.Player.
//   - an error if the file cannot be read, the format is unsupported or decoding fails.
func (rm *ResourceManager) LoadAudioStream(path string) (AudioStream, error) {
	data, ok := rm.audioCache[path]
	if !ok {
		var err error
		data, err = embedded.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read audio file %s: %w", path, err)
		}
		rm.audioCache[path] = data
	}
	return decodeAudio(path, data, rm.audioContext.SampleRate())
}

// decodeAudio selects the decoder by file extension.
func decodeAudio(path string, data []byte, sampleRate int) (AudioStream, error) {
	reader := bytes.NewReader(data)
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".mp3":
		stream, err := mp3.DecodeWithSampleRate(sampleRate, reader)
		if err != nil {
			return nil, fmt.Errorf("failed to decode MP3 audio %s: %w", path, err)
		}
		return stream, nil
	case ".ogg":
		stream, err := vorbis.DecodeWithSampleRate(sampleRate, reader)
		if err != nil {
			return nil, fmt.Errorf("failed to decode OGG audio %s: %w", path, err)
		}
		return stream, nil
	case ".wav":
		stream, err := wav.DecodeWithSampleRate(sampleRate, reader)
		if err != nil {
			return nil, fmt.Errorf("failed to decode WAV audio %s: %w", path, err)
		}
		return stream, nil
	default:
		return nil, fmt.Errorf("unsupported audio format: %s (supported: .mp3, .ogg, .wav)", ext)
	}
}

// StreamDuration converts a decoded stream length in bytes to seconds.
func StreamDuration(length int64, sampleRate int) float64 {
	if sampleRate <= 0 {
		return 0
	}
	return float64(length) / float64(bytesPerFrame*sampleRate)
}

// Font returns a Go Regular text face of the given size, cached per size.
func (rm *ResourceManager) Font(size float64) (*text.GoTextFace, error) {
	if face, ok := rm.fontFaceCache[size]; ok {
		return face, nil
	}

	if rm.fontSource == nil {
		source, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
		if err != nil {
			return nil, fmt.Errorf("failed to create font source: %w", err)
		}
		rm.fontSource = source
	}

	face := &text.GoTextFace{
		Source:    rm.fontSource,
		Size:      size,
		Direction: text.DirectionLeftToRight,
	}
	rm.fontFaceCache[size] = face
	return face, nil
}

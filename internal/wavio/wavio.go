// Package wavio reads and writes RIFF/WAVE files holding 16-bit or 24-bit
// integer PCM or 32-bit float samples.
//
// Files are written with the go-audio encoder. Reading uses a streaming
// chunk parser instead of the go-audio decoder, which needs a seekable
// source and cannot tell extensible float data from extensible PCM.
package wavio

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Format is a sample encoding.
type Format int

const (
	// PCM16 is 16-bit signed integer PCM.
	PCM16 Format = iota
	// PCM24 is 24-bit signed integer PCM.
	PCM24
	// Float32 is 32-bit IEEE float in [-1, 1].
	Float32
)

func (f Format) String() string {
	switch f {
	case PCM16:
		return "pcm16"
	case PCM24:
		return "pcm24"
	case Float32:
		return "float32"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

func (f Format) bytesPerSample() int {
	switch f {
	case PCM16:
		return 2
	case PCM24:
		return 3
	default:
		return 4
	}
}

const (
	formatTagPCM        = 1
	formatTagFloat      = 3
	formatTagExtensible = 0xFFFE
)

const (
	// streamingDataSize marks a data chunk whose length was not known when
	// the header was written.
	streamingDataSize = 0xFFFFFFFF
	// maxPreallocFrames caps the capacity reserved from a declared data size.
	maxPreallocFrames = 1 << 16
	// writeChunkFrames is the number of frames handed to the encoder at once.
	writeChunkFrames = 4096
)

var (
	// ErrNotWave is returned for input that is not a RIFF/WAVE stream.
	ErrNotWave = errors.New("wavio: not a RIFF/WAVE stream")
	// ErrUnsupported is returned for encodings this package does not handle.
	ErrUnsupported = errors.New("wavio: unsupported encoding")
)

// Audio is a deinterleaved multichannel signal.
type Audio struct {
	SampleRate int
	Format     Format
	Channels   [][]float32
}

// Frames returns the number of samples per channel.
func (a *Audio) Frames() int {
	if len(a.Channels) == 0 {
		return 0
	}

	return len(a.Channels[0])
}

// Read decodes a WAVE stream. Chunks other than "fmt " and "data" are skipped.
// A data chunk declaring 0 or 0xFFFFFFFF bytes is read until the end of the
// stream, dropping a trailing partial frame.
func Read(r io.Reader) (*Audio, error) {
	br := bufio.NewReader(r)

	var riff [12]byte
	if _, err := io.ReadFull(br, riff[:]); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotWave, err)
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return nil, ErrNotWave
	}

	var (
		audio    *Audio
		channels int
	)

	for {
		var hdr [8]byte
		if _, err := io.ReadFull(br, hdr[:]); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("wavio: missing data chunk")
			}
			return nil, fmt.Errorf("wavio: read chunk header: %w", err)
		}

		id := string(hdr[0:4])
		size := int64(binary.LittleEndian.Uint32(hdr[4:8]))

		switch id {
		case "fmt ":
			a, ch, err := readFormat(br, size)
			if err != nil {
				return nil, err
			}
			audio, channels = a, ch
		case "data":
			if audio == nil {
				return nil, fmt.Errorf("wavio: data chunk before fmt chunk")
			}
			if err := readData(br, size, audio, channels); err != nil {
				return nil, err
			}
			return audio, nil
		default:
			if _, err := br.Discard(int(size + size&1)); err != nil {
				return nil, fmt.Errorf("wavio: skip %q chunk: %w", id, err)
			}
		}
	}
}

func readFormat(r io.Reader, size int64) (*Audio, int, error) {
	if size < 16 {
		return nil, 0, fmt.Errorf("wavio: fmt chunk too short: %d bytes", size)
	}

	buf := make([]byte, size+size&1)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, 0, fmt.Errorf("wavio: read fmt chunk: %w", err)
	}

	tag := binary.LittleEndian.Uint16(buf[0:2])
	channels := int(binary.LittleEndian.Uint16(buf[2:4]))
	rate := int(binary.LittleEndian.Uint32(buf[4:8]))
	bits := int(binary.LittleEndian.Uint16(buf[14:16]))

	if tag == formatTagExtensible {
		if size < 40 {
			return nil, 0, fmt.Errorf("wavio: extensible fmt chunk too short: %d bytes", size)
		}
		tag = binary.LittleEndian.Uint16(buf[24:26])
	}

	if channels <= 0 || rate <= 0 {
		return nil, 0, fmt.Errorf("%w: %d channels at %d Hz", ErrUnsupported, channels, rate)
	}

	var f Format
	switch {
	case tag == formatTagPCM && bits == 16:
		f = PCM16
	case tag == formatTagPCM && bits == 24:
		f = PCM24
	case tag == formatTagFloat && bits == 32:
		f = Float32
	default:
		return nil, 0, fmt.Errorf("%w: format tag %d with %d bits", ErrUnsupported, tag, bits)
	}

	return &Audio{SampleRate: rate, Format: f}, channels, nil
}

func readData(r io.Reader, size int64, a *Audio, channels int) error {
	frameBytes := a.Format.bytesPerSample() * channels
	streaming := size == 0 || size == streamingDataSize

	frames := -1
	capacity := maxPreallocFrames
	if !streaming {
		frames = int(size / int64(frameBytes))
		capacity = min(capacity, frames)
	}

	a.Channels = make([][]float32, channels)
	for ch := range a.Channels {
		a.Channels[ch] = make([]float32, 0, capacity)
	}

	bps := a.Format.bytesPerSample()
	frame := make([]byte, frameBytes)
	for i := 0; streaming || i < frames; i++ {
		if _, err := io.ReadFull(r, frame); err != nil {
			if streaming && (errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)) {
				return nil
			}
			return fmt.Errorf("wavio: read frame %d of %d: %w", i, frames, err)
		}

		for ch := range channels {
			a.Channels[ch] = append(a.Channels[ch], decodeSample(a.Format, frame[ch*bps:(ch+1)*bps]))
		}
	}

	return nil
}

func decodeSample(f Format, b []byte) float32 {
	switch f {
	case PCM16:
		return float32(int16(binary.LittleEndian.Uint16(b))) / 32768
	case PCM24:
		return float32(audio.Int24LETo32(b)) / 8388608
	default:
		return math.Float32frombits(binary.LittleEndian.Uint32(b))
	}
}

// Write encodes a as a WAVE stream in a.Format. Integer formats clip to
// [-1, 1). All channels must have the same length. The encoder patches the
// chunk sizes on completion, so w must be seekable.
func Write(w io.WriteSeeker, a *Audio) error {
	channels := len(a.Channels)
	if channels == 0 {
		return fmt.Errorf("wavio: no channels")
	}
	if a.SampleRate <= 0 {
		return fmt.Errorf("wavio: invalid sample rate %d", a.SampleRate)
	}

	frames := a.Frames()
	for ch, c := range a.Channels {
		if len(c) != frames {
			return fmt.Errorf("wavio: channel %d has %d samples, want %d", ch, len(c), frames)
		}
	}

	tag := formatTagPCM
	if a.Format == Float32 {
		tag = formatTagFloat
	}
	bits := a.Format.bytesPerSample() * 8

	enc := wav.NewEncoder(w, a.SampleRate, bits, channels, tag)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: a.SampleRate},
		SourceBitDepth: bits,
		Data:           make([]int, 0, min(frames, writeChunkFrames)*channels),
	}

	// The encoder emits the header with the first buffer, so an empty
	// signal still writes one.
	for start := 0; start == 0 || start < frames; start += writeChunkFrames {
		end := min(start+writeChunkFrames, frames)

		buf.Data = buf.Data[:0]
		for i := start; i < end; i++ {
			for ch := range channels {
				buf.Data = append(buf.Data, encodeSample(a.Format, a.Channels[ch][i]))
			}
		}

		if err := enc.Write(buf); err != nil {
			return fmt.Errorf("wavio: write frames %d-%d: %w", start, end, err)
		}
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("wavio: finish header: %w", err)
	}

	return nil
}

// encodeSample maps v to the integer the encoder stores. Float32 passes the
// IEEE bits through the encoder's 32-bit path unchanged.
func encodeSample(f Format, v float32) int {
	switch f {
	case PCM16:
		return int(quantize(v, 32768))
	case PCM24:
		return int(quantize(v, 8388608))
	default:
		return int(int32(math.Float32bits(v)))
	}
}

func quantize(v float32, scale float64) int32 {
	x := math.Round(float64(v) * scale)
	if math.IsNaN(x) {
		return 0
	}

	return int32(math.Max(-scale, math.Min(scale-1, x)))
}

// ReadFile decodes the WAVE file at path.
func ReadFile(path string) (*Audio, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Read(f)
}

// WriteFile encodes a into a new file at path. A failed write removes the
// partial file.
func WriteFile(path string, a *Audio) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := Write(f, a); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}

	return f.Close()
}

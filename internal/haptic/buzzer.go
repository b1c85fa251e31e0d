// Package haptic stands in for the watch's vibration motor. On a hosted
// build a pulse is a short buzz on the default audio output.
package haptic

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"
	"os"
	"sync"
	"time"

	"github.com/gen2brain/malgo"
	"github.com/go-audio/wav"
)

// Options configures a Buzzer.
type Options struct {
	SampleRate uint32        // playback rate for the synthesized tone
	Frequency  float64       // tone frequency in Hz
	Duration   time.Duration // pulse length
	SamplePath string        // optional WAV file played instead of the tone
}

// DefaultOptions returns a short low buzz.
func DefaultOptions() Options {
	return Options{
		SampleRate: 44100,
		Frequency:  180,
		Duration:   120 * time.Millisecond,
	}
}

// Buzzer plays one pulse per Once call through malgo.
type Buzzer struct {
	ctx        *malgo.AllocatedContext
	sampleRate uint32
	pulse      []float32 // unscaled mono pulse

	mu        sync.Mutex
	amplitude float32
	playing   *malgo.Device
}

// NewBuzzer initializes the audio context and prepares the pulse
// waveform. Call Close when done.
func NewBuzzer(opts Options) (*Buzzer, error) {
	if opts.SampleRate == 0 {
		opts.SampleRate = DefaultOptions().SampleRate
	}
	if opts.Duration <= 0 {
		opts.Duration = DefaultOptions().Duration
	}
	if opts.Frequency <= 0 {
		opts.Frequency = DefaultOptions().Frequency
	}

	b := &Buzzer{sampleRate: opts.SampleRate, amplitude: 1}
	if opts.SamplePath != "" {
		samples, rate, err := LoadWAV(opts.SamplePath)
		if err != nil {
			return nil, err
		}
		b.pulse = samples
		b.sampleRate = rate
	} else {
		b.pulse = Tone(opts.SampleRate, opts.Frequency, opts.Duration)
	}

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("haptic: initializing audio context: %w", err)
	}
	b.ctx = ctx
	return b, nil
}

// Adjust sets the pulse amplitude; 255 is full scale.
func (b *Buzzer) Adjust(intensity uint8) {
	b.mu.Lock()
	b.amplitude = float32(intensity) / 255
	b.mu.Unlock()
}

// Once starts one pulse and returns without waiting for it to finish. A
// pulse still playing is cut short.
func (b *Buzzer) Once() {
	b.mu.Lock()
	pcm := float32ToBytes(Scale(b.pulse, b.amplitude))
	prev := b.playing
	b.playing = nil
	b.mu.Unlock()

	if prev != nil {
		prev.Uninit()
	}

	var (
		posMu sync.Mutex
		pos   int
	)
	deviceCfg := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceCfg.Playback.Format = malgo.FormatF32
	deviceCfg.Playback.Channels = 1
	deviceCfg.SampleRate = b.sampleRate

	callbacks := malgo.DeviceCallbacks{
		Data: func(pOutput, _ []byte, _ uint32) {
			posMu.Lock()
			n := copy(pOutput, pcm[pos:])
			pos += n
			posMu.Unlock()
			clear(pOutput[n:])
		},
	}

	device, err := malgo.InitDevice(b.ctx.Context, deviceCfg, callbacks)
	if err != nil {
		slog.Warn("[HAPTIC] initializing playback device", "error", err)
		return
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		slog.Warn("[HAPTIC] starting playback device", "error", err)
		return
	}

	b.mu.Lock()
	b.playing = device
	b.mu.Unlock()

	length := time.Duration(len(b.pulse)) * time.Second / time.Duration(b.sampleRate)
	time.AfterFunc(length+50*time.Millisecond, func() {
		b.mu.Lock()
		if b.playing != device {
			b.mu.Unlock()
			return
		}
		b.playing = nil
		b.mu.Unlock()
		device.Uninit()
	})
}

// Close releases all audio resources.
func (b *Buzzer) Close() error {
	b.mu.Lock()
	if b.playing != nil {
		b.playing.Uninit()
		b.playing = nil
	}
	b.mu.Unlock()

	if b.ctx != nil {
		if err := b.ctx.Uninit(); err != nil {
			return fmt.Errorf("haptic: uninitializing audio context: %w", err)
		}
		b.ctx.Free()
	}
	return nil
}

// Tone synthesizes a sine burst with a short linear fade at both ends so
// the pulse does not click.
func Tone(sampleRate uint32, freq float64, d time.Duration) []float32 {
	n := int(time.Duration(sampleRate) * d / time.Second)
	samples := make([]float32, n)
	fade := n / 10
	for i := range samples {
		v := math.Sin(2 * math.Pi * freq * float64(i) / float64(sampleRate))
		switch {
		case fade > 0 && i < fade:
			v *= float64(i) / float64(fade)
		case fade > 0 && i >= n-fade:
			v *= float64(n-1-i) / float64(fade)
		}
		samples[i] = float32(v)
	}
	return samples
}

// Scale returns a copy of samples multiplied by amp.
func Scale(samples []float32, amp float32) []float32 {
	out := make([]float32, len(samples))
	for i, s := range samples {
		out[i] = s * amp
	}
	return out
}

// LoadWAV decodes a PCM WAV file into mono float32 samples in [-1, 1],
// averaging channels, and returns them with the file's sample rate.
func LoadWAV(path string) ([]float32, uint32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("haptic: opening sample: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, 0, fmt.Errorf("haptic: %s is not a valid WAV file", path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("haptic: decoding sample: %w", err)
	}
	if buf.Format == nil || buf.Format.SampleRate <= 0 {
		return nil, 0, fmt.Errorf("haptic: %s has no sample format", path)
	}

	channels := buf.Format.NumChannels
	if channels <= 0 {
		channels = 1
	}
	depth := int(dec.BitDepth)
	if depth <= 0 {
		depth = 16
	}
	full := float32(int64(1) << (depth - 1))

	frames := len(buf.Data) / channels
	samples := make([]float32, frames)
	for i := range frames {
		var sum float32
		for c := range channels {
			sum += float32(buf.Data[i*channels+c])
		}
		samples[i] = sum / float32(channels) / full
	}
	return samples, uint32(buf.Format.SampleRate), nil
}

// float32ToBytes encodes samples as little-endian float32 PCM.
func float32ToBytes(samples []float32) []byte {
	out := make([]byte, len(samples)*4)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(s))
	}
	return out
}

// bytesToFloat32 converts little-endian float32 PCM back to samples.
func bytesToFloat32(data []byte) []float32 {
	samples := make([]float32, 0, len(data)/4)
	for offset := 0; offset+4 <= len(data); offset += 4 {
		bits := binary.LittleEndian.Uint32(data[offset : offset+4])
		samples = append(samples, math.Float32frombits(bits))
	}
	return samples
}

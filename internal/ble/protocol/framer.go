// Package protocol implements the line-oriented Espruino/Gadgetbridge wire
// protocol: reassembly of BLE UART write chunks into frames, classification
// of frames into commands, and decoding of the GB(...) and setTime(...)
// payloads.
package protocol

import (
	"errors"
	"log/slog"
)

const (
	// MaxMessageSize bounds a single frame, terminator included.
	MaxMessageSize = 512
	// ResetByte (DLE) discards whatever has been buffered so far.
	ResetByte = 0x10
	// Terminator ends a frame.
	Terminator = '\n'
)

// ErrMessageTooLong is reported when a frame exceeds MaxMessageSize.
var ErrMessageTooLong = errors.New("protocol: message too long")

// Framer reassembles raw write chunks into terminator-delimited frames and
// hands each complete frame to its dispatch function.
//
// A Framer is owned by a single transport write callback and is not safe
// for concurrent use.
type Framer struct {
	buf      []byte
	dispatch func(string)

	// OnError, if set, is called with ErrMessageTooLong whenever a frame
	// is dropped for exceeding MaxMessageSize.
	OnError func(error)
}

// NewFramer creates a Framer that calls dispatch once per complete frame.
// Panics if dispatch is nil (programmer error).
func NewFramer(dispatch func(string)) *Framer {
	if dispatch == nil {
		panic("protocol: NewFramer called with nil dispatch")
	}
	return &Framer{
		buf:      make([]byte, 0, MaxMessageSize+1),
		dispatch: dispatch,
	}
}

// Feed consumes one chunk as delivered by the transport. Frames completed
// by the chunk are dispatched synchronously, in order. On overflow the
// buffer is cleared and the remainder of the chunk is dropped.
func (f *Framer) Feed(chunk []byte) {
	for _, b := range chunk {
		switch b {
		case ResetByte:
			if len(f.buf) > 0 {
				slog.Info("[BLE] discarding buffered bytes", "count", len(f.buf))
			}
			f.buf = f.buf[:0]

		case Terminator:
			if len(f.buf)+1 > MaxMessageSize {
				f.overflow()
				return
			}
			// Copy out and clear before dispatching so a dispatch target
			// that feeds more bytes sees an empty buffer.
			msg := string(f.buf)
			f.buf = f.buf[:0]
			f.dispatch(msg)

		default:
			f.buf = append(f.buf, b)
			if len(f.buf) > MaxMessageSize {
				f.overflow()
				return
			}
		}
	}
}

// Reset discards any partially assembled frame.
func (f *Framer) Reset() {
	f.buf = f.buf[:0]
}

// Len returns the number of bytes currently buffered.
func (f *Framer) Len() int {
	return len(f.buf)
}

func (f *Framer) overflow() {
	f.buf = f.buf[:0]
	slog.Warn("[BLE] error: message too long", "max", MaxMessageSize)
	if f.OnError != nil {
		f.OnError(ErrMessageTooLong)
	}
}

package protocol

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"
)

// recorder collects dispatched frames.
type recorder struct {
	frames []string
}

func (r *recorder) dispatch(msg string) {
	r.frames = append(r.frames, msg)
}

func TestFramerSingleMessage(t *testing.T) {
	rec := &recorder{}
	f := NewFramer(rec.dispatch)

	f.Feed([]byte("GB({\"t\":\"notify\"})\n"))

	want := []string{`GB({"t":"notify"})`}
	if !reflect.DeepEqual(rec.frames, want) {
		t.Errorf("frames = %q, want %q", rec.frames, want)
	}
	if f.Len() != 0 {
		t.Errorf("Len() = %d after terminator, want 0", f.Len())
	}
}

func TestFramerChunkSplitInvariance(t *testing.T) {
	stream := []byte("setTime(1700000000);E.setTimeZone(-5.0);\nGB({\"t\":\"notify\",\"id\":7})\nhello\n")

	whole := &recorder{}
	NewFramer(whole.dispatch).Feed(stream)

	for _, size := range []int{1, 2, 3, 7, 20, 64} {
		rec := &recorder{}
		f := NewFramer(rec.dispatch)
		for start := 0; start < len(stream); start += size {
			end := min(start+size, len(stream))
			f.Feed(stream[start:end])
		}
		if !reflect.DeepEqual(rec.frames, whole.frames) {
			t.Errorf("chunk size %d: frames = %q, want %q", size, rec.frames, whole.frames)
		}
	}
	if len(whole.frames) != 3 {
		t.Fatalf("got %d frames, want 3", len(whole.frames))
	}
}

func TestFramerResetDiscardsPartial(t *testing.T) {
	for _, prior := range []string{"", "GB({\"t\":\"no", strings.Repeat("x", MaxMessageSize)} {
		rec := &recorder{}
		f := NewFramer(rec.dispatch)
		f.Feed([]byte(prior))
		f.Feed([]byte{ResetByte})
		if f.Len() != 0 {
			t.Errorf("prior %d bytes: Len() = %d after reset, want 0", len(prior), f.Len())
		}
		f.Feed([]byte("GB(ab)\n"))

		if len(rec.frames) != 1 {
			t.Fatalf("prior %d bytes: got %d frames, want 1", len(prior), len(rec.frames))
		}
		cmd := Classify(rec.frames[0])
		if cmd.Kind != KindGB || cmd.Payload != "ab" {
			t.Errorf("prior %d bytes: Classify = %+v, want GB payload %q", len(prior), cmd, "ab")
		}
	}
}

func TestFramerResetInsideChunk(t *testing.T) {
	rec := &recorder{}
	f := NewFramer(rec.dispatch)
	f.Feed([]byte("garbage\x10GB({})\n"))

	want := []string{"GB({})"}
	if !reflect.DeepEqual(rec.frames, want) {
		t.Errorf("frames = %q, want %q", rec.frames, want)
	}
}

func TestFramerOverflowNeverDispatches(t *testing.T) {
	rec := &recorder{}
	f := NewFramer(rec.dispatch)
	var gotErr error
	f.OnError = func(err error) { gotErr = err }

	f.Feed(bytes.Repeat([]byte{'a'}, MaxMessageSize+1))

	if len(rec.frames) != 0 {
		t.Errorf("got %d frames after overflow, want 0", len(rec.frames))
	}
	if f.Len() != 0 {
		t.Errorf("Len() = %d after overflow, want 0", f.Len())
	}
	if !errors.Is(gotErr, ErrMessageTooLong) {
		t.Errorf("OnError got %v, want ErrMessageTooLong", gotErr)
	}
}

func TestFramerOverflowByteAtATime(t *testing.T) {
	rec := &recorder{}
	f := NewFramer(rec.dispatch)
	for i := 0; i < MaxMessageSize+1; i++ {
		f.Feed([]byte{'a'})
		if f.Len() > MaxMessageSize {
			t.Fatalf("Len() = %d exceeds MaxMessageSize", f.Len())
		}
	}
	if f.Len() != 0 {
		t.Errorf("Len() = %d, want 0", f.Len())
	}
	// The terminator that follows completes an empty frame.
	f.Feed([]byte{'\n'})
	if !reflect.DeepEqual(rec.frames, []string{""}) {
		t.Errorf("frames = %q, want one empty frame", rec.frames)
	}
}

func TestFramerBoundaryLengths(t *testing.T) {
	tests := []struct {
		name     string
		content  int
		dispatch bool
	}{
		{"largest accepted", MaxMessageSize - 1, true},
		{"terminator pushes over", MaxMessageSize, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			f := NewFramer(rec.dispatch)
			f.Feed(append(bytes.Repeat([]byte{'a'}, tt.content), '\n'))
			if got := len(rec.frames) == 1; got != tt.dispatch {
				t.Errorf("dispatched = %v, want %v", got, tt.dispatch)
			}
			if f.Len() != 0 {
				t.Errorf("Len() = %d, want 0", f.Len())
			}
		})
	}
}

func TestFramerOverflowDropsRestOfChunk(t *testing.T) {
	rec := &recorder{}
	f := NewFramer(rec.dispatch)

	chunk := append(bytes.Repeat([]byte{'a'}, MaxMessageSize+1), []byte("hello\n")...)
	f.Feed(chunk)
	if len(rec.frames) != 0 {
		t.Errorf("frames = %q, want none from the overflowing chunk", rec.frames)
	}

	f.Feed([]byte("hello\n"))
	if !reflect.DeepEqual(rec.frames, []string{"hello"}) {
		t.Errorf("frames = %q, want [hello]", rec.frames)
	}
}

func TestFramerEmptyChunk(t *testing.T) {
	rec := &recorder{}
	f := NewFramer(rec.dispatch)
	f.Feed(nil)
	f.Feed([]byte{})
	if len(rec.frames) != 0 || f.Len() != 0 {
		t.Errorf("empty feeds changed state: frames=%q len=%d", rec.frames, f.Len())
	}
}

func TestFramerReset(t *testing.T) {
	rec := &recorder{}
	f := NewFramer(rec.dispatch)
	f.Feed([]byte("partial"))
	f.Reset()
	f.Feed([]byte("\n"))
	if !reflect.DeepEqual(rec.frames, []string{""}) {
		t.Errorf("frames = %q, want one empty frame", rec.frames)
	}
}

func TestNewFramerNilPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("NewFramer(nil) did not panic")
		}
	}()
	NewFramer(nil)
}

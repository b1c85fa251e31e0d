package protocol

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestDecodeGBNotify(t *testing.T) {
	msg := DecodeGB(`{"t":"notify","id":1699,"src":"Signal","title":"Alice","body":"On my way"}`)
	if msg.Err != nil {
		t.Fatalf("DecodeGB() Err = %v", msg.Err)
	}
	if msg.Type != TypeNotify {
		t.Errorf("Type = %q, want %q", msg.Type, TypeNotify)
	}
	want := Notification{ID: 1699, Source: "Signal", Title: "Alice", Body: "On my way"}
	if msg.Notify != want {
		t.Errorf("Notify = %+v, want %+v", msg.Notify, want)
	}
	if got := msg.Notify.DisplayText(); got != "Signal: Alice\n\nOn my way" {
		t.Errorf("DisplayText() = %q", got)
	}
}

func TestDecodeGBMissingFields(t *testing.T) {
	msg := DecodeGB(`{"t":"notify","id":3}`)
	if msg.Err != nil {
		t.Fatalf("DecodeGB() Err = %v", msg.Err)
	}
	if msg.Notify.ID != 3 {
		t.Errorf("ID = %d, want 3", msg.Notify.ID)
	}
	if got := msg.Notify.DisplayText(); got != ": \n\n" {
		t.Errorf("DisplayText() = %q, want empty-field substitution", got)
	}
}

func TestDecodeGBMistypedFields(t *testing.T) {
	msg := DecodeGB(`{"t":"notify","id":"abc","src":42,"title":null,"body":["x"]}`)
	if msg.Err != nil {
		t.Fatalf("DecodeGB() Err = %v", msg.Err)
	}
	want := Notification{}
	if msg.Notify != want {
		t.Errorf("Notify = %+v, want zero value", msg.Notify)
	}
}

func TestDecodeGBFloatID(t *testing.T) {
	msg := DecodeGB(`{"t":"notify","id":12.0}`)
	if msg.Notify.ID != 12 {
		t.Errorf("ID = %d, want 12", msg.Notify.ID)
	}
}

func TestDecodeGBLenientFailure(t *testing.T) {
	tests := []string{
		"",
		"ab",
		`{"t":"notify"`,
		`["notify"]`,
		`{"t":"notify",}`,
	}
	for _, payload := range tests {
		msg := DecodeGB(payload)
		if msg.Err == nil {
			t.Errorf("DecodeGB(%q) Err = nil, want parse error", payload)
		}
		if msg.Type != "" || msg.Notify != (Notification{}) {
			t.Errorf("DecodeGB(%q) = %+v, want zero fields", payload, msg)
		}
	}
}

func TestDecodeGBOtherTypes(t *testing.T) {
	for _, payload := range []string{`{"t":"musicinfo","artist":"x"}`, `{"id":5}`, `{"t":5}`} {
		msg := DecodeGB(payload)
		if msg.Err != nil {
			t.Errorf("DecodeGB(%q) Err = %v", payload, msg.Err)
		}
		if msg.Type == TypeNotify {
			t.Errorf("DecodeGB(%q) Type = notify", payload)
		}
		if msg.Notify != (Notification{}) {
			t.Errorf("DecodeGB(%q) Notify = %+v, want zero value", payload, msg.Notify)
		}
	}
}

func TestDecodeGBTruncatesOversizedPayload(t *testing.T) {
	payload := `{"t":"notify","body":"` + strings.Repeat("x", MaxMessageSize) + `"}`
	msg := DecodeGB(payload)
	if msg.Err == nil {
		t.Error("expected truncated payload to fail parsing")
	}
	if msg.Type != "" {
		t.Errorf("Type = %q, want empty", msg.Type)
	}
}

func TestDisplayTextTruncatesOnRuneBoundary(t *testing.T) {
	n := Notification{Source: "App", Title: "T", Body: strings.Repeat("é", MaxMessageSize)}
	text := n.DisplayText()
	if len(text) > maxDisplayText {
		t.Errorf("len(DisplayText()) = %d, want <= %d", len(text), maxDisplayText)
	}
	if !utf8.ValidString(text) {
		t.Error("DisplayText() is not valid UTF-8")
	}
	if !strings.HasPrefix(text, "App: T\n\n") {
		t.Errorf("DisplayText() prefix = %q", text[:10])
	}
}

func TestDismissLine(t *testing.T) {
	want := `{"t":"notify","id":42,"n":"DISMISS"}` + "\n"
	if got := DismissLine(42); got != want {
		t.Errorf("DismissLine(42) = %q, want %q", got, want)
	}
}

package protocol

import (
	"encoding/json"
	"fmt"
	"math"
	"unicode/utf8"
)

// TypeNotify is the GB message type carrying a phone notification.
const TypeNotify = "notify"

// maxDisplayText matches the fixed format buffer the watch renders into:
// MaxMessageSize+3 bytes including the trailing NUL.
const maxDisplayText = MaxMessageSize + 2

// Notification is a phone notification forwarded by Gadgetbridge.
type Notification struct {
	ID     int64
	Source string
	Title  string
	Body   string
}

// DisplayText composes the dialog text "src: title\n\nbody", truncated to
// the display buffer size on a UTF-8 boundary.
func (n Notification) DisplayText() string {
	text := fmt.Sprintf("%s: %s\n\n%s", n.Source, n.Title, n.Body)
	if len(text) <= maxDisplayText {
		return text
	}
	cut := maxDisplayText
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

// GBMessage is the lenient decoding of a GB(...) JSON payload. Fields that
// are missing, mistyped, or lost to a parse error are left at their zero
// values. Err records the parse error for logging only.
type GBMessage struct {
	Type   string
	Notify Notification
	Err    error
}

// DecodeGB parses the JSON interior of a GB(...) frame. It never fails: a
// payload longer than MaxMessageSize is truncated first, and a payload that
// does not parse as a JSON object yields an empty message with Err set.
func DecodeGB(payload string) GBMessage {
	if len(payload) > MaxMessageSize {
		payload = payload[:MaxMessageSize]
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		return GBMessage{Err: fmt.Errorf("protocol: decode GB payload: %w", err)}
	}

	msg := GBMessage{Type: stringField(doc, "t")}
	if msg.Type == TypeNotify {
		msg.Notify = Notification{
			ID:     intField(doc, "id"),
			Source: stringField(doc, "src"),
			Title:  stringField(doc, "title"),
			Body:   stringField(doc, "body"),
		}
	}
	return msg
}

// DismissLine builds the watch-to-phone line telling Gadgetbridge that the
// wearer dismissed notification id.
func DismissLine(id int64) string {
	return fmt.Sprintf(`{"t":"notify","id":%d,"n":"DISMISS"}`+"\n", id)
}

func stringField(doc map[string]json.RawMessage, key string) string {
	raw, ok := doc[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func intField(doc map[string]json.RawMessage, key string) int64 {
	raw, ok := doc[key]
	if !ok {
		return 0
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	f, err := n.Float64()
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int64(f)
}

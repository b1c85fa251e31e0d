package protocol

import "strings"

const (
	gbPrefix      = "GB("
	setTimePrefix = "setTime("
)

// Kind identifies the shape of a frame.
type Kind int

const (
	// KindOther is any frame that matches no known prefix.
	KindOther Kind = iota
	// KindGB is a GB(<json>) frame.
	KindGB
	// KindSetTime is a setTime(<epoch>)... frame.
	KindSetTime
)

func (k Kind) String() string {
	switch k {
	case KindGB:
		return "gb"
	case KindSetTime:
		return "setTime"
	default:
		return "other"
	}
}

// Command is a classified frame. Payload is the part handed to the
// matching decoder: the JSON interior for KindGB, everything after the
// opening parenthesis for KindSetTime, and the whole frame for KindOther.
type Command struct {
	Kind    Kind
	Payload string
}

// Classify routes a frame by literal prefix. For GB frames the 3-byte
// prefix and the final byte are stripped; the final byte is assumed to be
// the closing parenthesis and is not checked.
func Classify(msg string) Command {
	switch {
	case strings.HasPrefix(msg, gbPrefix):
		inner := msg[len(gbPrefix):]
		if len(inner) > 0 {
			inner = inner[:len(inner)-1]
		}
		return Command{Kind: KindGB, Payload: inner}
	case strings.HasPrefix(msg, setTimePrefix):
		return Command{Kind: KindSetTime, Payload: msg[len(setTimePrefix):]}
	default:
		return Command{Kind: KindOther, Payload: msg}
	}
}

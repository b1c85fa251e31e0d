package protocol

import "unicode/utf8"

// DefaultChunkBytes is the ATT payload that fits in one notification at
// the default MTU of 23 (3 bytes of ATT header).
const DefaultChunkBytes = 20

// ChunkText splits an outbound line into pieces of at most maxBytes so it
// can be written to the TX characteristic one notification at a time.
// Splits prefer the byte after a space and never land inside a UTF-8
// sequence; a single rune wider than maxBytes is emitted whole. Returns nil
// for empty text or a non-positive maxBytes.
func ChunkText(text string, maxBytes int) []string {
	if len(text) == 0 || maxBytes <= 0 {
		return nil
	}

	var chunks []string
	for len(text) > maxBytes {
		split := maxBytes
		for split > 0 && !utf8.RuneStart(text[split]) {
			split--
		}
		if split == 0 {
			// First rune alone is wider than maxBytes.
			_, size := utf8.DecodeRuneInString(text)
			split = size
		} else {
			for i := split; i > 0; i-- {
				if text[i-1] == ' ' {
					split = i
					break
				}
			}
		}
		chunks = append(chunks, text[:split])
		text = text[split:]
	}
	if len(text) > 0 {
		chunks = append(chunks, text)
	}
	return chunks
}

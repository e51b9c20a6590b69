package domain

// QuickReply is a selectable option attached to a response.
// Selecting it re-submits Text as a new utterance.
type QuickReply struct {
	Label string
	Text  string
}

// Response is what the dispatcher hands back to the messaging channel
type Response struct {
	Text         string
	QuickReplies []QuickReply // empty for plain text responses
}

// TextResponse builds a plain text response
func TextResponse(text string) *Response {
	return &Response{Text: text}
}

// TruncateRunes truncates s to at most n characters. Rune-based so
// Chinese names and messages cut cleanly.
func TruncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

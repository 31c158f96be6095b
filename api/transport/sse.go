package transport

import (
	"bytes"
	"strconv"
)

// EventFrame encodes one server-sent event. Multi-line data is split into
// several data fields as the event stream format requires.
func EventFrame(id uint64, event string, data []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString("id: ")
	buf.WriteString(strconv.FormatUint(id, 10))
	buf.WriteByte('\n')
	if event != "" {
		buf.WriteString("event: ")
		buf.WriteString(event)
		buf.WriteByte('\n')
	}
	for _, line := range bytes.Split(data, []byte("\n")) {
		buf.WriteString("data: ")
		buf.Write(bytes.TrimRight(line, "\r"))
		buf.WriteByte('\n')
	}
	buf.WriteByte('\n')
	return buf.Bytes()
}

// CommentFrame encodes a keep-alive comment line.
func CommentFrame(text string) []byte {
	return []byte(": " + text + "\n\n")
}

// RetryFrame tells the client how long to wait before reconnecting.
func RetryFrame(millis int64) []byte {
	return []byte("retry: " + strconv.FormatInt(millis, 10) + "\n\n")
}

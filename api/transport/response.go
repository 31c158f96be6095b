package transport

import "encoding/json"

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Envelope wraps every JSON response. Error carries a human readable message
// and Meta carries either list paging or the offending field of a validation error.
type Envelope struct {
	Status string      `json:"status"`
	Code   string      `json:"code,omitempty"`
	Data   interface{} `json:"data,omitempty"`
	Error  string      `json:"error,omitempty"`
	Meta   interface{} `json:"meta,omitempty"`
}

func NewSuccess(data interface{}, meta interface{}) Envelope {
	return Envelope{Status: StatusSuccess, Data: data, Meta: meta}
}

func NewError(code, message string, meta interface{}) Envelope {
	return Envelope{Status: StatusError, Code: code, Error: message, Meta: meta}
}

// String is used when a handler writes the body directly.
func (e Envelope) String() string {
	out, err := json.Marshal(e)
	if err != nil {
		return `{"status":"error","code":"INTERNAL"}`
	}
	return string(out)
}

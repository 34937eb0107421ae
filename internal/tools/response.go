// Package tools is the operation surface of the incident core. Every
// operation takes an already-parsed, typed request and returns a structured
// envelope, so outer layers (chat facade, tool wiring) stay thin glue.
package tools

import (
	"fmt"
	"time"
)

// Response is the envelope every operation returns. Timestamps are RFC 3339
// UTC instants. Table is set only by operations tied to flat-record stores
// outside this core; it exists for envelope-shape compatibility.
type Response struct {
	Success   bool      `json:"success"`
	Timestamp time.Time `json:"timestamp"`
	Table     string    `json:"table,omitempty"`
	Data      any       `json:"data,omitempty"`
	Message   string    `json:"message,omitempty"`
}

// Success builds a success envelope around data.
func Success(data any) Response {
	return Response{Success: true, Timestamp: time.Now().UTC(), Data: data}
}

// Error builds an error envelope with a human-readable message.
func Error(message string) Response {
	if message == "" {
		message = "unknown error"
	}
	return Response{Success: false, Timestamp: time.Now().UTC(), Message: message}
}

// Errorf builds an error envelope with a formatted message.
func Errorf(format string, args ...any) Response {
	return Error(fmt.Sprintf(format, args...))
}

// Package ipc carries entry commands between loop processes over a unix socket
// using newline-delimited JSON.
package ipc

const (
	CommandStatus  = "status"
	CommandText    = "text"
	CommandRecord  = "record"
	CommandStop    = "stop"
	CommandCancel  = "cancel"
	CommandSubmit  = "submit"
	CommandRetry   = "retry"
	CommandDismiss = "dismiss"
	CommandToggle  = "toggle"
)

// Request is one command line sent by a client.
type Request struct {
	Command string `json:"command"`
	Text    string `json:"text,omitempty"`
}

// Response reports the outcome of a Request and the session snapshot after it.
type Response struct {
	OK      bool   `json:"ok"`
	State   string `json:"state,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	LastOp  string `json:"last_op,omitempty"`
	Text    string `json:"text,omitempty"`
	Reply   string `json:"reply,omitempty"`
}

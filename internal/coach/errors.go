package coach

import "fmt"

// operation describes one endpoint of the backend and how its failures read.
type operation struct {
	name    string
	failure string
	// bodyError is set when a non-2xx response carries a human-readable
	// `error` field worth surfacing instead of the generic failure.
	bodyError bool
}

var (
	opListConversations  = operation{name: "list conversations", failure: "Failed to fetch chats"}
	opGetConversation    = operation{name: "get conversation", failure: "Failed to fetch chat"}
	opCreateConversation = operation{name: "create conversation", failure: "Failed to create chat"}
	opDeleteConversation = operation{name: "delete conversation", failure: "Failed to delete chat"}
	opSubmit             = operation{name: "submit", failure: "Failed to submit message", bodyError: true}
	opHealth             = operation{name: "health", failure: "Failed to reach coach"}
)

// APIError is returned by every Client operation that fails.
type APIError struct {
	// Op names the operation, e.g. "submit".
	Op string
	// StatusCode is the HTTP status, or 0 when no response was received.
	StatusCode int
	// Message is the human-readable reason, suitable for display.
	Message string
	// Err is the underlying transport or decoding error, if any.
	Err error
}

// Error implements error.
func (e *APIError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
	default:
		return e.Message
	}
}

// Unwrap returns the underlying error.
func (e *APIError) Unwrap() error { return e.Err }

package coach

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Layouts accepted for backend timestamps. The backend serializes naive
// datetimes without a zone; those are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Timestamp is a time decoded leniently from the backend's JSON.
type Timestamp struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" || raw == `""` {
		t.Time = time.Time{}
		return nil
	}
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return errors.Wrap(err, "decoding timestamp")
	}
	for _, layout := range timestampLayouts {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			t.Time = parsed
			return nil
		}
	}
	return errors.Errorf("unrecognized timestamp %q", value)
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

// Conversation is a server-persisted, titled sequence of messages.
type Conversation struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	CreatedAt Timestamp `json:"created_at"`
	UpdatedAt Timestamp `json:"updated_at"`
}

// Message is a persisted conversation message. Content is always plain text.
type Message struct {
	ID        int64     `json:"id,omitempty"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt Timestamp `json:"created_at"`
}

// Persisted roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ConversationWithMessages is the payload of GET /chats/{id}.
type ConversationWithMessages struct {
	Conversation
	Messages []Message `json:"messages"`
}

// Plan echoes the input and lists the dimensions the critique covers.
type Plan struct {
	Input          string   `json:"input"`
	Classification string   `json:"classification"`
	Dimensions     []string `json:"dimensions"`
}

// Critique is the structured coach output.
type Critique struct {
	Plan     *Plan    `json:"plan,omitempty"`
	Tips     []string `json:"tips,omitempty"`
	Critique string   `json:"critique"`
}

// SubmitRequest is the body of POST /submit.
type SubmitRequest struct {
	Text string `json:"text"`
	// Omitted when zero, which lets the backend create a conversation.
	ConversationID int64 `json:"conversation_id,omitempty"`
}

// SubmitResponse is the body of a successful POST /submit. Any of the fields
// may be missing.
type SubmitResponse struct {
	// The backend always sends critique as a string. Any other JSON type is
	// treated as absent and the turn falls through to Response or the
	// fallback.
	Critique       string
	Plan           *Plan
	Tips           []string
	Response       string
	ConversationID int64
}

// UnmarshalJSON decodes each field independently and drops the ones whose
// JSON type does not match, so a malformed field degrades to "absent"
// instead of failing the whole response.
func (r *SubmitResponse) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return errors.Wrap(err, "decoding submit response")
	}
	*r = SubmitResponse{}
	decodeField(fields, "critique", &r.Critique)
	decodeField(fields, "plan", &r.Plan)
	decodeField(fields, "tips", &r.Tips)
	decodeField(fields, "response", &r.Response)
	decodeField(fields, "conversation_id", &r.ConversationID)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (r SubmitResponse) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Critique       string   `json:"critique,omitempty"`
		Plan           *Plan    `json:"plan,omitempty"`
		Tips           []string `json:"tips,omitempty"`
		Response       string   `json:"response,omitempty"`
		ConversationID int64    `json:"conversation_id,omitempty"`
	}{r.Critique, r.Plan, r.Tips, r.Response, r.ConversationID})
}

func decodeField[T any](fields map[string]json.RawMessage, name string, dst *T) {
	raw, ok := fields[name]
	if !ok {
		return
	}
	var value T
	if err := json.Unmarshal(raw, &value); err != nil {
		return
	}
	*dst = value
}

// Health is the backend's detailed health report.
type Health struct {
	Status string          `json:"status"`
	Agents map[string]bool `json:"agents"`
}

// Ready reports whether the backend and all of its agents are up.
func (h *Health) Ready() bool {
	if h.Status != "ok" {
		return false
	}
	for _, up := range h.Agents {
		if !up {
			return false
		}
	}
	return true
}

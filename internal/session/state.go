package session

import (
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/projectforge/forge/internal/coach"
)

// Role is the display role of a transcript message.
type Role string

const (
	RoleUser  Role = "user"
	RoleCoach Role = "coach"
)

// Message is one transcript entry. Coach critiques carry Critique; every
// other message carries Text.
type Message struct {
	ID        string
	Role      Role
	Text      string
	Critique  *coach.Critique
	Timestamp time.Time
}

// IsCritique reports whether the message holds a structured critique.
func (m Message) IsCritique() bool { return m.Critique != nil }

// State is everything the transcript displays. Transitions never mutate a
// State in place, so snapshots handed out earlier stay valid.
type State struct {
	// ActiveID is the conversation the transcript belongs to; 0 means a new,
	// unsaved conversation.
	ActiveID int64
	Messages []Message
	Loading  bool
	// Err is the last session-level error, "" when there is none.
	Err string
	// Conversations caches the backend's conversation list.
	Conversations []coach.Conversation
	// Generation increases on every selection change. Results of operations
	// started in an older generation are discarded.
	Generation uint64
}

// SelectOp is an in-flight history load. Previous is the conversation the
// transcript still shows until the load succeeds.
type SelectOp struct {
	ID         int64
	Previous   int64
	Generation uint64
}

// SubmitOp is an in-flight submit.
type SubmitOp struct {
	Text           string
	ConversationID int64
	Generation     uint64
}

// Conversation looks up a cached conversation by id.
func (s State) Conversation(id int64) (coach.Conversation, bool) {
	for _, conversation := range s.Conversations {
		if conversation.ID == id {
			return conversation, true
		}
	}
	return coach.Conversation{}, false
}

// Reset starts a fresh, unsaved conversation.
func (s State) Reset() State {
	s.Generation++
	s.ActiveID = 0
	s.Messages = nil
	s.Loading = false
	s.Err = ""
	return s
}

// BeginSelect switches to conversation id. It reports whether the
// conversation's history has to be fetched; selecting 0 resets and selecting
// the active conversation is a no-op.
func (s State) BeginSelect(id int64) (State, SelectOp, bool) {
	if id == 0 {
		return s.Reset(), SelectOp{}, false
	}
	if id == s.ActiveID {
		return s, SelectOp{}, false
	}
	previous := s.ActiveID
	s.Generation++
	s.ActiveID = id
	s.Loading = true
	s.Err = ""
	return s, SelectOp{ID: id, Previous: previous, Generation: s.Generation}, true
}

// ApplyHistory replaces the log with a fetched conversation.
func (s State) ApplyHistory(op SelectOp, conversation *coach.ConversationWithMessages) State {
	if op.Generation != s.Generation {
		return s
	}
	s.Messages = HistoryMessages(conversation)
	s.Loading = false
	return s
}

// FailHistory records a history fetch failure. The previous log stays, and
// so does the conversation it belongs to, so a later submit goes there and
// selecting the failed id again retries the load.
func (s State) FailHistory(op SelectOp, err error) State {
	if op.Generation != s.Generation {
		return s
	}
	s.ActiveID = op.Previous
	s.Loading = false
	s.Err = ErrorMessage(err)
	return s
}

// BeginSubmit validates text and appends it as an optimistic user message.
// Whitespace-only text returns ErrEmptyInput and changes nothing; text
// shorter than minLength (when positive) records a ValidationError and leaves
// the log alone.
func (s State) BeginSubmit(text string, minLength int, id string, at time.Time) (State, SubmitOp, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return s, SubmitOp{}, ErrEmptyInput
	}
	if length := utf8.RuneCountInString(text); minLength > 0 && length < minLength {
		err := &ValidationError{MinLength: minLength, Length: length}
		s.Err = err.Error()
		return s, SubmitOp{}, err
	}

	s.Messages = append(slices.Clip(s.Messages), Message{
		ID:        id,
		Role:      RoleUser,
		Text:      text,
		Timestamp: at,
	})
	s.Loading = true
	s.Err = ""
	return s, SubmitOp{Text: text, ConversationID: s.ActiveID, Generation: s.Generation}, nil
}

// ApplySubmit appends the coach turn for a successful submit. It reports
// whether the response moved the session onto a new conversation id.
func (s State) ApplySubmit(op SubmitOp, response *coach.SubmitResponse, id string, at time.Time) (State, bool) {
	if op.Generation != s.Generation {
		return s, false
	}
	s.Loading = false
	adopted := false
	if response != nil && response.ConversationID != 0 && response.ConversationID != s.ActiveID {
		s.ActiveID = response.ConversationID
		adopted = true
	}
	s.Messages = append(slices.Clip(s.Messages), ClassifyResponse(response).message(id, at))
	return s, adopted
}

// FailSubmit records a submit failure. The optimistic user message stays.
func (s State) FailSubmit(op SubmitOp, err error) State {
	if op.Generation != s.Generation {
		return s
	}
	s.Loading = false
	s.Err = ErrorMessage(err)
	return s
}

// ApplyConversations replaces the cached conversation list.
func (s State) ApplyConversations(conversations []coach.Conversation) State {
	s.Conversations = conversations
	return s
}

// ApplyCreated caches a newly created conversation and opens it.
func (s State) ApplyCreated(conversation coach.Conversation) State {
	s = s.Reset()
	s.ActiveID = conversation.ID
	s.Conversations = append([]coach.Conversation{conversation}, s.Conversations...)
	return s
}

// ApplyDelete drops a deleted conversation from the cache. Deleting the
// active conversation resets the session; the second result reports that.
func (s State) ApplyDelete(id int64) (State, bool) {
	s.Conversations = slices.DeleteFunc(slices.Clone(s.Conversations), func(c coach.Conversation) bool {
		return c.ID == id
	})
	if id != 0 && id == s.ActiveID {
		return s.Reset(), true
	}
	return s, false
}

// HistoryMessages maps persisted messages onto transcript messages, in
// persisted order. Persisted content is always text, so historical critiques
// replay as Markdown.
func HistoryMessages(conversation *coach.ConversationWithMessages) []Message {
	if conversation == nil || len(conversation.Messages) == 0 {
		return nil
	}
	messages := make([]Message, len(conversation.Messages))
	for i, persisted := range conversation.Messages {
		role := RoleUser
		if persisted.Role == coach.RoleAssistant {
			role = RoleCoach
		}
		timestamp := persisted.CreatedAt.Time
		if timestamp.IsZero() {
			timestamp = conversation.UpdatedAt.Time
		}
		messages[i] = Message{
			ID:        historyMessageID(conversation.ID, i, persisted.ID),
			Role:      role,
			Text:      persisted.Content,
			Timestamp: timestamp,
		}
	}
	return messages
}

func historyMessageID(conversationID int64, index int, persistedID int64) string {
	if persistedID != 0 {
		return fmt.Sprintf("chat-%d/msg-%d", conversationID, persistedID)
	}
	return fmt.Sprintf("chat-%d/idx-%d", conversationID, index)
}

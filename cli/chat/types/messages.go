// Package types holds the messages exchanged inside the chat program.
package types

import (
	"github.com/projectforge/forge/internal/coach"
)

// SelectDoneMsg reports that a conversation's history finished loading.
type SelectDoneMsg struct {
	ID  int64
	Err error
}

// SubmitDoneMsg reports that the coach replied to a submit, or failed to.
type SubmitDoneMsg struct {
	Err error
}

// ConversationsLoadedMsg reports a refresh of the conversation list.
type ConversationsLoadedMsg struct {
	Err error
}

// ConversationAdoptedMsg is sent when the backend assigned the session a
// conversation id.
type ConversationAdoptedMsg struct {
	ID int64
}

// ConversationCreatedMsg reports an explicit conversation creation.
type ConversationCreatedMsg struct {
	Conversation *coach.Conversation
	Err          error
}

// DeleteDoneMsg reports a conversation deletion.
type DeleteDoneMsg struct {
	ID  int64
	Err error
}

// CopyMsg asks the program to put Content on the clipboard.
type CopyMsg struct {
	Content string
}

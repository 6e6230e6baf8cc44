package session

import (
	"time"

	"github.com/projectforge/forge/internal/coach"
)

// FallbackText is the coach reply used when a submit response carries
// neither a critique nor a plain-text reply.
const FallbackText = "No response from coach."

// TurnKind identifies the shape of a coach turn.
type TurnKind int

const (
	TurnFallback TurnKind = iota
	TurnText
	TurnCritique
)

// String implements fmt.Stringer.
func (k TurnKind) String() string {
	switch k {
	case TurnCritique:
		return "critique"
	case TurnText:
		return "text"
	default:
		return "fallback"
	}
}

// Turn is a classified submit response. It is one of CritiqueTurn, TextTurn
// or FallbackTurn.
type Turn interface {
	Kind() TurnKind
	message(id string, at time.Time) Message
}

// CritiqueTurn carries a structured critique, exactly as returned.
type CritiqueTurn struct {
	Critique coach.Critique
}

// TextTurn carries a plain Markdown reply.
type TextTurn struct {
	Text string
}

// FallbackTurn stands in for a response with no usable content.
type FallbackTurn struct{}

func (CritiqueTurn) Kind() TurnKind { return TurnCritique }
func (TextTurn) Kind() TurnKind     { return TurnText }
func (FallbackTurn) Kind() TurnKind { return TurnFallback }

func (t CritiqueTurn) message(id string, at time.Time) Message {
	critique := t.Critique
	return Message{ID: id, Role: RoleCoach, Critique: &critique, Timestamp: at}
}

func (t TextTurn) message(id string, at time.Time) Message {
	return Message{ID: id, Role: RoleCoach, Text: t.Text, Timestamp: at}
}

func (FallbackTurn) message(id string, at time.Time) Message {
	return Message{ID: id, Role: RoleCoach, Text: FallbackText, Timestamp: at}
}

// ClassifyResponse resolves a submit response into exactly one turn.
// A critique wins over a plain reply; with neither, the turn is a fallback.
func ClassifyResponse(response *coach.SubmitResponse) Turn {
	switch {
	case response == nil:
		return FallbackTurn{}
	case response.Critique != "":
		return CritiqueTurn{Critique: coach.Critique{
			Plan:     response.Plan,
			Tips:     response.Tips,
			Critique: response.Critique,
		}}
	case response.Response != "":
		return TextTurn{Text: response.Response}
	default:
		return FallbackTurn{}
	}
}

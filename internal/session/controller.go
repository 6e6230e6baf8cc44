// Package session reconciles the transcript shown to the user with the
// writing-coach backend: optimistic user messages, coach replies of several
// shapes, server-assigned conversation ids and history rehydration.
package session

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/projectforge/forge/internal/coach"
)

// API is the subset of the backend client the controller depends on.
type API interface {
	ListConversations(ctx context.Context) ([]coach.Conversation, error)
	GetConversation(ctx context.Context, id int64) (*coach.ConversationWithMessages, error)
	CreateConversation(ctx context.Context, title string) (*coach.Conversation, error)
	DeleteConversation(ctx context.Context, id int64) error
	Submit(ctx context.Context, request *coach.SubmitRequest) (*coach.SubmitResponse, error)
}

// Controller owns the session State. Network operations come in two halves:
// Begin* applies the synchronous transition and returns a ticket, Complete*
// performs the single request and applies its result. The lock is never held
// across a request.
type Controller struct {
	api            API
	log            *slog.Logger
	now            func() time.Time
	newID          func() string
	minInputLength int
	onAdopt        func(id int64)

	mu    sync.Mutex
	state State
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger failures are reported to.
func WithLogger(log *slog.Logger) Option {
	return func(c *Controller) { c.log = log }
}

// WithClock overrides the time source for message timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithIDGenerator overrides how local message ids are generated.
func WithIDGenerator(newID func() string) Option {
	return func(c *Controller) { c.newID = newID }
}

// WithMinInputLength rejects submissions shorter than n characters. Zero
// disables the check.
func WithMinInputLength(n int) Option {
	return func(c *Controller) { c.minInputLength = n }
}

// WithAdoptHook registers fn to be called after a submit moves the session
// onto a conversation id assigned by the backend.
func WithAdoptHook(fn func(id int64)) Option {
	return func(c *Controller) { c.onAdopt = fn }
}

// NewController returns a controller in the initial state.
func NewController(api API, opts ...Option) *Controller {
	c := &Controller{
		api:   api,
		log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:   time.Now,
		newID: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns a snapshot of the session.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Reset starts a fresh, unsaved conversation.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = c.state.Reset()
}

// SelectConversation switches the transcript to conversation id, loading its
// history. id 0 starts a fresh conversation.
func (c *Controller) SelectConversation(ctx context.Context, id int64) error {
	op, fetch := c.BeginSelect(id)
	if !fetch {
		return nil
	}
	return c.CompleteSelect(ctx, op)
}

// BeginSelect applies the selection and reports whether CompleteSelect must run.
func (c *Controller) BeginSelect(id int64) (SelectOp, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var (
		op    SelectOp
		fetch bool
	)
	c.state, op, fetch = c.state.BeginSelect(id)
	return op, fetch
}

// CompleteSelect fetches the history for op and applies it.
func (c *Controller) CompleteSelect(ctx context.Context, op SelectOp) error {
	conversation, err := c.api.GetConversation(ctx, op.ID)

	c.mu.Lock()
	defer c.mu.Unlock()
	stale := op.Generation != c.state.Generation
	if err != nil {
		c.log.Error("loading conversation", "conversation_id", op.ID, "stale", stale, "error", err)
		c.state = c.state.FailHistory(op, err)
		return errors.Wrapf(err, "loading conversation %d", op.ID)
	}
	if stale {
		c.log.Debug("discarding stale history", "conversation_id", op.ID)
	}
	c.state = c.state.ApplyHistory(op, conversation)
	return nil
}

// Submit appends text as a user message, sends it to the coach and appends
// the coach's reply. It returns ErrEmptyInput or a *ValidationError without
// contacting the backend.
func (c *Controller) Submit(ctx context.Context, text string) error {
	op, err := c.BeginSubmit(text)
	if err != nil {
		return err
	}
	return c.CompleteSubmit(ctx, op)
}

// BeginSubmit appends the optimistic user message and returns the ticket for
// CompleteSubmit.
func (c *Controller) BeginSubmit(text string) (SubmitOp, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	state, op, err := c.state.BeginSubmit(text, c.minInputLength, c.newID(), c.now())
	c.state = state
	return op, err
}

// CompleteSubmit sends op to the backend and appends the coach turn.
func (c *Controller) CompleteSubmit(ctx context.Context, op SubmitOp) error {
	request := &coach.SubmitRequest{Text: op.Text, ConversationID: op.ConversationID}
	response, err := c.api.Submit(ctx, request)

	c.mu.Lock()
	if err != nil {
		c.state = c.state.FailSubmit(op, err)
		c.mu.Unlock()
		c.log.Error("submitting message", "conversation_id", op.ConversationID, "error", err)
		return errors.Wrap(err, "submitting message")
	}
	var adopted bool
	c.state, adopted = c.state.ApplySubmit(op, response, c.newID(), c.now())
	activeID := c.state.ActiveID
	c.mu.Unlock()

	c.log.Info("coach replied", "conversation_id", activeID, "turn", ClassifyResponse(response).Kind().String())
	if adopted && c.onAdopt != nil {
		c.onAdopt(activeID)
	}
	return nil
}

// RefreshConversations reloads the cached conversation list. Failures are
// logged and returned but never shown in the transcript.
func (c *Controller) RefreshConversations(ctx context.Context) error {
	conversations, err := c.api.ListConversations(ctx)
	if err != nil {
		c.log.Warn("listing conversations", "error", err)
		return errors.Wrap(err, "listing conversations")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = c.state.ApplyConversations(conversations)
	return nil
}

// CreateConversation creates a conversation server-side and opens it.
func (c *Controller) CreateConversation(ctx context.Context, title string) (*coach.Conversation, error) {
	conversation, err := c.api.CreateConversation(ctx, title)
	if err != nil {
		c.log.Warn("creating conversation", "error", err)
		return nil, errors.Wrap(err, "creating conversation")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = c.state.ApplyCreated(*conversation)
	return conversation, nil
}

// DeleteConversation deletes a conversation. Deleting the active one resets
// the session. On failure nothing changes and the error is logged and
// returned, not shown inline.
func (c *Controller) DeleteConversation(ctx context.Context, id int64) error {
	if err := c.api.DeleteConversation(ctx, id); err != nil {
		c.log.Warn("deleting conversation", "conversation_id", id, "error", err)
		return errors.Wrapf(err, "deleting conversation %d", id)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state, _ = c.state.ApplyDelete(id)
	return nil
}

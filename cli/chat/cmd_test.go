package chat

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projectforge/forge/internal/coach"
)

type listOnly struct {
	conversations []coach.Conversation
}

func (l listOnly) ListConversations(context.Context) ([]coach.Conversation, error) {
	return l.conversations, nil
}

func (listOnly) GetConversation(context.Context, int64) (*coach.ConversationWithMessages, error) {
	return nil, nil
}

func (listOnly) CreateConversation(context.Context, string) (*coach.Conversation, error) {
	return nil, nil
}

func (listOnly) DeleteConversation(context.Context, int64) error { return nil }

func (listOnly) Submit(context.Context, *coach.SubmitRequest) (*coach.SubmitResponse, error) {
	return nil, nil
}

func TestLatestConversation(t *testing.T) {
	at := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	api := listOnly{conversations: []coach.Conversation{
		{ID: 1, UpdatedAt: coach.Timestamp{Time: at}},
		{ID: 2, UpdatedAt: coach.Timestamp{Time: at.Add(time.Hour)}},
		{ID: 3, UpdatedAt: coach.Timestamp{Time: at.Add(-time.Hour)}},
	}}
	id, err := latestConversation(context.Background(), api)
	require.NoError(t, err)
	assert.Equal(t, int64(2), id)

	_, err = latestConversation(context.Background(), listOnly{})
	assert.Error(t, err)
}

func TestReadlineHistoryFileIsSeparate(t *testing.T) {
	assert.Empty(t, readlineHistoryFile(""))
	assert.Equal(t, "/tmp/forge-history.readline", readlineHistoryFile("/tmp/forge-history"))
}

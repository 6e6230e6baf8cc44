package coach

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := New(server.URL)
	require.NoError(t, err)
	return client
}

func TestNewRejectsInvalidBaseURL(t *testing.T) {
	_, err := New("ftp://example.com")
	require.Error(t, err)

	_, err = New("http://")
	require.Error(t, err)

	client, err := New("")
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, client.BaseURL())
}

func TestListConversations(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/chats", r.URL.Path)
		io.WriteString(w, `[
			{"id": 3, "title": "Draft", "created_at": "2024-05-01T10:00:00.123456", "updated_at": "2024-05-01T10:05:00"},
			{"id": 1, "title": "Opening line", "created_at": "2024-04-30T09:00:00Z", "updated_at": null}
		]`)
	})

	conversations, err := client.ListConversations(context.Background())
	require.NoError(t, err)
	require.Len(t, conversations, 2)
	assert.Equal(t, int64(3), conversations[0].ID)
	assert.Equal(t, "Draft", conversations[0].Title)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 123456000, time.UTC), conversations[0].CreatedAt.Time)
	assert.True(t, conversations[1].UpdatedAt.IsZero())
}

func TestListConversationsFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"error": "database locked"}`)
	})

	_, err := client.ListConversations(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	// Only submit surfaces the body's error field.
	assert.Equal(t, "Failed to fetch chats", apiErr.Message)
}

func TestGetConversation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chats/7", r.URL.Path)
		io.WriteString(w, `{
			"id": 7, "title": "Stormy night", "created_at": "2024-05-01 10:00:00", "updated_at": "2024-05-01 10:00:00",
			"messages": [
				{"role": "user", "content": "Is this opening line strong?"},
				{"role": "assistant", "content": "It's a classic but heavily clichéd opener."}
			]
		}`)
	})

	conversation, err := client.GetConversation(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), conversation.ID)
	assert.Equal(t, "Stormy night", conversation.Title)
	require.Len(t, conversation.Messages, 2)
	assert.Equal(t, RoleUser, conversation.Messages[0].Role)
	assert.Equal(t, RoleAssistant, conversation.Messages[1].Role)
}

func TestCreateConversationDefaultsTitle(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, DefaultConversationTitle, body["title"])
		io.WriteString(w, `{"id": 11, "title": "New Conversation"}`)
	})

	conversation, err := client.CreateConversation(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, int64(11), conversation.ID)
}

func TestDeleteConversation(t *testing.T) {
	var deleted string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		deleted = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, client.DeleteConversation(context.Background(), 4))
	assert.Equal(t, "/chats/4", deleted)
}

func TestDeleteConversationFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	err := client.DeleteConversation(context.Background(), 4)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Failed to delete chat", apiErr.Message)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestSubmitOmitsMissingConversationID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Hello coach", body["text"])
		_, present := body["conversation_id"]
		assert.False(t, present)
		io.WriteString(w, `{"response": "Hi there", "conversation_id": 9}`)
	})

	response, err := client.Submit(context.Background(), &SubmitRequest{Text: "Hello coach"})
	require.NoError(t, err)
	assert.Equal(t, "Hi there", response.Response)
	assert.Equal(t, int64(9), response.ConversationID)
}

func TestSubmitCritique(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.EqualValues(t, 3, body["conversation_id"])
		io.WriteString(w, `{
			"critique": "Solid structure...",
			"plan": {"input": "...", "classification": "narrative", "dimensions": ["Pacing", "Dialogue"]},
			"tips": ["Vary sentence length"],
			"conversation_id": 3
		}`)
	})

	response, err := client.Submit(context.Background(), &SubmitRequest{Text: "draft", ConversationID: 3})
	require.NoError(t, err)
	assert.Equal(t, "Solid structure...", response.Critique)
	require.NotNil(t, response.Plan)
	assert.Equal(t, "narrative", response.Plan.Classification)
	assert.Equal(t, []string{"Pacing", "Dialogue"}, response.Plan.Dimensions)
	assert.Equal(t, []string{"Vary sentence length"}, response.Tips)
}

func TestSubmitToleratesMistypedFields(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"critique": 42, "plan": "oops", "tips": [1, 2], "response": "Plain reply"}`)
	})

	response, err := client.Submit(context.Background(), &SubmitRequest{Text: "draft"})
	require.NoError(t, err)
	assert.Empty(t, response.Critique)
	assert.Nil(t, response.Plan)
	assert.Nil(t, response.Tips)
	assert.Equal(t, "Plain reply", response.Response)
}

func TestSubmitErrorUsesBodyErrorField(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"error": "No text provided."}`)
	})

	_, err := client.Submit(context.Background(), &SubmitRequest{Text: " "})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "No text provided.", apiErr.Message)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
}

func TestSubmitErrorFallsBackToGenericMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, `<html>bad gateway</html>`)
	})

	_, err := client.Submit(context.Background(), &SubmitRequest{Text: "draft"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Failed to submit message", apiErr.Message)
}

func TestTransportFailureIsWrapped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client, err := New(server.URL)
	require.NoError(t, err)
	server.Close()

	_, err = client.ListConversations(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Zero(t, apiErr.StatusCode)
	assert.Equal(t, "Failed to fetch chats", apiErr.Message)
	assert.NotNil(t, errors.Unwrap(apiErr))
}

func TestBaseURLPathPrefixIsKept(t *testing.T) {
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		io.WriteString(w, `[]`)
	}))
	t.Cleanup(server.Close)

	client, err := New(server.URL + "/api/")
	require.NoError(t, err)
	_, err = client.ListConversations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/api/chats", path)
}

func TestHealth(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		io.WriteString(w, `{"status": "ok", "agents": {"planner": true, "librarian": true, "coach": false}}`)
	})

	health, err := client.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", health.Status)
	assert.False(t, health.Ready())
	health.Agents["coach"] = true
	assert.True(t, health.Ready())
}

package conversation

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projectforge/forge/internal/coach"
	"github.com/projectforge/forge/internal/configuration"
)

// backend is an in-memory coach server.
type backend struct {
	mu        sync.Mutex
	chats     map[int64]*coach.ConversationWithMessages
	submitted []map[string]any
	deleted   []int64
}

func newBackend(t *testing.T) (*backend, *coach.Client) {
	t.Helper()
	b := &backend{chats: map[int64]*coach.ConversationWithMessages{
		1: {Conversation: coach.Conversation{ID: 1, Title: "Opening lines"}, Messages: []coach.Message{
			{ID: 1, Role: "user", Content: "It was a dark and stormy night."},
			{ID: 2, Role: "assistant", Content: "A classic, maybe too classic."},
		}},
		2: {Conversation: coach.Conversation{ID: 2, Title: "Chapter two"}},
	}}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /chats", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		list := []coach.Conversation{}
		for _, id := range []int64{1, 2} {
			if chat, ok := b.chats[id]; ok {
				list = append(list, chat.Conversation)
			}
		}
		json.NewEncoder(w).Encode(list)
	})
	mux.HandleFunc("GET /chats/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		for id, chat := range b.chats {
			if r.PathValue("id") == jsonInt(id) {
				json.NewEncoder(w).Encode(chat)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("DELETE /chats/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		for id := range b.chats {
			if r.PathValue("id") == jsonInt(id) {
				delete(b.chats, id)
				b.deleted = append(b.deleted, id)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("POST /submit", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		b.mu.Lock()
		b.submitted = append(b.submitted, body)
		b.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]any{
			"critique":        "Solid structure...",
			"tips":            []string{"Vary sentence length"},
			"conversation_id": 5,
		})
	})
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"status": "ok",
			"agents": map[string]bool{"planner": true, "librarian": true, "coach": false},
		})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	client, err := coach.New(server.URL)
	require.NoError(t, err)
	return b, client
}

func jsonInt(id int64) string {
	out, _ := json.Marshal(id)
	return string(out)
}

func run(t *testing.T, cmd *cobra.Command, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	cmd.SetContext(context.Background())
	err := cmd.Execute()
	return out.String(), err
}

func TestParseIDs(t *testing.T) {
	ids, err := parseIDs([]string{"3", "1", "3", "2", "1"})
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 1, 2}, ids)

	_, err = parseIDs([]string{"0"})
	assert.Error(t, err)
	_, err = parseIDs([]string{"abc"})
	assert.Error(t, err)
}

func TestExportToStdout(t *testing.T) {
	_, client := newBackend(t)
	out, err := run(t, newExportCmd(&configuration.Config{}, client), "", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "# Opening lines")
	assert.Contains(t, out, "### You")
	assert.Contains(t, out, "It was a dark and stormy night.")
	assert.Contains(t, out, "### Coach")
}

func TestExportAllToDirectory(t *testing.T) {
	_, client := newBackend(t)
	dir := t.TempDir()
	out, err := run(t, newExportCmd(&configuration.Config{}, client), "", "--dir", dir, "--concurrency", "2")
	require.NoError(t, err)

	first := filepath.Join(dir, "conversation-1-opening-lines.md")
	second := filepath.Join(dir, "conversation-2-chapter-two.md")
	assert.Contains(t, out, first)
	assert.Contains(t, out, second)
	content, err := os.ReadFile(first)
	require.NoError(t, err)
	assert.Contains(t, string(content), "A classic, maybe too classic.")
	assert.FileExists(t, second)
}

func TestExportFailureStops(t *testing.T) {
	_, client := newBackend(t)
	_, err := run(t, newExportCmd(&configuration.Config{}, client), "", "1", "404")
	require.Error(t, err)
	var apiErr *coach.APIError
	assert.True(t, errors.As(err, &apiErr))
}

func TestSubmitFromStdin(t *testing.T) {
	b, client := newBackend(t)
	out, err := run(t, newSubmitCmd(&configuration.Config{}, client), "Here is my chapter...", "--raw")
	require.NoError(t, err)
	assert.Contains(t, out, "## Writing Tips")
	assert.Contains(t, out, "Solid structure...")

	require.Len(t, b.submitted, 1)
	assert.Equal(t, "Here is my chapter...", b.submitted[0]["text"])
	assert.NotContains(t, b.submitted[0], "conversation_id")
}

func TestSubmitContinuesConversation(t *testing.T) {
	b, client := newBackend(t)
	_, err := run(t, newSubmitCmd(&configuration.Config{}, client), "", "--id", "1", "--raw", "Another", "try")
	require.NoError(t, err)
	require.Len(t, b.submitted, 1)
	assert.Equal(t, "Another try", b.submitted[0]["text"])
	assert.EqualValues(t, 1, b.submitted[0]["conversation_id"])
}

func TestSubmitValidation(t *testing.T) {
	b, client := newBackend(t)
	config := &configuration.Config{Chat: configuration.ChatConfig{MinInputLength: 50}}
	_, err := run(t, newSubmitCmd(config, client), "", "short")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 50 characters")
	assert.Empty(t, b.submitted)
}

func TestDeleteDeduplicates(t *testing.T) {
	b, client := newBackend(t)
	out, err := run(t, newDeleteCmd(client), "", "--yes", "2", "2")
	require.NoError(t, err)
	assert.Equal(t, "deleted 2\n", out)
	assert.Equal(t, []int64{2}, b.deleted)
}

func TestDeleteReportsFailures(t *testing.T) {
	_, client := newBackend(t)
	_, err := run(t, newDeleteCmd(client), "", "--yes", "404")
	assert.Error(t, err)
}

func TestNewPrintsID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		json.NewEncoder(w).Encode(coach.Conversation{ID: 42, Title: body["title"]})
	}))
	t.Cleanup(server.Close)
	client, err := coach.New(server.URL)
	require.NoError(t, err)

	out, err := run(t, newNewCmd(client), "")
	require.NoError(t, err)
	assert.Equal(t, "42\n", out)
}

func TestStatus(t *testing.T) {
	_, client := newBackend(t)
	out, err := run(t, newStatusCmd(client), "")
	assert.EqualError(t, err, "coach is not ready")
	assert.Contains(t, out, ": ok")
	assert.Contains(t, out, "coach      not ready")
	assert.Contains(t, out, "planner    ready")
}

func TestShowPrintsTitleLiterally(t *testing.T) {
	b, client := newBackend(t)
	b.chats[3] = &coach.ConversationWithMessages{Conversation: coach.Conversation{ID: 3, Title: "Draft at 100% done"}}

	var printed bytes.Buffer
	output := color.Output
	color.Output = &printed
	t.Cleanup(func() { color.Output = output })

	_, err := run(t, newShowCmd(client), "", "3")
	require.NoError(t, err)
	assert.Contains(t, printed.String(), "Draft at 100% done")
	assert.NotContains(t, printed.String(), "MISSING")
}

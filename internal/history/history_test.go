package history

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNavigation(t *testing.T) {
	h, err := New("")
	require.NoError(t, err)
	require.NoError(t, h.Add("first"))
	require.NoError(t, h.Add("second"))

	entry, ok := h.Previous("typing")
	assert.True(t, ok)
	assert.Equal(t, "second", entry)

	entry, ok = h.Previous("ignored")
	assert.True(t, ok)
	assert.Equal(t, "first", entry)

	entry, ok = h.Previous("ignored")
	assert.False(t, ok)
	assert.Equal(t, "first", entry)

	entry, ok = h.Next()
	assert.True(t, ok)
	assert.Equal(t, "second", entry)

	entry, ok = h.Next()
	assert.True(t, ok)
	assert.Equal(t, "typing", entry)

	_, ok = h.Next()
	assert.False(t, ok)
}

func TestAddSkipsBlankAndRepeats(t *testing.T) {
	h, err := New("")
	require.NoError(t, err)
	require.NoError(t, h.Add("  "))
	require.NoError(t, h.Add("draft"))
	require.NoError(t, h.Add("draft  "))
	assert.Equal(t, []string{"draft"}, h.Entries())
}

func TestPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history")
	h, err := New(path)
	require.NoError(t, err)
	assert.Empty(t, h.Entries())

	require.NoError(t, h.Add("line one\nline two"))
	require.NoError(t, h.Add(`C:\drafts\new`))

	reloaded, err := New(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"line one\nline two", `C:\drafts\new`}, reloaded.Entries())
}

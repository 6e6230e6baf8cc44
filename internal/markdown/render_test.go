package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderKeepsText(t *testing.T) {
	r, err := NewRenderer(80)
	require.NoError(t, err)

	out := r.Render("", "Vary sentence length")
	assert.Contains(t, out, "Vary")
	assert.Contains(t, out, "length")
}

func TestRenderCachesByKey(t *testing.T) {
	r, err := NewRenderer(80)
	require.NoError(t, err)

	first := r.Render("m1", "first")
	assert.Equal(t, first, r.Render("m1", "something else"))
	assert.NotEqual(t, first, r.Render("", "something else"))
}

func TestSetWidthDropsCache(t *testing.T) {
	r, err := NewRenderer(80)
	require.NoError(t, err)
	r.Render("m1", "first")

	require.NoError(t, r.SetWidth(40))
	assert.Equal(t, 40, r.Width())
	assert.Contains(t, r.Render("m1", "second"), "second")
}

// Package history recalls drafts previously submitted in the chat input.
package history

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

const maxEntries = 500

// History is a bounded list of submitted drafts with a navigation cursor.
// With a path it is persisted one escaped entry per line; without one it
// lives in memory only.
type History struct {
	mu      sync.Mutex
	path    string
	entries []string
	index   int    // -1 while editing a new draft.
	draft   string // Input being edited when navigation started.
}

// New loads the history stored at path. An empty path keeps history in
// memory; a missing file starts empty.
func New(path string) (*History, error) {
	h := &History{path: path, index: -1}
	if path == "" {
		return h, nil
	}
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return h, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "opening history")
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if line := unescape(scanner.Text()); line != "" {
			h.entries = append(h.entries, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading history")
	}
	h.trim()
	return h, nil
}

// Entries returns a copy of the stored drafts, oldest first.
func (h *History) Entries() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.entries...)
}

// Add records a submitted draft and resets navigation. Repeating the latest
// entry is not stored twice.
func (h *History) Add(entry string) error {
	entry = strings.TrimSpace(entry)
	if entry == "" {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.index = -1
	h.draft = ""
	if n := len(h.entries); n > 0 && h.entries[n-1] == entry {
		return nil
	}
	h.entries = append(h.entries, entry)
	h.trim()
	return h.save()
}

// Previous steps back in history. current is the input being edited; it is
// restored once Next walks past the newest entry.
func (h *History) Previous(current string) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch {
	case len(h.entries) == 0:
		return "", false
	case h.index == -1:
		h.draft = current
		h.index = len(h.entries) - 1
	case h.index > 0:
		h.index--
	default:
		return h.entries[0], false
	}
	return h.entries[h.index], true
}

// Next steps forward in history.
func (h *History) Next() (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.index == -1 {
		return "", false
	}
	h.index++
	if h.index >= len(h.entries) {
		h.index = -1
		return h.draft, true
	}
	return h.entries[h.index], true
}

// Reset leaves navigation mode.
func (h *History) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.index = -1
	h.draft = ""
}

func (h *History) trim() {
	if len(h.entries) > maxEntries {
		h.entries = h.entries[len(h.entries)-maxEntries:]
	}
}

func (h *History) save() error {
	if h.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(h.path), 0o755); err != nil {
		return errors.Wrap(err, "creating history directory")
	}
	file, err := os.Create(h.path)
	if err != nil {
		return errors.Wrap(err, "creating history")
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for _, entry := range h.entries {
		if _, err := writer.WriteString(escape(entry) + "\n"); err != nil {
			return errors.Wrap(err, "writing history")
		}
	}
	return errors.Wrap(writer.Flush(), "writing history")
}

func escape(entry string) string {
	entry = strings.ReplaceAll(entry, `\`, `\\`)
	return strings.ReplaceAll(entry, "\n", `\n`)
}

func unescape(line string) string {
	var sb strings.Builder
	for i := 0; i < len(line); i++ {
		if line[i] == '\\' && i+1 < len(line) {
			i++
			if line[i] == 'n' {
				sb.WriteByte('\n')
			} else {
				sb.WriteByte(line[i])
			}
			continue
		}
		sb.WriteByte(line[i])
	}
	return sb.String()
}

// Package transcript turns session messages into Markdown, for the terminal
// and for exported files.
package transcript

import (
	"bytes"
	_ "embed"
	"fmt"
	"regexp"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/pkg/errors"

	"github.com/projectforge/forge/internal/coach"
	"github.com/projectforge/forge/internal/session"
)

// WelcomeText is shown while the transcript is empty.
const WelcomeText = `# Project Forge

Your local-first AI writing coach.

Get constructive critique on your writing. Receive questions that spark
deeper thinking. Discover techniques to strengthen your prose.

Paste a draft below and press **Ctrl+J** to start.`

var (
	//go:embed critique.md.tmpl
	critiqueTemplateText string
	//go:embed document.md.tmpl
	documentTemplateText string

	critiqueTemplate = template.Must(template.New("critique").Funcs(sprig.FuncMap()).Parse(critiqueTemplateText))
	documentTemplate = template.Must(template.New("document").Funcs(sprig.FuncMap()).Funcs(template.FuncMap{
		"markdown": Markdown,
		"speaker":  Speaker,
	}).Parse(documentTemplateText))

	unsafeFilenameChars = regexp.MustCompile(`[^a-z0-9]+`)
)

// Speaker names who wrote a message.
func Speaker(message session.Message) string {
	if message.Role == session.RoleCoach {
		return "Coach"
	}
	return "You"
}

// Markdown returns the Markdown source of a message. Critiques are laid out
// as plan, tips and feedback sections; everything else is returned verbatim.
func Markdown(message session.Message) string {
	if message.Critique == nil {
		return message.Text
	}
	return Critique(*message.Critique)
}

// Critique lays out a critique payload. A missing plan or empty tips produce
// no section.
func Critique(critique coach.Critique) string {
	var buf bytes.Buffer
	if err := critiqueTemplate.Execute(&buf, critique); err != nil {
		return critique.Critique
	}
	return strings.TrimSpace(buf.String())
}

// Document renders a whole conversation for export.
func Document(conversation coach.Conversation, messages []session.Message) (string, error) {
	var buf bytes.Buffer
	data := struct {
		Conversation coach.Conversation
		Messages     []session.Message
	}{conversation, messages}
	if err := documentTemplate.Execute(&buf, data); err != nil {
		return "", errors.Wrapf(err, "rendering conversation %d", conversation.ID)
	}
	return buf.String(), nil
}

// Filename returns the export file name for a conversation.
func Filename(conversation coach.Conversation) string {
	slug := unsafeFilenameChars.ReplaceAllString(strings.ToLower(conversation.Title), "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > 48 {
		slug = strings.TrimRight(slug[:48], "-")
	}
	if slug == "" {
		return fmt.Sprintf("conversation-%d.md", conversation.ID)
	}
	return fmt.Sprintf("conversation-%d-%s.md", conversation.ID, slug)
}

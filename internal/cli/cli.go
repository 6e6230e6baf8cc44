// Package cli prints line-mode output and reads line-mode input.
package cli

import (
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/buger/goterm"
	"github.com/chzyer/readline"
	"github.com/fatih/color"
)

var (
	userColor      = color.New(color.FgWhite)
	coachColor     = color.New(color.FgGreen)
	titleColor     = color.New(color.FgHiGreen, color.Bold)
	separatorColor = color.New(color.FgHiBlack)
	errorColor     = color.New(color.FgRed)
	infoColor      = color.New(color.FgYellow)
	promptColor    = color.New(color.FgHiGreen)
)

// Width of the terminal, with a fallback when stdout is not one.
func Width() int {
	if width := goterm.Width(); width > 0 {
		return width
	}
	return 80
}

// Separator printed to cli.
func Separator() {
	separatorColor.Println(strings.Repeat("-", Width()))
}

// Title printed to cli.
func Title(text string, args ...any) {
	titleColor.Println(centered(fmt.Sprintf(text, args...), Width()))
}

func centered(text string, width int) string {
	title := "      " + text + "      "
	if len(title) >= width {
		return title
	}
	left := strings.Repeat("-", (width-len(title))/2)
	right := strings.Repeat("-", width-len(title)-len(left))
	return left + title + right
}

// UserInput printed to cli.
func UserInput(text string) {
	userColor.Println(text)
}

// CoachOutput prints an already rendered coach turn.
func CoachOutput(text string) {
	coachColor.Println(text)
}

// ErrorOutput printed to cli.
func ErrorOutput(text string, args ...any) {
	errorColor.Printf(text+"\n", args...)
}

// Info printed to cli.
func Info(text string, args ...any) {
	infoColor.Printf(text+"\n", args...)
}

// PromptUser reads a draft. Enter adds a line; Ctrl+J submits. Ctrl+C and
// Ctrl+D return readline.ErrInterrupt and io.EOF.
func PromptUser(historyFile string) (string, error) {
	submit := false
	config := &readline.Config{
		Prompt:            promptColor.Sprint("> "),
		InterruptPrompt:   "^C",
		HistoryFile:       historyFile,
		HistorySearchFold: true,
		FuncFilterInputRune: func(r rune) (rune, bool) {
			if r == '\x0A' { // Ctrl + J
				submit = true
			}
			return r, true
		},
	}

	rl, err := readline.NewEx(config)
	if err != nil {
		return "", err
	}
	defer rl.Close()
	var lines []string
	for {
		line, err := rl.Readline()
		if err != nil {
			return "", err
		}
		lines = append(lines, line)
		if submit {
			break
		}
		rl.SetPrompt(promptColor.Sprint(". "))
	}
	return strings.Join(lines, "\n"), nil
}

// QueryUser a yes/no question.
func QueryUser(question string) (bool, error) {
	surveyQuestion := &survey.Confirm{
		Message: question,
	}
	confirm := false
	if err := survey.AskOne(surveyQuestion, &confirm); err != nil {
		return false, err
	}
	return confirm, nil
}

// Package file reads drafts from disk or stdin and writes exports.
package file

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// Stdin is the path that selects standard input.
const Stdin = "-"

// InputOpts select where a draft is read from.
type InputOpts struct {
	Files []string
}

// GetOpts registers the input flags on the given command.
func GetOpts(cmd *cobra.Command) *InputOpts {
	opts := &InputOpts{}
	cmd.Flags().StringSliceVarP(&opts.Files, "file", "f", nil, "read the draft from a file ('-' for stdin)")
	return opts
}

// ReadDraft assembles the text to submit. Files named by opts come first, in
// order, followed by args joined with spaces. With neither, the draft is read
// from stdin.
func ReadDraft(opts *InputOpts, args []string, stdin io.Reader) (string, error) {
	var parts []string
	for _, path := range opts.Files {
		content, err := Read(path, stdin)
		if err != nil {
			return "", err
		}
		parts = append(parts, content)
	}
	if len(args) == 1 && args[0] == Stdin {
		args = nil
	}
	if len(args) > 0 {
		parts = append(parts, strings.Join(args, " "))
	}
	if len(parts) == 0 {
		content, err := Read(Stdin, stdin)
		if err != nil {
			return "", err
		}
		parts = append(parts, content)
	}
	return strings.Join(parts, "\n\n"), nil
}

// Read returns the content at path, or of stdin when path is "-".
func Read(path string, stdin io.Reader) (string, error) {
	if path == Stdin {
		bytes, err := io.ReadAll(stdin)
		if err != nil {
			return "", errors.Wrap(err, "reading stdin")
		}
		return string(bytes), nil
	}
	expanded, err := ExpandPath(path)
	if err != nil {
		return "", err
	}
	bytes, err := os.ReadFile(expanded)
	if err != nil {
		return "", errors.Wrapf(err, "reading %s", path)
	}
	return string(bytes), nil
}

// Write writes content to path, creating parent directories.
func Write(path string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "creating directory")
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	return nil
}

// Exists reports whether path exists.
func Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, errors.Wrap(err, "stat")
}

// ExpandPath expands a path to avoid `~`.
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "getting user home dir")
	}
	return filepath.Join(home, strings.TrimPrefix(path[1:], "/")), nil
}

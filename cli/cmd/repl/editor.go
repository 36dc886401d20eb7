package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/ardnew/nia/interp"
	"github.com/ardnew/nia/log"
)

const defaultEditor = "vi"

// editSessionCommand implements [tea.ExecCommand] for the full
// edit-parse-retry loop. It dumps the session's source transcript to a temp
// file, opens the user's editor, and replays the edited text against a fresh
// interpreter. On parse or evaluation error the user is prompted to re-edit;
// declining exits the program.
type editSessionCommand struct {
	source  string
	ctxFunc func() context.Context
	newInt  *interp.Interpreter
	newSrc  string
	logger  log.Logger
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
}

// SetStdin sets the stdin reader for the command.
func (c *editSessionCommand) SetStdin(r io.Reader) { c.stdin = r }

// SetStdout sets the stdout writer for the command.
func (c *editSessionCommand) SetStdout(w io.Writer) { c.stdout = w }

// SetStderr sets the stderr writer for the command.
func (c *editSessionCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run executes the edit-parse-retry loop. It opens the editor on the current
// session transcript, replays the result against a fresh interpreter, and
// prompts on error. If the user declines to re-edit, it returns
// [ErrEditDeclined].
func (c *editSessionCommand) Run() error {
	content := c.source

	f, err := os.CreateTemp(os.TempDir(), "nia-repl-*.nia")
	if err != nil {
		return err
	}

	tmpPath := f.Name()

	defer os.Remove(tmpPath)

	if err := f.Chmod(0o600); err != nil {
		f.Close()

		return err
	}

	f.Close()

	for {
		if err := os.WriteFile(tmpPath, []byte(content), 0o600); err != nil {
			return err
		}

		r, err := runEditor(c.ctxFunc(), c.stdin, c.stdout, c.stderr, tmpPath)
		if err != nil {
			return err
		}

		br := bufio.NewReader(r)
		if _, err := br.Peek(1); err != nil {
			return nil
		}

		data, err := io.ReadAll(br)
		if err != nil {
			return err
		}

		edited := string(data)

		replay := interp.New()
		if _, evalErr := replay.Execute(edited); evalErr != nil {
			c.logger.TraceContext(
				c.ctxFunc(),
				"editor replay attempt",
				slog.Int("content_length", len(edited)),
				slog.Bool("success", false),
			)

			fmt.Fprintf(c.stderr, "\nError: %s\n", evalErr)
			fmt.Fprintf(c.stdout, "Re-edit? [Y/n] ")

			scanner := bufio.NewScanner(c.stdin)
			if !scanner.Scan() {
				return ErrEditDeclined
			}

			response := strings.TrimSpace(strings.ToLower(scanner.Text()))
			if response == "n" || response == "no" {
				return ErrEditDeclined
			}

			data, readErr := os.ReadFile(tmpPath)
			if readErr != nil {
				return readErr
			}

			content = string(data)

			continue
		}

		c.logger.TraceContext(
			c.ctxFunc(),
			"editor replay attempt",
			slog.Int("content_length", len(edited)),
			slog.Bool("success", true),
		)

		c.newInt = replay
		c.newSrc = edited

		return nil
	}
}

// runEditor launches the user's editor on the given file path and returns a
// reader over the edited file content.
func runEditor(
	ctx context.Context,
	stdin io.Reader,
	stdout io.Writer,
	stderr io.Writer,
	path string,
) (io.Reader, error) {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = defaultEditor
	}

	cmd := exec.CommandContext(ctx, editor, path)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	return f, nil
}

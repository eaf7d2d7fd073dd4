package confirm

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"

	"github.com/jftf/jftf-setup/internal/config"
)

// ErrNoAnswer is returned when input ends or the prompt is aborted before a
// valid answer was given.
var ErrNoAnswer = errors.New("no answer given")

// Prompter asks a yes/no question.
type Prompter interface {
	Confirm(ctx context.Context, question string) (bool, error)
}

// LinePrompter reads answers line by line.
type LinePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewLinePrompter creates a prompter reading from in and writing prompts to out.
func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{in: bufio.NewReader(in), out: out}
}

// Confirm implements Prompter.
func (p *LinePrompter) Confirm(ctx context.Context, question string) (bool, error) {
	for {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		fmt.Fprintf(p.out, "%s [y/n]: ", question)

		line, err := p.in.ReadString('\n')
		switch strings.TrimSpace(line) {
		case "y", "Y":
			return true, nil
		case "n", "N":
			return false, nil
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(p.out)
			return false, ErrNoAnswer
		}
		if err != nil {
			return false, fmt.Errorf("failed to read answer: %w", err)
		}
		fmt.Fprintln(p.out, "Please answer y or n.")
	}
}

// FormPrompter renders the question as an interactive confirm form.
type FormPrompter struct {
	in  io.Reader
	out io.Writer
}

// NewFormPrompter creates a form prompter on the given terminal streams.
func NewFormPrompter(in io.Reader, out io.Writer) *FormPrompter {
	return &FormPrompter{in: in, out: out}
}

// Confirm implements Prompter.
func (p *FormPrompter) Confirm(ctx context.Context, question string) (bool, error) {
	var ok bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(question).
				Affirmative("Yes").
				Negative("No").
				Value(&ok),
		),
	).WithInput(p.in).WithOutput(p.out).RunWithContext(ctx)
	if errors.Is(err, huh.ErrUserAborted) {
		return false, ErrNoAnswer
	}
	if err != nil {
		return false, err
	}
	return ok, nil
}

type fdReader interface {
	io.Reader
	Fd() uintptr
}

var isTerminal = func(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// New returns the prompter for style. The form is only used when in is a
// terminal; otherwise answers are read line by line.
func New(style config.PromptStyle, in io.Reader, out io.Writer) Prompter {
	if style == config.PromptForm {
		if f, ok := in.(fdReader); ok && isTerminal(f.Fd()) {
			return NewFormPrompter(in, out)
		}
	}
	return NewLinePrompter(in, out)
}

package ui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
)

var (
	// ErrInterrupted is returned when the operator aborts a prompt with
	// Ctrl+C while the terminal is in raw mode.
	ErrInterrupted = errors.New("interrupted by operator")
	// ErrNoAnswer is returned when a prompt cannot be answered, e.g. the
	// input stream ended or no default exists.
	ErrNoAnswer = errors.New("no answer available")
	// ErrInvalidChoice is returned by ResolveChoice for unusable input.
	ErrInvalidChoice = errors.New("invalid selection")
)

// Prompter is how the session asks the operator for decisions.
type Prompter interface {
	// Choose returns the index of the selected option. With byName the
	// operator may also type an option verbatim.
	Choose(ctx context.Context, title string, options []string, byName bool) (int, error)
	Confirm(ctx context.Context, question string, def bool) (bool, error)
	Path(ctx context.Context, question string) (string, error)
	// AwaitStop blocks until the operator asks to stop (nil) or ctx ends
	// (ctx.Err()).
	AwaitStop(ctx context.Context, message string) error
}

// ResolveChoice turns operator input into an option index. Input is a
// 1-based ordinal or, when byName is set, an exact option.
func ResolveChoice(input string, options []string, byName bool) (int, error) {
	input = strings.TrimSpace(input)
	if n, err := strconv.Atoi(input); err == nil {
		if n >= 1 && n <= len(options) {
			return n - 1, nil
		}
		return -1, fmt.Errorf("%w: choose a number between 1 and %d", ErrInvalidChoice, len(options))
	}
	if byName {
		for i, opt := range options {
			if opt == input {
				return i, nil
			}
		}
	}
	return -1, fmt.Errorf("%w: %q", ErrInvalidChoice, input)
}

// AutoPrompter answers every prompt from configuration without blocking on
// the operator.
type AutoPrompter struct {
	Wordlist string
}

func (p *AutoPrompter) Choose(ctx context.Context, title string, options []string, byName bool) (int, error) {
	if len(options) == 0 {
		return -1, ErrNoAnswer
	}
	return 0, nil
}

func (p *AutoPrompter) Confirm(ctx context.Context, question string, def bool) (bool, error) {
	return def, nil
}

func (p *AutoPrompter) Path(ctx context.Context, question string) (string, error) {
	if p.Wordlist == "" {
		return "", ErrNoAnswer
	}
	return p.Wordlist, nil
}

// AwaitStop has nobody to wait for, so it lasts until ctx ends.
func (p *AutoPrompter) AwaitStop(ctx context.Context, message string) error {
	<-ctx.Done()
	return ctx.Err()
}

// LinePrompter reads plain lines, for interactive runs without a terminal.
type LinePrompter struct {
	in  io.Reader
	out io.Writer

	once  sync.Once
	lines chan string
}

func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{in: in, out: out}
}

// readLine waits for the next input line. A single reader goroutine owns
// the input so a prompt abandoned on cancellation cannot steal a later line.
func (p *LinePrompter) readLine(ctx context.Context) (string, error) {
	p.once.Do(func() {
		p.lines = make(chan string)
		go func() {
			defer close(p.lines)
			scanner := bufio.NewScanner(p.in)
			for scanner.Scan() {
				p.lines <- scanner.Text()
			}
		}()
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-p.lines:
		if !ok {
			return "", ErrNoAnswer
		}
		return strings.TrimSpace(line), nil
	}
}

func (p *LinePrompter) Choose(ctx context.Context, title string, options []string, byName bool) (int, error) {
	if len(options) == 0 {
		return -1, ErrNoAnswer
	}

	fmt.Fprintln(p.out, title)
	for i, opt := range options {
		fmt.Fprintf(p.out, "  %d. %s\n", i+1, opt)
	}

	ask := "Enter number: "
	if byName {
		ask = "Enter number or name: "
	}
	for {
		fmt.Fprint(p.out, ask)
		line, err := p.readLine(ctx)
		if err != nil {
			return -1, err
		}
		idx, err := ResolveChoice(line, options, byName)
		if err == nil {
			return idx, nil
		}
		fmt.Fprintln(p.out, err)
	}
}

func (p *LinePrompter) Confirm(ctx context.Context, question string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	fmt.Fprintf(p.out, "%s (%s)? ", question, hint)

	line, err := p.readLine(ctx)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(line) {
	case "y", "yes":
		return true, nil
	case "n", "no":
		return false, nil
	default:
		return def, nil
	}
}

func (p *LinePrompter) Path(ctx context.Context, question string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", question)
	return p.readLine(ctx)
}

func (p *LinePrompter) AwaitStop(ctx context.Context, message string) error {
	fmt.Fprintln(p.out, message)
	_, err := p.readLine(ctx)
	if errors.Is(err, ErrNoAnswer) {
		// Input closed: nobody can press Enter, fall back to the deadline.
		<-ctx.Done()
		return ctx.Err()
	}
	return err
}

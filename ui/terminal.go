package ui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// TerminalPrompter renders prompts with Bubble Tea. It needs a real
// terminal on both ends.
type TerminalPrompter struct {
	in  io.Reader
	out io.Writer
}

func NewTerminalPrompter(in io.Reader, out io.Writer) *TerminalPrompter {
	return &TerminalPrompter{in: in, out: out}
}

func (p *TerminalPrompter) run(ctx context.Context, m tea.Model) (tea.Model, error) {
	prog := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithInput(p.in),
		tea.WithOutput(p.out),
		// Signals are owned by the session; Ctrl+C arrives as a key.
		tea.WithoutSignalHandler(),
	)
	final, err := prog.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return final, ctxErr
	}
	if err != nil {
		return final, err
	}
	if r, ok := final.(interface{ aborted() bool }); ok && r.aborted() {
		return final, ErrInterrupted
	}
	return final, nil
}

func (p *TerminalPrompter) Choose(ctx context.Context, title string, options []string, byName bool) (int, error) {
	if len(options) == 0 {
		return -1, ErrNoAnswer
	}
	final, err := p.run(ctx, &chooseModel{title: title, options: options, byName: byName, chosen: -1})
	if err != nil {
		return -1, err
	}
	return final.(*chooseModel).chosen, nil
}

func (p *TerminalPrompter) Confirm(ctx context.Context, question string, def bool) (bool, error) {
	final, err := p.run(ctx, &confirmModel{question: question, answer: def})
	if err != nil {
		return false, err
	}
	return final.(*confirmModel).answer, nil
}

func (p *TerminalPrompter) Path(ctx context.Context, question string) (string, error) {
	ti := textinput.New()
	ti.Placeholder = "/usr/share/wordlists/rockyou.txt"
	ti.Prompt = "> "
	ti.Focus()

	final, err := p.run(ctx, &pathModel{question: question, input: ti})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(final.(*pathModel).input.Value()), nil
}

func (p *TerminalPrompter) AwaitStop(ctx context.Context, message string) error {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	_, err := p.run(ctx, &waitModel{message: message, spinner: s})
	return err
}

// chooseModel is a cursor list that also accepts a typed ordinal or name.
type chooseModel struct {
	title   string
	options []string
	byName  bool
	cursor  int
	typed   string
	err     error
	chosen  int
	quit    bool
}

func (m *chooseModel) Init() tea.Cmd { return nil }

func (m *chooseModel) aborted() bool { return m.quit }

func (m *chooseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.Type {
	case tea.KeyCtrlC:
		m.quit = true
		return m, tea.Quit
	case tea.KeyUp:
		if m.cursor > 0 {
			m.cursor--
		}
	case tea.KeyDown:
		if m.cursor < len(m.options)-1 {
			m.cursor++
		}
	case tea.KeyBackspace:
		if m.typed != "" {
			m.typed = m.typed[:len(m.typed)-1]
		}
	case tea.KeyEnter:
		if m.typed == "" {
			m.chosen = m.cursor
			return m, tea.Quit
		}
		idx, err := ResolveChoice(m.typed, m.options, m.byName)
		if err != nil {
			m.err = err
			m.typed = ""
			return m, nil
		}
		m.chosen = idx
		return m, tea.Quit
	case tea.KeyRunes, tea.KeySpace:
		m.err = nil
		m.typed += string(key.Runes)
	}
	return m, nil
}

func (m *chooseModel) View() string {
	if m.chosen >= 0 {
		return fmt.Sprintf("%s %s\n", titleStyle.Render(m.title), m.options[m.chosen])
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(m.title) + "\n")
	for i, opt := range m.options {
		line := fmt.Sprintf("  %2d. %s", i+1, opt)
		if i == m.cursor {
			line = selectedRowStyle.Render(line)
		} else {
			line = normalRowStyle.Render(line)
		}
		sb.WriteString(line + "\n")
	}
	if m.typed != "" {
		sb.WriteString("> " + m.typed + "\n")
	}
	if m.err != nil {
		sb.WriteString(errorStyle.Render(m.err.Error()) + "\n")
	}
	sb.WriteString(help([2]string{"↑/↓", "move"}, [2]string{"1-9", "type number"}, [2]string{"Enter", "select"}, [2]string{"Ctrl+C", "abort"}) + "\n")
	return sb.String()
}

type confirmModel struct {
	question string
	answer   bool
	done     bool
	quit     bool
}

func (m *confirmModel) Init() tea.Cmd { return nil }

func (m *confirmModel) aborted() bool { return m.quit }

func (m *confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "ctrl+c":
		m.quit = true
		return m, tea.Quit
	case "y", "Y":
		m.answer, m.done = true, true
		return m, tea.Quit
	case "n", "N":
		m.answer, m.done = false, true
		return m, tea.Quit
	case "enter":
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m *confirmModel) View() string {
	hint := "y/N"
	if m.answer {
		hint = "Y/n"
	}
	if m.done {
		ans := "no"
		if m.answer {
			ans = "yes"
		}
		return fmt.Sprintf("%s %s\n", titleStyle.Render(m.question+"?"), ans)
	}
	return fmt.Sprintf("%s (%s) ", titleStyle.Render(m.question+"?"), hint)
}

type pathModel struct {
	question string
	input    textinput.Model
	done     bool
	quit     bool
}

func (m *pathModel) Init() tea.Cmd { return textinput.Blink }

func (m *pathModel) aborted() bool { return m.quit }

func (m *pathModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyCtrlC:
			m.quit = true
			return m, tea.Quit
		case tea.KeyEnter:
			m.done = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *pathModel) View() string {
	if m.done {
		return fmt.Sprintf("%s %s\n", titleStyle.Render(m.question+":"), m.input.Value())
	}
	return titleStyle.Render(m.question+":") + "\n" + m.input.View() + "\n"
}

type waitModel struct {
	message string
	spinner spinner.Model
	done    bool
	quit    bool
}

func (m *waitModel) Init() tea.Cmd { return m.spinner.Tick }

func (m *waitModel) aborted() bool { return m.quit }

func (m *waitModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			m.quit = true
			return m, tea.Quit
		case tea.KeyEnter:
			m.done = true
			return m, tea.Quit
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *waitModel) View() string {
	if m.done {
		return ""
	}
	return m.spinner.View() + " " + m.message + "  " + help([2]string{"Enter", "stop"}) + "\n"
}

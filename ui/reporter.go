package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Kind classifies a status event.
type Kind string

const (
	KindInfo    Kind = "info"
	KindSuccess Kind = "success"
	KindWarning Kind = "warning"
	KindError   Kind = "error"
)

// Line prefixes that let a supervising process pick machine-readable lines
// out of everything else on stdout.
const (
	StatusPrefix = "STATUS_JSON:"
	FinalPrefix  = "FINAL_RESULT:"
)

// Event is the structured form of a status line.
type Event struct {
	Kind      Kind    `json:"type"`
	Message   string  `json:"message"`
	Timestamp float64 `json:"timestamp"`
	Data      any     `json:"data"`
}

// Reporter writes status events. Every event yields a colorized human line;
// in integration mode the structured line is written first, and the pair is
// emitted with a single write so nothing can land between them.
type Reporter struct {
	mu          sync.Mutex
	w           io.Writer
	integration bool
	renderer    *lipgloss.Renderer
	now         func() time.Time
}

func NewReporter(w io.Writer, integration bool) *Reporter {
	return &Reporter{
		w:           w,
		integration: integration,
		renderer:    lipgloss.NewRenderer(w),
		now:         time.Now,
	}
}

// Integration reports whether structured lines are emitted.
func (r *Reporter) Integration() bool {
	return r.integration
}

// Renderer returns the lipgloss renderer bound to the output.
func (r *Reporter) Renderer() *lipgloss.Renderer {
	return r.renderer
}

// Report emits one status event. data may be nil.
func (r *Reporter) Report(kind Kind, message string, data any) {
	if data == nil {
		data = map[string]any{}
	}

	var sb strings.Builder
	if r.integration {
		ev := Event{
			Kind:      kind,
			Message:   message,
			Timestamp: float64(r.now().UnixNano()) / 1e9,
			Data:      data,
		}
		b, err := json.Marshal(ev)
		if err != nil {
			// Unencodable payloads still produce a parseable line.
			ev.Data = map[string]any{"encode_error": err.Error()}
			b, _ = json.Marshal(ev)
		}
		sb.WriteString(StatusPrefix)
		sb.Write(b)
		sb.WriteByte('\n')
	}

	style := r.renderer.NewStyle().Foreground(kindColor(kind))
	sb.WriteString(style.Render(fmt.Sprintf("[%s] %s", strings.ToUpper(string(kind)), message)))
	sb.WriteByte('\n')

	r.write(sb.String())
}

func (r *Reporter) Info(format string, args ...any) {
	r.Report(KindInfo, fmt.Sprintf(format, args...), nil)
}

func (r *Reporter) Success(format string, args ...any) {
	r.Report(KindSuccess, fmt.Sprintf(format, args...), nil)
}

func (r *Reporter) Warn(format string, args ...any) {
	r.Report(KindWarning, fmt.Sprintf(format, args...), nil)
}

func (r *Reporter) Error(format string, args ...any) {
	r.Report(KindError, fmt.Sprintf(format, args...), nil)
}

// Final emits the closing summary line. It is only written in integration
// mode; it returns an error if v cannot be encoded.
func (r *Reporter) Final(v any) error {
	if !r.integration {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode final result: %w", err)
	}
	r.write(FinalPrefix + string(b) + "\n")
	return nil
}

// Print writes free-form text (tables, banners) under the same lock.
func (r *Reporter) Print(s string) {
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	r.write(s)
}

func (r *Reporter) write(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = io.WriteString(r.w, s)
}

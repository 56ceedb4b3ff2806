package mapping

import (
	"errors"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrCancelled is returned by [RunForm] when the user backs out.
var ErrCancelled = errors.New("mapping cancelled")

var (
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("99"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("76"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	boldStyle   = lipgloss.NewStyle().Bold(true)
)

const unmappedLabel = "-- não mapear --"

// Form is a bubbletea model editing a [Mapper] one row at a time.
//
// up/down move between rows, left/right cycle the row's target skipping
// options held by other rows, backspace unmaps, enter confirms and esc
// cancels.
type Form struct {
	mapper *Mapper
	cursor int

	notice    string
	confirmed []ColumnMapping
	done      bool
	cancelled bool
}

// NewForm creates a form over m.
func NewForm(m *Mapper) *Form {
	return &Form{mapper: m}
}

// Cursor returns the focused row.
func (f *Form) Cursor() int { return f.cursor }

// Result returns the confirmed mapping and whether the form was cancelled.
func (f *Form) Result() ([]ColumnMapping, bool) {
	return f.confirmed, f.cancelled
}

func (f *Form) Init() tea.Cmd { return nil }

func (f *Form) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return f, nil
	}

	rows := len(f.mapper.headers)
	f.notice = ""

	switch key.String() {
	case "ctrl+c", "esc", "q":
		f.cancelled = true
		f.done = true
		f.mapper.Cancel()
		return f, tea.Quit
	case "up", "k", "shift+tab":
		if rows > 0 {
			f.cursor = (f.cursor - 1 + rows) % rows
		}
	case "down", "j", "tab":
		if rows > 0 {
			f.cursor = (f.cursor + 1) % rows
		}
	case "right", "l", " ":
		f.cycle(1)
	case "left", "h":
		f.cycle(-1)
	case "backspace", "delete", "x":
		_ = f.mapper.Set(f.cursor, "")
	case "enter":
		mapped, err := f.mapper.Confirm()
		if err != nil {
			f.notice = "Mapeie ao menos uma coluna"
			return f, nil
		}
		f.confirmed = mapped
		f.done = true
		return f, tea.Quit
	}
	return f, nil
}

// cycle moves the focused row to the next selectable target in direction
// step. The unmapped choice is always selectable, so the loop terminates.
func (f *Form) cycle(step int) {
	if len(f.mapper.headers) == 0 {
		return
	}
	choices := append([]string{""}, f.mapper.standard...)
	current := 0
	for i, c := range choices {
		if c == f.mapper.Target(f.cursor) {
			current = i
			break
		}
	}
	for i := 1; i <= len(choices); i++ {
		next := choices[(current+step*i+len(choices)*len(choices))%len(choices)]
		if err := f.mapper.Set(f.cursor, next); err == nil {
			return
		}
	}
}

func (f *Form) View() string {
	if f.done {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(boldStyle.Render("Mapeamento de colunas") + "\n\n")

	width := 0
	for _, h := range f.mapper.headers {
		width = max(width, lipgloss.Width(h))
	}

	for i, h := range f.mapper.headers {
		pointer := "  "
		if i == f.cursor {
			pointer = accentStyle.Render("> ")
		}
		target := f.mapper.Target(i)
		label := mutedStyle.Render(unmappedLabel)
		if target != "" {
			label = accentStyle.Render(target)
		}
		fmt.Fprintf(&sb, "%s%-*s  →  %s\n", pointer, width, h, label)
	}

	mapped := f.mapper.MappedCount()
	sb.WriteString("\n" + mutedStyle.Render(fmt.Sprintf("%d de %d colunas mapeadas", mapped, len(f.mapper.headers))) + "  ")
	if f.mapper.CanConfirm() {
		sb.WriteString(okStyle.Render("Pronto para continuar"))
	} else {
		sb.WriteString(warnStyle.Render("Mapeamento incompleto"))
	}
	sb.WriteString("\n")
	if f.notice != "" {
		sb.WriteString(warnStyle.Render(f.notice) + "\n")
	}
	sb.WriteString(mutedStyle.Render("↑/↓ linha  ←/→ coluna  backspace limpar  enter confirmar  esc cancelar") + "\n")
	return sb.String()
}

// RunForm runs the interactive form on out and returns the confirmed mapping.
func RunForm(m *Mapper, in io.Reader, out io.Writer) ([]ColumnMapping, error) {
	f := NewForm(m)
	opts := []tea.ProgramOption{tea.WithOutput(out)}
	if in != nil {
		opts = append(opts, tea.WithInput(in))
	}
	if _, err := tea.NewProgram(f, opts...).Run(); err != nil {
		return nil, fmt.Errorf("mapping form: %w", err)
	}

	mapped, cancelled := f.Result()
	if cancelled {
		return nil, ErrCancelled
	}
	return mapped, nil
}

// Package output renders wizard state for the terminal with lipgloss.
//
// Every Render* method is pure: it takes a snapshot and returns a string.
// The matching Print* methods write that string to the printer's writer.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/muesli/termenv"

	"csvwizard/internal/upload"
	"csvwizard/internal/wizard"
)

// Display strings.
const (
	ErrorsTitle       = "Erros encontrados no arquivo"
	FileSelected      = "Arquivo selecionado"
	Processing        = "Processando..."
	FileProcessed     = "Arquivo processado com sucesso!"
	NoFileHint        = "Arquivos .csv ou .txt suportados"
	LockedHint        = "Conclua a etapa anterior"
	ReadyBadge        = "Pronto para continuar"
	IncompleteBadge   = "Mapeamento incompleto"
	ConsolidatedTitle = "Dados Consolidados:"
)

// Printer renders with its own lipgloss renderer bound to out.
type Printer struct {
	out io.Writer
	r   *lipgloss.Renderer

	accent  lipgloss.Style
	success lipgloss.Style
	danger  lipgloss.Style
	warn    lipgloss.Style
	muted   lipgloss.Style
	faint   lipgloss.Style
	bold    lipgloss.Style
}

// NewPrinter creates a Printer writing to stdout.
func NewPrinter() *Printer {
	return NewPrinterWithWriter(os.Stdout)
}

// NewPrinterWithWriter creates a Printer writing to w. Color follows the
// terminal capabilities of w.
func NewPrinterWithWriter(w io.Writer) *Printer {
	p := &Printer{out: w, r: lipgloss.NewRenderer(w)}
	p.initStyles()
	return p
}

// DisableColor switches the printer to plain text.
func (p *Printer) DisableColor() {
	p.r.SetColorProfile(termenv.Ascii)
	p.initStyles()
}

func (p *Printer) initStyles() {
	p.accent = p.r.NewStyle().Foreground(lipgloss.Color("99"))
	p.success = p.r.NewStyle().Foreground(lipgloss.Color("76"))
	p.danger = p.r.NewStyle().Foreground(lipgloss.Color("204"))
	p.warn = p.r.NewStyle().Foreground(lipgloss.Color("214"))
	p.muted = p.r.NewStyle().Foreground(lipgloss.Color("243"))
	p.faint = p.r.NewStyle().Foreground(lipgloss.Color("238"))
	p.bold = p.r.NewStyle().Bold(true)
}

// RenderProgress draws the step sequence top to bottom, one line per step
// joined by a connector. The connector below a completed step is drawn in
// the success color.
func (p *Printer) RenderProgress(views []wizard.StepView) string {
	var sb strings.Builder
	for i, v := range views {
		var icon, title, label string
		switch v.Status() {
		case wizard.StatusCompleted:
			icon, title, label = p.success.Render("✓"), p.success.Render(v.Title), p.success.Render("concluído")
		case wizard.StatusCurrent:
			icon, title, label = p.accent.Render("●"), p.accent.Bold(true).Render(v.Title), p.accent.Render("atual")
		default:
			icon, title, label = p.muted.Render("○"), p.muted.Render(v.Title), p.muted.Render("bloqueado")
		}
		fmt.Fprintf(&sb, "%s %d. %s  %s\n", icon, i+1, title, label)
		if v.Description != "" {
			sb.WriteString("  │  " + p.muted.Render(v.Description) + "\n")
		}
		if i < len(views)-1 {
			connector := p.faint.Render("│")
			if v.Completed {
				connector = p.success.Render("│")
			}
			sb.WriteString(connector + "\n")
		}
	}
	return sb.String()
}

// RenderErrors draws the error banner. An empty list renders nothing.
func (p *Printer) RenderErrors(messages []string) string {
	if len(messages) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(p.danger.Bold(true).Render("✗ "+ErrorsTitle) + "\n")
	for _, m := range messages {
		sb.WriteString("  " + p.danger.Render("•") + " " + m + "\n")
	}
	return sb.String()
}

// RenderCard draws one uploader card.
func (p *Printer) RenderCard(c upload.Card) string {
	var sb strings.Builder
	title := p.bold.Render(c.Title)
	if c.Completed {
		title = p.success.Bold(true).Render(c.Title)
	}
	sb.WriteString(title + "\n")
	if c.Description != "" {
		sb.WriteString(p.muted.Render(c.Description) + "\n")
	}

	switch {
	case c.Completed:
		sb.WriteString(p.success.Render("✓ "+FileProcessed) + "\n")
	case c.InFlight:
		sb.WriteString(p.accent.Render(Processing) + "\n")
	case c.FileName != "":
		sb.WriteString(c.FileName + "\n")
		sb.WriteString(p.muted.Render(FileSummary(c.FileSize)) + "\n")
	case c.Disabled:
		sb.WriteString(p.muted.Render(LockedHint) + "\n")
	default:
		sb.WriteString(p.muted.Render(NoFileHint) + "\n")
	}
	return sb.String()
}

// FileSummary formats a file size as "12.3 KB • Arquivo selecionado".
func FileSummary(size int64) string {
	return fmt.Sprintf("%.1f KB • %s", float64(size)/1024, FileSelected)
}

// MappingCount formats the mapper progress line.
func MappingCount(mapped, total int) string {
	return fmt.Sprintf("%d de %d colunas mapeadas", mapped, total)
}

// RenderMappingSummary draws the mapped count and the readiness badge.
func (p *Printer) RenderMappingSummary(mapped, total int) string {
	badge := p.warn.Render(IncompleteBadge)
	if mapped > 0 {
		badge = p.success.Render(ReadyBadge)
	}
	return p.muted.Render(MappingCount(mapped, total)) + "  " + badge + "\n"
}

// RenderStepTable lists the configured steps with their endpoints.
func (p *Printer) RenderStepTable(views []wizard.StepView, urlFor func(string) string) string {
	rows := make([][]string, len(views))
	for i, v := range views {
		rows[i] = []string{fmt.Sprint(i + 1), v.ID, v.Title, urlFor(v.Endpoint), string(v.Status())}
	}

	header := p.accent.Bold(true).Padding(0, 1)
	cell := p.r.NewStyle().Padding(0, 1)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(p.faint).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		}).
		Headers("#", "ID", "Etapa", "Endpoint", "Status").
		Rows(rows...)
	return t.String() + "\n"
}

// RenderConsolidated draws the pretty-printed consolidation result.
func (p *Printer) RenderConsolidated(pretty string) string {
	return p.bold.Render(ConsolidatedTitle) + "\n" + pretty + "\n"
}

// Success formats a one-line success message.
func (p *Printer) Success(format string, a ...any) string {
	return p.success.Render("✓") + " " + fmt.Sprintf(format, a...) + "\n"
}

// Failure formats a one-line failure message.
func (p *Printer) Failure(format string, a ...any) string {
	return p.danger.Render("✗") + " " + fmt.Sprintf(format, a...) + "\n"
}

// Info formats a one-line informational message.
func (p *Printer) Info(format string, a ...any) string {
	return p.accent.Render("●") + " " + fmt.Sprintf(format, a...) + "\n"
}

// Print writes s unchanged.
func (p *Printer) Print(s string) {
	fmt.Fprint(p.out, s)
}

// PrintProgress writes [Printer.RenderProgress].
func (p *Printer) PrintProgress(views []wizard.StepView) {
	p.Print(p.RenderProgress(views))
}

// PrintErrors writes [Printer.RenderErrors].
func (p *Printer) PrintErrors(messages []string) {
	p.Print(p.RenderErrors(messages))
}

// PrintCard writes [Printer.RenderCard].
func (p *Printer) PrintCard(c upload.Card) {
	p.Print(p.RenderCard(c))
}

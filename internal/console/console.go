// Package console renders the tagged, coloured messages the interactive
// helpers print. Colour is dropped automatically when the writer is not a
// terminal.
package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Semantic colours
var (
	Destructive = lipgloss.Color("#e53935")
	Success     = lipgloss.Color("#8BC34A")
	Warning     = lipgloss.Color("#FFC107")
	Info        = lipgloss.Color("#2196F3")
	Neutral     = lipgloss.Color("#f2f2f2")
	Debug       = lipgloss.Color("#4db6ac")
	Banner      = lipgloss.Color("#101F38")
)

// Width of separators and the welcome banner.
const Width = 70

// Styles holds one style per message tag.
type Styles struct {
	Info    lipgloss.Style
	Status  lipgloss.Style
	Notice  lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Select  lipgloss.Style
	Menu    lipgloss.Style
	Debug   lipgloss.Style
	Banner  lipgloss.Style
	Accent  lipgloss.Style
}

// NewStyles builds the tag styles against a renderer.
func NewStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		Info:    r.NewStyle().Foreground(Neutral),
		Status:  r.NewStyle().Foreground(Success),
		Notice:  r.NewStyle().Foreground(Info),
		Warning: r.NewStyle().Foreground(Warning),
		Error:   r.NewStyle().Foreground(Destructive).Bold(true),
		Select:  r.NewStyle().Foreground(Success),
		Menu:    r.NewStyle().Foreground(Neutral),
		Debug:   r.NewStyle().Foreground(Debug),
		Banner: r.NewStyle().
			Background(Banner).
			Foreground(lipgloss.Color("#ffffff")).
			Bold(true).
			Width(Width).
			Align(lipgloss.Center),
		Accent: r.NewStyle().Foreground(Success).Bold(true),
	}
}

// Printer writes tagged messages to one writer.
type Printer struct {
	out    io.Writer
	styles Styles
}

// New creates a Printer whose colour profile follows w.
func New(w io.Writer) *Printer {
	return &Printer{out: w, styles: NewStyles(lipgloss.NewRenderer(w))}
}

// Writer returns the underlying writer.
func (p *Printer) Writer() io.Writer { return p.out }

func (p *Printer) tagged(style lipgloss.Style, tag, format string, args ...interface{}) {
	fmt.Fprintf(p.out, "%s %s\n", style.Render("["+tag+"]"), fmt.Sprintf(format, args...))
}

func (p *Printer) Info(format string, args ...interface{}) {
	p.tagged(p.styles.Info, "Info", format, args...)
}

func (p *Printer) Status(format string, args ...interface{}) {
	p.tagged(p.styles.Status, "Status", format, args...)
}

func (p *Printer) Notice(format string, args ...interface{}) {
	p.tagged(p.styles.Notice, "Notice", format, args...)
}

func (p *Printer) Warning(format string, args ...interface{}) {
	p.tagged(p.styles.Warning, "Warning", format, args...)
}

func (p *Printer) Error(format string, args ...interface{}) {
	p.tagged(p.styles.Error, "Error", format, args...)
}

func (p *Printer) Menu(format string, args ...interface{}) {
	p.tagged(p.styles.Menu, "Option", format, args...)
}

func (p *Printer) Debug(format string, args ...interface{}) {
	p.tagged(p.styles.Debug, "Debug", format, args...)
}

// Select prints a selection prompt without a trailing newline, so the
// answer is typed on the same line.
func (p *Printer) Select(format string, args ...interface{}) {
	fmt.Fprintf(p.out, "%s %s", p.styles.Select.Render("[Select]"), fmt.Sprintf(format, args...))
}

// Separator prints a full-width rule of ch.
func (p *Printer) Separator(ch string) {
	fmt.Fprintln(p.out, strings.Repeat(ch, Width))
}

// Blank prints an empty line.
func (p *Printer) Blank() {
	fmt.Fprintln(p.out)
}

// Welcome prints the banner shown when an interactive helper starts.
func (p *Printer) Welcome(title string) {
	p.Blank()
	fmt.Fprintln(p.out, p.styles.Banner.Render(""))
	fmt.Fprintln(p.out, p.styles.Banner.Render("Pandas Dev Team Presents"))
	fmt.Fprintln(p.out, p.styles.Banner.Render("pandaskit"))
	fmt.Fprintln(p.out, p.styles.Banner.Render(""))
	p.Blank()
	if title != "" {
		p.Info("You are running: %s", title)
	}
	p.Info("Keep the src working tree clean before running this helper,")
	p.Info("so an unexpected result can be reset with git.")
}

// Farewell prints the closing frame of a finished helper.
func (p *Printer) Farewell(title string) {
	p.Blank()
	p.Separator("=")
	p.Blank()
	fmt.Fprintln(p.out, lipgloss.PlaceHorizontal(Width, lipgloss.Center, p.styles.Accent.Render(title+" has finished")))
	p.Blank()
	p.Separator("=")
}

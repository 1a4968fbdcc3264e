// Package ui - Terminal user interface
// CLI output with tables, colors and a quote summary.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"
)

// Colors for terminal output
const (
	Reset   = "\033[0m"
	Bold    = "\033[1m"
	Dim     = "\033[2m"
	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
)

// Writer is the UI output destination
type Writer struct {
	out       io.Writer
	noColor   bool
	verbosity int
}

// NewWriter creates a UI writer
func NewWriter(out io.Writer, noColor bool) *Writer {
	if out == nil {
		out = os.Stdout
	}
	return &Writer{
		out:       out,
		noColor:   noColor,
		verbosity: 1,
	}
}

// SetVerbosity sets output verbosity (0=quiet, 1=normal, 2=verbose)
func (w *Writer) SetVerbosity(level int) {
	w.verbosity = level
}

// Color applies color if enabled
func (w *Writer) Color(c, text string) string {
	if w.noColor {
		return text
	}
	return c + text + Reset
}

// Println writes a line with newline
func (w *Writer) Println(format string, args ...interface{}) {
	fmt.Fprintf(w.out, format+"\n", args...)
}

// Header prints a section header
func (w *Writer) Header(title string) {
	w.Println("")
	w.Println("%s", w.Color(Bold+Cyan, "━━━ "+title+" ━━━"))
	w.Println("")
}

// SubHeader prints a subsection header
func (w *Writer) SubHeader(title string) {
	w.Println("%s", w.Color(Bold, "▸ "+title))
}

// Success prints a success message
func (w *Writer) Success(format string, args ...interface{}) {
	w.Println("%s%s", w.Color(Green, "✓ "), fmt.Sprintf(format, args...))
}

// Warning prints a warning
func (w *Writer) Warning(format string, args ...interface{}) {
	w.Println("%s%s", w.Color(Yellow, "⚠ "), fmt.Sprintf(format, args...))
}

// Error prints an error
func (w *Writer) Error(format string, args ...interface{}) {
	w.Println("%s%s", w.Color(Red, "✗ "), fmt.Sprintf(format, args...))
}

// Info prints an info message
func (w *Writer) Info(format string, args ...interface{}) {
	if w.verbosity < 1 {
		return
	}
	w.Println("%s%s", w.Color(Blue, "ℹ "), fmt.Sprintf(format, args...))
}

// Debug prints a debug message
func (w *Writer) Debug(format string, args ...interface{}) {
	if w.verbosity < 2 {
		return
	}
	w.Println("%s", w.Color(Dim, "  "+fmt.Sprintf(format, args...)))
}

// Table renders a table
type Table struct {
	w       *Writer
	headers []string
	rows    [][]string
	widths  []int
}

// NewTable creates a table
func (w *Writer) NewTable(headers ...string) *Table {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	return &Table{
		w:       w,
		headers: headers,
		rows:    [][]string{},
		widths:  widths,
	}
}

// AddRow adds a row to the table
func (t *Table) AddRow(cells ...string) {
	// Pad or truncate cells to match header count
	row := make([]string, len(t.headers))
	for i := range row {
		if i < len(cells) {
			row[i] = cells[i]
		}
		if n := utf8.RuneCountInString(row[i]); n > t.widths[i] {
			t.widths[i] = n
		}
	}
	t.rows = append(t.rows, row)
}

// Len returns the number of rows
func (t *Table) Len() int { return len(t.rows) }

func (t *Table) line(cells []string) string {
	var b strings.Builder
	for i, cell := range cells {
		if i > 0 {
			b.WriteString(" │ ")
		}
		b.WriteString(cell)
		if i < len(cells)-1 {
			b.WriteString(strings.Repeat(" ", t.widths[i]-utf8.RuneCountInString(cell)))
		}
	}
	return b.String()
}

// Render prints the table
func (t *Table) Render() {
	t.w.Println("%s", t.w.Color(Bold, t.line(t.headers)))

	sep := make([]string, len(t.widths))
	for i, w := range t.widths {
		sep[i] = strings.Repeat("─", w)
	}
	t.w.Println("%s", strings.Join(sep, "─┼─"))

	for _, row := range t.rows {
		t.w.Println("%s", t.line(row))
	}
}

// QuoteSummary renders the headline numbers of a pricing run
type QuoteSummary struct {
	w         *Writer
	RunID     string
	Indicator string
	BasePrice string
	Quoted    int
	Changed   int
	Skipped   int
}

// NewQuoteSummary creates a quote summary
func (w *Writer) NewQuoteSummary() *QuoteSummary {
	return &QuoteSummary{w: w}
}

// Render prints the quote summary
func (s *QuoteSummary) Render() {
	s.w.Header("PPP Price Plan")

	s.w.Println("%s", s.w.Color(Bold, "╭─────────────────────────────────────╮"))
	s.w.Println("%s%s%s", s.w.Color(Bold, "│"), s.w.Color(Green, fmt.Sprintf("  Base price: %-23s", s.BasePrice)), s.w.Color(Bold, "│"))
	s.w.Println("%s%s%s", s.w.Color(Bold, "│"), s.w.Color(Dim, fmt.Sprintf("  Indicator:  %-23s", s.Indicator)), s.w.Color(Bold, "│"))
	s.w.Println("%s", s.w.Color(Bold, "╰─────────────────────────────────────╯"))
	s.w.Println("")

	s.w.Println("%s", s.w.Color(Dim, fmt.Sprintf("  Territories quoted: %d", s.Quoted)))
	s.w.Println("%s", s.w.Color(Dim, fmt.Sprintf("  Price changes:      %d", s.Changed)))
	if s.RunID != "" {
		s.w.Debug("run %s", s.RunID)
	}
	if s.Skipped > 0 {
		s.w.Warning("%d territories skipped", s.Skipped)
	}
}

// PriceChange is one territory whose live price would change
type PriceChange struct {
	Territory  string
	OldPrice   string
	NewPrice   string
	IsIncrease bool
}

// PriceChanges shows live vs proposed prices
type PriceChanges struct {
	w     *Writer
	Items []PriceChange
}

// NewPriceChanges creates a change view
func (w *Writer) NewPriceChanges() *PriceChanges {
	return &PriceChanges{w: w}
}

// Render prints the changes
func (c *PriceChanges) Render() {
	if len(c.Items) == 0 {
		return
	}
	c.w.Header("Price Changes")
	for _, item := range c.Items {
		arrow := c.w.Color(Yellow, "→")
		price := c.w.Color(Green, item.NewPrice)
		if item.IsIncrease {
			price = c.w.Color(Red, item.NewPrice)
		}
		c.w.Println("  %s: %s %s %s", item.Territory, item.OldPrice, arrow, price)
	}
}

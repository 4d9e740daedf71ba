package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/gookit/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// printer writes command output, colouring it when stdout is a terminal.
type printer struct {
	out   io.Writer
	color bool
}

func newPrinter(cmd *cobra.Command) *printer {
	out := cmd.OutOrStdout()
	return &printer{out: out, color: !noColor && isTerminal(out)}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (p *printer) paint(c color.Color, format string, args ...interface{}) {
	s := fmt.Sprintf(format, args...)
	if p.color {
		s = c.Sprint(s)
	}
	fmt.Fprintln(p.out, s)
}

// Header prints a section title.
func (p *printer) Header(format string, args ...interface{}) {
	p.paint(color.FgBlue, format, args...)
}

// Success reports something created or written.
func (p *printer) Success(format string, args ...interface{}) {
	p.paint(color.FgGreen, format, args...)
}

// Danger reports something removed or overwritten.
func (p *printer) Danger(format string, args ...interface{}) {
	p.paint(color.FgRed, format, args...)
}

// Line prints plain text.
func (p *printer) Line(format string, args ...interface{}) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

// JSON prints v as indented JSON.
func (p *printer) JSON(v interface{}) error {
	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

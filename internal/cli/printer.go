package cli

import (
	"fmt"

	"github.com/muesli/termenv"

	"github.com/aretw0/bine/pkg/domain"
)

// Printer renders the event trace of a collection to stdout.
type Printer struct {
	profile termenv.Profile
}

// NewPrinter creates a Printer. noColor forces plain ASCII output.
func NewPrinter(noColor bool) *Printer {
	p := termenv.ColorProfile()
	if noColor {
		p = termenv.Ascii
	}
	return &Printer{profile: p}
}

// Change prints one change event, one line per primitive edit.
func (p *Printer) Change(c domain.Change[string]) {
	if c.Kind == domain.ChangeComposite {
		header := termenv.String(fmt.Sprintf("composite (%d edits)", len(c.Edits))).
			Foreground(p.profile.Color("6"))
		fmt.Println(header)
	}
	for _, edit := range c.Flatten() {
		switch edit.Kind {
		case domain.ChangeInsert:
			line := termenv.String(fmt.Sprintf("  + %q @ %d", edit.Value, edit.Index)).
				Foreground(p.profile.Color("2"))
			fmt.Println(line)
		case domain.ChangeRemove:
			line := termenv.String(fmt.Sprintf("  - %q @ %d", edit.Value, edit.Index)).
				Foreground(p.profile.Color("1"))
			fmt.Println(line)
		}
	}
}

// Snapshot prints the resulting state, dimmed.
func (p *Printer) Snapshot(s []string) {
	line := termenv.String(fmt.Sprintf("  = %v", s)).Faint()
	fmt.Println(line)
}

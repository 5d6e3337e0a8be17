// Package prompt implements the interactive gates in front of the browser
// automation: a yes/no confirmation before a fill starts, and optional
// press-Enter pacing checkpoints between form steps.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

type Prompter struct {
	in  *bufio.Reader
	out io.Writer

	// PaceEnabled gates the PressEnter checkpoints; confirmation prompts
	// always run.
	PaceEnabled bool
}

func New(in io.Reader, out io.Writer, paceEnabled bool) *Prompter {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	return &Prompter{in: bufio.NewReader(in), out: out, PaceEnabled: paceEnabled}
}

// Confirm asks a yes/no question; an empty answer means yes.
func (p *Prompter) Confirm(message string) bool {
	fmt.Fprintf(p.out, "%s [Y/n] ", message)
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "" || answer == "y" || answer == "yes"
}

// PressEnter blocks until the operator hits Enter. A no-op when pacing is
// disabled.
func (p *Prompter) PressEnter(message string) {
	if !p.PaceEnabled {
		return
	}
	fmt.Fprintf(p.out, "\n  %s\nPress Enter to continue ", message)
	_, _ = p.in.ReadString('\n')
}

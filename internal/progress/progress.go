// Package progress renders the (phase, current, total) events the
// installation pipeline and compactor emit to a terminal: a single
// updating line when stdout is a tty, and plain log lines otherwise so
// output stays readable when redirected to a file or CI log.
package progress

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/ducalex/odroid-go-firmware/internal/core"
)

// Reporter drives a core.ProgressFunc against an output writer.
type Reporter struct {
	w     io.Writer
	tty   bool
	phase core.Phase
	wrote bool
}

// New returns a Reporter writing to w. If w is a terminal, progress
// overwrites a single line with '\r'; otherwise each update is a plain
// log-style line.
func New(w io.Writer) *Reporter {
	tty := false
	if f, ok := w.(*os.File); ok {
		tty = isatty.IsTerminal(f.Fd())
	}
	return &Reporter{w: w, tty: tty}
}

// Func returns the core.ProgressFunc this Reporter drives.
func (r *Reporter) Func() core.ProgressFunc {
	return r.report
}

func (r *Reporter) report(phase core.Phase, current, total int64) {
	if phase != r.phase {
		if r.wrote && r.tty {
			fmt.Fprintln(r.w)
		}
		r.phase = phase
		r.wrote = false
	}

	line := formatLine(phase, current, total)
	if r.tty {
		fmt.Fprintf(r.w, "\r%s", line)
	} else {
		fmt.Fprintln(r.w, line)
	}
	r.wrote = true

	if total != 0 && current >= total && r.tty {
		fmt.Fprintln(r.w)
	}
}

func formatLine(phase core.Phase, current, total int64) string {
	if total == 0 {
		return fmt.Sprintf("[%s] %s", phase, humanize.Bytes(uint64(current)))
	}
	pct := float64(current) / float64(total) * 100
	return fmt.Sprintf("[%s] %s / %s (%.0f%%)", phase,
		humanize.Bytes(uint64(current)), humanize.Bytes(uint64(total)), pct)
}

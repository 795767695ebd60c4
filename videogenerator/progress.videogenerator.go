package videogenerator

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var progressStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffe5")).Bold(true)

// Progress reports rendered frames. On a terminal it redraws one status
// line; otherwise it prints bare percentages, one per line, which GUI
// wrappers parse.
type Progress struct {
	w       io.Writer
	total   int
	tty     bool
	start   time.Time
	lastPct int
}

func NewProgress(w io.Writer, total int) *Progress {
	p := &Progress{w: w, total: total, start: time.Now(), lastPct: -1}
	if f, ok := w.(*os.File); ok {
		p.tty = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return p
}

// Frame records that done frames out of total are finished.
func (p *Progress) Frame(done int) {
	if p == nil || p.w == nil || p.total == 0 {
		return
	}
	pct := done * 100 / p.total

	if !p.tty {
		if pct != p.lastPct {
			fmt.Fprintln(p.w, pct)
			p.lastPct = pct
		}
		return
	}

	if pct == p.lastPct && done != p.total {
		return
	}
	p.lastPct = pct
	perFrame := time.Since(p.start).Seconds() / float64(done)
	fmt.Fprintf(p.w, "\r%s %d/%d (%d%%)  avg time per frame: %.4fs",
		progressStyle.Render("Rendering frames"), done, p.total, pct, perFrame)
}

func (p *Progress) Done() {
	if p != nil && p.tty && p.w != nil {
		fmt.Fprintln(p.w)
	}
}

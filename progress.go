package ekidata2sql

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Progress receives per-phase progress from Load.
type Progress interface {
	Start(phase string, total int)
	Add(n int)
	Finish()
}

// NewProgress returns a progress bar writing to w when w is a terminal, and a no-op
// otherwise.
func NewProgress(w io.Writer) Progress {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return nopProgress{}
	}
	return newBarProgress(w)
}

type nopProgress struct{}

func (nopProgress) Start(string, int) {}
func (nopProgress) Add(int)           {}
func (nopProgress) Finish()           {}

var phaseLabelStyle = lipgloss.NewStyle().Bold(true).Width(8)

type barProgress struct {
	w       io.Writer
	bar     progress.Model
	phase   string
	total   int
	done    int
	drawnAt int // percent last drawn, -1 before the first draw
}

func newBarProgress(w io.Writer) *barProgress {
	return &barProgress{
		w:   w,
		bar: progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
	}
}

func (p *barProgress) Start(phase string, total int) {
	p.phase = phase
	p.total = total
	p.done = 0
	p.drawnAt = -1
	p.draw()
}

func (p *barProgress) Add(n int) {
	p.done += n
	p.draw()
}

func (p *barProgress) Finish() {
	p.done = p.total
	p.draw()
	_, _ = fmt.Fprintln(p.w)
}

func (p *barProgress) draw() {
	percent := 1.0
	if p.total > 0 {
		percent = float64(p.done) / float64(p.total)
	}
	whole := int(percent * 100)
	if whole == p.drawnAt {
		return
	}
	p.drawnAt = whole
	_, _ = fmt.Fprintf(p.w, "\r%s %s %d/%d", phaseLabelStyle.Render(p.phase), p.bar.ViewAs(percent), p.done, p.total)
}

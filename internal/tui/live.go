package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/san-kum/sandbox/internal/scene"
	"github.com/san-kum/sandbox/internal/viz"
)

const (
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

// LiveRenderer prints frames of a TerminalRenderer to a plain terminal,
// at most frameRate times per second. Headless runs use it to watch
// progress without taking over the screen.
type LiveRenderer struct {
	*viz.TerminalRenderer

	out       io.Writer
	title     string
	frameRate int
	lastFrame time.Time
	now       func() time.Time
	written   int
}

func NewLiveRenderer(out io.Writer, title string, cols, rows, frameRate int) *LiveRenderer {
	if frameRate < 1 {
		frameRate = 30
	}
	return &LiveRenderer{
		TerminalRenderer: viz.NewTerminalRenderer(cols, rows, false),
		out:              out,
		title:            title,
		frameRate:        frameRate,
		now:              time.Now,
	}
}

func (r *LiveRenderer) Render(s *scene.Scene, cam *scene.Camera) error {
	now := r.now()
	if !r.lastFrame.IsZero() && now.Sub(r.lastFrame) < time.Second/time.Duration(r.frameRate) {
		return nil
	}
	r.lastFrame = now

	if err := r.TerminalRenderer.Render(s, cam); err != nil {
		return err
	}

	var b strings.Builder
	b.WriteString(clearScreen)
	fmt.Fprintf(&b, "  %s  meshes=%d\n", r.title, s.Len())
	for _, line := range strings.Split(strings.TrimSuffix(r.Frame(), "\n"), "\n") {
		b.WriteString("  " + line + "\n")
	}
	if _, err := io.WriteString(r.out, b.String()); err != nil {
		return err
	}
	r.written++
	return nil
}

// Written counts frames actually printed.
func (r *LiveRenderer) Written() int { return r.written }

func (r *LiveRenderer) Start() { io.WriteString(r.out, hideCursor) }
func (r *LiveRenderer) Stop()  { io.WriteString(r.out, showCursor) }

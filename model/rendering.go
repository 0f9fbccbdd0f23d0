package model

import (
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"
)

const macosClearCmd = "clear"

// Renderer is a print sink for rendered generations
type Renderer interface {
	Display(rows []string) error
	Clear()
}

// TerminalRenderer implements basic line-oriented terminal rendering
type TerminalRenderer struct {
	Out io.Writer
}

// NewTerminalRenderer returns a renderer writing to out, or to stdout when out is nil
func NewTerminalRenderer(out io.Writer) *TerminalRenderer {
	if out == nil {
		out = os.Stdout
	}
	return &TerminalRenderer{Out: out}
}

// Display writes each row followed by a newline
func (r *TerminalRenderer) Display(rows []string) error {
	for _, row := range rows {
		if _, err := fmt.Fprintln(r.Out, row); err != nil {
			return errors.Wrap(err, "[Display] failed to write row")
		}
	}
	return nil
}

// Clear clears the terminal screen
func (r *TerminalRenderer) Clear() {
	cmd := exec.Command(macosClearCmd)
	cmd.Stdout = r.Out
	if err := cmd.Run(); err != nil {
		fmt.Fprintln(r.Out, "Error clearing terminal:", err)
	}
}

// ScreenRenderer draws generations on a full-screen tcell terminal
type ScreenRenderer struct {
	screen     tcell.Screen
	aliveGlyph rune
	alive      tcell.Style
	dead       tcell.Style
	quit       chan struct{}
}

// NewScreenRenderer initializes the terminal screen and starts watching for quit keys.
// Runes equal to aliveGlyph are highlighted.
func NewScreenRenderer(aliveGlyph rune) (*ScreenRenderer, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, errors.Wrap(err, "[NewScreenRenderer] creating screen")
	}
	return NewScreenRendererOn(screen, aliveGlyph)
}

// NewScreenRendererOn is like NewScreenRenderer but draws on an existing, uninitialized screen
func NewScreenRendererOn(screen tcell.Screen, aliveGlyph rune) (*ScreenRenderer, error) {
	if err := screen.Init(); err != nil {
		return nil, errors.Wrap(err, "[NewScreenRenderer] initializing screen")
	}
	screen.Clear()

	r := &ScreenRenderer{
		screen:     screen,
		aliveGlyph: aliveGlyph,
		alive:      tcell.StyleDefault.Foreground(tcell.ColorGreen),
		dead:       tcell.StyleDefault.Foreground(tcell.ColorGray),
		quit:       make(chan struct{}),
	}
	go r.pollEvents()
	return r, nil
}

func (r *ScreenRenderer) pollEvents() {
	defer close(r.quit)
	for {
		switch ev := r.screen.PollEvent().(type) {
		case nil:
			// screen finalized
			return
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q' {
				return
			}
		case *tcell.EventResize:
			r.screen.Sync()
		}
	}
}

// Quit is closed once the user presses Escape, q or Ctrl+C
func (r *ScreenRenderer) Quit() <-chan struct{} {
	return r.quit
}

// Display draws rows from the top-left corner
func (r *ScreenRenderer) Display(rows []string) error {
	for y, row := range rows {
		x := 0
		for _, c := range row {
			style := r.dead
			if c == r.aliveGlyph {
				style = r.alive
			}
			r.screen.SetContent(x, y, c, nil, style)
			x++
		}
	}
	r.screen.Show()
	return nil
}

// Clear blanks the screen
func (r *ScreenRenderer) Clear() {
	r.screen.Clear()
}

// Close restores the terminal
func (r *ScreenRenderer) Close() {
	r.screen.Fini()
}

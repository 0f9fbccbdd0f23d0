package model

import (
	"bytes"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
)

func TestTerminalRendererDisplay(t *testing.T) {
	var buf bytes.Buffer
	r := NewTerminalRenderer(&buf)
	if err := r.Display([]string{"*.", ".*"}); err != nil {
		t.Fatalf("Display: %v", err)
	}
	if got := buf.String(); got != "*.\n.*\n" {
		t.Fatalf("output = %q", got)
	}
}

func TestScreenRenderer(t *testing.T) {
	sim := tcell.NewSimulationScreen("")
	r, err := NewScreenRendererOn(sim, '*')
	if err != nil {
		t.Fatalf("NewScreenRendererOn: %v", err)
	}
	defer r.Close()
	sim.SetSize(10, 4)

	if err := r.Display([]string{".*", "*."}); err != nil {
		t.Fatalf("Display: %v", err)
	}
	cells, width, _ := sim.GetContents()
	at := func(x, y int) tcell.SimCell { return cells[y*width+x] }

	for _, c := range []struct {
		x, y  int
		glyph rune
	}{{0, 0, '.'}, {1, 0, '*'}, {0, 1, '*'}, {1, 1, '.'}} {
		cell := at(c.x, c.y)
		if len(cell.Runes) == 0 || cell.Runes[0] != c.glyph {
			t.Fatalf("cell (%d,%d) runes=%q, expected %q", c.x, c.y, cell.Runes, c.glyph)
		}
	}
	if at(1, 0).Style != r.alive || at(0, 0).Style != r.dead {
		t.Fatal("alive and dead glyphs should be styled differently")
	}

	sim.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)
	select {
	case <-r.Quit():
	case <-time.After(2 * time.Second):
		t.Fatal("quit key was not observed")
	}
}

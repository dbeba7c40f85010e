// Package terminal draws the arena in a terminal. It only reads completed
// ticks through Source and never touches agent state.
package terminal

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"

	"github.com/zeusync/forestsim/internal/core/observability/log"
	"github.com/zeusync/forestsim/internal/core/sim"
	"github.com/zeusync/forestsim/internal/core/system"
)

// Source is the read-only view of the world the renderer draws.
type Source interface {
	Views() []sim.View
	TickCount() int64
}

var (
	borderStyle = tcell.StyleDefault.Foreground(tcell.ColorRed)
	statusStyle = tcell.StyleDefault.Foreground(tcell.ColorWhite).Reverse(true)
	roleStyles  = map[sim.Role]tcell.Style{
		sim.Predator: tcell.StyleDefault.Foreground(tcell.ColorOrange).Bold(true),
		sim.Prey:     tcell.StyleDefault.Foreground(tcell.ColorGreen),
	}
)

// headings are indexed by octant, starting east and turning clockwise on
// screen (y grows downward).
var headings = [8]rune{'→', '↘', '↓', '↙', '←', '↖', '↑', '↗'}

type Renderer struct {
	screen tcell.Screen
	arena  sim.Arena
	src    Source
	logger log.Log

	quit      atomic.Bool
	closeOnce sync.Once
	done      chan struct{}
}

func New(screen tcell.Screen, arena sim.Arena, src Source, logger log.Log) *Renderer {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Renderer{
		screen: screen,
		arena:  arena,
		src:    src,
		logger: logger.With(log.String("component", "terminal")),
		done:   make(chan struct{}),
	}
}

// Start initialises the screen and begins watching for quit keys.
func (r *Renderer) Start() error {
	if err := r.screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	r.screen.HideCursor()
	r.screen.Clear()
	go r.pollEvents()
	return nil
}

// Close restores the terminal. It is safe to call more than once.
func (r *Renderer) Close() {
	r.closeOnce.Do(func() {
		r.screen.Fini()
		<-r.done
	})
}

// Render draws one frame. It returns system.ErrStop once the user has asked
// to quit.
func (r *Renderer) Render() error {
	if r.quit.Load() {
		return system.ErrStop
	}

	r.screen.Clear()
	w, h := r.screen.Size()
	if w < 4 || h < 4 {
		r.screen.Show()
		return nil
	}

	r.drawSafeZone(w, h-1)
	views := r.src.Views()
	for _, v := range views {
		x, y := r.cell(v.Position.X, v.Position.Y, w, h-1)
		if x < 0 || y < 0 || x >= w || y >= h-1 {
			continue
		}
		r.screen.SetContent(x, y, Glyph(v.Rotation), nil, roleStyles[v.Role])
	}
	r.drawStatus(w, h-1, views)

	r.screen.Show()
	return nil
}

// Glyph returns the arrow closest to the heading rotation.
func Glyph(rotation float32) rune {
	octant := int(math.Round(float64(rotation)/(math.Pi/4))) % 8
	if octant < 0 {
		octant += 8
	}
	return headings[octant]
}

func (r *Renderer) cell(x, y float32, w, h int) (int, int) {
	cx := int(math.Floor(float64(x / r.arena.Width * float32(w))))
	cy := int(math.Floor(float64(y / r.arena.Height * float32(h))))
	return cx, cy
}

func (r *Renderer) drawSafeZone(w, h int) {
	origin, zw, zh := r.arena.SafeZone()
	x0, y0 := r.cell(origin.X, origin.Y, w, h)
	x1, y1 := r.cell(origin.X+zw, origin.Y+zh, w, h)
	x1, y1 = min(x1, w-1), min(y1, h-1)
	if x1 <= x0 || y1 <= y0 {
		return
	}

	for x := x0 + 1; x < x1; x++ {
		r.screen.SetContent(x, y0, '─', nil, borderStyle)
		r.screen.SetContent(x, y1, '─', nil, borderStyle)
	}
	for y := y0 + 1; y < y1; y++ {
		r.screen.SetContent(x0, y, '│', nil, borderStyle)
		r.screen.SetContent(x1, y, '│', nil, borderStyle)
	}
	r.screen.SetContent(x0, y0, '┌', nil, borderStyle)
	r.screen.SetContent(x1, y0, '┐', nil, borderStyle)
	r.screen.SetContent(x0, y1, '└', nil, borderStyle)
	r.screen.SetContent(x1, y1, '┘', nil, borderStyle)
}

func (r *Renderer) drawStatus(w, row int, views []sim.View) {
	line := fmt.Sprintf(" tick %d", r.src.TickCount())
	for _, v := range views {
		line += fmt.Sprintf("  %s %s", v.Role, v.Position)
	}
	line += "  [q] quit "

	col := 0
	for _, ch := range line {
		if col >= w {
			break
		}
		r.screen.SetContent(col, row, ch, nil, statusStyle)
		col++
	}
	for ; col < w; col++ {
		r.screen.SetContent(col, row, ' ', nil, statusStyle)
	}
}

func (r *Renderer) pollEvents() {
	defer close(r.done)
	for {
		ev := r.screen.PollEvent()
		if ev == nil {
			return
		}
		switch ev := ev.(type) {
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
				(ev.Key() == tcell.KeyRune && (ev.Rune() == 'q' || ev.Rune() == 'Q')) {
				r.logger.Debug("Quit requested")
				r.quit.Store(true)
			}
		case *tcell.EventResize:
			r.screen.Sync()
		}
	}
}

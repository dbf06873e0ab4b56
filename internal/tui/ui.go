package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/nsf/termbox-go"

	"bossfight/internal/client"
)

// DefaultInterval matches the browser student page.
const DefaultInterval = 300 * time.Millisecond

// GameSource fetches the current game.
type GameSource interface {
	Game(ctx context.Context) (client.Game, error)
}

// UI polls a GameSource and redraws on change.
type UI struct {
	Source   GameSource
	Interval time.Duration

	last    client.Game
	status  string
	fetched bool
}

// Poll fetches once and reports whether the frame needs a redraw.
func (ui *UI) Poll(ctx context.Context) bool {
	game, err := ui.Source.Game(ctx)
	if err != nil {
		status := fmt.Sprintf("connection error: %v", err)
		changed := status != ui.status
		ui.status = status
		return changed
	}
	changed := !ui.fetched || ui.status != "" || game.Version != ui.last.Version || game.Level != ui.last.Level || game.HP != ui.last.HP
	ui.last = game
	ui.status = ""
	ui.fetched = true
	return changed
}

func (ui *UI) Lines() []Line {
	if !ui.fetched {
		status := ui.status
		if status == "" {
			status = "connecting..."
		}
		return []Line{{Text: status, FG: termbox.ColorMagenta}, {Text: "q / Esc to quit", FG: termbox.ColorBlue}}
	}
	return Frame(ui.last, ui.status)
}

// Run takes over the terminal until ctx ends or the user quits.
func (ui *UI) Run(ctx context.Context) error {
	if err := termbox.Init(); err != nil {
		return fmt.Errorf("tui: init terminal: %w", err)
	}
	defer termbox.Close()

	interval := ui.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	events := make(chan termbox.Event)
	done := make(chan struct{})
	go func() {
		for {
			ev := termbox.PollEvent()
			if ev.Type == termbox.EventInterrupt {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()
	defer termbox.Interrupt()
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	ui.Poll(ctx)
	draw(ui.Lines())
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			switch ev.Type {
			case termbox.EventKey:
				if ev.Key == termbox.KeyEsc || ev.Key == termbox.KeyCtrlC || ev.Ch == 'q' {
					return nil
				}
			case termbox.EventResize:
				draw(ui.Lines())
			case termbox.EventError:
				return fmt.Errorf("tui: terminal event: %w", ev.Err)
			}
		case <-ticker.C:
			if ui.Poll(ctx) {
				draw(ui.Lines())
			}
		}
	}
}

func draw(lines []Line) {
	termbox.Clear(termbox.ColorDefault, termbox.ColorDefault)
	for y, line := range lines {
		for x, r := range []rune(line.Text) {
			termbox.SetCell(x+1, y+1, r, line.FG, termbox.ColorDefault)
		}
	}
	termbox.Flush()
}

// Package tui renders the student view in a terminal.
package tui

import (
	"fmt"
	"strings"

	"github.com/nsf/termbox-go"

	"bossfight/internal/client"
)

const barWidth = 40

// Line is one row of the rendered frame.
type Line struct {
	Text string
	FG   termbox.Attribute
}

// HPBar draws hp out of maxHP as a fixed-width bar.
func HPBar(hp, maxHP, width int) string {
	if width <= 0 {
		return ""
	}
	filled := 0
	if maxHP > 0 && hp > 0 {
		filled = hp * width / maxHP
		if filled == 0 {
			filled = 1
		}
		if filled > width {
			filled = width
		}
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}

func hpColor(hp, maxHP int) termbox.Attribute {
	switch {
	case hp <= 0:
		return termbox.ColorRed
	case maxHP > 0 && hp*4 <= maxHP:
		return termbox.ColorYellow
	default:
		return termbox.ColorGreen
	}
}

// Frame lays out the view for game. status is shown on the last line.
func Frame(game client.Game, status string) []Line {
	title := fmt.Sprintf("Stage %d: %s %s", game.Level, game.Monster, game.Emoji)
	lines := []Line{
		{Text: strings.TrimSpace(title), FG: termbox.ColorWhite | termbox.AttrBold},
		{Text: fmt.Sprintf("HP %d / %d", game.HP, game.MaxHP), FG: termbox.ColorWhite},
		{Text: HPBar(game.HP, game.MaxHP, barWidth), FG: hpColor(game.HP, game.MaxHP)},
	}
	if game.HP <= 0 && game.MaxHP > 0 {
		lines = append(lines, Line{Text: "Defeated! Waiting for the next boss...", FG: termbox.ColorRed | termbox.AttrBold})
	}
	if game.Background.ID != "" {
		lines = append(lines, Line{Text: "Arena: " + game.Background.ID, FG: termbox.ColorCyan})
	}
	lines = append(lines, Line{})
	if status != "" {
		lines = append(lines, Line{Text: status, FG: termbox.ColorMagenta})
	}
	lines = append(lines, Line{Text: "q / Esc to quit", FG: termbox.ColorBlue})
	return lines
}

package app

import (
	"fmt"

	"example.com/charnotes/pkg/buffer"
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// chromeRows is the button row plus the status bar.
const chromeRows = 2

// ButtonLabel is the inert button under the text area.
const ButtonLabel = "开始认字"

const emptyHint = "Start typing. Every change is saved."

var (
	textStyle   = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	hintStyle   = tcell.StyleDefault.Foreground(tcell.ColorGray).Attributes(tcell.AttrDim)
	barStyle    = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorWhite)
	errorStyle  = tcell.StyleDefault.Foreground(tcell.ColorRed).Background(tcell.ColorWhite)
	buttonStyle = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlue).Attributes(tcell.AttrBold)
	cursorStyle = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorGreen)
)

// putString draws s from column x and returns the column after it. Cells
// past width are clipped.
func putString(s tcell.Screen, x, y, width int, text string, style tcell.Style) int {
	for _, c := range buffer.Split(text) {
		if x >= width {
			break
		}
		x = putCluster(s, x, y, width, c, style)
	}
	return x
}

// putCluster draws one grapheme cluster and returns the next free column.
func putCluster(s tcell.Screen, x, y, width int, c string, style tcell.Style) int {
	w := clusterWidth(c, x)
	if c == "\t" {
		for i := 0; i < w && x+i < width; i++ {
			s.SetContent(x+i, y, ' ', nil, style)
		}
		return x + w
	}
	runes := []rune(c)
	if len(runes) == 0 {
		return x
	}
	mainc := runes[0]
	if mainc < ' ' || mainc == 0x7f {
		mainc = '?'
	}
	s.SetContent(x, y, mainc, runes[1:], style)
	return x + w
}

func drawHelp(s tcell.Screen) {
	width, height := s.Size()
	s.Clear()
	s.SetStyle(tcell.StyleDefault)
	lines := []string{
		"Help:",
		"- F1: Show this help",
		"- Ctrl+Q: Quit",
		"- Ctrl+L: Reload the note from the store",
		"- Arrow keys or Ctrl+B/F/P/N: Move cursor",
		"- Home/End or Ctrl+A/Ctrl+E: Line start/end",
		"- PgUp/PgDn: Scroll a page",
		"- Enter: New line; Backspace/Delete: Remove",
		"- Typing: Inserts characters; every change is saved",
	}
	y := (height - len(lines)) / 2
	for i, line := range lines {
		x := (width - runewidth.StringWidth(line)) / 2
		putString(s, x, y+i, width, line, textStyle)
	}
	s.Show()
}

// draw renders the current runner state. It is a no-op without a screen.
func (r *Runner) draw() {
	if r.Screen == nil {
		return
	}
	if r.ShowHelp {
		drawHelp(r.Screen)
		return
	}
	r.ensureCursorVisible()
	s := r.Screen
	s.Clear()
	width, height := s.Size()
	rows := r.textRows()

	if r.Buf == nil || r.Buf.Len() == 0 {
		drawEmptyHint(s, width, rows)
	}
	drawText(s, bufferLines(r.Buf), r.TopLine, rows, width, r.Cursor)

	// mini-buffer lines sit just above the button row
	for i, line := range r.MiniBuf {
		y := rows + i
		for x := 0; x < width; x++ {
			s.SetContent(x, y, ' ', nil, barStyle)
		}
		putString(s, 0, y, width, line, barStyle)
	}
	drawButton(s, width, height-2)
	r.drawStatus(width, height-1)
	s.Show()
}

func drawEmptyHint(s tcell.Screen, width, rows int) {
	if rows < 3 {
		return
	}
	x := (width - runewidth.StringWidth(emptyHint)) / 2
	if x < 0 {
		x = 0
	}
	putString(s, x, rows/2, width, emptyHint, hintStyle)
}

// drawText renders lines starting at topLine. cursor is a cluster index
// over the whole note, where each line break counts as one cluster.
func drawText(s tcell.Screen, lines [][]string, topLine, rows, width, cursor int) {
	offset := 0
	for i := 0; i < topLine && i < len(lines); i++ {
		offset += len(lines[i]) + 1
	}
	for row := 0; row < rows && topLine+row < len(lines); row++ {
		line := lines[topLine+row]
		x := 0
		for j, c := range line {
			if x >= width {
				break
			}
			style := textStyle
			if offset+j == cursor {
				style = cursorStyle
			}
			x = putCluster(s, x, row, width, c, style)
		}
		if offset+len(line) == cursor && x < width {
			s.SetContent(x, row, ' ', nil, cursorStyle)
		}
		offset += len(line) + 1
	}
	if len(lines) == 0 && cursor == 0 && rows > 0 {
		s.SetContent(0, 0, ' ', nil, cursorStyle)
	}
}

// drawButton renders the inert button centered on row y.
func drawButton(s tcell.Screen, width, y int) {
	label := " " + ButtonLabel + " "
	x := (width - runewidth.StringWidth(label)) / 2
	if x < 0 {
		x = 0
	}
	putString(s, x, y, width, label, buttonStyle)
}

func (r *Runner) drawStatus(width, y int) {
	for x := 0; x < width; x++ {
		r.Screen.SetContent(x, y, ' ', nil, barStyle)
	}
	name := r.DBPath
	if name == "" {
		name = "[no store]"
	}
	n := 0
	if r.Buf != nil {
		n = r.Buf.Len()
	}
	status := fmt.Sprintf("%s | %d chars", name, n)
	if r.Dirty {
		status += " [+]"
	}
	status += " | F1 help, Ctrl+Q quit"
	putString(r.Screen, 0, y, width, status, barStyle)
	if r.Status != "" {
		// the message wins over the summary when the bar is too narrow
		start := width - runewidth.StringWidth(r.Status)
		if start < 0 {
			start = 0
		}
		for i := start; i < width; i++ {
			r.Screen.SetContent(i, y, ' ', nil, errorStyle)
		}
		putString(r.Screen, start, y, width, r.Status, errorStyle)
	}
}

package app

import (
	"example.com/charnotes/pkg/config"
	"github.com/gdamore/tcell/v2"
)

// handleKeyEvent processes a key event. It returns true if the event signals
// the runner should quit.
func (r *Runner) handleKeyEvent(ev *tcell.EventKey) bool {
	if r.Buf == nil {
		r.setText("")
	}
	// Command keybindings
	if r.matchCommand(ev, "quit") {
		if r.Dirty {
			return r.runQuitPrompt()
		}
		return true
	}
	if r.matchCommand(ev, "reload") {
		r.reload()
		if r.Logger != nil {
			r.Logger.Event("action", map[string]any{"name": "reload", "graphemes": r.Buf.Len()})
		}
		r.draw()
		return false
	}
	if ev.Key() == tcell.KeyF1 {
		r.ShowHelp = true
		if r.Logger != nil {
			r.Logger.Event("action", map[string]any{"name": "help.show"})
		}
		r.draw()
		return false
	}

	switch ev.Key() {
	case tcell.KeyEsc:
		r.Status = ""
	case tcell.KeyLeft, tcell.KeyCtrlB:
		if r.Cursor > 0 {
			r.Cursor--
		}
	case tcell.KeyRight, tcell.KeyCtrlF:
		if r.Cursor < r.Buf.Len() {
			r.Cursor++
		}
	case tcell.KeyUp, tcell.KeyCtrlP:
		r.moveCursorVertical(-1)
	case tcell.KeyDown, tcell.KeyCtrlN:
		r.moveCursorVertical(1)
	case tcell.KeyPgUp:
		r.moveCursorVertical(-r.pageSize())
	case tcell.KeyPgDn:
		r.moveCursorVertical(r.pageSize())
	case tcell.KeyHome, tcell.KeyCtrlA:
		r.Cursor, _ = r.currentLineBounds()
	case tcell.KeyEnd, tcell.KeyCtrlE:
		_, r.Cursor = r.currentLineBounds()
	case tcell.KeyEnter:
		r.insertText("\n")
	case tcell.KeyTab:
		r.insertText("\t")
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if r.Cursor > 0 {
			_ = r.deleteRange(r.Cursor-1, r.Cursor)
		}
	case tcell.KeyDelete:
		if r.Cursor < r.Buf.Len() {
			_ = r.deleteRange(r.Cursor, r.Cursor+1)
		}
	case tcell.KeyRune:
		mods := ev.Modifiers() &^ tcell.ModShift
		switch {
		case mods == 0:
			r.insertText(string(ev.Rune()))
		case mods == tcell.ModCtrl:
			// Ctrl+<letter> reported as a rune with modifiers
			r.handleCtrlRune(ev.Rune())
		}
	}
	r.ensureCursorVisible()
	r.draw()
	return false
}

// handleCtrlRune maps Ctrl+<letter> rune events onto the dedicated control
// keys so both encodings behave the same.
func (r *Runner) handleCtrlRune(ch rune) {
	switch ch {
	case 'b':
		r.handleKeyEvent(tcell.NewEventKey(tcell.KeyCtrlB, 0, 0))
	case 'f':
		r.handleKeyEvent(tcell.NewEventKey(tcell.KeyCtrlF, 0, 0))
	case 'p':
		r.handleKeyEvent(tcell.NewEventKey(tcell.KeyCtrlP, 0, 0))
	case 'n':
		r.handleKeyEvent(tcell.NewEventKey(tcell.KeyCtrlN, 0, 0))
	case 'a':
		r.handleKeyEvent(tcell.NewEventKey(tcell.KeyCtrlA, 0, 0))
	case 'e':
		r.handleKeyEvent(tcell.NewEventKey(tcell.KeyCtrlE, 0, 0))
	}
}

// matchCommand reports whether ev triggers the named keymap command.
func (r *Runner) matchCommand(ev *tcell.EventKey, name string) bool {
	if r.Keymap == nil {
		r.Keymap = config.DefaultKeymap()
	}
	kb, ok := r.Keymap[name]
	if !ok {
		return false
	}
	return kb.Matches(ev)
}

func (r *Runner) pageSize() int {
	if rows := r.textRows(); rows > 1 {
		return rows - 1
	}
	return 10
}

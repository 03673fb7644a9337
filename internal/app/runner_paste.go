package app

import (
	"example.com/charnotes/pkg/codec"
	"github.com/gdamore/tcell/v2"
)

// handlePaste brackets a bracketed paste. Keys arriving between start and
// end are collected and inserted as one edit, so the note is saved once.
func (r *Runner) handlePaste(ev *tcell.EventPaste) {
	if ev.Start() {
		r.pasting = true
		r.pasteBuf.Reset()
		return
	}
	r.pasting = false
	text := r.pasteBuf.String()
	r.pasteBuf.Reset()
	if r.Buf == nil {
		r.setText("")
	}
	r.insertText(text)
	if r.Logger != nil {
		r.Logger.Event("action", map[string]any{"name": "paste", "graphemes": codec.Len(text)})
	}
	r.ensureCursorVisible()
	r.draw()
}

// collectPaste appends one pasted key to the pending paste text.
func (r *Runner) collectPaste(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyRune:
		r.pasteBuf.WriteRune(ev.Rune())
	case tcell.KeyEnter, tcell.KeyLF:
		r.pasteBuf.WriteByte('\n')
	case tcell.KeyTab:
		r.pasteBuf.WriteByte('\t')
	}
}

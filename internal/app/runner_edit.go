package app

import (
	"example.com/charnotes/pkg/codec"
)

// insertText inserts text at the cursor and saves the note.
func (r *Runner) insertText(text string) {
	if text == "" {
		return
	}
	n, err := r.Buf.InsertString(r.Cursor, text)
	if err != nil {
		return
	}
	r.Cursor += n
	r.commit("insert")
}

// deleteRange deletes clusters in [start,end), adjusts the cursor and saves.
func (r *Runner) deleteRange(start, end int) error {
	if start < 0 {
		start = 0
	}
	if end > r.Buf.Len() {
		end = r.Buf.Len()
	}
	if start >= end {
		return nil
	}
	if err := r.Buf.Delete(start, end); err != nil {
		return err
	}
	if r.Cursor > end {
		r.Cursor -= end - start
	} else if r.Cursor > start {
		r.Cursor = start
	}
	r.commit("delete")
	return nil
}

// commit writes the whole buffer through the view model and replaces it
// with the text the store confirms. Failures leave the buffer as typed,
// mark it dirty and show the error.
func (r *Runner) commit(action string) {
	r.Dirty = true
	if r.Notes == nil {
		return
	}
	if r.Blocked {
		r.Status = "note not loaded; edits are not saved (Ctrl+L to retry)"
		return
	}
	text := r.Buf.String()
	prefix := joinClusters(r.Buf.Slice(0, r.Cursor))
	confirmed, err := r.Notes.Save(r.context(), text)
	if err != nil {
		r.Status = "save failed: " + err.Error()
		if r.Logger != nil {
			r.Logger.Error("edit.save.error", err, map[string]any{"action": action, "graphemes": r.Buf.Len()})
		}
		return
	}
	r.Dirty = false
	r.Status = ""
	// Edits can merge clusters (a combining mark joins its base), so the
	// confirmed text is re-segmented and the cursor placed after the prefix.
	if confirmed != text || codec.Len(confirmed) != r.Buf.Len() {
		r.Cursor = codec.Len(prefix)
		r.setText(confirmed)
	}
	if r.Logger != nil {
		r.Logger.Debug("edit", map[string]any{"action": action, "cursor": r.Cursor, "graphemes": r.Buf.Len()})
	}
}

// reload discards the buffer and re-reads the note from the store.
func (r *Runner) reload() {
	if r.Notes == nil {
		return
	}
	if err := r.Start(r.context()); err != nil {
		return
	}
	r.ensureCursorVisible()
}

// moveCursorVertical moves the cursor up or down by delta lines, preserving
// the display column when possible.
func (r *Runner) moveCursorVertical(delta int) {
	if r.Buf == nil || r.Buf.Len() == 0 {
		return
	}
	line, lineStart := r.Buf.LineOf(r.Cursor)
	col := displayColumn(r.Buf.Slice(lineStart, r.Cursor), r.Cursor-lineStart)
	target := line + delta
	if target < 0 {
		target = 0
	}
	start, end := r.Buf.LineAt(target)
	if end > start && isLineBreak(r.Buf.ClusterAt(end-1)) {
		end--
	}
	cells := r.Buf.Slice(start, end)
	pos, w := 0, 0
	for pos < len(cells) {
		next := w + clusterWidth(cells[pos], w)
		if next > col {
			break
		}
		w = next
		pos++
	}
	r.Cursor = start + pos
	r.ensureCursorVisible()
}

// currentLineBounds returns the start and end (excluding the newline) of
// the cursor's line.
func (r *Runner) currentLineBounds() (start, end int) {
	line, _ := r.Buf.LineOf(r.Cursor)
	start, end = r.Buf.LineAt(line)
	if end > start && isLineBreak(r.Buf.ClusterAt(end-1)) {
		end--
	}
	return start, end
}

func isLineBreak(c string) bool {
	return c == "\n" || c == "\r\n"
}

// textRows is the number of screen rows available for note text.
func (r *Runner) textRows() int {
	if r.Screen == nil {
		return 0
	}
	_, h := r.Screen.Size()
	rows := h - chromeRows - len(r.MiniBuf)
	if rows < 0 {
		rows = 0
	}
	return rows
}

// ensureCursorVisible scrolls TopLine so the cursor's line is on screen.
func (r *Runner) ensureCursorVisible() {
	if r.Buf == nil {
		return
	}
	rows := r.textRows()
	if rows == 0 {
		return
	}
	line, _ := r.Buf.LineOf(r.Cursor)
	if line < r.TopLine {
		r.TopLine = line
	} else if line >= r.TopLine+rows {
		r.TopLine = line - rows + 1
	}
}

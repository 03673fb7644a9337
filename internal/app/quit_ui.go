package app

import "github.com/gdamore/tcell/v2"

// runQuitPrompt asks for confirmation when the buffer holds text the store
// does not. It returns true if the user confirms quit.
func (r *Runner) runQuitPrompt() bool {
	if r.Screen == nil {
		return true
	}
	r.setMiniBuffer([]string{r.quitPromptText()})
	r.draw()
	for {
		ev := r.Screen.PollEvent()
		switch ev := ev.(type) {
		case nil:
			return true
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEsc || (ev.Key() == tcell.KeyRune && (ev.Rune() == 'n' || ev.Rune() == 'N')) {
				r.clearMiniBuffer()
				r.draw()
				return false
			}
			if ev.Key() == tcell.KeyRune && (ev.Rune() == 'y' || ev.Rune() == 'Y') {
				r.clearMiniBuffer()
				return true
			}
		}
	}
}

func (r *Runner) quitPromptText() string {
	if r.Blocked {
		return "The note never loaded, so these edits were not saved. Quit anyway? (y/n)"
	}
	return "Last save failed; these edits are not stored. Quit anyway? (y/n)"
}

package app

import (
	"context"
	"strings"

	"example.com/charnotes/internal/notes"
	"example.com/charnotes/pkg/buffer"
	"example.com/charnotes/pkg/config"
	"example.com/charnotes/pkg/logs"
	"github.com/gdamore/tcell/v2"
)

// Runner owns the terminal lifecycle and the editor event loop. Every text
// change is written through Notes before the next event is handled.
type Runner struct {
	Screen   tcell.Screen
	Notes    *notes.ViewModel
	DBPath   string
	Buf      *buffer.GapBuffer
	Cursor   int // cursor position in grapheme clusters
	TopLine  int
	Dirty    bool // buffer holds text the store does not
	Blocked  bool // load failed; saving would clobber the stored note
	ShowHelp bool
	Status   string
	Logger   *logs.Logger
	MiniBuf  []string
	Keymap   map[string]config.Keybinding

	ctx      context.Context
	pasting  bool
	pasteBuf strings.Builder
}

func (r *Runner) setMiniBuffer(lines []string) {
	r.MiniBuf = lines
}

func (r *Runner) clearMiniBuffer() {
	r.MiniBuf = nil
}

// New creates a Runner editing the note held by vm.
func New(vm *notes.ViewModel, logger *logs.Logger) *Runner {
	return &Runner{Notes: vm, Buf: buffer.NewGapBuffer(0), Logger: logger, Keymap: config.DefaultKeymap()}
}

func (r *Runner) context() context.Context {
	if r.ctx != nil {
		return r.ctx
	}
	return context.Background()
}

// Start loads the stored note into the buffer. On failure the runner keeps
// an empty buffer and refuses to save until a reload succeeds.
func (r *Runner) Start(ctx context.Context) error {
	r.ctx = ctx
	if r.Notes == nil {
		return nil
	}
	if r.Logger != nil {
		r.Logger.Event("open.attempt", map[string]any{"db": r.DBPath})
	}
	text, err := r.Notes.Load(ctx)
	if err != nil {
		r.Blocked = true
		r.Status = "load failed: " + err.Error() + " (Ctrl+L to retry)"
		if r.Logger != nil {
			r.Logger.Error("open.error", err, map[string]any{"db": r.DBPath})
		}
		return err
	}
	r.setText(text)
	r.Blocked = false
	r.Dirty = false
	r.Status = ""
	if r.Logger != nil {
		r.Logger.Event("open.success", map[string]any{"db": r.DBPath, "graphemes": r.Buf.Len()})
	}
	return nil
}

// setText replaces the buffer and clamps the cursor into it.
func (r *Runner) setText(text string) {
	r.Buf = buffer.NewGapBufferFromString(text)
	if r.Cursor > r.Buf.Len() {
		r.Cursor = r.Buf.Len()
	}
	if r.Cursor < 0 {
		r.Cursor = 0
	}
}

// InitScreen initializes a tcell screen if one is not already set.
func (r *Runner) InitScreen() error {
	if r.Screen != nil {
		return nil
	}
	s, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := s.Init(); err != nil {
		return err
	}
	s.SetStyle(tcell.StyleDefault)
	s.Clear()
	r.Screen = s
	return nil
}

// Fini finalizes the screen if initialized.
func (r *Runner) Fini() {
	if r.Screen != nil {
		r.Screen.Fini()
		r.Screen = nil
	}
}

// Run loads the note, then handles events until the user quits. A load
// failure is shown in the status bar rather than returned.
func (r *Runner) Run(ctx context.Context) error {
	if r.Screen == nil {
		if err := r.InitScreen(); err != nil {
			return err
		}
		defer r.Fini()
	}
	if r.Buf == nil {
		r.Buf = buffer.NewGapBuffer(0)
	}
	if r.Keymap == nil {
		r.Keymap = config.DefaultKeymap()
	}
	r.Screen.EnablePaste()
	if r.Logger != nil {
		r.Logger.Event("run.start", map[string]any{"db": r.DBPath})
		defer r.Logger.Event("run.end", map[string]any{"db": r.DBPath})
	}
	_ = r.Start(ctx)
	r.draw()

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		ev := r.Screen.PollEvent()
		switch ev := ev.(type) {
		case nil:
			// screen finalized
			return nil
		case *tcell.EventPaste:
			r.handlePaste(ev)
		case *tcell.EventKey:
			if r.pasting {
				r.collectPaste(ev)
				continue
			}
			if r.Logger != nil {
				r.Logger.Debug("key", map[string]any{
					"key":       int(ev.Key()),
					"rune":      string(ev.Rune()),
					"modifiers": int(ev.Modifiers()),
				})
			}
			// If help is currently shown, consume this key to dismiss it
			if r.ShowHelp {
				r.ShowHelp = false
				r.draw()
				continue
			}
			if r.handleKeyEvent(ev) {
				if r.Logger != nil {
					r.Logger.Event("action", map[string]any{"name": "quit"})
				}
				return nil
			}
		case *tcell.EventResize:
			r.Screen.Sync()
			r.draw()
		}
	}
}

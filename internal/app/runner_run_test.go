package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"example.com/charnotes/internal/notes"
	"example.com/charnotes/internal/store"
	"example.com/charnotes/pkg/codec"
	"github.com/gdamore/tcell/v2"
)

func simScreen(t *testing.T) tcell.SimulationScreen {
	t.Helper()
	s := tcell.NewSimulationScreen("UTF-8")
	if err := s.Init(); err != nil {
		t.Fatalf("initializing simulation screen failed: %v", err)
	}
	s.SetSize(40, 10)
	return s
}

func waitRun(t *testing.T, done <-chan error) {
	t.Helper()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("runner returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timeout waiting for runner to quit")
	}
}

// TestRun_TypingQuit_Simulation types two characters and quits; the store
// must already hold them without any explicit save.
func TestRun_TypingQuit_Simulation(t *testing.T) {
	st := openStore(t)
	s := simScreen(t)
	defer s.Fini()

	r := New(notes.New(st, nil), nil)
	r.Screen = s
	r.DBPath = "notes.db"

	done := make(chan error, 1)
	go func() { done <- r.Run(context.Background()) }()
	time.Sleep(10 * time.Millisecond)

	s.PostEvent(tcell.NewEventKey(tcell.KeyRune, '你', 0))
	s.PostEvent(tcell.NewEventKey(tcell.KeyRune, '好', 0))
	s.PostEvent(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModCtrl))
	waitRun(t, done)

	if got := r.Buf.String(); got != "你好" {
		t.Fatalf("expected buffer '你好', got %q", got)
	}
	if got := storedText(t, st); got != "你好" {
		t.Fatalf("expected stored '你好', got %q", got)
	}
	recs, _ := st.LoadAll(context.Background())
	if len(recs) != 2 || recs[0].Index != 0 || recs[1].Index != 1 {
		t.Fatalf("unexpected records %+v", recs)
	}
}

func TestRun_LoadsExistingNote(t *testing.T) {
	st := openStore(t)
	if err := st.ReplaceAll(context.Background(), codec.Encode("hello")); err != nil {
		t.Fatalf("seed: %v", err)
	}
	s := simScreen(t)
	defer s.Fini()

	r := New(notes.New(st, nil), nil)
	r.Screen = s

	done := make(chan error, 1)
	go func() { done <- r.Run(context.Background()) }()
	time.Sleep(10 * time.Millisecond)
	// End, then append
	s.PostEvent(tcell.NewEventKey(tcell.KeyEnd, 0, 0))
	s.PostEvent(tcell.NewEventKey(tcell.KeyRune, '!', 0))
	s.PostEvent(tcell.NewEventKey(tcell.KeyCtrlQ, 0, 0))
	waitRun(t, done)

	if got := storedText(t, st); got != "hello!" {
		t.Fatalf("expected stored 'hello!', got %q", got)
	}
}

func TestRun_HelpDismissConsumesKey(t *testing.T) {
	st := openStore(t)
	s := simScreen(t)
	defer s.Fini()

	r := New(notes.New(st, nil), nil)
	r.Screen = s

	done := make(chan error, 1)
	go func() { done <- r.Run(context.Background()) }()
	time.Sleep(10 * time.Millisecond)
	s.PostEvent(tcell.NewEventKey(tcell.KeyF1, 0, 0))
	s.PostEvent(tcell.NewEventKey(tcell.KeyRune, 'z', 0))
	s.PostEvent(tcell.NewEventKey(tcell.KeyCtrlQ, 0, 0))
	waitRun(t, done)

	if got := r.Buf.String(); got != "" {
		t.Fatalf("key dismissing help should not insert text, got %q", got)
	}
	if n, _ := st.Count(context.Background()); n != 0 {
		t.Fatalf("expected no records, got %d", n)
	}
}

func TestRun_QuitPromptAfterFailedSave(t *testing.T) {
	repo := brokenRepo{saveErr: &store.Error{Op: store.OpSave, Err: errors.New("readonly")}}
	s := simScreen(t)
	defer s.Fini()

	r := New(notes.New(repo, nil), nil)
	r.Screen = s

	done := make(chan error, 1)
	go func() { done <- r.Run(context.Background()) }()
	time.Sleep(10 * time.Millisecond)
	s.PostEvent(tcell.NewEventKey(tcell.KeyRune, 'x', 0))
	// first quit is declined, second confirmed
	s.PostEvent(tcell.NewEventKey(tcell.KeyCtrlQ, 0, 0))
	s.PostEvent(tcell.NewEventKey(tcell.KeyRune, 'n', 0))
	s.PostEvent(tcell.NewEventKey(tcell.KeyCtrlQ, 0, 0))
	s.PostEvent(tcell.NewEventKey(tcell.KeyRune, 'y', 0))
	waitRun(t, done)

	if !r.Dirty {
		t.Fatalf("expected Dirty=true after failed save")
	}
	if got := r.Buf.String(); got != "x" {
		t.Fatalf("declined quit should not edit the buffer, got %q", got)
	}
	if len(r.MiniBuf) != 0 {
		t.Fatalf("expected prompt cleared, got %v", r.MiniBuf)
	}
}

func TestRun_CanceledContextStops(t *testing.T) {
	st := openStore(t)
	s := simScreen(t)
	defer s.Fini()

	ctx, cancel := context.WithCancel(context.Background())
	r := New(notes.New(st, nil), nil)
	r.Screen = s

	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()
	time.Sleep(10 * time.Millisecond)
	cancel()
	// wake the event loop
	s.PostEvent(tcell.NewEventKey(tcell.KeyEsc, 0, 0))
	waitRun(t, done)
}

type countingRepo struct {
	*store.Store
	saves int
}

func (c *countingRepo) ReplaceAll(ctx context.Context, recs []codec.Record) error {
	c.saves++
	return c.Store.ReplaceAll(ctx, recs)
}

func TestRun_PasteSavesOnce(t *testing.T) {
	repo := &countingRepo{Store: openStore(t)}
	s := simScreen(t)
	defer s.Fini()

	r := New(notes.New(repo, nil), nil)
	r.Screen = s

	done := make(chan error, 1)
	go func() { done <- r.Run(context.Background()) }()
	time.Sleep(10 * time.Millisecond)

	s.PostEvent(tcell.NewEventPaste(true))
	for _, ch := range "你好" {
		s.PostEvent(tcell.NewEventKey(tcell.KeyRune, ch, 0))
	}
	s.PostEvent(tcell.NewEventKey(tcell.KeyEnter, 0, 0))
	s.PostEvent(tcell.NewEventKey(tcell.KeyRune, 'o', 0))
	s.PostEvent(tcell.NewEventKey(tcell.KeyRune, 'k', 0))
	s.PostEvent(tcell.NewEventPaste(false))
	s.PostEvent(tcell.NewEventKey(tcell.KeyCtrlQ, 0, 0))
	waitRun(t, done)

	if repo.saves != 1 {
		t.Fatalf("expected one save for the paste, got %d", repo.saves)
	}
	if got := storedText(t, repo.Store); got != "你好\nok" {
		t.Fatalf("expected stored paste, got %q", got)
	}
	if r.Cursor != 5 {
		t.Fatalf("expected cursor after pasted text (5), got %d", r.Cursor)
	}
}

func TestRun_PastedControlKeysAreText(t *testing.T) {
	st := openStore(t)
	s := simScreen(t)
	defer s.Fini()

	r := New(notes.New(st, nil), nil)
	r.Screen = s

	done := make(chan error, 1)
	go func() { done <- r.Run(context.Background()) }()
	time.Sleep(10 * time.Millisecond)

	// a quit key inside a paste must not end the session
	s.PostEvent(tcell.NewEventPaste(true))
	s.PostEvent(tcell.NewEventKey(tcell.KeyRune, 'a', 0))
	s.PostEvent(tcell.NewEventKey(tcell.KeyCtrlQ, 0, 0))
	s.PostEvent(tcell.NewEventKey(tcell.KeyTab, 0, 0))
	s.PostEvent(tcell.NewEventPaste(false))
	s.PostEvent(tcell.NewEventKey(tcell.KeyCtrlQ, 0, 0))
	waitRun(t, done)

	if got := storedText(t, st); got != "a\t" {
		t.Fatalf("expected stored 'a\\t', got %q", got)
	}
}

// Package notes holds the note view model: the loaded text, the load/save
// state machine, and the store it persists through.
package notes

import (
	"context"
	"sync"

	"example.com/charnotes/pkg/codec"
	"example.com/charnotes/pkg/logs"
)

// State is the view model's position in the load/save cycle.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateDisplaying
	StateSaving
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateDisplaying:
		return "displaying"
	case StateSaving:
		return "saving"
	}
	return "unknown"
}

// Repository is the persistence the view model needs. *store.Store
// satisfies it.
type Repository interface {
	LoadAll(ctx context.Context) ([]codec.Record, error)
	ReplaceAll(ctx context.Context, records []codec.Record) error
}

// ViewModel serializes loads and saves of one note. Methods are safe for
// concurrent use; calls run one at a time.
type ViewModel struct {
	mu     sync.Mutex
	repo   Repository
	logger *logs.Logger
	state  State
	text   string
}

// New returns an idle view model over repo. logger may be nil.
func New(repo Repository, logger *logs.Logger) *ViewModel {
	return &ViewModel{repo: repo, logger: logger}
}

// State returns the current state.
func (vm *ViewModel) State() State {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.state
}

// Text returns the last loaded or confirmed text.
func (vm *ViewModel) Text() string {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.text
}

// Load reads every record from the store and decodes them. On failure the
// previous state and text are kept.
func (vm *ViewModel) Load(ctx context.Context) (string, error) {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	prev := vm.state
	vm.state = StateLoading
	vm.logger.Debug("load.attempt", nil)
	text, err := vm.fetch(ctx)
	if err != nil {
		vm.state = prev
		vm.logger.Error("load.error", err, nil)
		return "", err
	}
	vm.text = text
	vm.state = StateDisplaying
	vm.logger.Event("load.success", map[string]any{"graphemes": codec.Len(text)})
	return text, nil
}

// Save replaces the stored note with text, then reloads it and returns what
// the store now holds.
func (vm *ViewModel) Save(ctx context.Context, text string) (string, error) {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	prev := vm.state
	vm.state = StateSaving
	records := codec.Encode(text)
	if err := vm.repo.ReplaceAll(ctx, records); err != nil {
		vm.state = prev
		vm.logger.Error("save.error", err, map[string]any{"records": len(records)})
		return "", err
	}
	confirmed, err := vm.fetch(ctx)
	if err != nil {
		vm.state = prev
		vm.logger.Error("save.confirm.error", err, map[string]any{"records": len(records)})
		return "", err
	}
	vm.text = confirmed
	vm.state = StateDisplaying
	vm.logger.Debug("save.success", map[string]any{"records": len(records)})
	return confirmed, nil
}

func (vm *ViewModel) fetch(ctx context.Context) (string, error) {
	records, err := vm.repo.LoadAll(ctx)
	if err != nil {
		return "", err
	}
	if err := codec.Validate(records); err != nil {
		vm.logger.Warn("load.malformed", map[string]any{"records": len(records), "error": err.Error()})
	}
	return codec.Decode(records), nil
}

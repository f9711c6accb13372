package combat

import (
	"errors"
	"fmt"
	"sync"
)

// ErrBattleNotFound is returned when no battle is registered under an id.
var ErrBattleNotFound = errors.New("battle not found")

// ErrBattleExists is returned when starting a battle under an id already in use.
var ErrBattleExists = errors.New("battle already exists")

// Engine tracks active battles keyed by session id.
// All methods are safe for concurrent use.
type Engine struct {
	mu      sync.RWMutex
	battles map[string]*Battle
}

// NewEngine creates an empty Engine.
//
// Postcondition: Returns a non-nil Engine ready for use.
func NewEngine() *Engine {
	return &Engine{battles: make(map[string]*Battle)}
}

// Start creates and registers a battle under id.
//
// Precondition: id must be non-empty.
// Postcondition: Returns the new Battle, or an error wrapping ErrBattleExists.
func (e *Engine) Start(id string, setup Setup, opts Options) (*Battle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.battles[id]; exists {
		return nil, fmt.Errorf("starting battle %q: %w", id, ErrBattleExists)
	}
	b := NewBattle(setup, opts)
	e.battles[id] = b
	return b, nil
}

// Get returns the battle registered under id.
//
// Postcondition: Returns the battle or an error wrapping ErrBattleNotFound.
func (e *Engine) Get(id string) (*Battle, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	b, ok := e.battles[id]
	if !ok {
		return nil, fmt.Errorf("battle %q: %w", id, ErrBattleNotFound)
	}
	return b, nil
}

// End removes the battle registered under id. Unknown ids are ignored.
func (e *Engine) End(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.battles, id)
}

// Len returns the number of registered battles.
func (e *Engine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.battles)
}

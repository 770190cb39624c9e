package history

import (
	"errors"
	"strings"
	"sync"
)

var ErrOutOfRange = errors.New("history: entry index out of range")

// Source is the backing store of a History: a browser-like stack of
// entries with per-entry state.
type Source interface {
	Location() (pathname, search string)
	State() map[string]any
	PushState(state map[string]any, uri string) error
	ReplaceState(state map[string]any, uri string) error
	// OnPop registers fn for back/forward moves and returns its remover.
	OnPop(fn func()) (remove func())
}

type entry struct {
	pathname string
	search   string
}

func splitURI(uri string) entry {
	pathname, search, _ := strings.Cut(uri, "?")
	return entry{pathname: pathname, search: search}
}

// MemorySource keeps the history stack in memory. It backs server-side
// rendering and tests.
type MemorySource struct {
	mu     sync.Mutex
	index  int
	stack  []entry
	states []map[string]any
	pops   map[int]func()
	nextID int
}

func NewMemorySource(initial string) *MemorySource {
	if initial == "" {
		initial = "/"
	}
	return &MemorySource{
		stack:  []entry{splitURI(initial)},
		states: []map[string]any{nil},
		pops:   make(map[int]func()),
	}
}

func (s *MemorySource) Location() (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.stack[s.index]
	return e.pathname, e.search
}

func (s *MemorySource) State() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states[s.index]
}

// PushState drops any forward entries, like a browser does.
func (s *MemorySource) PushState(state map[string]any, uri string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stack = append(s.stack[:s.index+1], splitURI(uri))
	s.states = append(s.states[:s.index+1], state)
	s.index++
	return nil
}

func (s *MemorySource) ReplaceState(state map[string]any, uri string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stack[s.index] = splitURI(uri)
	s.states[s.index] = state
	return nil
}

func (s *MemorySource) OnPop(fn func()) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.pops[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.pops, id)
		s.mu.Unlock()
	}
}

// Go moves delta entries back (negative) or forward and fires pop listeners.
func (s *MemorySource) Go(delta int) error {
	s.mu.Lock()
	next := s.index + delta
	if next < 0 || next >= len(s.stack) {
		s.mu.Unlock()
		return ErrOutOfRange
	}
	s.index = next
	fns := make([]func(), 0, len(s.pops))
	for _, fn := range s.pops {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
	return nil
}

func (s *MemorySource) Index() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

// Entries returns the stack as URIs.
func (s *MemorySource) Entries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, len(s.stack))
	for i, e := range s.stack {
		out[i] = Location{Pathname: e.pathname, Search: e.search}.URI()
	}
	return out
}

// Package history tracks the current location of a navigation session and
// notifies listeners when it changes.
package history

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Action names the kind of navigation that produced a location.
type Action string

const (
	Pop  Action = "POP"
	Push Action = "PUSH"
)

const initialKey = "initial"

// Location is a point in the navigation history.
type Location struct {
	Pathname string
	Search   string
	State    map[string]any
	Key      string
}

// URI returns pathname and search joined.
func (l Location) URI() string {
	if l.Search == "" {
		return l.Pathname
	}
	return l.Pathname + "?" + strings.TrimPrefix(l.Search, "?")
}

type Event struct {
	Location Location
	Action   Action
}

type Listener func(Event)

type NavigateOptions struct {
	State   map[string]any
	Replace bool
}

// Provider is what the view layer needs from a history implementation.
type Provider interface {
	Location() Location
	Listen(Listener) (unlisten func())
	Navigate(to string, opts NavigateOptions) error
}

// History implements Provider on top of a Source.
type History struct {
	source Source

	mu        sync.Mutex
	location  Location
	listeners map[uint64]Listener
	nextID    uint64
}

var keySeq atomic.Uint64

func New(source Source) *History {
	h := &History{
		source:    source,
		listeners: make(map[uint64]Listener),
	}
	h.location = h.read()
	return h
}

func (h *History) read() Location {
	pathname, search := h.source.Location()
	state := h.source.State()

	key := initialKey
	if k, ok := state["key"].(string); ok && k != "" {
		key = k
	}
	return Location{Pathname: pathname, Search: search, State: state, Key: key}
}

func (h *History) Location() Location {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.location
}

// Listen registers l for every future navigation. Pop events coming from the
// source are delivered as well.
func (h *History) Listen(l Listener) func() {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.listeners[id] = l
	h.mu.Unlock()

	removePop := h.source.OnPop(func() {
		loc := h.refresh()
		l(Event{Location: loc, Action: Pop})
	})

	return func() {
		removePop()
		h.mu.Lock()
		delete(h.listeners, id)
		h.mu.Unlock()
	}
}

// Navigate pushes (or replaces) to and notifies listeners.
func (h *History) Navigate(to string, opts NavigateOptions) error {
	state := make(map[string]any, len(opts.State)+1)
	for k, v := range opts.State {
		state[k] = v
	}
	state["key"] = strconv.FormatInt(time.Now().UnixNano(), 36) + "-" + strconv.FormatUint(keySeq.Add(1), 36)

	var err error
	if opts.Replace {
		err = h.source.ReplaceState(state, to)
	} else {
		err = h.source.PushState(state, to)
	}
	if err != nil {
		return fmt.Errorf("navigate to %q: %w", to, err)
	}

	loc := h.refresh()

	h.mu.Lock()
	listeners := make([]Listener, 0, len(h.listeners))
	for _, l := range h.listeners {
		listeners = append(listeners, l)
	}
	h.mu.Unlock()

	for _, l := range listeners {
		l(Event{Location: loc, Action: Push})
	}
	return nil
}

func (h *History) refresh() Location {
	loc := h.read()
	h.mu.Lock()
	h.location = loc
	h.mu.Unlock()
	return loc
}

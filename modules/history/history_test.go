package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMemorySource(t *testing.T) {
	t.Parallel()

	s := NewMemorySource("/blog?tag=go")
	pathname, search := s.Location()
	assert.Equal(t, "/blog", pathname)
	assert.Equal(t, "tag=go", search)

	pathname, _ = NewMemorySource("").Location()
	assert.Equal(t, "/", pathname)
}

func TestHistoryInitialLocation(t *testing.T) {
	t.Parallel()

	h := New(NewMemorySource("/users/1"))
	loc := h.Location()
	assert.Equal(t, "/users/1", loc.Pathname)
	assert.Equal(t, "initial", loc.Key)
	assert.Equal(t, "/users/1", loc.URI())
}

func TestHistoryNavigate(t *testing.T) {
	t.Parallel()

	source := NewMemorySource("/")
	h := New(source)

	var events []Event
	unlisten := h.Listen(func(e Event) { events = append(events, e) })

	require.NoError(t, h.Navigate("/blog?page=2", NavigateOptions{State: map[string]any{"from": "nav"}}))
	require.Len(t, events, 1)
	assert.Equal(t, Push, events[0].Action)
	assert.Equal(t, "/blog", events[0].Location.Pathname)
	assert.Equal(t, "page=2", events[0].Location.Search)
	assert.Equal(t, "nav", events[0].Location.State["from"])
	assert.NotEqual(t, "initial", events[0].Location.Key)
	assert.Equal(t, 1, source.Index())

	require.NoError(t, h.Navigate("/about", NavigateOptions{Replace: true}))
	assert.Equal(t, []string{"/", "/about"}, source.Entries())
	assert.Equal(t, "/about", h.Location().Pathname)

	unlisten()
	require.NoError(t, h.Navigate("/after", NavigateOptions{}))
	assert.Len(t, events, 2)
}

func TestHistoryNavigateKeysAreUnique(t *testing.T) {
	t.Parallel()

	h := New(NewMemorySource("/"))
	require.NoError(t, h.Navigate("/a", NavigateOptions{}))
	first := h.Location().Key
	require.NoError(t, h.Navigate("/b", NavigateOptions{}))
	assert.NotEqual(t, first, h.Location().Key)
}

func TestHistoryPop(t *testing.T) {
	t.Parallel()

	source := NewMemorySource("/")
	h := New(source)
	require.NoError(t, h.Navigate("/one", NavigateOptions{}))
	require.NoError(t, h.Navigate("/two", NavigateOptions{}))

	var got []Event
	unlisten := h.Listen(func(e Event) { got = append(got, e) })
	defer unlisten()

	require.NoError(t, source.Go(-2))
	require.Len(t, got, 1)
	assert.Equal(t, Pop, got[0].Action)
	assert.Equal(t, "/", got[0].Location.Pathname)
	assert.Equal(t, "initial", got[0].Location.Key)

	assert.ErrorIs(t, source.Go(-1), ErrOutOfRange)
}

func TestPushDropsForwardEntries(t *testing.T) {
	t.Parallel()

	source := NewMemorySource("/")
	h := New(source)
	require.NoError(t, h.Navigate("/one", NavigateOptions{}))
	require.NoError(t, h.Navigate("/two", NavigateOptions{}))
	require.NoError(t, source.Go(-1))
	require.NoError(t, h.Navigate("/three", NavigateOptions{}))

	assert.Equal(t, []string{"/", "/one", "/three"}, source.Entries())
}

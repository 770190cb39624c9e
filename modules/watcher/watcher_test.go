package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportsChanges(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	changed := make(chan string, 16)

	w, err := New([]string{dir}, 10*time.Millisecond, func(path string) { changed <- path }, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	target := filepath.Join(dir, "post.md")
	require.NoError(t, os.WriteFile(target, []byte("one"), 0o644))

	select {
	case path := <-changed:
		assert.Equal(t, target, path)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	cancel()
	require.NoError(t, <-done)
}

func TestDebounceCoalescesBursts(t *testing.T) {
	t.Parallel()

	calls := make(chan string, 16)
	w := &Watcher{
		debounce: 50 * time.Millisecond,
		handle:   func(path string) { calls <- path },
		timers:   make(map[string]*time.Timer),
	}

	for i := 0; i < 5; i++ {
		w.debounceEvent("a.md")
	}
	w.debounceEvent("b.md")

	got := map[string]int{}
	timeout := time.After(2 * time.Second)
	for len(got) < 2 {
		select {
		case p := <-calls:
			got[p]++
		case <-timeout:
			t.Fatal("handler not called")
		}
	}
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, map[string]int{"a.md": 1, "b.md": 1}, got)
	assert.Empty(t, calls)
}

func TestMissingDirectory(t *testing.T) {
	t.Parallel()

	_, err := New([]string{filepath.Join(t.TempDir(), "missing")}, 0, func(string) {}, nil)
	assert.Error(t, err)
}

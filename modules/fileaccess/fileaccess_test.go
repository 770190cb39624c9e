package fileaccess

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadAndList(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "b.md"), []byte("bee"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.md"), []byte("ay"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(root, "dir.md"), 0o755))

	fa := New(root)

	data, err := fa.Read("/b.md")
	require.NoError(t, err)
	assert.Equal(t, "bee", string(data))

	names, err := fa.List("", ".md")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.md", "b.md"}, names)

	_, err = fa.Read("dir.md")
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = fa.Read("missing.md")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestResolveRejectsEscapes(t *testing.T) {
	t.Parallel()

	fa := New("/srv/site")
	for _, p := range []string{"../etc/passwd", "a/../../b"} {
		_, err := fa.Resolve(p)
		assert.ErrorIs(t, err, ErrOutsideRoot, p)
	}

	got, err := fa.Resolve("/posts/a.md")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/srv/site", "posts", "a.md"), got)
}
